package tui

import (
	"context"

	"grimm.is/rampart/internal/model"
	"grimm.is/rampart/internal/store"
)

// Backend is what the console reads from and dispatches to.
type Backend interface {
	// Snapshot returns the current state and its version.
	Snapshot(ctx context.Context) (store.State, uint64, error)
	// Fetch reloads one collection. For the system kind it reloads the
	// info and the update list.
	Fetch(ctx context.Context, kind model.Kind) error
	Toggle(ctx context.Context, kind model.Kind, id string, enabled bool) error
	Delete(ctx context.Context, kind model.Kind, id string) error
	CreateRule(ctx context.Context, rule model.FirewallRule) error
	InstallUpdate(ctx context.Context, id string) error
}
