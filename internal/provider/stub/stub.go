// Package stub is the stateless demo backend. Every call succeeds and
// echoes its input; lists always return the seed records.
package stub

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"grimm.is/rampart/internal/model"
	"grimm.is/rampart/internal/provider"
	"grimm.is/rampart/internal/provider/fixtures"
)

// New returns a Set that serves f.
func New(f *fixtures.Fixtures) provider.Set {
	return provider.Set{
		Firewall: &Resource[model.FirewallRule]{Seed: f.Firewall},
		VPN:      &Resource[model.VPNTunnel]{Seed: f.VPN},
		Network:  &Resource[model.NetworkInterface]{Seed: f.Network},
		Users:    &Resource[model.UserAccount]{Seed: f.Users, Prepare: NewUser},
		System:   &System{Seed: f.System, SeedUpdates: f.Updates},
		Auth:     Auth{},
	}
}

// NewUser fills the fields the backend owns on a fresh account.
func NewUser(u model.UserAccount) model.UserAccount {
	u.LastLogin = model.NeverLoggedIn
	return u
}

// Resource echoes every call for one collection.
type Resource[T model.Record[T]] struct {
	Seed []T
	// Prepare, if set, adjusts a draft before Create returns it.
	Prepare func(T) T
}

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	return slices.Clone(r.Seed), nil
}

func (r *Resource[T]) Create(ctx context.Context, draft T) (T, error) {
	rec := draft.WithID(uuid.NewString())
	if r.Prepare != nil {
		rec = r.Prepare(rec)
	}
	return rec, nil
}

func (r *Resource[T]) Update(ctx context.Context, record T) (T, error) {
	return record, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id string) (string, error) {
	return id, nil
}

func (r *Resource[T]) Toggle(ctx context.Context, id string, enabled bool) (provider.Toggle, error) {
	return provider.Toggle{ID: id, Enabled: enabled}, nil
}

// System serves the seed system info and update list.
type System struct {
	Seed        model.SystemInfo
	SeedUpdates []model.Update
}

func (s *System) Info(ctx context.Context) (model.SystemInfo, error) {
	return s.Seed, nil
}

func (s *System) Updates(ctx context.Context) ([]model.Update, error) {
	return slices.Clone(s.SeedUpdates), nil
}

func (s *System) InstallUpdate(ctx context.Context, id string) (string, error) {
	return id, nil
}

func (s *System) Reboot(ctx context.Context) error {
	return nil
}
