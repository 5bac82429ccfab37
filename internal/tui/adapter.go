package tui

import (
	"context"
	"errors"
	"fmt"

	"grimm.is/rampart/internal/dispatch"
	"grimm.is/rampart/internal/model"
	"grimm.is/rampart/internal/store"
)

// LocalBackend drives an in-process dispatcher.
type LocalBackend struct {
	d         *dispatch.Dispatcher
	resources map[model.Kind]resourceOps
}

// resourceOps erases the record type of a dispatch.Resource.
type resourceOps interface {
	fetch(ctx context.Context) error
	toggle(ctx context.Context, id string, enabled bool) error
	remove(ctx context.Context, id string) error
}

type resourceAdapter[T model.Record[T]] struct {
	r *dispatch.Resource[T]
}

func (a resourceAdapter[T]) fetch(ctx context.Context) error {
	_, err := a.r.FetchAll(ctx).Wait(ctx)
	return err
}

func (a resourceAdapter[T]) toggle(ctx context.Context, id string, enabled bool) error {
	_, err := a.r.Toggle(ctx, id, enabled).Wait(ctx)
	return err
}

func (a resourceAdapter[T]) remove(ctx context.Context, id string) error {
	_, err := a.r.Delete(ctx, id).Wait(ctx)
	return err
}

// NewLocalBackend wraps d.
func NewLocalBackend(d *dispatch.Dispatcher) *LocalBackend {
	return &LocalBackend{
		d: d,
		resources: map[model.Kind]resourceOps{
			model.KindFirewall: resourceAdapter[model.FirewallRule]{d.Firewall},
			model.KindVPN:      resourceAdapter[model.VPNTunnel]{d.VPN},
			model.KindNetwork:  resourceAdapter[model.NetworkInterface]{d.Network},
			model.KindUsers:    resourceAdapter[model.UserAccount]{d.Users},
		},
	}
}

func (b *LocalBackend) Snapshot(ctx context.Context) (store.State, uint64, error) {
	s, v := b.d.Store().View()
	return s, v, nil
}

func (b *LocalBackend) Fetch(ctx context.Context, kind model.Kind) error {
	if kind == model.KindSystem {
		info := b.d.System.FetchInfo(ctx)
		updates := b.d.System.FetchUpdates(ctx)
		_, err1 := info.Wait(ctx)
		_, err2 := updates.Wait(ctx)
		return errors.Join(err1, err2)
	}
	r, err := b.resource(kind)
	if err != nil {
		return err
	}
	return r.fetch(ctx)
}

func (b *LocalBackend) Toggle(ctx context.Context, kind model.Kind, id string, enabled bool) error {
	r, err := b.resource(kind)
	if err != nil {
		return err
	}
	return r.toggle(ctx, id, enabled)
}

func (b *LocalBackend) Delete(ctx context.Context, kind model.Kind, id string) error {
	r, err := b.resource(kind)
	if err != nil {
		return err
	}
	return r.remove(ctx, id)
}

func (b *LocalBackend) CreateRule(ctx context.Context, rule model.FirewallRule) error {
	_, err := b.d.Firewall.Create(ctx, rule).Wait(ctx)
	return err
}

func (b *LocalBackend) InstallUpdate(ctx context.Context, id string) error {
	_, err := b.d.System.InstallUpdate(ctx, id).Wait(ctx)
	return err
}

func (b *LocalBackend) resource(kind model.Kind) (resourceOps, error) {
	r, ok := b.resources[kind]
	if !ok {
		return nil, fmt.Errorf("%s has no records to act on", kind)
	}
	return r, nil
}
