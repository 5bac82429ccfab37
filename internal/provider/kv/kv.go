// Package kv is the stateful demo backend. Records live in a state.Store
// bucket per collection, so creates, updates and deletes are visible to
// later fetches.
package kv

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"grimm.is/rampart/internal/i18n"
	"grimm.is/rampart/internal/logging"
	"grimm.is/rampart/internal/model"
	"grimm.is/rampart/internal/provider"
	"grimm.is/rampart/internal/provider/fixtures"
	"grimm.is/rampart/internal/provider/stub"
	"grimm.is/rampart/internal/state"
)

// Bucket names.
const (
	BucketUpdates = "updates"
	BucketSystem  = "system"

	infoKey = "info"
)

// New returns a Set backed by st. Empty buckets are seeded from f.
func New(st state.Store, f *fixtures.Fixtures, logger *logging.Logger) (provider.Set, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.WithComponent("provider")

	firewall, err := newResource(st, f.Firewall, nil)
	if err != nil {
		return provider.Set{}, err
	}
	vpn, err := newResource(st, f.VPN, nil)
	if err != nil {
		return provider.Set{}, err
	}
	network, err := newResource(st, f.Network, nil)
	if err != nil {
		return provider.Set{}, err
	}
	users, err := newResource(st, f.Users, stub.NewUser)
	if err != nil {
		return provider.Set{}, err
	}
	system, err := newSystem(st, f, logger)
	if err != nil {
		return provider.Set{}, err
	}

	return provider.Set{
		Firewall: firewall,
		VPN:      vpn,
		Network:  network,
		Users:    users,
		System:   system,
		Auth:     stub.Auth{},
	}, nil
}

// Resource stores one collection in a bucket named after its kind.
type Resource[T model.Record[T]] struct {
	st      state.Store
	bucket  *state.Bucket[T]
	prepare func(T) T
}

func newResource[T model.Record[T]](st state.Store, seed []T, prepare func(T) T) (*Resource[T], error) {
	var zero T
	b := state.NewBucket[T](st, string(zero.Kind()))

	err := st.Update(func(tx state.ReadWriter) error {
		existing, err := b.In(tx).List()
		if err != nil || len(existing) > 0 {
			return err
		}
		for _, rec := range seed {
			if err := b.In(tx).Put(rec.RecordID(), rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", b.Name(), err)
	}

	return &Resource[T]{st: st, bucket: b, prepare: prepare}, nil
}

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	return r.bucket.List()
}

func (r *Resource[T]) Create(ctx context.Context, draft T) (T, error) {
	var zero T
	if err := draft.Validate(); err != nil {
		return zero, &provider.Error{Message: err.Error(), Err: err}
	}

	rec := draft.WithID(uuid.NewString())
	if r.prepare != nil {
		rec = r.prepare(rec)
	}
	if err := r.bucket.Put(rec.RecordID(), rec); err != nil {
		return zero, err
	}
	return rec, nil
}

func (r *Resource[T]) Update(ctx context.Context, record T) (T, error) {
	var zero T
	if err := record.Validate(); err != nil {
		return zero, &provider.Error{Message: err.Error(), Err: err}
	}

	err := r.st.Update(func(tx state.ReadWriter) error {
		b := r.bucket.In(tx)
		ok, err := b.Has(record.RecordID())
		if err != nil {
			return err
		}
		if !ok {
			return notFound()
		}
		return b.Put(record.RecordID(), record)
	})
	if err != nil {
		return zero, err
	}
	return record, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id string) (string, error) {
	if err := r.bucket.Delete(id); err != nil {
		return "", mapNotFound(err)
	}
	return id, nil
}

func (r *Resource[T]) Toggle(ctx context.Context, id string, enabled bool) (provider.Toggle, error) {
	err := r.st.Update(func(tx state.ReadWriter) error {
		b := r.bucket.In(tx)
		rec, err := b.Get(id)
		if err != nil {
			return err
		}
		return b.Put(id, rec.WithEnabled(enabled))
	})
	if err != nil {
		return provider.Toggle{}, mapNotFound(err)
	}
	return provider.Toggle{ID: id, Enabled: enabled}, nil
}

func notFound() error {
	return &provider.Error{Message: i18n.MsgNotFound, Err: provider.ErrNotFound}
}

func mapNotFound(err error) error {
	if errors.Is(err, state.ErrNotFound) {
		return notFound()
	}
	return err
}

// System keeps the system info and update list in their own buckets.
type System struct {
	st      state.Store
	info    *state.Bucket[model.SystemInfo]
	updates *state.Bucket[model.Update]
	logger  *logging.Logger
}

func newSystem(st state.Store, f *fixtures.Fixtures, logger *logging.Logger) (*System, error) {
	s := &System{
		st:      st,
		info:    state.NewBucket[model.SystemInfo](st, BucketSystem),
		updates: state.NewBucket[model.Update](st, BucketUpdates),
		logger:  logger,
	}

	err := st.Update(func(tx state.ReadWriter) error {
		ok, err := s.info.In(tx).Has(infoKey)
		if err != nil || ok {
			return err
		}
		if err := s.info.In(tx).Put(infoKey, f.System); err != nil {
			return err
		}
		for _, u := range f.Updates {
			if err := s.updates.In(tx).Put(u.ID, u); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seed system: %w", err)
	}
	return s, nil
}

func (s *System) Info(ctx context.Context) (model.SystemInfo, error) {
	return s.info.Get(infoKey)
}

func (s *System) Updates(ctx context.Context) ([]model.Update, error) {
	return s.updates.List()
}

// InstallUpdate marks id as the only installed update and records its version.
func (s *System) InstallUpdate(ctx context.Context, id string) (string, error) {
	var version string
	err := s.st.Update(func(tx state.ReadWriter) error {
		updates := s.updates.In(tx)
		all, err := updates.List()
		if err != nil {
			return err
		}

		i := slices.IndexFunc(all, func(u model.Update) bool { return u.ID == id })
		if i < 0 {
			return notFound()
		}
		version = all[i].Version

		for _, u := range all {
			u.Installed = u.ID == id
			if err := updates.Put(u.ID, u); err != nil {
				return err
			}
		}

		info, err := s.info.In(tx).Get(infoKey)
		if err != nil {
			return err
		}
		info.Version = version
		return s.info.In(tx).Put(infoKey, info)
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("update installed", "id", id, "version", version)
	return id, nil
}

func (s *System) Reboot(ctx context.Context) error {
	s.logger.Warn("reboot requested; nothing to restart in the demo backend")
	return nil
}
