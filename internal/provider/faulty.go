package provider

import (
	"context"
	"errors"
	"sync"
	"time"

	"grimm.is/rampart/internal/model"
)

// errInjected is the cause of a fault configured without a message.
var errInjected = errors.New("injected fault")

// Faults injects latency and failures in front of a Set. It is how the
// demo backends exercise the rejected path of every operation.
type Faults struct {
	mu       sync.RWMutex
	latency  time.Duration
	failures map[model.Kind]map[Op]string
}

// NewFaults creates an empty fault table with the given per-call latency.
func NewFaults(latency time.Duration) *Faults {
	return &Faults{
		latency:  latency,
		failures: make(map[model.Kind]map[Op]string),
	}
}

// Fail makes every later call of op on kind fail. An empty message leaves
// the caller to pick its default text.
func (f *Faults) Fail(kind model.Kind, op Op, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures[kind] == nil {
		f.failures[kind] = make(map[Op]string)
	}
	f.failures[kind][op] = message
}

// Heal removes a configured failure.
func (f *Faults) Heal(kind model.Kind, op Op) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures[kind], op)
}

// check waits the configured latency and returns the configured failure.
func (f *Faults) check(ctx context.Context, kind model.Kind, op Op) error {
	f.mu.RLock()
	latency := f.latency
	message, failing := f.failures[kind][op]
	f.mu.RUnlock()

	if latency > 0 {
		t := time.NewTimer(latency)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if !failing {
		return nil
	}
	if message == "" {
		return errInjected
	}
	return &Error{Message: message, Err: errInjected}
}

// Wrap returns a Set whose calls pass through f first.
func (f *Faults) Wrap(s Set) Set {
	return Set{
		Firewall: faultyResource[model.FirewallRule]{next: s.Firewall, faults: f},
		VPN:      faultyResource[model.VPNTunnel]{next: s.VPN, faults: f},
		Network:  faultyResource[model.NetworkInterface]{next: s.Network, faults: f},
		Users:    faultyResource[model.UserAccount]{next: s.Users, faults: f},
		System:   faultySystem{next: s.System, faults: f},
		Auth:     faultyAuth{next: s.Auth, faults: f},
	}
}

type faultyResource[T model.Record[T]] struct {
	next   Resource[T]
	faults *Faults
}

func (r faultyResource[T]) kind() model.Kind {
	var zero T
	return zero.Kind()
}

func (r faultyResource[T]) List(ctx context.Context) ([]T, error) {
	if err := r.faults.check(ctx, r.kind(), OpFetch); err != nil {
		return nil, err
	}
	return r.next.List(ctx)
}

func (r faultyResource[T]) Create(ctx context.Context, draft T) (T, error) {
	if err := r.faults.check(ctx, r.kind(), OpCreate); err != nil {
		var zero T
		return zero, err
	}
	return r.next.Create(ctx, draft)
}

func (r faultyResource[T]) Update(ctx context.Context, record T) (T, error) {
	if err := r.faults.check(ctx, r.kind(), OpUpdate); err != nil {
		var zero T
		return zero, err
	}
	return r.next.Update(ctx, record)
}

func (r faultyResource[T]) Delete(ctx context.Context, id string) (string, error) {
	if err := r.faults.check(ctx, r.kind(), OpDelete); err != nil {
		return "", err
	}
	return r.next.Delete(ctx, id)
}

func (r faultyResource[T]) Toggle(ctx context.Context, id string, enabled bool) (Toggle, error) {
	if err := r.faults.check(ctx, r.kind(), OpToggle); err != nil {
		return Toggle{}, err
	}
	return r.next.Toggle(ctx, id, enabled)
}

type faultySystem struct {
	next   System
	faults *Faults
}

func (s faultySystem) Info(ctx context.Context) (model.SystemInfo, error) {
	if err := s.faults.check(ctx, model.KindSystem, OpFetch); err != nil {
		return model.SystemInfo{}, err
	}
	return s.next.Info(ctx)
}

func (s faultySystem) Updates(ctx context.Context) ([]model.Update, error) {
	if err := s.faults.check(ctx, model.KindSystem, OpUpdates); err != nil {
		return nil, err
	}
	return s.next.Updates(ctx)
}

func (s faultySystem) InstallUpdate(ctx context.Context, id string) (string, error) {
	if err := s.faults.check(ctx, model.KindSystem, OpInstall); err != nil {
		return "", err
	}
	return s.next.InstallUpdate(ctx, id)
}

func (s faultySystem) Reboot(ctx context.Context) error {
	if err := s.faults.check(ctx, model.KindSystem, OpReboot); err != nil {
		return err
	}
	return s.next.Reboot(ctx)
}

type faultyAuth struct {
	next   Authenticator
	faults *Faults
}

func (a faultyAuth) Login(ctx context.Context, username, password string) (model.Principal, error) {
	if err := a.faults.check(ctx, model.KindSession, OpLogin); err != nil {
		return model.Principal{}, err
	}
	return a.next.Login(ctx, username, password)
}

func (a faultyAuth) Logout(ctx context.Context) error {
	if err := a.faults.check(ctx, model.KindSession, OpLogout); err != nil {
		return err
	}
	return a.next.Logout(ctx)
}
