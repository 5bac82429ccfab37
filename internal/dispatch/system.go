package dispatch

import (
	"context"

	"grimm.is/rampart/internal/model"
	"grimm.is/rampart/internal/provider"
	"grimm.is/rampart/internal/store"
)

// SystemOps dispatches the operations on the system singleton.
type SystemOps struct {
	d *Dispatcher
	p provider.System
}

// FetchInfo replaces the system info.
func (s *SystemOps) FetchInfo(ctx context.Context) *Future[model.SystemInfo] {
	return run(ctx, s.d, task[model.SystemInfo]{
		kind:      model.KindSystem,
		op:        provider.OpFetch,
		pending:   store.InfoPending{},
		call:      s.p.Info,
		fulfilled: func(info model.SystemInfo) store.Action { return store.InfoFulfilled{Info: info} },
		rejected:  func(msg string) store.Action { return store.InfoRejected{Message: msg} },
	})
}

// FetchUpdates replaces the update list.
func (s *SystemOps) FetchUpdates(ctx context.Context) *Future[[]model.Update] {
	return run(ctx, s.d, task[[]model.Update]{
		kind:      model.KindSystem,
		op:        provider.OpUpdates,
		pending:   store.UpdatesPending{},
		call:      s.p.Updates,
		fulfilled: func(u []model.Update) store.Action { return store.UpdatesFulfilled{Updates: u} },
		rejected:  func(msg string) store.Action { return store.UpdatesRejected{Message: msg} },
	})
}

// InstallUpdate marks update id as the installed one.
func (s *SystemOps) InstallUpdate(ctx context.Context, id string) *Future[string] {
	return run(ctx, s.d, task[string]{
		kind: model.KindSystem,
		op:   provider.OpInstall,
		call: func(ctx context.Context) (string, error) {
			return s.p.InstallUpdate(ctx, id)
		},
		fulfilled: func(id string) store.Action { return store.UpdateInstalled{ID: id} },
		rejected:  rejectMutation(model.KindSystem, provider.OpInstall),
		audit:     func(id string) []any { return []any{"id", id} },
	})
}

// Reboot asks the appliance to restart.
func (s *SystemOps) Reboot(ctx context.Context) *Future[struct{}] {
	return run(ctx, s.d, task[struct{}]{
		kind:      model.KindSystem,
		op:        provider.OpReboot,
		call:      func(ctx context.Context) (struct{}, error) { return struct{}{}, s.p.Reboot(ctx) },
		fulfilled: func(struct{}) store.Action { return store.Rebooted{} },
		rejected:  rejectMutation(model.KindSystem, provider.OpReboot),
		audit:     func(struct{}) []any { return nil },
	})
}

// ClearError resets the system error message.
func (s *SystemOps) ClearError(ctx context.Context) error {
	return s.d.ClearError(ctx, model.KindSystem)
}

// SessionOps dispatches the placeholder login flow.
type SessionOps struct {
	d *Dispatcher
	p provider.Authenticator
}

// Login checks the credentials and records the principal.
func (s *SessionOps) Login(ctx context.Context, username, password string) *Future[model.Principal] {
	return run(ctx, s.d, task[model.Principal]{
		kind:    model.KindSession,
		op:      provider.OpLogin,
		pending: store.LoginPending{},
		call: func(ctx context.Context) (model.Principal, error) {
			return s.p.Login(ctx, username, password)
		},
		fulfilled: func(p model.Principal) store.Action { return store.LoginFulfilled{User: p} },
		rejected:  func(msg string) store.Action { return store.LoginRejected{Message: msg} },
		audit:     func(p model.Principal) []any { return []any{"user", p.Username} },
	})
}

// Logout ends the session.
func (s *SessionOps) Logout(ctx context.Context) *Future[struct{}] {
	return run(ctx, s.d, task[struct{}]{
		kind:      model.KindSession,
		op:        provider.OpLogout,
		call:      func(ctx context.Context) (struct{}, error) { return struct{}{}, s.p.Logout(ctx) },
		fulfilled: func(struct{}) store.Action { return store.LoggedOut{} },
		rejected:  rejectMutation(model.KindSession, provider.OpLogout),
		audit:     func(struct{}) []any { return nil },
	})
}

// ClearError resets the login error message.
func (s *SessionOps) ClearError(ctx context.Context) error {
	return s.d.ClearError(ctx, model.KindSession)
}
