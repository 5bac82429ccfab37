package store

import "grimm.is/rampart/internal/model"

// Action is one tagged operation outcome. Reduce matches on the concrete type.
type Action interface {
	// Collection is the collection the action targets.
	Collection() model.Kind
	// Name labels the transition in events and logs, e.g. "fetch.fulfilled".
	Name() string
}

func kindOf[T model.Record[T]]() model.Kind {
	var zero T
	return zero.Kind()
}

// ──────────────────────────────────────────────────────────────────────────────
// Resource collections
// ──────────────────────────────────────────────────────────────────────────────

// FetchPending marks the start of a fetch.
type FetchPending[T model.Record[T]] struct{}

// FetchFulfilled carries the full list returned by a fetch.
type FetchFulfilled[T model.Record[T]] struct {
	Items []T
}

// FetchRejected carries the failure message of a fetch.
type FetchRejected[T model.Record[T]] struct {
	Message string
}

// Created carries a record the provider accepted, id assigned.
type Created[T model.Record[T]] struct {
	Record T
}

// Updated carries a full replacement record.
type Updated[T model.Record[T]] struct {
	Record T
}

// Deleted carries the id of a removed record.
type Deleted[T model.Record[T]] struct {
	ID string
}

// Toggled carries the new enabled flag of a record.
type Toggled[T model.Record[T]] struct {
	ID      string
	Enabled bool
}

func (FetchPending[T]) Collection() model.Kind   { return kindOf[T]() }
func (FetchFulfilled[T]) Collection() model.Kind { return kindOf[T]() }
func (FetchRejected[T]) Collection() model.Kind  { return kindOf[T]() }
func (Created[T]) Collection() model.Kind        { return kindOf[T]() }
func (Updated[T]) Collection() model.Kind        { return kindOf[T]() }
func (Deleted[T]) Collection() model.Kind        { return kindOf[T]() }
func (Toggled[T]) Collection() model.Kind        { return kindOf[T]() }

func (FetchPending[T]) Name() string   { return "fetch.pending" }
func (FetchFulfilled[T]) Name() string { return "fetch.fulfilled" }
func (FetchRejected[T]) Name() string  { return "fetch.rejected" }
func (Created[T]) Name() string        { return "created" }
func (Updated[T]) Name() string        { return "updated" }
func (Deleted[T]) Name() string        { return "deleted" }
func (Toggled[T]) Name() string        { return "toggled" }

// ErrorCleared resets the error message of any collection.
type ErrorCleared struct {
	Kind model.Kind
}

func (a ErrorCleared) Collection() model.Kind { return a.Kind }
func (ErrorCleared) Name() string             { return "error.cleared" }

// OperationRejected records a failed create, update, delete, toggle,
// install, reboot or logout. It reaches the event feed but leaves every
// collection untouched: only fetches and logins surface errors in state.
type OperationRejected struct {
	Kind    model.Kind
	Op      string
	Message string
}

func (a OperationRejected) Collection() model.Kind { return a.Kind }
func (OperationRejected) Name() string             { return "operation.rejected" }

// ──────────────────────────────────────────────────────────────────────────────
// System
// ──────────────────────────────────────────────────────────────────────────────

type (
	// InfoPending marks the start of a system info fetch.
	InfoPending struct{}
	// InfoFulfilled replaces the system info wholesale.
	InfoFulfilled struct{ Info model.SystemInfo }
	// InfoRejected carries the failure message of an info fetch.
	InfoRejected struct{ Message string }

	// UpdatesPending marks the start of an update list fetch.
	UpdatesPending struct{}
	// UpdatesFulfilled replaces the update list wholesale.
	UpdatesFulfilled struct{ Updates []model.Update }
	// UpdatesRejected carries the failure message of an update list fetch.
	UpdatesRejected struct{ Message string }

	// UpdateInstalled selects the installed update.
	UpdateInstalled struct{ ID string }

	// Rebooted records an accepted reboot request.
	Rebooted struct{}
)

func (InfoPending) Collection() model.Kind      { return model.KindSystem }
func (InfoFulfilled) Collection() model.Kind    { return model.KindSystem }
func (InfoRejected) Collection() model.Kind     { return model.KindSystem }
func (UpdatesPending) Collection() model.Kind   { return model.KindSystem }
func (UpdatesFulfilled) Collection() model.Kind { return model.KindSystem }
func (UpdatesRejected) Collection() model.Kind  { return model.KindSystem }
func (UpdateInstalled) Collection() model.Kind  { return model.KindSystem }
func (Rebooted) Collection() model.Kind         { return model.KindSystem }

func (InfoPending) Name() string      { return "info.pending" }
func (InfoFulfilled) Name() string    { return "info.fulfilled" }
func (InfoRejected) Name() string     { return "info.rejected" }
func (UpdatesPending) Name() string   { return "updates.pending" }
func (UpdatesFulfilled) Name() string { return "updates.fulfilled" }
func (UpdatesRejected) Name() string  { return "updates.rejected" }
func (UpdateInstalled) Name() string  { return "update.installed" }
func (Rebooted) Name() string         { return "rebooted" }

// ──────────────────────────────────────────────────────────────────────────────
// Session
// ──────────────────────────────────────────────────────────────────────────────

type (
	// LoginPending marks the start of a login.
	LoginPending struct{}
	// LoginFulfilled carries the logged-in principal.
	LoginFulfilled struct{ User model.Principal }
	// LoginRejected carries the failure message of a login.
	LoginRejected struct{ Message string }
	// LoggedOut ends the session.
	LoggedOut struct{}
)

func (LoginPending) Collection() model.Kind   { return model.KindSession }
func (LoginFulfilled) Collection() model.Kind { return model.KindSession }
func (LoginRejected) Collection() model.Kind  { return model.KindSession }
func (LoggedOut) Collection() model.Kind      { return model.KindSession }

func (LoginPending) Name() string   { return "login.pending" }
func (LoginFulfilled) Name() string { return "login.fulfilled" }
func (LoginRejected) Name() string  { return "login.rejected" }
func (LoggedOut) Name() string      { return "logged.out" }
