package dispatch

import (
	"context"

	"grimm.is/rampart/internal/model"
	"grimm.is/rampart/internal/provider"
	"grimm.is/rampart/internal/store"
)

// Resource dispatches the operations of one id-keyed collection.
type Resource[T model.Record[T]] struct {
	d *Dispatcher
	p provider.Resource[T]
}

func (r *Resource[T]) kind() model.Kind {
	var zero T
	return zero.Kind()
}

// FetchAll replaces the collection with the provider's list.
func (r *Resource[T]) FetchAll(ctx context.Context) *Future[[]T] {
	return run(ctx, r.d, task[[]T]{
		kind:      r.kind(),
		op:        provider.OpFetch,
		pending:   store.FetchPending[T]{},
		call:      r.p.List,
		fulfilled: func(items []T) store.Action { return store.FetchFulfilled[T]{Items: items} },
		rejected:  func(msg string) store.Action { return store.FetchRejected[T]{Message: msg} },
	})
}

// Create asks the provider to store draft and appends the returned record.
// Any id on draft is ignored.
func (r *Resource[T]) Create(ctx context.Context, draft T) *Future[T] {
	return run(ctx, r.d, task[T]{
		kind: r.kind(),
		op:   provider.OpCreate,
		call: func(ctx context.Context) (T, error) {
			return r.p.Create(ctx, draft.WithID(""))
		},
		fulfilled: func(rec T) store.Action { return store.Created[T]{Record: rec} },
		rejected:  rejectMutation(r.kind(), provider.OpCreate),
		audit:     func(rec T) []any { return []any{"id", rec.RecordID()} },
	})
}

// Update replaces the record sharing record's id.
func (r *Resource[T]) Update(ctx context.Context, record T) *Future[T] {
	return run(ctx, r.d, task[T]{
		kind: r.kind(),
		op:   provider.OpUpdate,
		call: func(ctx context.Context) (T, error) {
			return r.p.Update(ctx, record)
		},
		fulfilled: func(rec T) store.Action { return store.Updated[T]{Record: rec} },
		rejected:  rejectMutation(r.kind(), provider.OpUpdate),
		audit:     func(rec T) []any { return []any{"id", rec.RecordID()} },
	})
}

// Delete removes the record with id.
func (r *Resource[T]) Delete(ctx context.Context, id string) *Future[string] {
	return run(ctx, r.d, task[string]{
		kind: r.kind(),
		op:   provider.OpDelete,
		call: func(ctx context.Context) (string, error) {
			return r.p.Delete(ctx, id)
		},
		fulfilled: func(id string) store.Action { return store.Deleted[T]{ID: id} },
		rejected:  rejectMutation(r.kind(), provider.OpDelete),
		audit:     func(id string) []any { return []any{"id", id} },
	})
}

// Toggle enables or disables the record with id.
func (r *Resource[T]) Toggle(ctx context.Context, id string, enabled bool) *Future[provider.Toggle] {
	return run(ctx, r.d, task[provider.Toggle]{
		kind: r.kind(),
		op:   provider.OpToggle,
		call: func(ctx context.Context) (provider.Toggle, error) {
			return r.p.Toggle(ctx, id, enabled)
		},
		fulfilled: func(t provider.Toggle) store.Action { return store.Toggled[T]{ID: t.ID, Enabled: t.Enabled} },
		rejected:  rejectMutation(r.kind(), provider.OpToggle),
		audit: func(t provider.Toggle) []any {
			return []any{"id", t.ID, "enabled", t.Enabled}
		},
	})
}

// ClearError resets the collection's error message.
func (r *Resource[T]) ClearError(ctx context.Context) error {
	return r.d.ClearError(ctx, r.kind())
}
