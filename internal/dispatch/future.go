package dispatch

import (
	"context"
	"errors"

	"grimm.is/rampart/internal/model"
	"grimm.is/rampart/internal/provider"
)

// Future is the single result of one operation. It resolves after the
// operation's outcome has been applied to the store, so a snapshot read
// after Wait returns already reflects it.
type Future[V any] struct {
	done  chan struct{}
	value V
	err   error
}

func newFuture[V any]() *Future[V] {
	return &Future[V]{done: make(chan struct{})}
}

func failed[V any](err error) *Future[V] {
	f := newFuture[V]()
	f.resolve(*new(V), err)
	return f
}

func (f *Future[V]) resolve(v V, err error) {
	f.value, f.err = v, err
	close(f.done)
}

// Done is closed when the result is available.
func (f *Future[V]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the operation resolves or ctx is done. Giving up on
// Wait does not cancel the operation.
func (f *Future[V]) Wait(ctx context.Context) (V, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// RejectedError is the failure outcome of an operation.
type RejectedError struct {
	Kind    model.Kind
	Op      provider.Op
	Message string // operator-facing, never empty
	Cause   error
}

func (e *RejectedError) Error() string {
	return e.Message
}

func (e *RejectedError) Unwrap() error {
	return e.Cause
}

// AsRejected extracts a RejectedError from err.
func AsRejected(err error) (*RejectedError, bool) {
	var re *RejectedError
	ok := errors.As(err, &re)
	return re, ok
}
