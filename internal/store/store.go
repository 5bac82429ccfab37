package store

import (
	"context"
	"errors"
	"sync/atomic"

	"grimm.is/rampart/internal/events"
	"grimm.is/rampart/internal/logging"
	"grimm.is/rampart/internal/metrics"
)

// ErrStopped is returned when an action is sent to a store whose loop has exited.
var ErrStopped = errors.New("store stopped")

// inboxSize bounds the number of outcomes waiting to be applied.
const inboxSize = 64

// Options configures a Store. Every field is optional.
type Options struct {
	Hub        *events.Hub
	Logger     *logging.Logger
	Metrics    *metrics.Registry
	TraceDiffs bool // log a unified diff of the touched collection per action
	Initial    *State
}

type snapshot struct {
	state   State
	version uint64
}

type envelope struct {
	action  Action
	applied chan struct{}
}

// Store owns the application state. Run is the only goroutine that replaces
// it; everything else reads published snapshots.
//
// Actions are applied strictly in the order they arrive on the inbox. When
// two operations on the same collection complete concurrently, whichever
// outcome is sent first is applied first and the later one wins.
type Store struct {
	current atomic.Pointer[snapshot]
	inbox   chan envelope
	stopped chan struct{}
	running atomic.Bool

	hub     *events.Hub
	logger  *logging.Logger
	metrics *metrics.Registry
	trace   bool
}

// New creates a store holding opts.Initial, or the empty state.
func New(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	initial := Initial()
	if opts.Initial != nil {
		initial = *opts.Initial
	}

	s := &Store{
		inbox:   make(chan envelope, inboxSize),
		stopped: make(chan struct{}),
		hub:     opts.Hub,
		logger:  logger.WithComponent("store"),
		metrics: opts.Metrics,
		trace:   opts.TraceDiffs,
	}
	s.current.Store(&snapshot{state: initial})
	return s
}

// Snapshot returns the current state. The returned value is never modified.
func (s *Store) Snapshot() State {
	return s.current.Load().state
}

// Version returns the number of actions applied so far.
func (s *Store) Version() uint64 {
	return s.current.Load().version
}

// View returns the current state together with its version.
func (s *Store) View() (State, uint64) {
	snap := s.current.Load()
	return snap.state, snap.version
}

// Done is closed once Run has returned.
func (s *Store) Done() <-chan struct{} {
	return s.stopped
}

// Run applies queued actions until ctx is cancelled. Actions still queued at
// that point are applied before Run returns.
func (s *Store) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("store already running")
	}
	s.logger.Debug("store loop started")

	for {
		select {
		case env := <-s.inbox:
			s.apply(env)
		case <-ctx.Done():
			close(s.stopped)
			for {
				select {
				case env := <-s.inbox:
					s.apply(env)
				default:
					s.logger.Debug("store loop stopped", "version", s.Version())
					return nil
				}
			}
		}
	}
}

// Send queues a for application and returns a channel that is closed once a
// has been applied. Send blocks while the inbox is full.
func (s *Store) Send(a Action) (<-chan struct{}, error) {
	env := envelope{action: a, applied: make(chan struct{})}
	select {
	case <-s.stopped:
		return nil, ErrStopped
	default:
	}
	select {
	case s.inbox <- env:
		return env.applied, nil
	case <-s.stopped:
		return nil, ErrStopped
	}
}

// Dispatch queues a and waits until it has been applied.
func (s *Store) Dispatch(ctx context.Context, a Action) error {
	applied, err := s.Send(a)
	if err != nil {
		return err
	}
	select {
	case <-applied:
		return nil
	case <-s.stopped:
		// The drain in Run may still apply it.
		select {
		case <-applied:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) apply(env envelope) {
	defer close(env.applied)

	prev := s.current.Load()
	next := &snapshot{
		state:   Reduce(prev.state, env.action),
		version: prev.version + 1,
	}
	s.current.Store(next)

	a := env.action
	kind := string(a.Collection())

	s.logger.Debug("applied action",
		"collection", kind,
		"action", a.Name(),
		"version", next.version,
	)
	if s.trace {
		s.traceDiff(a, prev.state, next.state)
	}

	s.metrics.RecordStore(next.version, next.state.Sizes())

	if s.hub == nil {
		return
	}
	s.hub.Publish(events.StateChanged(kind, a.Name(), next.version))
	switch a := a.(type) {
	case OperationRejected:
		s.hub.Publish(events.OperationRejected(kind, a.Op, a.Message))
	case LoginFulfilled:
		s.hub.Publish(events.SessionChanged(a.User.Username, true))
	case LoggedOut:
		s.hub.Publish(events.SessionChanged("", false))
	case Rebooted:
		s.hub.Publish(events.Event{Type: events.EventSystemReboot, Source: "store"})
	}
}
