// Package dispatch runs operations against the providers and feeds their
// outcomes to the store.
//
// Every operation is a single-shot task: the provider call runs in its own
// goroutine and is never cancelled, retried or timed out. Fetch-style
// operations apply a pending action before the call starts; every operation
// applies exactly one fulfilled or rejected action when it completes.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/text/message"

	"grimm.is/rampart/internal/clock"
	"grimm.is/rampart/internal/i18n"
	"grimm.is/rampart/internal/logging"
	"grimm.is/rampart/internal/metrics"
	"grimm.is/rampart/internal/model"
	"grimm.is/rampart/internal/provider"
	"grimm.is/rampart/internal/store"
)

// Options configures a Dispatcher. Every field is optional.
type Options struct {
	Logger  *logging.Logger
	Metrics *metrics.Registry
	// Printer renders default rejection messages when the calling context
	// carries none (see i18n.WithPrinter).
	Printer *message.Printer
}

// Dispatcher is the public operation surface over one store.
type Dispatcher struct {
	store   *store.Store
	logger  *logging.Logger
	metrics *metrics.Registry
	printer *message.Printer

	Firewall *Resource[model.FirewallRule]
	VPN      *Resource[model.VPNTunnel]
	Network  *Resource[model.NetworkInterface]
	Users    *Resource[model.UserAccount]
	System   *SystemOps
	Session  *SessionOps
}

// New wires a dispatcher for st over providers.
func New(st *store.Store, providers provider.Set, opts Options) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	printer := opts.Printer
	if printer == nil {
		printer = message.NewPrinter(i18n.DefaultLang)
	}

	d := &Dispatcher{
		store:   st,
		logger:  logger.WithComponent("dispatch"),
		metrics: opts.Metrics,
		printer: printer,
	}
	d.Firewall = &Resource[model.FirewallRule]{d: d, p: providers.Firewall}
	d.VPN = &Resource[model.VPNTunnel]{d: d, p: providers.VPN}
	d.Network = &Resource[model.NetworkInterface]{d: d, p: providers.Network}
	d.Users = &Resource[model.UserAccount]{d: d, p: providers.Users}
	d.System = &SystemOps{d: d, p: providers.System}
	d.Session = &SessionOps{d: d, p: providers.Auth}
	return d
}

// Store returns the store the dispatcher feeds.
func (d *Dispatcher) Store() *store.Store {
	return d.store
}

// Refresh fetches every collection and the update list and waits for all
// of them. The error joins every rejection.
func (d *Dispatcher) Refresh(ctx context.Context) error {
	waits := []func() error{
		discard(ctx, d.Firewall.FetchAll(ctx)),
		discard(ctx, d.VPN.FetchAll(ctx)),
		discard(ctx, d.Network.FetchAll(ctx)),
		discard(ctx, d.System.FetchInfo(ctx)),
		discard(ctx, d.System.FetchUpdates(ctx)),
		discard(ctx, d.Users.FetchAll(ctx)),
	}

	var errs []error
	for _, wait := range waits {
		if err := wait(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func discard[V any](ctx context.Context, f *Future[V]) func() error {
	return func() error {
		_, err := f.Wait(ctx)
		return err
	}
}

// ClearError resets the error message of one collection.
func (d *Dispatcher) ClearError(ctx context.Context, kind model.Kind) error {
	return d.store.Dispatch(ctx, store.ErrorCleared{Kind: kind})
}

// task describes one operation for run.
type task[V any] struct {
	kind      model.Kind
	op        provider.Op
	pending   store.Action // nil when the operation has no pending state
	call      func(context.Context) (V, error)
	fulfilled func(V) store.Action
	rejected  func(message string) store.Action
	audit     func(V) []any // nil for read-only operations
}

func run[V any](ctx context.Context, d *Dispatcher, t task[V]) *Future[V] {
	if t.pending != nil {
		if err := d.store.Dispatch(ctx, t.pending); err != nil {
			return failed[V](fmt.Errorf("%s %s: %w", t.kind, t.op, err))
		}
	}

	printer := d.printerFor(ctx)
	callCtx := context.WithoutCancel(ctx)
	f := newFuture[V]()

	go func() {
		start := clock.Now()
		v, err := t.call(callCtx)
		d.metrics.RecordOperation(string(t.kind), string(t.op), err, clock.Since(start))

		var outcome store.Action
		if err != nil {
			re := &RejectedError{
				Kind:    t.kind,
				Op:      t.op,
				Message: rejectionMessage(printer, t.kind, t.op, err),
				Cause:   err,
			}
			d.logger.Warn("operation rejected",
				"collection", string(t.kind),
				"op", string(t.op),
				"message", re.Message,
				"error", err,
			)
			outcome = t.rejected(re.Message)
			err = re
		} else {
			outcome = t.fulfilled(v)
			if t.audit != nil {
				d.logger.Audit(string(t.op), string(t.kind), t.audit(v)...)
			}
		}

		if applyErr := d.store.Dispatch(context.Background(), outcome); applyErr != nil {
			err = errors.Join(err, fmt.Errorf("apply %s: %w", outcome.Name(), applyErr))
		}
		f.resolve(v, err)
	}()

	return f
}

func (d *Dispatcher) printerFor(ctx context.Context) *message.Printer {
	if p, ok := i18n.PrinterFrom(ctx); ok {
		return p
	}
	return d.printer
}

// rejectionMessage prefers the provider's own message and falls back to
// the localized default for the operation.
func rejectionMessage(p *message.Printer, kind model.Kind, op provider.Op, err error) string {
	if msg, ok := provider.Message(err); ok {
		return i18n.Text(p, msg)
	}
	return i18n.Rejection(p, string(kind), string(op))
}

func rejectMutation(kind model.Kind, op provider.Op) func(string) store.Action {
	return func(msg string) store.Action {
		return store.OperationRejected{Kind: kind, Op: string(op), Message: msg}
	}
}
