package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/text/message"

	"grimm.is/rampart/internal/brand"
	"grimm.is/rampart/internal/config"
	"grimm.is/rampart/internal/dispatch"
	"grimm.is/rampart/internal/events"
	"grimm.is/rampart/internal/i18n"
	"grimm.is/rampart/internal/logging"
	"grimm.is/rampart/internal/metrics"
	"grimm.is/rampart/internal/model"
	"grimm.is/rampart/internal/provider"
	"grimm.is/rampart/internal/provider/fixtures"
	"grimm.is/rampart/internal/provider/host"
	"grimm.is/rampart/internal/provider/kv"
	"grimm.is/rampart/internal/provider/stub"
	"grimm.is/rampart/internal/state"
	"grimm.is/rampart/internal/store"
)

// app is one wired instance: providers, store loop and dispatcher.
type app struct {
	cfg        *config.Config
	logger     *logging.Logger
	printer    *message.Printer
	hub        *events.Hub
	metrics    *metrics.Registry
	store      *store.Store
	dispatcher *dispatch.Dispatcher
	faults     *provider.Faults

	closers []func() error
}

// newLogger builds the process logger from the log block.
func newLogger(cfg *config.Config) *logging.Logger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	return logging.New(logging.Config{Level: level, Output: os.Stderr, JSON: cfg.Log.JSON, Prefix: brand.LowerName})
}

// newApp wires cfg. reg may be nil to disable metrics.
func newApp(cfg *config.Config, logger *logging.Logger, reg *metrics.Registry) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		printer: i18n.ForLanguage(cfg.Language),
		hub:     events.NewHub(),
		metrics: reg,
	}

	set, err := a.providers()
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.store = store.New(store.Options{
		Hub:        a.hub,
		Logger:     logger,
		Metrics:    reg,
		TraceDiffs: cfg.Store.TraceDiffs,
	})
	a.dispatcher = dispatch.New(a.store, set, dispatch.Options{
		Logger:  logger,
		Metrics: reg,
		Printer: a.printer,
	})
	return a, nil
}

// providers builds the configured backend behind the fault table.
func (a *app) providers() (provider.Set, error) {
	pc := a.cfg.Provider

	seed, err := fixtures.Default()
	if pc.SeedFile != "" {
		seed, err = fixtures.Load(pc.SeedFile)
	}
	if err != nil {
		return provider.Set{}, fmt.Errorf("load seed records: %w", err)
	}

	var set provider.Set
	switch pc.Backend {
	case config.BackendKV:
		db, err := state.NewMemoryStore()
		if err != nil {
			return provider.Set{}, fmt.Errorf("open kv store: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if set, err = kv.New(db, seed, a.logger); err != nil {
			return provider.Set{}, fmt.Errorf("seed kv store: %w", err)
		}
	default:
		set = stub.New(seed)
	}

	if pc.SystemSource == config.SystemHost {
		set.System = host.New(set.System, pc.DiskPath, a.logger)
	}

	latency, err := pc.LatencyDuration()
	if err != nil {
		return provider.Set{}, err
	}
	a.faults = provider.NewFaults(latency)
	for _, f := range a.cfg.Faults {
		kind, err := model.ParseKind(f.Kind)
		if err != nil {
			return provider.Set{}, err
		}
		a.faults.Fail(kind, provider.Op(f.Op), f.Message)
	}
	return a.faults.Wrap(set), nil
}

// Start runs the store loop until ctx ends.
func (a *app) Start(ctx context.Context) {
	go func() {
		if err := a.store.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("store loop stopped", "error", err)
		}
	}()
}

// Close releases backend resources. Call after the store loop ended.
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
