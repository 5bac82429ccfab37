package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"grimm.is/rampart/internal/api"
	"grimm.is/rampart/internal/config"
	"grimm.is/rampart/internal/metrics"
	"grimm.is/rampart/internal/ratelimit"
)

func newServeCmd() *cobra.Command {
	var listen string
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and change feed",
		Long: `Serve the JSON API, the websocket change feed and the Prometheus
endpoint. Every collection is fetched once at startup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return RunServe(ctx, cfg)
		},
	}
	c.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides the config file)")
	return c
}

// RunServe serves the API until ctx is cancelled.
func RunServe(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg)

	var reg *metrics.Registry
	if cfg.Metrics.IsEnabled() {
		reg = metrics.Get()
	}

	a, err := newApp(cfg, logger, reg)
	if err != nil {
		return err
	}
	defer a.Close()

	storeCtx, stopStore := context.WithCancel(context.WithoutCancel(ctx))
	defer func() {
		stopStore()
		<-a.store.Done()
	}()
	a.Start(storeCtx)

	metricsPath := ""
	if cfg.Metrics.IsEnabled() {
		metricsPath = cfg.Metrics.Path
	}
	var limiter *ratelimit.Limiter
	if l := cfg.LoginLimit; l.IsEnabled() {
		window, err := l.WindowDuration()
		if err != nil {
			return err
		}
		limiter = ratelimit.NewLimiter(l.Attempts, window, nil)
	}

	server, err := api.NewServer(api.ServerOptions{
		Dispatcher:   a.dispatcher,
		Hub:          a.hub,
		Logger:       logger,
		Metrics:      reg,
		MetricsPath:  metricsPath,
		LoginLimiter: limiter,
	})
	if err != nil {
		return err
	}

	if err := a.dispatcher.Refresh(ctx); err != nil {
		logger.Warn("initial fetch incomplete", "error", err)
	}

	logger.Info("serving", "listen", cfg.Listen, "backend", cfg.Provider.Backend, "system", cfg.Provider.SystemSource)
	return server.Start(ctx, cfg.Listen)
}
