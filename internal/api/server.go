package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"grimm.is/rampart/internal/brand"
	"grimm.is/rampart/internal/clock"
	"grimm.is/rampart/internal/dispatch"
	"grimm.is/rampart/internal/events"
	"grimm.is/rampart/internal/i18n"
	"grimm.is/rampart/internal/logging"
	"grimm.is/rampart/internal/metrics"
	"grimm.is/rampart/internal/model"
	"grimm.is/rampart/internal/ratelimit"
	"grimm.is/rampart/internal/store"
)

// ServerConfig bounds the HTTP listener. There is no write timeout:
// operation handlers wait as long as the provider takes.
type ServerConfig struct {
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64 // applies to methods with a body
	ShutdownTimeout   time.Duration
}

func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       time.Minute,
		MaxHeaderBytes:    64 << 10,
		MaxBodyBytes:      1 << 20,
		ShutdownTimeout:   5 * time.Second,
	}
}

// Server handles API requests.
type Server struct {
	dispatcher  *dispatch.Dispatcher
	store       *store.Store
	logger      *logging.Logger
	metrics     *metrics.Registry
	metricsPath string
	wsManager   *WSManager
	startTime   time.Time
	cfg         *ServerConfig

	// loginLimiter throttles POST /api/auth/login per client address.
	loginLimiter *ratelimit.Limiter

	mux *http.ServeMux
}

// ServerOptions wires a Server. Only Dispatcher is required.
type ServerOptions struct {
	Dispatcher *dispatch.Dispatcher
	Hub        *events.Hub // Optional: enables /api/ws
	Logger     *logging.Logger
	Metrics    *metrics.Registry // Optional
	// MetricsPath mounts the Prometheus handler. Empty disables it.
	MetricsPath string
	Config      *ServerConfig
	// LoginLimiter is optional. Without it login attempts are unlimited.
	LoginLimiter *ratelimit.Limiter
}

func NewServer(opts ServerOptions) (*Server, error) {
	if opts.Dispatcher == nil {
		return nil, errors.New("api: dispatcher is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultServerConfig()
	}

	s := &Server{
		dispatcher:  opts.Dispatcher,
		store:       opts.Dispatcher.Store(),
		logger:      logger.WithComponent("api"),
		metrics:     opts.Metrics,
		metricsPath: opts.MetricsPath,
		startTime:   clock.Now(),
		cfg:         cfg,

		loginLimiter: opts.LoginLimiter,
	}
	if opts.Hub != nil {
		s.wsManager = NewWSManager(opts.Hub, s.store, s.logger)
	}

	s.initRoutes()
	return s, nil
}

func (s *Server) initRoutes() {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/ws", s.handleWS)

	registerResource(s, mux, s.dispatcher.Firewall)
	registerResource(s, mux, s.dispatcher.VPN)
	registerResource(s, mux, s.dispatcher.Network)
	registerResource(s, mux, s.dispatcher.Users)

	mux.HandleFunc("GET /api/system", s.handleCollection(model.KindSystem))
	mux.HandleFunc("POST /api/system/info/fetch", s.handleFetchInfo)
	mux.HandleFunc("POST /api/system/updates/fetch", s.handleFetchUpdates)
	mux.HandleFunc("POST /api/system/updates/{id}/install", s.handleInstallUpdate)
	mux.HandleFunc("POST /api/system/reboot", s.handleReboot)
	mux.HandleFunc("POST /api/system/clear-error", s.handleClearError(model.KindSystem))

	mux.HandleFunc("GET /api/session", s.handleCollection(model.KindSession))
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("POST /api/session/clear-error", s.handleClearError(model.KindSession))

	if s.metricsPath != "" && s.metrics != nil {
		mux.Handle("GET "+s.metricsPath, s.metrics.Handler())
	}

	// Unknown API routes answer in JSON rather than the mux's text page.
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		WriteErrorCtx(w, r, http.StatusNotFound, "no route for %s %s", r.Method, r.URL.Path)
	})

	s.mux = mux
}

// Handler is the mux behind language negotiation, the access log and the
// body limit, outermost first.
func (s *Server) Handler() http.Handler {
	return i18n.Middleware(AccessLogger(s.logger, s.metrics, limitBody(s.cfg.MaxBodyBytes, s.mux)))
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		MaxHeaderBytes:    s.cfg.MaxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	if s.wsManager != nil {
		go s.wsManager.Run(ctx)
	}
	if s.loginLimiter != nil {
		go s.loginLimiter.Run(ctx, time.Minute)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", "addr", ln.Addr().String())
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("API server stopped")
	return nil
}

// limitBody caps request bodies at maxBytes. Declared oversize bodies are
// refused up front; the rest fail while decoding.
func limitBody(maxBytes int64, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			if r.ContentLength > maxBytes {
				WriteError(w, http.StatusRequestEntityTooLarge, "request entity too large")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		next.ServeHTTP(w, r)
	})
}

// HealthResponse is the body of /api/health.
type HealthResponse struct {
	Status       string `json:"status"`
	Name         string `json:"name"`
	Version      string `json:"version"`
	Uptime       string `json:"uptime"`
	StoreVersion uint64 `json:"storeVersion"`
	StoreRunning bool   `json:"storeRunning"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:       "ok",
		Name:         brand.Name,
		Version:      brand.Version,
		Uptime:       clock.FormatUptime(clock.Since(s.startTime)),
		StoreVersion: s.store.Version(),
		StoreRunning: true,
	}
	status := http.StatusOK
	select {
	case <-s.store.Done():
		resp.Status = "degraded"
		resp.StoreRunning = false
		status = http.StatusServiceUnavailable
	default:
	}
	WriteJSON(w, status, resp)
}
