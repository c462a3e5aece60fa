package server

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"VolScope/internal/collector"
	"VolScope/internal/logger"
	"VolScope/internal/metrics"
	"VolScope/internal/recorder"
	"VolScope/internal/report"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Config holds server configuration.
type Config struct {
	Addr          string
	DefaultTicker string
	Report        report.Options
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	// RequestTimeout bounds one analysis including the upstream fetch.
	RequestTimeout time.Duration
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		DefaultTicker:  "AAPL",
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   45 * time.Second,
		IdleTimeout:    60 * time.Second,
		RequestTimeout: 40 * time.Second,
	}
}

// Server serves the dashboard page and the JSON API.
type Server struct {
	cfg       Config
	router    *mux.Router
	http      *http.Server
	collector *collector.Collector
	history   recorder.HistoryReader
	metrics   *metrics.Registry
	log       *logger.Logger
	validate  *validator.Validate
	page      *template.Template
}

// breakerState is implemented by fetchers guarded by a circuit breaker.
type breakerState interface {
	State() gobreaker.State
}

// New wires routes and middleware. history may be nil.
func New(cfg Config, col *collector.Collector, history recorder.HistoryReader, m *metrics.Registry, log *logger.Logger) *Server {
	def := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.DefaultTicker == "" {
		cfg.DefaultTicker = def.DefaultTicker
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}

	s := &Server{
		cfg:       cfg,
		router:    mux.NewRouter(),
		collector: col,
		history:   history,
		metrics:   m,
		log:       log.Named("server"),
		validate:  validator.New(),
		page:      pageTemplate,
	}
	s.setupRoutes()
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.accessLogMiddleware)
	s.router.Use(s.metricsMiddleware)

	s.router.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(jsonContentTypeMiddleware)
	api.HandleFunc("/volatility/{ticker}", s.handleVolatility).Methods(http.MethodGet)
	api.HandleFunc("/history/{ticker}", s.handleHistory).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks until the server stops. http.ErrServerClosed signals a clean shutdown.
func (s *Server) ListenAndServe() error {
	s.log.Info("starting http server", zap.String("addr", s.cfg.Addr))
	return s.http.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down http server")
	return s.http.Shutdown(ctx)
}
