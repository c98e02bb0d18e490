package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mumo-labs/ingest/internal/logstore"

	"github.com/gorilla/mux"
)

// MaxPayloadBytes is the largest request body accepted by the write endpoint.
const MaxPayloadBytes = 262_144_000

// Config carries the optional server settings.
type Config struct {
	// Secret, when non-empty, must be presented as the key query parameter
	// on every record request.
	Secret string
	// MaxPayloadBytes overrides the write body cap; zero means the default.
	MaxPayloadBytes int64
	// Tracer enables distributed tracing when non-nil.
	Tracer *Tracer
}

// Server represents the HTTP API server
type Server struct {
	router     *mux.Router
	store      *logstore.Store
	metrics    *Metrics
	tracer     *Tracer
	secret     string
	maxPayload int64
	httpServer *http.Server
}

// NewServer creates a new API server instance
func NewServer(store *logstore.Store, cfg Config) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		store:      store,
		metrics:    NewMetrics(),
		tracer:     cfg.Tracer,
		secret:     cfg.Secret,
		maxPayload: cfg.MaxPayloadBytes,
	}
	if s.maxPayload <= 0 {
		s.maxPayload = MaxPayloadBytes
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(
		LoggingMiddleware,
		RecoveryMiddleware,
		s.metrics.Middleware,
	)
	if s.tracer != nil {
		s.router.Use(s.tracer.TracingMiddleware)
	}

	// Operational endpoints, outside the access guard.
	s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	// Record endpoints
	records := s.router.PathPrefix("/").Subrouter()
	if s.secret != "" {
		records.Use(SecretGuard(s.secret))
	}
	records.HandleFunc("/", s.handleRead).Methods(http.MethodGet)
	records.HandleFunc("/", s.handleWrite).Methods(http.MethodPost)
}

// Router returns the configured handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.router}

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
