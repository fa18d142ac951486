// Package httpserver provides the HTTP REST API of the paper search service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/observability"
)

// Searcher runs a paper search. *search.Service satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) (*domain.SearchResult, error)
}

// Server is the HTTP REST API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	searcher   Searcher
	validate   *validator.Validate
	limits     Limits
	logger     zerolog.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	Limits          Limits
}

// Limits bounds the query parameters of a search request.
type Limits struct {
	DefaultLimit   int
	MaxLimit       int
	MinQueryLength int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{DefaultLimit: 10, MaxLimit: 50, MinQueryLength: 3}
}

// Option configures optional Server behavior.
type Option func(*Server)

// WithClock overrides the time source used by the health endpoint.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer creates a new HTTP server. metrics may be nil.
func NewServer(cfg Config, searcher Searcher, logger zerolog.Logger, metrics *observability.Metrics, opts ...Option) *Server {
	limits := cfg.Limits
	defaults := DefaultLimits()
	if limits.DefaultLimit <= 0 {
		limits.DefaultLimit = defaults.DefaultLimit
	}
	if limits.MaxLimit <= 0 {
		limits.MaxLimit = defaults.MaxLimit
	}
	if limits.MinQueryLength <= 0 {
		limits.MinQueryLength = defaults.MinQueryLength
	}

	s := &Server{
		searcher: searcher,
		validate: validator.New(),
		limits:   limits,
		logger:   logger.With().Str("component", "http-server").Logger(),
		metrics:  metrics,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(correlationIDMiddleware)
	for _, mw := range accessLogMiddleware(s.logger) {
		r.Use(mw)
	}
	r.Use(s.metricsMiddleware)
	r.Use(recoverMiddleware)
	r.Use(corsMiddleware)

	r.Get("/health", s.healthHandler)
	r.Get("/api/search/papers", s.searchPapers)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	now := s.now()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: float64(now.UnixNano()) / float64(time.Second),
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response with an empty paper list.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, newErrorResponse(message))
}
