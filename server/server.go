// Package server handles HTTP endpoints and request routing.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"unislay-landing/subscribe"
)

// Subscriber runs the subscription workflow.
type Subscriber interface {
	Subscribe(ctx context.Context, rawEmail string) subscribe.Outcome
}

// Pinger checks a dependency for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server handles HTTP requests.
type Server struct {
	subscriber  Subscriber
	health      Pinger
	logger      *slog.Logger
	metrics     *metrics
	gatherer    prometheus.Gatherer
	staticDir   string
	corsOrigins map[string]bool
	production  bool
}

// Config holds server configuration.
type Config struct {
	Subscriber  Subscriber
	Health      Pinger
	Logger      *slog.Logger
	Registry    *prometheus.Registry // Defaults to a fresh registry
	StaticDir   string               // Empty disables static file serving
	CORSOrigins []string
	Production  bool // Hide internal error detail from responses
}

// New creates a new HTTP server handler.
func New(cfg *Config) *Server {
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	origins := make(map[string]bool, len(cfg.CORSOrigins))
	for _, o := range cfg.CORSOrigins {
		origins[o] = true
	}
	return &Server{
		subscriber:  cfg.Subscriber,
		health:      cfg.Health,
		logger:      cfg.Logger,
		metrics:     newMetrics(reg),
		gatherer:    reg,
		staticDir:   cfg.StaticDir,
		corsOrigins: origins,
		production:  cfg.Production,
	}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(s.cors)
		r.With(s.instrument("/api/subscribe")).Post("/subscribe", s.handleSubscribe)
		r.Options("/subscribe", s.handlePreflight)
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			s.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		})
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		})
	})

	if s.staticDir != "" {
		r.Get("/*", s.handleStatic)
	}

	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			s.logger.Warn("Health check failed", "error", err)
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}
