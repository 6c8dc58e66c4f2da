// Package admin serves the operator HTTP API: health, Prometheus metrics,
// and per-player encounter state and modifiers.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wildstep/internal/game"
)

// Players is the slice of the game loop the admin API needs.
type Players interface {
	Statuses() []game.PlayerStatus
	Online() int
	UpdateModifiers(ctx context.Context, playerID string, update game.ModifierUpdate) error
}

// Server is the admin HTTP server.
type Server struct {
	httpServer *http.Server
	log        *slog.Logger
}

// NewServer builds the admin router on addr.
func NewServer(addr, version string, players Players, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "admin")
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(version, players, log),
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// NewRouter wires the admin routes.
func NewRouter(version string, players Players, log *slog.Logger) http.Handler {
	h := &handlers{players: players, validate: validator.New(), version: version, log: log}

	r := chi.NewRouter()
	r.Use(loggingMiddleware(log))

	r.Get("/healthz", h.healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/players", func(r chi.Router) {
		r.Get("/", h.listPlayers)
		r.Get("/{id}", h.getPlayer)
		r.Post("/{id}/modifiers", h.updateModifiers)
	})
	return r
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("admin server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("admin listen: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Scrapes and probes are too noisy to log
			if strings.HasPrefix(r.URL.Path, "/healthz") || strings.HasPrefix(r.URL.Path, "/metrics") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.statusCode,
				"duration", time.Since(start))
		})
	}
}
