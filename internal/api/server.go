// Package api provides the HTTP server and routing for the reconciliation
// engine.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mirchez/transaction-reconciler-sub001/internal/api/handlers"
	"github.com/mirchez/transaction-reconciler-sub001/internal/api/middleware"
	"github.com/mirchez/transaction-reconciler-sub001/internal/application/service"
	"github.com/mirchez/transaction-reconciler-sub001/internal/infrastructure/storage"
)

// Server wraps the HTTP server with its dependencies.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
}

// Config holds server construction options.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// NewServer builds the router and wires all handlers.
func NewServer(cfg Config, repo storage.Repository, svc *service.ReconcileService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logging(logger))

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowedOrigins = cfg.AllowedOrigins
	}
	r.Use(middleware.CORS(corsCfg))

	recordsHandler := handlers.NewRecordsHandler(repo)
	reconcileHandler := handlers.NewReconcileHandler(repo, svc)
	matchesHandler := handlers.NewMatchesHandler(repo)
	statsHandler := handlers.NewStatsHandler(repo)
	runsHandler := handlers.NewRunsHandler(repo)

	r.Method(http.MethodGet, "/health", handlers.NewHealthHandler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts/{account}", func(r chi.Router) {
			r.Post("/bank-transactions", recordsHandler.IngestBank)
			r.Post("/ledger-entries", recordsHandler.IngestLedger)
			r.Post("/reconcile", reconcileHandler.Run)
			r.Get("/matches", matchesHandler.List)
			r.Get("/stats", statsHandler.Get)
		})
		r.Delete("/accounts/{account}", recordsHandler.Reset)

		r.Get("/runs", runsHandler.List)
		r.Get("/runs/{id}", runsHandler.Get)
	})

	return &Server{
		router: r,
		logger: logger,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

// Router exposes the router for tests.
func (s *Server) Router() chi.Router {
	return s.router
}

// Start begins listening. Blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
