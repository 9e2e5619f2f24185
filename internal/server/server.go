// Package server is the HTTP trigger surface: health, tick triggers,
// topic discovery, and scan endpoints. Everything it does is a thin call
// into the scheduler.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"seoforge/internal/config"
	"seoforge/internal/core"
	"seoforge/internal/logger"
	"seoforge/internal/scheduler"
)

// Orchestrator is the scheduler surface the HTTP handlers call.
type Orchestrator interface {
	Tick(ctx context.Context, now time.Time) (int, error)
	RunWebsite(ctx context.Context, websiteID string) (scheduler.RunOutcome, error)
	DiscoverTopics(ctx context.Context, websiteID string, count int) ([]core.Topic, error)
	ScanWebsite(ctx context.Context, websiteID string) (*core.WebsiteScan, error)
	PreviewScan(ctx context.Context, domain string) (*core.WebsiteScan, error)
}

// Server represents the HTTP server.
type Server struct {
	router       *chi.Mux
	httpServer   *http.Server
	orchestrator Orchestrator
	config       config.Server
}

// New creates a new HTTP server instance.
func New(orchestrator Orchestrator, cfg config.Server) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		orchestrator: orchestrator,
		config:       cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // a full run can take a while
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/health", s.handleHealth)

	s.router.Get("/trigger", s.handleTrigger)
	s.router.Get("/generate", s.handleTrigger)

	s.router.Get("/discover-topics", s.handleDiscover)
	s.router.Get("/discover", s.handleDiscover)

	s.router.Get("/scan", s.handleScan)
	s.router.Get("/scan-preview", s.handleScanPreview)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logger.Info("starting http server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("shutting down http server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Router returns the chi router instance (useful for testing).
func (s *Server) Router() *chi.Mux {
	return s.router
}
