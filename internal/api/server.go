package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/opensource-finance/fraudshield/internal/domain"
	"github.com/opensource-finance/fraudshield/internal/metrics"
)

// Server is the FraudShield HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  domain.ServerConfig
}

// NewServer creates a new API server with all routes and middleware wired.
func NewServer(cfg domain.ServerConfig, handler *Handler, cache domain.Cache) *Server {
	r := chi.NewRouter()

	// Global middleware, outermost first
	r.Use(CORSMiddleware)
	r.Use(RecoverMiddleware)
	r.Use(TracingMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))

	// Open endpoints
	r.Get("/", handler.Root)
	r.Get("/health", handler.Health)
	r.Get("/ready", handler.Ready)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Tenant-scoped API
	r.Route("/transactions", func(r chi.Router) {
		r.Use(TenantMiddleware)
		r.Use(APIKeyMiddleware(cfg.APIKey))
		r.Use(RateLimitMiddleware(cache, cfg.RateLimit))

		r.Post("/", handler.CreateTransaction)
		r.Get("/", handler.ListTransactions)
		r.Get("/{id}", handler.GetTransaction)
		r.Get("/{id}/patterns", handler.GetPatternMatches)
		r.Put("/{id}/status", handler.UpdateStatus)
		r.Get("/{id}/audit", handler.GetAuditTrail)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}

	return &Server{
		router:  r,
		handler: handler,
		server:  srv,
		config:  cfg,
	}
}

// Start begins listening for HTTP requests. Blocks until the server stops.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
