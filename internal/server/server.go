// Package server assembles the HTTP + WebSocket API: routes, middleware
// chain, and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pmfollow/followbot/internal/domain"
	"github.com/pmfollow/followbot/internal/server/handler"
	"github.com/pmfollow/followbot/internal/server/middleware"
	"github.com/pmfollow/followbot/internal/server/ws"
)

// Config holds the HTTP server parameters.
type Config struct {
	Port            int
	CORSOrigins     []string
	RateLimit       int // requests per window; 0 disables limiting
	RateLimitWindow time.Duration
}

// Handlers aggregates the API handlers registered on the mux.
type Handlers struct {
	Health  *handler.HealthHandler
	Config  *handler.ConfigHandler
	Monitor *handler.MonitorHandler
	Trades  *handler.TradesHandler
}

// Server is the dashboard-facing HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server with all routes registered and the middleware chain
// (rate limit, logging, CORS) applied.
func New(cfg Config, handlers Handlers, hub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", handlers.Health.Check)

	mux.HandleFunc("GET /api/config", handlers.Config.Get)
	mux.HandleFunc("PUT /api/config", handlers.Config.Update)
	mux.HandleFunc("POST /api/config", handlers.Config.AddWallet)

	mux.HandleFunc("GET /api/monitor", handlers.Monitor.Get)
	mux.HandleFunc("POST /api/monitor", handlers.Monitor.Control)

	mux.HandleFunc("GET /api/trades", handlers.Trades.List)
	mux.HandleFunc("POST /api/trades", handlers.Trades.Execute)
	mux.HandleFunc("DELETE /api/trades/{id}", handlers.Trades.Cancel)

	if hub != nil {
		mux.HandleFunc("GET /ws", hub.HandleWS)
	}

	var h http.Handler = mux
	if limiter != nil && cfg.RateLimit > 0 {
		h = middleware.RateLimit(limiter, cfg.RateLimit, cfg.RateLimitWindow)(h)
	}
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      h,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger.With("component", "server"),
	}
}

// Start listens and serves until the server fails or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
