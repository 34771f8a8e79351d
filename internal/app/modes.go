package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pmfollow/followbot/internal/server"
	"github.com/pmfollow/followbot/internal/server/handler"
	"github.com/pmfollow/followbot/internal/server/ws"
)

// MonitorMode runs the whale monitor and follower pipeline without the HTTP
// API. Notifications and the signal bus still operate.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startPipeline(ctx, g, deps)
	return g.Wait()
}

// ServerMode runs the HTTP + WebSocket API. The monitor is wired but idle
// until started through the API.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startPipeline(ctx, g, deps)
	a.startServer(ctx, g, deps)
	return g.Wait()
}

// FullMode runs the complete system: monitoring, following, and the API.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startPipeline(ctx, g, deps)
	a.startServer(ctx, g, deps)
	return g.Wait()
}

// startPipeline launches the monitor and the follower consuming its events.
func (a *App) startPipeline(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	g.Go(func() error {
		return deps.Monitor.Run(ctx)
	})
	g.Go(func() error {
		return deps.Follower.Run(ctx, deps.Monitor.Events())
	})
}

// startServer launches the WebSocket hub and the HTTP server, with graceful
// shutdown bound to ctx.
func (a *App) startServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	hub := ws.NewHub(deps.SignalBus, deps.TradeSvc.MonitorStatus, a.cfg.Server.CORSOrigins, a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	startedAt := time.Now().UTC()
	srv := server.New(
		server.Config{
			Port:            a.cfg.Server.Port,
			CORSOrigins:     a.cfg.Server.CORSOrigins,
			RateLimit:       a.cfg.Server.RateLimit,
			RateLimitWindow: a.cfg.Server.RateLimitWindow.Duration,
		},
		server.Handlers{
			Health:  handler.NewHealthHandler(startedAt),
			Config:  handler.NewConfigHandler(deps.Settings, a.logger),
			Monitor: handler.NewMonitorHandler(deps.TradeSvc, a.logger),
			Trades:  handler.NewTradesHandler(deps.TradeSvc, a.logger),
		},
		hub,
		deps.RateLimiter,
		a.logger,
	)

	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
