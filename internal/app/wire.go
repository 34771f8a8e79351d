package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pmfollow/followbot/internal/cache/memory"
	"github.com/pmfollow/followbot/internal/cache/redis"
	"github.com/pmfollow/followbot/internal/config"
	"github.com/pmfollow/followbot/internal/domain"
	"github.com/pmfollow/followbot/internal/engine"
	"github.com/pmfollow/followbot/internal/follower"
	"github.com/pmfollow/followbot/internal/ledger"
	"github.com/pmfollow/followbot/internal/monitor"
	"github.com/pmfollow/followbot/internal/notify"
	"github.com/pmfollow/followbot/internal/service"
)

// syntheticEmitChance is the probability that one polling cycle of the
// synthetic feed produces a whale trade.
const syntheticEmitChance = 0.3

// Dependencies bundles everything the application modes need to operate.
// Constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Settings    *config.Store
	Ledger      *ledger.Ledger
	SignalBus   domain.SignalBus
	RateLimiter domain.RateLimiter
	Notifier    *notify.Notifier
	Executor    engine.Executor
	Monitor     *monitor.Monitor
	Follower    *follower.Follower
	TradeSvc    *service.TradeService
}

// Wire constructs the concrete dependency implementations from the
// configuration. Redis-backed bus and limiter are used when an address is
// configured; otherwise the in-process implementations serve single-instance
// deployments.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Settings: config.NewStore(cfg),
		Ledger:   ledger.New(),
	}

	// --- Signal bus + rate limiter (Redis or in-process) ---
	if cfg.Redis.Addr != "" {
		client, err := redis.New(ctx, redis.ClientConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })

		deps.SignalBus = redis.NewSignalBus(client)
		deps.RateLimiter = redis.NewRateLimiter(client)
		logger.Info("using redis signal bus", "addr", cfg.Redis.Addr)
	} else {
		deps.SignalBus = memory.NewSignalBus()
		deps.RateLimiter = memory.NewRateLimiter()
		logger.Info("using in-process signal bus")
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.New(senders, deps.Settings, logger)

	// --- Execution engine ---
	rng := engine.NewRandomSource(cfg.Sim.Seed)
	simCfg := engine.SimulatorConfig{
		SuccessRate: cfg.Sim.SuccessRate,
		SlippageMin: cfg.Sim.SlippageMin,
		SlippageMax: cfg.Sim.SlippageMax,
		PnLMin:      cfg.Sim.PnLMin,
		PnLMax:      cfg.Sim.PnLMax,
		Latency:     time.Duration(cfg.Sim.LatencyMs) * time.Millisecond,
	}
	if err := simCfg.Validate(); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: simulator: %w", err)
	}
	deps.Executor = engine.NewSimulator(simCfg, rng, logger)

	// --- Monitor + follower pipeline ---
	monCfg := cfg.Monitor
	if strings.ToLower(cfg.Mode) == "server" {
		// Server mode leaves monitoring to the start endpoint.
		monCfg.AutoStart = false
	}
	source := monitor.NewSyntheticSource(rng, syntheticEmitChance)
	deps.Monitor = monitor.New(deps.Settings, source, monCfg, logger)

	execTimeout := time.Duration(cfg.Sim.ExecTimeoutMs) * time.Millisecond
	deps.Follower = follower.New(
		deps.Ledger, deps.Executor, deps.Settings, deps.SignalBus, deps.Notifier, execTimeout, logger)

	deps.TradeSvc = service.New(
		deps.Ledger, deps.Executor, deps.Settings, deps.SignalBus, deps.Notifier, deps.Monitor, execTimeout, logger)

	return deps, cleanup, nil
}
