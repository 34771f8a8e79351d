package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pmfollow/followbot/internal/config"
	"github.com/pmfollow/followbot/internal/domain"
)

// Monitor runs one watcher goroutine per active tracked wallet and funnels
// detected whale trades onto a single buffered channel. It can be started
// and stopped repeatedly at runtime; both operations are idempotent. A
// supervisor loop reconciles the watcher set against the wallet registry, so
// wallets added or paused through the API take effect without a restart.
type Monitor struct {
	settings *config.Store
	source   Source
	cfg      config.MonitorConfig
	logger   *slog.Logger

	events chan domain.WhaleTradeEvent

	mu        sync.Mutex
	baseCtx   context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	status    domain.MonitorStatus
	startedAt time.Time
}

// New creates a Monitor. Events() must be consumed while the monitor is
// running or the watchers will stall once the buffer fills.
func New(settings *config.Store, source Source, cfg config.MonitorConfig, logger *slog.Logger) *Monitor {
	return &Monitor{
		settings: settings,
		source:   source,
		cfg:      cfg,
		logger:   logger.With("component", "monitor"),
		events:   make(chan domain.WhaleTradeEvent, cfg.BufferSize),
		status:   domain.MonitorStopped,
	}
}

// Events returns the channel of detected whale trades. The channel is closed
// when Run returns.
func (m *Monitor) Events() <-chan domain.WhaleTradeEvent {
	return m.events
}

// Run anchors the monitor's lifecycle to ctx and blocks until ctx is
// cancelled. It auto-starts watching when configured to, stops all watchers
// on the way out, and closes the event channel so the consumer can drain.
func (m *Monitor) Run(ctx context.Context) error {
	m.mu.Lock()
	m.baseCtx = ctx
	m.mu.Unlock()

	if m.cfg.AutoStart {
		m.Start()
	}

	<-ctx.Done()
	m.Stop()
	close(m.events)
	return ctx.Err()
}

// Start begins monitoring all active wallets. It reports whether the call
// changed the state; starting an already-running monitor is a no-op.
func (m *Monitor) Start() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status == domain.MonitorRunning {
		return false
	}
	if m.baseCtx == nil {
		// Run has not been called yet; nothing to anchor watchers to.
		return false
	}

	ctx, cancel := context.WithCancel(m.baseCtx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.status = domain.MonitorRunning
	m.startedAt = time.Now().UTC()

	go m.supervise(ctx, m.done)

	m.logger.Info("monitor started", "min_whale_amount", m.cfg.MinWhaleAmount)
	return true
}

// Stop halts all watchers. It reports whether the call changed the state;
// stopping an already-stopped monitor is a no-op.
func (m *Monitor) Stop() bool {
	m.mu.Lock()
	if m.status != domain.MonitorRunning {
		m.mu.Unlock()
		return false
	}
	cancel, done := m.cancel, m.done
	m.status = domain.MonitorStopped
	m.startedAt = time.Time{}
	m.mu.Unlock()

	cancel()
	<-done

	m.logger.Info("monitor stopped")
	return true
}

// Status returns the monitor's operational state.
func (m *Monitor) Status() domain.MonitorStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Uptime returns how long the monitor has been running, or zero when it is
// stopped.
func (m *Monitor) Uptime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != domain.MonitorRunning {
		return 0
	}
	return time.Since(m.startedAt)
}

// supervise reconciles the watcher set against the active wallet registry
// once per polling interval, spawning watchers for newly activated wallets
// and cancelling watchers whose wallets were paused or removed.
func (m *Monitor) supervise(ctx context.Context, done chan struct{}) {
	defer close(done)

	var wg sync.WaitGroup
	defer wg.Wait()

	watchers := make(map[string]context.CancelFunc) // wallet address -> cancel

	reconcile := func() {
		active := make(map[string]domain.TrackedWallet)
		for _, w := range m.settings.ActiveWallets() {
			active[w.Address] = w
		}

		for addr, cancel := range watchers {
			if _, ok := active[addr]; !ok {
				cancel()
				delete(watchers, addr)
				m.logger.Debug("watcher removed", "wallet", addr)
			}
		}
		for addr, w := range active {
			if _, ok := watchers[addr]; ok {
				continue
			}
			wctx, wcancel := context.WithCancel(ctx)
			watchers[addr] = wcancel
			wg.Add(1)
			go func(w domain.TrackedWallet) {
				defer wg.Done()
				m.watch(wctx, w)
			}(w)
			m.logger.Debug("watcher added", "wallet", addr, "label", w.Label)
		}
	}

	reconcile()
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.interval()):
			reconcile()
		}
	}
}

// watch polls the feed for one wallet until its context is cancelled. The
// polling interval is re-read each cycle so config updates apply live.
func (m *Monitor) watch(ctx context.Context, wallet domain.TrackedWallet) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.interval()):
		}

		ev, err := m.source.Next(ctx, wallet)
		if err != nil {
			if errors.Is(err, ErrNoTrade) || errors.Is(err, context.Canceled) {
				continue
			}
			m.logger.Error("feed error", "wallet", wallet.Address, "error", err)
			continue
		}

		if ev.Amount < m.cfg.MinWhaleAmount {
			m.logger.Debug("trade below threshold",
				"wallet", wallet.Address,
				"amount", ev.Amount,
				"min", m.cfg.MinWhaleAmount)
			continue
		}

		select {
		case m.events <- ev:
			m.settings.TouchWallet(wallet.Address, ev.Timestamp)
			m.logger.Info("whale trade detected",
				"id", ev.ID,
				"wallet", wallet.Address,
				"label", wallet.Label,
				"market", ev.MarketID,
				"side", ev.Side,
				"amount", ev.Amount,
				"price", ev.Price)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) interval() time.Duration {
	follow, _ := m.settings.Follow()
	return follow.MonitorInterval()
}
