// Package service implements the application operations behind the HTTP
// API: manual follow execution, cancellation, trade queries, and the
// dashboard statistics snapshot.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pmfollow/followbot/internal/config"
	"github.com/pmfollow/followbot/internal/domain"
	"github.com/pmfollow/followbot/internal/engine"
	"github.com/pmfollow/followbot/internal/ledger"
	"github.com/pmfollow/followbot/internal/monitor"
	"github.com/pmfollow/followbot/internal/notify"
)

// TradeService coordinates the ledger, executor, and broadcast channels for
// API-driven operations.
type TradeService struct {
	ledger      *ledger.Ledger
	executor    engine.Executor
	settings    *config.Store
	bus         domain.SignalBus
	notifier    *notify.Notifier
	mon         *monitor.Monitor
	execTimeout time.Duration
	logger      *slog.Logger
}

// New creates a TradeService.
func New(
	l *ledger.Ledger,
	executor engine.Executor,
	settings *config.Store,
	bus domain.SignalBus,
	notifier *notify.Notifier,
	mon *monitor.Monitor,
	execTimeout time.Duration,
	logger *slog.Logger,
) *TradeService {
	return &TradeService{
		ledger:      l,
		executor:    executor,
		settings:    settings,
		bus:         bus,
		notifier:    notifier,
		mon:         mon,
		execTimeout: execTimeout,
		logger:      logger.With("component", "trade_service"),
	}
}

// Follow executes a follow trade for a recorded whale trade. It works
// regardless of the auto-execute setting; a manual trigger is an explicit
// operator decision. When amountOverride is positive it stands in for the
// whale's notional, so the sizing policy still applies its band and position
// cap. The terminal record is appended to the ledger and broadcast.
func (s *TradeService) Follow(ctx context.Context, whaleTradeID string, amountOverride float64) (domain.FollowTrade, error) {
	ev, err := s.ledger.GetWhale(ctx, whaleTradeID)
	if err != nil {
		return domain.FollowTrade{}, err
	}
	if amountOverride > 0 {
		ev.Amount = amountOverride
	}

	follow, _ := s.settings.Follow()

	execCtx, cancel := context.WithTimeout(ctx, s.execTimeout)
	defer cancel()
	trade, err := s.executor.Execute(execCtx, ev, follow)
	if err != nil {
		return domain.FollowTrade{}, err
	}

	if err := s.ledger.AppendFollow(ctx, trade); err != nil {
		return domain.FollowTrade{}, err
	}

	s.logger.Info("manual follow executed",
		"id", trade.ID,
		"whale_trade_id", whaleTradeID,
		"status", trade.Status,
		"follow_amount", trade.FollowAmount)

	s.publish(ctx, domain.ChannelFollowTrades, "follow_trade", trade)

	title, message := notify.FormatFollowTrade(trade)
	_ = s.notifier.Notify(ctx, notify.FollowEvent(trade.Status), title, message)

	return trade, nil
}

// Cancel moves a PENDING follow trade to CANCELLED. Trades already in a
// terminal state fail with domain.ErrInvalidStateTransition.
func (s *TradeService) Cancel(ctx context.Context, id string) (domain.FollowTrade, error) {
	trade, err := s.ledger.Transition(ctx, id, domain.StatusCancelled, domain.FollowResult{})
	if err != nil {
		return domain.FollowTrade{}, err
	}

	s.logger.Info("follow trade cancelled", "id", id)
	s.publish(ctx, domain.ChannelFollowTrades, "follow_trade", trade)
	return trade, nil
}

// WhaleTrades lists recorded whale trades.
func (s *TradeService) WhaleTrades(ctx context.Context, opts domain.ListOpts) ([]domain.WhaleTradeEvent, error) {
	return s.ledger.ListWhale(ctx, opts)
}

// FollowTrades lists recorded follow trades.
func (s *TradeService) FollowTrades(ctx context.Context, opts domain.ListOpts) ([]domain.FollowTrade, error) {
	return s.ledger.ListFollow(ctx, opts)
}

// FollowTrade returns one follow trade by id.
func (s *TradeService) FollowTrade(ctx context.Context, id string) (domain.FollowTrade, error) {
	return s.ledger.GetFollow(ctx, id)
}

// Stats assembles the dashboard snapshot from the ledger aggregates, the
// wallet registry, and the monitor state.
func (s *TradeService) Stats(now time.Time) domain.DashboardStats {
	ls := s.ledger.Stats(now)
	return domain.DashboardStats{
		TotalPnL:      ls.TotalPnL,
		TotalTrades:   ls.TotalTrades,
		WinRate:       ls.WinRate,
		ActiveWallets: len(s.settings.ActiveWallets()),
		TodayTrades:   ls.TodayTrades,
		TodayPnL:      ls.TodayPnL,
		MonitorStatus: s.mon.Status(),
		Uptime:        s.mon.Uptime().Truncate(time.Second).String(),
	}
}

// StartMonitor starts whale monitoring and broadcasts the status change.
// It reports whether the state changed.
func (s *TradeService) StartMonitor(ctx context.Context) bool {
	changed := s.mon.Start()
	if changed {
		s.publish(ctx, domain.ChannelStatus, "monitor_status", map[string]any{"status": s.mon.Status()})
	}
	return changed
}

// StopMonitor stops whale monitoring and broadcasts the status change. It
// reports whether the state changed.
func (s *TradeService) StopMonitor(ctx context.Context) bool {
	changed := s.mon.Stop()
	if changed {
		s.publish(ctx, domain.ChannelStatus, "monitor_status", map[string]any{"status": s.mon.Status()})
	}
	return changed
}

// MonitorStatus returns the monitor's operational state and uptime.
func (s *TradeService) MonitorStatus() (domain.MonitorStatus, time.Duration) {
	return s.mon.Status(), s.mon.Uptime()
}

func (s *TradeService) publish(ctx context.Context, channel, eventType string, data any) {
	payload, err := json.Marshal(domain.BusEvent{Type: eventType, Data: data})
	if err != nil {
		s.logger.Error("marshal bus event", "channel", channel, "error", err)
		return
	}
	if err := s.bus.Publish(ctx, channel, payload); err != nil {
		s.logger.Error("publish bus event", "channel", channel, "error", err)
	}
}
