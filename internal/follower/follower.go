// Package follower consumes detected whale trades, records them in the
// ledger, fans them out to the signal bus and notification channels, and —
// when auto-execution is enabled — runs the follow trade through the
// executor.
package follower

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pmfollow/followbot/internal/config"
	"github.com/pmfollow/followbot/internal/domain"
	"github.com/pmfollow/followbot/internal/engine"
	"github.com/pmfollow/followbot/internal/notify"
)

// dedupTTL is how long a whale trade id is remembered for duplicate
// suppression.
const dedupTTL = 10 * time.Minute

// Follower is the event consumer between the monitor and the ledger.
type Follower struct {
	ledger      domain.TradeLedger
	executor    engine.Executor
	settings    *config.Store
	bus         domain.SignalBus
	notifier    *notify.Notifier
	dedup       *dedup
	execTimeout time.Duration
	logger      *slog.Logger
}

// New creates a Follower. execTimeout bounds each auto-execution; a trade
// still in flight past the deadline is marked FAILED.
func New(
	ledger domain.TradeLedger,
	executor engine.Executor,
	settings *config.Store,
	bus domain.SignalBus,
	notifier *notify.Notifier,
	execTimeout time.Duration,
	logger *slog.Logger,
) *Follower {
	return &Follower{
		ledger:      ledger,
		executor:    executor,
		settings:    settings,
		bus:         bus,
		notifier:    notifier,
		dedup:       newDedup(dedupTTL),
		execTimeout: execTimeout,
		logger:      logger.With("component", "follower"),
	}
}

// Run consumes events until the channel is closed. On context cancellation
// the remaining buffered events are still recorded in the ledger (without
// execution or notification) so no detected trade is lost.
func (f *Follower) Run(ctx context.Context, events <-chan domain.WhaleTradeEvent) error {
	sweep := time.NewTicker(time.Minute)
	defer sweep.Stop()

	for {
		select {
		case <-sweep.C:
			f.dedup.sweep()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			f.handle(ctx, ev)
		case <-ctx.Done():
			f.drain(events)
			return ctx.Err()
		}
	}
}

// drain records the events still buffered at shutdown.
func (f *Follower) drain(events <-chan domain.WhaleTradeEvent) {
	ctx := context.Background()
	for ev := range events {
		if f.dedup.observe(ev.ID) {
			continue
		}
		if err := f.ledger.AppendWhale(ctx, ev); err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
			f.logger.Error("record whale trade during drain", "id", ev.ID, "error", err)
		}
	}
}

func (f *Follower) handle(ctx context.Context, ev domain.WhaleTradeEvent) {
	if f.dedup.observe(ev.ID) {
		f.logger.Debug("duplicate whale trade dropped", "id", ev.ID)
		return
	}

	if err := f.ledger.AppendWhale(ctx, ev); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			f.logger.Debug("whale trade already recorded", "id", ev.ID)
			return
		}
		f.logger.Error("record whale trade", "id", ev.ID, "error", err)
		return
	}

	f.publish(ctx, domain.ChannelWhaleTrades, "whale_trade", ev)

	title, message := notify.FormatWhaleTrade(ev)
	_ = f.notifier.Notify(ctx, notify.EventWhaleTrade, title, message)

	follow, _ := f.settings.Follow()
	if !follow.AutoExecute {
		return
	}
	f.autoFollow(ctx, ev, follow)
}

// autoFollow records a PENDING follow trade, executes it under the
// configured timeout, and applies the terminal outcome.
func (f *Follower) autoFollow(ctx context.Context, ev domain.WhaleTradeEvent, follow domain.FollowConfig) {
	pending := domain.FollowTrade{
		ID:             "ft_" + uuid.NewString(),
		WhaleTradeID:   ev.ID,
		WalletAddress:  ev.WalletAddress,
		WalletLabel:    ev.WalletLabel,
		MarketID:       ev.MarketID,
		MarketQuestion: ev.MarketQuestion,
		Outcome:        ev.Outcome,
		Side:           ev.Side,
		WhaleAmount:    ev.Amount,
		WhalePrice:     ev.Price,
		Status:         domain.StatusPending,
		CreatedAt:      time.Now().UTC(),
	}
	if err := f.ledger.AppendFollow(ctx, pending); err != nil {
		f.logger.Error("record pending follow trade", "id", pending.ID, "error", err)
		return
	}
	f.publish(ctx, domain.ChannelFollowTrades, "follow_trade", pending)

	execCtx, cancel := context.WithTimeout(ctx, f.execTimeout)
	fill, err := f.executor.Execute(execCtx, ev, follow)
	cancel()

	var (
		final domain.FollowTrade
		terr  error
	)
	if err != nil {
		reason := "execution failed: " + err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			reason = domain.ErrExecutionTimeout.Error()
		}
		final, terr = f.ledger.Transition(ctx, pending.ID, domain.StatusFailed, domain.FollowResult{Error: reason})
	} else {
		final, terr = f.ledger.Transition(ctx, pending.ID, fill.Status, domain.FollowResult{
			FollowAmount:  fill.FollowAmount,
			ExecutedPrice: fill.ExecutedPrice,
			Slippage:      fill.Slippage,
			PnL:           fill.PnL,
			Error:         fill.Error,
			ExecutedAt:    fill.ExecutedAt,
		})
	}
	if terr != nil {
		// The trade may have been cancelled through the API mid-flight.
		if errors.Is(terr, domain.ErrInvalidStateTransition) {
			f.logger.Info("follow trade no longer pending", "id", pending.ID)
			return
		}
		f.logger.Error("apply follow trade outcome", "id", pending.ID, "error", terr)
		return
	}

	f.logger.Info("follow trade settled",
		"id", final.ID,
		"whale_trade_id", final.WhaleTradeID,
		"status", final.Status,
		"follow_amount", final.FollowAmount,
		"pnl", final.PnL)

	f.publish(ctx, domain.ChannelFollowTrades, "follow_trade", final)

	title, message := notify.FormatFollowTrade(final)
	_ = f.notifier.Notify(ctx, notify.FollowEvent(final.Status), title, message)
}

func (f *Follower) publish(ctx context.Context, channel, eventType string, data any) {
	payload, err := json.Marshal(domain.BusEvent{Type: eventType, Data: data})
	if err != nil {
		f.logger.Error("marshal bus event", "channel", channel, "error", err)
		return
	}
	if err := f.bus.Publish(ctx, channel, payload); err != nil {
		f.logger.Error("publish bus event", "channel", channel, "error", err)
	}
}
