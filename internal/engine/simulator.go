package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pmfollow/followbot/internal/domain"
)

// Executor turns a whale trade event into a follow trade under the given
// policy. Implementations must return a record in a terminal state (never
// PENDING) and must return a record even when the sized amount is zero, so
// the ledger remains a complete audit trail.
type Executor interface {
	Execute(ctx context.Context, event domain.WhaleTradeEvent, cfg domain.FollowConfig) (domain.FollowTrade, error)
}

// SimulatorConfig holds the fill model parameters. The defaults reproduce
// the reference behavior: slippage uniform in [-1%, +2%), ~90% success rate,
// PnL uniform in [-50, 150) on success.
type SimulatorConfig struct {
	SuccessRate float64
	SlippageMin float64
	SlippageMax float64
	PnLMin      float64
	PnLMax      float64
	// Latency delays each simulated fill, so execution timeouts are
	// observable. Zero means fills complete immediately.
	Latency time.Duration
}

// DefaultSimulatorConfig returns the reference fill model parameters.
func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{
		SuccessRate: 0.90,
		SlippageMin: -0.01,
		SlippageMax: 0.02,
		PnLMin:      -50,
		PnLMax:      150,
	}
}

// Validate checks the fill model parameters.
func (c SimulatorConfig) Validate() error {
	if c.SuccessRate < 0 || c.SuccessRate > 1 {
		return fmt.Errorf("%w: success_rate must be in [0, 1], got %v", domain.ErrInvalidConfig, c.SuccessRate)
	}
	if c.SlippageMin > c.SlippageMax {
		return fmt.Errorf("%w: slippage_min (%v) must not exceed slippage_max (%v)",
			domain.ErrInvalidConfig, c.SlippageMin, c.SlippageMax)
	}
	if c.PnLMin > c.PnLMax {
		return fmt.Errorf("%w: pnl_min (%v) must not exceed pnl_max (%v)",
			domain.ErrInvalidConfig, c.PnLMin, c.PnLMax)
	}
	if c.Latency < 0 {
		return fmt.Errorf("%w: latency must be >= 0, got %v", domain.ErrInvalidConfig, c.Latency)
	}
	return nil
}

// Simulator is the stand-in Executor. A production implementation would
// submit the order to the exchange, poll for fills, and handle partial fills
// and cancellation; the simulator draws slippage and success from an
// injected RandomSource instead.
type Simulator struct {
	cfg    SimulatorConfig
	rng    RandomSource
	logger *slog.Logger
}

// NewSimulator creates a Simulator with the given fill model and randomness.
func NewSimulator(cfg SimulatorConfig, rng RandomSource, logger *slog.Logger) *Simulator {
	return &Simulator{
		cfg:    cfg,
		rng:    rng,
		logger: logger.With(slog.String("component", "simulator")),
	}
}

// Execute produces a hypothetical fill for the whale trade. The returned
// record always references the event's id and is always terminal. The only
// error conditions are context cancellation and an invalid follow config;
// execution failures (zero amount, no liquidity, excessive slippage) are
// captured on the record, never returned as errors.
func (s *Simulator) Execute(ctx context.Context, event domain.WhaleTradeEvent, cfg domain.FollowConfig) (domain.FollowTrade, error) {
	if s.cfg.Latency > 0 {
		timer := time.NewTimer(s.cfg.Latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.FollowTrade{}, ctx.Err()
		case <-timer.C:
		}
	}

	amount, err := ComputeFollowAmount(event.Amount, cfg)
	if err != nil && !errors.Is(err, domain.ErrNonPositiveAmount) {
		return domain.FollowTrade{}, fmt.Errorf("simulator: size follow amount: %w", err)
	}

	trade := domain.FollowTrade{
		ID:             "ft_" + uuid.NewString(),
		WhaleTradeID:   event.ID,
		WalletAddress:  event.WalletAddress,
		WalletLabel:    event.WalletLabel,
		MarketID:       event.MarketID,
		MarketQuestion: event.MarketQuestion,
		Outcome:        event.Outcome,
		Side:           event.Side,
		WhaleAmount:    event.Amount,
		FollowAmount:   amount,
		WhalePrice:     event.Price,
		CreatedAt:      time.Now().UTC(),
	}

	if amount <= 0 {
		trade.Status = domain.StatusFailed
		trade.Error = "follow amount is zero"
		return trade, nil
	}

	slippage := s.cfg.SlippageMin + s.rng.Float64()*(s.cfg.SlippageMax-s.cfg.SlippageMin)
	trade.Slippage = round(slippage, 4)
	trade.ExecutedPrice = round(event.Price*(1+slippage), 3)

	if slippage > cfg.SlippageTolerance {
		trade.Status = domain.StatusFailed
		trade.Error = "slippage exceeds tolerance"
		return trade, nil
	}

	if s.rng.Float64() < s.cfg.SuccessRate {
		now := time.Now().UTC()
		trade.Status = domain.StatusExecuted
		trade.PnL = round(s.cfg.PnLMin+s.rng.Float64()*(s.cfg.PnLMax-s.cfg.PnLMin), 2)
		trade.ExecutedAt = &now
	} else {
		trade.Status = domain.StatusFailed
		trade.Error = "insufficient liquidity"
	}

	s.logger.Debug("simulated fill",
		slog.String("whale_trade_id", event.ID),
		slog.String("status", string(trade.Status)),
		slog.Float64("follow_amount", trade.FollowAmount),
		slog.Float64("executed_price", trade.ExecutedPrice),
	)

	return trade, nil
}

// round rounds v to the given number of decimal places.
func round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}

var _ Executor = (*Simulator)(nil)
