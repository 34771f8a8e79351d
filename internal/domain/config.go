package domain

import (
	"fmt"
	"strings"
	"time"
)

// FollowConfig is the follow-trade sizing policy. Readers always receive a
// value copy taken from the config store, never a shared pointer, so a
// snapshot is internally consistent even while an update is in flight.
type FollowConfig struct {
	// FollowRatio scales the whale's notional into the raw follow amount.
	FollowRatio float64 `json:"followRatio" toml:"follow_ratio"`
	// MaxPositionSize is the absolute cap applied after the trade band.
	MaxPositionSize float64 `json:"maxPositionSize" toml:"max_position_size"`
	// SlippageTolerance is the maximum adverse slippage accepted on a fill.
	SlippageTolerance float64 `json:"slippageTolerance" toml:"slippage_tolerance"`
	MinTradeAmount    float64 `json:"minTradeAmount" toml:"min_trade_amount"`
	MaxTradeAmount    float64 `json:"maxTradeAmount" toml:"max_trade_amount"`
	// AutoExecute enables automatic follow execution on detected whale trades.
	AutoExecute bool `json:"autoExecute" toml:"auto_execute"`
	// MonitorIntervalMs is the per-wallet polling interval in milliseconds.
	MonitorIntervalMs int `json:"monitorInterval" toml:"monitor_interval_ms"`
}

// MonitorInterval returns the polling interval as a duration.
func (c FollowConfig) MonitorInterval() time.Duration {
	return time.Duration(c.MonitorIntervalMs) * time.Millisecond
}

// Validate checks the policy invariants and returns a combined error wrapping
// ErrInvalidConfig describing every problem found. A config that fails
// validation must be rejected before use; in particular min > max makes the
// sizing clamp undefined and is treated as a hard configuration error.
func (c FollowConfig) Validate() error {
	var errs []string

	if c.FollowRatio <= 0 || c.FollowRatio > 1 {
		errs = append(errs, fmt.Sprintf("follow_ratio must be in (0, 1], got %v", c.FollowRatio))
	}
	if c.MaxPositionSize <= 0 {
		errs = append(errs, fmt.Sprintf("max_position_size must be > 0, got %v", c.MaxPositionSize))
	}
	if c.SlippageTolerance < 0 {
		errs = append(errs, fmt.Sprintf("slippage_tolerance must be >= 0, got %v", c.SlippageTolerance))
	}
	if c.MinTradeAmount < 0 {
		errs = append(errs, fmt.Sprintf("min_trade_amount must be >= 0, got %v", c.MinTradeAmount))
	}
	if c.MaxTradeAmount < 0 {
		errs = append(errs, fmt.Sprintf("max_trade_amount must be >= 0, got %v", c.MaxTradeAmount))
	}
	if c.MinTradeAmount > c.MaxTradeAmount {
		errs = append(errs, fmt.Sprintf("min_trade_amount (%v) must not exceed max_trade_amount (%v)",
			c.MinTradeAmount, c.MaxTradeAmount))
	}
	if c.MonitorIntervalMs <= 0 {
		errs = append(errs, fmt.Sprintf("monitor_interval_ms must be > 0, got %d", c.MonitorIntervalMs))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}
