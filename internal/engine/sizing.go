// Package engine implements the follow-trade core: the sizing policy that
// maps a whale trade's notional into a bounded follow amount, and the
// execution simulator that produces hypothetical fills. The simulator sits
// behind the Executor interface so a real CLOB order submitter can replace
// it without touching sizing or ledger code.
package engine

import (
	"math"

	"github.com/pmfollow/followbot/internal/domain"
)

// ComputeFollowAmount sizes a follow trade off a whale trade's notional.
//
// The clamps apply in a fixed order: ratio first, then the [min, max] trade
// band, then the absolute position cap. Each stage can pull the amount into
// its band but never past the final cap.
//
// An invalid config (min > max, ratio out of range, ...) returns
// domain.ErrInvalidConfig. A non-positive whaleAmount returns 0 with
// domain.ErrNonPositiveAmount; callers decide whether to skip the event.
func ComputeFollowAmount(whaleAmount float64, cfg domain.FollowConfig) (float64, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	if whaleAmount <= 0 {
		return 0, domain.ErrNonPositiveAmount
	}

	raw := whaleAmount * cfg.FollowRatio
	amount := math.Min(math.Max(raw, cfg.MinTradeAmount), cfg.MaxTradeAmount)
	return math.Min(amount, cfg.MaxPositionSize), nil
}
