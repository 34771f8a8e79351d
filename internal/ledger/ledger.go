// Package ledger implements the in-memory trade ledger: the append-only,
// authoritative store of whale trade events and follow trades. It is the
// complete audit trail of everything the system observed and did, and is
// safe for concurrent use.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pmfollow/followbot/internal/domain"
)

// Ledger holds whale and follow trade records in insertion order. Whale
// events are immutable once appended; follow trades may transition exactly
// once from PENDING to a terminal status.
type Ledger struct {
	mu sync.RWMutex

	whales     []domain.WhaleTradeEvent
	whaleIndex map[string]int

	follows     []domain.FollowTrade
	followIndex map[string]int
}

// New creates an empty Ledger.
func New() *Ledger {
	return &Ledger{
		whaleIndex:  make(map[string]int),
		followIndex: make(map[string]int),
	}
}

// AppendWhale records a detected whale trade. A duplicate event id returns
// domain.ErrAlreadyExists so concurrent duplicate delivery of the same event
// cannot produce two records.
func (l *Ledger) AppendWhale(ctx context.Context, event domain.WhaleTradeEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.whaleIndex[event.ID]; ok {
		return fmt.Errorf("ledger: whale trade %s: %w", event.ID, domain.ErrAlreadyExists)
	}
	l.whaleIndex[event.ID] = len(l.whales)
	l.whales = append(l.whales, event)
	return nil
}

// GetWhale returns the whale trade with the given id.
func (l *Ledger) GetWhale(ctx context.Context, id string) (domain.WhaleTradeEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.whaleIndex[id]
	if !ok {
		return domain.WhaleTradeEvent{}, fmt.Errorf("ledger: whale trade %s: %w", id, domain.ErrNotFound)
	}
	return l.whales[i], nil
}

// ListWhale returns whale trades matching opts, newest first. Ties on the
// timestamp keep insertion order.
func (l *Ledger) ListWhale(ctx context.Context, opts domain.ListOpts) ([]domain.WhaleTradeEvent, error) {
	l.mu.RLock()
	out := make([]domain.WhaleTradeEvent, 0, len(l.whales))
	for _, e := range l.whales {
		if opts.Wallet != "" && e.WalletAddress != opts.Wallet {
			continue
		}
		if opts.Since != nil && e.Timestamp.Before(*opts.Since) {
			continue
		}
		if opts.Until != nil && e.Timestamp.After(*opts.Until) {
			continue
		}
		out = append(out, e)
	}
	l.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return limit(out, opts.Limit), nil
}

// AppendFollow records a follow trade. Terminal records (the simulator's
// synchronous output) and PENDING records (awaiting execution) are both
// accepted; duplicates by id are rejected.
func (l *Ledger) AppendFollow(ctx context.Context, trade domain.FollowTrade) error {
	if !trade.Status.Valid() {
		return fmt.Errorf("ledger: follow trade %s: unknown status %q: %w",
			trade.ID, trade.Status, domain.ErrInvalidStateTransition)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.followIndex[trade.ID]; ok {
		return fmt.Errorf("ledger: follow trade %s: %w", trade.ID, domain.ErrAlreadyExists)
	}
	l.followIndex[trade.ID] = len(l.follows)
	l.follows = append(l.follows, trade)
	return nil
}

// GetFollow returns the follow trade with the given id.
func (l *Ledger) GetFollow(ctx context.Context, id string) (domain.FollowTrade, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.followIndex[id]
	if !ok {
		return domain.FollowTrade{}, fmt.Errorf("ledger: follow trade %s: %w", id, domain.ErrNotFound)
	}
	return l.follows[i], nil
}

// ListFollow returns follow trades matching opts, newest first. Ties on the
// creation time keep insertion order.
func (l *Ledger) ListFollow(ctx context.Context, opts domain.ListOpts) ([]domain.FollowTrade, error) {
	l.mu.RLock()
	out := make([]domain.FollowTrade, 0, len(l.follows))
	for _, t := range l.follows {
		if opts.Status != "" && t.Status != opts.Status {
			continue
		}
		if opts.Wallet != "" && t.WalletAddress != opts.Wallet {
			continue
		}
		if opts.Since != nil && t.CreatedAt.Before(*opts.Since) {
			continue
		}
		if opts.Until != nil && t.CreatedAt.After(*opts.Until) {
			continue
		}
		out = append(out, t)
	}
	l.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return limit(out, opts.Limit), nil
}

// Transition moves a PENDING follow trade to a terminal status, applying the
// execution result fields. Any attempt to transition a trade that is already
// terminal, or to a non-terminal status, fails with
// domain.ErrInvalidStateTransition.
func (l *Ledger) Transition(ctx context.Context, id string, to domain.TradeStatus, res domain.FollowResult) (domain.FollowTrade, error) {
	if !to.Terminal() {
		return domain.FollowTrade{}, fmt.Errorf("ledger: transition to %q: %w", to, domain.ErrInvalidStateTransition)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.followIndex[id]
	if !ok {
		return domain.FollowTrade{}, fmt.Errorf("ledger: follow trade %s: %w", id, domain.ErrNotFound)
	}

	trade := l.follows[i]
	if trade.Status != domain.StatusPending {
		return domain.FollowTrade{}, fmt.Errorf("ledger: follow trade %s is %s: %w",
			id, trade.Status, domain.ErrInvalidStateTransition)
	}

	trade.Status = to
	if res.FollowAmount > 0 {
		trade.FollowAmount = res.FollowAmount
	}
	trade.ExecutedPrice = res.ExecutedPrice
	trade.Slippage = res.Slippage
	trade.PnL = res.PnL
	trade.Error = res.Error
	trade.ExecutedAt = res.ExecutedAt

	l.follows[i] = trade
	return trade, nil
}

// Stats computes follow-trade aggregates. "Today" is the UTC calendar day
// containing now.
func (l *Ledger) Stats(now time.Time) domain.LedgerStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	dayStart := now.UTC().Truncate(24 * time.Hour)

	var stats domain.LedgerStats
	var executed, wins int
	for _, t := range l.follows {
		stats.TotalTrades++
		if t.Status == domain.StatusExecuted {
			executed++
			stats.TotalPnL += t.PnL
			if t.PnL > 0 {
				wins++
			}
		}
		if !t.CreatedAt.Before(dayStart) {
			stats.TodayTrades++
			if t.Status == domain.StatusExecuted {
				stats.TodayPnL += t.PnL
			}
		}
	}
	if executed > 0 {
		stats.WinRate = float64(wins) / float64(executed)
	}
	return stats
}

func limit[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}

var _ domain.TradeLedger = (*Ledger)(nil)
