package domain

import (
	"context"
	"time"
)

// ListOpts provides filtering and limiting for ledger queries. Results are
// always ordered by creation time descending; ties are broken by insertion
// order.
type ListOpts struct {
	Limit  int
	Status TradeStatus // empty matches all statuses
	Wallet string      // empty matches all wallets
	Since  *time.Time
	Until  *time.Time
}

// WhaleTradeStore is the append-only store of detected whale trades. Events
// are immutable; no update or delete is exposed.
type WhaleTradeStore interface {
	AppendWhale(ctx context.Context, event WhaleTradeEvent) error
	GetWhale(ctx context.Context, id string) (WhaleTradeEvent, error)
	ListWhale(ctx context.Context, opts ListOpts) ([]WhaleTradeEvent, error)
}

// FollowTradeStore is the append-only store of follow trades. A record's
// status may transition exactly once from PENDING to a terminal state.
type FollowTradeStore interface {
	AppendFollow(ctx context.Context, trade FollowTrade) error
	GetFollow(ctx context.Context, id string) (FollowTrade, error)
	ListFollow(ctx context.Context, opts ListOpts) ([]FollowTrade, error)
	Transition(ctx context.Context, id string, to TradeStatus, res FollowResult) (FollowTrade, error)
}

// TradeLedger is the complete audit trail of whale and follow trades.
type TradeLedger interface {
	WhaleTradeStore
	FollowTradeStore
}

// SignalBus provides pub/sub fan-out of trade and status events to the
// WebSocket hub (and any other subscriber).
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// RateLimiter provides request rate limiting for the HTTP API.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
