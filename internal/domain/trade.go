// Package domain defines the core data model of the whale follow-trading
// backend: whale trade events, follow trades, tracked wallets, configuration
// snapshots, and the store interfaces the rest of the system depends on.
package domain

import "time"

// TradeSide is the direction of a trade.
type TradeSide string

const (
	SideBuy  TradeSide = "BUY"
	SideSell TradeSide = "SELL"
)

// Valid reports whether the side is one of the known values.
func (s TradeSide) Valid() bool {
	return s == SideBuy || s == SideSell
}

// TradeStatus is the lifecycle state of a follow trade.
type TradeStatus string

const (
	StatusPending   TradeStatus = "PENDING"
	StatusExecuted  TradeStatus = "EXECUTED"
	StatusFailed    TradeStatus = "FAILED"
	StatusCancelled TradeStatus = "CANCELLED"
)

// Valid reports whether the status is one of the known values.
func (s TradeStatus) Valid() bool {
	switch s {
	case StatusPending, StatusExecuted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status is a final state. A follow trade
// transitions from PENDING to exactly one terminal state.
func (s TradeStatus) Terminal() bool {
	switch s {
	case StatusExecuted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// MonitorStatus is the operational state of the whale monitor.
type MonitorStatus string

const (
	MonitorRunning MonitorStatus = "RUNNING"
	MonitorStopped MonitorStatus = "STOPPED"
	MonitorError   MonitorStatus = "ERROR"
)

// Market holds prediction-market metadata for synthetic feeds and display.
type Market struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Outcomes []string `json:"outcomes"`
}

// WhaleTradeEvent is an immutable record of a large trade detected on a
// tracked wallet. Events are created by the monitoring feed and never
// mutated afterwards.
type WhaleTradeEvent struct {
	ID             string    `json:"id"`
	WalletAddress  string    `json:"walletAddress"`
	WalletLabel    string    `json:"walletLabel"`
	MarketID       string    `json:"marketId"`
	MarketQuestion string    `json:"marketQuestion"`
	TokenID        string    `json:"tokenId"`
	Outcome        string    `json:"outcome"`
	Side           TradeSide `json:"side"`
	Amount         float64   `json:"amount"`
	Price          float64   `json:"price"`
	Timestamp      time.Time `json:"timestamp"`
}

// FollowTrade is the system's own trade sized off a whale trade. It is
// created once and its status transitions PENDING -> EXECUTED/FAILED (or
// CANCELLED via external cancellation), after which it is terminal.
type FollowTrade struct {
	ID             string      `json:"id"`
	WhaleTradeID   string      `json:"whaleTradeId"`
	WalletAddress  string      `json:"walletAddress"`
	WalletLabel    string      `json:"walletLabel"`
	MarketID       string      `json:"marketId"`
	MarketQuestion string      `json:"marketQuestion"`
	Outcome        string      `json:"outcome"`
	Side           TradeSide   `json:"side"`
	WhaleAmount    float64     `json:"whaleAmount"`
	FollowAmount   float64     `json:"followAmount"`
	ExecutedPrice  float64     `json:"executedPrice"`
	WhalePrice     float64     `json:"whalePrice"`
	Slippage       float64     `json:"slippage"`
	Status         TradeStatus `json:"status"`
	PnL            float64     `json:"pnl"`
	CreatedAt      time.Time   `json:"createdAt"`
	ExecutedAt     *time.Time  `json:"executedAt,omitempty"`
	Error          string      `json:"error,omitempty"`
}

// FollowResult carries the outcome fields applied to a PENDING follow trade
// when it transitions to a terminal state.
type FollowResult struct {
	FollowAmount  float64
	ExecutedPrice float64
	Slippage      float64
	PnL           float64
	Error         string
	ExecutedAt    *time.Time
}
