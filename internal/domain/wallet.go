package domain

import "time"

// WalletStatus is the monitoring state of a tracked wallet.
type WalletStatus string

const (
	WalletActive   WalletStatus = "ACTIVE"
	WalletPaused   WalletStatus = "PAUSED"
	WalletInactive WalletStatus = "INACTIVE"
)

// Valid reports whether the status is one of the known values.
func (s WalletStatus) Valid() bool {
	switch s {
	case WalletActive, WalletPaused, WalletInactive:
		return true
	}
	return false
}

// TrackedWallet is a whale wallet whose trades the monitor follows. Only
// ACTIVE wallets produce events.
type TrackedWallet struct {
	ID           string       `json:"id"`
	Address      string       `json:"address" toml:"address"`
	Label        string       `json:"label" toml:"label"`
	Status       WalletStatus `json:"status" toml:"status"`
	TotalPnL     float64      `json:"totalPnl"`
	WinRate      float64      `json:"winRate"`
	TradeCount   int          `json:"tradeCount"`
	AddedAt      time.Time    `json:"addedAt"`
	LastActiveAt time.Time    `json:"lastActiveAt"`
	Tags         []string     `json:"tags" toml:"tags"`
}
