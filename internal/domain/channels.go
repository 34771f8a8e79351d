package domain

// Signal bus channels carrying JSON-encoded events to the WebSocket hub.
const (
	ChannelWhaleTrades  = "whale_trades"
	ChannelFollowTrades = "follow_trades"
	ChannelStatus       = "status"
)

// BusEvent is the envelope published on the signal bus and forwarded verbatim
// to WebSocket clients.
type BusEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
