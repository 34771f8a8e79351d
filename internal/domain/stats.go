package domain

// LedgerStats are the follow-trade aggregates computed by the ledger.
type LedgerStats struct {
	TotalPnL    float64
	TotalTrades int
	WinRate     float64
	TodayTrades int
	TodayPnL    float64
}

// DashboardStats is the aggregate snapshot served to the dashboard.
type DashboardStats struct {
	TotalPnL      float64       `json:"totalPnl"`
	TotalTrades   int           `json:"totalTrades"`
	WinRate       float64       `json:"winRate"`
	ActiveWallets int           `json:"activeWallets"`
	TodayTrades   int           `json:"todayTrades"`
	TodayPnL      float64       `json:"todayPnl"`
	MonitorStatus MonitorStatus `json:"monitorStatus"`
	Uptime        string        `json:"uptime"`
}
