package domain

import "time"

// RiskMetrics is a point-in-time view of account risk, produced by the risk
// manager for logging and the dashboard.
type RiskMetrics struct {
	CurrentBankroll  float64 `json:"current_bankroll"`
	DailyPnL         float64 `json:"daily_pnl"`
	DailyReturnPct   float64 `json:"daily_return_pct"`
	TotalPnL         float64 `json:"total_pnl"`
	TotalReturnPct   float64 `json:"total_return_pct"`
	OpenPositions    int     `json:"open_positions"`
	TotalExposure    float64 `json:"total_exposure"`
	ExposurePct      float64 `json:"exposure_pct"`
	KillSwitchActive bool    `json:"kill_switch_active"`
}

// MetricsSnapshot is the hourly scanner state persisted to the metrics table.
type MetricsSnapshot struct {
	Timestamp     time.Time
	Bankroll      float64
	DailyPnL      float64
	TotalPnL      float64
	OpenPositions int
	WinRate       float64
	TotalTrades   int
}

// PerformanceStats summarizes closed paper trades.
type PerformanceStats struct {
	TotalTrades int     `json:"total_trades"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"win_rate"`
	TotalPnL    float64 `json:"total_pnl"`
	AvgPnL      float64 `json:"avg_pnl"`
	OpenTrades  int     `json:"open_trades"`
}

// KillSwitchEvent records one kill-switch activation.
type KillSwitchEvent struct {
	Timestamp    time.Time
	Reason       string
	Bankroll     float64
	DailyLossPct float64
}
