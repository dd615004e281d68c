package models

// Metrics is the performance summary derived from an agent ledger.
// Ratios are percentages where noted.
type Metrics struct {
	TotalTrades    int     `json:"total_trades"`
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	WinRate        float64 `json:"win_rate"` // percent
	TotalProfit    float64 `json:"total_profit"`
	TotalLoss      float64 `json:"total_loss"`
	NetProfit      float64 `json:"net_profit"`
	AverageProfit  float64 `json:"average_profit"`
	AverageLoss    float64 `json:"average_loss"`
	ProfitFactor   float64 `json:"profit_factor"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	RecoveryFactor float64 `json:"recovery_factor"`
}
