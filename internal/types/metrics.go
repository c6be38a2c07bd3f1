package types

// Metrics is the performance summary computed from an equity curve and
// the trade list. MaxDrawdown is reported as a positive fraction, Sharpe
// and Sortino are annualized assuming daily candles. WinRate and
// ProfitFactor are computed over completed round trips, so an open
// position at the end of the run contributes nothing to either.
type Metrics struct {
	TotalReturn    float64 `json:"total_return" yaml:"total_return"`
	MaxDrawdown    float64 `json:"max_drawdown" yaml:"max_drawdown"`
	SharpeRatio    float64 `json:"sharpe_ratio" yaml:"sharpe_ratio"`
	SortinoRatio   float64 `json:"sortino_ratio" yaml:"sortino_ratio"`
	WinRate        float64 `json:"win_rate" yaml:"win_rate"`
	ProfitFactor   float64 `json:"profit_factor" yaml:"profit_factor"`
	NumberOfTrades int     `json:"number_of_trades" yaml:"number_of_trades"`
	RoundTrips     int     `json:"round_trips" yaml:"round_trips"`
}
