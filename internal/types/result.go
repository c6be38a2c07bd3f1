package types

import (
	"time"
)

// EquityPoint is one sample of the mark-to-market account value. The
// runner appends one point per candle, valued before any trade on that
// candle executes.
type EquityPoint struct {
	Time   time.Time `json:"time" yaml:"time"`
	Equity float64   `json:"equity" yaml:"equity"`
}

// BacktestResult is everything a single backtest run produces.
type BacktestResult struct {
	Symbol         string        `json:"symbol" yaml:"symbol"`
	InitialBalance float64       `json:"initial_balance" yaml:"initial_balance"`
	FinalBalance   float64       `json:"final_balance" yaml:"final_balance"`
	Trades         []Operation   `json:"trades" yaml:"trades"`
	EquityCurve    []EquityPoint `json:"equity_curve" yaml:"equity_curve"`
	Metrics        Metrics       `json:"metrics" yaml:"metrics"`
}

// TotalReturn is the fractional gain or loss over the run.
func (r BacktestResult) TotalReturn() float64 {
	if r.InitialBalance == 0 {
		return 0
	}
	return (r.FinalBalance - r.InitialBalance) / r.InitialBalance
}
