package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operation is one executed trade recorded by the ledger. Kind is never
// SignalTypeHold: holds are decisions, not trades. CashAfter and
// UnitsAfter capture the position immediately after execution,
// UnrealizedPnL is the market value of the units still held, and
// CumulativePnL is total equity at the execution price minus the
// starting cash.
type Operation struct {
	ID            string     `json:"id" yaml:"id" csv:"id"`
	Timestamp     time.Time  `json:"timestamp" yaml:"timestamp" csv:"timestamp"`
	Kind          SignalType `json:"kind" yaml:"kind" csv:"kind"`
	Symbol        string     `json:"symbol" yaml:"symbol" csv:"symbol"`
	Price         float64    `json:"price" yaml:"price" csv:"price"`
	Quantity      float64    `json:"quantity" yaml:"quantity" csv:"quantity"`
	CashAfter     float64    `json:"cash_after" yaml:"cash_after" csv:"cash_after"`
	UnitsAfter    float64    `json:"units_after" yaml:"units_after" csv:"units_after"`
	UnrealizedPnL float64    `json:"unrealized_pnl" yaml:"unrealized_pnl" csv:"unrealized_pnl"`
	CumulativePnL float64    `json:"cumulative_pnl" yaml:"cumulative_pnl" csv:"cumulative_pnl"`
	Rule          string     `json:"rule" yaml:"rule" csv:"rule"`
}

// Notional returns price times quantity as a decimal, which keeps the
// cents exact when summing trade values for reports.
func (o Operation) Notional() decimal.Decimal {
	return decimal.NewFromFloat(o.Price).Mul(decimal.NewFromFloat(o.Quantity))
}
