package types

import (
	"github.com/moznion/go-optional"
)

// Position is the simulated holding the decision engine mutates as it
// consumes candles. EntryPrice is unset while flat and carries the price
// of the most recent position-opening buy otherwise. LastAction is the
// previous non-hold signal and gates the half buy and half sell rules so
// they cannot fire twice in a row.
type Position struct {
	Cash       float64                  `json:"cash" yaml:"cash"`
	Units      float64                  `json:"units" yaml:"units"`
	EntryPrice optional.Option[float64] `json:"entry_price" yaml:"entry_price"`
	LastAction SignalType               `json:"last_action" yaml:"last_action"`
}

// NewPosition returns a flat position holding the given cash.
func NewPosition(cash float64) Position {
	return Position{
		Cash:       cash,
		Units:      0,
		EntryPrice: optional.None[float64](),
		LastAction: SignalTypeHold,
	}
}

// Equity values the position at the given price.
func (p Position) Equity(price float64) float64 {
	return p.Cash + p.Units*price
}

// IsFlat reports whether the position holds no units.
func (p Position) IsFlat() bool {
	return p.Units == 0
}

// IsInvested reports whether the position holds any units.
func (p Position) IsInvested() bool {
	return p.Units > 0
}
