package types

import (
	"time"
)

// SignalType is the action a strategy rule asks for on a given candle.
type SignalType string

const (
	SignalTypeBuyFull  SignalType = "buy_full"
	SignalTypeBuyHalf  SignalType = "buy_half"
	SignalTypeSellFull SignalType = "sell_full"
	SignalTypeSellHalf SignalType = "sell_half"
	SignalTypeHold     SignalType = "hold"
)

// IsBuy reports whether the signal opens or adds to a position.
func (s SignalType) IsBuy() bool {
	return s == SignalTypeBuyFull || s == SignalTypeBuyHalf
}

// IsSell reports whether the signal reduces or closes a position.
func (s SignalType) IsSell() bool {
	return s == SignalTypeSellFull || s == SignalTypeSellHalf
}

// Direction collapses the signal into the column convention used by the
// backtest runner: +1 for a full buy, -1 for a full sell, 0 otherwise.
// Half signals are position management inside the decision engine and do
// not translate into standalone runner rows.
func (s SignalType) Direction() int {
	switch s {
	case SignalTypeBuyFull:
		return 1
	case SignalTypeSellFull:
		return -1
	default:
		return 0
	}
}

// Signal is one decision emitted by the engine for a candle. Rule names
// the first matching rule, Reason is its human readable explanation.
type Signal struct {
	Time   time.Time  `json:"time" yaml:"time"`
	Type   SignalType `json:"type" yaml:"type"`
	Symbol string     `json:"symbol" yaml:"symbol"`
	Price  float64    `json:"price" yaml:"price"`
	Rule   string     `json:"rule" yaml:"rule"`
	Reason string     `json:"reason" yaml:"reason"`
}
