package strategy

import (
	"github.com/rxtech-lab/mark-trading/internal/indicator"
	"github.com/rxtech-lab/mark-trading/internal/types"
)

// RuleKind tags one evaluation rule. Rules are data: an ordered list of
// them defines a strategy, and the engine walks the list on every candle
// taking the first rule whose conditions hold.
type RuleKind string

const (
	RuleGoldenCrossBuy RuleKind = "golden_cross_buy"
	RuleTrendBuy       RuleKind = "trend_buy"
	RuleHalfBuy        RuleKind = "half_buy"
	RuleFullSell       RuleKind = "full_sell"
	RuleDeathCrossSell RuleKind = "death_cross_sell"
	RuleHalfSell       RuleKind = "half_sell"
	RuleRSISell        RuleKind = "rsi_sell"
)

// Rule binds a kind to the periods it reads. Cross rules compare the
// medium against the long average, trend rules read all three, and
// rsi_sell reads only the RSI. A rule whose inputs are not yet
// computable simply does not match, so the engine holds while the
// window fills.
type Rule struct {
	Kind         RuleKind `yaml:"kind" json:"kind"`
	ShortPeriod  int      `yaml:"short_period,omitempty" json:"short_period,omitempty"`
	MediumPeriod int      `yaml:"medium_period,omitempty" json:"medium_period,omitempty"`
	LongPeriod   int      `yaml:"long_period,omitempty" json:"long_period,omitempty"`
	RSIPeriod    int      `yaml:"rsi_period,omitempty" json:"rsi_period,omitempty"`
	RSIThreshold float64  `yaml:"rsi_threshold,omitempty" json:"rsi_threshold,omitempty"`
}

// requiredPrices is the window length this rule needs before it can
// evaluate at all.
func (r Rule) requiredPrices() int {
	switch r.Kind {
	case RuleGoldenCrossBuy, RuleDeathCrossSell:
		return max(r.MediumPeriod, r.LongPeriod) + 1
	case RuleTrendBuy, RuleFullSell:
		return max(r.ShortPeriod, r.MediumPeriod, r.LongPeriod)
	case RuleHalfBuy, RuleHalfSell:
		return max(r.ShortPeriod, r.MediumPeriod, r.LongPeriod) + 1
	case RuleRSISell:
		return r.RSIPeriod + 1
	default:
		return 0
	}
}

// evaluate reports whether the rule fires on the current window state.
// A firing returns the action and a short explanation for the signal
// log.
func (r Rule) evaluate(ind *indicator.Set, pos types.Position) (types.SignalType, string, bool) {
	switch r.Kind {
	case RuleGoldenCrossBuy:
		medium := ind.MovingAverage(r.MediumPeriod)
		long := ind.MovingAverage(r.LongPeriod)
		prevMedium := ind.MovingAveragePrevious(r.MediumPeriod)
		prevLong := ind.MovingAveragePrevious(r.LongPeriod)
		if medium.IsNone() || long.IsNone() || prevMedium.IsNone() || prevLong.IsNone() {
			return types.SignalTypeHold, "", false
		}
		if medium.Unwrap() > long.Unwrap() && prevMedium.Unwrap() <= prevLong.Unwrap() && pos.Cash > 0 {
			return types.SignalTypeBuyFull, "medium average crossed above long average", true
		}

	case RuleTrendBuy:
		short := ind.MovingAverage(r.ShortPeriod)
		medium := ind.MovingAverage(r.MediumPeriod)
		long := ind.MovingAverage(r.LongPeriod)
		if short.IsNone() || medium.IsNone() || long.IsNone() {
			return types.SignalTypeHold, "", false
		}
		if short.Unwrap() > long.Unwrap() && medium.Unwrap() > long.Unwrap() && short.Unwrap() > medium.Unwrap() && pos.Cash > 0 {
			return types.SignalTypeBuyFull, "all averages aligned upward", true
		}

	case RuleHalfBuy:
		short := ind.MovingAverage(r.ShortPeriod)
		medium := ind.MovingAverage(r.MediumPeriod)
		long := ind.MovingAverage(r.LongPeriod)
		prevMedium := ind.MovingAveragePrevious(r.MediumPeriod)
		prevLong := ind.MovingAveragePrevious(r.LongPeriod)
		if short.IsNone() || medium.IsNone() || long.IsNone() || prevMedium.IsNone() || prevLong.IsNone() {
			return types.SignalTypeHold, "", false
		}
		if short.Unwrap() < long.Unwrap() && medium.Unwrap() < long.Unwrap() && short.Unwrap() > medium.Unwrap() &&
			prevMedium.Unwrap() < prevLong.Unwrap() && pos.LastAction != types.SignalTypeBuyHalf && pos.Cash > 0 {
			return types.SignalTypeBuyHalf, "short average recovering below the long average", true
		}

	case RuleFullSell:
		short := ind.MovingAverage(r.ShortPeriod)
		medium := ind.MovingAverage(r.MediumPeriod)
		long := ind.MovingAverage(r.LongPeriod)
		if short.IsNone() || medium.IsNone() || long.IsNone() {
			return types.SignalTypeHold, "", false
		}
		if short.Unwrap() < long.Unwrap() && medium.Unwrap() < long.Unwrap() && short.Unwrap() < medium.Unwrap() && pos.Units > 0 {
			return types.SignalTypeSellFull, "all averages aligned downward", true
		}

	case RuleDeathCrossSell:
		medium := ind.MovingAverage(r.MediumPeriod)
		long := ind.MovingAverage(r.LongPeriod)
		prevMedium := ind.MovingAveragePrevious(r.MediumPeriod)
		prevLong := ind.MovingAveragePrevious(r.LongPeriod)
		if medium.IsNone() || long.IsNone() || prevMedium.IsNone() || prevLong.IsNone() {
			return types.SignalTypeHold, "", false
		}
		if medium.Unwrap() < long.Unwrap() && prevMedium.Unwrap() >= prevLong.Unwrap() && pos.Units > 0 {
			return types.SignalTypeSellFull, "medium average crossed below long average", true
		}

	case RuleHalfSell:
		short := ind.MovingAverage(r.ShortPeriod)
		medium := ind.MovingAverage(r.MediumPeriod)
		long := ind.MovingAverage(r.LongPeriod)
		prevMedium := ind.MovingAveragePrevious(r.MediumPeriod)
		prevLong := ind.MovingAveragePrevious(r.LongPeriod)
		if short.IsNone() || medium.IsNone() || long.IsNone() || prevMedium.IsNone() || prevLong.IsNone() {
			return types.SignalTypeHold, "", false
		}
		if short.Unwrap() > long.Unwrap() && medium.Unwrap() > long.Unwrap() && short.Unwrap() < medium.Unwrap() &&
			prevMedium.Unwrap() > prevLong.Unwrap() && pos.LastAction != types.SignalTypeSellHalf && pos.Units > 0 {
			return types.SignalTypeSellHalf, "short average weakening above the long average", true
		}

	case RuleRSISell:
		rsi := ind.RSI(r.RSIPeriod)
		if rsi.IsNone() {
			return types.SignalTypeHold, "", false
		}
		if rsi.Unwrap() > r.RSIThreshold && pos.Units > 0 {
			return types.SignalTypeSellFull, "rsi above overbought threshold", true
		}
	}

	return types.SignalTypeHold, "", false
}

// RequiredWindow is the window length a rule list needs before every
// rule in it can evaluate.
func RequiredWindow(rules []Rule) int {
	required := 0
	for _, r := range rules {
		if n := r.requiredPrices(); n > required {
			required = n
		}
	}
	return required
}
