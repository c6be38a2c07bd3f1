package metrics

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/mark-trading/internal/types"
)

// Trading periods per year used to annualize ratios. Equity curves are
// sampled once per candle and the canonical runs use daily candles.
const periodsPerYear = 252

// Compute derives the full metrics block from a finished run. It reads
// the result and never mutates it, so calling it twice on the same
// result yields the same block.
func Compute(result types.BacktestResult) types.Metrics {
	equity := make([]float64, len(result.EquityCurve))
	for i, p := range result.EquityCurve {
		equity[i] = p.Equity
	}
	returns := PeriodReturns(equity)

	return types.Metrics{
		TotalReturn:    TotalReturn(result.InitialBalance, result.FinalBalance),
		MaxDrawdown:    MaxDrawdown(equity),
		SharpeRatio:    SharpeRatio(returns),
		SortinoRatio:   SortinoRatio(returns),
		WinRate:        WinRate(result.InitialBalance, result.Trades),
		ProfitFactor:   ProfitFactor(result.InitialBalance, result.Trades),
		NumberOfTrades: len(result.Trades),
		RoundTrips:     len(roundTripProfits(result.InitialBalance, result.Trades)),
	}
}

// TotalReturn is the fractional gain over the run, 0 for a zero
// starting balance.
func TotalReturn(initial, final float64) float64 {
	if initial == 0 {
		return 0
	}
	return (final - initial) / initial
}

// MaxDrawdown is the deepest peak-to-trough fall of the equity curve,
// reported as a positive fraction of the peak.
func MaxDrawdown(equity []float64) float64 {
	if len(equity) < 2 {
		return 0
	}
	peak := equity[0]
	worst := 0.0
	for _, eq := range equity[1:] {
		if eq > peak {
			peak = eq
			continue
		}
		if peak == 0 {
			continue
		}
		if dd := (eq - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return math.Abs(worst)
}

// PeriodReturns converts an equity curve into per-period fractional
// returns.
func PeriodReturns(equity []float64) []float64 {
	if len(equity) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			continue
		}
		returns = append(returns, equity[i]/equity[i-1]-1)
	}
	return returns
}

// SharpeRatio annualizes mean over sample standard deviation of the
// period returns. Fewer than two returns or a flat curve yield 0.
func SharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	m := mean(returns)
	std := sampleStd(returns, m)
	if std == 0 {
		return 0
	}
	return m / std * math.Sqrt(periodsPerYear)
}

// SortinoRatio is the mean period return over the sample standard
// deviation of the negative returns only. Fewer than two negative
// returns leave the downside deviation undefined and yield 0.
func SortinoRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) < 2 {
		return 0
	}
	std := sampleStd(downside, mean(downside))
	if std == 0 {
		return 0
	}
	return mean(returns) / std * math.Sqrt(periodsPerYear)
}

// WinRate is the share of profitable round trips, 0 when no round trip
// completed.
func WinRate(initialBalance float64, trades []types.Operation) float64 {
	profits := roundTripProfits(initialBalance, trades)
	if len(profits) == 0 {
		return 0
	}
	wins := 0
	for _, p := range profits {
		if p.IsPositive() {
			wins++
		}
	}
	return float64(wins) / float64(len(profits))
}

// ProfitFactor is gross profit over gross loss across round trips, 0
// when there is no completed round trip or no losing one.
func ProfitFactor(initialBalance float64, trades []types.Operation) float64 {
	profits := roundTripProfits(initialBalance, trades)
	if len(profits) == 0 {
		return 0
	}
	grossProfit := decimal.Zero
	grossLoss := decimal.Zero
	for _, p := range profits {
		if p.IsPositive() {
			grossProfit = grossProfit.Add(p)
		} else {
			grossLoss = grossLoss.Add(p.Abs())
		}
	}
	if grossLoss.IsZero() {
		return 0
	}
	factor, _ := grossProfit.Div(grossLoss).Float64()
	return factor
}

// roundTripProfits pairs each buy with the following sell and returns
// the cash gained across each pair: the sell's post-trade balance minus
// the balance carried into the buy. The carried balance starts at the
// initial balance and advances to each sell's balance, which holds
// because a full buy spends all cash and a full sell returns to all
// cash. A trailing unmatched entry is ignored, so an open position
// contributes nothing.
func roundTripProfits(initialBalance float64, trades []types.Operation) []decimal.Decimal {
	var profits []decimal.Decimal
	prev := decimal.NewFromFloat(initialBalance)
	for i := 0; i+1 < len(trades); i += 2 {
		buy, sell := trades[i], trades[i+1]
		if !buy.Kind.IsBuy() || !sell.Kind.IsSell() {
			continue
		}
		balance := decimal.NewFromFloat(sell.CashAfter)
		profits = append(profits, balance.Sub(prev))
		prev = balance
	}
	return profits
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sampleStd(values []float64, m float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)-1))
}
