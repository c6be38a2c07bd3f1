package indicator

import (
	"github.com/moznion/go-optional"
)

// Set computes indicator values over a shared PriceWindow. Every result
// is optional: None means the window does not yet hold enough history
// for that period, which callers treat as "not ready" rather than an
// error. Periods are validated when the strategy config is loaded, so a
// non-positive period here simply yields None.
type Set struct {
	window *PriceWindow
}

// NewSet creates an indicator set reading from window.
func NewSet(window *PriceWindow) *Set {
	return &Set{window: window}
}

// Window returns the underlying price window.
func (s *Set) Window() *PriceWindow {
	return s.window
}

// MovingAverage returns the simple moving average of the last period
// prices, including the newest one.
func (s *Set) MovingAverage(period int) optional.Option[float64] {
	if period < 1 {
		return optional.None[float64]()
	}
	prices, err := s.window.Snapshot(period)
	if err != nil {
		return optional.None[float64]()
	}
	return optional.Some(mean(prices))
}

// MovingAveragePrevious returns the simple moving average of period
// prices ending one candle before the newest. Comparing it against
// MovingAverage of the same period tells whether that average rose or
// fell on the latest candle.
func (s *Set) MovingAveragePrevious(period int) optional.Option[float64] {
	if period < 1 {
		return optional.None[float64]()
	}
	prices, err := s.window.SnapshotExcludingLast(period)
	if err != nil {
		return optional.None[float64]()
	}
	return optional.Some(mean(prices))
}

// RSI returns the relative strength index over the last period deltas,
// which needs period+1 prices. Gains and losses are averaged over the
// full snapshot length, the simple average variant rather than Wilder
// smoothing. When there are no losses in the lookback the RSI saturates
// at 100.
func (s *Set) RSI(period int) optional.Option[float64] {
	if period < 1 {
		return optional.None[float64]()
	}
	prices, err := s.window.Snapshot(period + 1)
	if err != nil {
		return optional.None[float64]()
	}
	return optional.Some(computeRSI(prices))
}

// Ready reports whether every indicator the given longest period needs
// can be computed, i.e. the window holds longestPeriod+1 prices so even
// the previous moving average of the longest period is available.
func (s *Set) Ready(longestPeriod int) bool {
	return s.window.Len() >= longestPeriod+1
}

func mean(prices []float64) float64 {
	var sum float64
	for _, p := range prices {
		sum += p
	}
	return sum / float64(len(prices))
}

func computeRSI(prices []float64) float64 {
	var gains, losses float64
	for i := 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	n := float64(len(prices))
	avgGain := gains / n
	avgLoss := losses / n
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
