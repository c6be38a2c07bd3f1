package types

import (
	"time"
)

// MarketData is a single OHLCV candle for one symbol. Time is the candle
// open time in UTC. A candle coming from a live stream is only emitted
// once the exchange marks it final, so consumers never see a partial bar.
type MarketData struct {
	Id     string    `json:"id" yaml:"id" csv:"id"`
	Symbol string    `json:"symbol" yaml:"symbol" csv:"symbol"`
	Time   time.Time `json:"time" yaml:"time" csv:"time"`
	Open   float64   `json:"open" yaml:"open" csv:"open"`
	High   float64   `json:"high" yaml:"high" csv:"high"`
	Low    float64   `json:"low" yaml:"low" csv:"low"`
	Close  float64   `json:"close" yaml:"close" csv:"close"`
	Volume float64   `json:"volume" yaml:"volume" csv:"volume"`
}

// Interval is the candle duration used when downloading or streaming
// market data.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
)

// Duration returns the wall-clock length of one candle at this interval.
func (i Interval) Duration() time.Duration {
	switch i {
	case Interval1m:
		return time.Minute
	case Interval5m:
		return 5 * time.Minute
	case Interval15m:
		return 15 * time.Minute
	case Interval30m:
		return 30 * time.Minute
	case Interval1h:
		return time.Hour
	case Interval4h:
		return 4 * time.Hour
	case Interval1d:
		return 24 * time.Hour
	default:
		return time.Minute
	}
}
