package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMarketDataStruct(t *testing.T) {
	now := time.Now().UTC()
	candle := MarketData{
		Id:     "1",
		Symbol: "BTCUSDT",
		Time:   now,
		Open:   50000.0,
		High:   50500.0,
		Low:    49800.0,
		Close:  50200.0,
		Volume: 123.45,
	}

	assert.Equal(t, "BTCUSDT", candle.Symbol)
	assert.Equal(t, now, candle.Time)
	assert.Equal(t, 50000.0, candle.Open)
	assert.Equal(t, 50500.0, candle.High)
	assert.Equal(t, 49800.0, candle.Low)
	assert.Equal(t, 50200.0, candle.Close)
	assert.Equal(t, 123.45, candle.Volume)

	assert.GreaterOrEqual(t, candle.High, candle.Open)
	assert.GreaterOrEqual(t, candle.High, candle.Close)
	assert.LessOrEqual(t, candle.Low, candle.Open)
	assert.LessOrEqual(t, candle.Low, candle.Close)
}

func TestMarketDataZeroValues(t *testing.T) {
	var candle MarketData

	assert.Empty(t, candle.Symbol)
	assert.True(t, candle.Time.IsZero())
	assert.Zero(t, candle.Open)
	assert.Zero(t, candle.High)
	assert.Zero(t, candle.Low)
	assert.Zero(t, candle.Close)
	assert.Zero(t, candle.Volume)
}

func TestIntervalDuration(t *testing.T) {
	tests := []struct {
		interval Interval
		want     time.Duration
	}{
		{Interval1m, time.Minute},
		{Interval5m, 5 * time.Minute},
		{Interval15m, 15 * time.Minute},
		{Interval30m, 30 * time.Minute},
		{Interval1h, time.Hour},
		{Interval4h, 4 * time.Hour},
		{Interval1d, 24 * time.Hour},
		{Interval("unknown"), time.Minute},
	}

	for _, tt := range tests {
		t.Run(string(tt.interval), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.interval.Duration())
		})
	}
}
