package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/mark-trading/internal/types"
)

// DataGenerator produces synthetic candle series for tests and the mock
// market data server. Prices follow a geometric Brownian motion so the
// series look like real markets without being real.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a generator seeded for reproducible output.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig controls the shape of a generated series.
type GeneratorConfig struct {
	// Symbol is the trading symbol (e.g. "AAPL", "BTCUSDT").
	Symbol string
	// StartTime is the timestamp of the first candle.
	StartTime time.Time
	// Interval is the spacing between candles.
	Interval time.Duration
	// Count is the number of candles to generate.
	Count int
	// InitialPrice is the open of the first candle.
	InitialPrice float64
	// Volatility is the per-candle standard deviation of returns
	// (0.002 means 0.2% per candle).
	Volatility float64
	// Trend is the total drift applied across the whole series,
	// negative for bearish and positive for bullish.
	Trend float64
	// VolumeBase is the average volume per candle.
	VolumeBase float64
	// VolumeVariance scales volume noise, between 0 and 1.
	VolumeVariance float64
}

// DefaultConfig returns a neutral minute-bar series configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "TEST",
		StartTime:      time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		Interval:       time.Minute,
		Count:          1000,
		InitialPrice:   100.0,
		Volatility:     0.002,
		Trend:          0.0,
		VolumeBase:     10000,
		VolumeVariance: 0.3,
	}
}

// Generate produces config.Count candles in ascending time order.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.MarketData {
	data := make([]types.MarketData, config.Count)
	price := config.InitialPrice
	timestamp := config.StartTime

	for i := 0; i < config.Count; i++ {
		open := price

		shock := config.Volatility * g.rng.NormFloat64()
		drift := config.Trend / float64(config.Count)

		close := open * (1 + shock + drift)
		if close <= 0 {
			close = open * 0.99
		}

		// Wicks extend past the body by up to half a volatility unit.
		highWick := g.rng.Float64() * config.Volatility * open * 0.5
		lowWick := g.rng.Float64() * config.Volatility * open * 0.5

		high := math.Max(open, close) + highWick

		low := math.Min(open, close) - lowWick
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		volume := config.VolumeBase * (1 + (g.rng.Float64()*2-1)*config.VolumeVariance)
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		data[i] = types.MarketData{
			Id:     "",
			Symbol: config.Symbol,
			Time:   timestamp,
			Open:   roundTo(open, 4),
			High:   roundTo(high, 4),
			Low:    roundTo(low, 4),
			Close:  roundTo(close, 4),
			Volume: roundTo(volume, 2),
		}

		price = close
		timestamp = timestamp.Add(config.Interval)
	}

	return data
}

// GenerateMultiSymbol produces one series per symbol, varying the initial
// price and volatility so symbols do not move in lockstep.
func (g *DataGenerator) GenerateMultiSymbol(symbols []string, baseConfig GeneratorConfig) []types.MarketData {
	var allData []types.MarketData

	for _, symbol := range symbols {
		config := baseConfig
		config.Symbol = symbol
		config.InitialPrice = baseConfig.InitialPrice * (0.8 + g.rng.Float64()*0.4)
		config.Volatility = baseConfig.Volatility * (0.8 + g.rng.Float64()*0.4)

		allData = append(allData, g.Generate(config)...)
	}

	return allData
}

func roundTo(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
