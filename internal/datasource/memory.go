package datasource

import (
	"iter"
	"sort"
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/mark-trading/internal/types"
	"github.com/rxtech-lab/mark-trading/pkg/errors"
)

// MemoryDataSource serves candles from a slice. It sorts once at
// construction and never mutates afterwards, which makes it safe to
// share across sweep workers and cheap enough for tests.
type MemoryDataSource struct {
	candles []types.MarketData
}

// NewMemoryDataSource copies and time-sorts the given candles.
func NewMemoryDataSource(candles []types.MarketData) *MemoryDataSource {
	sorted := make([]types.MarketData, len(candles))
	copy(sorted, candles)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})
	return &MemoryDataSource{candles: sorted}
}

// ReadAll implements DataSource.
func (m *MemoryDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) iter.Seq2[types.MarketData, error] {
	return func(yield func(types.MarketData, error) bool) {
		for _, candle := range m.candles {
			if !inRange(candle.Time, start, end) {
				continue
			}
			if !yield(candle, nil) {
				return
			}
		}
	}
}

// Count implements DataSource.
func (m *MemoryDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	count := 0
	for _, candle := range m.candles {
		if inRange(candle.Time, start, end) {
			count++
		}
	}
	return count, nil
}

// ReadLastData implements DataSource.
func (m *MemoryDataSource) ReadLastData(symbol string) (types.MarketData, error) {
	for i := len(m.candles) - 1; i >= 0; i-- {
		if m.candles[i].Symbol == symbol {
			return m.candles[i], nil
		}
	}
	return types.MarketData{}, errors.Newf(errors.ErrCodeDataNotFound, "no data for symbol %s", symbol)
}

// Close implements DataSource.
func (m *MemoryDataSource) Close() error {
	return nil
}

func inRange(t time.Time, start optional.Option[time.Time], end optional.Option[time.Time]) bool {
	if start.IsSome() && t.Before(start.Unwrap()) {
		return false
	}
	if end.IsSome() && t.After(end.Unwrap()) {
		return false
	}
	return true
}
