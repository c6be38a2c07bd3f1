package datasource

import (
	"iter"
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/mark-trading/internal/types"
)

// DataSource iterates candles in ascending time order. Implementations
// are read-only once constructed, so a single source can feed many
// concurrent backtests.
type DataSource interface {
	// ReadAll yields every candle in the optional time range, oldest
	// first. Iteration stops early when the consumer breaks, and a
	// non-nil error is yielded at most once, as the final element.
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) iter.Seq2[types.MarketData, error]
	// Count returns the number of candles in the optional time range.
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// ReadLastData returns the newest candle for a symbol.
	ReadLastData(symbol string) (types.MarketData, error)
	// Close releases any resources held by the source.
	Close() error
}
