package writer

import (
	"github.com/rxtech-lab/mark-trading/internal/types"
)

// MarketDataWriter persists candles coming out of a provider. Batch
// writers buffer until Finalize, streaming writers make every candle
// durable as it arrives.
type MarketDataWriter interface {
	// Initialize sets up the writer, creating tables or files as needed.
	Initialize() error
	// Write persists a single candle.
	Write(data types.MarketData) error
	// Finalize completes the writing process and returns the output path.
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}
