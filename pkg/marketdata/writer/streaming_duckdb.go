package writer

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/rxtech-lab/mark-trading/internal/types"
	"github.com/rxtech-lab/mark-trading/pkg/errors"
)

// StreamingDuckDBWriter persists streamed candles with append and
// restart support. Every Write upserts on (symbol, time) and re-exports
// the Parquet file, so a watch session that reconnects continues the
// same file without duplicating candles. The file is named
// stream_data_{provider}_{interval}.parquet.
type StreamingDuckDBWriter struct {
	db         *sql.DB
	outputPath string
	mu         sync.Mutex
}

// NewStreamingDuckDBWriter creates a streaming writer storing its
// Parquet file under dataDir.
func NewStreamingDuckDBWriter(dataDir, providerName, interval string) *StreamingDuckDBWriter {
	filename := fmt.Sprintf("stream_data_%s_%s.parquet", providerName, interval)
	return &StreamingDuckDBWriter{
		outputPath: filepath.Join(dataDir, filename),
	}
}

// Initialize opens the database and reloads any candles a previous
// session already exported. Calling it on an already initialized
// writer is a no-op.
func (w *StreamingDuckDBWriter) Initialize() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(w.outputPath), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create data directory", err)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to open duckdb connection", err)
	}
	w.db = db

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS market_data (
			id TEXT,
			time TIMESTAMP,
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE,
			PRIMARY KEY (symbol, time)
		)
	`)
	if err != nil {
		w.db.Close()
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create market_data table", err)
	}

	// A corrupt or schema-incompatible previous file is ignored and
	// overwritten on the next write.
	if _, err := os.Stat(w.outputPath); err == nil {
		w.db.Exec(fmt.Sprintf(`
			INSERT INTO market_data
			SELECT * FROM read_parquet('%s')
			ON CONFLICT (symbol, time) DO NOTHING
		`, w.outputPath))
	}

	return nil
}

// Write upserts one finalized candle and re-exports the Parquet file.
func (w *StreamingDuckDBWriter) Write(data types.MarketData) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return errors.New(errors.ErrCodeMarketDataWriteFailed, "writer is not initialized")
	}

	id := data.Id
	if id == "" {
		id = uuid.New().String()
	}

	_, err := w.db.Exec(`
		INSERT INTO market_data (id, time, symbol, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol, time) DO UPDATE SET
			id = excluded.id,
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			volume = excluded.volume
	`, id, data.Time, data.Symbol, data.Open, data.High, data.Low, data.Close, data.Volume)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to upsert candle", err)
	}

	return w.exportToParquet()
}

// Finalize exports the current contents one last time.
func (w *StreamingDuckDBWriter) Finalize() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "writer is not initialized")
	}

	if err := w.exportToParquet(); err != nil {
		return "", err
	}

	return w.outputPath, nil
}

// GetOutputPath returns the Parquet file path.
func (w *StreamingDuckDBWriter) GetOutputPath() string {
	return w.outputPath
}

// Close releases database resources.
func (w *StreamingDuckDBWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to close duckdb connection", err)
		}
		w.db = nil
	}

	return nil
}

// exportToParquet writes the table, sorted by time, to the output file.
// Callers must hold the mutex.
func (w *StreamingDuckDBWriter) exportToParquet() error {
	_, err := w.db.Exec(fmt.Sprintf(`
		COPY (SELECT * FROM market_data ORDER BY time ASC)
		TO '%s' (FORMAT PARQUET)
	`, w.outputPath))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to export parquet file %s", w.outputPath)
	}

	return nil
}

var _ MarketDataWriter = (*StreamingDuckDBWriter)(nil)
