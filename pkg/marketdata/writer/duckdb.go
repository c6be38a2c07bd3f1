package writer

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/rxtech-lab/mark-trading/internal/types"
	"github.com/rxtech-lab/mark-trading/pkg/errors"
)

// DuckDBWriter buffers candles in an in-memory DuckDB table inside one
// transaction and exports the whole table as a Parquet file on
// Finalize. Rows are written in download order and sorted by time on
// export, so the resulting file is ready for the backtest datasource.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
}

// NewDuckDBWriter creates a writer that exports to outputPath on
// Finalize.
func NewDuckDBWriter(outputPath string) *DuckDBWriter {
	return &DuckDBWriter{
		outputPath: outputPath,
	}
}

// Initialize opens the in-memory database, creates the candle table
// and starts the insert transaction. Calling it on an already
// initialized writer is a no-op.
func (w *DuckDBWriter) Initialize() (err error) {
	if w.db != nil {
		return nil
	}

	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to open duckdb connection", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS market_data (
			id TEXT,
			time TIMESTAMP,
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create market_data table", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to begin transaction", err)
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO market_data (id, time, symbol, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to prepare insert statement", err)
	}

	return nil
}

// Write inserts a single candle into the buffered transaction.
func (w *DuckDBWriter) Write(data types.MarketData) error {
	if w.stmt == nil {
		return errors.New(errors.ErrCodeMarketDataWriteFailed, "writer is not initialized")
	}

	id := data.Id
	if id == "" {
		id = uuid.New().String()
	}

	_, err := w.stmt.Exec(
		id,
		data.Time,
		data.Symbol,
		data.Open,
		data.High,
		data.Low,
		data.Close,
		data.Volume,
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to insert candle", err)
	}

	return nil
}

// Finalize commits the transaction and exports the table, sorted by
// time, to the Parquet output file.
func (w *DuckDBWriter) Finalize() (string, error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "writer is not initialized")
	}

	if err := w.tx.Commit(); err != nil {
		w.tx.Rollback()
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to commit transaction", err)
	}
	w.tx = nil

	query := fmt.Sprintf(`COPY (SELECT * FROM market_data ORDER BY time ASC) TO '%s' (FORMAT PARQUET)`, w.outputPath)
	if _, err := w.db.Exec(query); err != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to export parquet file %s", w.outputPath)
	}

	return w.outputPath, nil
}

// GetOutputPath returns the Parquet file path.
func (w *DuckDBWriter) GetOutputPath() string {
	return w.outputPath
}

// Close rolls back any unfinished transaction and closes the database.
func (w *DuckDBWriter) Close() error {
	var firstErr error

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		w.stmt = nil
	}

	if w.tx != nil {
		w.tx.Rollback()
		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		w.db = nil
	}

	if firstErr != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to close duckdb writer", firstErr)
	}

	return nil
}

var _ MarketDataWriter = (*DuckDBWriter)(nil)
