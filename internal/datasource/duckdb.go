package datasource

import (
	"database/sql"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/mark-trading/internal/logger"
	"github.com/rxtech-lab/mark-trading/internal/types"
	"github.com/rxtech-lab/mark-trading/pkg/errors"
)

// DuckDBDataSource reads candles through an in-process DuckDB instance.
// A parquet file is exposed as a view, a .db or .duckdb file written by
// the downloader is attached read-only. Either way queries go against a
// market_data relation ordered by time.
type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBDataSource opens an in-memory DuckDB and binds the given
// candle file to it.
func NewDuckDBDataSource(path string, log *logger.Logger) (*DuckDBDataSource, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	source := &DuckDBDataSource{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if err := source.initialize(path); err != nil {
		db.Close()
		return nil, err
	}
	return source, nil
}

func (d *DuckDBDataSource) initialize(path string) error {
	d.logger.Debug("initializing duckdb data source", zap.String("path", path))

	switch {
	case strings.HasSuffix(path, ".parquet"):
		query := fmt.Sprintf(`CREATE VIEW market_data AS SELECT * FROM read_parquet('%s');`, path)
		if _, err := d.db.Exec(query); err != nil {
			return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to read parquet file %s", path)
		}

	case strings.HasSuffix(path, ".db"), strings.HasSuffix(path, ".duckdb"):
		query := fmt.Sprintf(`
			ATTACH '%s' AS candles (READ_ONLY);
			CREATE VIEW market_data AS SELECT * FROM candles.market_data;
		`, path)
		if _, err := d.db.Exec(query); err != nil {
			return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to attach database %s", path)
		}

	default:
		return errors.Newf(errors.ErrCodeInvalidParameter, "unsupported data file %s, expected .parquet, .db or .duckdb", path)
	}
	return nil
}

// ReadAll implements DataSource.
func (d *DuckDBDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) iter.Seq2[types.MarketData, error] {
	return func(yield func(types.MarketData, error) bool) {
		query := `SELECT time, symbol, open, high, low, close, volume FROM market_data`
		conditions, params := rangeConditions(start, end)
		if len(conditions) > 0 {
			query += " WHERE " + strings.Join(conditions, " AND ")
		}
		query += " ORDER BY time ASC"

		rows, err := d.db.Query(query, params...)
		if err != nil {
			yield(types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var candle types.MarketData
			err := rows.Scan(&candle.Time, &candle.Symbol, &candle.Open, &candle.High, &candle.Low, &candle.Close, &candle.Volume)
			if err != nil {
				yield(types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan market data row", err))
				return
			}
			if !yield(candle, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "market data iteration failed", err))
		}
	}
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	query := "SELECT COUNT(*) FROM market_data"
	conditions, params := rangeConditions(start, end)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	if err := d.db.QueryRow(query, params...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count market data", err)
	}
	return count, nil
}

// ReadLastData implements DataSource.
func (d *DuckDBDataSource) ReadLastData(symbol string) (types.MarketData, error) {
	query, args, err := d.sq.
		Select("time", "symbol", "open", "high", "low", "close", "volume").
		From("market_data").
		Where(squirrel.Eq{"symbol": symbol}).
		OrderBy("time DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	var candle types.MarketData
	err = d.db.QueryRow(query, args...).Scan(&candle.Time, &candle.Symbol, &candle.Open, &candle.High, &candle.Low, &candle.Close, &candle.Volume)
	if err == sql.ErrNoRows {
		return types.MarketData{}, errors.Newf(errors.ErrCodeDataNotFound, "no data for symbol %s", symbol)
	}
	if err != nil {
		return types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read last candle", err)
	}
	return candle, nil
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}

func rangeConditions(start optional.Option[time.Time], end optional.Option[time.Time]) ([]string, []interface{}) {
	var conditions []string
	var params []interface{}

	if start.IsSome() {
		params = append(params, start.Unwrap())
		conditions = append(conditions, fmt.Sprintf("time >= $%d", len(params)))
	}
	if end.IsSome() {
		params = append(params, end.Unwrap())
		conditions = append(conditions, fmt.Sprintf("time <= $%d", len(params)))
	}
	return conditions, params
}
