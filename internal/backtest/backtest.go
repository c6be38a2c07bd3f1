package backtest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rxtech-lab/mark-trading/internal/datasource"
	"github.com/rxtech-lab/mark-trading/internal/logger"
	"github.com/rxtech-lab/mark-trading/internal/strategy"
	"github.com/rxtech-lab/mark-trading/internal/types"
	"github.com/rxtech-lab/mark-trading/internal/version"
	"github.com/rxtech-lab/mark-trading/pkg/errors"
)

// Backtest wires a data source, a decision engine and a runner into one
// run and writes the results folder. Each Run builds a fresh engine, so
// a Backtest can be reused across data sources.
type Backtest struct {
	cfg           RunConfig
	log           *logger.Logger
	resultsFolder string
	dataPath      string
	callbacks     RunCallbacks
}

// New validates the run config and builds a backtest.
func New(cfg RunConfig, log *logger.Logger) (*Backtest, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Backtest{cfg: cfg, log: log}, nil
}

// SetDataPath records the candle file path in the stats document.
func (b *Backtest) SetDataPath(path string) {
	b.dataPath = path
}

// SetResultsFolder enables writing stats.yaml and trades.yaml under the
// given root after each run. Without it runs are in-memory only.
func (b *Backtest) SetResultsFolder(path string) {
	b.resultsFolder = path
}

// SetCallbacks installs per-row hooks forwarded to the runner.
func (b *Backtest) SetCallbacks(callbacks RunCallbacks) {
	b.callbacks = callbacks
}

// Run reads the configured candle range from source, evaluates the
// strategy and replays its signals under the cost model. It returns the
// stats document, which is also persisted when a results folder is set.
func (b *Backtest) Run(ctx context.Context, source datasource.DataSource) (types.BacktestStats, error) {
	if source == nil {
		return types.BacktestStats{}, errors.New(errors.ErrCodeBacktestInitFailed, "no data source")
	}

	start, end := b.cfg.Backtest.StartTime, b.cfg.Backtest.EndTime

	count, err := source.Count(start, end)
	if err != nil {
		return types.BacktestStats{}, err
	}
	if count == 0 {
		b.log.Error("no candles in the configured range")
		return types.BacktestStats{}, errors.New(errors.ErrCodeEmptyDataset, "no candles in the configured range")
	}

	eng, err := strategy.NewEngine(b.cfg.Strategy, b.log)
	if err != nil {
		return types.BacktestStats{}, err
	}
	runner, err := NewRunner(b.cfg.Backtest, b.log)
	if err != nil {
		return types.BacktestStats{}, err
	}
	runner.SetCallbacks(b.callbacks)

	candles := make([]types.MarketData, 0, count)
	for candle, err := range source.ReadAll(start, end) {
		select {
		case <-ctx.Done():
			return types.BacktestStats{}, ctx.Err()
		default:
		}
		if err != nil {
			return types.BacktestStats{}, err
		}
		candles = append(candles, candle)
	}

	b.log.Info("starting backtest",
		zap.String("symbol", b.cfg.Strategy.Symbol),
		zap.String("preset", b.cfg.Strategy.Preset),
		zap.Int("candles", len(candles)),
	)

	result, err := runner.RunStrategy(candles, eng)
	if err != nil {
		return types.BacktestStats{}, err
	}

	stats := types.BacktestStats{
		ID:             uuid.New().String(),
		Timestamp:      time.Now().UTC(),
		EngineVersion:  version.GetVersion(),
		Symbol:         b.cfg.Strategy.Symbol,
		DataPath:       b.dataPath,
		Strategy:       b.cfg.Strategy.Info(),
		InitialBalance: result.InitialBalance,
		FinalBalance:   result.FinalBalance,
		Metrics:        result.Metrics,
	}

	if b.resultsFolder != "" {
		runDir, err := WriteResults(b.resultsFolder, stats, result.Trades)
		if err != nil {
			return types.BacktestStats{}, err
		}
		stats.TradesFile = tradesFileName
		b.log.Info("results written", zap.String("folder", runDir))
	}

	b.log.Info("backtest finished",
		zap.Float64("final_balance", stats.FinalBalance),
		zap.Float64("total_return", stats.Metrics.TotalReturn),
		zap.Int("trades", stats.Metrics.NumberOfTrades),
	)
	return stats, nil
}
