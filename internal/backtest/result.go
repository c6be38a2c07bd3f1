package backtest

import (
	"os"
	"path/filepath"

	"github.com/rxtech-lab/mark-trading/internal/types"
	"github.com/rxtech-lab/mark-trading/internal/version"
	"github.com/rxtech-lab/mark-trading/pkg/errors"
)

const (
	statsFileName  = "stats.yaml"
	tradesFileName = "trades.yaml"
)

// WriteResults creates a folder named after the run ID under
// resultsRoot and writes stats.yaml plus trades.yaml into it. It
// returns the run folder path.
func WriteResults(resultsRoot string, stats types.BacktestStats, trades []types.Operation) (string, error) {
	runDir := filepath.Join(resultsRoot, stats.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", errors.Wrapf(errors.ErrCodeResultWriteFailed, err, "failed to create results folder %s", runDir)
	}

	stats.TradesFile = tradesFileName
	if err := types.WriteBacktestStats(filepath.Join(runDir, statsFileName), stats); err != nil {
		return "", errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to write stats file", err)
	}
	if err := types.WriteOperations(filepath.Join(runDir, tradesFileName), trades); err != nil {
		return "", errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to write trades file", err)
	}
	return runDir, nil
}

// ReadResults loads a run folder written by WriteResults. The engine
// version recorded in the stats file must be compatible with this
// build, otherwise the results are rejected.
func ReadResults(runDir string) (types.BacktestStats, []types.Operation, error) {
	stats, err := types.ReadBacktestStats(filepath.Join(runDir, statsFileName))
	if err != nil {
		return types.BacktestStats{}, nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read stats from %s", runDir)
	}

	if err := version.CheckCompatibility(version.GetVersion(), stats.EngineVersion); err != nil {
		return types.BacktestStats{}, nil, err
	}

	trades, err := types.ReadOperations(filepath.Join(runDir, stats.TradesFile))
	if err != nil {
		return types.BacktestStats{}, nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read trades from %s", runDir)
	}
	return stats, trades, nil
}
