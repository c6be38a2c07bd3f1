package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/mark-trading/internal/datasource"
	"github.com/rxtech-lab/mark-trading/internal/logger"
	"github.com/rxtech-lab/mark-trading/internal/sweep"
	"github.com/rxtech-lab/mark-trading/internal/types"
	"github.com/rxtech-lab/mark-trading/pkg/errors"
)

// topResults is how many of the best combinations the summary prints.
const topResults = 5

// sweepAction loads the grid config, reads the candle file once and
// backtests every combination, writing the sweep summary at the end.
func sweepAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	dataPath := cmd.String("data")
	outputPath := cmd.String("output")

	l, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer l.Sync()

	cfg, err := sweep.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load sweep config: %w", err)
	}

	source, err := datasource.NewDuckDBDataSource(dataPath, l)
	if err != nil {
		return fmt.Errorf("failed to open candle file %s: %w", dataPath, err)
	}
	defer source.Close()

	var candles []types.MarketData
	for candle, err := range source.ReadAll(optional.None[time.Time](), optional.None[time.Time]()) {
		if err != nil {
			return fmt.Errorf("failed to read candles: %w", err)
		}

		candles = append(candles, candle)
	}

	if len(candles) == 0 {
		return errors.New(errors.ErrCodeEmptyDataset, "candle file holds no rows")
	}

	sweeper, err := sweep.New(cfg, l)
	if err != nil {
		return fmt.Errorf("failed to create sweeper: %w", err)
	}

	var bar *progressbar.ProgressBar

	onResult := sweep.OnResultCallback(func(done int, total int, result sweep.Result) error {
		if bar == nil {
			bar = progressbar.Default(int64(total), "Sweeping")
		}

		return bar.Set(done)
	})
	sweeper.SetCallbacks(sweep.Callbacks{OnResult: &onResult})

	summary, err := sweeper.Run(ctx, candles)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	if err := os.MkdirAll(outputPath, 0755); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}

	summaryPath := filepath.Join(outputPath, sweep.SummaryFileName)
	if err := sweep.WriteSummary(summaryPath, summary); err != nil {
		return fmt.Errorf("failed to write sweep summary: %w", err)
	}

	fmt.Printf("\nSweep %s finished: %d combinations over %d candles\n",
		summary.ID, len(summary.Results), summary.Candles)

	for i, result := range summary.Results {
		if i >= topResults {
			break
		}

		fmt.Printf("  short=%d medium=%d long=%d  return %.2f%%  drawdown %.2f%%  trades %d\n",
			result.ShortPeriod, result.MediumPeriod, result.LongPeriod,
			result.Metrics.TotalReturn*100, result.Metrics.MaxDrawdown*100,
			result.Metrics.NumberOfTrades)
	}

	fmt.Printf("Summary written to %s\n", summaryPath)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "sweep",
		Usage: "Grid-search strategy periods over a historical candle file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the sweep config yaml",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the candle file (.parquet, .db or .duckdb)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Folder the sweep summary is written to",
				Value:    "results",
				Required: false,
			},
		},
		Action: sweepAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
