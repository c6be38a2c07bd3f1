package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/mark-trading/internal/backtest"
	"github.com/rxtech-lab/mark-trading/internal/datasource"
	"github.com/rxtech-lab/mark-trading/internal/logger"
)

// backtestAction loads the run config, opens the candle file and runs the
// backtest, writing the results folder when one is configured.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	dataPath := cmd.String("data")
	outputPath := cmd.String("output")

	l, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer l.Sync()

	cfg, err := backtest.LoadRunConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load backtest config: %w", err)
	}

	source, err := datasource.NewDuckDBDataSource(dataPath, l)
	if err != nil {
		return fmt.Errorf("failed to open candle file %s: %w", dataPath, err)
	}
	defer source.Close()

	b, err := backtest.New(cfg, l)
	if err != nil {
		return fmt.Errorf("failed to create backtest: %w", err)
	}
	b.SetDataPath(dataPath)

	if outputPath != "" {
		b.SetResultsFolder(outputPath)
	}

	var bar *progressbar.ProgressBar

	onRow := backtest.OnRowCallback(func(index int, total int, equity float64) error {
		if bar == nil {
			bar = progressbar.Default(int64(total), "Backtesting")
		}

		return bar.Set(index + 1)
	})
	b.SetCallbacks(backtest.RunCallbacks{OnRow: &onRow})

	stats, err := b.Run(ctx, source)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	fmt.Printf("\nBacktest %s finished\n", stats.ID)
	fmt.Printf("  Symbol:          %s (%s)\n", stats.Symbol, stats.Strategy.Name)
	fmt.Printf("  Initial balance: %.2f\n", stats.InitialBalance)
	fmt.Printf("  Final balance:   %.2f\n", stats.FinalBalance)
	fmt.Printf("  Total return:    %.2f%%\n", stats.Metrics.TotalReturn*100)
	fmt.Printf("  Max drawdown:    %.2f%%\n", stats.Metrics.MaxDrawdown*100)
	fmt.Printf("  Sharpe ratio:    %.2f\n", stats.Metrics.SharpeRatio)
	fmt.Printf("  Trades:          %d (win rate %.2f%%)\n", stats.Metrics.NumberOfTrades, stats.Metrics.WinRate*100)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Run a strategy backtest over a historical candle file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the backtest config yaml",
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
				Usage:    "Results folder; omit to run in-memory only",
				Value:    "results",
				Required: false,
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
