package sweep

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rxtech-lab/mark-trading/internal/backtest"
	"github.com/rxtech-lab/mark-trading/internal/logger"
	"github.com/rxtech-lab/mark-trading/internal/strategy"
	"github.com/rxtech-lab/mark-trading/internal/types"
	"github.com/rxtech-lab/mark-trading/internal/version"
	"github.com/rxtech-lab/mark-trading/pkg/errors"
)

// Combination is one point of the parameter grid.
type Combination struct {
	ShortPeriod  int `yaml:"short_period" json:"short_period"`
	MediumPeriod int `yaml:"medium_period" json:"medium_period"`
	LongPeriod   int `yaml:"long_period" json:"long_period"`
}

// Result is the outcome of backtesting one combination.
type Result struct {
	ShortPeriod  int           `yaml:"short_period" json:"short_period"`
	MediumPeriod int           `yaml:"medium_period" json:"medium_period"`
	LongPeriod   int           `yaml:"long_period" json:"long_period"`
	FinalBalance float64       `yaml:"final_balance" json:"final_balance"`
	Metrics      types.Metrics `yaml:"metrics" json:"metrics"`
}

// Summary is the sweep.yaml document: every combination's metrics,
// best first.
type Summary struct {
	ID             string    `yaml:"id" json:"id"`
	Timestamp      time.Time `yaml:"timestamp" json:"timestamp"`
	EngineVersion  string    `yaml:"engine_version" json:"engine_version"`
	Symbol         string    `yaml:"symbol" json:"symbol"`
	Preset         string    `yaml:"preset" json:"preset"`
	InitialBalance float64   `yaml:"initial_balance" json:"initial_balance"`
	Candles        int       `yaml:"candles" json:"candles"`
	Results        []Result  `yaml:"results" json:"results"`
}

// OnResultCallback fires once per finished combination, in completion
// order. A callback error is logged and the sweep continues.
type OnResultCallback func(done int, total int, result Result) error

// Callbacks are optional sweep hooks. Nil fields are skipped.
type Callbacks struct {
	OnResult *OnResultCallback
}

// Sweeper runs every grid combination as its own engine and runner over
// a shared candle slice. Workers never share mutable state, so the
// result set is identical regardless of worker count or scheduling.
type Sweeper struct {
	cfg       Config
	log       *logger.Logger
	callbacks Callbacks
}

// New fills config defaults, validates and builds a sweeper.
func New(cfg Config, log *logger.Logger) (*Sweeper, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Sweeper{cfg: cfg, log: log}, nil
}

// SetCallbacks installs sweep hooks, replacing any previous ones.
func (s *Sweeper) SetCallbacks(callbacks Callbacks) {
	s.callbacks = callbacks
}

// Combinations expands the grid in (short, medium) order, skipping
// pairs where the short period is not below the medium one.
func (s *Sweeper) Combinations() []Combination {
	var combos []Combination
	for short := s.cfg.ShortMin; short <= s.cfg.ShortMax; short++ {
		for medium := s.cfg.MediumMin; medium <= s.cfg.MediumMax; medium++ {
			if short >= medium {
				continue
			}
			combos = append(combos, Combination{
				ShortPeriod:  short,
				MediumPeriod: medium,
				LongPeriod:   s.cfg.LongPeriod,
			})
		}
	}
	return combos
}

// Run backtests every combination over the candles and returns the
// summary, best total return first. Ties are broken by the shorter
// periods so the ordering is stable across runs.
func (s *Sweeper) Run(ctx context.Context, candles []types.MarketData) (Summary, error) {
	if len(candles) == 0 {
		return Summary{}, errors.New(errors.ErrCodeEmptyDataset, "no candles to sweep")
	}

	combos := s.Combinations()
	if len(combos) == 0 {
		return Summary{}, errors.New(errors.ErrCodeSweepConfigError, "parameter grid is empty")
	}

	workers := s.cfg.Concurrency
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(combos) {
		workers = len(combos)
	}

	s.log.Info("starting parameter sweep",
		zap.String("symbol", s.cfg.Symbol),
		zap.String("preset", s.cfg.Preset),
		zap.Int("combinations", len(combos)),
		zap.Int("workers", workers),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan Combination)
	results := make([]Result, 0, len(combos))

	var mu sync.Mutex
	var firstErr error
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for combo := range jobs {
				result, err := s.evaluate(combo, candles)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = errors.Wrapf(errors.ErrCodeSweepRunFailed, err,
							"sweep failed at short=%d medium=%d", combo.ShortPeriod, combo.MediumPeriod)
					}
					mu.Unlock()
					cancel()
					return
				}

				mu.Lock()
				results = append(results, result)
				if s.callbacks.OnResult != nil {
					if cbErr := (*s.callbacks.OnResult)(len(results), len(combos), result); cbErr != nil {
						s.log.Error("sweep callback failed", zap.Error(cbErr))
					}
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for _, combo := range combos {
		select {
		case jobs <- combo:
		case <-runCtx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return Summary{}, firstErr
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Metrics.TotalReturn != results[j].Metrics.TotalReturn {
			return results[i].Metrics.TotalReturn > results[j].Metrics.TotalReturn
		}
		if results[i].ShortPeriod != results[j].ShortPeriod {
			return results[i].ShortPeriod < results[j].ShortPeriod
		}
		return results[i].MediumPeriod < results[j].MediumPeriod
	})

	s.log.Info("sweep finished",
		zap.Int("results", len(results)),
		zap.Float64("best_return", results[0].Metrics.TotalReturn),
		zap.Int("best_short", results[0].ShortPeriod),
		zap.Int("best_medium", results[0].MediumPeriod),
	)

	return Summary{
		ID:             uuid.New().String(),
		Timestamp:      time.Now().UTC(),
		EngineVersion:  version.GetVersion(),
		Symbol:         s.cfg.Symbol,
		Preset:         s.cfg.Preset,
		InitialBalance: s.cfg.InitialBalance,
		Candles:        len(candles),
		Results:        results,
	}, nil
}

// evaluate backtests a single combination with its own engine and
// runner so nothing leaks between grid points.
func (s *Sweeper) evaluate(combo Combination, candles []types.MarketData) (Result, error) {
	stratCfg := strategy.Config{
		Preset:         s.cfg.Preset,
		Symbol:         s.cfg.Symbol,
		InitialBalance: s.cfg.InitialBalance,
		ShortPeriod:    combo.ShortPeriod,
		MediumPeriod:   combo.MediumPeriod,
		LongPeriod:     combo.LongPeriod,
	}
	stratCfg.ApplyDefaults()

	eng, err := strategy.NewEngine(stratCfg, logger.NewNopLogger())
	if err != nil {
		return Result{}, err
	}

	runCfg := backtest.EmptyConfig()
	runCfg.InitialBalance = s.cfg.InitialBalance
	runCfg.CommissionRate = s.cfg.CommissionRate
	runCfg.SlippageRate = s.cfg.SlippageRate

	runner, err := backtest.NewRunner(runCfg, logger.NewNopLogger())
	if err != nil {
		return Result{}, err
	}

	result, err := runner.RunStrategy(candles, eng)
	if err != nil {
		return Result{}, err
	}

	return Result{
		ShortPeriod:  combo.ShortPeriod,
		MediumPeriod: combo.MediumPeriod,
		LongPeriod:   combo.LongPeriod,
		FinalBalance: result.FinalBalance,
		Metrics:      result.Metrics,
	}, nil
}
