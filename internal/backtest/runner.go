package backtest

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rxtech-lab/mark-trading/internal/logger"
	"github.com/rxtech-lab/mark-trading/internal/metrics"
	"github.com/rxtech-lab/mark-trading/internal/strategy"
	"github.com/rxtech-lab/mark-trading/internal/types"
	"github.com/rxtech-lab/mark-trading/pkg/errors"
)

// Row is one backtest input row: a price and the signal to act on it.
// Signal follows the column contract: +1 buys while flat, -1 sells
// while long, anything else holds.
type Row struct {
	Time   time.Time
	Price  float64
	Signal int
}

// OnRowCallback fires after the equity point for a row was appended and
// before the row's signal executes. A callback error is logged and the
// run continues.
type OnRowCallback func(index int, total int, equity float64) error

// RunCallbacks are optional run hooks. Nil fields are skipped.
type RunCallbacks struct {
	OnRow *OnRowCallback
}

// Runner replays a signal column over prices under a commission and
// slippage cost model. It keeps its own cash and units, separate from
// any decision engine that may have produced the signals: the engine
// simulates the strategy without costs, the runner prices its trades.
type Runner struct {
	cfg       Config
	log       *logger.Logger
	callbacks RunCallbacks
}

// NewRunner validates the config and builds a runner.
func NewRunner(cfg Config, log *logger.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Runner{cfg: cfg, log: log}, nil
}

// SetCallbacks installs run hooks, replacing any previous ones.
func (r *Runner) SetCallbacks(callbacks RunCallbacks) {
	r.callbacks = callbacks
}

// Run replays the rows and returns the finished result with its
// metrics block filled in. The run always ends fully in cash: a
// position still open after the last row is closed at the last price
// with the usual costs.
func (r *Runner) Run(rows []Row) (types.BacktestResult, error) {
	if len(rows) == 0 {
		return types.BacktestResult{}, errors.New(errors.ErrCodeEmptyDataset, "no rows to backtest")
	}

	cash := r.cfg.InitialBalance
	units := 0.0
	curve := make([]types.EquityPoint, 0, len(rows))
	var trades []types.Operation

	for i, row := range rows {
		if row.Price <= 0 {
			return types.BacktestResult{}, errors.Newf(errors.ErrCodeInvalidParameter, "row %d has non-positive price %f", i, row.Price)
		}

		equity := cash
		if units > 0 {
			equity = units * row.Price
		}
		curve = append(curve, types.EquityPoint{Time: row.Time, Equity: equity})

		if r.callbacks.OnRow != nil {
			if err := (*r.callbacks.OnRow)(i, len(rows), equity); err != nil {
				r.log.Error("row callback failed", zap.Int("index", i), zap.Error(err))
			}
		}

		switch {
		case row.Signal > 0 && units == 0:
			exec := row.Price * (1 + r.cfg.SlippageRate)
			units = cash * (1 - r.cfg.CommissionRate) / exec
			cash = 0
			trades = append(trades, r.operation(types.SignalTypeBuyFull, row, units, cash, units, "signal"))

		case row.Signal < 0 && units > 0:
			exec := row.Price * (1 - r.cfg.SlippageRate)
			cash = units * exec * (1 - r.cfg.CommissionRate)
			trades = append(trades, r.operation(types.SignalTypeSellFull, row, units, cash, 0, "signal"))
			units = 0
		}
	}

	if units > 0 {
		last := rows[len(rows)-1]
		exec := last.Price * (1 - r.cfg.SlippageRate)
		cash = units * exec * (1 - r.cfg.CommissionRate)
		trades = append(trades, r.operation(types.SignalTypeSellFull, last, units, cash, 0, "force_close"))
		units = 0

		r.log.Info("force closed open position",
			zap.Float64("price", last.Price),
			zap.Float64("final_balance", cash),
		)
	}

	result := types.BacktestResult{
		InitialBalance: r.cfg.InitialBalance,
		FinalBalance:   cash,
		Trades:         trades,
		EquityCurve:    curve,
	}
	result.Metrics = metrics.Compute(result)
	return result, nil
}

// RunStrategy evaluates the engine candle by candle and replays the
// resulting full buy and sell signals through Run.
func (r *Runner) RunStrategy(candles []types.MarketData, eng *strategy.Engine) (types.BacktestResult, error) {
	if len(candles) == 0 {
		return types.BacktestResult{}, errors.New(errors.ErrCodeEmptyDataset, "no candles to backtest")
	}

	rows := make([]Row, len(candles))
	for i, candle := range candles {
		signal, err := eng.ProcessPrice(candle.Time, candle.Close)
		if err != nil {
			return types.BacktestResult{}, err
		}
		rows[i] = Row{Time: candle.Time, Price: candle.Close, Signal: signal.Type.Direction()}
	}

	result, err := r.Run(rows)
	if err != nil {
		return types.BacktestResult{}, err
	}

	symbol := eng.Config().Symbol
	result.Symbol = symbol
	for i := range result.Trades {
		result.Trades[i].Symbol = symbol
	}
	return result, nil
}

func (r *Runner) operation(kind types.SignalType, row Row, quantity, cashAfter, unitsAfter float64, rule string) types.Operation {
	return types.Operation{
		ID:            uuid.New().String(),
		Timestamp:     row.Time,
		Kind:          kind,
		Price:         row.Price,
		Quantity:      quantity,
		CashAfter:     cashAfter,
		UnitsAfter:    unitsAfter,
		UnrealizedPnL: unitsAfter * row.Price,
		CumulativePnL: cashAfter + unitsAfter*row.Price - r.cfg.InitialBalance,
		Rule:          rule,
	}
}
