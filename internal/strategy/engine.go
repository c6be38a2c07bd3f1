package strategy

import (
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/mark-trading/internal/indicator"
	"github.com/rxtech-lab/mark-trading/internal/logger"
	"github.com/rxtech-lab/mark-trading/internal/types"
	"github.com/rxtech-lab/mark-trading/pkg/errors"
)

// Engine evaluates an ordered rule list over a rolling price window and
// keeps the resulting simulated position plus its trade ledger. One
// engine owns one window, one position and one ledger; instances share
// nothing, so sweeps can run many of them concurrently.
//
// The engine trades without commission or slippage. Cost-aware
// execution lives in the backtest runner, which replays engine signals
// with its own cash accounting.
type Engine struct {
	cfg      Config
	rules    []Rule
	window   *indicator.PriceWindow
	ind      *indicator.Set
	position types.Position
	ledger   *Ledger
	required int
	log      *logger.Logger
}

// NewEngine builds an engine from a validated config. The window
// capacity is derived from the longest lookback any rule in the preset
// needs.
func NewEngine(cfg Config, log *logger.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rules, err := PresetRules(cfg)
	if err != nil {
		return nil, err
	}
	return NewEngineWithRules(cfg, rules, log)
}

// NewEngineWithRules builds an engine over an explicit rule list,
// bypassing the presets. The config still provides symbol and starting
// cash.
func NewEngineWithRules(cfg Config, rules []Rule, log *logger.Logger) (*Engine, error) {
	if len(rules) == 0 {
		return nil, errors.New(errors.ErrCodeStrategyConfigError, "rule list is empty")
	}
	required := RequiredWindow(rules)
	window, err := indicator.NewPriceWindow(required)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Engine{
		cfg:      cfg,
		rules:    rules,
		window:   window,
		ind:      indicator.NewSet(window),
		position: types.NewPosition(cfg.InitialBalance),
		ledger:   NewLedger(),
		required: required,
		log:      log,
	}, nil
}

// ProcessPrice pushes one close price, evaluates the rules in order and
// executes the first match. It returns the resulting signal, which is a
// hold when no rule fired or the window is still filling.
func (e *Engine) ProcessPrice(t time.Time, price float64) (types.Signal, error) {
	if price <= 0 {
		return types.Signal{}, errors.Newf(errors.ErrCodeInvalidParameter, "price must be positive, got %f", price)
	}

	e.window.Push(price)

	hold := types.Signal{
		Time:   t,
		Type:   types.SignalTypeHold,
		Symbol: e.cfg.Symbol,
		Price:  price,
	}
	if e.window.Len() < e.required {
		return hold, nil
	}

	for _, rule := range e.rules {
		action, reason, ok := rule.evaluate(e.ind, e.position)
		if !ok {
			continue
		}
		signal := types.Signal{
			Time:   t,
			Type:   action,
			Symbol: e.cfg.Symbol,
			Price:  price,
			Rule:   string(rule.Kind),
			Reason: reason,
		}
		if !e.execute(signal) {
			return hold, nil
		}
		e.log.Info("signal fired",
			zap.String("symbol", e.cfg.Symbol),
			zap.String("rule", string(rule.Kind)),
			zap.String("type", string(action)),
			zap.Float64("price", price),
			zap.Float64("cash", e.position.Cash),
			zap.Float64("units", e.position.Units),
		)
		return signal, nil
	}
	return hold, nil
}

// execute mutates the position for a firing and records the operation.
// It reports false when the firing degenerates to a no-op, such as
// selling zero units.
func (e *Engine) execute(signal types.Signal) bool {
	var quantity float64

	switch signal.Type {
	case types.SignalTypeBuyFull:
		quantity = e.position.Cash / signal.Price
		if quantity == 0 {
			return false
		}
		if e.position.IsFlat() {
			e.position.EntryPrice = optional.Some(signal.Price)
		}
		e.position.Units += quantity
		e.position.Cash = 0

	case types.SignalTypeBuyHalf:
		spend := e.position.Cash / 2
		quantity = spend / signal.Price
		if quantity == 0 {
			return false
		}
		if e.position.IsFlat() {
			e.position.EntryPrice = optional.Some(signal.Price)
		}
		e.position.Units += quantity
		e.position.Cash -= spend

	case types.SignalTypeSellFull:
		quantity = e.position.Units
		if quantity == 0 {
			return false
		}
		e.position.Cash += quantity * signal.Price
		e.position.Units = 0
		e.position.EntryPrice = optional.None[float64]()

	case types.SignalTypeSellHalf:
		quantity = e.position.Units / 2
		if quantity == 0 {
			return false
		}
		e.position.Cash += quantity * signal.Price
		e.position.Units -= quantity

	default:
		return false
	}

	e.position.LastAction = signal.Type
	e.ledger.Record(types.Operation{
		ID:            uuid.New().String(),
		Timestamp:     signal.Time,
		Kind:          signal.Type,
		Symbol:        signal.Symbol,
		Price:         signal.Price,
		Quantity:      quantity,
		CashAfter:     e.position.Cash,
		UnitsAfter:    e.position.Units,
		UnrealizedPnL: e.position.Units * signal.Price,
		CumulativePnL: e.CumulativePnL(signal.Price),
		Rule:          signal.Rule,
	})
	return true
}

// CumulativePnL is the equity at price minus the starting cash.
func (e *Engine) CumulativePnL(price float64) float64 {
	return e.position.Equity(price) - e.cfg.InitialBalance
}

// Position returns a copy of the current simulated position.
func (e *Engine) Position() types.Position {
	return e.position
}

// Ledger returns the engine's trade ledger.
func (e *Engine) Ledger() *Ledger {
	return e.ledger
}

// Indicators returns the indicator set reading the engine's window,
// for display surfaces like the watch table.
func (e *Engine) Indicators() *indicator.Set {
	return e.ind
}

// Config returns the config the engine was built from.
func (e *Engine) Config() Config {
	return e.cfg
}

// Ready reports whether the window holds enough prices for every rule.
func (e *Engine) Ready() bool {
	return e.window.Len() >= e.required
}
