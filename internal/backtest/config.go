package backtest

import (
	"encoding/json"
	"os"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v2"

	"github.com/rxtech-lab/mark-trading/internal/strategy"
	"github.com/rxtech-lab/mark-trading/pkg/errors"
)

// Config drives the cost model of a runner. StartTime and EndTime, when
// set, bound the candle range read for the run; they do not touch rows
// already handed to the runner.
type Config struct {
	InitialBalance float64                    `yaml:"initial_balance" json:"initial_balance" jsonschema:"title=Initial Balance,description=Starting cash for the run" validate:"required,gt=0"`
	CommissionRate float64                    `yaml:"commission_rate" json:"commission_rate" jsonschema:"title=Commission Rate,description=Fraction of notional paid on every execution" validate:"gte=0,lt=1"`
	SlippageRate   float64                    `yaml:"slippage_rate" json:"slippage_rate" jsonschema:"title=Slippage Rate,description=Fractional price penalty applied to every execution" validate:"gte=0,lt=1"`
	StartTime      optional.Option[time.Time] `yaml:"start_time,omitempty" json:"start_time,omitempty" jsonschema:"title=Start Time,description=Inclusive start of the candle range"`
	EndTime        optional.Option[time.Time] `yaml:"end_time,omitempty" json:"end_time,omitempty" jsonschema:"title=End Time,description=Inclusive end of the candle range"`
}

// UnmarshalYAML maps absent or null times onto None.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type rawConfig struct {
		InitialBalance float64    `yaml:"initial_balance"`
		CommissionRate float64    `yaml:"commission_rate"`
		SlippageRate   float64    `yaml:"slippage_rate"`
		StartTime      *time.Time `yaml:"start_time"`
		EndTime        *time.Time `yaml:"end_time"`
	}

	raw := rawConfig{}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	c.InitialBalance = raw.InitialBalance
	c.CommissionRate = raw.CommissionRate
	c.SlippageRate = raw.SlippageRate

	if raw.StartTime != nil {
		c.StartTime = optional.Some(*raw.StartTime)
	} else {
		c.StartTime = optional.None[time.Time]()
	}

	if raw.EndTime != nil {
		c.EndTime = optional.Some(*raw.EndTime)
	} else {
		c.EndTime = optional.None[time.Time]()
	}

	return nil
}

// EmptyConfig returns a zero config, useful as an unmarshal target.
func EmptyConfig() Config {
	return Config{
		StartTime: optional.None[time.Time](),
		EndTime:   optional.None[time.Time](),
	}
}

// TestConfig returns a config with a cost-free model used across tests.
func TestConfig() Config {
	cfg := EmptyConfig()
	cfg.InitialBalance = 10000
	return cfg
}

// Validate checks the balance and both rates.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "invalid backtest config", err)
	}
	return nil
}

// RunConfig is the full backtest config file: the strategy to evaluate
// plus the cost model to replay it under.
type RunConfig struct {
	Strategy strategy.Config `yaml:"strategy" json:"strategy" jsonschema:"title=Strategy,description=Rule preset and indicator periods"`
	Backtest Config          `yaml:"backtest" json:"backtest" jsonschema:"title=Backtest,description=Cost model and candle range"`
}

// ParseRunConfig parses and validates a full backtest config file.
func ParseRunConfig(data []byte) (RunConfig, error) {
	cfg := RunConfig{
		Strategy: strategy.EmptyConfig(),
		Backtest: EmptyConfig(),
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to parse backtest config", err)
	}
	cfg.Strategy.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

// LoadRunConfig reads and parses a backtest config file.
func LoadRunConfig(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, errors.Wrapf(errors.ErrCodeBacktestConfigError, err, "failed to read backtest config %s", path)
	}
	return ParseRunConfig(data)
}

// Validate checks both halves of the run config.
func (c RunConfig) Validate() error {
	if err := c.Strategy.Validate(); err != nil {
		return err
	}
	return c.Backtest.Validate()
}

// GenerateSchema returns the JSON schema for the backtest config file.
// Nested structs are inlined: both halves of the run config are named
// Config in their packages, so referencing them by name would collide.
func GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(optional.Option[time.Time]{}) {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}
			return nil
		},
	}
	schema := reflector.Reflect(&RunConfig{})
	schema.Title = "Backtest Configuration"
	schema.Description = "Strategy selection and cost model for a backtest run"
	schema.Version = "https://json-schema.org/draft-07/schema#"
	return schema
}

// GenerateSchemaJSON returns the schema as indented JSON.
func GenerateSchemaJSON() (string, error) {
	schema := GenerateSchema()
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeSchemaGeneration, "failed to marshal backtest schema", err)
	}
	return string(data), nil
}
