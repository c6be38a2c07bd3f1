package sweep

import (
	"encoding/json"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v2"

	"github.com/rxtech-lab/mark-trading/internal/strategy"
	"github.com/rxtech-lab/mark-trading/pkg/errors"
)

// Config describes a parameter grid: every (short, medium) pair inside
// the inclusive ranges with short below medium, the long period fixed.
// The two average crossover preset is excluded because its rules never
// read the short period, which would make every short value in the grid
// produce the same row.
type Config struct {
	Preset         string  `yaml:"preset" json:"preset" jsonschema:"title=Preset,description=Rule set evaluated for every combination,enum=three_ma,enum=three_ma_rsi,default=three_ma" validate:"omitempty,oneof=three_ma three_ma_rsi"`
	Symbol         string  `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,description=Trading pair the grid is evaluated on,example=BTCUSDT" validate:"required"`
	InitialBalance float64 `yaml:"initial_balance" json:"initial_balance" jsonschema:"title=Initial Balance,description=Starting cash for every combination" validate:"required,gt=0"`
	ShortMin       int     `yaml:"short_min" json:"short_min" jsonschema:"title=Short Min,description=Inclusive lower bound of the short period range" validate:"required,gt=0"`
	ShortMax       int     `yaml:"short_max" json:"short_max" jsonschema:"title=Short Max,description=Inclusive upper bound of the short period range" validate:"required,gtefield=ShortMin"`
	MediumMin      int     `yaml:"medium_min" json:"medium_min" jsonschema:"title=Medium Min,description=Inclusive lower bound of the medium period range" validate:"required,gt=0"`
	MediumMax      int     `yaml:"medium_max" json:"medium_max" jsonschema:"title=Medium Max,description=Inclusive upper bound of the medium period range" validate:"required,gtefield=MediumMin"`
	LongPeriod     int     `yaml:"long_period" json:"long_period" jsonschema:"title=Long Period,description=Slow average lookback shared by every combination" validate:"required,gtfield=MediumMax"`
	CommissionRate float64 `yaml:"commission_rate" json:"commission_rate" jsonschema:"title=Commission Rate,description=Fraction of notional paid on every execution" validate:"gte=0,lt=1"`
	SlippageRate   float64 `yaml:"slippage_rate" json:"slippage_rate" jsonschema:"title=Slippage Rate,description=Fractional price penalty applied to every execution" validate:"gte=0,lt=1"`
	Concurrency    int     `yaml:"concurrency,omitempty" json:"concurrency,omitempty" jsonschema:"title=Concurrency,description=Worker count; zero means one worker per CPU" validate:"gte=0"`
}

// EmptyConfig returns a zero config, useful as an unmarshal target.
func EmptyConfig() Config {
	return Config{}
}

// TestConfig returns a small grid over the test candle series.
func TestConfig() Config {
	return Config{
		Preset:         string(strategy.PresetThreeMA),
		Symbol:         "BTCUSDT",
		InitialBalance: 10000,
		ShortMin:       1,
		ShortMax:       2,
		MediumMin:      3,
		MediumMax:      4,
		LongPeriod:     5,
	}
}

// ParseConfig parses a YAML sweep config, fills defaults and validates.
func ParseConfig(data []byte) (Config, error) {
	cfg := EmptyConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeSweepConfigError, "failed to parse sweep config", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a sweep config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeSweepConfigError, err, "failed to read sweep config %s", path)
	}
	return ParseConfig(data)
}

// ApplyDefaults picks the full six rule preset when none is set.
func (c *Config) ApplyDefaults() {
	if c.Preset == "" {
		c.Preset = string(strategy.PresetThreeMA)
	}
}

// Validate checks field constraints and that the grid is not empty.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeSweepConfigError, "invalid sweep config", err)
	}
	if c.ShortMin >= c.MediumMax {
		return errors.Newf(errors.ErrCodeSweepConfigError, "empty grid: short_min %d must be below medium_max %d", c.ShortMin, c.MediumMax)
	}
	return nil
}

// GenerateSchema returns the JSON schema for the sweep config file.
func GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(&Config{})
	schema.Title = "Sweep Configuration"
	schema.Description = "Parameter grid evaluated by the sweep command"
	schema.Version = "https://json-schema.org/draft-07/schema#"
	return schema
}

// GenerateSchemaJSON returns the schema as indented JSON.
func GenerateSchemaJSON() (string, error) {
	schema := GenerateSchema()
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeSchemaGeneration, "failed to marshal sweep schema", err)
	}
	return string(data), nil
}
