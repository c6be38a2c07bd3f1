package strategy

import (
	"encoding/json"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v2"

	"github.com/rxtech-lab/mark-trading/internal/types"
	"github.com/rxtech-lab/mark-trading/pkg/errors"
)

const (
	defaultRSIPeriod     = 14
	defaultRSIOverbought = 70
)

// Config selects a rule preset and the periods its rules read.
type Config struct {
	Preset         string  `yaml:"preset" json:"preset" jsonschema:"title=Preset,description=Built-in rule set: two_ma, three_ma or three_ma_rsi,enum=two_ma,enum=three_ma,enum=three_ma_rsi" validate:"required,oneof=two_ma three_ma three_ma_rsi"`
	Symbol         string  `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,description=Trading pair the engine evaluates,example=BTCUSDT" validate:"required"`
	InitialBalance float64 `yaml:"initial_balance" json:"initial_balance" jsonschema:"title=Initial Balance,description=Starting cash for the simulated position" validate:"required,gt=0"`
	ShortPeriod    int     `yaml:"short_period,omitempty" json:"short_period,omitempty" jsonschema:"title=Short Period,description=Fast moving average lookback in candles" validate:"omitempty,gt=0"`
	MediumPeriod   int     `yaml:"medium_period" json:"medium_period" jsonschema:"title=Medium Period,description=Middle moving average lookback in candles" validate:"required,gt=0"`
	LongPeriod     int     `yaml:"long_period" json:"long_period" jsonschema:"title=Long Period,description=Slow moving average lookback in candles" validate:"required,gt=0,gtfield=MediumPeriod"`
	RSIPeriod      int     `yaml:"rsi_period,omitempty" json:"rsi_period,omitempty" jsonschema:"title=RSI Period,description=RSI lookback for the three_ma_rsi preset,default=14" validate:"omitempty,gt=0"`
	RSIOverbought  float64 `yaml:"rsi_overbought,omitempty" json:"rsi_overbought,omitempty" jsonschema:"title=RSI Overbought,description=RSI level above which the rsi_sell exit fires,default=70" validate:"omitempty,gt=0,lte=100"`
}

// EmptyConfig returns a zero config, useful as an unmarshal target.
func EmptyConfig() Config {
	return Config{}
}

// TestConfig returns a small three average config used across tests.
func TestConfig() Config {
	return Config{
		Preset:         string(PresetThreeMA),
		Symbol:         "BTCUSDT",
		InitialBalance: 10000,
		ShortPeriod:    3,
		MediumPeriod:   6,
		LongPeriod:     10,
	}
}

// ParseConfig parses a YAML strategy config, fills preset defaults and
// validates it.
func ParseConfig(data []byte) (Config, error) {
	cfg := EmptyConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to parse strategy config", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a strategy config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "failed to read strategy config %s", path)
	}
	return ParseConfig(data)
}

// ApplyDefaults fills the RSI defaults for presets that read the RSI.
func (c *Config) ApplyDefaults() {
	if Preset(c.Preset) == PresetThreeMARSI {
		if c.RSIPeriod == 0 {
			c.RSIPeriod = defaultRSIPeriod
		}
		if c.RSIOverbought == 0 {
			c.RSIOverbought = defaultRSIOverbought
		}
	}
}

// Validate checks field constraints plus the relations between periods
// the chosen preset needs.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid strategy config", err)
	}

	switch Preset(c.Preset) {
	case PresetThreeMA, PresetThreeMARSI:
		if c.ShortPeriod == 0 {
			return errors.New(errors.ErrCodeStrategyConfigError, "short_period is required for three average presets")
		}
		if c.ShortPeriod >= c.MediumPeriod {
			return errors.Newf(errors.ErrCodeStrategyConfigError, "short_period %d must be below medium_period %d", c.ShortPeriod, c.MediumPeriod)
		}
	}
	return nil
}

// Info echoes the config into the stats document.
func (c Config) Info() types.StrategyInfo {
	return types.StrategyInfo{
		Name:          c.Preset,
		ShortPeriod:   c.ShortPeriod,
		MediumPeriod:  c.MediumPeriod,
		LongPeriod:    c.LongPeriod,
		RSIPeriod:     c.RSIPeriod,
		RSIOverbought: c.RSIOverbought,
	}
}

// GenerateSchema returns the JSON schema for the strategy config file.
func GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: false,
		ExpandedStruct:             true,
	}
	schema := reflector.Reflect(&Config{})
	schema.Title = "Strategy Configuration"
	schema.Description = "Rule preset and indicator periods for the decision engine"
	schema.Version = "https://json-schema.org/draft-07/schema#"
	return schema
}

// GenerateSchemaJSON returns the schema as indented JSON.
func GenerateSchemaJSON() (string, error) {
	schema := GenerateSchema()
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeSchemaGeneration, "failed to marshal strategy schema", err)
	}
	return string(data), nil
}
