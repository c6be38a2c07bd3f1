package provider

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// StreamConfig is implemented by every provider-specific streaming
// configuration so they can share one parse path.
type StreamConfig interface {
	Validate() error
}

// BaseStreamConfig holds the fields every streaming configuration needs.
type BaseStreamConfig struct {
	Symbols  []string `json:"symbols" jsonschema:"title=Symbols,description=List of symbols to stream (e.g. BTCUSDT or SPY),required" validate:"required,min=1"`
	Interval string   `json:"interval" jsonschema:"title=Interval,description=Candlestick interval for streaming data,required,enum=1s,enum=1m,enum=3m,enum=5m,enum=15m,enum=30m,enum=1h,enum=2h,enum=4h,enum=6h,enum=8h,enum=12h,enum=1d,enum=3d,enum=1w,enum=1M" validate:"required,oneof=1s 1m 3m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d 3d 1w 1M"`
}

// PolygonStreamConfig configures a Polygon.io websocket stream.
type PolygonStreamConfig struct {
	BaseStreamConfig

	ApiKey string `json:"apiKey" jsonschema:"title=API Key,description=Polygon.io API key for authentication,required" validate:"required"`
}

// BinanceStreamConfig configures a Binance websocket stream. Public kline
// streams need no credentials, so the shared fields are all there is.
type BinanceStreamConfig struct {
	BaseStreamConfig
}

var (
	_ StreamConfig = (*PolygonStreamConfig)(nil)
	_ StreamConfig = (*BinanceStreamConfig)(nil)
)

var streamValidate = validator.New()

// Validate checks the shared stream fields.
func (c *BaseStreamConfig) Validate() error {
	if err := streamValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// Validate checks the Polygon stream configuration. The embedded base
// fields are validated in the same pass as the API key.
func (c *PolygonStreamConfig) Validate() error {
	if err := streamValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// Validate checks the Binance stream configuration.
func (c *BinanceStreamConfig) Validate() error {
	return c.BaseStreamConfig.Validate()
}

// parseStreamConfig decodes jsonConfig into config and validates the result.
func parseStreamConfig[T StreamConfig](jsonConfig string, config T) (T, error) {
	var zero T

	if err := json.Unmarshal([]byte(jsonConfig), config); err != nil {
		return zero, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return zero, err
	}

	return config, nil
}

// ParsePolygonStreamConfig parses JSON into a PolygonStreamConfig.
func ParsePolygonStreamConfig(jsonConfig string) (*PolygonStreamConfig, error) {
	return parseStreamConfig(jsonConfig, &PolygonStreamConfig{})
}

// ParseBinanceStreamConfig parses JSON into a BinanceStreamConfig.
func ParseBinanceStreamConfig(jsonConfig string) (*BinanceStreamConfig, error) {
	return parseStreamConfig(jsonConfig, &BinanceStreamConfig{})
}
