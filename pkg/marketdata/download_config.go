package marketdata

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// DownloadConfig is implemented by every provider-specific download
// configuration. Parsed configs convert themselves into the client and
// request halves of a download.
type DownloadConfig interface {
	Validate() error
	ToDownloadParams() (DownloadParams, error)
	ToClientConfig(dataPath string) ClientConfig
}

// BaseDownloadConfig holds the fields every download configuration needs.
type BaseDownloadConfig struct {
	Ticker    string `json:"ticker" jsonschema:"title=Ticker,description=The trading symbol to download data for (e.g. SPY or BTCUSDT),required" validate:"required"`
	StartDate string `json:"startDate" jsonschema:"title=Start Date,description=Start date,format=date,required" validate:"required"`
	EndDate   string `json:"endDate" jsonschema:"title=End Date,description=End date,format=date,required" validate:"required"`
	Interval  string `json:"interval" jsonschema:"title=Interval,description=Data interval,required,enum=1s,enum=1m,enum=3m,enum=5m,enum=15m,enum=30m,enum=1h,enum=2h,enum=4h,enum=6h,enum=8h,enum=12h,enum=1d,enum=3d,enum=1w,enum=1M" validate:"required,oneof=1s 1m 3m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d 3d 1w 1M"`
}

// PolygonDownloadConfig configures a download from Polygon.io.
type PolygonDownloadConfig struct {
	BaseDownloadConfig

	ApiKey string `json:"apiKey" jsonschema:"title=API Key,description=Polygon.io API key for authentication,required" validate:"required"`
}

// BinanceDownloadConfig configures a download from Binance. The public
// market data API needs no credentials.
type BinanceDownloadConfig struct {
	BaseDownloadConfig
}

var (
	_ DownloadConfig = (*PolygonDownloadConfig)(nil)
	_ DownloadConfig = (*BinanceDownloadConfig)(nil)
)

var downloadValidate = validator.New()

// dateRange parses the configured date strings, which must be RFC3339.
func (c *BaseDownloadConfig) dateRange() (start, end time.Time, err error) {
	start, err = time.Parse(time.RFC3339, c.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid startDate format, expected RFC3339: %w", err)
	}

	end, err = time.Parse(time.RFC3339, c.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid endDate format, expected RFC3339: %w", err)
	}

	return start, end, nil
}

// Validate checks the shared download fields and both date strings.
func (c *BaseDownloadConfig) Validate() error {
	if err := downloadValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	_, _, err := c.dateRange()

	return err
}

// Validate checks the Polygon download configuration. The embedded base
// fields are validated in the same pass as the API key, then the date
// strings are parsed.
func (c *PolygonDownloadConfig) Validate() error {
	if err := downloadValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	_, _, err := c.dateRange()

	return err
}

// Validate checks the Binance download configuration.
func (c *BinanceDownloadConfig) Validate() error {
	return c.BaseDownloadConfig.Validate()
}

// ToDownloadParams converts the configuration into download request parameters.
func (c *BaseDownloadConfig) ToDownloadParams() (DownloadParams, error) {
	start, end, err := c.dateRange()
	if err != nil {
		return DownloadParams{}, err
	}

	timespan, err := ParseTimespan(c.Interval)
	if err != nil {
		return DownloadParams{}, err
	}

	return DownloadParams{
		Ticker:     c.Ticker,
		StartDate:  start,
		EndDate:    end,
		Multiplier: timespan.Multiplier(),
		Timespan:   timespan.Unit(),
	}, nil
}

// ToClientConfig converts the configuration into a Polygon client configuration.
func (c *PolygonDownloadConfig) ToClientConfig(dataPath string) ClientConfig {
	return ClientConfig{
		ProviderType:  ProviderPolygon,
		WriterType:    WriterDuckDB,
		DataPath:      dataPath,
		PolygonApiKey: c.ApiKey,
	}
}

// ToClientConfig converts the configuration into a Binance client configuration.
func (c *BinanceDownloadConfig) ToClientConfig(dataPath string) ClientConfig {
	return ClientConfig{
		ProviderType:  ProviderBinance,
		WriterType:    WriterDuckDB,
		DataPath:      dataPath,
		PolygonApiKey: "",
	}
}

// parseDownloadConfig decodes jsonConfig into config and validates the result.
func parseDownloadConfig[T DownloadConfig](jsonConfig string, config T) (T, error) {
	var zero T

	if err := json.Unmarshal([]byte(jsonConfig), config); err != nil {
		return zero, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return zero, err
	}

	return config, nil
}

// ParsePolygonConfig parses JSON into a PolygonDownloadConfig.
func ParsePolygonConfig(jsonConfig string) (*PolygonDownloadConfig, error) {
	return parseDownloadConfig(jsonConfig, &PolygonDownloadConfig{})
}

// ParseBinanceConfig parses JSON into a BinanceDownloadConfig.
func ParseBinanceConfig(jsonConfig string) (*BinanceDownloadConfig, error) {
	return parseDownloadConfig(jsonConfig, &BinanceDownloadConfig{})
}
