package provider

import (
	"fmt"

	"github.com/rxtech-lab/mark-trading/pkg/utils"
)

// GetStreamConfigSchema returns the JSON schema for a provider's streaming configuration.
func GetStreamConfigSchema(providerName string) (string, error) {
	switch ProviderType(providerName) {
	case ProviderPolygon:
		//nolint:exhaustruct // Empty struct is intentional for schema generation
		return utils.ToJSONSchema(PolygonStreamConfig{})
	case ProviderBinance:
		//nolint:exhaustruct // Empty struct is intentional for schema generation
		return utils.ToJSONSchema(BinanceStreamConfig{})
	default:
		return "", fmt.Errorf("unsupported market data provider: %s", providerName)
	}
}

// ParseStreamConfig parses a JSON configuration string for the given
// streaming provider. The concrete type of the returned StreamConfig matches
// the provider.
func ParseStreamConfig(providerName string, jsonConfig string) (StreamConfig, error) {
	switch ProviderType(providerName) {
	case ProviderPolygon:
		return ParsePolygonStreamConfig(jsonConfig)
	case ProviderBinance:
		return ParseBinanceStreamConfig(jsonConfig)
	default:
		return nil, fmt.Errorf("unsupported market data provider: %s", providerName)
	}
}
