package types

// ProviderConnectionStatus describes the connection state of a streaming
// market data provider.
type ProviderConnectionStatus string

const (
	ProviderStatusConnected    ProviderConnectionStatus = "connected"
	ProviderStatusDisconnected ProviderConnectionStatus = "disconnected"
)
