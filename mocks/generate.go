package mocks

//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/rxtech-lab/mark-trading/internal/datasource DataSource
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/mark-trading/pkg/marketdata/provider Provider
//go:generate mockgen -destination=./mock_writer.go -package=mocks github.com/rxtech-lab/mark-trading/pkg/marketdata/writer MarketDataWriter
