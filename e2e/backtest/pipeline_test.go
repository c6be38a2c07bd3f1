package backtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/moznion/go-optional"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/mark-trading/e2e/mockserver"
	enginebacktest "github.com/rxtech-lab/mark-trading/internal/backtest"
	"github.com/rxtech-lab/mark-trading/internal/datasource"
	"github.com/rxtech-lab/mark-trading/internal/logger"
	"github.com/rxtech-lab/mark-trading/internal/strategy"
	"github.com/rxtech-lab/mark-trading/pkg/marketdata/provider"
	"github.com/rxtech-lab/mark-trading/pkg/marketdata/writer"
)

// PipelineTestSuite drives the full flow against a mock exchange:
// download klines over REST, persist them to parquet, read them back
// through the data source and run a backtest over them.
type PipelineTestSuite struct {
	suite.Suite
	server *mockserver.MockBinanceServer
	log    *logger.Logger
}

func (suite *PipelineTestSuite) SetupSuite() {
	suite.log = logger.NewNopLogger()
}

func (suite *PipelineTestSuite) SetupTest() {
	cfg := mockserver.DefaultConfig()
	cfg.Symbols = []string{"BTCUSDT"}
	cfg.Candles = 1200
	cfg.Trend = 0.08

	suite.server = mockserver.NewMockBinanceServer(cfg)
	err := suite.server.Start(":0")
	suite.Require().NoError(err)
}

func (suite *PipelineTestSuite) TearDownTest() {
	err := suite.server.Stop()
	suite.Require().NoError(err)
}

// binanceProvider returns a Binance provider pointed at the mock server.
func (suite *PipelineTestSuite) binanceProvider() *provider.BinanceClient {
	apiClient := binance.NewClient("", "")
	apiClient.BaseURL = suite.server.BaseURL()

	return provider.NewBinanceClientWithAPI(provider.NewBinanceAPIClient(apiClient))
}

// download fetches the whole stored range into a parquet file and
// returns its path.
func (suite *PipelineTestSuite) download() string {
	stored := suite.server.Candles("BTCUSDT")
	suite.Require().NotEmpty(stored)

	client := suite.binanceProvider()

	outputPath := filepath.Join(suite.T().TempDir(), "BTCUSDT.parquet")
	client.ConfigWriter(writer.NewDuckDBWriter(outputPath))

	start := stored[0].Time
	end := stored[len(stored)-1].Time.Add(time.Minute)

	path, err := client.Download(context.Background(), "BTCUSDT", start, end, 1, models.Minute, nil)
	suite.Require().NoError(err)

	return path
}

func (suite *PipelineTestSuite) TestDownloadMatchesServedCandles() {
	path := suite.download()

	source, err := datasource.NewDuckDBDataSource(path, suite.log)
	suite.Require().NoError(err)
	defer source.Close()

	stored := suite.server.Candles("BTCUSDT")

	count, err := source.Count(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(len(stored), count, "pagination should fetch every candle exactly once")

	i := 0
	for candle, err := range source.ReadAll(optional.None[time.Time](), optional.None[time.Time]()) {
		suite.Require().NoError(err)
		suite.Equal(stored[i].Time.UTC(), candle.Time.UTC())
		suite.InDelta(stored[i].Close, candle.Close, 1e-6)
		i++
	}
	suite.Equal(len(stored), i)
}

func (suite *PipelineTestSuite) TestDownloadThenBacktest() {
	path := suite.download()

	source, err := datasource.NewDuckDBDataSource(path, suite.log)
	suite.Require().NoError(err)
	defer source.Close()

	runCfg := enginebacktest.RunConfig{
		Strategy: strategy.Config{
			Preset:         string(strategy.PresetThreeMA),
			Symbol:         "BTCUSDT",
			InitialBalance: 10000,
			ShortPeriod:    7,
			MediumPeriod:   25,
			LongPeriod:     99,
		},
		Backtest: enginebacktest.EmptyConfig(),
	}
	runCfg.Backtest.InitialBalance = 10000
	runCfg.Backtest.CommissionRate = 0.001
	runCfg.Backtest.SlippageRate = 0.0005

	resultsDir := suite.T().TempDir()

	b, err := enginebacktest.New(runCfg, suite.log)
	suite.Require().NoError(err)
	b.SetDataPath(path)
	b.SetResultsFolder(resultsDir)

	stats, err := b.Run(context.Background(), source)
	suite.Require().NoError(err)

	suite.Equal("BTCUSDT", stats.Symbol)
	suite.Equal(10000.0, stats.InitialBalance)
	suite.Greater(stats.FinalBalance, 0.0)
	suite.Equal(stats.Metrics.TotalReturn, (stats.FinalBalance-stats.InitialBalance)/stats.InitialBalance)

	// The written results round-trip through the reader.
	entries, err := filepath.Glob(filepath.Join(resultsDir, "*"))
	suite.Require().NoError(err)
	suite.Require().Len(entries, 1)

	readStats, trades, err := enginebacktest.ReadResults(entries[0])
	suite.Require().NoError(err)
	suite.Equal(stats.ID, readStats.ID)
	suite.Len(trades, readStats.Metrics.NumberOfTrades)
}

func (suite *PipelineTestSuite) TestStreamYieldsOnlyFinalizedCandles() {
	wsService := provider.NewBinanceWebSocketService(suite.server.WebSocketURL())
	client := provider.NewBinanceClientWithWebSocket(nil, wsService)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stored := suite.server.Candles("BTCUSDT")

	var received int
	for candle, err := range client.Stream(ctx, []string{"BTCUSDT"}, "1m") {
		suite.Require().NoError(err)
		suite.Equal("BTCUSDT", candle.Symbol)
		suite.InDelta(stored[received].Close, candle.Close, 1e-6)

		received++
		if received == 5 {
			cancel()
			break
		}
	}

	suite.Equal(5, received)
}

func TestPipeline(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}
