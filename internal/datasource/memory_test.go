package datasource

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/mark-trading/internal/types"
	"github.com/rxtech-lab/mark-trading/pkg/errors"
)

type MemoryDataSourceTestSuite struct {
	suite.Suite
	source *MemoryDataSource
	base   time.Time
}

func (suite *MemoryDataSourceTestSuite) SetupTest() {
	suite.base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// Deliberately unsorted input.
	suite.source = NewMemoryDataSource([]types.MarketData{
		{Symbol: "BTCUSDT", Time: suite.base.Add(2 * time.Hour), Close: 102},
		{Symbol: "BTCUSDT", Time: suite.base, Close: 100},
		{Symbol: "ETHUSDT", Time: suite.base.Add(time.Hour), Close: 2000},
		{Symbol: "BTCUSDT", Time: suite.base.Add(3 * time.Hour), Close: 103},
	})
}

func (suite *MemoryDataSourceTestSuite) collect(start, end optional.Option[time.Time]) []types.MarketData {
	var out []types.MarketData
	for candle, err := range suite.source.ReadAll(start, end) {
		suite.Require().NoError(err)
		out = append(out, candle)
	}
	return out
}

func (suite *MemoryDataSourceTestSuite) TestReadAllSortedByTime() {
	candles := suite.collect(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().Len(candles, 4)
	for i := 1; i < len(candles); i++ {
		suite.True(candles[i-1].Time.Before(candles[i].Time))
	}
	suite.Equal(100.0, candles[0].Close)
	suite.Equal(103.0, candles[3].Close)
}

func (suite *MemoryDataSourceTestSuite) TestReadAllRangeInclusive() {
	start := optional.Some(suite.base.Add(time.Hour))
	end := optional.Some(suite.base.Add(2 * time.Hour))

	candles := suite.collect(start, end)
	suite.Require().Len(candles, 2)
	suite.Equal(2000.0, candles[0].Close)
	suite.Equal(102.0, candles[1].Close)
}

func (suite *MemoryDataSourceTestSuite) TestReadAllEarlyBreak() {
	seen := 0
	for _, err := range suite.source.ReadAll(optional.None[time.Time](), optional.None[time.Time]()) {
		suite.Require().NoError(err)
		seen++
		if seen == 2 {
			break
		}
	}
	suite.Equal(2, seen)
}

func (suite *MemoryDataSourceTestSuite) TestCount() {
	count, err := suite.source.Count(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(4, count)

	count, err = suite.source.Count(optional.Some(suite.base.Add(3*time.Hour)), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(1, count)
}

func (suite *MemoryDataSourceTestSuite) TestReadLastData() {
	last, err := suite.source.ReadLastData("BTCUSDT")
	suite.Require().NoError(err)
	suite.Equal(103.0, last.Close)

	last, err = suite.source.ReadLastData("ETHUSDT")
	suite.Require().NoError(err)
	suite.Equal(2000.0, last.Close)

	_, err = suite.source.ReadLastData("DOGEUSDT")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
}

func (suite *MemoryDataSourceTestSuite) TestSourceIsIsolatedFromInput() {
	input := []types.MarketData{{Symbol: "BTCUSDT", Time: suite.base, Close: 1}}
	source := NewMemoryDataSource(input)
	input[0].Close = 999

	last, err := source.ReadLastData("BTCUSDT")
	suite.Require().NoError(err)
	suite.Equal(1.0, last.Close)
}

func TestMemoryDataSourceTestSuite(t *testing.T) {
	suite.Run(t, new(MemoryDataSourceTestSuite))
}
