package writer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type StreamingDuckDBWriterTestSuite struct {
	suite.Suite
}

func TestStreamingDuckDBWriterSuite(t *testing.T) {
	suite.Run(t, new(StreamingDuckDBWriterTestSuite))
}

func (suite *StreamingDuckDBWriterTestSuite) TestOutputPathNaming() {
	dir := suite.T().TempDir()
	w := NewStreamingDuckDBWriter(dir, "binance", "1m")

	suite.Equal(filepath.Join(dir, "stream_data_binance_1m.parquet"), w.GetOutputPath())
}

func (suite *StreamingDuckDBWriterTestSuite) TestWritePersistsEachCandle() {
	dir := suite.T().TempDir()
	w := NewStreamingDuckDBWriter(dir, "binance", "1m")
	suite.Require().NoError(w.Initialize())
	defer w.Close()

	candles := testCandles("ETHUSDT", 3)
	for _, candle := range candles {
		suite.Require().NoError(w.Write(candle))
	}

	// Every write exports, the file is readable before Finalize.
	rows := readParquetRows(suite.T(), w.GetOutputPath())
	suite.Require().Len(rows, 3)
	suite.Equal("ETHUSDT", rows[0].Symbol)
}

func (suite *StreamingDuckDBWriterTestSuite) TestWriteUpsertsOnSymbolAndTime() {
	dir := suite.T().TempDir()
	w := NewStreamingDuckDBWriter(dir, "binance", "1m")
	suite.Require().NoError(w.Initialize())
	defer w.Close()

	candle := testCandles("BTCUSDT", 1)[0]
	suite.Require().NoError(w.Write(candle))

	candle.Close = 999.0
	suite.Require().NoError(w.Write(candle))

	rows := readParquetRows(suite.T(), w.GetOutputPath())
	suite.Require().Len(rows, 1)
	suite.InDelta(999.0, rows[0].Close, 1e-9)
}

func (suite *StreamingDuckDBWriterTestSuite) TestInitializeReloadsExistingFile() {
	dir := suite.T().TempDir()

	first := NewStreamingDuckDBWriter(dir, "binance", "1m")
	suite.Require().NoError(first.Initialize())
	candles := testCandles("BTCUSDT", 2)
	suite.Require().NoError(first.Write(candles[0]))
	suite.Require().NoError(first.Write(candles[1]))
	suite.Require().NoError(first.Close())

	// A new writer over the same directory picks up previous rows.
	second := NewStreamingDuckDBWriter(dir, "binance", "1m")
	suite.Require().NoError(second.Initialize())
	defer second.Close()

	suite.Require().NoError(second.Write(testCandles("BTCUSDT", 3)[2]))

	rows := readParquetRows(suite.T(), second.GetOutputPath())
	suite.Len(rows, 3)
}

func (suite *StreamingDuckDBWriterTestSuite) TestFinalizeReturnsPath() {
	dir := suite.T().TempDir()
	w := NewStreamingDuckDBWriter(dir, "polygon", "1h")
	suite.Require().NoError(w.Initialize())
	defer w.Close()

	suite.Require().NoError(w.Write(testCandles("AAPL", 1)[0]))

	path, err := w.Finalize()
	suite.Require().NoError(err)
	suite.Equal(w.GetOutputPath(), path)
}
