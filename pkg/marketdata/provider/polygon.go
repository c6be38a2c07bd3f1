package provider

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/schollz/progressbar/v3"

	"github.com/rxtech-lab/mark-trading/internal/types"
	"github.com/rxtech-lab/mark-trading/pkg/marketdata/writer"
)

// PolygonAggsIterator abstracts the aggregate iterator returned by the
// Polygon REST client.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient abstracts the Polygon REST client.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

// polygonClientWrapper adapts *polygon.Client to PolygonAPIClient.
type polygonClientWrapper struct {
	client *polygon.Client
}

func (w *polygonClientWrapper) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return w.client.ListAggs(ctx, params, options...)
}

type PolygonClient struct {
	apiClient      PolygonAPIClient
	wsService      PolygonWebSocketService
	apiKey         string
	writer         writer.MarketDataWriter
	onStatusChange func(types.ProviderConnectionStatus)
}

var _ Provider = (*PolygonClient)(nil)

func NewPolygonClient(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required")
	}

	client := polygon.New(apiKey)

	return &PolygonClient{
		apiClient:      &polygonClientWrapper{client: client},
		wsService:      nil,
		apiKey:         apiKey,
		writer:         nil,
		onStatusChange: nil,
	}, nil
}

// NewPolygonClientWithAPI creates a Polygon client with a custom API client.
// Used for testing downloads without hitting the Polygon API.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{
		apiClient:      apiClient,
		wsService:      nil,
		apiKey:         "",
		writer:         nil,
		onStatusChange: nil,
	}
}

func (c *PolygonClient) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

func (c *PolygonClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan, onProgress OnDownloadProgress) (path string, err error) {
	if c.writer == nil {
		return "", fmt.Errorf("no writer configured for PolygonClient. Call ConfigWriter first")
	}

	err = c.writer.Initialize()
	if err != nil {
		return "", fmt.Errorf("failed to initialize writer: %w", err)
	}

	defer func() {
		if cerr := c.writer.Close(); cerr != nil {
			if err == nil {
				err = fmt.Errorf("error closing writer: %w", cerr)
			} else {
				log.Printf("Error closing writer after another error: %v", cerr)
			}
		}
	}()

	totalIterations := int(endDate.Sub(startDate).Hours()/24) + 1
	totalMillis := endDate.Sub(startDate).Milliseconds()

	bar := progressbar.NewOptions(totalIterations, progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", ticker)), progressbar.OptionShowCount())

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithLimit(50000)

	aggsIter := c.apiClient.ListAggs(ctx, params)

	processedCount := 0

	// An aborted download with nothing written leaves no partial file behind.
	removeEmptyOutput := func() {
		if processedCount > 0 {
			return
		}

		if outputPath := c.writer.GetOutputPath(); outputPath != "" {
			os.Remove(outputPath)
		}
	}

	for aggsIter.Next() {
		if ctx.Err() != nil {
			removeEmptyOutput()

			return "", fmt.Errorf("download cancelled: %w", ctx.Err())
		}

		agg := aggsIter.Item()

		// Progress is reported relative to the requested time range so
		// consumers can render a percentage.
		elapsedMillis := time.Time(agg.Timestamp).Sub(startDate).Milliseconds()
		if elapsedMillis > totalMillis {
			elapsedMillis = totalMillis
		}

		if onProgress != nil {
			onProgress(float64(elapsedMillis), float64(totalMillis), fmt.Sprintf("Downloading %s", ticker))
		}

		marketData := types.MarketData{
			Id:     "",
			Symbol: ticker,
			Time:   time.Time(agg.Timestamp),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		}

		err = c.writer.Write(marketData)
		if err != nil {
			removeEmptyOutput()

			return "", fmt.Errorf("failed to write data: %w", err)
		}

		processedCount++
		if processedCount%1000 == 0 {
			currentTime := time.Time(agg.Timestamp)
			daysElapsed := int(currentTime.Sub(startDate).Hours() / 24)
			bar.Set(daysElapsed)
		}
	}

	if aggsIter.Err() != nil {
		removeEmptyOutput()

		return "", fmt.Errorf("error iterating polygon aggregates: %w", aggsIter.Err())
	}

	bar.Finish()
	log.Printf("Finished downloading %d data points for %s.", processedCount, ticker)

	outputPath, err := c.writer.Finalize()
	if err != nil {
		return "", fmt.Errorf("failed to finalize writer: %w", err)
	}

	return outputPath, nil
}
