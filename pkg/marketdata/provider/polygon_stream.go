package provider

import (
	"context"
	"fmt"
	"iter"
	"time"

	polygonws "github.com/polygon-io/client-go/websocket"
	"github.com/polygon-io/client-go/websocket/models"

	"github.com/rxtech-lab/mark-trading/internal/types"
)

// PolygonWebSocketService abstracts the Polygon websocket client so
// streaming can be tested without a live connection. *polygonws.Client
// satisfies this interface directly.
type PolygonWebSocketService interface {
	Connect() error
	Subscribe(topic polygonws.Topic, tickers ...string) error
	Unsubscribe(topic polygonws.Topic, tickers ...string) error
	Output() <-chan any
	Error() <-chan error
	Close()
}

// NewPolygonClientWithWebSocket creates a Polygon client with a custom
// websocket service. A nil wsService connects lazily using the API key when
// Stream is called.
func NewPolygonClientWithWebSocket(apiKey string, wsService PolygonWebSocketService) *PolygonClient {
	return &PolygonClient{
		apiClient:      nil,
		wsService:      wsService,
		apiKey:         apiKey,
		writer:         nil,
		onStatusChange: nil,
	}
}

// SetOnStatusChange registers a callback invoked when the websocket
// connection state changes.
func (c *PolygonClient) SetOnStatusChange(onStatusChange func(types.ProviderConnectionStatus)) {
	c.onStatusChange = onStatusChange
}

func (c *PolygonClient) emitStatus(status types.ProviderConnectionStatus) {
	if c.onStatusChange != nil {
		c.onStatusChange(status)
	}
}

func newPolygonWebSocketService(apiKey string) (PolygonWebSocketService, error) {
	//nolint:exhaustruct // third-party struct with many optional fields
	client, err := polygonws.New(polygonws.Config{
		APIKey: apiKey,
		Feed:   polygonws.RealTime,
		Market: polygonws.Stocks,
	})
	if err != nil {
		return nil, err
	}

	return client, nil
}

// Stream subscribes to aggregate updates for the given symbols and yields one
// MarketData per aggregate. Cancel the context to stop streaming.
func (c *PolygonClient) Stream(ctx context.Context, symbols []string, interval string) iter.Seq2[types.MarketData, error] {
	return func(yield func(types.MarketData, error) bool) {
		if len(symbols) == 0 {
			yield(types.MarketData{}, fmt.Errorf("no symbols provided"))
			return
		}

		topic, err := convertIntervalToPolygonTopic(interval)
		if err != nil {
			yield(types.MarketData{}, err)
			return
		}

		wsService := c.wsService
		if wsService == nil {
			wsService, err = newPolygonWebSocketService(c.apiKey)
			if err != nil {
				yield(types.MarketData{}, fmt.Errorf("failed to create polygon websocket client: %w", err))
				return
			}
		}

		if err := wsService.Connect(); err != nil {
			c.emitStatus(types.ProviderStatusDisconnected)
			yield(types.MarketData{}, fmt.Errorf("failed to connect to polygon websocket: %w", err))

			return
		}

		defer func() {
			wsService.Close()
			c.emitStatus(types.ProviderStatusDisconnected)
		}()

		c.emitStatus(types.ProviderStatusConnected)

		if err := wsService.Subscribe(topic, symbols...); err != nil {
			yield(types.MarketData{}, fmt.Errorf("failed to subscribe to %v: %w", symbols, err))
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case out, ok := <-wsService.Output():
				if !ok {
					return
				}

				switch agg := out.(type) {
				case models.EquityAgg:
					if !yield(convertEquityAggToMarketData(&agg), nil) {
						return
					}
				}
			case wsErr, ok := <-wsService.Error():
				if !ok {
					return
				}

				if !yield(types.MarketData{}, fmt.Errorf("websocket error: %w", wsErr)) {
					return
				}
			}
		}
	}
}

// convertIntervalToPolygonTopic maps a candle interval to the aggregate
// topic that carries it. Polygon only publishes second and minute
// aggregates, coarser intervals fall back to minute bars.
func convertIntervalToPolygonTopic(interval string) (polygonws.Topic, error) {
	switch interval {
	case "1s":
		return polygonws.StocksSecAggs, nil
	default:
		return polygonws.StocksMinAggs, nil
	}
}

// convertEquityAggToMarketData converts a Polygon aggregate event to MarketData.
func convertEquityAggToMarketData(agg *models.EquityAgg) types.MarketData {
	return types.MarketData{
		Id:     "",
		Symbol: agg.Symbol,
		Time:   time.UnixMilli(agg.StartTimestamp),
		Open:   agg.Open,
		High:   agg.High,
		Low:    agg.Low,
		Close:  agg.Close,
		Volume: agg.Volume,
	}
}
