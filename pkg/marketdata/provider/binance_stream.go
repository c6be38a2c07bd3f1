package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rxtech-lab/mark-trading/internal/types"
)

// binanceWsBaseURL is the default combined kline stream endpoint.
const binanceWsBaseURL = "wss://stream.binance.com:9443/ws"

// streamBufferSize bounds the fan-in channel between websocket handlers
// and the consuming iterator.
const streamBufferSize = 100

// validBinanceIntervals are the kline intervals the websocket API accepts.
var validBinanceIntervals = map[string]bool{
	"1m": true, "3m": true, "5m": true, "15m": true, "30m": true,
	"1h": true, "2h": true, "4h": true, "6h": true, "8h": true, "12h": true,
	"1d": true, "3d": true, "1w": true, "1M": true,
}

func isValidBinanceInterval(interval string) bool {
	return validBinanceIntervals[interval]
}

// BinanceWsKline is the kline payload of a websocket kline event.
type BinanceWsKline struct {
	StartTime int64  `json:"t"`
	EndTime   int64  `json:"T"`
	Symbol    string `json:"s"`
	Interval  string `json:"i"`
	Open      string `json:"o"`
	Close     string `json:"c"`
	High      string `json:"h"`
	Low       string `json:"l"`
	Volume    string `json:"v"`
	IsFinal   bool   `json:"x"`
}

// BinanceWsKlineEvent is a single kline event from the Binance websocket API.
type BinanceWsKlineEvent struct {
	Event  string         `json:"e"`
	Time   int64          `json:"E"`
	Symbol string         `json:"s"`
	Kline  BinanceWsKline `json:"k"`
}

// WsKlineHandler receives kline events from a websocket subscription.
type WsKlineHandler func(event *BinanceWsKlineEvent)

// WsErrorHandler receives errors from a websocket subscription.
type WsErrorHandler func(err error)

// BinanceWebSocketService abstracts the kline websocket subscription so
// streaming can be tested without a live connection.
type BinanceWebSocketService interface {
	WsKlineServe(symbol string, interval string, handler WsKlineHandler, errHandler WsErrorHandler) (doneC chan struct{}, stopC chan struct{}, err error)
}

// binanceWebSocketService is the gorilla/websocket backed implementation.
type binanceWebSocketService struct {
	baseURL string
}

// NewBinanceWebSocketService creates a websocket service for the given base
// URL. An empty baseURL uses the public Binance stream endpoint.
func NewBinanceWebSocketService(baseURL string) BinanceWebSocketService {
	if baseURL == "" {
		baseURL = binanceWsBaseURL
	}

	return &binanceWebSocketService{baseURL: baseURL}
}

func (s *binanceWebSocketService) WsKlineServe(symbol string, interval string, handler WsKlineHandler, errHandler WsErrorHandler) (chan struct{}, chan struct{}, error) {
	endpoint := fmt.Sprintf("%s/%s@kline_%s", s.baseURL, strings.ToLower(symbol), interval)

	conn, resp, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dial %s: %w", endpoint, err)
	}

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	doneC := make(chan struct{})
	stopC := make(chan struct{})

	// Closing stopC closes the connection, which unblocks the read loop.
	go func() {
		select {
		case <-stopC:
			conn.Close()
		case <-doneC:
		}
	}()

	go func() {
		defer close(doneC)
		defer conn.Close()

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				select {
				case <-stopC:
					// Stopped by the caller, not an error.
				default:
					errHandler(err)
				}

				return
			}

			var event BinanceWsKlineEvent
			if err := json.Unmarshal(message, &event); err != nil {
				errHandler(fmt.Errorf("failed to decode kline event: %w", err))
				continue
			}

			handler(&event)
		}
	}()

	return doneC, stopC, nil
}

// NewBinanceClientWithWebSocket creates a Binance client with a custom
// websocket service. Used for testing streaming behavior.
func NewBinanceClientWithWebSocket(apiClient BinanceAPIClient, wsService BinanceWebSocketService) *BinanceClient {
	return &BinanceClient{
		apiClient: apiClient,
		wsService: wsService,
		writer:    nil,
	}
}

// Stream subscribes to kline updates for the given symbols and yields one
// MarketData per closed candle. Partial (unfinalized) klines are skipped so
// downstream consumers only ever see completed bars. Cancel the context to
// stop streaming.
func (c *BinanceClient) Stream(ctx context.Context, symbols []string, interval string) iter.Seq2[types.MarketData, error] {
	return func(yield func(types.MarketData, error) bool) {
		if len(symbols) == 0 {
			yield(types.MarketData{}, fmt.Errorf("no symbols provided"))
			return
		}

		if !isValidBinanceInterval(interval) {
			yield(types.MarketData{}, fmt.Errorf("invalid interval: %s", interval))
			return
		}

		wsService := c.wsService
		if wsService == nil {
			wsService = NewBinanceWebSocketService("")
		}

		dataC := make(chan types.MarketData, streamBufferSize)
		errC := make(chan error, len(symbols))

		// Closed when the iterator returns so blocked handlers can exit.
		finished := make(chan struct{})
		defer close(finished)

		handler := func(event *BinanceWsKlineEvent) {
			if !event.Kline.IsFinal {
				return
			}

			select {
			case dataC <- convertWsKlineToMarketData(event):
			case <-finished:
			}
		}

		errHandler := func(err error) {
			select {
			case errC <- err:
			case <-finished:
			}
		}

		var stops []chan struct{}

		defer func() {
			for _, stopC := range stops {
				close(stopC)
			}
		}()

		for _, symbol := range symbols {
			_, stopC, err := wsService.WsKlineServe(symbol, interval, handler, errHandler)
			if err != nil {
				yield(types.MarketData{}, fmt.Errorf("failed to start websocket for %s: %w", symbol, err))
				return
			}

			stops = append(stops, stopC)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case data := <-dataC:
				if !yield(data, nil) {
					return
				}
			case err := <-errC:
				if !yield(types.MarketData{}, fmt.Errorf("websocket error: %w", err)) {
					return
				}
			}
		}
	}
}

// convertWsKlineToMarketData converts a websocket kline event to MarketData.
// The kline start time is used as the bar timestamp, matching the REST
// download format.
func convertWsKlineToMarketData(event *BinanceWsKlineEvent) types.MarketData {
	open, _ := strconv.ParseFloat(event.Kline.Open, 64)
	high, _ := strconv.ParseFloat(event.Kline.High, 64)
	low, _ := strconv.ParseFloat(event.Kline.Low, 64)
	closePrice, _ := strconv.ParseFloat(event.Kline.Close, 64)
	volume, _ := strconv.ParseFloat(event.Kline.Volume, 64)

	return types.MarketData{
		Id:     "",
		Symbol: event.Symbol,
		Time:   time.UnixMilli(event.Kline.StartTime),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}
}
