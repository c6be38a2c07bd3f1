// Package mockserver provides a mock Binance market data server for
// testing. It implements the kline REST endpoint and the kline WebSocket
// stream against a fixed candle series, so downloads and streams can be
// asserted against known data.
package mockserver

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/rxtech-lab/mark-trading/internal/types"
	"github.com/rxtech-lab/mark-trading/mocks"
)

// pageSize mirrors the kline page size the real API serves.
const pageSize = 500

// ServerConfig controls the generated candle store and the websocket
// emission pace.
type ServerConfig struct {
	// Symbols are the symbols the server knows. Requests for other
	// symbols return empty pages, like the real API does for unknown
	// but well-formed symbols.
	Symbols []string
	// Candles is the number of candles generated per symbol.
	Candles int
	// Interval is the candle spacing of the generated series.
	Interval time.Duration
	// StartTime is the open time of the first candle.
	StartTime time.Time
	// InitialPrice seeds the generated series.
	InitialPrice float64
	// Trend shapes the generated series, positive for bullish.
	Trend float64
	// Seed makes the store reproducible across runs.
	Seed int64
	// StreamInterval is the pace of websocket kline events.
	StreamInterval time.Duration
}

// DefaultConfig returns a small bullish minute-bar store.
func DefaultConfig() ServerConfig {
	return ServerConfig{
		Symbols:        []string{"BTCUSDT"},
		Candles:        1200,
		Interval:       time.Minute,
		StartTime:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		InitialPrice:   40000,
		Trend:          0.05,
		Seed:           42,
		StreamInterval: 10 * time.Millisecond,
	}
}

// MockBinanceServer serves a fixed candle store over the Binance market
// data surface: GET /api/v3/klines and /ws/{symbol}@kline_{interval}.
type MockBinanceServer struct {
	mu sync.RWMutex

	httpServer *http.Server
	listener   net.Listener
	upgrader   websocket.Upgrader

	cfg     ServerConfig
	candles map[string][]types.MarketData

	stopStreaming chan struct{}
}

// NewMockBinanceServer generates the candle store and builds the server.
func NewMockBinanceServer(cfg ServerConfig) *MockBinanceServer {
	server := &MockBinanceServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		cfg:           cfg,
		candles:       make(map[string][]types.MarketData),
		stopStreaming: make(chan struct{}),
	}

	generator := mocks.NewDataGenerator(cfg.Seed)
	for _, symbol := range cfg.Symbols {
		genConfig := mocks.DefaultConfig()
		genConfig.Symbol = symbol
		genConfig.StartTime = cfg.StartTime
		genConfig.Interval = cfg.Interval
		genConfig.Count = cfg.Candles
		genConfig.InitialPrice = cfg.InitialPrice
		genConfig.Trend = cfg.Trend

		server.candles[symbol] = generator.Generate(genConfig)
	}

	if server.cfg.StreamInterval == 0 {
		server.cfg.StreamInterval = 10 * time.Millisecond
	}

	return server
}

// Start listens on the given address, ":0" for an ephemeral port.
func (s *MockBinanceServer) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener

	router := mux.NewRouter()
	router.HandleFunc("/api/v3/klines", s.handleKlines).Methods("GET")
	router.HandleFunc("/ws/{symbol}@kline_{interval}", s.handleWebSocket)

	s.httpServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			fmt.Printf("HTTP server error: %v\n", err)
		}
	}()

	return nil
}

// Stop shuts the server down and stops all websocket streams.
func (s *MockBinanceServer) Stop() error {
	close(s.stopStreaming)

	if s.httpServer != nil {
		return s.httpServer.Close()
	}

	return nil
}

// Address returns the listener address, host:port.
func (s *MockBinanceServer) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// BaseURL returns the REST base URL.
func (s *MockBinanceServer) BaseURL() string {
	return "http://" + s.Address()
}

// WebSocketURL returns the websocket base URL.
func (s *MockBinanceServer) WebSocketURL() string {
	return "ws://" + s.Address() + "/ws"
}

// Candles returns the fixed series the server holds for a symbol.
func (s *MockBinanceServer) Candles(symbol string) []types.MarketData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.candles[symbol]
	out := make([]types.MarketData, len(stored))
	copy(out, stored)

	return out
}

// handleKlines serves one page of the stored series in Binance kline
// format: a JSON array of [openTime, open, high, low, close, volume,
// closeTime, ...] rows, at most 500 per request.
func (s *MockBinanceServer) handleKlines(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	interval := r.URL.Query().Get("interval")

	if symbol == "" || interval == "" {
		http.Error(w, "Missing required parameters", http.StatusBadRequest)
		return
	}

	startTime := time.Time{}
	if startStr := r.URL.Query().Get("startTime"); startStr != "" {
		ms, _ := strconv.ParseInt(startStr, 10, 64)
		startTime = time.UnixMilli(ms)
	}

	endTime := time.Now()
	if endStr := r.URL.Query().Get("endTime"); endStr != "" {
		ms, _ := strconv.ParseInt(endStr, 10, 64)
		endTime = time.UnixMilli(ms)
	}

	s.mu.RLock()
	stored := s.candles[symbol]
	s.mu.RUnlock()

	klines := make([][]interface{}, 0, pageSize)

	for _, candle := range stored {
		if candle.Time.Before(startTime) || candle.Time.After(endTime) {
			continue
		}
		if len(klines) == pageSize {
			break
		}

		closeTime := candle.Time.Add(s.cfg.Interval).UnixMilli() - 1
		klines = append(klines, []interface{}{
			candle.Time.UnixMilli(),
			strconv.FormatFloat(candle.Open, 'f', 8, 64),
			strconv.FormatFloat(candle.High, 'f', 8, 64),
			strconv.FormatFloat(candle.Low, 'f', 8, 64),
			strconv.FormatFloat(candle.Close, 'f', 8, 64),
			strconv.FormatFloat(candle.Volume, 'f', 8, 64),
			closeTime,
			"0", // Quote asset volume
			0,   // Number of trades
			"0", // Taker buy base asset volume
			"0", // Taker buy quote asset volume
			"0", // Ignore
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(klines)
}

// handleWebSocket upgrades the connection and streams the stored series
// as finalized kline events. Every other event is an unfinalized partial
// bar, so consumers that skip partials can be tested.
func (s *MockBinanceServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	// The stream path carries the lowercased symbol.
	symbol := strings.ToUpper(vars["symbol"])
	interval := vars["interval"]

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	go s.streamKlines(conn, symbol, interval)
}

func (s *MockBinanceServer) streamKlines(conn *websocket.Conn, symbol, interval string) {
	defer conn.Close()

	s.mu.RLock()
	stored := s.candles[symbol]
	s.mu.RUnlock()

	ticker := time.NewTicker(s.cfg.StreamInterval)
	defer ticker.Stop()

	for _, candle := range stored {
		// A partial bar first, then the finalized one.
		for _, isFinal := range []bool{false, true} {
			select {
			case <-s.stopStreaming:
				return
			case <-ticker.C:
			}

			event := map[string]interface{}{
				"e": "kline",
				"E": time.Now().UnixMilli(),
				"s": symbol,
				"k": map[string]interface{}{
					"t": candle.Time.UnixMilli(),
					"T": candle.Time.Add(s.cfg.Interval).UnixMilli() - 1,
					"s": symbol,
					"i": interval,
					"o": strconv.FormatFloat(candle.Open, 'f', 8, 64),
					"c": strconv.FormatFloat(candle.Close, 'f', 8, 64),
					"h": strconv.FormatFloat(candle.High, 'f', 8, 64),
					"l": strconv.FormatFloat(candle.Low, 'f', 8, 64),
					"v": strconv.FormatFloat(candle.Volume, 'f', 8, 64),
					"x": isFinal,
				},
			}

			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}
