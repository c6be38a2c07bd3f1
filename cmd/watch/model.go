package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rxtech-lab/mark-trading/internal/logger"
	"github.com/rxtech-lab/mark-trading/internal/strategy"
	"github.com/rxtech-lab/mark-trading/internal/types"
	"github.com/rxtech-lab/mark-trading/pkg/marketdata/provider"
)

// Application states.
const (
	StateSymbolInput = iota
	StateIntervalSelect
	StateSignalDisplay
)

// watchEntry is the per-symbol state of the watcher: the latest candle,
// the decision engine fed by it and the last non-hold signal it emitted.
// The watcher never places orders, engines only track what they would do.
type watchEntry struct {
	engine     *strategy.Engine
	data       types.MarketData
	prevPrice  float64
	lastSignal string
}

// Model is the main Bubble Tea model for the signal watcher.
type Model struct {
	state        int
	symbolInput  textinput.Model
	intervalList list.Model
	signalTable  table.Model
	entries      map[string]*watchEntry
	symbols      []string
	interval     string
	strategyCfg  strategy.Config
	log          *logger.Logger
	err          error
	width        int
	height       int

	// Streaming control
	streamCtx    context.Context
	streamCancel context.CancelFunc
	program      *tea.Program
}

// NewModel creates a new Model watching with the given strategy config.
// The config's symbol is ignored, one engine is built per watched symbol.
func NewModel(cfg strategy.Config, log *logger.Logger) Model {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return Model{
		state:        StateSymbolInput,
		symbolInput:  NewSymbolInput(),
		intervalList: NewIntervalList(),
		signalTable:  NewSignalTable(),
		entries:      make(map[string]*watchEntry),
		strategyCfg:  cfg,
		log:          log,
	}
}

// SetProgram sets the tea.Program reference for sending messages from goroutines.
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.streamCancel != nil {
				m.streamCancel()
			}
			return m, tea.Quit
		case "q":
			// Only quit on 'q' if not in text input mode
			if m.state != StateSymbolInput {
				if m.streamCancel != nil {
					m.streamCancel()
				}
				return m, tea.Quit
			}
		case "esc":
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.intervalList.SetSize(msg.Width, msg.Height-4)
		m.signalTable.SetWidth(msg.Width)
		m.signalTable.SetHeight(msg.Height - 6)
		return m, nil

	case MarketDataMsg:
		m.applyMarketData(msg.Data)
		m.signalTable = UpdateTableRows(m.signalTable, m.entries)
		return m, nil

	case StreamErrorMsg:
		m.err = msg.Err
		return m, nil

	case StreamStartedMsg:
		m.state = StateSignalDisplay
		return m, nil
	}

	// Delegate to state-specific update
	switch m.state {
	case StateSymbolInput:
		return m.updateSymbolInput(msg)
	case StateIntervalSelect:
		return m.updateIntervalSelect(msg)
	case StateSignalDisplay:
		return m.updateSignalDisplay(msg)
	}

	return m, nil
}

// applyMarketData feeds one candle into the symbol's engine, creating
// the engine on the first candle for that symbol.
func (m *Model) applyMarketData(data types.MarketData) {
	entry, ok := m.entries[data.Symbol]
	if !ok {
		cfg := m.strategyCfg
		cfg.Symbol = data.Symbol

		eng, err := strategy.NewEngine(cfg, m.log)
		if err != nil {
			m.err = err
			return
		}

		entry = &watchEntry{engine: eng}
		m.entries[data.Symbol] = entry
	}

	entry.prevPrice = entry.data.Close
	entry.data = data

	signal, err := entry.engine.ProcessPrice(data.Time, data.Close)
	if err != nil {
		m.err = err
		return
	}

	if signal.Type != types.SignalTypeHold {
		entry.lastSignal = string(signal.Type)
		m.log.Info("watch signal",
			zap.String("symbol", data.Symbol),
			zap.String("type", string(signal.Type)),
			zap.String("rule", signal.Rule),
			zap.Float64("price", data.Close),
		)
	}
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateIntervalSelect:
		m.state = StateSymbolInput
		m.symbolInput.Focus()
	case StateSignalDisplay:
		// Stop streaming and clear watched symbols
		if m.streamCancel != nil {
			m.streamCancel()
			m.streamCancel = nil
		}
		m.entries = make(map[string]*watchEntry)
		m.symbols = nil
		m.interval = ""
		m.err = nil
		m.symbolInput.Reset()
		m.symbolInput.Focus()
		m.state = StateSymbolInput
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) updateSymbolInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			symbols := ParseSymbols(m.symbolInput.Value())
			if len(symbols) > 0 {
				m.symbols = symbols
				m.state = StateIntervalSelect
				m.symbolInput.Blur()
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.symbolInput, cmd = m.symbolInput.Update(msg)
	return m, cmd
}

func (m Model) updateIntervalSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if item, ok := m.intervalList.SelectedItem().(listItem); ok {
				m.interval = item.name
				m.state = StateSignalDisplay
				return m, m.startStreaming()
			}
		}
	}

	var cmd tea.Cmd
	m.intervalList, cmd = m.intervalList.Update(msg)
	return m, cmd
}

func (m Model) updateSignalDisplay(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.signalTable, cmd = m.signalTable.Update(msg)
	return m, cmd
}

// startStreaming returns a command that starts the market data stream.
func (m *Model) startStreaming() tea.Cmd {
	return func() tea.Msg {
		if m.program == nil {
			return StreamErrorMsg{Err: fmt.Errorf("program not set")}
		}

		ctx, cancel := context.WithCancel(context.Background())
		m.streamCtx = ctx
		m.streamCancel = cancel

		go streamMarketData(m.program, ctx, m.symbols, m.interval)

		return StreamStartedMsg{}
	}
}

// streamMarketData streams finalized candles from Binance and sends them
// to the program.
func streamMarketData(p *tea.Program, ctx context.Context, symbols []string, interval string) {
	client, err := provider.NewMarketDataProvider(provider.ProviderBinance, nil)
	if err != nil {
		p.Send(StreamErrorMsg{Err: err})
		return
	}

	for data, err := range client.Stream(ctx, symbols, interval) {
		if err != nil {
			p.Send(StreamErrorMsg{Err: err})
			continue
		}
		p.Send(MarketDataMsg{Data: data})
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateSymbolInput:
		s.WriteString(TitleStyle.Render("Mark Trading - Signal Watch"))
		s.WriteString("\n\n")
		s.WriteString("Enter comma-separated symbols (e.g., BTCUSDT,ETHUSDT):\n\n")
		s.WriteString(m.symbolInput.View())
		s.WriteString("\n\n")
		s.WriteString(HelpStyle.Render("Press Enter to confirm, Ctrl+C to quit"))

	case StateIntervalSelect:
		s.WriteString(TitleStyle.Render("Select Interval"))
		s.WriteString("\n\n")
		s.WriteString(m.intervalList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to select, Esc to go back"))

	case StateSignalDisplay:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("Signals - %s (%s)", m.strategyCfg.Preset, m.interval)))
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		if len(m.entries) == 0 {
			s.WriteString("Waiting for data...\n")
		} else {
			s.WriteString(m.signalTable.View())
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render(fmt.Sprintf("q: quit | Esc: back | Watching: %s", strings.Join(m.symbols, ", "))))
	}

	return s.String()
}
