package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/moznion/go-optional"
)

// listItem implements the list.Item interface for the interval list.
type listItem struct {
	name        string
	description string
}

func (i listItem) Title() string       { return i.name }
func (i listItem) Description() string { return i.description }
func (i listItem) FilterValue() string { return i.name }

// NewIntervalList creates a new list for interval selection.
func NewIntervalList() list.Model {
	items := []list.Item{
		listItem{name: "1m", description: "1 minute candles"},
		listItem{name: "3m", description: "3 minute candles"},
		listItem{name: "5m", description: "5 minute candles"},
		listItem{name: "15m", description: "15 minute candles"},
		listItem{name: "30m", description: "30 minute candles"},
		listItem{name: "1h", description: "1 hour candles"},
		listItem{name: "2h", description: "2 hour candles"},
		listItem{name: "4h", description: "4 hour candles"},
		listItem{name: "1d", description: "1 day candles"},
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = "Select Interval"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// NewSymbolInput creates a new text input for symbol entry.
func NewSymbolInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "BTCUSDT,ETHUSDT,BNBUSDT"
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 50
	ti.Prompt = "> "

	return ti
}

// ParseSymbols parses comma-separated symbols into a slice.
func ParseSymbols(input string) []string {
	parts := strings.Split(input, ",")
	symbols := make([]string, 0, len(parts))

	for _, p := range parts {
		s := strings.TrimSpace(strings.ToUpper(p))
		if s != "" {
			symbols = append(symbols, s)
		}
	}

	return symbols
}

// NewSignalTable creates the table showing prices, indicators and the
// latest signal per symbol.
func NewSignalTable() table.Model {
	columns := []table.Column{
		{Title: "Symbol", Width: 12},
		{Title: "Price", Width: 16},
		{Title: "Short MA", Width: 12},
		{Title: "Medium MA", Width: 12},
		{Title: "Long MA", Width: 12},
		{Title: "RSI", Width: 8},
		{Title: "Signal", Width: 12},
		{Title: "Time", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// FormatIndicator renders an optional indicator value, "-" while the
// window is still filling.
func FormatIndicator(value optional.Option[float64]) string {
	if value.IsNone() {
		return "-"
	}

	return fmt.Sprintf("%.4f", value.Unwrap())
}

// UpdateTableRows rebuilds the table rows from the latest watch entries.
func UpdateTableRows(t table.Model, entries map[string]*watchEntry) table.Model {
	symbols := make([]string, 0, len(entries))
	for symbol := range entries {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	rows := make([]table.Row, 0, len(entries))

	for _, symbol := range symbols {
		entry := entries[symbol]
		ind := entry.engine.Indicators()
		cfg := entry.engine.Config()

		short := "-"
		if cfg.ShortPeriod > 0 {
			short = FormatIndicator(ind.MovingAverage(cfg.ShortPeriod))
		}

		rsi := "-"
		if cfg.RSIPeriod > 0 {
			rsi = FormatIndicator(ind.RSI(cfg.RSIPeriod))
		}

		signal := "-"
		if entry.lastSignal != "" {
			signal = entry.lastSignal
		}

		rows = append(rows, table.Row{
			symbol,
			FormatPriceWithColor(entry.data.Close, entry.prevPrice),
			short,
			FormatIndicator(ind.MovingAverage(cfg.MediumPeriod)),
			FormatIndicator(ind.MovingAverage(cfg.LongPeriod)),
			rsi,
			signal,
			entry.data.Time.Format("15:04:05"),
		})
	}

	t.SetRows(rows)

	return t
}
