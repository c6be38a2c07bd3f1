package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rxtech-lab/mark-trading/internal/logger"
	"github.com/rxtech-lab/mark-trading/internal/strategy"
)

// defaultConfig is the strategy the watcher evaluates when no config
// file is given: the full three average rule set on common periods.
func defaultConfig() strategy.Config {
	return strategy.Config{
		Preset:         string(strategy.PresetThreeMA),
		Symbol:         "WATCH",
		InitialBalance: 10000,
		ShortPeriod:    7,
		MediumPeriod:   25,
		LongPeriod:     99,
	}
}

func main() {
	configPath := flag.String("config", "", "strategy config yaml; defaults to the three_ma preset on 7/25/99")
	logPath := flag.String("log", "watch.log", "signal log file; the terminal belongs to the TUI")
	flag.Parse()

	cfg := defaultConfig()

	if *configPath != "" {
		loaded, err := strategy.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load strategy config: %v", err)
		}
		cfg = loaded
	}

	// The TUI owns stdout, so signals are logged to a file instead.
	l, err := logger.NewFileLogger(*logPath)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer l.Sync()

	model := NewModel(cfg, l)
	p := tea.NewProgram(&model, tea.WithAltScreen())
	model.SetProgram(p)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "watch failed: %v\n", err)
		os.Exit(1)
	}
}
