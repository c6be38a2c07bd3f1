package types

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StrategyInfo records which rule set and periods produced a result so
// the stats file is reproducible on its own.
type StrategyInfo struct {
	Name          string  `json:"name" yaml:"name"`
	ShortPeriod   int     `json:"short_period" yaml:"short_period"`
	MediumPeriod  int     `json:"medium_period" yaml:"medium_period"`
	LongPeriod    int     `json:"long_period" yaml:"long_period"`
	RSIPeriod     int     `json:"rsi_period,omitempty" yaml:"rsi_period,omitempty"`
	RSIOverbought float64 `json:"rsi_overbought,omitempty" yaml:"rsi_overbought,omitempty"`
}

// BacktestStats is the stats.yaml document written next to the trade
// list after every run. EngineVersion is checked on read so results
// produced by an incompatible engine are rejected instead of silently
// reinterpreted.
type BacktestStats struct {
	ID             string       `json:"id" yaml:"id"`
	Timestamp      time.Time    `json:"timestamp" yaml:"timestamp"`
	EngineVersion  string       `json:"engine_version" yaml:"engine_version"`
	Symbol         string       `json:"symbol" yaml:"symbol"`
	DataPath       string       `json:"data_path" yaml:"data_path"`
	Strategy       StrategyInfo `json:"strategy" yaml:"strategy"`
	InitialBalance float64      `json:"initial_balance" yaml:"initial_balance"`
	FinalBalance   float64      `json:"final_balance" yaml:"final_balance"`
	Metrics        Metrics      `json:"metrics" yaml:"metrics"`
	TradesFile     string       `json:"trades_file" yaml:"trades_file"`
}

// WriteBacktestStats marshals the stats document to path as YAML.
func WriteBacktestStats(path string, stats BacktestStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadBacktestStats loads a stats document previously written by
// WriteBacktestStats.
func ReadBacktestStats(path string) (BacktestStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BacktestStats{}, err
	}
	var stats BacktestStats
	if err := yaml.Unmarshal(data, &stats); err != nil {
		return BacktestStats{}, err
	}
	return stats, nil
}

// WriteOperations dumps the full trade list to path as YAML.
func WriteOperations(path string, ops []Operation) error {
	data, err := yaml.Marshal(ops)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadOperations loads a trade list previously written by
// WriteOperations.
func ReadOperations(path string) ([]Operation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ops []Operation
	if err := yaml.Unmarshal(data, &ops); err != nil {
		return nil, err
	}
	return ops, nil
}
