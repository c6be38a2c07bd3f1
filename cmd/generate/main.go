package main

import (
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/rxtech-lab/mark-trading/internal/backtest"
	"github.com/rxtech-lab/mark-trading/internal/strategy"
	"github.com/rxtech-lab/mark-trading/internal/sweep"
)

// schemaTarget couples a config schema with the file names it is written
// under and a sample config for first-time users.
type schemaTarget struct {
	schemaName   string
	sampleName   string
	generateJSON func() (string, error)
	sampleConfig any
}

func targets() []schemaTarget {
	return []schemaTarget{
		{
			schemaName:   "backtest-config.json",
			sampleName:   "backtest-config.yaml",
			generateJSON: backtest.GenerateSchemaJSON,
			sampleConfig: backtest.RunConfig{
				Strategy: strategy.TestConfig(),
				Backtest: backtest.TestConfig(),
			},
		},
		{
			schemaName:   "sweep-config.json",
			sampleName:   "sweep-config.yaml",
			generateJSON: sweep.GenerateSchemaJSON,
			sampleConfig: sweep.TestConfig(),
		},
	}
}

func main() {
	configDir := "./config"
	if err := os.MkdirAll(configDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	for _, target := range targets() {
		schemaJSON, err := target.generateJSON()
		if err != nil {
			log.Fatalf("Failed to generate schema %s: %v", target.schemaName, err)
		}

		schemaPath := filepath.Join(configDir, target.schemaName)
		if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0644); err != nil {
			log.Fatalf("Failed to write schema to file: %v", err)
		}

		// Sample configs are only written once so local edits survive
		// regeneration.
		samplePath := filepath.Join(configDir, target.sampleName)
		if _, err := os.Stat(samplePath); os.IsNotExist(err) {
			yamlBytes, err := yaml.Marshal(target.sampleConfig)
			if err != nil {
				log.Fatalf("Failed to marshal sample config to yaml: %v", err)
			}

			yamlBytes = append([]byte("# yaml-language-server: $schema="+target.schemaName+"\n"), yamlBytes...)

			if err := os.WriteFile(samplePath, yamlBytes, 0644); err != nil {
				log.Fatalf("Failed to write sample config to file: %v", err)
			}

			log.Printf("Sample config successfully generated at %s", samplePath)
		}

		log.Printf("Schema successfully generated at %s", schemaPath)
	}
}
