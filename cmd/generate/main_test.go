package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/mark-trading/internal/backtest"
)

type GenerateCmdTestSuite struct {
	suite.Suite
	tempDir string
	prevDir string
}

func (suite *GenerateCmdTestSuite) SetupTest() {
	prevDir, err := os.Getwd()
	suite.Require().NoError(err)
	suite.prevDir = prevDir

	tempDir, err := os.MkdirTemp("", "generate-cmd-test")
	suite.Require().NoError(err)
	suite.tempDir = tempDir

	err = os.Chdir(tempDir)
	suite.Require().NoError(err)
}

func (suite *GenerateCmdTestSuite) TearDownTest() {
	err := os.Chdir(suite.prevDir)
	suite.Require().NoError(err)

	err = os.RemoveAll(suite.tempDir)
	suite.Require().NoError(err)
}

func (suite *GenerateCmdTestSuite) TestSchemaGeneration() {
	main()

	configDir := filepath.Join(suite.tempDir, "config")
	suite.True(dirExists(configDir), "Config directory should exist")

	for _, schemaName := range []string{"backtest-config.json", "sweep-config.json"} {
		schemaPath := filepath.Join(configDir, schemaName)
		suite.True(fileExists(schemaPath), "Schema file should exist")

		schemaContent, err := os.ReadFile(schemaPath)
		suite.Require().NoError(err)
		suite.NotEmpty(schemaContent, "Schema file should not be empty")
	}
}

func (suite *GenerateCmdTestSuite) TestSampleConfigGeneration() {
	main()

	samplePath := filepath.Join(suite.tempDir, "config", "backtest-config.yaml")
	suite.True(fileExists(samplePath), "Sample config file should exist")

	content, err := os.ReadFile(samplePath)
	suite.Require().NoError(err)
	suite.Contains(string(content), "# yaml-language-server: $schema=backtest-config.json")

	// The generated sample must parse back as a valid run config.
	_, err = backtest.ParseRunConfig(content)
	suite.NoError(err)
}

func (suite *GenerateCmdTestSuite) TestSampleConfigNotOverwritten() {
	main()

	samplePath := filepath.Join(suite.tempDir, "config", "sweep-config.yaml")
	err := os.WriteFile(samplePath, []byte("# edited\n"), 0644)
	suite.Require().NoError(err)

	main()

	content, err := os.ReadFile(samplePath)
	suite.Require().NoError(err)
	suite.Equal("# edited\n", string(content), "regeneration should keep local edits")
}

func dirExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

func TestGenerateCmd(t *testing.T) {
	suite.Run(t, new(GenerateCmdTestSuite))
}
