package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	engine "github.com/GRTran/backtester/internal/backtest/engine/engine_v1"
	"github.com/GRTran/backtester/internal/strategy"
	"github.com/GRTran/backtester/pkg/marketdata"
	"gopkg.in/yaml.v2"
)

const configDir = "./config"

// schemaFile is a JSON schema written next to the sample configs.
type schemaFile struct {
	name     string
	generate func() (string, error)
}

// sampleEngineConfig is the engine config written as a starting point. The
// window is left open so the whole data file is used.
type sampleEngineConfig struct {
	InitialCash   float64              `yaml:"initial_cash"`
	Workers       int                  `yaml:"workers"`
	ResultsFormat engine.ResultsFormat `yaml:"results_format"`
	LogLevel      string               `yaml:"log_level"`
}

func newSampleEngineConfig(config engine.BacktestEngineV1Config) sampleEngineConfig {
	return sampleEngineConfig{
		InitialCash:   100000,
		Workers:       config.Workers,
		ResultsFormat: config.ResultsFormat,
		LogLevel:      config.LogLevel,
	}
}

func newSampleDownloadConfig() marketdata.DownloadConfig {
	return marketdata.DownloadConfig{
		Provider: marketdata.ProviderPolygon,
		Tickers:  []string{"SPY", "QQQ"},
		Interval: "1d",
		DataPath: "data",
		Format:   "parquet",
	}
}

func schemaFiles(config engine.BacktestEngineV1Config) []schemaFile {
	files := []schemaFile{
		{name: "backtest-engine-v1-config.json", generate: config.GenerateSchemaJSON},
		{name: "download-config.json", generate: marketdata.GetDownloadConfigSchema},
	}

	for _, name := range strategy.Names() {
		files = append(files, schemaFile{
			name:     fmt.Sprintf("strategy-%s-config.json", name),
			generate: func() (string, error) { return strategy.ConfigSchema(name) },
		})
	}

	return files
}

func validatePaths(schemaPath string, sampleConfigPath string) error {
	if schemaPath == "" {
		return fmt.Errorf("schema path cannot be empty")
	}

	if sampleConfigPath == "" {
		return fmt.Errorf("sample config path cannot be empty")
	}

	return nil
}

func validateSchemaName(schemaName string) error {
	if schemaName == "" {
		return fmt.Errorf("schema name cannot be empty")
	}

	if filepath.Ext(schemaName) != ".json" {
		return fmt.Errorf("schema name %s must have .json extension", schemaName)
	}

	return nil
}

func getSchemaReference(schemaName string) string {
	return "# yaml-language-server: $schema=" + schemaName + "\n"
}

func writeFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// generateSchemaFile writes the engine config schema to schemaPath.
func generateSchemaFile(config engine.BacktestEngineV1Config, schemaPath string) error {
	return writeSchema(schemaFile{name: filepath.Base(schemaPath), generate: config.GenerateSchemaJSON}, schemaPath)
}

func writeSchema(file schemaFile, schemaPath string) error {
	schemaJSON, err := file.generate()
	if err != nil {
		return fmt.Errorf("failed to generate schema %s: %w", file.name, err)
	}

	return writeFile(schemaPath, []byte(schemaJSON))
}

// generateSampleConfig writes an engine config referencing schemaName to
// samplePath. An existing file is left alone.
func generateSampleConfig(config engine.BacktestEngineV1Config, samplePath string, schemaName string) error {
	return writeSample(newSampleEngineConfig(config), samplePath, schemaName)
}

func writeSample(sample any, samplePath string, schemaName string) error {
	if _, err := os.Stat(samplePath); err == nil {
		return nil
	}

	yamlBytes, err := yaml.Marshal(sample)
	if err != nil {
		return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
	}

	yamlBytes = append([]byte(getSchemaReference(schemaName)), yamlBytes...)

	if err := writeFile(samplePath, yamlBytes); err != nil {
		return err
	}

	log.Printf("Sample config successfully generated at %s", samplePath)

	return nil
}

func generate(dir string) error {
	config := engine.EmptyConfig()

	for _, file := range schemaFiles(config) {
		if err := validateSchemaName(file.name); err != nil {
			return err
		}

		schemaPath := filepath.Join(dir, file.name)
		if err := writeSchema(file, schemaPath); err != nil {
			return err
		}

		log.Printf("Schema successfully generated at %s", schemaPath)
	}

	samples := []struct {
		schema string
		sample any
	}{
		{schema: "backtest-engine-v1-config.json", sample: newSampleEngineConfig(config)},
		{schema: "download-config.json", sample: newSampleDownloadConfig()},
	}

	for _, s := range samples {
		schemaPath := filepath.Join(dir, s.schema)
		samplePath := strings.TrimSuffix(schemaPath, ".json") + ".yaml"

		if err := validatePaths(schemaPath, samplePath); err != nil {
			return err
		}

		if err := writeSample(s.sample, samplePath, s.schema); err != nil {
			return err
		}
	}

	return nil
}

func main() {
	if err := generate(configDir); err != nil {
		log.Fatal(err)
	}
}
