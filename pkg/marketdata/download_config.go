package marketdata

import (
	"os"
	"strings"
	"time"

	"github.com/GRTran/backtester/pkg/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DownloadConfig is the file read by the download command. JSON is accepted as well as YAML.
type DownloadConfig struct {
	Provider  ProviderType `yaml:"provider" json:"provider" jsonschema:"title=Provider,description=Market data provider,enum=polygon,enum=binance" validate:"required,oneof=polygon binance"`
	Tickers   []string     `yaml:"tickers" json:"tickers" jsonschema:"title=Tickers,description=Symbols to download (e.g. SPY or BTCUSDT)" validate:"required_without=Universe,dive,required"`
	Universe  string       `yaml:"universe" json:"universe" jsonschema:"title=Universe,description=Universe CSV whose symbols are downloaded when no tickers are given"`
	StartDate string       `yaml:"start_date" json:"start_date" jsonschema:"title=Start Date,description=Optional first date (YYYY-MM-DD or RFC3339)"`
	EndDate   string       `yaml:"end_date" json:"end_date" jsonschema:"title=End Date,description=Optional last date (YYYY-MM-DD or RFC3339). Defaults to now"`
	Interval  string       `yaml:"interval" json:"interval" jsonschema:"title=Interval,description=Sampling interval,default=1d,enum=1s,enum=1m,enum=3m,enum=5m,enum=15m,enum=30m,enum=1h,enum=2h,enum=4h,enum=6h,enum=8h,enum=12h,enum=1d,enum=3d,enum=1w,enum=1M" validate:"omitempty,oneof=1s 1m 3m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d 3d 1w 1M"`
	ApiKey    string       `yaml:"api_key" json:"api_key" jsonschema:"title=API Key,description=Polygon.io API key. Falls back to POLYGON_API_KEY" validate:"required_if=Provider polygon"`
	DataPath  string       `yaml:"data_path" json:"data_path" jsonschema:"title=Data Path,description=Directory the downloaded file is written to,default=data" validate:"required"`
	Format    string       `yaml:"format" json:"format" jsonschema:"title=Format,description=Output file format,default=parquet,enum=parquet,enum=csv" validate:"omitempty,oneof=parquet csv"`
	FileName  string       `yaml:"file_name" json:"file_name" jsonschema:"title=File Name,description=Optional output file name"`
}

// PolygonAPIKeyEnv names the variable read when a polygon config has no api_key.
const PolygonAPIKeyEnv = "POLYGON_API_KEY"

var dateLayouts = []string{time.RFC3339, time.DateOnly}

func parseDate(field string, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, errors.Newf(errors.ErrCodeInvalidParameter, "invalid %s %q, expected YYYY-MM-DD or RFC3339", field, value)
}

// ParseDownloadConfig decodes and validates a download config. data_path
// defaults to "data" and api_key to $POLYGON_API_KEY.
func ParseDownloadConfig(data []byte) (*DownloadConfig, error) {
	config := DownloadConfig{DataPath: "data"}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse download config", err)
	}

	config.ApplyEnvironment()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ApplyEnvironment fills a missing polygon api_key from $POLYGON_API_KEY.
func (c *DownloadConfig) ApplyEnvironment() {
	if c.ApiKey == "" && c.Provider == ProviderPolygon {
		c.ApiKey = os.Getenv(PolygonAPIKeyEnv)
	}
}

// Validate checks the field rules and the date formats.
func (c *DownloadConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid download config", err)
	}

	if _, err := parseDate("start_date", c.StartDate); err != nil {
		return err
	}

	if _, err := parseDate("end_date", c.EndDate); err != nil {
		return err
	}

	return nil
}

// ToDownloadParams converts the config to client parameters. Tickers must be
// resolved before this is called.
func (c *DownloadConfig) ToDownloadParams() (DownloadParams, error) {
	startDate, err := parseDate("start_date", c.StartDate)
	if err != nil {
		return DownloadParams{}, err
	}

	endDate, err := parseDate("end_date", c.EndDate)
	if err != nil {
		return DownloadParams{}, err
	}

	timespan, err := ParseTimespan(c.Interval)
	if err != nil {
		return DownloadParams{}, err
	}

	return DownloadParams{
		Tickers:    c.Tickers,
		StartDate:  startDate,
		EndDate:    endDate,
		Multiplier: timespan.Multiplier(),
		Timespan:   timespan.Timespan(),
		FileName:   c.FileName,
	}, nil
}

// ToClientConfig converts the config to a client configuration.
func (c *DownloadConfig) ToClientConfig() ClientConfig {
	return ClientConfig{
		ProviderType:  c.Provider,
		WriterType:    WriterDuckDB,
		DataPath:      c.DataPath,
		PolygonApiKey: c.ApiKey,
		Format:        c.Format,
	}
}
