package engine

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
)

type ResultsFormat string

const (
	ResultsFormatParquet ResultsFormat = "parquet"
	ResultsFormatCSV     ResultsFormat = "csv"
)

// AllResultsFormats lists the supported export formats.
var AllResultsFormats = []any{ResultsFormatParquet, ResultsFormatCSV}

// Extension returns the file extension for the format.
func (f ResultsFormat) Extension() string {
	if f == ResultsFormatCSV {
		return ".csv"
	}

	return ".parquet"
}

type BacktestEngineV1Config struct {
	InitialCash   float64                    `yaml:"initial_cash" json:"initial_cash" jsonschema:"title=Initial Cash,description=Cash available at period 0,minimum=0" validate:"gt=0"`
	StartTime     optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional first period of the backtest window"`
	EndTime       optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional last period of the backtest window"`
	Workers       int                        `yaml:"workers" json:"workers" jsonschema:"title=Workers,description=Goroutines used for per-instrument work inside a period. 0 or 1 runs inline,minimum=0" validate:"gte=0,lte=256"`
	ResultsFormat ResultsFormat              `yaml:"results_format" json:"results_format" jsonschema:"title=Results Format,description=File format of exported cash/trades/marks tables" validate:"omitempty,oneof=parquet csv"`
	EngineVersion string                     `yaml:"engine_version" json:"engine_version" jsonschema:"title=Engine Version,description=Optional version or semver constraint the engine must satisfy"`
	LogLevel      string                     `yaml:"log_level" json:"log_level" jsonschema:"title=Log Level,description=Logger level,enum=debug,enum=info,enum=warn,enum=error" validate:"omitempty,oneof=debug info warn error"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestEngineV1Config.
func (c *BacktestEngineV1Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type Config struct {
		InitialCash   float64       `yaml:"initial_cash"`
		StartTime     *time.Time    `yaml:"start_time"`
		EndTime       *time.Time    `yaml:"end_time"`
		Workers       int           `yaml:"workers"`
		ResultsFormat ResultsFormat `yaml:"results_format"`
		EngineVersion string        `yaml:"engine_version"`
		LogLevel      string        `yaml:"log_level"`
	}

	config := Config{
		ResultsFormat: c.ResultsFormat,
		LogLevel:      c.LogLevel,
	}
	if err := unmarshal(&config); err != nil {
		return err
	}

	c.InitialCash = config.InitialCash
	c.Workers = config.Workers
	c.ResultsFormat = config.ResultsFormat
	c.EngineVersion = config.EngineVersion
	c.LogLevel = config.LogLevel
	c.StartTime = optional.None[time.Time]()
	c.EndTime = optional.None[time.Time]()

	if config.StartTime != nil {
		c.StartTime = optional.Some(config.StartTime.UTC())
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(config.EndTime.UTC())
	}

	return nil
}

// Validate checks field constraints and that the window is not inverted.
func (c *BacktestEngineV1Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid engine config: %w", err)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return fmt.Errorf("invalid engine config: end_time %s is before start_time %s",
			c.EndTime.Unwrap().Format(time.RFC3339), c.StartTime.Unwrap().Format(time.RFC3339))
	}

	return nil
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config.
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch t {
			case reflect.TypeOf(optional.Option[time.Time]{}):
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			case reflect.TypeOf(ResultsFormat("")):
				return &jsonschema.Schema{
					Type: "string",
					Enum: AllResultsFormats,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config.
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

func TestConfig(startTime time.Time, endTime time.Time) BacktestEngineV1Config {
	return BacktestEngineV1Config{
		InitialCash:   10000,
		StartTime:     optional.Some(startTime),
		EndTime:       optional.Some(endTime),
		ResultsFormat: ResultsFormatParquet,
		LogLevel:      "info",
	}
}

// EmptyConfig returns a BacktestEngineV1Config with default values.
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		InitialCash:   0,
		StartTime:     optional.None[time.Time](),
		EndTime:       optional.None[time.Time](),
		Workers:       0,
		ResultsFormat: ResultsFormatParquet,
		LogLevel:      "info",
	}
}
