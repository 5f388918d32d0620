package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GRTran/backtester/internal/logger"
	"github.com/GRTran/backtester/pkg/errors"
	"github.com/GRTran/backtester/pkg/marketdata/provider"
	"github.com/GRTran/backtester/pkg/marketdata/writer"
	"github.com/go-playground/validator/v10"
	"github.com/polygon-io/client-go/rest/models"
	"go.uber.org/zap"
)

// ProviderType defines the type of market data provider.
type ProviderType = provider.ProviderType

const (
	ProviderPolygon = provider.ProviderPolygon
	ProviderBinance = provider.ProviderBinance
)

// WriterType defines the type of market data writer.
type WriterType string

const (
	WriterDuckDB WriterType = "duckdb"
)

// maxNamedTickers is the number of tickers spelled out in a generated file name.
const maxNamedTickers = 3

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  ProviderType `validate:"required,oneof=polygon binance"`
	WriterType    WriterType   `validate:"required,oneof=duckdb"`
	DataPath      string       `validate:"required"`
	PolygonApiKey string       `validate:"required_if=ProviderType polygon"`

	// Format of the output file, parquet unless csv is given.
	Format string `validate:"omitempty,oneof=parquet csv"`
}

// DownloadParams holds the parameters for a market data download request.
// A zero StartDate downloads from the earliest available bar and a zero
// EndDate downloads up to now.
type DownloadParams struct {
	Tickers    []string        `validate:"required,min=1,dive,required"`
	StartDate  time.Time
	EndDate    time.Time
	Multiplier int             `validate:"required,min=1"`
	Timespan   models.Timespan `validate:"required"`

	// FileName overrides the generated output file name.
	FileName string
}

// earliestBar is the start used when no start date is given.
var earliestBar = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// Client is the market data client responsible for downloading data from providers and storing it using writers.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	validate   *validator.Validate
	onProgress provider.OnDownloadProgress
	logger     *logger.Logger
	now        func() time.Time
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, onProgress provider.OnDownloadProgress, logger *logger.Logger) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	var apiConfig any
	if config.ProviderType == ProviderPolygon {
		apiConfig = config.PolygonApiKey
	}

	marketProvider, err := provider.NewMarketDataProvider(config.ProviderType, apiConfig)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProvider, "failed to create market data provider", err)
	}

	return NewClientWithProvider(config, marketProvider, onProgress, logger)
}

// NewClientWithProvider creates a client over an existing provider.
func NewClientWithProvider(config ClientConfig, marketProvider provider.Provider, onProgress provider.OnDownloadProgress, logger *logger.Logger) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	return &Client{
		provider:   marketProvider,
		config:     config,
		validate:   validate,
		onProgress: onProgress,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Download fetches every ticker of params into a single file and returns its path.
// The context can be used to cancel the download operation.
func (c *Client) Download(ctx context.Context, params DownloadParams) (path string, err error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	params = c.resolveRange(params)
	if !params.EndDate.After(params.StartDate) {
		return "", errors.Newf(errors.ErrCodeInvalidParameter, "end date %s must be after start date %s",
			params.EndDate.Format(time.DateOnly), params.StartDate.Format(time.DateOnly))
	}

	marketWriter, err := c.setupWriter(params)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to setup writer", err)
	}

	defer func() {
		if cerr := marketWriter.Close(); cerr != nil {
			c.logger.Warn("Failed to close writer", zap.Error(cerr))
		}
	}()

	c.provider.ConfigWriter(marketWriter)

	total := 0

	for i, ticker := range params.Tickers {
		if err := ctx.Err(); err != nil {
			return "", errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "download cancelled", err)
		}

		c.report(float64(i), float64(len(params.Tickers)), fmt.Sprintf("Downloading %s", ticker))

		count, err := c.provider.Download(ctx, ticker, params.StartDate, params.EndDate, params.Multiplier, params.Timespan, nil)
		if err != nil {
			return "", errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "download of %s failed", ticker)
		}

		if count == 0 {
			c.logger.Warn("No bars returned", zap.String("ticker", ticker))
		}

		c.logger.Debug("Downloaded ticker", zap.String("ticker", ticker), zap.Int("bars", count))
		total += count
	}

	if total == 0 {
		return "", errors.Newf(errors.ErrCodeNoDataFound, "no bars returned for %s", strings.Join(params.Tickers, ", "))
	}

	path, err = marketWriter.Finalize()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to finalize writer", err)
	}

	c.report(float64(len(params.Tickers)), float64(len(params.Tickers)), "Download complete")
	c.logger.Info("Market data downloaded",
		zap.Int("tickers", len(params.Tickers)),
		zap.Int("bars", total),
		zap.String("path", path),
	)

	return path, nil
}

func (c *Client) resolveRange(params DownloadParams) DownloadParams {
	if params.StartDate.IsZero() {
		params.StartDate = earliestBar
	}

	if params.EndDate.IsZero() {
		params.EndDate = c.now().UTC()
	}

	return params
}

func (c *Client) report(current float64, total float64, message string) {
	if c.onProgress != nil {
		c.onProgress(current, total, message)
	}
}

// OutputFileName builds TICKERS_START_END_MULTIPLIER_TIMESPAN.ext. More than
// a few tickers are summarised as a count.
func OutputFileName(params DownloadParams, format string) string {
	if params.FileName != "" {
		return params.FileName
	}

	tickers := strings.Join(params.Tickers, "-")
	if len(params.Tickers) > maxNamedTickers {
		tickers = fmt.Sprintf("%d_tickers", len(params.Tickers))
	}

	if format == "" {
		format = "parquet"
	}

	return fmt.Sprintf("%s_%s_%s_%d_%s.%s",
		tickers,
		params.StartDate.Format(time.DateOnly),
		params.EndDate.Format(time.DateOnly),
		params.Multiplier,
		params.Timespan,
		format)
}

// setupWriter initializes the appropriate market data writer based on configuration.
func (c *Client) setupWriter(params DownloadParams) (writer.MarketDataWriter, error) {
	switch c.config.WriterType {
	case WriterDuckDB:
		if err := os.MkdirAll(c.config.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data path %s: %w", c.config.DataPath, err)
		}

		outputPath := filepath.Join(c.config.DataPath, OutputFileName(params, c.config.Format))
		duckdbWriter := writer.NewDuckDBWriter(outputPath, c.logger)

		if err := duckdbWriter.Initialize(); err != nil {
			return nil, fmt.Errorf("failed to initialize DuckDB writer at %s: %w", outputPath, err)
		}

		return duckdbWriter, nil
	default:
		return nil, fmt.Errorf("unsupported writer type: %s", c.config.WriterType)
	}
}
