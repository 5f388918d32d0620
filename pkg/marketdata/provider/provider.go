package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/GRTran/backtester/pkg/marketdata/writer"
	"github.com/polygon-io/client-go/rest/models"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

type OnDownloadProgress = func(current float64, total float64, message string)

type Provider interface {
	// ConfigWriter configures the writer for the provider
	// The writer is owned by the caller, which initializes and finalizes it
	// around one or more downloads.
	ConfigWriter(writer writer.MarketDataWriter)
	// Download writes the bars of ticker in [startDate, endDate] to the configured
	// writer and returns how many bars were written.
	// The context can be used to cancel the download operation.
	// example:
	// Download(ctx, "AAPL", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC), 1, models.Day, onProgress)
	Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan, onProgress OnDownloadProgress) (count int, err error)
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
func NewMarketDataProvider(providerType ProviderType, config any) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceClient()
	case ProviderPolygon:
		apiKey, ok := config.(string)
		if !ok {
			return nil, fmt.Errorf("polygon provider requires API key string config")
		}

		return NewPolygonClient(apiKey)
	default:
		return nil, fmt.Errorf("unsupported market data provider: %s", providerType)
	}
}

func report(onProgress OnDownloadProgress, current float64, total float64, message string) {
	if onProgress != nil {
		onProgress(current, total, message)
	}
}
