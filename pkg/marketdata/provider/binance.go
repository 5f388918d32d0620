package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/GRTran/backtester/internal/types"
	"github.com/GRTran/backtester/pkg/marketdata/writer"
	binance "github.com/adshao/go-binance/v2"
	"github.com/polygon-io/client-go/rest/models"
)

// binancePageSize is the number of klines the API returns per request by default.
const binancePageSize = 500

// BinanceKlinesAPI fetches one page of klines.
type BinanceKlinesAPI interface {
	Klines(ctx context.Context, symbol string, interval string, startTime int64, endTime int64) ([]*binance.Kline, error)
}

type binanceRestClient struct {
	client *binance.Client
}

func (b *binanceRestClient) Klines(ctx context.Context, symbol string, interval string, startTime int64, endTime int64) ([]*binance.Kline, error) {
	return b.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		StartTime(startTime).
		EndTime(endTime).
		Do(ctx)
}

type BinanceClient struct {
	api    BinanceKlinesAPI
	writer writer.MarketDataWriter
}

// NewBinanceClient creates a client over the public Binance REST API, which needs no key.
func NewBinanceClient() (Provider, error) {
	return NewBinanceClientWithAPI(&binanceRestClient{client: binance.NewClient("", "")}), nil
}

// NewBinanceClientWithAPI creates a client over an existing klines API.
func NewBinanceClientWithAPI(api BinanceKlinesAPI) *BinanceClient {
	return &BinanceClient{
		api:    api,
		writer: nil,
	}
}

func (c *BinanceClient) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

// Download pages through the historical klines of ticker. Crypto pairs have no
// corporate actions so the adjusted close is the close.
func (c *BinanceClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan, onProgress OnDownloadProgress) (int, error) {
	interval, err := convertTimespanToBinanceInterval(timespan, multiplier)
	if err != nil {
		return 0, fmt.Errorf("failed to convert timespan to Binance interval: %w", err)
	}

	if c.writer == nil {
		return 0, fmt.Errorf("writer is not configured")
	}

	startTimeMillis := startDate.UnixMilli()
	endTimeMillis := endDate.UnixMilli()
	currentStartTime := startTimeMillis
	processedCount := 0

	for {
		if err := ctx.Err(); err != nil {
			return processedCount, fmt.Errorf("download of %s cancelled: %w", ticker, err)
		}

		klines, err := c.api.Klines(ctx, ticker, interval, currentStartTime, endTimeMillis)
		if err != nil {
			return processedCount, fmt.Errorf("failed to fetch klines from Binance: %w", err)
		}

		written, err := processKlines(c.writer, ticker, klines)
		processedCount += written

		if err != nil {
			return processedCount, fmt.Errorf("failed to process klines: %w", err)
		}

		report(onProgress, float64(currentStartTime-startTimeMillis), float64(endTimeMillis-startTimeMillis),
			fmt.Sprintf("Downloading %s klines from Binance", ticker))

		if len(klines) < binancePageSize {
			break
		}

		// the next page starts just after the close of the last kline
		currentStartTime = klines[len(klines)-1].CloseTime + 1
		if currentStartTime >= endTimeMillis {
			break
		}
	}

	return processedCount, nil
}

// processKlines converts klines to MarketData and writes them, returning how many were written.
func processKlines(w writer.MarketDataWriter, ticker string, klines []*binance.Kline) (int, error) {
	for i, k := range klines {
		values := make([]float64, 5)

		for j, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return i, fmt.Errorf("invalid kline value %q at %d: %w", raw, k.OpenTime, err)
			}

			values[j] = v
		}

		marketData := types.MarketData{
			Id:       "",
			Symbol:   ticker,
			Time:     time.UnixMilli(k.OpenTime).UTC(),
			Open:     values[0],
			High:     values[1],
			Low:      values[2],
			Close:    values[3],
			AdjClose: values[3],
			Volume:   values[4],
		}

		if err := w.Write(marketData); err != nil {
			return i, fmt.Errorf("failed to write market data: %w", err)
		}
	}

	return len(klines), nil
}

// convertTimespanToBinanceInterval converts the polygon timespan and multiplier to a Binance interval string.
// Binance intervals: 1s, 1m, 3m, 5m, 15m, 30m, 1h, 2h, 4h, 6h, 8h, 12h, 1d, 3d, 1w, 1M
func convertTimespanToBinanceInterval(timespan models.Timespan, multiplier int) (string, error) {
	switch timespan {
	case models.Second:
		if multiplier == 1 {
			return "1s", nil
		}

		return "", fmt.Errorf("unsupported second multiplier for Binance: %d", multiplier)
	case models.Minute:
		return fmt.Sprintf("%dm", multiplier), nil
	case models.Hour:
		return fmt.Sprintf("%dh", multiplier), nil
	case models.Day:
		return fmt.Sprintf("%dd", multiplier), nil
	case models.Week:
		if multiplier == 1 {
			return "1w", nil
		}

		return "", fmt.Errorf("unsupported weekly multiplier for Binance: %d", multiplier)
	case models.Month:
		if multiplier == 1 {
			return "1M", nil
		}

		return "", fmt.Errorf("unsupported monthly multiplier for Binance: %d", multiplier)
	default:
		return "", fmt.Errorf("unsupported timespan for Binance: %s", timespan)
	}
}
