package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/GRTran/backtester/internal/types"
	"github.com/GRTran/backtester/pkg/marketdata/writer"
	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
)

// PolygonAggsIterator is the subset of the polygon aggregates iterator used by the client.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient lists aggregate bars.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonRestClient struct {
	client *polygon.Client
}

func (p *polygonRestClient) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return p.client.ListAggs(ctx, params, options...)
}

type PolygonClient struct {
	apiClient PolygonAPIClient
	writer    writer.MarketDataWriter
}

func NewPolygonClient(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required")
	}

	return NewPolygonClientWithAPI(&polygonRestClient{client: polygon.New(apiKey)}), nil
}

// NewPolygonClientWithAPI creates a client over an existing aggregates API.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{
		apiClient: apiClient,
		writer:    nil,
	}
}

func (c *PolygonClient) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

// Download requests split and dividend adjusted aggregates, so the adjusted
// close of each bar is its close.
func (c *PolygonClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan, onProgress OnDownloadProgress) (int, error) {
	if c.writer == nil {
		return 0, fmt.Errorf("no writer configured for PolygonClient. Call ConfigWriter first")
	}

	totalDays := endDate.Sub(startDate).Hours()/24 + 1

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithAdjusted(true).WithLimit(50000)

	iter := c.apiClient.ListAggs(ctx, params)

	processedCount := 0

	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return processedCount, fmt.Errorf("download of %s cancelled: %w", ticker, err)
		}

		agg := iter.Item()
		barTime := time.Time(agg.Timestamp).UTC()

		err := c.writer.Write(types.MarketData{
			Id:       "",
			Symbol:   ticker,
			Time:     barTime,
			Open:     agg.Open,
			High:     agg.High,
			Low:      agg.Low,
			Close:    agg.Close,
			AdjClose: agg.Close,
			Volume:   agg.Volume,
		})
		if err != nil {
			return processedCount, fmt.Errorf("failed to write data: %w", err)
		}

		processedCount++
		if processedCount%1000 == 0 {
			report(onProgress, barTime.Sub(startDate).Hours()/24, totalDays, fmt.Sprintf("Downloading %s", ticker))
		}
	}

	if iter.Err() != nil {
		return processedCount, fmt.Errorf("error iterating polygon aggregates: %w", iter.Err())
	}

	report(onProgress, totalDays, totalDays, fmt.Sprintf("Downloaded %d bars for %s", processedCount, ticker))

	return processedCount, nil
}
