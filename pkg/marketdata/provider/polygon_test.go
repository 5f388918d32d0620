package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/stretchr/testify/suite"
)

// mockPolygonAPIClient implements PolygonAPIClient for testing.
type mockPolygonAPIClient struct {
	iterator PolygonAggsIterator
	params   *models.ListAggsParams
}

func (m *mockPolygonAPIClient) ListAggs(_ context.Context, params *models.ListAggsParams, _ ...models.RequestOption) PolygonAggsIterator {
	m.params = params

	return m.iterator
}

// mockPolygonIterator implements PolygonAggsIterator for testing.
type mockPolygonIterator struct {
	aggs  []models.Agg
	index int
	err   error
}

func (m *mockPolygonIterator) Next() bool {
	if m.index < len(m.aggs) {
		m.index++

		return true
	}

	return false
}

func (m *mockPolygonIterator) Item() models.Agg {
	if m.index > 0 && m.index <= len(m.aggs) {
		return m.aggs[m.index-1]
	}

	return models.Agg{}
}

func (m *mockPolygonIterator) Err() error {
	return m.err
}

type PolygonClientTestSuite struct {
	suite.Suite
	start time.Time
	end   time.Time
}

func TestPolygonClientSuite(t *testing.T) {
	suite.Run(t, new(PolygonClientTestSuite))
}

func (suite *PolygonClientTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.end = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
}

func (suite *PolygonClientTestSuite) aggs(n int) []models.Agg {
	aggs := make([]models.Agg, n)
	for i := range aggs {
		aggs[i] = models.Agg{
			Timestamp: models.Millis(suite.start.AddDate(0, 0, i)),
			Open:      100 + float64(i),
			High:      101 + float64(i),
			Low:       99 + float64(i),
			Close:     100.5 + float64(i),
			Volume:    1e6,
		}
	}

	return aggs
}

func (suite *PolygonClientTestSuite) TestNewPolygonClient() {
	client, err := NewPolygonClient("test-api-key")
	suite.NoError(err)

	polygonClient, ok := client.(*PolygonClient)
	suite.Require().True(ok)
	suite.NotNil(polygonClient.apiClient)
	suite.Nil(polygonClient.writer)

	_, err = NewPolygonClient("")
	suite.Error(err)
	suite.Contains(err.Error(), "apiKey is required")
}

func (suite *PolygonClientTestSuite) TestDownloadWithoutWriter() {
	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{}})

	_, err := client.Download(context.Background(), "SPY", suite.start, suite.end, 1, models.Day, nil)
	suite.Error(err)
	suite.Contains(err.Error(), "no writer configured")
}

func (suite *PolygonClientTestSuite) TestDownloadSuccess() {
	api := &mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: suite.aggs(2)}}
	w := &mockWriter{outputPath: "/tmp/test.parquet"}

	client := NewPolygonClientWithAPI(api)
	client.ConfigWriter(w)

	var progress []float64

	count, err := client.Download(context.Background(), "SPY", suite.start, suite.end, 1, models.Day, func(current float64, total float64, message string) {
		progress = append(progress, current/total)
	})
	suite.Require().NoError(err)
	suite.Equal(2, count)
	suite.Len(w.writtenData, 2)
	suite.Equal([]float64{1}, progress)

	bar := w.writtenData[1]
	suite.Equal("SPY", bar.Symbol)
	suite.True(suite.start.AddDate(0, 0, 1).Equal(bar.Time))
	suite.InDelta(101.0, bar.Open, 1e-9)
	suite.InDelta(101.5, bar.Close, 1e-9)
	suite.Equal(bar.Close, bar.AdjClose)

	suite.Require().NotNil(api.params)
	suite.Equal("SPY", api.params.Ticker)
	suite.Equal(models.Day, api.params.Timespan)
	suite.Require().NotNil(api.params.Adjusted)
	suite.True(*api.params.Adjusted)
}

func (suite *PolygonClientTestSuite) TestDownloadIteratorError() {
	api := &mockPolygonAPIClient{iterator: &mockPolygonIterator{err: errors.New("API rate limit exceeded")}}

	client := NewPolygonClientWithAPI(api)
	client.ConfigWriter(&mockWriter{})

	_, err := client.Download(context.Background(), "SPY", suite.start, suite.end, 1, models.Day, nil)
	suite.Error(err)
	suite.Contains(err.Error(), "error iterating polygon aggregates")
	suite.Contains(err.Error(), "API rate limit exceeded")
}

func (suite *PolygonClientTestSuite) TestDownloadWriteError() {
	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: suite.aggs(3)}})
	client.ConfigWriter(&mockWriter{writeErr: errors.New("disk full"), writeErrAfterN: 1})

	count, err := client.Download(context.Background(), "SPY", suite.start, suite.end, 1, models.Day, nil)
	suite.Error(err)
	suite.Contains(err.Error(), "failed to write data")
	suite.Equal(1, count)
}

func (suite *PolygonClientTestSuite) TestDownloadCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &mockWriter{}
	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: suite.aggs(3)}})
	client.ConfigWriter(w)

	_, err := client.Download(ctx, "SPY", suite.start, suite.end, 1, models.Day, nil)
	suite.ErrorIs(err, context.Canceled)
	suite.Empty(w.writtenData)
}

func (suite *PolygonClientTestSuite) TestNewMarketDataProvider() {
	p, err := NewMarketDataProvider(ProviderPolygon, "key")
	suite.NoError(err)
	suite.IsType(&PolygonClient{}, p)

	_, err = NewMarketDataProvider(ProviderPolygon, 42)
	suite.Error(err)

	p, err = NewMarketDataProvider(ProviderBinance, nil)
	suite.NoError(err)
	suite.IsType(&BinanceClient{}, p)

	_, err = NewMarketDataProvider("other", nil)
	suite.Error(err)
}
