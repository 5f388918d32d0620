package datasource

import (
	"fmt"
	"os"
	"time"

	"github.com/GRTran/backtester/internal/logger"
	"github.com/GRTran/backtester/internal/types"
	"github.com/GRTran/backtester/pkg/errors"
	"github.com/gocarina/gocsv"
	"go.uber.org/zap"
)

type csvTime struct {
	value time.Time
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (t *csvTime) UnmarshalCSV(value string) error {
	parsed, err := parseTime(value)
	if err != nil {
		return err
	}

	t.value = parsed

	return nil
}

type csvBar struct {
	Symbol   string   `csv:"symbol"`
	Time     csvTime  `csv:"time"`
	Open     float64  `csv:"open"`
	High     float64  `csv:"high"`
	Low      float64  `csv:"low"`
	Close    float64  `csv:"close"`
	AdjClose *float64 `csv:"adj_close,omitempty"`
	Volume   float64  `csv:"volume"`
}

// CSVDataSource reads a long-format CSV with one bar per row and a header of
// time,symbol,open,high,low,close[,adj_close],volume.
type CSVDataSource struct {
	memoryBars
	logger *logger.Logger
}

func NewCSVDataSource(logger *logger.Logger) *CSVDataSource {
	return &CSVDataSource{logger: logger}
}

// Initialize implements DataSource.
func (c *CSVDataSource) Initialize(path string) error {
	c.logger.Debug("Initializing CSV data source", zap.String("path", path))

	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to open %s", path)
	}
	defer file.Close()

	var rows []csvBar
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return errors.Wrapf(errors.ErrCodeMalformedData, err, "failed to parse %s", path)
	}

	bars := make([]types.MarketData, 0, len(rows))

	for i, row := range rows {
		if row.Symbol == "" {
			return errors.Newf(errors.ErrCodeMalformedData, "row %d of %s has no symbol", i+1, path)
		}

		adjClose := row.Close
		if row.AdjClose != nil {
			adjClose = *row.AdjClose
		}

		bars = append(bars, types.MarketData{
			Id:       fmt.Sprintf("%s-%d", row.Symbol, i),
			Symbol:   row.Symbol,
			Time:     row.Time.value,
			Open:     row.Open,
			High:     row.High,
			Low:      row.Low,
			Close:    row.Close,
			AdjClose: adjClose,
			Volume:   row.Volume,
		})
	}

	c.load(bars)
	c.logger.Debug("Loaded CSV bars", zap.Int("bars", len(bars)))

	return nil
}
