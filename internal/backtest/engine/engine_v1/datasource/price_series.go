package datasource

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GRTran/backtester/internal/logger"
	"github.com/GRTran/backtester/internal/types"
	"github.com/GRTran/backtester/pkg/errors"
	"github.com/moznion/go-optional"
)

// Open picks a data source for path by its extension and, for CSV, by its
// header: a header carrying a symbol column is long format, anything else is
// read as the wide yfinance layout. The returned source is initialized.
func Open(path string, logger *logger.Logger) (DataSource, error) {
	var (
		ds  DataSource
		err error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		ds, err = NewDataSource(":memory:", logger)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
		}
	case ".csv":
		long, err := isLongCSV(path)
		if err != nil {
			return nil, err
		}

		if long {
			ds = NewCSVDataSource(logger)
		} else {
			ds = NewWideCSVDataSource(logger)
		}
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported data file %s, expected .parquet or .csv", path)
	}

	if err := ds.Initialize(path); err != nil {
		_ = ds.Close()

		return nil, err
	}

	return ds, nil
}

func isLongCSV(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to open %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return false, errors.Wrapf(errors.ErrCodeMalformedData, err, "failed to read header of %s", path)
	}

	for _, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "symbol") {
			return true, nil
		}
	}

	return false, nil
}

// LoadPriceSeries reads the bars of ds in [start, end] into a price series over
// instruments. An empty instrument list takes every symbol in the source.
func LoadPriceSeries(ds DataSource, instruments []string, start, end optional.Option[time.Time]) (*types.PriceSeries, error) {
	if len(instruments) == 0 {
		symbols, err := ds.Symbols()
		if err != nil {
			return nil, err
		}

		instruments = symbols
	}

	var bars []types.MarketData

	for bar, err := range ds.ReadAll(start, end) {
		if err != nil {
			return nil, err
		}

		bars = append(bars, bar)
	}

	return types.NewPriceSeriesFromBars(instruments, bars)
}
