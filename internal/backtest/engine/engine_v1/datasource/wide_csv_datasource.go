package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/GRTran/backtester/internal/logger"
	"github.com/GRTran/backtester/internal/types"
	"github.com/GRTran/backtester/pkg/errors"
	"go.uber.org/zap"
)

var wideFieldNames = map[string]types.Field{
	"open":      types.FieldOpen,
	"high":      types.FieldHigh,
	"low":       types.FieldLow,
	"close":     types.FieldClose,
	"adj close": types.FieldAdjClose,
	"adj_close": types.FieldAdjClose,
	"volume":    types.FieldVolume,
}

type wideColumn struct {
	field  types.Field
	symbol string
}

// WideCSVDataSource reads the wide layout written by yfinance downloads: a
// first header row of field names ("Adj Close", "Close", ...), a second row of
// tickers and one row per date with the date in the first column. A third
// header row naming the index ("Date,,,") is skipped when present.
type WideCSVDataSource struct {
	memoryBars
	logger *logger.Logger
}

func NewWideCSVDataSource(logger *logger.Logger) *WideCSVDataSource {
	return &WideCSVDataSource{logger: logger}
}

// Initialize implements DataSource.
func (w *WideCSVDataSource) Initialize(path string) error {
	w.logger.Debug("Initializing wide CSV data source", zap.String("path", path))

	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to open %s", path)
	}
	defer file.Close()

	bars, err := parseWideCSV(file)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeMalformedData, err, "failed to parse %s", path)
	}

	w.load(bars)
	w.logger.Debug("Loaded wide CSV bars", zap.Int("bars", len(bars)))

	return nil
}

func parseWideCSV(r io.Reader) ([]types.MarketData, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	fieldRow, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("missing field header: %w", err)
	}

	tickerRow, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("missing ticker header: %w", err)
	}

	if len(fieldRow) != len(tickerRow) {
		return nil, fmt.Errorf("field header has %d columns, ticker header has %d", len(fieldRow), len(tickerRow))
	}

	columns := make([]*wideColumn, len(fieldRow))
	symbols := make(map[string]map[types.Field]bool)

	for c := 1; c < len(fieldRow); c++ {
		field, ok := wideFieldNames[strings.ToLower(strings.TrimSpace(fieldRow[c]))]
		if !ok {
			continue
		}

		symbol := strings.TrimSpace(tickerRow[c])
		if symbol == "" {
			return nil, fmt.Errorf("column %d (%s) has no ticker", c, fieldRow[c])
		}

		columns[c] = &wideColumn{field: field, symbol: symbol}

		if symbols[symbol] == nil {
			symbols[symbol] = make(map[types.Field]bool)
		}

		symbols[symbol][field] = true
	}

	if len(symbols) == 0 {
		return nil, fmt.Errorf("no price columns found in header")
	}

	for symbol, fields := range symbols {
		for _, f := range []types.Field{types.FieldOpen, types.FieldClose} {
			if !fields[f] {
				return nil, fmt.Errorf("ticker %s has no %s column", symbol, f)
			}
		}
	}

	var bars []types.MarketData

	for line := 3; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if isIndexHeader(record) {
			continue
		}

		t, err := parseTime(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row := make(map[string]*types.MarketData)
		filled := make(map[string]bool)

		for c := 1; c < len(record) && c < len(columns); c++ {
			col := columns[c]
			if col == nil {
				continue
			}

			bar, ok := row[col.symbol]
			if !ok {
				bar = &types.MarketData{Symbol: col.symbol, Time: t, AdjClose: math.NaN()}
				row[col.symbol] = bar
			}

			value := math.NaN()

			if raw := strings.TrimSpace(record[c]); raw != "" {
				value, err = strconv.ParseFloat(raw, 64)
				if err != nil {
					return nil, fmt.Errorf("line %d column %d: %w", line, c, err)
				}

				filled[col.symbol] = true
			}

			setField(bar, col.field, value)
		}

		for symbol, bar := range row {
			// yfinance leaves every cell of a ticker empty before it listed
			if !filled[symbol] {
				continue
			}

			if math.IsNaN(bar.AdjClose) && !symbols[symbol][types.FieldAdjClose] {
				bar.AdjClose = bar.Close
			}

			bar.Id = fmt.Sprintf("%s-%d", symbol, line)
			bars = append(bars, *bar)
		}
	}

	return bars, nil
}

func isIndexHeader(record []string) bool {
	if len(record) == 0 || !strings.EqualFold(strings.TrimSpace(record[0]), "date") {
		return false
	}

	for _, cell := range record[1:] {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

func setField(bar *types.MarketData, f types.Field, value float64) {
	switch f {
	case types.FieldOpen:
		bar.Open = value
	case types.FieldHigh:
		bar.High = value
	case types.FieldLow:
		bar.Low = value
	case types.FieldClose:
		bar.Close = value
	case types.FieldAdjClose:
		bar.AdjClose = value
	case types.FieldVolume:
		bar.Volume = value
	}
}
