package datasource

import (
	"sort"
	"strings"
	"time"

	"github.com/GRTran/backtester/internal/types"
	"github.com/GRTran/backtester/pkg/errors"
	"github.com/moznion/go-optional"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTime parses the timestamp formats written by pandas, yfinance and DuckDB.
// Values without a zone are read as UTC.
func parseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, errors.Newf(errors.ErrCodeMalformedData, "unrecognised timestamp %q", value)
}

func inRange(t time.Time, start optional.Option[time.Time], end optional.Option[time.Time]) bool {
	if start.IsSome() && t.Before(start.Unwrap()) {
		return false
	}

	if end.IsSome() && t.After(end.Unwrap()) {
		return false
	}

	return true
}

// memoryBars holds a fully loaded file for the CSV sources.
type memoryBars struct {
	bars []types.MarketData
}

func (m *memoryBars) load(bars []types.MarketData) {
	sort.SliceStable(bars, func(a, b int) bool {
		if !bars[a].Time.Equal(bars[b].Time) {
			return bars[a].Time.Before(bars[b].Time)
		}

		return bars[a].Symbol < bars[b].Symbol
	})

	if bars == nil {
		bars = []types.MarketData{}
	}

	m.bars = bars
}

func (m *memoryBars) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.MarketData, error) bool) {
	return func(yield func(types.MarketData, error) bool) {
		if m.bars == nil {
			yield(types.MarketData{}, errors.New(errors.ErrCodeDataSourceUnavailable, "data source is not initialized"))

			return
		}

		for _, bar := range m.bars {
			if !inRange(bar.Time, start, end) {
				continue
			}

			if !yield(bar, nil) {
				return
			}
		}
	}
}

func (m *memoryBars) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	if m.bars == nil {
		return 0, errors.New(errors.ErrCodeDataSourceUnavailable, "data source is not initialized")
	}

	count := 0

	for _, bar := range m.bars {
		if inRange(bar.Time, start, end) {
			count++
		}
	}

	return count, nil
}

func (m *memoryBars) Symbols() ([]string, error) {
	if m.bars == nil {
		return nil, errors.New(errors.ErrCodeDataSourceUnavailable, "data source is not initialized")
	}

	seen := make(map[string]struct{})

	var symbols []string

	for _, bar := range m.bars {
		if _, ok := seen[bar.Symbol]; ok {
			continue
		}

		seen[bar.Symbol] = struct{}{}
		symbols = append(symbols, bar.Symbol)
	}

	sort.Strings(symbols)

	return symbols, nil
}

func (m *memoryBars) Close() error {
	m.bars = nil

	return nil
}
