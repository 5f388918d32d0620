package engine

import (
	"time"

	"github.com/GRTran/backtester/internal/types"
)

var baseTime = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// newSeries builds a daily series where open[i][k] and adj[i][k] are given per
// period and instrument. close mirrors adj_close.
func newSeries(instruments []string, open, adj [][]float64) *types.PriceSeries {
	periods := make([]types.Period, len(open))

	for i := range open {
		values := map[types.Field]map[string]float64{
			types.FieldOpen:     {},
			types.FieldClose:    {},
			types.FieldAdjClose: {},
		}

		for k, symbol := range instruments {
			values[types.FieldOpen][symbol] = open[i][k]
			values[types.FieldClose][symbol] = adj[i][k]
			values[types.FieldAdjClose][symbol] = adj[i][k]
		}

		periods[i] = types.Period{Time: baseTime.AddDate(0, 0, i), Values: values}
	}

	series, err := types.NewPriceSeries(instruments, periods)
	if err != nil {
		panic(err)
	}

	return series
}
