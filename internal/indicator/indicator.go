package indicator

import (
	"github.com/GRTran/backtester/internal/types"
)

type IndicatorType string

const (
	IndicatorTypeSMA    IndicatorType = "sma"
	IndicatorTypeEMA    IndicatorType = "ema"
	IndicatorTypeRSI    IndicatorType = "rsi"
	IndicatorTypeZScore IndicatorType = "zscore"
)

// Indicator reduces a value series, ordered oldest first, to a single value.
type Indicator interface {
	// Name returns the unique type of the indicator
	Name() IndicatorType
	// RawValue computes the indicator over values. It returns an
	// *errors.InsufficientDataError when values is shorter than the indicator needs.
	RawValue(values []float64) (float64, error)
	// Config applies indicator specific parameters, usually a period.
	Config(params ...any) error
}

// Compute applies ind to field f of every instrument in history and returns one
// value per instrument in instrument order.
func Compute(ind Indicator, history *types.PriceSeries, f types.Field) ([]float64, error) {
	values := make([]float64, history.NumInstruments())

	for k := range values {
		v, err := ind.RawValue(history.Column(f, k))
		if err != nil {
			return nil, err
		}

		values[k] = v
	}

	return values, nil
}
