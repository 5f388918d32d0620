package indicator

import (
	"github.com/GRTran/backtester/pkg/errors"
)

// EMA is the exponential moving average with alpha = 2/(period+1). It is
// seeded with the SMA of the first period values and then applied
// recursively, matching pandas ewm(adjust=False) after the seed.
type EMA struct {
	period int
}

func NewEMA() Indicator {
	return &EMA{period: 20}
}

// Name implements Indicator.
func (e *EMA) Name() IndicatorType {
	return IndicatorTypeEMA
}

// Config sets the span. Expects one param: period (int).
func (e *EMA) Config(params ...any) error {
	period, err := parsePeriod(e.Name(), params)
	if err != nil {
		return err
	}

	e.period = period

	return nil
}

// RawValue implements Indicator.
func (e *EMA) RawValue(values []float64) (float64, error) {
	if len(values) < e.period {
		return 0, errors.NewInsufficientDataErrorf(e.period, len(values), "", "ema(%d) needs %d values, got %d", e.period, e.period, len(values))
	}

	alpha := 2.0 / float64(e.period+1)

	ema := 0.0
	for _, v := range values[:e.period] {
		ema += v
	}

	ema /= float64(e.period)

	for _, v := range values[e.period:] {
		ema = alpha*v + (1-alpha)*ema
	}

	return ema, nil
}
