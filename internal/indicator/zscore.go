package indicator

import (
	"math"

	"github.com/GRTran/backtester/pkg/errors"
)

// ZScore scores the last value against the mean and sample standard deviation
// of the last period values, the last value included. A flat window scores 0.
type ZScore struct {
	period int
}

func NewZScore() Indicator {
	return &ZScore{period: 20}
}

// Name implements Indicator.
func (z *ZScore) Name() IndicatorType {
	return IndicatorTypeZScore
}

// Config sets the lookback. Expects one param: period (int), at least 2.
func (z *ZScore) Config(params ...any) error {
	period, err := parsePeriod(z.Name(), params)
	if err != nil {
		return err
	}

	if period < 2 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "period for %s must be at least 2, got %d", z.Name(), period)
	}

	z.period = period

	return nil
}

// RawValue implements Indicator.
func (z *ZScore) RawValue(values []float64) (float64, error) {
	if len(values) < z.period {
		return 0, errors.NewInsufficientDataErrorf(z.period, len(values), "", "zscore(%d) needs %d values, got %d", z.period, z.period, len(values))
	}

	window := values[len(values)-z.period:]
	std := Std(window)

	if math.IsNaN(std) || std == 0 {
		return 0, nil
	}

	return (window[len(window)-1] - Mean(window)) / std, nil
}
