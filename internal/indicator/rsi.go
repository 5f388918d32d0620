package indicator

import (
	"github.com/GRTran/backtester/pkg/errors"
)

// RSI is the relative strength index with Wilder smoothing.
type RSI struct {
	period int
}

func NewRSI() Indicator {
	return &RSI{period: 14}
}

// Name implements Indicator.
func (r *RSI) Name() IndicatorType {
	return IndicatorTypeRSI
}

// Config sets the smoothing period. Expects one param: period (int).
func (r *RSI) Config(params ...any) error {
	period, err := parsePeriod(r.Name(), params)
	if err != nil {
		return err
	}

	r.period = period

	return nil
}

// RawValue implements Indicator. It needs period+1 values to form period changes.
func (r *RSI) RawValue(values []float64) (float64, error) {
	required := r.period + 1
	if len(values) < required {
		return 0, errors.NewInsufficientDataErrorf(required, len(values), "", "rsi(%d) needs %d values, got %d", r.period, required, len(values))
	}

	var avgGain, avgLoss float64

	for i := 1; i <= r.period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}

	avgGain /= float64(r.period)
	avgLoss /= float64(r.period)

	for i := required; i < len(values); i++ {
		change := values[i] - values[i-1]
		gain, loss := 0.0, 0.0

		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		avgGain = (avgGain*float64(r.period-1) + gain) / float64(r.period)
		avgLoss = (avgLoss*float64(r.period-1) + loss) / float64(r.period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50, nil
		}

		return 100, nil
	}

	rs := avgGain / avgLoss

	return 100 - 100/(1+rs), nil
}
