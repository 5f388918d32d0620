package indicator

import (
	"github.com/GRTran/backtester/pkg/errors"
)

// SMA is the simple moving average of the last period values.
type SMA struct {
	period int
}

func NewSMA() Indicator {
	return &SMA{period: 20}
}

// Name implements Indicator.
func (m *SMA) Name() IndicatorType {
	return IndicatorTypeSMA
}

// Config sets the window length. Expects one param: period (int).
func (m *SMA) Config(params ...any) error {
	period, err := parsePeriod(m.Name(), params)
	if err != nil {
		return err
	}

	m.period = period

	return nil
}

// RawValue implements Indicator.
func (m *SMA) RawValue(values []float64) (float64, error) {
	if len(values) < m.period {
		return 0, errors.NewInsufficientDataErrorf(m.period, len(values), "", "sma(%d) needs %d values, got %d", m.period, m.period, len(values))
	}

	sum := 0.0
	for _, v := range values[len(values)-m.period:] {
		sum += v
	}

	return sum / float64(m.period), nil
}
