package indicator

import (
	"fmt"
	"math"
)

// parsePeriod reads a positive window length from the first config param.
// Config files decode numbers as int or float64 so both are accepted.
func parsePeriod(name IndicatorType, params []any) (int, error) {
	if len(params) < 1 {
		return 0, fmt.Errorf("Config for %s expects 1 argument: period (int)", name)
	}

	var period int

	switch v := params[0].(type) {
	case int:
		period = v
	case int64:
		period = int(v)
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("invalid type for period parameter in %s: expected integer, got %v", name, v)
		}

		period = int(v)
	default:
		return 0, fmt.Errorf("invalid type for period parameter in %s: expected int, got %T", name, params[0])
	}

	if period <= 0 {
		return 0, fmt.Errorf("period for %s must be a positive integer, got %d", name, period)
	}

	return period, nil
}
