package runtime

import (
	"github.com/GRTran/backtester/internal/types"
	"github.com/GRTran/backtester/pkg/errors"
)

// CallAlphas invokes the strategy for period and checks the shape of its output.
// Any callback error or wrongly sized vector is returned as a *errors.StrategyError.
func CallAlphas(strategy StrategyRuntime, period int, history *types.PriceSeries, context any) ([]float64, error) {
	alphas, err := strategy.Alphas(history, context)
	if err != nil {
		return nil, errors.WrapStrategyError(strategy.Name(), period, err)
	}

	if err := ValidateAlphas(strategy.Name(), period, alphas, history.NumInstruments()); err != nil {
		return nil, err
	}

	return alphas, nil
}

// ValidateAlphas checks that alphas holds exactly expected values.
func ValidateAlphas(name string, period int, alphas []float64, expected int) error {
	if alphas == nil || len(alphas) != expected {
		return errors.NewStrategyError(name, period, expected, len(alphas))
	}

	return nil
}
