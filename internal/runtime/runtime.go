package runtime

import "github.com/GRTran/backtester/internal/types"

// StrategyRuntime produces one alpha per instrument from the history observed so far.
type StrategyRuntime interface {
	// Initialize configures the strategy from its YAML config. An empty config keeps the defaults.
	Initialize(config string) error
	// Alphas is invoked with the history up to and including the last elapsed period
	// and the opaque run context. The result must have one value per instrument,
	// in the instrument order of history.
	Alphas(history *types.PriceSeries, context any) ([]float64, error)
	Name() string
}
