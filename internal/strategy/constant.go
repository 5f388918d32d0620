package strategy

import (
	"github.com/GRTran/backtester/internal/runtime"
	"github.com/GRTran/backtester/internal/types"
)

type ConstantConfig struct {
	Weights []float64 `yaml:"weights" json:"weights" jsonschema:"title=Weights,description=One alpha per instrument in run order,minItems=1" validate:"required,min=1"`
}

// ConstantStrategy returns the same configured weights every period. The
// weights must line up with the instrument order of the run.
type ConstantStrategy struct {
	config ConstantConfig
}

func NewConstantStrategy() runtime.StrategyRuntime {
	return &ConstantStrategy{}
}

func (c *ConstantStrategy) Config() any {
	return c.config
}

// Initialize implements runtime.StrategyRuntime.
func (c *ConstantStrategy) Initialize(config string) error {
	return parseConfig(c.Name(), config, &c.config)
}

// Name implements runtime.StrategyRuntime.
func (c *ConstantStrategy) Name() string {
	return "constant"
}

// Alphas implements runtime.StrategyRuntime.
func (c *ConstantStrategy) Alphas(_ *types.PriceSeries, _ any) ([]float64, error) {
	return append([]float64(nil), c.config.Weights...), nil
}
