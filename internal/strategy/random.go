package strategy

import (
	"math/rand"

	"github.com/GRTran/backtester/internal/runtime"
	"github.com/GRTran/backtester/internal/types"
)

type RandomConfig struct {
	Seed int64 `yaml:"seed" json:"seed" jsonschema:"title=Seed,description=Seed of the alpha draws,default=1"`
}

// RandomStrategy draws uniform alphas in [-1, 1). The draw for a period
// depends only on the seed and the history length, so reruns match.
type RandomStrategy struct {
	config RandomConfig
}

func NewRandomStrategy() runtime.StrategyRuntime {
	return &RandomStrategy{config: RandomConfig{Seed: 1}}
}

func (r *RandomStrategy) Config() any {
	return r.config
}

// Initialize implements runtime.StrategyRuntime.
func (r *RandomStrategy) Initialize(config string) error {
	return parseConfig(r.Name(), config, &r.config)
}

// Name implements runtime.StrategyRuntime.
func (r *RandomStrategy) Name() string {
	return "random"
}

// Alphas implements runtime.StrategyRuntime.
func (r *RandomStrategy) Alphas(history *types.PriceSeries, _ any) ([]float64, error) {
	rng := rand.New(rand.NewSource(r.config.Seed + int64(history.Len())))

	alphas := make([]float64, history.NumInstruments())
	for k := range alphas {
		alphas[k] = rng.Float64()*2 - 1
	}

	return alphas, nil
}
