package go_runtime

import (
	"fmt"

	"github.com/GRTran/backtester/internal/runtime"
	"github.com/GRTran/backtester/internal/types"
)

// AlphaFunc is a plain Go strategy callback.
type AlphaFunc func(history *types.PriceSeries, context any) ([]float64, error)

// GoRuntime is a runtime for a strategy that is written as a Go function.
// A panic inside the callback is returned as an error instead of crashing the run.
type GoRuntime struct {
	name string
	fn   AlphaFunc
}

// Initialize implements StrategyRuntime. Function strategies take no config.
func (g *GoRuntime) Initialize(config string) error {
	return nil
}

// Name implements StrategyRuntime.
func (g *GoRuntime) Name() string {
	return g.name
}

// Alphas implements StrategyRuntime.
func (g *GoRuntime) Alphas(history *types.PriceSeries, context any) (alphas []float64, err error) {
	if g.fn == nil {
		return nil, fmt.Errorf("strategy %s has no callback", g.name)
	}

	defer func() {
		if r := recover(); r != nil {
			alphas = nil
			err = fmt.Errorf("strategy %s panicked: %v", g.name, r)
		}
	}()

	return g.fn(history, context)
}

func NewGoRuntime(name string, fn AlphaFunc) runtime.StrategyRuntime {
	return &GoRuntime{
		name: name,
		fn:   fn,
	}
}
