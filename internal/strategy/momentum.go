package strategy

import (
	"github.com/GRTran/backtester/internal/indicator"
	"github.com/GRTran/backtester/internal/runtime"
	"github.com/GRTran/backtester/internal/types"
	"github.com/GRTran/backtester/pkg/errors"
)

type MomentumConfig struct {
	Indicator indicator.IndicatorType `yaml:"indicator" json:"indicator" jsonschema:"title=Indicator,description=Moving average kind,default=sma,enum=sma,enum=ema" validate:"oneof=sma ema"`
	Field     types.Field             `yaml:"field" json:"field" jsonschema:"title=Field,description=Price field that is averaged,default=adj_close,enum=open,enum=high,enum=low,enum=close,enum=adj_close,enum=volume" validate:"oneof=open high low close adj_close volume"`
	Fast      int                     `yaml:"fast" json:"fast" jsonschema:"title=Fast,description=Periods of the fast average,default=5,minimum=1" validate:"gt=0"`
	Slow      int                     `yaml:"slow" json:"slow" jsonschema:"title=Slow,description=Periods of the slow average. Must exceed fast,default=20,minimum=2" validate:"gtfield=Fast"`
}

// MomentumStrategy goes long instruments whose fast moving average is above
// the slow one: alpha = fast/slow - 1.
type MomentumStrategy struct {
	config MomentumConfig
	fast   indicator.Indicator
	slow   indicator.Indicator
}

func NewMomentumStrategy() runtime.StrategyRuntime {
	return &MomentumStrategy{
		config: MomentumConfig{
			Indicator: indicator.IndicatorTypeSMA,
			Field:     types.FieldAdjClose,
			Fast:      5,
			Slow:      20,
		},
	}
}

func (m *MomentumStrategy) Config() any {
	return m.config
}

// Initialize implements runtime.StrategyRuntime.
func (m *MomentumStrategy) Initialize(config string) error {
	if err := parseConfig(m.Name(), config, &m.config); err != nil {
		return err
	}

	registry := indicator.NewDefaultRegistry()

	fast, err := registry.NewIndicator(m.config.Indicator, m.config.Fast)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to build fast average", err)
	}

	slow, err := registry.NewIndicator(m.config.Indicator, m.config.Slow)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to build slow average", err)
	}

	m.fast, m.slow = fast, slow

	return nil
}

// Name implements runtime.StrategyRuntime.
func (m *MomentumStrategy) Name() string {
	return "momentum"
}

// Alphas implements runtime.StrategyRuntime. Instruments without enough
// history for the slow average get 0.
func (m *MomentumStrategy) Alphas(history *types.PriceSeries, _ any) ([]float64, error) {
	if m.fast == nil || m.slow == nil {
		return nil, errors.New(errors.ErrCodeStrategyNotLoaded, "momentum strategy is not initialized")
	}

	if err := requireField(m.Name(), history, m.config.Field); err != nil {
		return nil, err
	}

	alphas := make([]float64, history.NumInstruments())

	for k := range alphas {
		values := history.Column(m.config.Field, k)

		slow, err := m.slow.RawValue(values)
		if errors.IsInsufficientDataError(err) {
			continue
		}

		if err != nil {
			return nil, err
		}

		fast, err := m.fast.RawValue(values)
		if err != nil {
			return nil, err
		}

		if slow != 0 {
			alphas[k] = fast/slow - 1
		}
	}

	return alphas, nil
}
