package strategy

import (
	"github.com/GRTran/backtester/internal/indicator"
	"github.com/GRTran/backtester/internal/runtime"
	"github.com/GRTran/backtester/internal/types"
	"github.com/GRTran/backtester/pkg/errors"
)

type ZScoreConfig struct {
	Field types.Field `yaml:"field" json:"field" jsonschema:"title=Field,description=Price field that is scored,default=adj_close,enum=open,enum=high,enum=low,enum=close,enum=adj_close,enum=volume" validate:"oneof=open high low close adj_close volume"`
	// Lookback 0 scores the latest period across instruments. A positive
	// lookback scores each instrument against its own last Lookback values.
	Lookback int `yaml:"lookback" json:"lookback" jsonschema:"title=Lookback,description=0 scores across instruments; otherwise periods per instrument (at least 2),minimum=0" validate:"gte=0,ne=1"`
	// Reverse negates the scores, turning the signal into mean reversion.
	Reverse bool `yaml:"reverse" json:"reverse" jsonschema:"title=Reverse,description=Negate the scores"`
}

// ZScoreStrategy weights instruments by the z-score of a price field.
type ZScoreStrategy struct {
	config ZScoreConfig
	score  indicator.Indicator
}

func NewZScoreStrategy() runtime.StrategyRuntime {
	return &ZScoreStrategy{
		config: ZScoreConfig{Field: types.FieldAdjClose},
	}
}

// Config returns the active configuration.
func (z *ZScoreStrategy) Config() any {
	return z.config
}

// Initialize implements runtime.StrategyRuntime.
func (z *ZScoreStrategy) Initialize(config string) error {
	if err := parseConfig(z.Name(), config, &z.config); err != nil {
		return err
	}

	z.score = nil

	if z.config.Lookback > 0 {
		score, err := indicator.NewDefaultRegistry().NewIndicator(indicator.IndicatorTypeZScore, z.config.Lookback)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to build zscore indicator", err)
		}

		z.score = score
	}

	return nil
}

// Name implements runtime.StrategyRuntime.
func (z *ZScoreStrategy) Name() string {
	return "zscore"
}

// Alphas implements runtime.StrategyRuntime. Until the lookback is filled
// every alpha is 0.
func (z *ZScoreStrategy) Alphas(history *types.PriceSeries, _ any) ([]float64, error) {
	if err := requireField(z.Name(), history, z.config.Field); err != nil {
		return nil, err
	}

	var scores []float64

	if z.score == nil {
		scores = indicator.ZScores(history.Last(z.config.Field))
	} else {
		values, err := indicator.Compute(z.score, history, z.config.Field)

		switch {
		case errors.IsInsufficientDataError(err):
			values = make([]float64, history.NumInstruments())
		case err != nil:
			return nil, err
		}

		scores = values
	}

	if z.config.Reverse {
		for k := range scores {
			scores[k] = -scores[k]
		}
	}

	return scores, nil
}
