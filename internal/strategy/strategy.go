package strategy

import (
	"sort"
	"strings"

	"github.com/GRTran/backtester/internal/runtime"
	"github.com/GRTran/backtester/internal/types"
	"github.com/GRTran/backtester/pkg/errors"
	"github.com/GRTran/backtester/pkg/utils"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

// Factory builds an unconfigured strategy.
type Factory func() runtime.StrategyRuntime

var builtins = map[string]Factory{
	"zscore":   NewZScoreStrategy,
	"random":   NewRandomStrategy,
	"constant": NewConstantStrategy,
	"momentum": NewMomentumStrategy,
}

// Names returns the built-in strategy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// New builds the built-in strategy called name and initializes it with config.
func New(name string, config string) (runtime.StrategyRuntime, error) {
	factory, ok := builtins[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unknown strategy %q, available: %s", name, strings.Join(Names(), ", "))
	}

	s := factory()
	if err := s.Initialize(config); err != nil {
		return nil, err
	}

	return s, nil
}

// configurable is implemented by strategies that expose their config struct.
type configurable interface {
	Config() any
}

// ConfigSchema returns the JSON schema of the config of the built-in strategy called name.
func ConfigSchema(name string) (string, error) {
	factory, ok := builtins[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", errors.Newf(errors.ErrCodeUnsupportedStrategy, "unknown strategy %q, available: %s", name, strings.Join(Names(), ", "))
	}

	s, ok := factory().(configurable)
	if !ok {
		return "", errors.Newf(errors.ErrCodeUnsupportedStrategy, "strategy %s has no config", name)
	}

	return utils.GetSchemaFromConfig(s.Config())
}

// parseConfig decodes a YAML strategy config over target and validates it.
// An empty config leaves target untouched.
func parseConfig(name string, config string, target any) error {
	if strings.TrimSpace(config) != "" {
		if err := yaml.UnmarshalStrict([]byte(config), target); err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse %s strategy config", name)
		}
	}

	if err := validator.New().Struct(target); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid %s strategy config", name)
	}

	return nil
}

func requireField(name string, history *types.PriceSeries, f types.Field) error {
	if !history.HasField(f) {
		return errors.Newf(errors.ErrCodeMissingField, "%s strategy needs field %s", name, f)
	}

	return nil
}
