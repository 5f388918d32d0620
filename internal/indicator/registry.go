package indicator

import (
	"fmt"
	"sort"
	"sync"
)

// IndicatorRegistry maps indicator types to constructors so strategies can
// build fresh, independently configured instances by name.
type IndicatorRegistry interface {
	RegisterIndicator(name IndicatorType, factory func() Indicator) error
	NewIndicator(name IndicatorType, params ...any) (Indicator, error)
	ListIndicators() []IndicatorType
	RemoveIndicator(name IndicatorType)
}

type IndicatorRegistryV1 struct {
	factories map[IndicatorType]func() Indicator
	mu        sync.RWMutex
}

func NewIndicatorRegistry() IndicatorRegistry {
	return &IndicatorRegistryV1{
		factories: make(map[IndicatorType]func() Indicator),
	}
}

// NewDefaultRegistry returns a registry holding every built-in indicator.
func NewDefaultRegistry() IndicatorRegistry {
	r := NewIndicatorRegistry()

	_ = r.RegisterIndicator(IndicatorTypeSMA, NewSMA)
	_ = r.RegisterIndicator(IndicatorTypeEMA, NewEMA)
	_ = r.RegisterIndicator(IndicatorTypeRSI, NewRSI)
	_ = r.RegisterIndicator(IndicatorTypeZScore, NewZScore)

	return r
}

// RegisterIndicator adds a constructor under name.
func (r *IndicatorRegistryV1) RegisterIndicator(name IndicatorType, factory func() Indicator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if factory == nil {
		return fmt.Errorf("RegisterIndicator: factory for %s is nil", name)
	}

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("RegisterIndicator: indicator with name %s already registered", name)
	}

	r.factories[name] = factory

	return nil
}

// NewIndicator builds an indicator registered under name and configures it with params.
// No params keeps the indicator's defaults.
func (r *IndicatorRegistryV1) NewIndicator(name IndicatorType, params ...any) (Indicator, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("NewIndicator: indicator with name %s not found", name)
	}

	ind := factory()

	if len(params) > 0 {
		if err := ind.Config(params...); err != nil {
			return nil, fmt.Errorf("NewIndicator: failed to configure %s: %w", name, err)
		}
	}

	return ind, nil
}

// ListIndicators returns the registered names in sorted order.
func (r *IndicatorRegistryV1) ListIndicators() []IndicatorType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]IndicatorType, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	sort.Slice(names, func(a, b int) bool { return names[a] < names[b] })

	return names
}

// RemoveIndicator removes name from the registry.
func (r *IndicatorRegistryV1) RemoveIndicator(name IndicatorType) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.factories, name)
}
