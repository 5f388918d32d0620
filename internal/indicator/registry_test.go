package indicator

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type mockIndicator struct {
	name  IndicatorType
	value float64
}

func (m *mockIndicator) Name() IndicatorType {
	return m.name
}

func (m *mockIndicator) RawValue(values []float64) (float64, error) {
	return m.value, nil
}

func (m *mockIndicator) Config(params ...any) error {
	if len(params) > 0 {
		if v, ok := params[0].(float64); ok {
			m.value = v
		}
	}

	return nil
}

type RegistryTestSuite struct {
	suite.Suite
	registry IndicatorRegistry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) SetupTest() {
	suite.registry = NewIndicatorRegistry()
}

func (suite *RegistryTestSuite) TestRegisterAndCreate() {
	err := suite.registry.RegisterIndicator("mock", func() Indicator { return &mockIndicator{name: "mock"} })
	suite.Require().NoError(err)

	err = suite.registry.RegisterIndicator("mock", func() Indicator { return &mockIndicator{name: "mock"} })
	suite.Error(err)
	suite.Contains(err.Error(), "already registered")

	suite.Error(suite.registry.RegisterIndicator("nil", nil))

	ind, err := suite.registry.NewIndicator("mock", 1.5)
	suite.Require().NoError(err)

	value, err := ind.RawValue(nil)
	suite.NoError(err)
	suite.Equal(1.5, value)

	// every call returns an independent instance
	other, err := suite.registry.NewIndicator("mock")
	suite.Require().NoError(err)
	suite.NotSame(ind, other)
}

func (suite *RegistryTestSuite) TestNotFound() {
	_, err := suite.registry.NewIndicator("missing")
	suite.Error(err)
	suite.Contains(err.Error(), "not found")
}

func (suite *RegistryTestSuite) TestConfigError() {
	registry := NewDefaultRegistry()

	_, err := registry.NewIndicator(IndicatorTypeSMA, "bad")
	suite.Error(err)
}

func (suite *RegistryTestSuite) TestDefaultRegistry() {
	registry := NewDefaultRegistry()

	suite.Equal([]IndicatorType{IndicatorTypeEMA, IndicatorTypeRSI, IndicatorTypeSMA, IndicatorTypeZScore}, registry.ListIndicators())

	registry.RemoveIndicator(IndicatorTypeRSI)
	suite.Len(registry.ListIndicators(), 3)

	_, err := registry.NewIndicator(IndicatorTypeRSI)
	suite.Error(err)
}

func (suite *RegistryTestSuite) TestConcurrentAccess() {
	registry := NewDefaultRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			ind, err := registry.NewIndicator(IndicatorTypeSMA, 3)
			suite.NoError(err)

			value, err := ind.RawValue([]float64{3, 3, 3})
			suite.NoError(err)
			suite.Equal(float64(3), value)
		}()
	}

	wg.Wait()
}
