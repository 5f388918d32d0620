package go_runtime

import (
	"errors"
	"testing"
	"time"

	"github.com/GRTran/backtester/internal/types"
	"github.com/stretchr/testify/suite"
)

type GoRuntimeTestSuite struct {
	suite.Suite
	history *types.PriceSeries
}

func TestGoRuntimeSuite(t *testing.T) {
	suite.Run(t, new(GoRuntimeTestSuite))
}

func (suite *GoRuntimeTestSuite) SetupTest() {
	ps, err := types.NewPriceSeries([]string{"AAA", "BBB"}, []types.Period{{
		Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Values: map[types.Field]map[string]float64{
			types.FieldOpen:     {"AAA": 1, "BBB": 2},
			types.FieldAdjClose: {"AAA": 1, "BBB": 2},
		},
	}})
	suite.Require().NoError(err)
	suite.history = ps
}

func (suite *GoRuntimeTestSuite) TestAlphas() {
	rt := NewGoRuntime("const", func(history *types.PriceSeries, context any) ([]float64, error) {
		suite.Equal("ctx", context)

		return []float64{1, -1}, nil
	})

	suite.Equal("const", rt.Name())
	suite.NoError(rt.Initialize(""))

	alphas, err := rt.Alphas(suite.history, "ctx")
	suite.NoError(err)
	suite.Equal([]float64{1, -1}, alphas)
}

func (suite *GoRuntimeTestSuite) TestAlphasError() {
	cause := errors.New("boom")
	rt := NewGoRuntime("failing", func(*types.PriceSeries, any) ([]float64, error) {
		return nil, cause
	})

	_, err := rt.Alphas(suite.history, nil)
	suite.ErrorIs(err, cause)
}

func (suite *GoRuntimeTestSuite) TestAlphasPanic() {
	rt := NewGoRuntime("panicky", func(*types.PriceSeries, any) ([]float64, error) {
		var xs []float64

		return []float64{xs[3]}, nil
	})

	alphas, err := rt.Alphas(suite.history, nil)
	suite.Error(err)
	suite.Nil(alphas)
	suite.Contains(err.Error(), "panicky panicked")
}

func (suite *GoRuntimeTestSuite) TestNilCallback() {
	rt := NewGoRuntime("empty", nil)

	_, err := rt.Alphas(suite.history, nil)
	suite.Error(err)
}
