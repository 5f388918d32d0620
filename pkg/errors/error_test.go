package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidPriceSeries, "open price must be positive")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidPriceSeries, err.Code)
	suite.Equal("open price must be positive", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeMissingInstrument, "instrument %s missing from field %s", "AAPL", "open")
	suite.Equal(ErrCodeMissingInstrument, err.Code)
	suite.Equal("instrument AAPL missing from field open", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("file does not exist")
	err := Wrap(ErrCodeDataNotFound, "failed to load price series", cause)
	suite.Equal(ErrCodeDataNotFound, err.Code)
	suite.Equal(cause, err.Cause)
	suite.Equal(cause, err.Unwrap())
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("connection refused")
	err := Wrapf(ErrCodeMarketDataFetchFailed, cause, "failed to download %s", "MSFT")
	suite.Equal("failed to download MSFT", err.Message)
	suite.True(Is(err, cause))
}

func (suite *ErrorTestSuite) TestErrorString() {
	suite.Equal("[100] invalid parameter", New(ErrCodeInvalidParameter, "invalid parameter").Error())

	cause := errors.New("underlying error")
	suite.Equal("[200] data not found: underlying error", Wrap(ErrCodeDataNotFound, "data not found", cause).Error())
}

func (suite *ErrorTestSuite) TestUnwrapNil() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Nil(err.Unwrap())
}

func (suite *ErrorTestSuite) TestGetCode() {
	suite.Equal(ErrCodeInvalidParameter, GetCode(New(ErrCodeInvalidParameter, "invalid parameter")))

	// outermost code wins
	inner := New(ErrCodeDataNotFound, "data not found")
	suite.Equal(ErrCodeBacktestInitFailed, GetCode(Wrap(ErrCodeBacktestInitFailed, "init failed", inner)))

	suite.Equal(ErrCodeUnknown, GetCode(errors.New("standard error")))
	suite.Equal(ErrCodeUnknown, GetCode(nil))
}

func (suite *ErrorTestSuite) TestHasCode() {
	err := fmt.Errorf("run failed: %w", New(ErrCodeBacktestAborted, "context cancelled"))
	suite.True(HasCode(err, ErrCodeBacktestAborted))
	suite.False(HasCode(err, ErrCodeDataNotFound))
}

func (suite *ErrorTestSuite) TestAsError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	var coded *Error
	suite.True(As(err, &coded))
	suite.Equal(ErrCodeInvalidParameter, coded.Code)
}

func (suite *ErrorTestSuite) TestErrorCodeValues() {
	suite.Equal(ErrorCode(1), ErrCodeUnknown)
	suite.Equal(ErrorCode(100), ErrCodeInvalidParameter)
	suite.Equal(ErrorCode(200), ErrCodeDataNotFound)
	suite.Equal(ErrorCode(302), ErrCodeIndicatorCalculation)
	suite.Equal(ErrorCode(401), ErrCodeStrategyError)
	suite.Equal(ErrorCode(500), ErrCodePositionAlreadyOpen)
	suite.Equal(ErrorCode(600), ErrCodeBacktestStateNil)
	suite.Equal(ErrorCode(700), ErrCodeMarketDataFetchFailed)
	suite.Equal(ErrorCode(800), ErrCodeCallbackFailed)
}

func (suite *ErrorTestSuite) TestStrategyErrorLength() {
	err := NewStrategyError("zscore", 7, 3, 2)
	suite.Equal("zscore", err.Strategy)
	suite.Equal(7, err.Period)
	suite.Equal(3, err.Expected)
	suite.Equal(2, err.Actual)
	suite.Nil(err.Unwrap())
	suite.Equal(`strategy "zscore" must return an alpha vector of length 3, got 2 at period 7`, err.Error())
}

func (suite *ErrorTestSuite) TestStrategyErrorWrapped() {
	cause := errors.New("division by zero")
	err := WrapStrategyError("momentum", 4, cause)
	suite.Equal(4, err.Period)
	suite.Equal(cause, err.Unwrap())
	suite.True(Is(err, cause))
	suite.Equal(`strategy "momentum" failed at period 4: division by zero`, err.Error())
}

func (suite *ErrorTestSuite) TestIsStrategyError() {
	suite.True(IsStrategyError(NewStrategyError("s", 1, 2, 0)))
	suite.True(IsStrategyError(fmt.Errorf("backtest halted: %w", NewStrategyError("s", 1, 2, 0))))
	suite.False(IsStrategyError(New(ErrCodeStrategyError, "not typed")))
	suite.False(IsStrategyError(errors.New("standard error")))
	suite.False(IsStrategyError(nil))

	suite.Equal(ErrCodeStrategyError, GetCode(NewStrategyError("s", 1, 2, 0)))
}

func (suite *ErrorTestSuite) TestInsufficientDataError() {
	err := NewInsufficientDataError(20, 5, "AAPL", "insufficient data for calculation")
	suite.Equal("insufficient data for calculation", err.Error())
	suite.Equal(20, err.Required)
	suite.Equal(5, err.Actual)
	suite.Equal("AAPL", err.Symbol)
}

func (suite *ErrorTestSuite) TestNewInsufficientDataErrorf() {
	err := NewInsufficientDataErrorf(20, 5, "", "insufficient data for %s: required %d, got %d", "zscore", 20, 5)
	suite.Equal("insufficient data for zscore: required 20, got 5", err.Message)
	suite.Equal("", err.Symbol)
}

func (suite *ErrorTestSuite) TestIsInsufficientDataError() {
	suite.True(IsInsufficientDataError(NewInsufficientDataError(14, 10, "SPY", "insufficient data")))
	suite.True(IsInsufficientDataError(fmt.Errorf("sma: %w", NewInsufficientDataError(14, 10, "SPY", "insufficient data"))))
	suite.False(IsInsufficientDataError(errors.New("standard error")))
	suite.False(IsInsufficientDataError(New(ErrCodeInvalidParameter, "invalid parameter")))
	suite.False(IsInsufficientDataError(nil))
}
