// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters, malformed price series, missing fields
//   - Data/Resource errors (200-299): Data not found, query failures, unavailable resources
//   - Indicator errors (300-399): Indicator calculation errors
//   - Strategy errors (400-499): Strategy loading and strategy output errors
//   - Trading errors (500-599): Position book and trade log errors
//   - Backtest errors (600-699): Backtesting engine and state errors
//   - Market data errors (700-799): Market data fetching and parsing errors
//   - Callback errors (800-899): Lifecycle callback failures
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeQueryFailed, "failed to execute query", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeDataNotFound) { ... }
//
//	// Check for a strategy contract violation
//	if errors.IsStrategyError(err) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// A *StrategyError reports ErrCodeStrategyError.
// Returns ErrCodeUnknown for any other error.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	var strategyErr *StrategyError
	if errors.As(err, &strategyErr) {
		return ErrCodeStrategyError
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// StrategyError is returned when a strategy callback violates its output contract:
// it returned an error, or an alpha vector whose length differs from the instrument count.
// The run halts at Period.
type StrategyError struct {
	Strategy string // Strategy name
	Period   int    // Period index at which the callback was invoked
	Expected int    // Instrument count
	Actual   int    // Length of the returned alpha vector
	Message  string // Human-readable message
	Cause    error  // Error returned by the callback, if any
}

// NewStrategyError creates a StrategyError for a wrongly shaped alpha vector.
func NewStrategyError(strategy string, period, expected, actual int) *StrategyError {
	return &StrategyError{
		Strategy: strategy,
		Period:   period,
		Expected: expected,
		Actual:   actual,
		Message: fmt.Sprintf("strategy %q must return an alpha vector of length %d, got %d at period %d",
			strategy, expected, actual, period),
	}
}

// WrapStrategyError creates a StrategyError for a callback that failed.
func WrapStrategyError(strategy string, period int, cause error) *StrategyError {
	return &StrategyError{
		Strategy: strategy,
		Period:   period,
		Message:  fmt.Sprintf("strategy %q failed at period %d", strategy, period),
		Cause:    cause,
	}
}

// Error implements the error interface.
func (e *StrategyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

// Unwrap returns the error returned by the callback.
func (e *StrategyError) Unwrap() error {
	return e.Cause
}

// IsStrategyError checks if an error is a StrategyError.
// It uses errors.As to check the error chain.
func IsStrategyError(err error) bool {
	var strategyErr *StrategyError

	return errors.As(err, &strategyErr)
}

// InsufficientDataError represents an error when there is not enough data
// for a calculation (e.g., an indicator requiring a minimum period).
type InsufficientDataError struct {
	Required int    // Minimum data points required
	Actual   int    // Actual data points available
	Symbol   string // Optional: symbol context
	Message  string // Human-readable message
}

// NewInsufficientDataError creates a new InsufficientDataError.
func NewInsufficientDataError(required, actual int, symbol, message string) *InsufficientDataError {
	return &InsufficientDataError{
		Required: required,
		Actual:   actual,
		Symbol:   symbol,
		Message:  message,
	}
}

// NewInsufficientDataErrorf creates a new InsufficientDataError with a formatted message.
func NewInsufficientDataErrorf(required, actual int, symbol, format string, args ...any) *InsufficientDataError {
	return &InsufficientDataError{
		Required: required,
		Actual:   actual,
		Symbol:   symbol,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *InsufficientDataError) Error() string {
	return e.Message
}

// IsInsufficientDataError checks if an error is an InsufficientDataError.
func IsInsufficientDataError(err error) bool {
	var insufficientErr *InsufficientDataError

	return errors.As(err, &insufficientErr)
}
