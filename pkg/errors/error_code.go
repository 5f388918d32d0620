package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPriceSeries   ErrorCode = 102
	ErrCodeMissingField         ErrorCode = 103
	ErrCodeMissingInstrument    ErrorCode = 104
	ErrCodeDuplicatePeriod      ErrorCode = 105
	ErrCodeInsufficientData     ErrorCode = 106
	ErrCodeInvalidPeriod        ErrorCode = 108
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeInvalidVersion       ErrorCode = 110
	ErrCodeInvalidUniverse      ErrorCode = 111

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeNoDataFound           ErrorCode = 204
	ErrCodeMalformedData         ErrorCode = 205

	// Indicator errors (300-399)
	ErrCodeIndicatorCalculation ErrorCode = 302

	// Strategy errors (400-499)
	ErrCodeStrategyNotLoaded   ErrorCode = 400
	ErrCodeStrategyError       ErrorCode = 401
	ErrCodeUnsupportedStrategy ErrorCode = 403
	ErrCodeVersionMismatch     ErrorCode = 404

	// Trading errors (500-599)
	ErrCodePositionAlreadyOpen ErrorCode = 500
	ErrCodePositionNotFound    ErrorCode = 501
	ErrCodeTradeNotFound       ErrorCode = 502

	// Backtest errors (600-699)
	ErrCodeBacktestStateNil       ErrorCode = 600
	ErrCodeBacktestInitFailed     ErrorCode = 601
	ErrCodeBacktestConfigError    ErrorCode = 602
	ErrCodeBacktestNoPriceSeries  ErrorCode = 603
	ErrCodeBacktestNoStrategy     ErrorCode = 604
	ErrCodeBacktestAborted        ErrorCode = 605
	ErrCodeBacktestNotInitialized ErrorCode = 606
	ErrCodeBacktestWriteFailed    ErrorCode = 607

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidTimespan       ErrorCode = 703
	ErrCodeInvalidProvider       ErrorCode = 704

	// Callback errors (800-899)
	ErrCodeCallbackFailed ErrorCode = 800
)
