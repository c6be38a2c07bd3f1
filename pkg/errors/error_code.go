package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 102
	ErrCodeInvalidRate          ErrorCode = 103
	ErrCodeInvalidSignal        ErrorCode = 104
	ErrCodeInsufficientData     ErrorCode = 105
	ErrCodeInvalidVersion       ErrorCode = 106
	ErrCodeMissingParameter     ErrorCode = 107
	ErrCodeSchemaGeneration     ErrorCode = 108

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeEmptyDataset          ErrorCode = 203

	// Indicator errors (300-399)
	ErrCodeIndicatorCalculation ErrorCode = 300
	ErrCodeWindowCapacity       ErrorCode = 301

	// Strategy errors (400-499)
	ErrCodeStrategyConfigError ErrorCode = 400
	ErrCodeUnknownPreset       ErrorCode = 401
	ErrCodeUnknownRuleKind     ErrorCode = 402

	// Backtest errors (500-599)
	ErrCodeBacktestConfigError  ErrorCode = 500
	ErrCodeBacktestInitFailed   ErrorCode = 501
	ErrCodeSignalLengthMismatch ErrorCode = 502
	ErrCodeResultWriteFailed    ErrorCode = 503
	ErrCodeVersionMismatch      ErrorCode = 504

	// Sweep errors (600-699)
	ErrCodeSweepConfigError ErrorCode = 600
	ErrCodeSweepRunFailed   ErrorCode = 601

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidTimespan       ErrorCode = 703
	ErrCodeInvalidProvider       ErrorCode = 704
	ErrCodeStreamFailed          ErrorCode = 705

	// Callback errors (800-899)
	ErrCodeCallbackFailed ErrorCode = 800
)
