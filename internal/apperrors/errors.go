package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPositionNotFound indicates that no position is held for the given ticker.
	ErrPositionNotFound = errors.New("position not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist
	// in the position it was looked up in.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrDividendNotFound indicates that a dividend record with the given ID does not exist.
	ErrDividendNotFound = errors.New("dividend not found")

	// ErrAlertNotFound indicates that a price alert with the given ID does not exist.
	ErrAlertNotFound = errors.New("alert not found")

	// ErrSymbolNotFound indicates that the market-data provider returned nothing for a symbol.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrExchangeRateNotFound indicates that the currency-pair quote needed for a
	// conversion could not be fetched.
	ErrExchangeRateNotFound = errors.New("exchange rate not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidTicker indicates a missing or malformed ticker symbol.
	ErrInvalidTicker = errors.New("ticker is required")

	// ErrInvalidAssetClass indicates an asset class outside the supported set.
	ErrInvalidAssetClass = errors.New("invalid asset class")

	// ErrInvalidTransactionType indicates a transaction type other than BUY or SELL.
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrNonPositiveAmount indicates a quantity or price that is zero or negative.
	ErrNonPositiveAmount = errors.New("amount must be positive")

	// ErrInvalidDate indicates a date that is missing or not in a supported format.
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD or DD/MM/YYYY format")

	// ErrInvalidRange indicates an unsupported history range.
	ErrInvalidRange = errors.New("invalid history range")

	// ErrInvalidPeriod indicates an unsupported evolution period filter.
	ErrInvalidPeriod = errors.New("invalid period")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	ErrFailedToRetrievePositions = errors.New("failed to retrieve positions")
	ErrFailedToAddTransaction    = errors.New("failed to add transaction")
	ErrFailedToRemoveTransaction = errors.New("failed to remove transaction")
	ErrFailedToImportDividends   = errors.New("failed to import dividends")
	ErrFailedToRetrieveDividends = errors.New("failed to retrieve dividends")
	ErrFailedToRetrieveHistory   = errors.New("failed to retrieve price history")
	ErrFailedToRetrieveAlerts    = errors.New("failed to retrieve alerts")
	ErrFailedToGetVersionInfo    = errors.New("failed to get version information")
)
