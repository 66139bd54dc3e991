package domain

import "errors"

// Error taxonomy for a forecast run. All errors are terminal for the
// current invocation: there are no retries and no partial results.
var (
	// ErrInvalidInput means the request was rejected before any external
	// call was attempted (blank symbol, negative price series, zero
	// reference price).
	ErrInvalidInput = errors.New("invalid input")

	// ErrDataUnavailable means the market-data provider returned no data
	// for the symbol. Surfaced to users as "symbol not found".
	ErrDataUnavailable = errors.New("symbol not found")

	// ErrForecast means the model fit or predict step failed or returned
	// degenerate output. Surfaced to users as "forecasting failed".
	ErrForecast = errors.New("forecasting failed")
)
