// Package domain contains the core entities shared across modules.
package domain

import "time"

// PricePoint is a single daily closing price for a security.
// Sequences of PricePoints are chronological with unique dates.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// ForecastPoint is a single forecasted value in real price space.
// Actual is set only for dates inside the historical range; future
// dates carry nil.
//
// After post-processing all three values are clipped to be >= 0.
// Bound inversion caused by independent clipping is tolerated.
type ForecastPoint struct {
	Date       time.Time `json:"date"`
	Predicted  float64   `json:"predicted"`
	Lower      float64   `json:"lower"`
	Upper      float64   `json:"upper"`
	Actual     *float64  `json:"actual,omitempty"`
	IsForecast bool      `json:"is_forecast"` // true for dates after the last actual date
}

// CheckpointEntry is the forecast summary at one fixed future horizon.
type CheckpointEntry struct {
	Label          string  `json:"label"`     // e.g. "1 month"
	OffsetDays     int     `json:"offset_days"`
	Date           string  `json:"date"`      // YYYY-MM-DD
	PredictedPrice float64 `json:"predicted_price"`
	ChangeRatePct  float64 `json:"change_rate_pct"`
	UpperBound     float64 `json:"upper_bound"`
	LowerBound     float64 `json:"lower_bound"`
}

// Security holds the cached identity of a symbol as reported by the
// market-data provider.
type Security struct {
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	LastUpdated time.Time `json:"last_updated"`
}
