package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// SMASeries calculates a simple moving average over closing prices.
// The first length-1 positions have no defined value and are returned
// as NaN so callers can skip the warmup region.
func SMASeries(closes []float64, length int) []float64 {
	if len(closes) < length || length <= 0 {
		return nil
	}
	sma := talib.Sma(closes, length)
	for i := 0; i < length-1 && i < len(sma); i++ {
		sma[i] = math.NaN()
	}
	return sma
}

// CalculateEMA calculates the current Exponential Moving Average
//
// Returns nil if there is no data. Falls back to a simple mean when
// the series is shorter than the requested period.
func CalculateEMA(closes []float64, length int) *float64 {
	if len(closes) == 0 {
		return nil
	}

	if len(closes) < length {
		sma := Mean(closes)
		return &sma
	}

	ema := talib.Ema(closes, length)
	if len(ema) > 0 && !isNaN(ema[len(ema)-1]) {
		result := ema[len(ema)-1]
		return &result
	}

	return nil
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}
