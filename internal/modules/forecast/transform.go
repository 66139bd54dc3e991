package forecast

import (
	"fmt"
	"math"

	"github.com/hoshiyanatsu/stock-prediction/internal/domain"
)

// Stabilize applies log1p element-wise to a non-negative price series.
// Prices range over orders of magnitude across a 5-year window and
// across securities; modeling the log-transformed series tempers the
// additive-trend assumption so the model is less prone to negative
// forecasts.
func Stabilize(values []float64) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		if v < 0 {
			return nil, fmt.Errorf("%w: negative value %g at index %d", domain.ErrInvalidInput, v, i)
		}
		out[i] = math.Log1p(v)
	}
	return out, nil
}

// Destabilize inverts Stabilize with expm1 and clips the result to
// [0, inf). The clip is mandatory: the model's uncertainty band can
// emit transform-space values whose inverse is a small negative real
// price.
func Destabilize(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Max(0, math.Expm1(v))
	}
	return out
}
