package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoshiyanatsu/stock-prediction/internal/domain"
)

func TestPostProcess_NonNegativity(t *testing.T) {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	// Raw output whose inverse transform goes negative
	raw := []Prediction{
		{Date: base, Predicted: -5, Lower: -8, Upper: -1},
		{Date: base.AddDate(0, 0, 1), Predicted: 2, Lower: -3, Upper: 4},
	}

	points := PostProcess(nil, raw)
	require.Len(t, points, 2)
	for _, p := range points {
		assert.GreaterOrEqual(t, p.Predicted, 0.0)
		assert.GreaterOrEqual(t, p.Lower, 0.0)
		assert.GreaterOrEqual(t, p.Upper, 0.0)
	}
}

func TestPostProcess_JoinsActualsByExactDate(t *testing.T) {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	actuals := []domain.PricePoint{
		{Date: base, Close: 150.5},
		{Date: base.AddDate(0, 0, 1), Close: 151.2},
	}
	raw := []Prediction{
		{Date: base, Predicted: 5, Lower: 4.9, Upper: 5.1},
		{Date: base.AddDate(0, 0, 1), Predicted: 5, Lower: 4.9, Upper: 5.1},
		{Date: base.AddDate(0, 0, 2), Predicted: 5, Lower: 4.9, Upper: 5.1},
	}

	points := PostProcess(actuals, raw)
	require.Len(t, points, 3)

	require.NotNil(t, points[0].Actual)
	assert.Equal(t, 150.5, *points[0].Actual)
	require.NotNil(t, points[1].Actual)
	assert.Equal(t, 151.2, *points[1].Actual)

	// Future date has no actual
	assert.Nil(t, points[2].Actual)
}

func TestPostProcess_FlagsForecastRegion(t *testing.T) {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	actuals := []domain.PricePoint{
		{Date: base, Close: 100},
		{Date: base.AddDate(0, 0, 1), Close: 101},
	}
	raw := []Prediction{
		{Date: base, Predicted: 4.6},
		{Date: base.AddDate(0, 0, 1), Predicted: 4.6},
		{Date: base.AddDate(0, 0, 2), Predicted: 4.6},
	}

	points := PostProcess(actuals, raw)
	assert.False(t, points[0].IsForecast)
	assert.False(t, points[1].IsForecast)
	assert.True(t, points[2].IsForecast)
}

func TestPostProcess_ToleratesBoundInversionAfterClipping(t *testing.T) {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	// Lower destabilizes above zero while the point forecast clips to 0;
	// the inversion is preserved as-is.
	raw := []Prediction{
		{Date: base, Predicted: -2, Lower: 0.5, Upper: -1},
	}

	points := PostProcess(nil, raw)
	require.Len(t, points, 1)
	assert.Equal(t, 0.0, points[0].Predicted)
	assert.InDelta(t, math.Expm1(0.5), points[0].Lower, 1e-12)
	assert.Equal(t, 0.0, points[0].Upper)
	assert.Greater(t, points[0].Lower, points[0].Predicted)
}
