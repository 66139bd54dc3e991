package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoshiyanatsu/stock-prediction/internal/domain"
)

func TestStabilize_RoundTrip(t *testing.T) {
	series := []float64{0, 0.01, 1, 42.5, 185.64, 99999.99}

	stabilized, err := Stabilize(series)
	require.NoError(t, err)

	restored := Destabilize(stabilized)
	require.Len(t, restored, len(series))
	for i := range series {
		assert.InDelta(t, series[i], restored[i], 1e-9*math.Max(1, series[i]))
	}
}

func TestStabilize_RejectsNegative(t *testing.T) {
	_, err := Stabilize([]float64{1, -0.5, 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStabilize_Empty(t *testing.T) {
	out, err := Stabilize(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDestabilize_ClipsNegative(t *testing.T) {
	// expm1 of a large negative value is close to -1; must be clipped to 0
	out := Destabilize([]float64{-10, -0.001, 0, 1})

	assert.Equal(t, 0.0, out[0])
	assert.Equal(t, 0.0, out[1])
	assert.Equal(t, 0.0, out[2])
	assert.InDelta(t, math.E-1, out[3], 1e-9)
}
