package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolRegimeBandsRightClosed(t *testing.T) {
	cases := map[float64]int{
		8:    1,
		12:   1,
		12.1: 2,
		15:   2,
		18:   3,
		20:   3,
		25:   4,
		30:   5,
		35:   5,
		35.1: 6,
		80:   6,
	}
	for v, want := range cases {
		assert.Equalf(t, want, VolRegime(v), "close %v", v)
	}
}

func TestTermStructureState(t *testing.T) {
	assert.Equal(t, 1, TermStructureState(0.95, 0.97))   // contango
	assert.Equal(t, -1, TermStructureState(1.05, 1.03))  // backwardation
	assert.Equal(t, 0, TermStructureState(0.95, 1.05))   // mixed
	assert.Equal(t, 0, TermStructureState(1.0, 1.0))     // flat
	assert.Equal(t, 0, TermStructureState(0.995, 0.995)) // inside the tolerance band
}

func TestRollingPercentileMinObservations(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(i)
	}
	out := RollingPercentile(values, 252)
	for i := 0; i < 19; i++ {
		assert.True(t, math.IsNaN(out[i]))
	}
	// At index 19 there are 20 observations, 19 strictly lower.
	require.False(t, math.IsNaN(out[19]))
	assert.InDelta(t, 95.0, out[19], 1e-9)
	assert.InDelta(t, float64(29)/30*100, out[29], 1e-9)
}

func TestRollingPercentileStrictlyLower(t *testing.T) {
	values := make([]float64, 25)
	for i := range values {
		values[i] = 17.5
	}
	out := RollingPercentile(values, 252)
	// Ties never count as lower.
	assert.InDelta(t, 0.0, out[24], 1e-9)
}

func TestRollingPercentileWindowBound(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = float64(i)
	}
	out := RollingPercentile(values, 20)
	// Only the trailing 20 values rank; the current value tops its window.
	assert.InDelta(t, float64(19)/20*100, out[59], 1e-9)
}
