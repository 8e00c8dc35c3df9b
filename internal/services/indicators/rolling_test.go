package indicators

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA(t *testing.T) {
	out := SMA([]float64{1, 2, 3, 4, 5}, 3)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-9)
	assert.InDelta(t, 3.0, out[3], 1e-9)
	assert.InDelta(t, 4.0, out[4], 1e-9)
}

func TestEMASeededBySMA(t *testing.T) {
	values := []float64{2, 4, 6, 8}
	out := EMA(values, 3)
	// Seed at index 2 is SMA of the first three values.
	require.InDelta(t, 4.0, out[2], 1e-9)
	// alpha = 2/(3+1) = 0.5
	assert.InDelta(t, 0.5*8+0.5*4, out[3], 1e-9)
}

func TestBollingerPopulationStdDev(t *testing.T) {
	// Window of 4 values with mean 5 and population variance 5.
	closes := []float64{2, 4, 6, 8}
	b := Bollinger(closes, 4, 2)
	sd := math.Sqrt(5.0)
	require.InDelta(t, 5+2*sd, b.Upper[3], 1e-9)
	require.InDelta(t, 5-2*sd, b.Lower[3], 1e-9)
}

func TestBollingerWidthAndPositionBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	closes := make([]float64, 120)
	price := 100.0
	for i := range closes {
		price *= 1 + (rng.Float64()-0.5)*0.04
		closes[i] = price
	}
	b := Bollinger(closes, 20, 2)
	for i := range closes {
		if math.IsNaN(b.Upper[i]) {
			continue
		}
		assert.GreaterOrEqual(t, b.Upper[i]-b.Lower[i], 0.0)
		if b.Upper[i] != b.Lower[i] {
			assert.GreaterOrEqual(t, b.Position[i], 0.0)
			assert.LessOrEqual(t, b.Position[i], 1.0)
		}
	}
}

func TestBollingerZeroWidth(t *testing.T) {
	closes := []float64{5, 5, 5, 5, 5}
	b := Bollinger(closes, 5, 2)
	assert.Equal(t, b.Upper[4], b.Lower[4])
	assert.Equal(t, 0.5, b.Position[4])
}

func TestPctChange(t *testing.T) {
	out := PctChange([]float64{100, 110, 121}, 1)
	assert.True(t, math.IsNaN(out[0]))
	assert.InDelta(t, 10.0, out[1], 1e-9)
	assert.InDelta(t, 10.0, out[2], 1e-9)
}

func TestTrendScoreUptrend(t *testing.T) {
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 100 * math.Pow(1.01, float64(i))
	}
	scores := TrendScore(closes)
	last := scores[len(scores)-1]
	require.True(t, TrendScoreDefined(last))
	assert.Equal(t, 3, last)
}
