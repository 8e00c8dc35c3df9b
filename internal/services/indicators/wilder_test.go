package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSIMonotonicIncreasing(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rsi := RSI(closes, 14)

	for i := 0; i < 14; i++ {
		assert.True(t, math.IsNaN(rsi[i]), "index %d should be undefined", i)
	}
	for i := 14; i < len(rsi); i++ {
		assert.Equal(t, 100.0, rsi[i], "index %d", i)
	}
}

func TestRSIMonotonicDecreasing(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 200 - float64(i)
	}
	rsi := RSI(closes, 14)

	for i := 14; i < len(rsi); i++ {
		assert.Equal(t, 0.0, rsi[i], "index %d", i)
	}
}

func TestRSIFlatSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 50
	}
	rsi := RSI(closes, 14)
	assert.Equal(t, 50.0, rsi[14])
}

func TestRSIInsufficientData(t *testing.T) {
	rsi := RSI([]float64{1, 2, 3}, 14)
	for _, v := range rsi {
		assert.True(t, math.IsNaN(v))
	}
}

func TestATRSeedIsSimpleAverage(t *testing.T) {
	highs := []float64{0, 12, 13, 14, 15}
	lows := []float64{0, 10, 11, 12, 13}
	closes := []float64{11, 11, 12, 13, 14}
	atr := ATR(highs, lows, closes, 3)

	// TR[1..3] = 2 each (range dominates), seed = 2.
	require.False(t, math.IsNaN(atr[3]))
	assert.InDelta(t, 2.0, atr[3], 1e-9)

	// Recursive step: (2*2 + TR[4]) / 3 with TR[4] = 2.
	assert.InDelta(t, 2.0, atr[4], 1e-9)
}

func TestATRUsesPriorCloseGaps(t *testing.T) {
	// A gap up makes |high - prior close| the dominant TR term.
	highs := []float64{0, 20, 21, 22, 23}
	lows := []float64{0, 19, 20, 21, 22}
	closes := []float64{10, 20, 21, 22, 23}
	atr := ATR(highs, lows, closes, 3)

	// TR[1] = |20-10| = 10, TR[2] = TR[3] = 1 -> seed = 4.
	assert.InDelta(t, 4.0, atr[3], 1e-9)
}
