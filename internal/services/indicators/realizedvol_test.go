package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogReturns(t *testing.T) {
	out := LogReturns([]float64{100, 110, 99})
	assert.True(t, math.IsNaN(out[0]))
	assert.InDelta(t, math.Log(1.1), out[1], 1e-12)
	assert.InDelta(t, math.Log(0.9), out[2], 1e-12)
}

func TestRealizedVolAlternatingReturns(t *testing.T) {
	rets := []float64{0.01, -0.01, 0.01, -0.01, 0.01}
	out := RealizedVol(rets, 2)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	// Each window {+-0.01} has mean 0 and population stddev 0.01.
	want := 0.01 * math.Sqrt(252) * 100
	for i := 2; i < len(rets); i++ {
		assert.InDelta(t, want, out[i], 1e-9)
	}
}

func TestRealizedVolSkipsWindowsWithUndefinedReturns(t *testing.T) {
	rets := LogReturns([]float64{100, 101, 102, 103})
	out := RealizedVol(rets, 3)
	// Index 3 is the first window clear of the leading undefined return.
	assert.True(t, math.IsNaN(out[2]))
	assert.False(t, math.IsNaN(out[3]))
}

func TestRealizedVolConstantSeries(t *testing.T) {
	rets := LogReturns([]float64{50, 50, 50, 50, 50, 50})
	out := RealizedVol(rets, 5)
	require.False(t, math.IsNaN(out[5]))
	assert.InDelta(t, 0.0, out[5], 1e-12)
}

func TestIntradayRealizedVolNeedsEnoughBars(t *testing.T) {
	_, ok := IntradayRealizedVol([]float64{100, 101})
	assert.False(t, ok)

	v, ok := IntradayRealizedVol([]float64{100, 101, 100.5, 102})
	require.True(t, ok)
	assert.Greater(t, v, 0.0)
}

func TestIntradayRealizedVolScalesByObservedBars(t *testing.T) {
	closes := []float64{100, 101, 100, 101, 100}
	rets := make([]float64, 0, 4)
	for i := 1; i < len(closes); i++ {
		rets = append(rets, math.Log(closes[i]/closes[i-1]))
	}
	sd, ok := popStdDevSlice(rets)
	require.True(t, ok)
	want := sd * math.Sqrt(float64(len(rets))*252) * 100

	got, ok := IntradayRealizedVol(closes)
	require.True(t, ok)
	assert.InDelta(t, want, got, 1e-9)
}
