package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
)

func ctxBar(date string, vixOpen, vixClose, vix9dClose, vix3mClose *float64) models.ContextBar {
	return models.ContextBar{
		Date:       date,
		VIXOpen:    vixOpen,
		VIXClose:   vixClose,
		VIX9DClose: vix9dClose,
		VIX3MClose: vix3mClose,
	}
}

func TestComputeTier2ChangesAndRatios(t *testing.T) {
	bars := []models.ContextBar{
		ctxBar("2025-06-02", fptr(14.0), fptr(15.0), fptr(14.0), fptr(16.5)),
		ctxBar("2025-06-03", fptr(15.3), fptr(16.5), fptr(15.8), fptr(17.0)),
	}
	fields := computeTier2(bars, nil)
	require.Len(t, fields, 2)

	first := fields[0]
	assert.Nil(t, first.VIXChangePct)
	assert.Nil(t, first.VIXGapPct)
	require.NotNil(t, first.VIX9DVIXRatio)
	assert.InDelta(t, 14.0/15.0, *first.VIX9DVIXRatio, 1e-9)
	require.NotNil(t, first.VolRegime)
	assert.Equal(t, 2, *first.VolRegime)

	second := fields[1]
	require.NotNil(t, second.VIXChangePct)
	assert.InDelta(t, 10.0, *second.VIXChangePct, 1e-9)
	require.NotNil(t, second.VIXGapPct)
	assert.InDelta(t, 2.0, *second.VIXGapPct, 1e-9)
}

func TestComputeTier2SpikeUsesSameDayOpen(t *testing.T) {
	bar := ctxBar("2025-06-02", fptr(14.0), fptr(15.0), nil, nil)
	bar.VIXHigh = fptr(16.1)
	fields := computeTier2([]models.ContextBar{bar}, nil)
	require.NotNil(t, fields[0].VIXSpikePct)
	assert.InDelta(t, (16.1-14.0)/14.0*100, *fields[0].VIXSpikePct, 1e-9)

	// Without a same-day open the spike stays unset, even when the prior
	// close would be available.
	bars := []models.ContextBar{
		ctxBar("2025-06-02", fptr(14.0), fptr(15.0), nil, nil),
		ctxBar("2025-06-03", nil, fptr(16.0), nil, nil),
	}
	bars[1].VIXHigh = fptr(17.0)
	fields = computeTier2(bars, nil)
	assert.Nil(t, fields[1].VIXSpikePct)
}

func TestComputeTier2TermStructure(t *testing.T) {
	// Contango: 9D below VIX below 3M on both ratios.
	bars := []models.ContextBar{
		ctxBar("2025-06-02", nil, fptr(15.0), fptr(14.0), fptr(17.0)),
	}
	fields := computeTier2(bars, nil)
	require.NotNil(t, fields[0].TermStructureState)
	assert.Equal(t, 1, *fields[0].TermStructureState)

	// Backwardation: short maturities above longer ones.
	bars = []models.ContextBar{
		ctxBar("2025-06-02", nil, fptr(25.0), fptr(27.0), fptr(22.0)),
	}
	fields = computeTier2(bars, nil)
	require.NotNil(t, fields[0].TermStructureState)
	assert.Equal(t, -1, *fields[0].TermStructureState)
}

func TestComputeTier2RTHOpenPrefersIntradayDerived(t *testing.T) {
	bars := []models.ContextBar{
		ctxBar("2025-06-02", fptr(14.0), fptr(15.0), nil, nil),
		ctxBar("2025-06-03", fptr(15.3), fptr(16.0), nil, nil),
	}
	fields := computeTier2(bars, map[string]float64{"2025-06-02": 14.4})

	require.NotNil(t, fields[0].VIXRTHOpen)
	assert.Equal(t, 14.4, *fields[0].VIXRTHOpen)
	// Transparent fallback to the raw daily open.
	require.NotNil(t, fields[1].VIXRTHOpen)
	assert.Equal(t, 15.3, *fields[1].VIXRTHOpen)
}

func TestComputeTier2MissingInputsStayNil(t *testing.T) {
	bars := []models.ContextBar{
		ctxBar("2025-06-02", nil, nil, fptr(14.0), nil),
	}
	fields := computeTier2(bars, nil)

	f := fields[0]
	assert.Nil(t, f.VIXChangePct)
	assert.Nil(t, f.VIX9DVIXRatio)
	assert.Nil(t, f.VolRegime)
	assert.Nil(t, f.TermStructureState)
	assert.Nil(t, f.VIXRTHOpen)
	assert.Nil(t, f.VIXPercentile)
}

func TestComputeTier3GroupsByDay(t *testing.T) {
	bars := []models.IntradayBar{
		{Ticker: "SPY", Date: "2025-06-02", Time: "09:30", Open: 100, High: 101, Low: 99, Close: 100.5},
		{Ticker: "SPY", Date: "2025-06-02", Time: "10:00", Open: 100.5, High: 103, Low: 100, Close: 102},
		{Ticker: "SPY", Date: "2025-06-02", Time: "14:00", Open: 102, High: 102.5, Low: 98, Close: 99},
		{Ticker: "SPY", Date: "2025-06-03", Time: "09:30", Open: 99, High: 100, Low: 98.5, Close: 99.5},
		{Ticker: "SPY", Date: "2025-06-03", Time: "10:00", Open: 99.5, High: 99.8, Low: 99, Close: 99.2},
		{Ticker: "SPY", Date: "2025-06-03", Time: "14:30", Open: 99.2, High: 104, Low: 99.1, Close: 103.8},
	}
	fields := computeTier3("SPY", bars)
	require.Len(t, fields, 2)

	first := fields[0]
	assert.Equal(t, "2025-06-02", first.Date)
	require.NotNil(t, first.HighTime)
	assert.InDelta(t, 10.0, *first.HighTime, 1e-9)
	require.NotNil(t, first.HighBeforeLow)
	assert.Equal(t, 1, *first.HighBeforeLow)
	assert.Equal(t, 1, first.ReversalType)

	second := fields[1]
	assert.Equal(t, "2025-06-03", second.Date)
	assert.Equal(t, -1, second.ReversalType)
	require.NotNil(t, second.IntradayRealizedVol)
	assert.Greater(t, *second.IntradayRealizedVol, 0.0)
}
