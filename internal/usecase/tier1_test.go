package usecase

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
)

// tradingDays generates weekday-only bars with distinct closes.
func tradingDays(n int, start string, price func(i int) float64) []models.DailyBar {
	t, _ := time.Parse("2006-01-02", start)
	out := make([]models.DailyBar, 0, n)
	for len(out) < n {
		if wd := t.Weekday(); wd != time.Saturday && wd != time.Sunday {
			i := len(out)
			p := price(i)
			out = append(out, models.DailyBar{
				Ticker: "SPY",
				Date:   t.Format("2006-01-02"),
				Open:   p * 0.999,
				High:   p * 1.01,
				Low:    p * 0.99,
				Close:  p,
			})
		}
		t = t.AddDate(0, 0, 1)
	}
	return out
}

func TestComputeTier1BasicFields(t *testing.T) {
	bars := tradingDays(10, "2025-06-02", func(i int) float64 { return 100 + float64(i) })
	fields := computeTier1(bars)
	require.Len(t, fields, 10)

	first := fields[0]
	assert.Nil(t, first.PriorClose)
	assert.Nil(t, first.GapPct)
	assert.Nil(t, first.TotalReturnPct)
	assert.Equal(t, 0, first.ConsecutiveDays)
	assert.Equal(t, 2, first.DayOfWeek) // Monday
	assert.Equal(t, 6, first.Month)

	second := fields[1]
	require.NotNil(t, second.PriorClose)
	assert.Equal(t, 100.0, *second.PriorClose)
	require.NotNil(t, second.TotalReturnPct)
	assert.InDelta(t, 1.0, *second.TotalReturnPct, 1e-9)
	assert.Equal(t, 1, second.ConsecutiveDays)

	// Monotonic rises keep extending the streak.
	assert.Equal(t, 9, fields[9].ConsecutiveDays)
}

func TestComputeTier1WarmupFieldsStayNil(t *testing.T) {
	bars := tradingDays(30, "2025-01-02", func(i int) float64 { return 100 + float64(i)*0.3 })
	fields := computeTier1(bars)

	// RSI(14) needs 14 prior changes; SMA50 never warms up in 30 bars.
	assert.Nil(t, fields[5].RSI14)
	assert.NotNil(t, fields[20].RSI14)
	assert.Nil(t, fields[29].PriceVsSMA50Pct)
	assert.Nil(t, fields[10].BBUpper)
	assert.NotNil(t, fields[25].BBUpper)
}

func TestComputeTier1GapFill(t *testing.T) {
	bars := []models.DailyBar{
		{Ticker: "SPY", Date: "2025-06-02", Open: 100, High: 101, Low: 99, Close: 100},
		// Gaps up 2% and trades back down through the prior close.
		{Ticker: "SPY", Date: "2025-06-03", Open: 102, High: 103, Low: 99.5, Close: 101},
		// Gaps up and holds the gap.
		{Ticker: "SPY", Date: "2025-06-04", Open: 103, High: 104, Low: 102, Close: 103.5},
	}
	fields := computeTier1(bars)

	require.NotNil(t, fields[1].GapPct)
	assert.InDelta(t, 2.0, *fields[1].GapPct, 1e-9)
	require.NotNil(t, fields[1].GapFilled)
	assert.Equal(t, 1, *fields[1].GapFilled)
	require.NotNil(t, fields[2].GapFilled)
	assert.Equal(t, 0, *fields[2].GapFilled)
}

func TestComputeTier1OpexFlag(t *testing.T) {
	bars := []models.DailyBar{
		{Ticker: "SPY", Date: "2025-06-19", Open: 1, High: 1, Low: 1, Close: 1},
		{Ticker: "SPY", Date: "2025-06-20", Open: 1, High: 1, Low: 1, Close: 1},
	}
	fields := computeTier1(bars)
	assert.Equal(t, 0, fields[0].IsOpex)
	assert.Equal(t, 1, fields[1].IsOpex)
}

func TestComputeTier1WholeSetPerRow(t *testing.T) {
	bars := tradingDays(300, "2024-01-02", func(i int) float64 {
		return 100 * (1 + 0.001*float64(i%7)) * (1 + float64(i)/1000)
	})
	fields := computeTier1(bars)
	last := fields[len(fields)-1]

	// Deep into the series every derived field is populated.
	for name, got := range map[string]any{
		"prior_close":      last.PriorClose,
		"gap_pct":          last.GapPct,
		"rsi_14":           last.RSI14,
		"atr_pct":          last.ATRPct,
		"ema21":            last.PriceVsEMA21Pct,
		"sma50":            last.PriceVsSMA50Pct,
		"bb_position":      last.BBPosition,
		"realized_vol_5d":  last.RealizedVol5D,
		"realized_vol_20d": last.RealizedVol20D,
		"trend_score":      last.TrendScore,
	} {
		assert.NotNilf(t, got, fmt.Sprintf("field %s", name))
	}
}
