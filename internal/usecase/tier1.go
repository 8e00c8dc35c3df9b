package usecase

import (
	"math"
	"time"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
	"github.com/davidromeo/tradeblocks-sub006/internal/services/indicators"
)

const (
	rsiPeriod        = 14
	atrPeriod        = 14
	emaWindow        = 21
	smaWindow        = 50
	bbWindow         = 20
	bbStdDevs        = 2.0
	realizedVolShort = 5
	realizedVolLong  = 20
)

// computeTier1 derives the full daily indicator set for one ticker's bars,
// which must be sorted by date ascending. Indicators that have not warmed up
// yet stay nil on their rows.
func computeTier1(bars []models.DailyBar) []models.Tier1Fields {
	n := len(bars)
	if n == 0 {
		return nil
	}

	opens := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i, b := range bars {
		opens[i] = b.Open
		highs[i] = b.High
		lows[i] = b.Low
		closes[i] = b.Close
	}

	rsi := indicators.RSI(closes, rsiPeriod)
	atr := indicators.ATR(highs, lows, closes, atrPeriod)
	ema21 := indicators.EMA(closes, emaWindow)
	sma50 := indicators.SMA(closes, smaWindow)
	bb := indicators.Bollinger(closes, bbWindow, bbStdDevs)
	ret5 := indicators.PctChange(closes, realizedVolShort)
	ret20 := indicators.PctChange(closes, realizedVolLong)
	trend := indicators.TrendScore(closes)

	logRets := indicators.LogReturns(closes)
	rv5 := indicators.RealizedVol(logRets, realizedVolShort)
	rv20 := indicators.RealizedVol(logRets, realizedVolLong)

	// Daily total returns feed both the streak counter and prev_return_pct.
	totalRets := make([]float64, n)
	totalRets[0] = math.NaN()
	for i := 1; i < n; i++ {
		if closes[i-1] == 0 {
			totalRets[i] = math.NaN()
			continue
		}
		totalRets[i] = (closes[i]/closes[i-1] - 1) * 100
	}
	streaks := indicators.ConsecutiveDays(totalRets)

	out := make([]models.Tier1Fields, 0, n)
	for i, b := range bars {
		f := models.Tier1Fields{Ticker: b.Ticker, Date: b.Date}

		if t, err := time.Parse("2006-01-02", b.Date); err == nil {
			f.DayOfWeek = indicators.DayOfWeek(t)
			f.Month = int(t.Month())
			f.IsOpex = boolToInt(indicators.IsOpex(t))
		}

		if opens[i] != 0 {
			f.IntradayRangePct = fptr((highs[i] - lows[i]) / opens[i] * 100)
			f.IntradayReturnPct = fptr((closes[i]/opens[i] - 1) * 100)
		}
		if r := highs[i] - lows[i]; r > 0 {
			f.ClosePositionInRange = fptr((closes[i] - lows[i]) / r)
		} else {
			f.ClosePositionInRange = fptr(0.5)
		}

		if i > 0 {
			f.PriorClose = fptr(closes[i-1])
			if closes[i-1] != 0 {
				gap := (opens[i]/closes[i-1] - 1) * 100
				f.GapPct = fptr(gap)
				f.GapFilled = iptr(boolToInt(indicators.GapFilled(gap, highs[i], lows[i], closes[i-1])))
			}
			f.PrevReturnPct = definedPtr(totalRets[i-1])
		}
		f.TotalReturnPct = definedPtr(totalRets[i])
		f.ConsecutiveDays = streaks[i]

		f.Return5D = definedPtr(ret5[i])
		f.Return20D = definedPtr(ret20[i])
		f.RSI14 = definedPtr(rsi[i])
		if !math.IsNaN(atr[i]) && closes[i] != 0 {
			f.ATRPct = fptr(atr[i] / closes[i] * 100)
		}
		if !math.IsNaN(ema21[i]) && ema21[i] != 0 {
			f.PriceVsEMA21Pct = fptr((closes[i]/ema21[i] - 1) * 100)
		}
		if !math.IsNaN(sma50[i]) && sma50[i] != 0 {
			f.PriceVsSMA50Pct = fptr((closes[i]/sma50[i] - 1) * 100)
		}
		f.BBUpper = definedPtr(bb.Upper[i])
		f.BBLower = definedPtr(bb.Lower[i])
		f.BBPosition = definedPtr(bb.Position[i])
		f.RealizedVol5D = definedPtr(rv5[i])
		f.RealizedVol20D = definedPtr(rv20[i])
		if indicators.TrendScoreDefined(trend[i]) {
			f.TrendScore = iptr(trend[i])
		}

		out = append(out, f)
	}
	return out
}

func fptr(v float64) *float64 { return &v }

func iptr(v int) *int { return &v }

// definedPtr converts the NaN-means-undefined convention of the indicator
// kernels into a nullable column value.
func definedPtr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
