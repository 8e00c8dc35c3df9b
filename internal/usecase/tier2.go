package usecase

import (
	"math"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
	"github.com/davidromeo/tradeblocks-sub006/internal/services/indicators"
)

const vixPercentileWindow = 252

// computeTier2 derives the global volatility-context set. Bars must be
// sorted by date ascending. rthOpens carries a per-date regular-hours open
// derived from intraday bars; when a date has none, the raw daily open is
// the transparent fallback.
func computeTier2(bars []models.ContextBar, rthOpens map[string]float64) []models.Tier2Fields {
	n := len(bars)
	if n == 0 {
		return nil
	}

	closes := make([]float64, n)
	for i, b := range bars {
		closes[i] = nanIfNil(b.VIXClose)
	}
	percentile := indicators.RollingPercentile(closes, vixPercentileWindow)

	out := make([]models.Tier2Fields, 0, n)
	for i, b := range bars {
		f := models.Tier2Fields{Date: b.Date}

		var prior *models.ContextBar
		if i > 0 {
			prior = &bars[i-1]
		}

		f.VIXChangePct = pctOfPrior(b.VIXClose, priorClose(prior, func(p models.ContextBar) *float64 { return p.VIXClose }))
		f.VIXGapPct = pctOfPrior(b.VIXOpen, priorClose(prior, func(p models.ContextBar) *float64 { return p.VIXClose }))
		f.VIXSpikePct = pctOfPrior(b.VIXHigh, b.VIXOpen)
		f.VIX9DChangePct = pctOfPrior(b.VIX9DClose, priorClose(prior, func(p models.ContextBar) *float64 { return p.VIX9DClose }))
		f.VIX3MChangePct = pctOfPrior(b.VIX3MClose, priorClose(prior, func(p models.ContextBar) *float64 { return p.VIX3MClose }))

		if rth, ok := rthOpens[b.Date]; ok {
			f.VIXRTHOpen = fptr(rth)
		} else if b.VIXOpen != nil {
			f.VIXRTHOpen = fptr(*b.VIXOpen)
		}

		f.VIX9DVIXRatio = ratio(b.VIX9DClose, b.VIXClose)
		f.VIXVIX3MRatio = ratio(b.VIXClose, b.VIX3MClose)

		if b.VIXClose != nil {
			f.VolRegime = iptr(indicators.VolRegime(*b.VIXClose))
		}
		if f.VIX9DVIXRatio != nil && f.VIXVIX3MRatio != nil {
			f.TermStructureState = iptr(indicators.TermStructureState(*f.VIX9DVIXRatio, *f.VIXVIX3MRatio))
		}
		if !math.IsNaN(percentile[i]) {
			f.VIXPercentile = fptr(percentile[i])
		}

		out = append(out, f)
	}
	return out
}

func priorClose(prior *models.ContextBar, pick func(models.ContextBar) *float64) *float64 {
	if prior == nil {
		return nil
	}
	return pick(*prior)
}

func pctOfPrior(value, prior *float64) *float64 {
	if value == nil || prior == nil || *prior == 0 {
		return nil
	}
	return fptr((*value / *prior - 1) * 100)
}

func ratio(num, den *float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	return fptr(*num / *den)
}

func nanIfNil(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
