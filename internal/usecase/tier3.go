package usecase

import (
	"strconv"
	"strings"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
	"github.com/davidromeo/tradeblocks-sub006/internal/services/indicators"
)

// computeTier3 groups one ticker's intraday bars by trading day and derives
// the per-day timing set. Bars must be sorted by date then time.
func computeTier3(ticker string, bars []models.IntradayBar) []models.Tier3Fields {
	if len(bars) == 0 {
		return nil
	}

	var out []models.Tier3Fields
	dayStart := 0
	for i := 1; i <= len(bars); i++ {
		if i < len(bars) && bars[i].Date == bars[dayStart].Date {
			continue
		}
		if f, ok := dayTimingFields(ticker, bars[dayStart:i]); ok {
			out = append(out, f)
		}
		dayStart = i
	}
	return out
}

func dayTimingFields(ticker string, day []models.IntradayBar) (models.Tier3Fields, bool) {
	ib := make([]indicators.Bar, 0, len(day))
	for _, b := range day {
		m, ok := minutesOfDay(b.Time)
		if !ok {
			continue
		}
		ib = append(ib, indicators.Bar{Minutes: m, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close})
	}
	dt, ok := indicators.ComputeDayTiming(ib)
	if !ok {
		return models.Tier3Fields{}, false
	}

	f := models.Tier3Fields{
		Ticker:               ticker,
		Date:                 day[0].Date,
		HighTime:             fptr(dt.HighTime),
		LowTime:              fptr(dt.LowTime),
		HighBeforeLow:        iptr(boolToInt(dt.HighBeforeLow)),
		ReversalType:         dt.ReversalType,
		OpeningDriveStrength: fptr(dt.OpeningDriveStrength),
	}
	if dt.RealizedVolOK {
		f.IntradayRealizedVol = fptr(dt.RealizedVol)
	}
	return f, true
}

// minutesOfDay converts an HH:MM bar time into minutes since midnight.
func minutesOfDay(hhmm string) (int, bool) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
