package indicators

// Bar is one intraday OHLC bar positioned by minutes since midnight,
// exchange time.
type Bar struct {
	Minutes int
	Open    float64
	High    float64
	Low     float64
	Close   float64
}

// noonMinutes splits the session into morning and afternoon for the
// reversal classification.
const noonMinutes = 12 * 60

// openingDriveMinutes is the width of the opening window measured from the
// first bar of the day.
const openingDriveMinutes = 30

// DayTiming is the per-day intraday timing stats set.
type DayTiming struct {
	HighTime             float64 // decimal hours
	LowTime              float64
	HighBeforeLow        bool
	ReversalType         int // +1 morning high / afternoon low, -1 the mirror, 0 otherwise
	OpeningDriveStrength float64
	RealizedVol          float64
	RealizedVolOK        bool
}

// ComputeDayTiming derives the timing stats for one trading day from its
// bars, which must be sorted by time ascending.
func ComputeDayTiming(bars []Bar) (DayTiming, bool) {
	if len(bars) == 0 {
		return DayTiming{}, false
	}

	hiIdx, loIdx := 0, 0
	for i, b := range bars {
		if b.High > bars[hiIdx].High {
			hiIdx = i
		}
		if b.Low < bars[loIdx].Low {
			loIdx = i
		}
	}

	var t DayTiming
	t.HighTime = float64(bars[hiIdx].Minutes) / 60
	t.LowTime = float64(bars[loIdx].Minutes) / 60
	t.HighBeforeLow = bars[hiIdx].Minutes < bars[loIdx].Minutes

	hiMorning := bars[hiIdx].Minutes < noonMinutes
	loMorning := bars[loIdx].Minutes < noonMinutes
	switch {
	case hiMorning && !loMorning:
		t.ReversalType = 1
	case loMorning && !hiMorning:
		t.ReversalType = -1
	}

	t.OpeningDriveStrength = openingDrive(bars)

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	t.RealizedVol, t.RealizedVolOK = IntradayRealizedVol(closes)

	return t, true
}

func openingDrive(bars []Bar) float64 {
	dayHigh, dayLow := bars[0].High, bars[0].Low
	for _, b := range bars[1:] {
		if b.High > dayHigh {
			dayHigh = b.High
		}
		if b.Low < dayLow {
			dayLow = b.Low
		}
	}
	dayRange := dayHigh - dayLow
	if dayRange == 0 {
		return 0
	}

	cutoff := bars[0].Minutes + openingDriveMinutes
	openHigh, openLow := bars[0].High, bars[0].Low
	for _, b := range bars[1:] {
		if b.Minutes >= cutoff {
			break
		}
		if b.High > openHigh {
			openHigh = b.High
		}
		if b.Low < openLow {
			openLow = b.Low
		}
	}
	return (openHigh - openLow) / dayRange
}
