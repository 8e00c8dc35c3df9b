package indicators

import "math"

// tradingDaysPerYear is the annualization base for daily realized volatility.
const tradingDaysPerYear = 252

// LogReturns computes r_t = ln(C_t / C_{t-1}); result[i] aligns with
// closes[i], index 0 is NaN.
func LogReturns(closes []float64) []float64 {
	out := nanSlice(len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			continue
		}
		out[i] = math.Log(closes[i] / closes[i-1])
	}
	return out
}

// RealizedVol computes annualized realized volatility in percent over a
// rolling window of log returns: population stddev * sqrt(252) * 100.
func RealizedVol(logReturns []float64, window int) []float64 {
	out := nanSlice(len(logReturns))
	if window <= 1 {
		return out
	}
	for i := window; i < len(logReturns); i++ {
		sd, ok := popStdDev(logReturns[i-window+1 : i+1])
		if !ok {
			continue
		}
		out[i] = sd * math.Sqrt(tradingDaysPerYear) * 100
	}
	return out
}

// IntradayRealizedVol annualizes bar-to-bar log returns for one trading day,
// scaling by the bar count actually observed that day rather than a fixed
// bars-per-day assumption.
func IntradayRealizedVol(barCloses []float64) (float64, bool) {
	if len(barCloses) < 3 {
		return 0, false
	}
	rets := make([]float64, 0, len(barCloses)-1)
	for i := 1; i < len(barCloses); i++ {
		if barCloses[i-1] <= 0 || barCloses[i] <= 0 {
			continue
		}
		rets = append(rets, math.Log(barCloses[i]/barCloses[i-1]))
	}
	if len(rets) < 2 {
		return 0, false
	}
	sd, ok := popStdDevSlice(rets)
	if !ok {
		return 0, false
	}
	barsPerDay := float64(len(rets))
	return sd * math.Sqrt(barsPerDay*tradingDaysPerYear) * 100, true
}

func popStdDev(window []float64) (float64, bool) {
	return popStdDevSlice(window)
}

func popStdDevSlice(vals []float64) (float64, bool) {
	n := 0
	sum := 0.0
	for _, v := range vals {
		if math.IsNaN(v) {
			return 0, false
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, false
	}
	mean := sum / float64(n)
	variance := 0.0
	for _, v := range vals {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n)
	return math.Sqrt(variance), true
}
