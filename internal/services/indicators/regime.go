package indicators

// Volatility-regime bands over the volatility-index close, right-closed:
// <=12 -> 1, <=15 -> 2, <=20 -> 3, <=25 -> 4, <=35 -> 5, above -> 6.
var regimeBounds = []float64{12, 15, 20, 25, 35}

// VolRegime classifies a volatility-index close into one of six ordered bands.
func VolRegime(vixClose float64) int {
	for i, b := range regimeBounds {
		if vixClose <= b {
			return i + 1
		}
	}
	return 6
}

// termFlatEpsilon is the tolerance band on adjacent-maturity ratios inside
// which the term structure is treated as flat.
const termFlatEpsilon = 0.01

// TermStructureState classifies the volatility term structure from the
// short/primary and primary/long maturity ratios: 1 = contango (both ratios
// below 1-eps), -1 = backwardation (both above 1+eps), 0 = flat or mixed.
func TermStructureState(shortPrimaryRatio, primaryLongRatio float64) int {
	if shortPrimaryRatio < 1-termFlatEpsilon && primaryLongRatio < 1-termFlatEpsilon {
		return 1
	}
	if shortPrimaryRatio > 1+termFlatEpsilon && primaryLongRatio > 1+termFlatEpsilon {
		return -1
	}
	return 0
}

// percentileMinObs is the minimum trailing observations before a percentile
// rank is reported.
const percentileMinObs = 20

// RollingPercentile ranks each value against its trailing window (window
// values ending at and including the current one): the count of strictly
// lower values divided by the window size, in percent. Indices with fewer
// than percentileMinObs observations are NaN.
func RollingPercentile(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	for i := range values {
		if isNaN(values[i]) {
			continue
		}
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		size := 0
		lower := 0
		for j := start; j <= i; j++ {
			if isNaN(values[j]) {
				continue
			}
			size++
			if values[j] < values[i] {
				lower++
			}
		}
		if size < percentileMinObs {
			continue
		}
		out[i] = float64(lower) / float64(size) * 100
	}
	return out
}
