package indicators

import "math"

// SMA computes the simple moving average; result[i] is NaN until a full
// window ending at i exists.
func SMA(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// EMA computes the exponential moving average with alpha = 2/(window+1),
// seeded by the SMA of the first window.
func EMA(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return out
	}
	seed := 0.0
	for i := 0; i < window; i++ {
		seed += values[i]
	}
	seed /= float64(window)
	out[window-1] = seed

	alpha := 2.0 / float64(window+1)
	prev := seed
	for i := window; i < len(values); i++ {
		prev = alpha*values[i] + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

// BollingerBands holds the per-index band values.
type BollingerBands struct {
	Upper    []float64
	Lower    []float64
	Position []float64
}

// Bollinger computes window-period bands at numStdDev sigmas using the
// population (N-denominator) standard deviation. Position is the close's
// location inside the band clipped to [0,1]; a zero-width band reports 0.5.
func Bollinger(closes []float64, window int, numStdDev float64) BollingerBands {
	n := len(closes)
	b := BollingerBands{Upper: nanSlice(n), Lower: nanSlice(n), Position: nanSlice(n)}
	if window <= 0 || n < window {
		return b
	}
	for i := window - 1; i < n; i++ {
		mean := 0.0
		for j := i - window + 1; j <= i; j++ {
			mean += closes[j]
		}
		mean /= float64(window)

		variance := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := closes[j] - mean
			variance += d * d
		}
		variance /= float64(window)
		sd := math.Sqrt(variance)

		b.Upper[i] = mean + numStdDev*sd
		b.Lower[i] = mean - numStdDev*sd
		if b.Upper[i] == b.Lower[i] {
			b.Position[i] = 0.5
			continue
		}
		pos := (closes[i] - b.Lower[i]) / (b.Upper[i] - b.Lower[i])
		b.Position[i] = clamp01(pos)
	}
	return b
}

// PctChange computes the k-period percentage change of values, in percent.
func PctChange(values []float64, k int) []float64 {
	out := nanSlice(len(values))
	for i := k; i < len(values); i++ {
		if values[i-k] == 0 {
			continue
		}
		out[i] = (values[i]/values[i-k] - 1) * 100
	}
	return out
}

// TrendScore scores trend strength from the close versus its EMA(21) and
// EMA(50) plus a 5-period EMA(21) slope bonus, clipped to [-3, 3].
func TrendScore(closes []float64) []int {
	n := len(closes)
	e21 := EMA(closes, 21)
	e50 := EMA(closes, 50)
	out := make([]int, n)
	for i := range out {
		out[i] = math.MinInt32 // marks "not computable"
	}
	for i := 0; i < n; i++ {
		if math.IsNaN(e21[i]) || math.IsNaN(e50[i]) {
			continue
		}
		score := sign(closes[i]-e21[i]) + sign(closes[i]-e50[i])
		if i >= 5 && !math.IsNaN(e21[i-5]) && e21[i-5] != 0 {
			slope := (e21[i] - e21[i-5]) / e21[i-5] * 100
			if slope > 0.5 {
				score++
			} else if slope < -0.5 {
				score--
			}
		}
		if score > 3 {
			score = 3
		}
		if score < -3 {
			score = -3
		}
		out[i] = score
	}
	return out
}

// TrendScoreDefined reports whether a TrendScore entry is computable.
func TrendScoreDefined(v int) bool { return v != math.MinInt32 }

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
