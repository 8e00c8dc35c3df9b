package indicators

import "time"

// DayOfWeek returns the trading-calendar weekday number, Sunday=1 .. Saturday=7.
func DayOfWeek(t time.Time) int {
	return int(t.Weekday()) + 1
}

// IsOpex reports whether t is the monthly options-expiration day, the third
// Friday of its month, computed by exact calendar arithmetic.
func IsOpex(t time.Time) bool {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	daysToFriday := (int(time.Friday) - int(first.Weekday()) + 7) % 7
	thirdFriday := first.AddDate(0, 0, daysToFriday+14)
	return t.Year() == thirdFriday.Year() && t.Month() == thirdFriday.Month() && t.Day() == thirdFriday.Day()
}

// ConsecutiveDays computes the running up/down streak from daily returns:
// positive runs count up from 1, negative runs count down from -1, a zero or
// undefined return resets to 0.
func ConsecutiveDays(returns []float64) []int {
	out := make([]int, len(returns))
	streak := 0
	for i, r := range returns {
		switch {
		case isNaN(r):
			streak = 0
		case r > 0:
			if streak < 0 {
				streak = 0
			}
			streak++
		case r < 0:
			if streak > 0 {
				streak = 0
			}
			streak--
		default:
			streak = 0
		}
		out[i] = streak
	}
	return out
}

// GapFilled reports whether the overnight gap closed back through the prior
// close during the session: an up gap fills when the low touches the prior
// close, a down gap when the high does.
func GapFilled(gapPct, high, low, priorClose float64) bool {
	if gapPct > 0 {
		return low <= priorClose
	}
	if gapPct < 0 {
		return high >= priorClose
	}
	return false
}

func isNaN(v float64) bool { return v != v }
