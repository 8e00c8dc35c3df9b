package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDayOfWeek(t *testing.T) {
	assert.Equal(t, 1, DayOfWeek(day(2025, time.June, 1)))  // Sunday
	assert.Equal(t, 6, DayOfWeek(day(2025, time.June, 20))) // Friday
	assert.Equal(t, 7, DayOfWeek(day(2025, time.June, 21))) // Saturday
}

func TestIsOpexThirdFriday(t *testing.T) {
	assert.True(t, IsOpex(day(2025, time.June, 20)))
	assert.True(t, IsOpex(day(2025, time.January, 17)))
	assert.False(t, IsOpex(day(2025, time.June, 13))) // second Friday
	assert.False(t, IsOpex(day(2025, time.June, 27))) // fourth Friday
	assert.False(t, IsOpex(day(2025, time.June, 19))) // Thursday before
}

func TestConsecutiveDaysStreaks(t *testing.T) {
	returns := []float64{1.0, 2.0, -1.0, -2.0, 0.0, 3.0}
	assert.Equal(t, []int{1, 2, -1, -2, 0, 1}, ConsecutiveDays(returns))
}

func TestConsecutiveDaysUndefinedReturnResets(t *testing.T) {
	nan := func() float64 { var z float64; return z / z }()
	returns := []float64{1.0, 1.0, nan, 1.0}
	assert.Equal(t, []int{1, 2, 0, 1}, ConsecutiveDays(returns))
}

func TestGapFilled(t *testing.T) {
	// Up gap fills when the session low trades back to the prior close.
	assert.True(t, GapFilled(1.5, 105, 99.5, 100))
	assert.False(t, GapFilled(1.5, 105, 100.5, 100))
	// Down gap fills when the session high recovers the prior close.
	assert.True(t, GapFilled(-1.5, 100.2, 97, 100))
	assert.False(t, GapFilled(-1.5, 99.8, 97, 100))
	// No gap, nothing to fill.
	assert.False(t, GapFilled(0, 105, 95, 100))
}
