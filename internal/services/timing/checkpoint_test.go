package timing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduleSortsAndDedupes(t *testing.T) {
	s, err := NewSchedule("es", []string{"10:00", "09:30", "10:00", "09:45"})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:30", "09:45", "10:00"}, s.Times())
}

func TestNewScheduleRejectsBadInput(t *testing.T) {
	_, err := NewSchedule("es", []string{"9:3x"})
	assert.Error(t, err)
	_, err = NewSchedule("", []string{"09:30"})
	assert.Error(t, err)
	_, err = NewSchedule("es", nil)
	assert.Error(t, err)
}

func TestKnownByBoundaries(t *testing.T) {
	s, err := NewSchedule("es", []string{"09:30", "09:45", "10:00"})
	require.NoError(t, err)

	assert.Empty(t, s.KnownBy("09:29"))
	// A checkpoint is known starting exactly at its own time.
	assert.Equal(t, []string{"09:30"}, s.KnownBy("09:30"))
	assert.Equal(t, []string{"09:30"}, s.KnownBy("09:35"))
	assert.Equal(t, []string{"09:30", "09:45"}, s.KnownBy("09:45"))
	assert.Equal(t, []string{"09:30", "09:45", "10:00"}, s.KnownBy("16:00"))
}

func TestKnownByMonotonicity(t *testing.T) {
	s, err := NewSchedule("vix", []string{"09:31", "10:00", "10:30", "11:00", "15:15"})
	require.NoError(t, err)

	clocks := []string{"09:00", "09:31", "09:59", "10:00", "12:00", "15:15", "23:59"}
	prev := 0
	for _, c := range clocks {
		known := s.KnownBy(c)
		assert.GreaterOrEqual(t, len(known), prev, "clock %s", c)
		prev = len(known)
	}
}

func TestSchedulesPerSource(t *testing.T) {
	s, err := NewSchedules(map[string][]string{
		"es":  {"09:30", "10:00"},
		"vix": {"09:31", "10:01", "15:15"},
	})
	require.NoError(t, err)

	es, ok := s.ForSource("es")
	require.True(t, ok)
	assert.Len(t, es.Times(), 2)

	_, ok = s.ForSource("spx")
	assert.False(t, ok)
}
