package timing

import (
	"fmt"
	"sort"
	"time"
)

// Schedule is the fixed set of intraday checkpoint times for one data
// source. Sources sample at different granularities (and some end on an
// irregular final step), so schedules are configured per source rather than
// assumed uniform.
type Schedule struct {
	source string
	times  []string
}

// NewSchedule validates and sorts a source's checkpoint times (HH:MM,
// 24-hour). Duplicates collapse.
func NewSchedule(source string, times []string) (*Schedule, error) {
	if source == "" {
		return nil, fmt.Errorf("checkpoint schedule: empty source")
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("checkpoint schedule %s: no times", source)
	}
	seen := make(map[string]struct{}, len(times))
	out := make([]string, 0, len(times))
	for _, t := range times {
		if _, err := time.Parse("15:04", t); err != nil {
			return nil, fmt.Errorf("checkpoint schedule %s: bad time %q: %w", source, t, err)
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return &Schedule{source: source, times: out}, nil
}

// Source returns the schedule's data source name.
func (s *Schedule) Source() string { return s.source }

// Times returns the full checkpoint set in ascending order.
func (s *Schedule) Times() []string {
	out := make([]string, len(s.times))
	copy(out, s.times)
	return out
}

// KnownBy returns the checkpoints observable at the given clock time: a
// checkpoint at T is known starting exactly at T. A clock before the first
// checkpoint yields an empty set.
func (s *Schedule) KnownBy(clock string) []string {
	// Zero-padded HH:MM compares correctly as a string.
	n := sort.SearchStrings(s.times, clock)
	if n < len(s.times) && s.times[n] == clock {
		n++
	}
	out := make([]string, n)
	copy(out, s.times[:n])
	return out
}

// Schedules indexes checkpoint schedules by source name.
type Schedules map[string]*Schedule

// NewSchedules builds the per-source schedule set from configuration.
func NewSchedules(cfg map[string][]string) (Schedules, error) {
	out := make(Schedules, len(cfg))
	for source, times := range cfg {
		s, err := NewSchedule(source, times)
		if err != nil {
			return nil, err
		}
		out[source] = s
	}
	return out, nil
}

// ForSource looks up one source's schedule.
func (s Schedules) ForSource(source string) (*Schedule, bool) {
	sched, ok := s[source]
	return sched, ok
}
