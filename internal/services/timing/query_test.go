package timing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntrySafeLagsOnlyCloseKnownFields(t *testing.T) {
	q, args := NewQueryBuilder().EntrySafe("SPY", []string{"2025-06-02", "2025-06-03"})

	assert.Contains(t, q, "LAG(close) OVER (PARTITION BY ticker ORDER BY date) AS close")
	assert.Contains(t, q, "LAG(rsi_14) OVER (PARTITION BY ticker ORDER BY date) AS rsi_14")
	assert.Contains(t, q, "LAG(vix_close) OVER (ORDER BY date) AS vix_close")
	assert.NotContains(t, q, "LAG(open)")
	assert.NotContains(t, q, "LAG(prior_close)")
	assert.NotContains(t, q, "LAG(day_of_week)")
	assert.NotContains(t, q, "LAG(vix_rth_open)")

	require.Len(t, args, 3)
	assert.Equal(t, "SPY", args[0])
	assert.Equal(t, "2025-06-02", args[1])
}

func TestEntrySafeLagRunsBeforeDateFilter(t *testing.T) {
	q, _ := NewQueryBuilder().EntrySafe("SPY", []string{"2025-06-02"})
	// The window functions live in CTEs over the whole table; the date list
	// filters only the outer select.
	lagIdx := strings.Index(q, "LAG(")
	filterIdx := strings.Index(q, "WHERE d.date IN")
	require.Greater(t, lagIdx, -1)
	require.Greater(t, filterIdx, -1)
	assert.Less(t, lagIdx, filterIdx)
}

func TestOutcomeSelectsCloseKnownUnlagged(t *testing.T) {
	q, args := NewQueryBuilder().Outcome("SPY", []string{"2025-06-02"})

	assert.NotContains(t, q, "LAG(")
	assert.Contains(t, q, "d.close")
	assert.Contains(t, q, "d.rsi_14")
	assert.Contains(t, q, "c.vix_close")
	// Entry-time fields have no place in an outcome row.
	assert.NotContains(t, q, "d.gap_pct")
	assert.NotContains(t, q, "c.vix_rth_open")

	require.Len(t, args, 2)
}

func TestPlaceholdersMatchDateCount(t *testing.T) {
	dates := []string{"2025-06-02", "2025-06-03", "2025-06-04"}
	q, args := NewQueryBuilder().EntrySafe("SPY", dates)
	assert.Equal(t, len(dates)+1, len(args))
	assert.Equal(t, len(dates)+1, strings.Count(q, "?"))
}
