package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
	"github.com/davidromeo/tradeblocks-sub006/internal/services/timing"
)

func newTestQueryService(store *fakeMarketStore) *QueryService {
	schedules, err := timing.NewSchedules(map[string][]string{
		"es": {"09:30", "10:00", "10:30"},
	})
	if err != nil {
		panic(err)
	}
	return NewQueryService(store, nil, schedules, 0, testLogger())
}

func TestEntryRowsBuildsLaggedQuery(t *testing.T) {
	store := newFakeMarketStore()
	store.selectRows = []map[string]any{{"ticker": "SPY", "date": "2025-06-03"}}
	qs := newTestQueryService(store)

	rows, err := qs.EntryRows(context.Background(), models.EntryQueryRequest{
		Ticker: "spy",
		Dates:  []string{"2025-06-03", "2025-06-02", "2025-06-02"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Contains(t, store.lastQuery, "LAG(close)")
	// Normalized ticker plus deduped, sorted dates.
	require.Len(t, store.lastArgs, 3)
	assert.Equal(t, "SPY", store.lastArgs[0])
	assert.Equal(t, "2025-06-02", store.lastArgs[1])
	assert.Equal(t, "2025-06-03", store.lastArgs[2])
}

func TestOutcomeRowsUnlagged(t *testing.T) {
	store := newFakeMarketStore()
	qs := newTestQueryService(store)

	_, err := qs.OutcomeRows(context.Background(), models.EntryQueryRequest{
		Ticker: "SPY",
		Dates:  []string{"2025-06-03"},
	})
	require.NoError(t, err)
	assert.NotContains(t, store.lastQuery, "LAG(")
}

func TestQueryRejectsBadDates(t *testing.T) {
	qs := newTestQueryService(newFakeMarketStore())
	_, err := qs.EntryRows(context.Background(), models.EntryQueryRequest{
		Ticker: "SPY",
		Dates:  []string{"06/02/2025"},
	})
	assert.Error(t, err)
}

func TestCheckpointsLookup(t *testing.T) {
	qs := newTestQueryService(newFakeMarketStore())

	known, err := qs.Checkpoints(models.CheckpointsRequest{Source: "es", Clock: "10:15"})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:30", "10:00"}, known)

	_, err = qs.Checkpoints(models.CheckpointsRequest{Source: "nope", Clock: "10:15"})
	assert.Error(t, err)

	_, err = qs.Checkpoints(models.CheckpointsRequest{Source: "es", Clock: "later"})
	assert.Error(t, err)
}
