package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
)

func newTestEnricher(store *fakeMarketStore, prov *fakeProvenance, pub *fakePublisher) *Enricher {
	return NewEnricher(store, prov, pub, noopMetrics{}, "VIX", testLogger())
}

func TestEnrichTickerAdvancesWatermark(t *testing.T) {
	store := newFakeMarketStore()
	prov := newFakeProvenance()
	pub := &fakePublisher{}
	store.daily["SPY"] = tradingDays(10, "2025-06-02", func(i int) float64 { return 100 + float64(i) })

	res, err := newTestEnricher(store, prov, pub).EnrichTicker(context.Background(), "SPY", false)
	require.NoError(t, err)

	assert.Equal(t, models.TierComplete, res.Tier1.Status)
	assert.Len(t, store.tier1Writes, 10)
	lastDate := store.daily["SPY"][9].Date
	assert.Equal(t, lastDate, res.EnrichedThrough)
	assert.Equal(t, lastDate, prov.watermarks["SPY"])

	// Context and intraday data are absent, so tiers 2 and 3 skip.
	assert.Equal(t, models.TierSkipped, res.Tier2.Status)
	assert.Equal(t, models.TierSkipped, res.Tier3.Status)
	assert.NotEmpty(t, res.Tier2.Reason)

	require.Len(t, pub.byType(models.EventEnrichmentCompleted), 1)
}

func TestEnrichTickerWritesOnlyPastWatermark(t *testing.T) {
	store := newFakeMarketStore()
	prov := newFakeProvenance()
	bars := tradingDays(10, "2025-06-02", func(i int) float64 { return 100 + float64(i) })
	store.daily["SPY"] = bars
	prov.watermarks["SPY"] = bars[6].Date

	res, err := newTestEnricher(store, prov, &fakePublisher{}).EnrichTicker(context.Background(), "SPY", false)
	require.NoError(t, err)

	assert.Equal(t, models.TierComplete, res.Tier1.Status)
	require.Len(t, store.tier1Writes, 3)
	for _, f := range store.tier1Writes {
		assert.Greater(t, f.Date, bars[6].Date)
	}
	assert.Equal(t, bars[9].Date, prov.watermarks["SPY"])
}

func TestEnrichTickerNoNewRowsIsNoOp(t *testing.T) {
	store := newFakeMarketStore()
	prov := newFakeProvenance()
	bars := tradingDays(5, "2025-06-02", func(i int) float64 { return 100 })
	store.daily["SPY"] = bars
	prov.watermarks["SPY"] = bars[4].Date

	res, err := newTestEnricher(store, prov, &fakePublisher{}).EnrichTicker(context.Background(), "SPY", false)
	require.NoError(t, err)

	assert.Equal(t, models.TierComplete, res.Tier1.Status)
	assert.Empty(t, store.tier1Writes)
	// The watermark never moves backwards on a no-op run.
	assert.Equal(t, bars[4].Date, prov.watermarks["SPY"])
}

func TestEnrichTickerForceFullReprocesses(t *testing.T) {
	store := newFakeMarketStore()
	prov := newFakeProvenance()
	bars := tradingDays(6, "2025-06-02", func(i int) float64 { return 100 + float64(i) })
	store.daily["SPY"] = bars
	prov.watermarks["SPY"] = bars[5].Date

	res, err := newTestEnricher(store, prov, &fakePublisher{}).EnrichTicker(context.Background(), "SPY", true)
	require.NoError(t, err)

	assert.Equal(t, models.TierComplete, res.Tier1.Status)
	assert.Len(t, store.tier1Writes, 6)
}

func TestEnrichTickerRunsTier2AndTier3(t *testing.T) {
	store := newFakeMarketStore()
	prov := newFakeProvenance()
	store.daily["SPY"] = tradingDays(5, "2025-06-02", func(i int) float64 { return 100 + float64(i) })
	store.context = []models.ContextBar{
		ctxBar("2025-06-02", fptr(14.0), fptr(15.0), fptr(14.0), fptr(16.5)),
		ctxBar("2025-06-03", fptr(15.3), fptr(16.5), fptr(15.8), fptr(17.0)),
	}
	store.intraday["SPY"] = []models.IntradayBar{
		{Ticker: "SPY", Date: "2025-06-02", Time: "09:30", Open: 100, High: 101, Low: 99, Close: 100.5},
		{Ticker: "SPY", Date: "2025-06-02", Time: "10:00", Open: 100.5, High: 103, Low: 100, Close: 102},
		{Ticker: "SPY", Date: "2025-06-02", Time: "14:00", Open: 102, High: 102.5, Low: 98, Close: 99},
	}
	// VIX intraday bars supply the regular-hours open for 06-02.
	store.intraday["VIX"] = []models.IntradayBar{
		{Ticker: "VIX", Date: "2025-06-02", Time: "09:31", Open: 14.4, High: 14.6, Low: 14.3, Close: 14.5},
	}

	res, err := newTestEnricher(store, prov, &fakePublisher{}).EnrichTicker(context.Background(), "SPY", false)
	require.NoError(t, err)

	assert.Equal(t, models.TierComplete, res.Tier2.Status)
	assert.Equal(t, models.TierComplete, res.Tier3.Status)
	require.Len(t, store.tier2Writes, 2)
	require.NotNil(t, store.tier2Writes[0].VIXRTHOpen)
	assert.Equal(t, 14.4, *store.tier2Writes[0].VIXRTHOpen)
	require.Len(t, store.tier3Writes, 1)
	assert.Equal(t, "2025-06-02", store.tier3Writes[0].Date)
}

func TestEnrichContextOnly(t *testing.T) {
	store := newFakeMarketStore()
	store.context = []models.ContextBar{
		ctxBar("2025-06-02", fptr(14.0), fptr(15.0), nil, nil),
	}

	tier, err := newTestEnricher(store, newFakeProvenance(), &fakePublisher{}).EnrichContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.TierComplete, tier.Status)
	assert.Len(t, store.tier2Writes, 1)
	assert.Empty(t, store.tier1Writes)
}
