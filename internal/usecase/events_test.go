package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
)

func TestEnrichmentRequestHandler(t *testing.T) {
	store := newFakeMarketStore()
	prov := newFakeProvenance()
	store.daily["SPY"] = tradingDays(5, "2025-06-02", func(i int) float64 { return 100 + float64(i) })

	enricher := NewEnricher(store, prov, &fakePublisher{}, noopMetrics{}, "VIX", testLogger())
	h := NewEnrichmentRequestHandler(enricher, "pipeline.events", testLogger())
	assert.Equal(t, "pipeline.events", h.Topic())

	payload, err := json.Marshal(models.PipelineEvent{Type: models.EventEnrichmentRequested, Ticker: "SPY"})
	require.NoError(t, err)
	require.NoError(t, h.Handle(context.Background(), payload))
	assert.Len(t, store.tier1Writes, 5)
}

func TestEnrichmentRequestHandlerIgnoresOtherEvents(t *testing.T) {
	store := newFakeMarketStore()
	enricher := NewEnricher(store, newFakeProvenance(), &fakePublisher{}, noopMetrics{}, "VIX", testLogger())
	h := NewEnrichmentRequestHandler(enricher, "pipeline.events", testLogger())

	payload, _ := json.Marshal(models.PipelineEvent{Type: models.EventImportCompleted, Ticker: "SPY"})
	require.NoError(t, h.Handle(context.Background(), payload))
	assert.Empty(t, store.tier1Writes)

	// Malformed payloads are dropped, not retried forever.
	require.NoError(t, h.Handle(context.Background(), []byte("{not json")))
}
