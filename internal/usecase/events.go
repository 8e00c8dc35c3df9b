package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
	applogger "github.com/davidromeo/tradeblocks-sub006/pkg/logger"
)

// EnrichmentRequestHandler consumes enrichment.requested events and runs
// the enrichment engine for the requested ticker. It backs the async
// "pending" import path.
type EnrichmentRequestHandler struct {
	enricher *Enricher
	topic    string
	l        *applogger.Logger
}

// NewEnrichmentRequestHandler builds the consumer-side handler for the
// pipeline events topic.
func NewEnrichmentRequestHandler(enricher *Enricher, topic string, l *applogger.Logger) *EnrichmentRequestHandler {
	return &EnrichmentRequestHandler{enricher: enricher, topic: topic, l: l}
}

// Topic names the subscribed topic.
func (h *EnrichmentRequestHandler) Topic() string { return h.topic }

// Handle processes one event. Event types other than enrichment.requested
// share the topic and are acknowledged without action.
func (h *EnrichmentRequestHandler) Handle(ctx context.Context, payload []byte) error {
	var ev models.PipelineEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		// Malformed payloads would fail forever; drop rather than retry.
		h.l.Warn("drop malformed pipeline event", applogger.Error(err))
		return nil
	}
	if ev.Type != models.EventEnrichmentRequested {
		return nil
	}
	if ev.Ticker == "" {
		h.l.Warn("drop enrichment request without ticker")
		return nil
	}

	res, err := h.enricher.EnrichTicker(ctx, ev.Ticker, false)
	if err != nil {
		return fmt.Errorf("async enrichment for %s: %w", ev.Ticker, err)
	}
	h.l.Info("async enrichment complete",
		applogger.String("ticker", ev.Ticker),
		applogger.Int("rows", res.RowsEnriched))
	return nil
}
