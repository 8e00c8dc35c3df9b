package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
	drepo "github.com/davidromeo/tradeblocks-sub006/internal/domain/repository"
	applogger "github.com/davidromeo/tradeblocks-sub006/pkg/logger"
)

// lookbackCalendarDays bounds the daily-bar window read before the
// watermark so warm-up-dependent indicators (SMA50, Bollinger, percentile
// inputs) are correct for the first post-watermark rows.
const lookbackCalendarDays = 200

// RTH open window: the first intraday bar inside it is the effective
// regular-hours open for that date.
const (
	rthWindowStart = "09:30"
	rthWindowEnd   = "09:45"
)

// Enricher runs the three-tier indicator pipeline. Tiers are independently
// skippable and independently retryable; a tier failing does not roll back
// what an earlier tier committed.
type Enricher struct {
	store     drepo.MarketStore
	prov      drepo.ProvenanceStore
	events    drepo.EventPublisher
	metrics   drepo.Metrics
	vixTicker string
	l         *applogger.Logger
}

// NewEnricher wires the enrichment engine. vixTicker names the intraday
// series used to derive the context table's regular-hours open.
func NewEnricher(
	store drepo.MarketStore,
	prov drepo.ProvenanceStore,
	events drepo.EventPublisher,
	metrics drepo.Metrics,
	vixTicker string,
	l *applogger.Logger,
) *Enricher {
	if vixTicker == "" {
		vixTicker = "VIX"
	}
	return &Enricher{store: store, prov: prov, events: events, metrics: metrics, vixTicker: vixTicker, l: l}
}

// EnrichTicker runs tiers 1-3 for one ticker. forceFull resets the
// watermark and reprocesses the ticker's whole history.
func (e *Enricher) EnrichTicker(ctx context.Context, ticker string, forceFull bool) (models.EnrichmentResult, error) {
	start := time.Now()
	res := models.EnrichmentResult{Ticker: ticker}

	if forceFull {
		if err := e.prov.ResetEnrichment(ctx, ticker); err != nil {
			return res, fmt.Errorf("reset enrichment watermark for %s: %w", ticker, err)
		}
	}
	watermark, haveWatermark, err := e.prov.EnrichedThrough(ctx, ticker)
	if err != nil {
		return res, fmt.Errorf("read enrichment watermark for %s: %w", ticker, err)
	}

	maxDate := e.runTier1(ctx, ticker, watermark, haveWatermark, &res)
	e.runTier2(ctx, &res)
	e.runTier3(ctx, ticker, &res)

	if res.Tier1.Status == models.TierComplete && maxDate != "" {
		if err := e.prov.SetEnrichedThrough(ctx, ticker, maxDate); err != nil {
			return res, fmt.Errorf("advance enrichment watermark for %s: %w", ticker, err)
		}
		res.EnrichedThrough = maxDate
	} else if haveWatermark {
		res.EnrichedThrough = watermark
	}

	e.metrics.RecordLatency("enrich", time.Since(start).Seconds())
	e.publish(ctx, models.PipelineEvent{
		Type:      models.EventEnrichmentCompleted,
		Ticker:    ticker,
		Payload:   res,
		Timestamp: time.Now().UTC(),
	})
	return res, nil
}

// EnrichContext runs only tier 2, for imports that touch the global context
// table and carry no ticker.
func (e *Enricher) EnrichContext(ctx context.Context) (models.TierResult, error) {
	var res models.EnrichmentResult
	e.runTier2(ctx, &res)
	return res.Tier2, nil
}

func (e *Enricher) runTier1(ctx context.Context, ticker, watermark string, haveWatermark bool, res *models.EnrichmentResult) (maxDate string) {
	fromDate := ""
	if haveWatermark {
		fromDate = lookbackStart(watermark)
	}

	bars, err := e.store.DailyBars(ctx, ticker, fromDate)
	if err != nil {
		e.failTier(&res.Tier1, "tier1", fmt.Errorf("read daily bars: %w", err))
		return ""
	}
	if len(bars) == 0 {
		res.Tier1 = models.TierResult{Status: models.TierSkipped, Reason: "no daily bars"}
		e.metrics.RecordEnrichment("tier1", string(models.TierSkipped))
		return ""
	}

	fields := computeTier1(bars)
	if haveWatermark {
		fields = filterAfter(fields, watermark)
	}
	if len(fields) == 0 {
		// Everything in the window is already enriched; a correct no-op.
		res.Tier1 = models.TierResult{Status: models.TierComplete}
		e.metrics.RecordEnrichment("tier1", string(models.TierComplete))
		return watermark
	}

	written, err := e.store.UpdateTier1(ctx, fields)
	if err != nil {
		e.failTier(&res.Tier1, "tier1", fmt.Errorf("write tier1 fields: %w", err))
		return ""
	}
	res.Tier1 = models.TierResult{Status: models.TierComplete, FieldsWritten: written}
	res.RowsEnriched += written
	e.metrics.RecordEnrichment("tier1", string(models.TierComplete))

	e.l.Info("tier1 enrichment complete",
		applogger.String("ticker", ticker),
		applogger.Int("rows", written),
		applogger.String("through", fields[len(fields)-1].Date))
	return fields[len(fields)-1].Date
}

func (e *Enricher) runTier2(ctx context.Context, res *models.EnrichmentResult) {
	hasCloses, err := e.store.HasContextCloses(ctx)
	if err != nil {
		e.failTier(&res.Tier2, "tier2", fmt.Errorf("probe context closes: %w", err))
		return
	}
	if !hasCloses {
		res.Tier2 = models.TierResult{Status: models.TierSkipped, Reason: "no volatility-index closes in context table"}
		e.metrics.RecordEnrichment("tier2", string(models.TierSkipped))
		return
	}

	bars, err := e.store.ContextBars(ctx)
	if err != nil {
		e.failTier(&res.Tier2, "tier2", fmt.Errorf("read context bars: %w", err))
		return
	}

	rthOpens, err := e.rthOpens(ctx)
	if err != nil {
		e.failTier(&res.Tier2, "tier2", fmt.Errorf("derive rth opens: %w", err))
		return
	}

	written, err := e.store.UpdateTier2(ctx, computeTier2(bars, rthOpens))
	if err != nil {
		e.failTier(&res.Tier2, "tier2", fmt.Errorf("write tier2 fields: %w", err))
		return
	}
	res.Tier2 = models.TierResult{Status: models.TierComplete, FieldsWritten: written}
	res.RowsEnriched += written
	e.metrics.RecordEnrichment("tier2", string(models.TierComplete))
}

func (e *Enricher) runTier3(ctx context.Context, ticker string, res *models.EnrichmentResult) {
	has, err := e.store.HasIntradayBars(ctx, ticker)
	if err != nil {
		e.failTier(&res.Tier3, "tier3", fmt.Errorf("probe intraday bars: %w", err))
		return
	}
	if !has {
		res.Tier3 = models.TierResult{Status: models.TierSkipped, Reason: "no intraday bars for ticker"}
		e.metrics.RecordEnrichment("tier3", string(models.TierSkipped))
		return
	}

	bars, err := e.store.IntradayBars(ctx, ticker)
	if err != nil {
		e.failTier(&res.Tier3, "tier3", fmt.Errorf("read intraday bars: %w", err))
		return
	}

	written, err := e.store.UpdateTier3(ctx, computeTier3(ticker, bars))
	if err != nil {
		e.failTier(&res.Tier3, "tier3", fmt.Errorf("write tier3 fields: %w", err))
		return
	}
	res.Tier3 = models.TierResult{Status: models.TierComplete, FieldsWritten: written}
	res.RowsEnriched += written
	e.metrics.RecordEnrichment("tier3", string(models.TierComplete))
}

// rthOpens maps date -> open of the first intraday bar inside the RTH open
// window for the volatility-index ticker.
func (e *Enricher) rthOpens(ctx context.Context) (map[string]float64, error) {
	has, err := e.store.HasIntradayBars(ctx, e.vixTicker)
	if err != nil || !has {
		return nil, err
	}
	bars, err := e.store.IntradayBars(ctx, e.vixTicker)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	for _, b := range bars {
		if b.Time < rthWindowStart || b.Time > rthWindowEnd {
			continue
		}
		if _, ok := out[b.Date]; ok {
			continue
		}
		out[b.Date] = b.Open
	}
	return out, nil
}

func (e *Enricher) failTier(tr *models.TierResult, tier string, err error) {
	*tr = models.TierResult{Status: models.TierError, Reason: err.Error()}
	e.metrics.RecordEnrichment(tier, string(models.TierError))
	e.metrics.RecordError("enrichment")
	e.l.Error("enrichment tier failed", applogger.String("tier", tier), applogger.Error(err))
}

func (e *Enricher) publish(ctx context.Context, ev models.PipelineEvent) {
	if e.events == nil {
		return
	}
	if err := e.events.Publish(ctx, ev); err != nil {
		e.l.Warn("publish pipeline event", applogger.String("type", ev.Type), applogger.Error(err))
	}
}

// filterAfter keeps rows whose date is strictly after the watermark.
func filterAfter(fields []models.Tier1Fields, watermark string) []models.Tier1Fields {
	out := fields[:0:0]
	for _, f := range fields {
		if f.Date > watermark {
			out = append(out, f)
		}
	}
	return out
}

// lookbackStart moves a watermark date back by the warm-up window.
func lookbackStart(watermark string) string {
	t, err := time.Parse("2006-01-02", watermark)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -lookbackCalendarDays).Format("2006-01-02")
}
