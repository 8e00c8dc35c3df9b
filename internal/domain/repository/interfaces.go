package repository

import (
	"context"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
)

// MarketStore is the write/read surface over the normalized market tables.
// All merges are idempotent: re-running a merge with identical input inserts
// zero additional rows.
type MarketStore interface {
	MergeDaily(ctx context.Context, rows []models.DailyBar) (models.MergeStats, error)
	MergeContext(ctx context.Context, rows []models.ContextBar) (models.MergeStats, error)
	MergeIntraday(ctx context.Context, rows []models.IntradayBar) (models.MergeStats, error)

	UpdateTier1(ctx context.Context, rows []models.Tier1Fields) (int, error)
	UpdateTier2(ctx context.Context, rows []models.Tier2Fields) (int, error)
	UpdateTier3(ctx context.Context, rows []models.Tier3Fields) (int, error)

	DailyBars(ctx context.Context, ticker, fromDate string) ([]models.DailyBar, error)
	ContextBars(ctx context.Context) ([]models.ContextBar, error)
	IntradayBars(ctx context.Context, ticker string) ([]models.IntradayBar, error)
	HasIntradayBars(ctx context.Context, ticker string) (bool, error)
	HasContextCloses(ctx context.Context) (bool, error)

	RowCount(ctx context.Context, table models.TargetTable) (int64, error)

	// SelectMaps runs a read-only query built by the lookahead-safe query
	// layer and returns generic rows keyed by column name.
	SelectMaps(ctx context.Context, query string, args ...any) ([]map[string]any, error)
}

// BlockStore owns trade rows and their per-block sync fingerprints.
type BlockStore interface {
	Fingerprints(ctx context.Context) (map[string]models.BlockRecord, error)
	// ReplaceBlock atomically swaps all trade rows for a block and upserts its
	// fingerprint record; readers see the complete old state or the complete
	// new state, never a mix.
	ReplaceBlock(ctx context.Context, rec models.BlockRecord, trades []models.Trade) error
	// DeleteBlock removes all trade rows and the fingerprint record for a block.
	DeleteBlock(ctx context.Context, blockID string) error
	TradeCount(ctx context.Context, blockID string) (int, error)
}

// ProvenanceStore persists import provenance and the per-ticker enrichment
// watermark. The watermark is monotonic; only an explicit reset can move it
// backwards.
type ProvenanceStore interface {
	RecordImport(ctx context.Context, source, ticker string, table models.TargetTable, maxDate string) error
	EnrichedThrough(ctx context.Context, ticker string) (string, bool, error)
	SetEnrichedThrough(ctx context.Context, ticker, date string) error
	ResetEnrichment(ctx context.Context, ticker string) error
}

// EventPublisher pushes pipeline lifecycle events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, ev models.PipelineEvent) error
	Close() error
}

// Metrics records pipeline observability counters.
type Metrics interface {
	RecordRowsMerged(table string, stats models.MergeStats)
	RecordRowsDropped(table, reason string, n int)
	RecordBlockSync(status string)
	RecordEnrichment(tier string, status string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
