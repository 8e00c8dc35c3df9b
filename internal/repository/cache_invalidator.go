package repository

import (
	"context"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
	"github.com/davidromeo/tradeblocks-sub006/pkg/cache"
	"github.com/davidromeo/tradeblocks-sub006/pkg/logger"
)

// CacheInvalidator is an event sink that drops cached query results when
// enrichment rewrites the fields they were built from. It sits behind the
// same fan-out as the other publishers so invalidation cannot be forgotten
// at a call site.
type CacheInvalidator struct {
	cache cache.Service
	l     *logger.Logger
}

// NewCacheInvalidator creates the sink; cache may not be nil.
func NewCacheInvalidator(c cache.Service, l *logger.Logger) *CacheInvalidator {
	return &CacheInvalidator{cache: c, l: l}
}

// Publish invalidates cached entry and outcome rows for the enriched
// ticker. A context enrichment touches every ticker's joined context
// columns, so it clears the whole query namespace.
func (ci *CacheInvalidator) Publish(ctx context.Context, ev models.PipelineEvent) error {
	if ev.Type != models.EventEnrichmentCompleted {
		return nil
	}

	pattern := "query:*"
	if ev.Ticker != "" {
		pattern = "query:*:" + ev.Ticker + ":*"
	}
	if err := ci.cache.DeleteByPattern(ctx, pattern); err != nil {
		ci.l.Warn("query cache invalidation failed",
			logger.String("ticker", ev.Ticker), logger.Error(err))
	}
	return nil
}

// Close is a no-op; the cache is owned by whoever created it.
func (ci *CacheInvalidator) Close() error { return nil }
