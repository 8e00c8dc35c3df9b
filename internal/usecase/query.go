package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
	drepo "github.com/davidromeo/tradeblocks-sub006/internal/domain/repository"
	"github.com/davidromeo/tradeblocks-sub006/internal/services/timing"
	"github.com/davidromeo/tradeblocks-sub006/pkg/cache"
	applogger "github.com/davidromeo/tradeblocks-sub006/pkg/logger"
)

// QueryService executes the lookahead-safe read queries. Results are cached
// briefly; enrichment runs are the only writers of the fields involved, so
// a short TTL keeps reads cheap without a dedicated invalidation path.
type QueryService struct {
	store     drepo.MarketStore
	cache     cache.Service
	builder   *timing.QueryBuilder
	schedules timing.Schedules
	cacheTTL  time.Duration
	l         *applogger.Logger
}

// NewQueryService wires the read side. cache may be nil to disable caching.
func NewQueryService(
	store drepo.MarketStore,
	c cache.Service,
	schedules timing.Schedules,
	cacheTTL time.Duration,
	l *applogger.Logger,
) *QueryService {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &QueryService{
		store:     store,
		cache:     c,
		builder:   timing.NewQueryBuilder(),
		schedules: schedules,
		cacheTTL:  cacheTTL,
		l:         l,
	}
}

// EntryRows returns every field at its entry-time value for the requested
// ticker and dates: close-known fields come from the prior trading day.
func (q *QueryService) EntryRows(ctx context.Context, req models.EntryQueryRequest) ([]map[string]any, error) {
	ticker, dates, err := normalizeQueryArgs(req)
	if err != nil {
		return nil, err
	}
	return q.cached(ctx, "entry", ticker, dates, func() (string, []any) {
		return q.builder.EntrySafe(ticker, dates)
	})
}

// OutcomeRows returns same-day close-known values for the requested dates.
// These are post-hoc outcome fields, never inputs to an entry decision.
func (q *QueryService) OutcomeRows(ctx context.Context, req models.EntryQueryRequest) ([]map[string]any, error) {
	ticker, dates, err := normalizeQueryArgs(req)
	if err != nil {
		return nil, err
	}
	return q.cached(ctx, "outcome", ticker, dates, func() (string, []any) {
		return q.builder.Outcome(ticker, dates)
	})
}

// Checkpoints answers which of a source's intraday checkpoints were
// observable at the given clock time.
func (q *QueryService) Checkpoints(req models.CheckpointsRequest) ([]string, error) {
	sched, ok := q.schedules.ForSource(req.Source)
	if !ok {
		return nil, fmt.Errorf("unknown checkpoint source %q", req.Source)
	}
	if _, err := time.Parse("15:04", req.Clock); err != nil {
		return nil, fmt.Errorf("bad clock time %q: %w", req.Clock, err)
	}
	return sched.KnownBy(req.Clock), nil
}

func (q *QueryService) cached(ctx context.Context, kind, ticker string, dates []string, build func() (string, []any)) ([]map[string]any, error) {
	key := queryCacheKey(kind, ticker, dates)
	if q.cache != nil {
		var rows []map[string]any
		if err := q.cache.Get(ctx, key, &rows); err == nil {
			return rows, nil
		}
	}

	query, args := build()
	rows, err := q.store.SelectMaps(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s query: %w", kind, err)
	}

	if q.cache != nil {
		if err := q.cache.Set(ctx, key, rows, q.cacheTTL); err != nil {
			q.l.Warn("cache query result", applogger.String("key", key), applogger.Error(err))
		}
	}
	return rows, nil
}

func normalizeQueryArgs(req models.EntryQueryRequest) (string, []string, error) {
	ticker, err := NormalizeTicker(req.Ticker)
	if err != nil {
		return "", nil, err
	}
	dates := make([]string, 0, len(req.Dates))
	seen := make(map[string]bool, len(req.Dates))
	for _, d := range req.Dates {
		if _, perr := time.Parse("2006-01-02", d); perr != nil {
			return "", nil, fmt.Errorf("bad date %q: %w", d, perr)
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return ticker, dates, nil
}

func queryCacheKey(kind, ticker string, dates []string) string {
	sum := sha256.Sum256([]byte(strings.Join(dates, ",")))
	return "query:" + kind + ":" + ticker + ":" + hex.EncodeToString(sum[:8])
}
