package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
	pkgduck "github.com/davidromeo/tradeblocks-sub006/pkg/duckdb"
	applogger "github.com/davidromeo/tradeblocks-sub006/pkg/logger"
)

// mergeBatchSize caps the number of rows per INSERT statement.
const mergeBatchSize = 500

// DuckMarketStore implements MarketStore backed by embedded DuckDB.
type DuckMarketStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewDuckMarketStore(dk *pkgduck.Client) *DuckMarketStore {
	return &DuckMarketStore{db: dk.DB()}
}

// SetLogger injects a structured logger.
func (s *DuckMarketStore) SetLogger(l *applogger.Logger) { s.l = l }

// column pairs a canonical column name with the value extracted per row.
type column struct {
	name   string
	values []any
}

// mergeRows applies a batch of rows against table with ON CONFLICT semantics
// on keyCols. When only key columns are supplied the conflict policy is DO
// NOTHING (first writer wins); otherwise non-key columns are updated from the
// incoming row (last writer wins). All batches run in one transaction, so a
// failed merge leaves the table untouched. Inserted/updated/skipped counts
// come from diffing the table row count before and after, which stays correct
// even when insert and upsert paths are mixed across batches.
func (s *DuckMarketStore) mergeRows(ctx context.Context, table string, keyCols []string, cols []column, n int) (models.MergeStats, error) {
	start := time.Now()
	var stats models.MergeStats
	if n == 0 {
		return stats, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin merge %s: %w", table, err)
	}
	defer func() { _ = tx.Rollback() }()

	before, err := countRowsTx(ctx, tx, table)
	if err != nil {
		return stats, err
	}

	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.name)
	}
	conflict := buildConflictClause(keyCols, names)
	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",") + ")"

	for off := 0; off < n; off += mergeBatchSize {
		end := off + mergeBatchSize
		if end > n {
			end = n
		}
		batch := end - off

		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s %s",
			table,
			strings.Join(names, ", "),
			strings.TrimSuffix(strings.Repeat(rowPlaceholder+",", batch), ","),
			conflict,
		)

		args := make([]any, 0, batch*len(cols))
		for i := off; i < end; i++ {
			for _, c := range cols {
				args = append(args, c.values[i])
			}
		}

		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			if s.l != nil {
				s.l.Error("duckdb merge batch error",
					applogger.String("table", table),
					applogger.Int("batch", batch),
					applogger.Error(err),
				)
			}
			return stats, fmt.Errorf("merge %s: %w", table, err)
		}
	}

	after, err := countRowsTx(ctx, tx, table)
	if err != nil {
		return stats, err
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit merge %s: %w", table, err)
	}

	stats.Inserted = after - before
	rest := int64(n) - stats.Inserted
	if rest < 0 {
		rest = 0
	}
	if len(names) > len(keyCols) {
		stats.Updated = rest
	} else {
		stats.Skipped = rest
	}

	if s.l != nil {
		s.l.Info("duckdb merge ok",
			applogger.String("table", table),
			applogger.Int("rows", n),
			applogger.Int64("inserted", stats.Inserted),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return stats, nil
}

func buildConflictClause(keyCols, cols []string) string {
	key := strings.Join(keyCols, ", ")
	if len(cols) <= len(keyCols) {
		return fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", key)
	}
	isKey := make(map[string]bool, len(keyCols))
	for _, k := range keyCols {
		isKey[k] = true
	}
	sets := make([]string, 0, len(cols)-len(keyCols))
	for _, c := range cols {
		if !isKey[c] {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
		}
	}
	return fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", key, strings.Join(sets, ", "))
}

func (s *DuckMarketStore) countRows(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func countRowsTx(ctx context.Context, tx *sql.Tx, table string) (int64, error) {
	var n int64
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// MergeDaily merges raw daily bars keyed on (ticker, date).
func (s *DuckMarketStore) MergeDaily(ctx context.Context, rows []models.DailyBar) (models.MergeStats, error) {
	n := len(rows)
	cols := []column{
		{name: "ticker", values: make([]any, n)},
		{name: "date", values: make([]any, n)},
		{name: "open", values: make([]any, n)},
		{name: "high", values: make([]any, n)},
		{name: "low", values: make([]any, n)},
		{name: "close", values: make([]any, n)},
	}
	hasVolume := false
	for _, r := range rows {
		if r.Volume != nil {
			hasVolume = true
			break
		}
	}
	if hasVolume {
		cols = append(cols, column{name: "volume", values: make([]any, n)})
	}
	for i, r := range rows {
		cols[0].values[i] = r.Ticker
		cols[1].values[i] = r.Date
		cols[2].values[i] = r.Open
		cols[3].values[i] = r.High
		cols[4].values[i] = r.Low
		cols[5].values[i] = r.Close
		if hasVolume {
			cols[6].values[i] = deref(r.Volume)
		}
	}
	return s.mergeRows(ctx, "market_data_daily", []string{"ticker", "date"}, cols, n)
}

// MergeContext merges context rows keyed on date. Only the optional columns
// some row actually supplies are included, so a date-only batch degrades to
// the append-only DO NOTHING policy.
func (s *DuckMarketStore) MergeContext(ctx context.Context, rows []models.ContextBar) (models.MergeStats, error) {
	n := len(rows)
	cols := []column{{name: "date", values: make([]any, n)}}
	for i, r := range rows {
		cols[0].values[i] = r.Date
	}

	optional := []struct {
		name string
		get  func(models.ContextBar) *float64
	}{
		{"vix_open", func(r models.ContextBar) *float64 { return r.VIXOpen }},
		{"vix_high", func(r models.ContextBar) *float64 { return r.VIXHigh }},
		{"vix_low", func(r models.ContextBar) *float64 { return r.VIXLow }},
		{"vix_close", func(r models.ContextBar) *float64 { return r.VIXClose }},
		{"vix9d_open", func(r models.ContextBar) *float64 { return r.VIX9DOpen }},
		{"vix9d_close", func(r models.ContextBar) *float64 { return r.VIX9DClose }},
		{"vix3m_open", func(r models.ContextBar) *float64 { return r.VIX3MOpen }},
		{"vix3m_close", func(r models.ContextBar) *float64 { return r.VIX3MClose }},
	}
	for _, opt := range optional {
		present := false
		for _, r := range rows {
			if opt.get(r) != nil {
				present = true
				break
			}
		}
		if !present {
			continue
		}
		c := column{name: opt.name, values: make([]any, n)}
		for i, r := range rows {
			c.values[i] = deref(opt.get(r))
		}
		cols = append(cols, c)
	}
	return s.mergeRows(ctx, "market_context", []string{"date"}, cols, n)
}

// MergeIntraday merges intraday bars keyed on (ticker, date, time).
func (s *DuckMarketStore) MergeIntraday(ctx context.Context, rows []models.IntradayBar) (models.MergeStats, error) {
	n := len(rows)
	cols := []column{
		{name: "ticker", values: make([]any, n)},
		{name: "date", values: make([]any, n)},
		{name: "time", values: make([]any, n)},
		{name: "open", values: make([]any, n)},
		{name: "high", values: make([]any, n)},
		{name: "low", values: make([]any, n)},
		{name: "close", values: make([]any, n)},
	}
	for i, r := range rows {
		cols[0].values[i] = r.Ticker
		cols[1].values[i] = r.Date
		cols[2].values[i] = r.Time
		cols[3].values[i] = r.Open
		cols[4].values[i] = r.High
		cols[5].values[i] = r.Low
		cols[6].values[i] = r.Close
	}
	return s.mergeRows(ctx, "market_data_intraday", []string{"ticker", "date", "time"}, cols, n)
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
