package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
)

// DailyBars returns raw daily bars for a ticker ordered by date. fromDate
// (YYYY-MM-DD) bounds the read; empty means from the beginning.
func (s *DuckMarketStore) DailyBars(ctx context.Context, ticker, fromDate string) ([]models.DailyBar, error) {
	q := `SELECT ticker, CAST(date AS VARCHAR), open, high, low, close, volume
	      FROM market_data_daily WHERE ticker = ?`
	args := []any{ticker}
	if fromDate != "" {
		q += " AND date >= CAST(? AS DATE)"
		args = append(args, fromDate)
	}
	q += " ORDER BY date ASC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("daily bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.DailyBar, 0, 256)
	for rows.Next() {
		var b models.DailyBar
		var vol sql.NullFloat64
		if err := rows.Scan(&b.Ticker, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &vol); err != nil {
			return nil, fmt.Errorf("scan daily bar: %w", err)
		}
		if vol.Valid {
			v := vol.Float64
			b.Volume = &v
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// ContextBars returns the raw context inputs for every day, ordered by date.
func (s *DuckMarketStore) ContextBars(ctx context.Context) ([]models.ContextBar, error) {
	const q = `SELECT CAST(date AS VARCHAR),
	       vix_open, vix_high, vix_low, vix_close,
	       vix9d_open, vix9d_close, vix3m_open, vix3m_close
	       FROM market_context ORDER BY date ASC`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("context bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.ContextBar, 0, 256)
	for rows.Next() {
		var b models.ContextBar
		var vals [8]sql.NullFloat64
		if err := rows.Scan(&b.Date,
			&vals[0], &vals[1], &vals[2], &vals[3],
			&vals[4], &vals[5], &vals[6], &vals[7]); err != nil {
			return nil, fmt.Errorf("scan context bar: %w", err)
		}
		ptrs := []**float64{
			&b.VIXOpen, &b.VIXHigh, &b.VIXLow, &b.VIXClose,
			&b.VIX9DOpen, &b.VIX9DClose, &b.VIX3MOpen, &b.VIX3MClose,
		}
		for i, nv := range vals {
			if nv.Valid {
				v := nv.Float64
				*ptrs[i] = &v
			}
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// IntradayBars returns all intraday bars for a ticker ordered by (date, time).
func (s *DuckMarketStore) IntradayBars(ctx context.Context, ticker string) ([]models.IntradayBar, error) {
	const q = `SELECT ticker, CAST(date AS VARCHAR), time, open, high, low, close
	       FROM market_data_intraday WHERE ticker = ? ORDER BY date ASC, time ASC`

	rows, err := s.db.QueryContext(ctx, q, ticker)
	if err != nil {
		return nil, fmt.Errorf("intraday bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.IntradayBar, 0, 1024)
	for rows.Next() {
		var b models.IntradayBar
		if err := rows.Scan(&b.Ticker, &b.Date, &b.Time, &b.Open, &b.High, &b.Low, &b.Close); err != nil {
			return nil, fmt.Errorf("scan intraday bar: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// HasIntradayBars reports whether any intraday bars exist for the ticker.
func (s *DuckMarketStore) HasIntradayBars(ctx context.Context, ticker string) (bool, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM market_data_intraday WHERE ticker = ?", ticker).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("has intraday: %w", err)
	}
	return n > 0, nil
}

// HasContextCloses reports whether any non-null volatility-index close exists.
func (s *DuckMarketStore) HasContextCloses(ctx context.Context) (bool, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(vix_close) FROM market_context").Scan(&n)
	if err != nil {
		return false, fmt.Errorf("has context closes: %w", err)
	}
	return n > 0, nil
}

// RowCount returns the row count of a target table.
func (s *DuckMarketStore) RowCount(ctx context.Context, table models.TargetTable) (int64, error) {
	if !table.Valid() {
		return 0, fmt.Errorf("row count: unknown table %q", table)
	}
	return s.countRows(ctx, string(table))
}

// SelectMaps runs an arbitrary read query and returns generic rows, used by
// the lookahead-safe query layer. DATE values come back as YYYY-MM-DD
// strings, []byte as string.
func (s *DuckMarketStore) SelectMaps(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	defer rows.Close()

	colNames, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	out := make([]map[string]any, 0, 64)
	for rows.Next() {
		raw := make([]any, len(colNames))
		ptrs := make([]any, len(colNames))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		m := make(map[string]any, len(colNames))
		for i, name := range colNames {
			m[name] = normalizeValue(raw[i])
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	default:
		return v
	}
}
