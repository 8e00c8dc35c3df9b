package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
)

// Tier writes go through the same conflict merge as raw imports. Tier-1 and
// tier-2 keys were just read from their target tables; tier-3 keys come from
// the intraday table and are filtered to existing daily rows first. Every
// written row therefore takes the DO UPDATE path and the raw OHLC columns
// are untouched.

// UpdateTier1 writes the full tier-1 field set for each (ticker, date).
func (s *DuckMarketStore) UpdateTier1(ctx context.Context, rows []models.Tier1Fields) (int, error) {
	n := len(rows)
	if n == 0 {
		return 0, nil
	}
	names := []string{
		"ticker", "date",
		"prior_close", "gap_pct", "intraday_range_pct", "intraday_return_pct",
		"total_return_pct", "close_position_in_range", "gap_filled",
		"return_5d", "return_20d", "prev_return_pct", "consecutive_days",
		"rsi_14", "atr_pct", "price_vs_ema21_pct", "price_vs_sma50_pct",
		"bb_upper", "bb_lower", "bb_position",
		"realized_vol_5d", "realized_vol_20d", "trend_score",
		"day_of_week", "month", "is_opex",
	}
	cols := newColumns(names, n)
	for i, r := range rows {
		setRow(cols, i,
			r.Ticker, r.Date,
			deref(r.PriorClose), deref(r.GapPct), deref(r.IntradayRangePct), deref(r.IntradayReturnPct),
			deref(r.TotalReturnPct), deref(r.ClosePositionInRange), deref(r.GapFilled),
			deref(r.Return5D), deref(r.Return20D), deref(r.PrevReturnPct), r.ConsecutiveDays,
			deref(r.RSI14), deref(r.ATRPct), deref(r.PriceVsEMA21Pct), deref(r.PriceVsSMA50Pct),
			deref(r.BBUpper), deref(r.BBLower), deref(r.BBPosition),
			deref(r.RealizedVol5D), deref(r.RealizedVol20D), deref(r.TrendScore),
			r.DayOfWeek, r.Month, r.IsOpex,
		)
	}
	if _, err := s.mergeRows(ctx, "market_data_daily", []string{"ticker", "date"}, cols, n); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateTier2 writes the volatility-context derived set per date.
func (s *DuckMarketStore) UpdateTier2(ctx context.Context, rows []models.Tier2Fields) (int, error) {
	n := len(rows)
	if n == 0 {
		return 0, nil
	}
	names := []string{
		"date",
		"vix_change_pct", "vix_gap_pct", "vix_spike_pct", "vix_rth_open",
		"vix9d_change_pct", "vix3m_change_pct",
		"vix9d_vix_ratio", "vix_vix3m_ratio",
		"vol_regime", "term_structure_state", "vix_percentile",
	}
	cols := newColumns(names, n)
	for i, r := range rows {
		setRow(cols, i,
			r.Date,
			deref(r.VIXChangePct), deref(r.VIXGapPct), deref(r.VIXSpikePct), deref(r.VIXRTHOpen),
			deref(r.VIX9DChangePct), deref(r.VIX3MChangePct),
			deref(r.VIX9DVIXRatio), deref(r.VIXVIX3MRatio),
			deref(r.VolRegime), deref(r.TermStructureState), deref(r.VIXPercentile),
		)
	}
	if _, err := s.mergeRows(ctx, "market_context", []string{"date"}, cols, n); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateTier3 writes the intraday-timing set per (ticker, date). Intraday
// coverage can extend past the daily series, so rows without a matching daily
// bar are dropped rather than inserted as OHLC-less phantoms.
func (s *DuckMarketStore) UpdateTier3(ctx context.Context, rows []models.Tier3Fields) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	rows, err := s.filterToDailyKeys(ctx, rows)
	if err != nil {
		return 0, err
	}
	n := len(rows)
	if n == 0 {
		return 0, nil
	}
	names := []string{
		"ticker", "date",
		"high_time", "low_time", "high_before_low", "reversal_type",
		"opening_drive_strength", "intraday_realized_vol",
	}
	cols := newColumns(names, n)
	for i, r := range rows {
		setRow(cols, i,
			r.Ticker, r.Date,
			deref(r.HighTime), deref(r.LowTime), deref(r.HighBeforeLow), r.ReversalType,
			deref(r.OpeningDriveStrength), deref(r.IntradayRealizedVol),
		)
	}
	if _, err := s.mergeRows(ctx, "market_data_daily", []string{"ticker", "date"}, cols, n); err != nil {
		return 0, err
	}
	return n, nil
}

// filterToDailyKeys keeps only rows whose (ticker, date) already exists in
// market_data_daily.
func (s *DuckMarketStore) filterToDailyKeys(ctx context.Context, rows []models.Tier3Fields) ([]models.Tier3Fields, error) {
	tickers := make(map[string]struct{}, 1)
	minDate, maxDate := rows[0].Date, rows[0].Date
	for _, r := range rows {
		tickers[r.Ticker] = struct{}{}
		if r.Date < minDate {
			minDate = r.Date
		}
		if r.Date > maxDate {
			maxDate = r.Date
		}
	}

	args := []any{minDate, maxDate}
	in := make([]string, 0, len(tickers))
	for t := range tickers {
		in = append(in, "?")
		args = append(args, t)
	}
	q := fmt.Sprintf(`SELECT ticker, CAST(date AS VARCHAR)
		FROM market_data_daily
		WHERE date >= ? AND date <= ? AND ticker IN (%s)`, strings.Join(in, ","))

	res, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("load daily keys: %w", err)
	}
	defer res.Close()

	exist := make(map[string]struct{})
	for res.Next() {
		var ticker, date string
		if err := res.Scan(&ticker, &date); err != nil {
			return nil, fmt.Errorf("scan daily key: %w", err)
		}
		exist[ticker+"|"+date] = struct{}{}
	}
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	kept := rows[:0:0]
	for _, r := range rows {
		if _, ok := exist[r.Ticker+"|"+r.Date]; ok {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

func newColumns(names []string, n int) []column {
	cols := make([]column, len(names))
	for i, name := range names {
		cols[i] = column{name: name, values: make([]any, n)}
	}
	return cols
}

func setRow(cols []column, i int, vals ...any) {
	for j, v := range vals {
		cols[j].values[i] = v
	}
}
