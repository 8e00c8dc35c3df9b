package models

// DailyBar is one raw daily OHLC row for a ticker. Dates are calendar days
// in the exchange time zone, formatted YYYY-MM-DD.
type DailyBar struct {
	Ticker string
	Date   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume *float64
}

// ContextBar is the global (not per-ticker) volatility context row for one
// trading day. Every field except Date is optional: context sources are
// layered in over time and each source may supply a different subset.
type ContextBar struct {
	Date       string
	VIXOpen    *float64
	VIXHigh    *float64
	VIXLow     *float64
	VIXClose   *float64
	VIX9DOpen  *float64
	VIX9DClose *float64
	VIX3MOpen  *float64
	VIX3MClose *float64
}

// IntradayBar is one intraday OHLC checkpoint bar. Time is HH:MM clock time
// in the exchange time zone. Intraday bars are never mutated by enrichment.
type IntradayBar struct {
	Ticker string
	Date   string
	Time   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
}

// MergeStats reports the outcome of one batched merge. Counts are derived
// from table row counts before and after, not from per-row conflict
// bookkeeping, so they stay correct across mixed insert/upsert batches.
type MergeStats struct {
	Inserted int64 `json:"rows_inserted"`
	Updated  int64 `json:"rows_updated"`
	Skipped  int64 `json:"rows_skipped"`
}

// Add accumulates stats from another batch.
func (s *MergeStats) Add(o MergeStats) {
	s.Inserted += o.Inserted
	s.Updated += o.Updated
	s.Skipped += o.Skipped
}
