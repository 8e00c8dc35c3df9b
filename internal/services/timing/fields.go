package timing

// Knowledge says when a stored field's value becomes observable relative to
// the trading session it describes.
type Knowledge int

const (
	// KnownAtOpen fields are derivable before or at the session open.
	KnownAtOpen Knowledge = iota
	// KnownAtClose fields only exist once the session has closed.
	KnownAtClose
	// Static fields are calendar facts, known arbitrarily far in advance.
	Static
)

// Field pairs a stored column name with its timing classification.
type Field struct {
	Name      string
	Knowledge Knowledge
}

// The classification is a fixed property of each column, loaded once per
// process. A new column added to the schema without an entry here is a bug;
// the tests cross-check the two lists.
var dailyFields = []Field{
	{"open", KnownAtOpen},
	{"high", KnownAtClose},
	{"low", KnownAtClose},
	{"close", KnownAtClose},
	{"volume", KnownAtClose},
	{"prior_close", KnownAtOpen},
	{"gap_pct", KnownAtOpen},
	{"intraday_range_pct", KnownAtClose},
	{"intraday_return_pct", KnownAtClose},
	{"total_return_pct", KnownAtClose},
	{"close_position_in_range", KnownAtClose},
	{"gap_filled", KnownAtClose},
	{"return_5d", KnownAtClose},
	{"return_20d", KnownAtClose},
	{"prev_return_pct", KnownAtOpen},
	{"consecutive_days", KnownAtClose},
	{"rsi_14", KnownAtClose},
	{"atr_pct", KnownAtClose},
	{"price_vs_ema21_pct", KnownAtClose},
	{"price_vs_sma50_pct", KnownAtClose},
	{"bb_upper", KnownAtClose},
	{"bb_lower", KnownAtClose},
	{"bb_position", KnownAtClose},
	{"realized_vol_5d", KnownAtClose},
	{"realized_vol_20d", KnownAtClose},
	{"trend_score", KnownAtClose},
	{"day_of_week", Static},
	{"month", Static},
	{"is_opex", Static},
	{"high_time", KnownAtClose},
	{"low_time", KnownAtClose},
	{"high_before_low", KnownAtClose},
	{"reversal_type", KnownAtClose},
	{"opening_drive_strength", KnownAtClose},
	{"intraday_realized_vol", KnownAtClose},
}

var contextFields = []Field{
	{"vix_open", KnownAtOpen},
	{"vix_high", KnownAtClose},
	{"vix_low", KnownAtClose},
	{"vix_close", KnownAtClose},
	{"vix9d_open", KnownAtOpen},
	{"vix9d_close", KnownAtClose},
	{"vix3m_open", KnownAtOpen},
	{"vix3m_close", KnownAtClose},
	{"vix_change_pct", KnownAtClose},
	{"vix_gap_pct", KnownAtOpen},
	{"vix_spike_pct", KnownAtClose},
	{"vix_rth_open", KnownAtOpen},
	{"vix9d_change_pct", KnownAtClose},
	{"vix3m_change_pct", KnownAtClose},
	{"vix9d_vix_ratio", KnownAtClose},
	{"vix_vix3m_ratio", KnownAtClose},
	{"vol_regime", KnownAtClose},
	{"term_structure_state", KnownAtClose},
	{"vix_percentile", KnownAtClose},
}

// DailyFields returns the classification for the per-ticker daily table, in
// schema order.
func DailyFields() []Field { return dailyFields }

// ContextFields returns the classification for the global context table, in
// schema order.
func ContextFields() []Field { return contextFields }

// Lookup finds a field's classification by column name.
func Lookup(fields []Field, name string) (Knowledge, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f.Knowledge, true
		}
	}
	return 0, false
}

// Split partitions fields into those safe to read same-day at entry time
// (open-known and static) and those that must be lagged to the prior trading
// day (close-known).
func Split(fields []Field) (sameDay, lagged []string) {
	for _, f := range fields {
		if f.Knowledge == KnownAtClose {
			lagged = append(lagged, f.Name)
			continue
		}
		sameDay = append(sameDay, f.Name)
	}
	return sameDay, lagged
}
