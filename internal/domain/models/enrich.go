package models

// TierStatus is the outcome of one enrichment tier.
type TierStatus string

const (
	TierComplete TierStatus = "complete"
	TierSkipped  TierStatus = "skipped"
	TierError    TierStatus = "error"
)

// TierResult reports one tier of an enrichment run. A skipped tier carries
// the reason it was skipped; a failed tier carries the error message. One
// tier failing never invalidates results another tier already committed.
type TierResult struct {
	Status        TierStatus `json:"status"`
	FieldsWritten int        `json:"fields_written,omitempty"`
	Reason        string     `json:"reason,omitempty"`
}

// EnrichmentResult is the per-ticker outcome of a full enrichment run.
type EnrichmentResult struct {
	Ticker          string     `json:"ticker"`
	Tier1           TierResult `json:"tier1"`
	Tier2           TierResult `json:"tier2"`
	Tier3           TierResult `json:"tier3"`
	RowsEnriched    int        `json:"rows_enriched"`
	EnrichedThrough string     `json:"enriched_through,omitempty"`
}

// Tier1Fields holds the per-ticker daily indicator set written by tier 1.
// The whole set is written in one batch per row; a daily row is either
// enriched through the watermark or not enriched at all.
type Tier1Fields struct {
	Ticker string
	Date   string

	PriorClose           *float64
	GapPct               *float64
	IntradayRangePct     *float64
	IntradayReturnPct    *float64
	TotalReturnPct       *float64
	ClosePositionInRange *float64
	GapFilled            *int
	Return5D             *float64
	Return20D            *float64
	PrevReturnPct        *float64
	ConsecutiveDays      int
	RSI14                *float64
	ATRPct               *float64
	PriceVsEMA21Pct      *float64
	PriceVsSMA50Pct      *float64
	BBUpper              *float64
	BBLower              *float64
	BBPosition           *float64
	RealizedVol5D        *float64
	RealizedVol20D       *float64
	TrendScore           *int
	DayOfWeek            int
	Month                int
	IsOpex               int
}

// Tier2Fields holds the global volatility-context derived set for one day.
type Tier2Fields struct {
	Date string

	VIXChangePct       *float64
	VIXGapPct          *float64
	VIXSpikePct        *float64
	VIXRTHOpen         *float64
	VIX9DChangePct     *float64
	VIX3MChangePct     *float64
	VIX9DVIXRatio      *float64
	VIXVIX3MRatio      *float64
	VolRegime          *int
	TermStructureState *int
	VIXPercentile      *float64
}

// Tier3Fields holds the intraday-timing set for one ticker-day, derived
// from that day's intraday bars.
type Tier3Fields struct {
	Ticker string
	Date   string

	HighTime             *float64
	LowTime              *float64
	HighBeforeLow        *int
	ReversalType         int
	OpeningDriveStrength *float64
	IntradayRealizedVol  *float64
}
