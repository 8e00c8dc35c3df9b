package models

// TargetTable identifies one of the normalized store tables an import can
// write into.
type TargetTable string

const (
	TableDaily    TargetTable = "market_data_daily"
	TableContext  TargetTable = "market_context"
	TableIntraday TargetTable = "market_data_intraday"
)

// Valid reports whether t names an importable table.
func (t TargetTable) Valid() bool {
	switch t {
	case TableDaily, TableContext, TableIntraday:
		return true
	}
	return false
}

// ColumnMapping maps source column names to canonical schema field names.
type ColumnMapping map[string]string

// EnrichmentStatus is the status of the enrichment trigger that follows an
// import.
type EnrichmentStatus struct {
	Status  string `json:"status"` // pending, complete, skipped, error
	Message string `json:"message,omitempty"`
}

// DateRange is the inclusive date span covered by an import.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ImportResult reports one file or database import.
type ImportResult struct {
	RowsInserted  int64            `json:"rows_inserted"`
	RowsUpdated   int64            `json:"rows_updated"`
	RowsSkipped   int64            `json:"rows_skipped"`
	RowsDropped   int              `json:"rows_dropped"`
	InputRowCount int              `json:"input_row_count"`
	DateRange     DateRange        `json:"date_range"`
	DryRun        bool             `json:"dry_run,omitempty"`
	Enrichment    EnrichmentStatus `json:"enrichment"`
}

// DetectedType is the outcome of the best-effort CSV type sniff. Unrecognized
// is a first-class answer; the sniffer never forces a classification into a
// write path.
type DetectedType string

const (
	DetectedDaily        DetectedType = "daily"
	DetectedContext      DetectedType = "context"
	DetectedIntraday     DetectedType = "intraday"
	DetectedTradeLog     DetectedType = "trade_log"
	DetectedUnrecognized DetectedType = "unrecognized"
)
