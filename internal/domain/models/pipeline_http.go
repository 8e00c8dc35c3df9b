package models

// Requests for the pipeline HTTP endpoints. Defined in domain for consistency and reuse.

type FileImportRequest struct {
	FilePath       string            `json:"file_path" validate:"required"`
	Ticker         string            `json:"ticker"`
	TargetTable    string            `json:"target_table" validate:"required,oneof=market_data_daily market_context market_data_intraday"`
	ColumnMapping  map[string]string `json:"column_mapping" validate:"required,min=1"`
	DryRun         bool              `json:"dry_run"`
	SkipEnrichment bool              `json:"skip_enrichment"`
}

type DBImportRequest struct {
	DBPath         string            `json:"db_path" validate:"required"`
	Query          string            `json:"query" validate:"required"`
	Ticker         string            `json:"ticker"`
	TargetTable    string            `json:"target_table" validate:"required,oneof=market_data_daily market_context market_data_intraday"`
	ColumnMapping  map[string]string `json:"column_mapping" validate:"required,min=1"`
	DryRun         bool              `json:"dry_run"`
	SkipEnrichment bool              `json:"skip_enrichment"`
}

type ClickHouseImportRequest struct {
	DSN            string            `json:"dsn" validate:"required"`
	Query          string            `json:"query" validate:"required"`
	Ticker         string            `json:"ticker"`
	TargetTable    string            `json:"target_table" validate:"required,oneof=market_data_daily market_context market_data_intraday"`
	ColumnMapping  map[string]string `json:"column_mapping" validate:"required,min=1"`
	DryRun         bool              `json:"dry_run"`
	SkipEnrichment bool              `json:"skip_enrichment"`
}

type EnrichRequest struct {
	ForceFull bool `json:"force_full"`
}

type DetectRequest struct {
	FilePath string `json:"file_path" validate:"required"`
}

type DetectResponse struct {
	DetectedType DetectedType `json:"detected_type"`
	Headers      []string     `json:"headers"`
}

type EntryQueryRequest struct {
	Ticker string   `query:"ticker" json:"ticker" validate:"required"`
	Dates  []string `query:"dates" json:"dates" validate:"required,min=1,dive,datetime=2006-01-02"`
}

type CheckpointsRequest struct {
	Source string `query:"source" json:"source" validate:"required"`
	Clock  string `query:"clock" json:"clock" validate:"required"`
}
