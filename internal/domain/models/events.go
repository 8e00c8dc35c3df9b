package models

import "time"

// Pipeline event types published to the events topic and the status feed.
const (
	EventImportCompleted     = "import.completed"
	EventBlockSynced         = "block.synced"
	EventBlockDeleted        = "block.deleted"
	EventEnrichmentRequested = "enrichment.requested"
	EventEnrichmentCompleted = "enrichment.completed"
)

// PipelineEvent is one lifecycle notification from the pipeline. Ticker or
// BlockID is set depending on the event type; Payload carries the operation
// result for subscribers that want detail.
type PipelineEvent struct {
	Type      string      `json:"type"`
	Ticker    string      `json:"ticker,omitempty"`
	BlockID   string      `json:"block_id,omitempty"`
	Table     string      `json:"table,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
