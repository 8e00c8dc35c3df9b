package models

import "time"

// Trade is one executed or backtested position from a trade-log block.
// BlockID ties the row to the source folder it was synced from; the row's
// lifecycle is 1:1 with that folder's existence and content.
type Trade struct {
	BlockID             string
	Strategy            string
	DateOpened          string
	TimeOpened          string
	DateClosed          *string
	TimeClosed          *string
	Premium             *float64
	PL                  float64
	NumContracts        *int
	MarginReq           *float64
	ReasonForClose      *string
	OpeningCommissions  *float64
	ClosingCommissions  *float64
	FundsAtClose        *float64
}

// BlockRecord is the stored sync fingerprint for one trade block. It is the
// sole authority for change detection: no record for an existing folder
// means the folder is treated as new.
type BlockRecord struct {
	BlockID      string    `json:"block_id"`
	ContentHash  string    `json:"content_hash"`
	TradeCount   int       `json:"trade_count"`
	LastSyncedAt time.Time `json:"last_synced_at"`
}

// BlockStatus classifies one block during a sync pass.
type BlockStatus string

const (
	BlockSynced    BlockStatus = "synced"
	BlockUnchanged BlockStatus = "unchanged"
	BlockDeleted   BlockStatus = "deleted"
	BlockError     BlockStatus = "error"
)

// BlockSyncResult is the outcome of syncing a single block.
type BlockSyncResult struct {
	BlockID    string      `json:"block_id"`
	Status     BlockStatus `json:"status"`
	TradeCount int         `json:"trade_count,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// SyncSummary aggregates a full sync pass over the trade-data root. Isolated
// per-block failures land in Errors; they never abort the pass.
type SyncSummary struct {
	BlocksProcessed int      `json:"blocks_processed"`
	BlocksSynced    int      `json:"blocks_synced"`
	BlocksUnchanged int      `json:"blocks_unchanged"`
	BlocksDeleted   int      `json:"blocks_deleted"`
	Errors          []string `json:"errors"`
}
