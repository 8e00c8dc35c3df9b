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

// DuckBlockStore owns trade rows and block fingerprints in DuckDB.
type DuckBlockStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewDuckBlockStore(dk *pkgduck.Client) *DuckBlockStore {
	return &DuckBlockStore{db: dk.DB()}
}

// SetLogger injects a structured logger.
func (s *DuckBlockStore) SetLogger(l *applogger.Logger) { s.l = l }

// Fingerprints returns every stored block record keyed by block id.
func (s *DuckBlockStore) Fingerprints(ctx context.Context) (map[string]models.BlockRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT block_id, content_hash, trade_count, last_synced_at FROM block_sync")
	if err != nil {
		return nil, fmt.Errorf("fingerprints: %w", err)
	}
	defer rows.Close()

	out := make(map[string]models.BlockRecord)
	for rows.Next() {
		var rec models.BlockRecord
		if err := rows.Scan(&rec.BlockID, &rec.ContentHash, &rec.TradeCount, &rec.LastSyncedAt); err != nil {
			return nil, fmt.Errorf("scan block record: %w", err)
		}
		out[rec.BlockID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// ReplaceBlock swaps all trade rows for a block and upserts its fingerprint
// in one transaction. Concurrent readers see either the complete old rows or
// the complete new rows, never a partial mix.
func (s *DuckBlockStore) ReplaceBlock(ctx context.Context, rec models.BlockRecord, trades []models.Trade) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM trades WHERE block_id = ?", rec.BlockID); err != nil {
		return fmt.Errorf("delete block rows: %w", err)
	}

	if err := insertTrades(ctx, tx, trades); err != nil {
		return err
	}

	const upsert = `INSERT INTO block_sync (block_id, content_hash, trade_count, last_synced_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (block_id) DO UPDATE SET
			content_hash = excluded.content_hash,
			trade_count = excluded.trade_count,
			last_synced_at = excluded.last_synced_at`
	if _, err := tx.ExecContext(ctx, upsert, rec.BlockID, rec.ContentHash, len(trades), time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert fingerprint: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}

	if s.l != nil {
		s.l.Info("block replaced",
			applogger.String("block_id", rec.BlockID),
			applogger.Int("trades", len(trades)),
		)
	}
	return nil
}

func insertTrades(ctx context.Context, tx *sql.Tx, trades []models.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	const nCols = 14
	const row = "(?,?,?,?,?,?,?,?,?,?,?,?,?,?)"

	for off := 0; off < len(trades); off += mergeBatchSize {
		end := off + mergeBatchSize
		if end > len(trades) {
			end = len(trades)
		}
		batch := trades[off:end]

		q := `INSERT INTO trades (block_id, strategy, date_opened, time_opened,
			date_closed, time_closed, premium, pl, num_contracts, margin_req,
			reason_for_close, opening_commissions, closing_commissions, funds_at_close)
			VALUES ` + strings.TrimSuffix(strings.Repeat(row+",", len(batch)), ",")

		args := make([]any, 0, len(batch)*nCols)
		for _, t := range batch {
			args = append(args,
				t.BlockID, t.Strategy, t.DateOpened, t.TimeOpened,
				deref(t.DateClosed), deref(t.TimeClosed), deref(t.Premium), t.PL,
				deref(t.NumContracts), deref(t.MarginReq), deref(t.ReasonForClose),
				deref(t.OpeningCommissions), deref(t.ClosingCommissions), deref(t.FundsAtClose),
			)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert trades: %w", err)
		}
	}
	return nil
}

// DeleteBlock removes all trade rows and the fingerprint record for a block.
func (s *DuckBlockStore) DeleteBlock(ctx context.Context, blockID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM trades WHERE block_id = ?", blockID); err != nil {
		return fmt.Errorf("delete block rows: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM block_sync WHERE block_id = ?", blockID); err != nil {
		return fmt.Errorf("delete fingerprint: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}

	if s.l != nil {
		s.l.Info("block deleted", applogger.String("block_id", blockID))
	}
	return nil
}

// TradeCount returns the number of trade rows stored for a block.
func (s *DuckBlockStore) TradeCount(ctx context.Context, blockID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM trades WHERE block_id = ?", blockID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("trade count: %w", err)
	}
	return n, nil
}
