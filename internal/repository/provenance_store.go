package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
	pkgduck "github.com/davidromeo/tradeblocks-sub006/pkg/duckdb"
)

// enrichmentSource is the import_log source key under which the per-ticker
// enrichment watermark lives.
const enrichmentSource = "enrichment"

// DuckProvenanceStore persists import provenance and enrichment watermarks.
type DuckProvenanceStore struct {
	db *sql.DB
}

func NewDuckProvenanceStore(dk *pkgduck.Client) *DuckProvenanceStore {
	return &DuckProvenanceStore{db: dk.DB()}
}

// RecordImport upserts the provenance row for (source, ticker, table),
// advancing max_date_imported monotonically.
func (s *DuckProvenanceStore) RecordImport(ctx context.Context, source, ticker string, table models.TargetTable, maxDate string) error {
	const q = `INSERT INTO import_log (source, ticker, target_table, max_date_imported, synced_at)
		VALUES (?, ?, ?, CAST(? AS DATE), ?)
		ON CONFLICT (source, ticker, target_table) DO UPDATE SET
			max_date_imported = GREATEST(COALESCE(import_log.max_date_imported, excluded.max_date_imported), excluded.max_date_imported),
			synced_at = excluded.synced_at`
	if _, err := s.db.ExecContext(ctx, q, source, ticker, string(table), maxDate, time.Now().UTC()); err != nil {
		return fmt.Errorf("record import: %w", err)
	}
	return nil
}

// EnrichedThrough returns the tier-1 watermark for a ticker. ok is false when
// no watermark exists yet.
func (s *DuckProvenanceStore) EnrichedThrough(ctx context.Context, ticker string) (string, bool, error) {
	const q = `SELECT CAST(enriched_through AS VARCHAR) FROM import_log
		WHERE source = ? AND ticker = ? AND target_table = ?`
	var d sql.NullString
	err := s.db.QueryRowContext(ctx, q, enrichmentSource, ticker, string(models.TableDaily)).Scan(&d)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("enriched through: %w", err)
	}
	if !d.Valid || d.String == "" {
		return "", false, nil
	}
	return d.String, true, nil
}

// SetEnrichedThrough advances the watermark. GREATEST keeps it monotonic even
// if two runs race; only ResetEnrichment can move it backwards.
func (s *DuckProvenanceStore) SetEnrichedThrough(ctx context.Context, ticker, date string) error {
	const q = `INSERT INTO import_log (source, ticker, target_table, enriched_through, synced_at)
		VALUES (?, ?, ?, CAST(? AS DATE), ?)
		ON CONFLICT (source, ticker, target_table) DO UPDATE SET
			enriched_through = GREATEST(COALESCE(import_log.enriched_through, excluded.enriched_through), excluded.enriched_through),
			synced_at = excluded.synced_at`
	if _, err := s.db.ExecContext(ctx, q, enrichmentSource, ticker, string(models.TableDaily), date, time.Now().UTC()); err != nil {
		return fmt.Errorf("set enriched through: %w", err)
	}
	return nil
}

// ResetEnrichment clears the watermark, forcing the next tier-1 run to
// reprocess from the beginning.
func (s *DuckProvenanceStore) ResetEnrichment(ctx context.Context, ticker string) error {
	const q = `UPDATE import_log SET enriched_through = NULL, synced_at = ?
		WHERE source = ? AND ticker = ? AND target_table = ?`
	if _, err := s.db.ExecContext(ctx, q, time.Now().UTC(), enrichmentSource, ticker, string(models.TableDaily)); err != nil {
		return fmt.Errorf("reset enrichment: %w", err)
	}
	return nil
}
