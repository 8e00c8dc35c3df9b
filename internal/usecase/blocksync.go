package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
	drepo "github.com/davidromeo/tradeblocks-sub006/internal/domain/repository"
	applogger "github.com/davidromeo/tradeblocks-sub006/pkg/logger"
)

// BlockSyncer mirrors the trade-block folders under a root directory into
// the store. Block id is the folder name; change detection runs on a
// content hash of the block's trade file.
type BlockSyncer struct {
	blocks    drepo.BlockStore
	events    drepo.EventPublisher
	metrics   drepo.Metrics
	root      string
	tradeFile string
	l         *applogger.Logger
}

// NewBlockSyncer wires the sync layer. tradeFile is the file a folder must
// contain to count as a block (default trades.csv).
func NewBlockSyncer(
	blocks drepo.BlockStore,
	events drepo.EventPublisher,
	metrics drepo.Metrics,
	root, tradeFile string,
	l *applogger.Logger,
) *BlockSyncer {
	if tradeFile == "" {
		tradeFile = "trades.csv"
	}
	return &BlockSyncer{blocks: blocks, events: events, metrics: metrics, root: root, tradeFile: tradeFile, l: l}
}

// SyncAll reconciles every block folder with the store. Individual block
// failures accumulate in the summary's error list; only a structural
// failure (unreadable root, unreadable fingerprints) fails the whole call.
func (s *BlockSyncer) SyncAll(ctx context.Context) (models.SyncSummary, error) {
	var summary models.SyncSummary

	present, err := s.listBlocks()
	if err != nil {
		return summary, fmt.Errorf("enumerate block root %s: %w", s.root, err)
	}
	stored, err := s.blocks.Fingerprints(ctx)
	if err != nil {
		return summary, fmt.Errorf("read stored fingerprints: %w", err)
	}

	for _, blockID := range present {
		summary.BlocksProcessed++
		res := s.syncOne(ctx, blockID, stored)
		switch res.Status {
		case models.BlockSynced:
			summary.BlocksSynced++
		case models.BlockUnchanged:
			summary.BlocksUnchanged++
		case models.BlockError:
			summary.Errors = append(summary.Errors, blockID+": "+res.Error)
		}
	}

	presentSet := make(map[string]bool, len(present))
	for _, id := range present {
		presentSet[id] = true
	}
	for blockID := range stored {
		if presentSet[blockID] {
			continue
		}
		if err := s.deleteBlock(ctx, blockID); err != nil {
			summary.Errors = append(summary.Errors, blockID+": "+err.Error())
			continue
		}
		summary.BlocksDeleted++
	}

	s.l.Info("block sync complete",
		applogger.Int("processed", summary.BlocksProcessed),
		applogger.Int("synced", summary.BlocksSynced),
		applogger.Int("unchanged", summary.BlocksUnchanged),
		applogger.Int("deleted", summary.BlocksDeleted),
		applogger.Int("errors", len(summary.Errors)))
	return summary, nil
}

// SyncBlock reconciles a single block. Calling it repeatedly once the block
// has stabilized is a no-op reporting unchanged.
func (s *BlockSyncer) SyncBlock(ctx context.Context, blockID string) (models.BlockSyncResult, error) {
	if strings.ContainsAny(blockID, `/\`) || strings.HasPrefix(blockID, ".") {
		return models.BlockSyncResult{}, fmt.Errorf("invalid block id %q", blockID)
	}

	stored, err := s.blocks.Fingerprints(ctx)
	if err != nil {
		return models.BlockSyncResult{}, fmt.Errorf("read stored fingerprints: %w", err)
	}

	if _, statErr := os.Stat(filepath.Join(s.root, blockID, s.tradeFile)); statErr != nil {
		if _, known := stored[blockID]; !known {
			return models.BlockSyncResult{}, fmt.Errorf("unknown block %q: no folder and no sync record", blockID)
		}
		if err := s.deleteBlock(ctx, blockID); err != nil {
			return models.BlockSyncResult{BlockID: blockID, Status: models.BlockError, Error: err.Error()}, nil
		}
		return models.BlockSyncResult{BlockID: blockID, Status: models.BlockDeleted}, nil
	}

	return s.syncOne(ctx, blockID, stored), nil
}

// listBlocks enumerates non-hidden subfolders containing the trade file.
func (s *BlockSyncer) listBlocks() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, e.Name(), s.tradeFile)); err != nil {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

func (s *BlockSyncer) syncOne(ctx context.Context, blockID string, stored map[string]models.BlockRecord) models.BlockSyncResult {
	res := models.BlockSyncResult{BlockID: blockID}

	// Hash and parse run over the same read so the fingerprint always
	// matches the content that was synced.
	content, err := os.ReadFile(filepath.Join(s.root, blockID, s.tradeFile))
	if err != nil {
		return s.fail(ctx, blockID, stored, fmt.Errorf("read trade file: %w", err))
	}
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	if rec, ok := stored[blockID]; ok && rec.ContentHash == hash {
		res.Status = models.BlockUnchanged
		res.TradeCount = rec.TradeCount
		s.metrics.RecordBlockSync(string(models.BlockUnchanged))
		return res
	}

	trades, dropped, err := ParseTradeLog(blockID, content)
	if err != nil {
		return s.fail(ctx, blockID, stored, err)
	}
	for reason, n := range dropped {
		s.metrics.RecordRowsDropped("trades", reason, n)
		s.l.Warn("trade rows dropped",
			applogger.String("block", blockID),
			applogger.String("reason", reason),
			applogger.Int("count", n))
	}

	rec := models.BlockRecord{
		BlockID:      blockID,
		ContentHash:  hash,
		TradeCount:   len(trades),
		LastSyncedAt: time.Now().UTC(),
	}
	if err := s.blocks.ReplaceBlock(ctx, rec, trades); err != nil {
		return s.fail(ctx, blockID, stored, fmt.Errorf("replace block: %w", err))
	}

	res.Status = models.BlockSynced
	res.TradeCount = len(trades)
	s.metrics.RecordBlockSync(string(models.BlockSynced))
	s.publish(ctx, models.PipelineEvent{
		Type:      models.EventBlockSynced,
		BlockID:   blockID,
		Payload:   res,
		Timestamp: time.Now().UTC(),
	})
	return res
}

// fail applies the cleanup-on-failure policy: once a block's source can no
// longer be trusted, previously synced rows are removed rather than left
// stale under a fingerprint that no longer matches the folder.
func (s *BlockSyncer) fail(ctx context.Context, blockID string, stored map[string]models.BlockRecord, err error) models.BlockSyncResult {
	if _, wasSynced := stored[blockID]; wasSynced {
		if derr := s.blocks.DeleteBlock(ctx, blockID); derr != nil {
			s.l.Error("cleanup after failed sync",
				applogger.String("block", blockID),
				applogger.Error(derr))
		}
	}
	s.metrics.RecordBlockSync(string(models.BlockError))
	s.metrics.RecordError("block_sync")
	s.l.Error("block sync failed", applogger.String("block", blockID), applogger.Error(err))
	return models.BlockSyncResult{BlockID: blockID, Status: models.BlockError, Error: err.Error()}
}

func (s *BlockSyncer) deleteBlock(ctx context.Context, blockID string) error {
	if err := s.blocks.DeleteBlock(ctx, blockID); err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	s.metrics.RecordBlockSync(string(models.BlockDeleted))
	s.publish(ctx, models.PipelineEvent{
		Type:      models.EventBlockDeleted,
		BlockID:   blockID,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

func (s *BlockSyncer) publish(ctx context.Context, ev models.PipelineEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.l.Warn("publish pipeline event", applogger.String("type", ev.Type), applogger.Error(err))
	}
}
