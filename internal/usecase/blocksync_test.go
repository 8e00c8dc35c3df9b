package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
)

const blockCSV = `Date Opened,Time Opened,P/L,Strategy
2025-06-20,09:32,125.00,Iron Condor
2025-06-23,10:01,-95.00,Iron Condor
`

func writeBlock(t *testing.T, root, blockID, content string) {
	t.Helper()
	dir := filepath.Join(root, blockID)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trades.csv"), []byte(content), 0o644))
}

func newTestSyncer(root string, blocks *fakeBlockStore, pub *fakePublisher) *BlockSyncer {
	return NewBlockSyncer(blocks, pub, noopMetrics{}, root, "trades.csv", testLogger())
}

func TestSyncAllNewBlocks(t *testing.T) {
	root := t.TempDir()
	writeBlock(t, root, "block-a", blockCSV)
	writeBlock(t, root, "block-b", blockCSV)
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".hidden"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "no-trade-file"), 0o755))

	blocks := newFakeBlockStore()
	pub := &fakePublisher{}
	summary, err := newTestSyncer(root, blocks, pub).SyncAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.BlocksProcessed)
	assert.Equal(t, 2, summary.BlocksSynced)
	assert.Empty(t, summary.Errors)
	assert.Len(t, blocks.trades["block-a"], 2)
	assert.Len(t, pub.byType(models.EventBlockSynced), 2)
}

func TestSyncAllUnchangedBlocksAreUntouched(t *testing.T) {
	root := t.TempDir()
	writeBlock(t, root, "block-a", blockCSV)

	blocks := newFakeBlockStore()
	syncer := newTestSyncer(root, blocks, &fakePublisher{})
	_, err := syncer.SyncAll(context.Background())
	require.NoError(t, err)
	firstRec := blocks.records["block-a"]

	summary, err := syncer.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.BlocksUnchanged)
	assert.Equal(t, 0, summary.BlocksSynced)
	// The stored record is untouched, not rewritten.
	assert.Equal(t, firstRec, blocks.records["block-a"])
}

func TestSyncAllDetectsChangedContent(t *testing.T) {
	root := t.TempDir()
	writeBlock(t, root, "block-a", blockCSV)

	blocks := newFakeBlockStore()
	syncer := newTestSyncer(root, blocks, &fakePublisher{})
	_, err := syncer.SyncAll(context.Background())
	require.NoError(t, err)

	writeBlock(t, root, "block-a", blockCSV+"2025-06-24,09:40,40.00,Iron Condor\n")
	summary, err := syncer.SyncAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.BlocksSynced)
	assert.Len(t, blocks.trades["block-a"], 3)
}

func TestSyncAllDeletesVanishedBlocks(t *testing.T) {
	root := t.TempDir()
	writeBlock(t, root, "block-a", blockCSV)

	blocks := newFakeBlockStore()
	pub := &fakePublisher{}
	syncer := newTestSyncer(root, blocks, pub)
	_, err := syncer.SyncAll(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(filepath.Join(root, "block-a")))
	summary, err := syncer.SyncAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.BlocksDeleted)
	assert.Empty(t, blocks.records)
	assert.Len(t, pub.byType(models.EventBlockDeleted), 1)
}

func TestSyncAllIsolatesPerBlockFailures(t *testing.T) {
	root := t.TempDir()
	writeBlock(t, root, "block-bad", "Strategy,Premium\nIC,1.0\n") // no core columns
	writeBlock(t, root, "block-good", blockCSV)

	blocks := newFakeBlockStore()
	summary, err := newTestSyncer(root, blocks, &fakePublisher{}).SyncAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.BlocksSynced)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "block-bad")
}

func TestSyncFailureAfterPriorSyncCleansUp(t *testing.T) {
	root := t.TempDir()
	writeBlock(t, root, "block-a", blockCSV)

	blocks := newFakeBlockStore()
	syncer := newTestSyncer(root, blocks, &fakePublisher{})
	_, err := syncer.SyncAll(context.Background())
	require.NoError(t, err)

	// The replace fails on the changed content; stale rows must not survive
	// under the old fingerprint.
	writeBlock(t, root, "block-a", blockCSV+"2025-06-24,09:40,40.00,Iron Condor\n")
	blocks.replaceErr = errors.New("disk full")

	summary, err := syncer.SyncAll(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, blocks.deleted, "block-a")
	assert.Empty(t, blocks.trades["block-a"])
}

func TestSyncBlockSingle(t *testing.T) {
	root := t.TempDir()
	writeBlock(t, root, "block-a", blockCSV)

	blocks := newFakeBlockStore()
	syncer := newTestSyncer(root, blocks, &fakePublisher{})

	res, err := syncer.SyncBlock(context.Background(), "block-a")
	require.NoError(t, err)
	assert.Equal(t, models.BlockSynced, res.Status)
	assert.Equal(t, 2, res.TradeCount)

	res, err = syncer.SyncBlock(context.Background(), "block-a")
	require.NoError(t, err)
	assert.Equal(t, models.BlockUnchanged, res.Status)

	require.NoError(t, os.RemoveAll(filepath.Join(root, "block-a")))
	res, err = syncer.SyncBlock(context.Background(), "block-a")
	require.NoError(t, err)
	assert.Equal(t, models.BlockDeleted, res.Status)

	// No folder and no record: structurally unknown.
	_, err = syncer.SyncBlock(context.Background(), "block-a")
	assert.Error(t, err)

	_, err = syncer.SyncBlock(context.Background(), "../escape")
	assert.Error(t, err)
}
