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

const dailyCSV = `Date,Open,High,Low,Close,Volume
2025-06-20,100,101,99,100.5,1200
garbage,1,1,1,1,1
2025-06-23,100.5,102,100,101.5,900
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestImporter(store *fakeMarketStore, prov *fakeProvenance, pub *fakePublisher, async bool) *Importer {
	enricher := NewEnricher(store, prov, pub, noopMetrics{}, "VIX", testLogger())
	return NewImporter(store, prov, pub, noopMetrics{}, nil, nil, enricher, async, testLogger())
}

func dailyRequest(path string) models.FileImportRequest {
	return models.FileImportRequest{
		FilePath:    path,
		Ticker:      "spy",
		TargetTable: string(models.TableDaily),
		ColumnMapping: map[string]string{
			"Date": "date", "Open": "open", "High": "high",
			"Low": "low", "Close": "close", "Volume": "volume",
		},
	}
}

func TestImportFileDaily(t *testing.T) {
	store := newFakeMarketStore()
	prov := newFakeProvenance()
	pub := &fakePublisher{}
	imp := newTestImporter(store, prov, pub, false)

	res, err := imp.ImportFile(context.Background(), dailyRequest(writeCSV(t, dailyCSV)))
	require.NoError(t, err)

	assert.Equal(t, 3, res.InputRowCount)
	assert.Equal(t, 1, res.RowsDropped)
	assert.Equal(t, int64(2), res.RowsInserted)
	assert.Equal(t, models.DateRange{From: "2025-06-20", To: "2025-06-23"}, res.DateRange)
	assert.Equal(t, "complete", res.Enrichment.Status)

	// The ticker is normalized at the boundary and injected per row.
	require.Len(t, store.daily["SPY"], 2)
	require.Len(t, prov.imports, 1)
	assert.Contains(t, prov.imports[0], "|SPY|market_data_daily|2025-06-23")
	assert.Len(t, pub.byType(models.EventImportCompleted), 1)
}

func TestImportFileDryRunWritesNothing(t *testing.T) {
	store := newFakeMarketStore()
	prov := newFakeProvenance()
	imp := newTestImporter(store, prov, &fakePublisher{}, false)

	req := dailyRequest(writeCSV(t, dailyCSV))
	req.DryRun = true
	res, err := imp.ImportFile(context.Background(), req)
	require.NoError(t, err)

	// Parsing ran: the caller learns the would-be row count and date range.
	assert.Equal(t, 3, res.InputRowCount)
	assert.Equal(t, "2025-06-23", res.DateRange.To)
	assert.True(t, res.DryRun)
	assert.Equal(t, int64(0), res.RowsInserted)
	assert.Equal(t, "skipped", res.Enrichment.Status)

	assert.Empty(t, store.daily)
	assert.Empty(t, prov.imports)
}

func TestImportFileSkipEnrichment(t *testing.T) {
	imp := newTestImporter(newFakeMarketStore(), newFakeProvenance(), &fakePublisher{}, false)

	req := dailyRequest(writeCSV(t, dailyCSV))
	req.SkipEnrichment = true
	res, err := imp.ImportFile(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "skipped", res.Enrichment.Status)
}

func TestImportFileAsyncEnrichmentIsPending(t *testing.T) {
	pub := &fakePublisher{}
	imp := newTestImporter(newFakeMarketStore(), newFakeProvenance(), pub, true)

	res, err := imp.ImportFile(context.Background(), dailyRequest(writeCSV(t, dailyCSV)))
	require.NoError(t, err)

	assert.Equal(t, "pending", res.Enrichment.Status)
	requests := pub.byType(models.EventEnrichmentRequested)
	require.Len(t, requests, 1)
	assert.Equal(t, "SPY", requests[0].Ticker)
}

func TestImportFileInvalidMappingFailsBeforeRead(t *testing.T) {
	imp := newTestImporter(newFakeMarketStore(), newFakeProvenance(), &fakePublisher{}, false)

	req := dailyRequest(filepath.Join(t.TempDir(), "missing.csv"))
	req.ColumnMapping = map[string]string{"Date": "date"}
	_, err := imp.ImportFile(context.Background(), req)
	// The mapping check fires before the (nonexistent) file is opened.
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidMapping))
}

func TestImportFileRequiresTickerForTickerTables(t *testing.T) {
	imp := newTestImporter(newFakeMarketStore(), newFakeProvenance(), &fakePublisher{}, false)

	req := dailyRequest(writeCSV(t, dailyCSV))
	req.Ticker = ""
	_, err := imp.ImportFile(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidMapping))
}

func TestImportFileContext(t *testing.T) {
	store := newFakeMarketStore()
	imp := newTestImporter(store, newFakeProvenance(), &fakePublisher{}, false)

	path := writeCSV(t, "Date,VIX Close\n2025-06-20,14.5\n2025-06-23,15.1\n")
	res, err := imp.ImportFile(context.Background(), models.FileImportRequest{
		FilePath:      path,
		TargetTable:   string(models.TableContext),
		ColumnMapping: map[string]string{"Date": "date", "VIX Close": "vix_close"},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), res.RowsInserted)
	// Context imports trigger the global tier directly.
	assert.Equal(t, "complete", res.Enrichment.Status)
	assert.Len(t, store.tier2Writes, 2)
}

func TestDetectReportsTypeAndHeaders(t *testing.T) {
	imp := newTestImporter(newFakeMarketStore(), newFakeProvenance(), &fakePublisher{}, false)

	res, err := imp.Detect(context.Background(), writeCSV(t, dailyCSV))
	require.NoError(t, err)
	assert.Equal(t, models.DetectedDaily, res.DetectedType)
	assert.Equal(t, []string{"Date", "Open", "High", "Low", "Close", "Volume"}, res.Headers)
}

func TestImportFileIdempotentReRun(t *testing.T) {
	store := newFakeMarketStore()
	imp := newTestImporter(store, newFakeProvenance(), &fakePublisher{}, false)
	req := dailyRequest(writeCSV(t, dailyCSV))

	_, err := imp.ImportFile(context.Background(), req)
	require.NoError(t, err)

	// Second run over identical input inserts nothing new.
	store.mergeStats = models.MergeStats{Skipped: 2}
	res, err := imp.ImportFile(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.RowsInserted)
	assert.Equal(t, int64(2), res.RowsSkipped)
}
