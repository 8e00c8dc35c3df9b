package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
	drepo "github.com/davidromeo/tradeblocks-sub006/internal/domain/repository"
	pkgduck "github.com/davidromeo/tradeblocks-sub006/pkg/duckdb"
	pkghttp "github.com/davidromeo/tradeblocks-sub006/pkg/http"
	applogger "github.com/davidromeo/tradeblocks-sub006/pkg/logger"
)

// ErrInvalidMapping marks a column-mapping validation failure; handlers map
// it to a 400.
var ErrInvalidMapping = errors.New("invalid column mapping")

// attachAlias is the private alias external database files are attached
// under for the duration of one import.
const attachAlias = "ext_import"

// Importer runs the validate -> read -> parse+map -> merge -> provenance ->
// enrich pipeline for every external source.
type Importer struct {
	store       drepo.MarketStore
	prov        drepo.ProvenanceStore
	events      drepo.EventPublisher
	metrics     drepo.Metrics
	duck        *pkgduck.Client
	httpc       *pkghttp.Client
	enricher    *Enricher
	asyncEnrich bool
	l           *applogger.Logger
}

// NewImporter wires the import pipeline. When asyncEnrich is set, imports
// request enrichment through the event bus instead of running it inline.
func NewImporter(
	store drepo.MarketStore,
	prov drepo.ProvenanceStore,
	events drepo.EventPublisher,
	metrics drepo.Metrics,
	duck *pkgduck.Client,
	httpc *pkghttp.Client,
	enricher *Enricher,
	asyncEnrich bool,
	l *applogger.Logger,
) *Importer {
	return &Importer{
		store:       store,
		prov:        prov,
		events:      events,
		metrics:     metrics,
		duck:        duck,
		httpc:       httpc,
		enricher:    enricher,
		asyncEnrich: asyncEnrich,
		l:           l,
	}
}

// ImportFile imports a CSV file (local path or http(s) URL).
func (i *Importer) ImportFile(ctx context.Context, req models.FileImportRequest) (models.ImportResult, error) {
	table := models.TargetTable(req.TargetTable)
	ticker, mapping, err := i.preflight(table, req.Ticker, req.ColumnMapping)
	if err != nil {
		return models.ImportResult{}, err
	}

	header, raw, err := i.readCSVSource(ctx, req.FilePath)
	if err != nil {
		return models.ImportResult{}, err
	}

	return i.importRows(ctx, "file:"+req.FilePath, table, ticker, header, raw, mapping, req.DryRun, req.SkipEnrichment)
}

// ImportDB attaches an external database file read-only, runs the caller's
// query against it, and imports the result set.
func (i *Importer) ImportDB(ctx context.Context, req models.DBImportRequest) (result models.ImportResult, err error) {
	table := models.TargetTable(req.TargetTable)
	ticker, mapping, perr := i.preflight(table, req.Ticker, req.ColumnMapping)
	if perr != nil {
		return models.ImportResult{}, perr
	}

	if err = i.duck.Attach(ctx, attachAlias, req.DBPath, true); err != nil {
		return models.ImportResult{}, fmt.Errorf("attach external db: %w", err)
	}
	defer func() {
		// A failed detach is logged, never allowed to mask the import error.
		if derr := i.duck.Detach(context.WithoutCancel(ctx), attachAlias); derr != nil {
			i.l.Error("detach external db", applogger.Error(derr))
		}
	}()

	rows, qerr := i.duck.DB().QueryContext(ctx, req.Query)
	if qerr != nil {
		return models.ImportResult{}, fmt.Errorf("query external db: %w", qerr)
	}
	header, raw, rerr := rowsToCells(rows)
	if rerr != nil {
		return models.ImportResult{}, fmt.Errorf("read external db rows: %w", rerr)
	}

	return i.importRows(ctx, "db:"+req.DBPath, table, ticker, header, raw, mapping, req.DryRun, req.SkipEnrichment)
}

// Detect sniffs a CSV file's type from its header. The answer is advisory;
// it never feeds a write on its own.
func (i *Importer) Detect(ctx context.Context, filePath string) (models.DetectResponse, error) {
	header, _, err := i.readCSVSource(ctx, filePath)
	if err != nil {
		return models.DetectResponse{}, err
	}
	return models.DetectResponse{DetectedType: DetectCSVType(header), Headers: header}, nil
}

// preflight normalizes the ticker and validates the mapping before any row
// is read, so a failure leaves the store untouched.
func (i *Importer) preflight(table models.TargetTable, rawTicker string, mapping models.ColumnMapping) (string, models.ColumnMapping, error) {
	if !table.Valid() {
		return "", nil, fmt.Errorf("%w: unknown target table %q", ErrInvalidMapping, table)
	}

	ticker := ""
	if table != models.TableContext {
		t, err := NormalizeTicker(rawTicker)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalidMapping, err)
		}
		ticker = t
	}

	combined := table == models.TableIntraday && !mapsToTime(mapping)
	check := ValidateMapping(table, mapping, combined)
	if !check.Valid {
		return "", nil, fmt.Errorf("%w: missing=%v unknown=%v", ErrInvalidMapping, check.MissingFields, check.UnknownFields)
	}
	return ticker, mapping, nil
}

func mapsToTime(mapping models.ColumnMapping) bool {
	for _, canonical := range mapping {
		if strings.EqualFold(strings.TrimSpace(canonical), "time") {
			return true
		}
	}
	return false
}

func (i *Importer) importRows(
	ctx context.Context,
	source string,
	table models.TargetTable,
	ticker string,
	header []string,
	raw [][]string,
	mapping models.ColumnMapping,
	dryRun, skipEnrichment bool,
) (models.ImportResult, error) {
	start := time.Now()
	result := models.ImportResult{InputRowCount: len(raw), DryRun: dryRun}

	var (
		stats   models.MergeStats
		dropped map[string]int
		dates   []string
		err     error
	)

	switch table {
	case models.TableDaily:
		var bars []models.DailyBar
		if bars, dropped, err = BuildDailyRows(ticker, header, raw, mapping); err == nil {
			dates = dailyDates(bars)
			if !dryRun {
				stats, err = i.store.MergeDaily(ctx, bars)
			}
		}
	case models.TableContext:
		var bars []models.ContextBar
		if bars, dropped, err = BuildContextRows(header, raw, mapping); err == nil {
			dates = contextDates(bars)
			if !dryRun {
				stats, err = i.store.MergeContext(ctx, bars)
			}
		}
	case models.TableIntraday:
		var bars []models.IntradayBar
		if bars, dropped, err = BuildIntradayRows(ticker, header, raw, mapping); err == nil {
			dates = intradayDates(bars)
			if !dryRun {
				stats, err = i.store.MergeIntraday(ctx, bars)
			}
		}
	}
	if err != nil {
		i.metrics.RecordError("import")
		return result, fmt.Errorf("import into %s: %w", table, err)
	}

	for reason, n := range dropped {
		result.RowsDropped += n
		i.metrics.RecordRowsDropped(string(table), reason, n)
		i.l.Warn("rows dropped during import",
			applogger.String("source", source),
			applogger.String("reason", reason),
			applogger.Int("count", n))
	}
	result.DateRange = dateSpan(dates)
	result.RowsInserted = stats.Inserted
	result.RowsUpdated = stats.Updated
	result.RowsSkipped = stats.Skipped

	if dryRun {
		result.Enrichment = models.EnrichmentStatus{Status: "skipped", Message: "dry run"}
		return result, nil
	}

	i.metrics.RecordRowsMerged(string(table), stats)

	if result.DateRange.To != "" {
		if err := i.prov.RecordImport(ctx, source, ticker, table, result.DateRange.To); err != nil {
			return result, fmt.Errorf("record import provenance: %w", err)
		}
	}

	result.Enrichment = i.triggerEnrichment(ctx, table, ticker, skipEnrichment)

	i.metrics.RecordLatency("import", time.Since(start).Seconds())
	i.publishEvent(ctx, models.PipelineEvent{
		Type:      models.EventImportCompleted,
		Ticker:    ticker,
		Table:     string(table),
		Payload:   result,
		Timestamp: time.Now().UTC(),
	})
	return result, nil
}

func (i *Importer) triggerEnrichment(ctx context.Context, table models.TargetTable, ticker string, skip bool) models.EnrichmentStatus {
	if skip {
		return models.EnrichmentStatus{Status: "skipped", Message: "enrichment skipped by request"}
	}

	if table == models.TableContext {
		tier, err := i.enricher.EnrichContext(ctx)
		if err != nil || tier.Status == models.TierError {
			return models.EnrichmentStatus{Status: "error", Message: tierMessage(tier, err)}
		}
		return models.EnrichmentStatus{Status: "complete"}
	}

	if i.asyncEnrich {
		i.publishEvent(ctx, models.PipelineEvent{
			Type:      models.EventEnrichmentRequested,
			Ticker:    ticker,
			Timestamp: time.Now().UTC(),
		})
		return models.EnrichmentStatus{Status: "pending"}
	}

	res, err := i.enricher.EnrichTicker(ctx, ticker, false)
	if err != nil {
		return models.EnrichmentStatus{Status: "error", Message: err.Error()}
	}
	if res.Tier1.Status == models.TierError {
		return models.EnrichmentStatus{Status: "error", Message: res.Tier1.Reason}
	}
	return models.EnrichmentStatus{Status: "complete"}
}

func tierMessage(tier models.TierResult, err error) string {
	if err != nil {
		return err.Error()
	}
	return tier.Reason
}

func (i *Importer) publishEvent(ctx context.Context, ev models.PipelineEvent) {
	if i.events == nil {
		return
	}
	if err := i.events.Publish(ctx, ev); err != nil {
		i.l.Warn("publish pipeline event", applogger.String("type", ev.Type), applogger.Error(err))
	}
}

// readCSVSource opens a local file or fetches a URL and parses it as CSV.
func (i *Importer) readCSVSource(ctx context.Context, path string) ([]string, [][]string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		resp, err := i.httpc.SendRequest(ctx, &pkghttp.RequestOptions{Method: pkghttp.MethodGet, URL: path})
		if err != nil {
			return nil, nil, fmt.Errorf("fetch %s: %w", path, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, nil, fmt.Errorf("fetch %s: status %d", path, resp.StatusCode)
		}
		return readCSVStream(resp.Body, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readCSVStream(f, path)
}

func readCSVStream(r io.Reader, name string) ([]string, [][]string, error) {
	header, rows, err := ReadCSV(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return header, rows, nil
}

// rowsToCells converts a generic result set into the header/cells shape the
// row builders consume.
func rowsToCells(rows *sql.Rows) ([]string, [][]string, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		cells := make([]string, len(cols))
		for i, v := range vals {
			cells[i] = cellString(v)
		}
		out = append(out, cells)
	}
	return cols, out, rows.Err()
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04")
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

func dailyDates(bars []models.DailyBar) []string {
	out := make([]string, len(bars))
	for i, b := range bars {
		out[i] = b.Date
	}
	return out
}

func contextDates(bars []models.ContextBar) []string {
	out := make([]string, len(bars))
	for i, b := range bars {
		out[i] = b.Date
	}
	return out
}

func intradayDates(bars []models.IntradayBar) []string {
	out := make([]string, len(bars))
	for i, b := range bars {
		out[i] = b.Date
	}
	return out
}

// dateSpan finds the inclusive min/max of ISO dates; string order is date
// order for the normalized format.
func dateSpan(dates []string) models.DateRange {
	var r models.DateRange
	for _, d := range dates {
		if r.From == "" || d < r.From {
			r.From = d
		}
		if d > r.To {
			r.To = d
		}
	}
	return r
}
