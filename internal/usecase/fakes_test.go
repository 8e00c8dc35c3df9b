package usecase

import (
	"context"
	"sort"
	"sync"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
	applogger "github.com/davidromeo/tradeblocks-sub006/pkg/logger"
)

func testLogger() *applogger.Logger {
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		panic(err)
	}
	return l
}

type fakeMarketStore struct {
	daily    map[string][]models.DailyBar
	context  []models.ContextBar
	intraday map[string][]models.IntradayBar

	tier1Writes []models.Tier1Fields
	tier2Writes []models.Tier2Fields
	tier3Writes []models.Tier3Fields

	mergeStats models.MergeStats
	selectRows []map[string]any
	lastQuery  string
	lastArgs   []any
}

func newFakeMarketStore() *fakeMarketStore {
	return &fakeMarketStore{
		daily:    make(map[string][]models.DailyBar),
		intraday: make(map[string][]models.IntradayBar),
	}
}

func (s *fakeMarketStore) MergeDaily(_ context.Context, rows []models.DailyBar) (models.MergeStats, error) {
	for _, r := range rows {
		s.daily[r.Ticker] = append(s.daily[r.Ticker], r)
	}
	if s.mergeStats == (models.MergeStats{}) {
		return models.MergeStats{Inserted: int64(len(rows))}, nil
	}
	return s.mergeStats, nil
}

func (s *fakeMarketStore) MergeContext(_ context.Context, rows []models.ContextBar) (models.MergeStats, error) {
	s.context = append(s.context, rows...)
	return models.MergeStats{Inserted: int64(len(rows))}, nil
}

func (s *fakeMarketStore) MergeIntraday(_ context.Context, rows []models.IntradayBar) (models.MergeStats, error) {
	for _, r := range rows {
		s.intraday[r.Ticker] = append(s.intraday[r.Ticker], r)
	}
	return models.MergeStats{Inserted: int64(len(rows))}, nil
}

func (s *fakeMarketStore) UpdateTier1(_ context.Context, rows []models.Tier1Fields) (int, error) {
	s.tier1Writes = append(s.tier1Writes, rows...)
	return len(rows), nil
}

func (s *fakeMarketStore) UpdateTier2(_ context.Context, rows []models.Tier2Fields) (int, error) {
	s.tier2Writes = append(s.tier2Writes, rows...)
	return len(rows), nil
}

func (s *fakeMarketStore) UpdateTier3(_ context.Context, rows []models.Tier3Fields) (int, error) {
	s.tier3Writes = append(s.tier3Writes, rows...)
	return len(rows), nil
}

func (s *fakeMarketStore) DailyBars(_ context.Context, ticker, fromDate string) ([]models.DailyBar, error) {
	var out []models.DailyBar
	for _, b := range s.daily[ticker] {
		if fromDate == "" || b.Date >= fromDate {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *fakeMarketStore) ContextBars(_ context.Context) ([]models.ContextBar, error) {
	out := append([]models.ContextBar(nil), s.context...)
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *fakeMarketStore) IntradayBars(_ context.Context, ticker string) ([]models.IntradayBar, error) {
	out := append([]models.IntradayBar(nil), s.intraday[ticker]...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (s *fakeMarketStore) HasIntradayBars(_ context.Context, ticker string) (bool, error) {
	return len(s.intraday[ticker]) > 0, nil
}

func (s *fakeMarketStore) HasContextCloses(_ context.Context) (bool, error) {
	for _, b := range s.context {
		if b.VIXClose != nil {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeMarketStore) RowCount(_ context.Context, table models.TargetTable) (int64, error) {
	switch table {
	case models.TableContext:
		return int64(len(s.context)), nil
	default:
		n := 0
		for _, bars := range s.daily {
			n += len(bars)
		}
		return int64(n), nil
	}
}

func (s *fakeMarketStore) SelectMaps(_ context.Context, query string, args ...any) ([]map[string]any, error) {
	s.lastQuery = query
	s.lastArgs = args
	return s.selectRows, nil
}

type fakeBlockStore struct {
	records map[string]models.BlockRecord
	trades  map[string][]models.Trade

	replaceErr error
	deleted    []string
}

func newFakeBlockStore() *fakeBlockStore {
	return &fakeBlockStore{
		records: make(map[string]models.BlockRecord),
		trades:  make(map[string][]models.Trade),
	}
}

func (s *fakeBlockStore) Fingerprints(_ context.Context) (map[string]models.BlockRecord, error) {
	out := make(map[string]models.BlockRecord, len(s.records))
	for k, v := range s.records {
		out[k] = v
	}
	return out, nil
}

func (s *fakeBlockStore) ReplaceBlock(_ context.Context, rec models.BlockRecord, trades []models.Trade) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.records[rec.BlockID] = rec
	s.trades[rec.BlockID] = trades
	return nil
}

func (s *fakeBlockStore) DeleteBlock(_ context.Context, blockID string) error {
	delete(s.records, blockID)
	delete(s.trades, blockID)
	s.deleted = append(s.deleted, blockID)
	return nil
}

func (s *fakeBlockStore) TradeCount(_ context.Context, blockID string) (int, error) {
	return len(s.trades[blockID]), nil
}

type fakeProvenance struct {
	watermarks map[string]string
	imports    []string
}

func newFakeProvenance() *fakeProvenance {
	return &fakeProvenance{watermarks: make(map[string]string)}
}

func (p *fakeProvenance) RecordImport(_ context.Context, source, ticker string, table models.TargetTable, maxDate string) error {
	p.imports = append(p.imports, source+"|"+ticker+"|"+string(table)+"|"+maxDate)
	return nil
}

func (p *fakeProvenance) EnrichedThrough(_ context.Context, ticker string) (string, bool, error) {
	w, ok := p.watermarks[ticker]
	return w, ok, nil
}

func (p *fakeProvenance) SetEnrichedThrough(_ context.Context, ticker, date string) error {
	if cur, ok := p.watermarks[ticker]; !ok || date > cur {
		p.watermarks[ticker] = date
	}
	return nil
}

func (p *fakeProvenance) ResetEnrichment(_ context.Context, ticker string) error {
	delete(p.watermarks, ticker)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.PipelineEvent
}

func (p *fakePublisher) Publish(_ context.Context, ev models.PipelineEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) byType(t string) []models.PipelineEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []models.PipelineEvent
	for _, ev := range p.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type noopMetrics struct{}

func (noopMetrics) RecordRowsMerged(string, models.MergeStats) {}
func (noopMetrics) RecordRowsDropped(string, string, int)      {}
func (noopMetrics) RecordBlockSync(string)                     {}
func (noopMetrics) RecordEnrichment(string, string)            {}
func (noopMetrics) RecordError(string)                         {}
func (noopMetrics) RecordLatency(string, float64)              {}
