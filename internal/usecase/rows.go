package usecase

import (
	"fmt"
	"strings"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
)

// rowSource resolves canonical fields to column positions for one parsed
// CSV (or query result) header.
type rowSource struct {
	idx map[string]int
}

// newRowSource inverts a source-column -> canonical-field mapping against
// the actual header. Every mapped source column must exist in the header;
// this is the last structural check before rows are read.
func newRowSource(header []string, mapping models.ColumnMapping) (*rowSource, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(h))] = i
	}
	idx := make(map[string]int, len(mapping))
	for src, canonical := range mapping {
		i, ok := pos[strings.ToLower(strings.TrimSpace(src))]
		if !ok {
			return nil, fmt.Errorf("mapped column %q not present in header", src)
		}
		idx[strings.ToLower(strings.TrimSpace(canonical))] = i
	}
	return &rowSource{idx: idx}, nil
}

func (s *rowSource) cell(row []string, field string) (string, bool) {
	i, ok := s.idx[field]
	if !ok || i >= len(row) {
		return "", false
	}
	return row[i], true
}

func (s *rowSource) has(field string) bool {
	_, ok := s.idx[field]
	return ok
}

func (s *rowSource) float(row []string, field string) (*float64, error) {
	v, ok := s.cell(row, field)
	if !ok {
		return nil, nil
	}
	return ParseFloat(v)
}

// requiredFloat reads a must-have numeric cell; absent or null drops the row.
func (s *rowSource) requiredFloat(row []string, field string) (float64, bool) {
	p, err := s.float(row, field)
	if err != nil || p == nil {
		return 0, false
	}
	return *p, true
}

// BuildDailyRows converts raw rows into daily bars for one ticker. Rows
// whose date or OHLC fail to parse are dropped with a counted reason rather
// than failing the file.
func BuildDailyRows(ticker string, header []string, raw [][]string, mapping models.ColumnMapping) ([]models.DailyBar, map[string]int, error) {
	src, err := newRowSource(header, mapping)
	if err != nil {
		return nil, nil, err
	}
	dropped := make(map[string]int)
	out := make([]models.DailyBar, 0, len(raw))
	for _, row := range raw {
		cell, _ := src.cell(row, "date")
		date, ok := ParseDate(cell)
		if !ok {
			dropped["bad_date"]++
			continue
		}
		bar := models.DailyBar{Ticker: ticker, Date: date}
		if bar.Open, ok = src.requiredFloat(row, "open"); !ok {
			dropped["bad_ohlc"]++
			continue
		}
		if bar.High, ok = src.requiredFloat(row, "high"); !ok {
			dropped["bad_ohlc"]++
			continue
		}
		if bar.Low, ok = src.requiredFloat(row, "low"); !ok {
			dropped["bad_ohlc"]++
			continue
		}
		if bar.Close, ok = src.requiredFloat(row, "close"); !ok {
			dropped["bad_ohlc"]++
			continue
		}
		if src.has("volume") {
			if bar.Volume, err = src.float(row, "volume"); err != nil {
				dropped["bad_volume"]++
				continue
			}
		}
		out = append(out, bar)
	}
	return out, dropped, nil
}

// BuildContextRows converts raw rows into global context rows. Only the
// date is required; each volatility column is optional per row.
func BuildContextRows(header []string, raw [][]string, mapping models.ColumnMapping) ([]models.ContextBar, map[string]int, error) {
	src, err := newRowSource(header, mapping)
	if err != nil {
		return nil, nil, err
	}
	dropped := make(map[string]int)
	out := make([]models.ContextBar, 0, len(raw))
	for _, row := range raw {
		cell, _ := src.cell(row, "date")
		date, ok := ParseDate(cell)
		if !ok {
			dropped["bad_date"]++
			continue
		}
		bar := models.ContextBar{Date: date}
		bad := false
		for field, dst := range map[string]**float64{
			"vix_open":    &bar.VIXOpen,
			"vix_high":    &bar.VIXHigh,
			"vix_low":     &bar.VIXLow,
			"vix_close":   &bar.VIXClose,
			"vix9d_open":  &bar.VIX9DOpen,
			"vix9d_close": &bar.VIX9DClose,
			"vix3m_open":  &bar.VIX3MOpen,
			"vix3m_close": &bar.VIX3MClose,
		} {
			p, ferr := src.float(row, field)
			if ferr != nil {
				bad = true
				break
			}
			*dst = p
		}
		if bad {
			dropped["bad_number"]++
			continue
		}
		out = append(out, bar)
	}
	return out, dropped, nil
}

// BuildIntradayRows converts raw rows into intraday bars. When the mapping
// has no separate time column, the date column must carry a combined
// date+time value.
func BuildIntradayRows(ticker string, header []string, raw [][]string, mapping models.ColumnMapping) ([]models.IntradayBar, map[string]int, error) {
	src, err := newRowSource(header, mapping)
	if err != nil {
		return nil, nil, err
	}
	combined := !src.has("time")
	dropped := make(map[string]int)
	out := make([]models.IntradayBar, 0, len(raw))
	for _, row := range raw {
		var date, tm string
		var ok bool
		if combined {
			cell, _ := src.cell(row, "date")
			date, tm, ok = ParseTimestamp(cell)
			if !ok {
				dropped["bad_timestamp"]++
				continue
			}
		} else {
			cell, _ := src.cell(row, "date")
			if date, ok = ParseDate(cell); !ok {
				dropped["bad_date"]++
				continue
			}
			cell, _ = src.cell(row, "time")
			if tm, ok = ParseTime(cell); !ok {
				dropped["bad_time"]++
				continue
			}
		}
		bar := models.IntradayBar{Ticker: ticker, Date: date, Time: tm}
		if bar.Open, ok = src.requiredFloat(row, "open"); !ok {
			dropped["bad_ohlc"]++
			continue
		}
		if bar.High, ok = src.requiredFloat(row, "high"); !ok {
			dropped["bad_ohlc"]++
			continue
		}
		if bar.Low, ok = src.requiredFloat(row, "low"); !ok {
			dropped["bad_ohlc"]++
			continue
		}
		if bar.Close, ok = src.requiredFloat(row, "close"); !ok {
			dropped["bad_ohlc"]++
			continue
		}
		out = append(out, bar)
	}
	return out, dropped, nil
}
