package usecase

import (
	"strings"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
)

// requiredFields is the fixed per-table set of canonical fields a column
// mapping must supply before any row is read.
var requiredFields = map[models.TargetTable][]string{
	models.TableDaily:    {"date", "open", "high", "low", "close"},
	models.TableContext:  {"date"},
	models.TableIntraday: {"date", "time", "open", "high", "low", "close"},
}

// knownFields is everything a mapping may target per table; unknown targets
// are rejected so a typo cannot silently drop a column.
var knownFields = map[models.TargetTable][]string{
	models.TableDaily: {"date", "open", "high", "low", "close", "volume"},
	models.TableContext: {
		"date", "vix_open", "vix_high", "vix_low", "vix_close",
		"vix9d_open", "vix9d_close", "vix3m_open", "vix3m_close",
	},
	models.TableIntraday: {"date", "time", "open", "high", "low", "close"},
}

// MappingCheck is the outcome of validating a column mapping against a
// target table.
type MappingCheck struct {
	Valid         bool
	MissingFields []string
	UnknownFields []string
}

// ValidateMapping checks a source-column -> canonical-field mapping for a
// target table. It runs before any row is read, so a failure leaves the
// store untouched. combinedTimestamp relaxes the intraday rule: when the
// date source column carries a combined date+time value, the time field may
// be absent and is derived during parsing.
func ValidateMapping(table models.TargetTable, mapping models.ColumnMapping, combinedTimestamp bool) MappingCheck {
	required, ok := requiredFields[table]
	if !ok {
		return MappingCheck{Valid: false, MissingFields: []string{"date"}}
	}

	mapped := make(map[string]bool, len(mapping))
	var unknown []string
	for src, canonical := range mapping {
		c := strings.ToLower(strings.TrimSpace(canonical))
		if !fieldKnown(table, c) {
			unknown = append(unknown, src+" -> "+canonical)
			continue
		}
		mapped[c] = true
	}

	var missing []string
	for _, f := range required {
		if f == "time" && table == models.TableIntraday && combinedTimestamp {
			continue
		}
		if !mapped[f] {
			missing = append(missing, f)
		}
	}

	return MappingCheck{
		Valid:         len(missing) == 0 && len(unknown) == 0,
		MissingFields: missing,
		UnknownFields: unknown,
	}
}

func fieldKnown(table models.TargetTable, field string) bool {
	for _, f := range knownFields[table] {
		if f == field {
			return true
		}
	}
	return false
}

// Header keywords used by the best-effort CSV type sniffer. Detection never
// feeds a write on its own; the detected type is surfaced to the caller for
// confirmation.
var (
	tradeLogHeaders = []string{"p/l", "pl", "premium", "strategy", "date opened", "no. of contracts"}
	contextHeaders  = []string{"vix", "vix9d", "vix3m", "vvix"}
)

// DetectCSVType classifies a CSV header row as one of the known import
// shapes, or unrecognized when the header matches none of them.
func DetectCSVType(header []string) models.DetectedType {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = strings.ToLower(strings.TrimSpace(h))
	}

	if matchesAny(norm, tradeLogHeaders) {
		return models.DetectedTradeLog
	}
	if matchesAny(norm, contextHeaders) {
		return models.DetectedContext
	}

	hasDate := containsHeader(norm, "date", "datetime", "timestamp", "time")
	hasOHLC := containsHeader(norm, "open") && containsHeader(norm, "high") &&
		containsHeader(norm, "low") && containsHeader(norm, "close")
	if !hasDate || !hasOHLC {
		return models.DetectedUnrecognized
	}
	if containsHeader(norm, "time") || containsHeader(norm, "datetime", "timestamp") {
		return models.DetectedIntraday
	}
	return models.DetectedDaily
}

func matchesAny(header []string, keywords []string) bool {
	for _, h := range header {
		for _, k := range keywords {
			if h == k || strings.Contains(h, k) {
				return true
			}
		}
	}
	return false
}

func containsHeader(header []string, names ...string) bool {
	for _, h := range header {
		for _, n := range names {
			if h == n {
				return true
			}
		}
	}
	return false
}
