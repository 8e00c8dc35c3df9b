package timing

import (
	"fmt"
	"strings"
)

// QueryBuilder produces SQL over the daily and context tables that respects
// each field's timing classification. Entry-safe queries replace every
// close-known column with a one-row lag over the ticker's own trading-day
// sequence, so weekend and holiday gaps cannot leak same-day values.
type QueryBuilder struct {
	daily   []Field
	context []Field
}

// NewQueryBuilder builds a QueryBuilder over the standard field
// classification tables.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{daily: DailyFields(), context: ContextFields()}
}

// EntrySafe returns a query selecting, for a ticker and a set of dates
// (YYYY-MM-DD), every daily and context field at its entry-time value:
// open-known and static fields as stored, close-known fields lagged to the
// prior trading day. The lag windows run over the full table so the filter
// on requested dates cannot shorten them.
func (b *QueryBuilder) EntrySafe(ticker string, dates []string) (string, []any) {
	var dailyCols, ctxCols []string
	for _, f := range b.daily {
		dailyCols = append(dailyCols, entryExpr(f, "PARTITION BY ticker ORDER BY date"))
	}
	for _, f := range b.context {
		ctxCols = append(ctxCols, entryExpr(f, "ORDER BY date"))
	}

	q := fmt.Sprintf(`WITH daily AS (
	SELECT ticker, CAST(date AS VARCHAR) AS date, %s
	FROM market_data_daily
	WHERE ticker = ?
), context AS (
	SELECT CAST(date AS VARCHAR) AS date, %s
	FROM market_context
)
SELECT d.ticker, d.date, %s, %s
FROM daily d
LEFT JOIN context c ON d.date = c.date
WHERE d.date IN (%s)
ORDER BY d.date`,
		strings.Join(dailyCols, ", "),
		strings.Join(ctxCols, ", "),
		prefixed("d", b.daily),
		prefixed("c", b.context),
		placeholders(len(dates)))

	args := make([]any, 0, len(dates)+1)
	args = append(args, ticker)
	for _, d := range dates {
		args = append(args, d)
	}
	return q, args
}

// Outcome returns a query selecting the close-known fields for the requested
// dates at their same-day values. Callers use it only for post-hoc analysis;
// its results are not observable at entry time.
func (b *QueryBuilder) Outcome(ticker string, dates []string) (string, []any) {
	_, dailyLagged := Split(b.daily)
	_, ctxLagged := Split(b.context)

	cols := make([]string, 0, len(dailyLagged)+len(ctxLagged))
	for _, c := range dailyLagged {
		cols = append(cols, "d."+c)
	}
	for _, c := range ctxLagged {
		cols = append(cols, "c."+c)
	}

	q := fmt.Sprintf(`SELECT d.ticker, CAST(d.date AS VARCHAR) AS date, %s
FROM market_data_daily d
LEFT JOIN market_context c ON d.date = c.date
WHERE d.ticker = ? AND CAST(d.date AS VARCHAR) IN (%s)
ORDER BY d.date`,
		strings.Join(cols, ", "),
		placeholders(len(dates)))

	args := make([]any, 0, len(dates)+1)
	args = append(args, ticker)
	for _, d := range dates {
		args = append(args, d)
	}
	return q, args
}

func entryExpr(f Field, window string) string {
	if f.Knowledge == KnownAtClose {
		return fmt.Sprintf("LAG(%s) OVER (%s) AS %s", f.Name, window, f.Name)
	}
	return f.Name
}

func prefixed(alias string, fields []Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = alias + "." + f.Name
	}
	return strings.Join(parts, ", ")
}

func placeholders(n int) string {
	if n <= 0 {
		return "''"
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
