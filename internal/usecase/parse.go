package usecase

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// exchangeTZ is the trading-exchange time zone used when converting
// Unix-second values, so a timestamp near midnight UTC lands on the correct
// trading day.
var exchangeTZ = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("load location %s: %v", name, err))
	}
	return loc
}

// unixSanityThreshold guards against a small integer (a row index, a year)
// being mistaken for a Unix timestamp.
const unixSanityThreshold = 1e8

// ParseDate normalizes a raw date value to YYYY-MM-DD. It accepts the
// literal form and Unix seconds above the sanity threshold; anything else
// returns ok=false and the caller drops the row.
func ParseDate(value string) (string, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", false
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t.Format("2006-01-02"), true
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > unixSanityThreshold {
		return time.Unix(int64(secs), 0).In(exchangeTZ).Format("2006-01-02"), true
	}
	return "", false
}

// ParseTime normalizes a raw time value to HH:MM. It accepts HH:MM, 4-digit
// HHMM, and Unix seconds (converted in the exchange time zone).
func ParseTime(value string) (string, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", false
	}
	if t, err := time.Parse("15:04", v); err == nil {
		return t.Format("15:04"), true
	}
	if len(v) == 4 && allDigits(v) {
		if t, err := time.Parse("1504", v); err == nil {
			return t.Format("15:04"), true
		}
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > unixSanityThreshold {
		return time.Unix(int64(secs), 0).In(exchangeTZ).Format("15:04"), true
	}
	return "", false
}

// ParseTimestamp splits a combined date+time value ("YYYY-MM-DD HH:MM[:SS]"
// or Unix seconds) into its date and time parts.
func ParseTimestamp(value string) (date, tm string, ok bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", "", false
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2006-01-02"), t.Format("15:04"), true
		}
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > unixSanityThreshold {
		t := time.Unix(int64(secs), 0).In(exchangeTZ)
		return t.Format("2006-01-02"), t.Format("15:04"), true
	}
	return "", "", false
}

// ParseFloat reads an optional numeric cell; empty cells are nil, garbage is
// an error so bad data cannot pass as null.
func ParseFloat(value string) (*float64, error) {
	v := strings.TrimSpace(strings.ReplaceAll(value, ",", ""))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("parse number %q: %w", value, err)
	}
	return &f, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// NormalizeTicker uppercases a ticker and strips exchange-prefix
// punctuation ("$SPX", "^VIX", "I:SPX"). The result must contain at least
// one letter.
func NormalizeTicker(raw string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(raw))
	t = strings.TrimLeft(t, "$^.")
	if i := strings.IndexByte(t, ':'); i >= 0 {
		t = t[i+1:]
	}
	hasLetter := false
	for _, r := range t {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if t == "" || !hasLetter {
		return "", fmt.Errorf("invalid ticker %q", raw)
	}
	return t, nil
}

// ReadCSV reads a whole CSV stream: BOM stripped, header row required,
// doubled-quote escaping per the encoding. Returns the header and the data
// rows.
func ReadCSV(r io.Reader) (header []string, rows [][]string, err error) {
	cr := csv.NewReader(stripBOM(r))
	cr.FieldsPerRecord = -1

	all, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("read csv: no header row")
	}
	return all[0], all[1:], nil
}

// stripBOM removes a UTF-8 byte-order mark if the stream starts with one.
func stripBOM(r io.Reader) io.Reader {
	br := &bomReader{r: r}
	return br
}

type bomReader struct {
	r       io.Reader
	checked bool
	buf     []byte
}

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head := make([]byte, 3)
		n, err := io.ReadFull(b.r, head)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			b.buf = head[:n]
		} else if err != nil {
			return 0, err
		} else if head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
			b.buf = nil
		} else {
			b.buf = head
		}
	}
	if len(b.buf) > 0 {
		n := copy(p, b.buf)
		b.buf = b.buf[n:]
		return n, nil
	}
	return b.r.Read(p)
}
