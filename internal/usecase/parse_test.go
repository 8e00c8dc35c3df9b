package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateLiteral(t *testing.T) {
	d, ok := ParseDate("2025-06-20")
	require.True(t, ok)
	assert.Equal(t, "2025-06-20", d)
}

func TestParseDateUnixSecondsUsesExchangeTimeZone(t *testing.T) {
	// 2024-07-01 00:30 UTC is still 2024-06-30 evening in New York.
	d, ok := ParseDate("1719793800")
	require.True(t, ok)
	assert.Equal(t, "2024-06-30", d)
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, v := range []string{"", "06/20/2025", "12345", "not a date"} {
		_, ok := ParseDate(v)
		assert.Falsef(t, ok, "value %q", v)
	}
}

func TestParseTimeShapes(t *testing.T) {
	tm, ok := ParseTime("09:30")
	require.True(t, ok)
	assert.Equal(t, "09:30", tm)

	tm, ok = ParseTime("0930")
	require.True(t, ok)
	assert.Equal(t, "09:30", tm)

	tm, ok = ParseTime("1719793800")
	require.True(t, ok)
	assert.Equal(t, "20:30", tm)

	_, ok = ParseTime("930")
	assert.False(t, ok)
	_, ok = ParseTime("25:00")
	assert.False(t, ok)
}

func TestParseTimestampCombined(t *testing.T) {
	d, tm, ok := ParseTimestamp("2025-06-20 09:30:00")
	require.True(t, ok)
	assert.Equal(t, "2025-06-20", d)
	assert.Equal(t, "09:30", tm)

	d, tm, ok = ParseTimestamp("1719793800")
	require.True(t, ok)
	assert.Equal(t, "2024-06-30", d)
	assert.Equal(t, "20:30", tm)

	_, _, ok = ParseTimestamp("2025-06-20")
	assert.False(t, ok)
}

func TestNormalizeTicker(t *testing.T) {
	cases := map[string]string{
		"spy":    "SPY",
		" SPX ":  "SPX",
		"$SPX":   "SPX",
		"^VIX":   "VIX",
		"I:SPX":  "SPX",
		"BRK.B":  "BRK.B",
	}
	for in, want := range cases {
		got, err := NormalizeTicker(in)
		require.NoErrorf(t, err, "ticker %q", in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"", "123", "$^", "  "} {
		_, err := NormalizeTicker(in)
		assert.Errorf(t, err, "ticker %q", in)
	}
}

func TestReadCSVStripsBOM(t *testing.T) {
	header, rows, err := ReadCSV(strings.NewReader("\xEF\xBB\xBFdate,close\n2025-06-20,100\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "close"}, header)
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-06-20", rows[0][0])
}

func TestReadCSVQuotedFields(t *testing.T) {
	header, rows, err := ReadCSV(strings.NewReader("name,note\nspy,\"says \"\"hi\"\", twice\"\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "note"}, header)
	require.Len(t, rows, 1)
	assert.Equal(t, `says "hi", twice`, rows[0][1])
}

func TestReadCSVEmptyInput(t *testing.T) {
	_, _, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}
