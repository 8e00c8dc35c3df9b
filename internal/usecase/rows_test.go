package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
)

var dailyMapping = models.ColumnMapping{
	"Date":   "date",
	"Open":   "open",
	"High":   "high",
	"Low":    "low",
	"Close":  "close",
	"Volume": "volume",
}

func TestBuildDailyRowsDropsBadRowsNotFiles(t *testing.T) {
	header := []string{"Date", "Open", "High", "Low", "Close", "Volume"}
	raw := [][]string{
		{"2025-06-20", "100", "101", "99", "100.5", "1200"},
		{"garbage", "100", "101", "99", "100.5", "1200"},
		{"2025-06-23", "100.5", "", "99.5", "101", "900"},
		{"2025-06-24", "101", "102", "100", "101.5", ""},
	}

	bars, dropped, err := BuildDailyRows("SPY", header, raw, dailyMapping)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 1, dropped["bad_date"])
	assert.Equal(t, 1, dropped["bad_ohlc"])

	assert.Equal(t, "SPY", bars[0].Ticker)
	assert.Equal(t, "2025-06-20", bars[0].Date)
	require.NotNil(t, bars[0].Volume)
	assert.Equal(t, 1200.0, *bars[0].Volume)
	// Empty volume cell stays null rather than zero.
	assert.Nil(t, bars[1].Volume)
}

func TestBuildDailyRowsUnmappedHeaderColumnFails(t *testing.T) {
	_, _, err := BuildDailyRows("SPY", []string{"Date", "Open"}, nil, dailyMapping)
	assert.Error(t, err)
}

func TestBuildContextRowsOptionalColumns(t *testing.T) {
	header := []string{"Date", "VIX Close", "VIX9D Close"}
	mapping := models.ColumnMapping{
		"Date":        "date",
		"VIX Close":   "vix_close",
		"VIX9D Close": "vix9d_close",
	}
	raw := [][]string{
		{"2025-06-20", "14.5", "13.9"},
		{"2025-06-23", "", "14.1"},
	}

	bars, dropped, err := BuildContextRows(header, raw, mapping)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Empty(t, dropped)

	require.NotNil(t, bars[0].VIXClose)
	assert.Equal(t, 14.5, *bars[0].VIXClose)
	assert.Nil(t, bars[1].VIXClose)
	require.NotNil(t, bars[1].VIX9DClose)
}

func TestBuildIntradayRowsSeparateColumns(t *testing.T) {
	header := []string{"Date", "Time", "Open", "High", "Low", "Close"}
	mapping := models.ColumnMapping{
		"Date": "date", "Time": "time",
		"Open": "open", "High": "high", "Low": "low", "Close": "close",
	}
	raw := [][]string{
		{"2025-06-20", "0930", "100", "101", "99", "100.5"},
		{"2025-06-20", "xx", "100", "101", "99", "100.5"},
	}

	bars, dropped, err := BuildIntradayRows("SPY", header, raw, mapping)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, "09:30", bars[0].Time)
	assert.Equal(t, 1, dropped["bad_time"])
}

func TestBuildIntradayRowsCombinedTimestamp(t *testing.T) {
	header := []string{"Timestamp", "Open", "High", "Low", "Close"}
	mapping := models.ColumnMapping{
		"Timestamp": "date",
		"Open":      "open", "High": "high", "Low": "low", "Close": "close",
	}
	raw := [][]string{
		{"2025-06-20 09:30:00", "100", "101", "99", "100.5"},
		{"2025-06-20", "100", "101", "99", "100.5"},
	}

	bars, dropped, err := BuildIntradayRows("SPY", header, raw, mapping)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, "2025-06-20", bars[0].Date)
	assert.Equal(t, "09:30", bars[0].Time)
	assert.Equal(t, 1, dropped["bad_timestamp"])
}
