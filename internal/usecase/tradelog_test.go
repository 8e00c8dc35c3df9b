package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTradeLog = `Date Opened,Time Opened,Date Closed,Time Closed,Premium,P/L,No. of Contracts,Margin Req.,Strategy,Opening Commissions + Fees,Closing Commissions + Fees,Funds at Close,Reason For Close
2025-06-20,09:32,2025-06-20,15:45,1.25,125.00,2,2400,Iron Condor,2.60,2.60,10125.00,Profit Target
2025-06-23,10:01,,,0.95,-95.00,1,1200,Iron Condor,1.30,,10030.00,
garbage,09:32,,,1.00,50.00,1,,,,,,`

func TestParseTradeLog(t *testing.T) {
	trades, dropped, err := ParseTradeLog("block-a", []byte(sampleTradeLog))
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, 1, dropped["bad_date_opened"])

	first := trades[0]
	assert.Equal(t, "block-a", first.BlockID)
	assert.Equal(t, "Iron Condor", first.Strategy)
	assert.Equal(t, "2025-06-20", first.DateOpened)
	assert.Equal(t, "09:32", first.TimeOpened)
	require.NotNil(t, first.DateClosed)
	assert.Equal(t, "2025-06-20", *first.DateClosed)
	assert.Equal(t, 125.0, first.PL)
	require.NotNil(t, first.NumContracts)
	assert.Equal(t, 2, *first.NumContracts)
	require.NotNil(t, first.ReasonForClose)
	assert.Equal(t, "Profit Target", *first.ReasonForClose)

	second := trades[1]
	assert.Nil(t, second.DateClosed)
	assert.Nil(t, second.ClosingCommissions)
	assert.Equal(t, -95.0, second.PL)
}

func TestParseTradeLogRequiresCoreColumns(t *testing.T) {
	_, _, err := ParseTradeLog("b", []byte("Strategy,Premium\nIC,1.0\n"))
	assert.Error(t, err)

	_, _, err = ParseTradeLog("b", []byte("Date Opened,Premium\n2025-06-20,1.0\n"))
	assert.Error(t, err)
}
