package usecase

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
)

// tradeHeaderAliases maps collapsed header names (lowercased, punctuation
// and spaces removed) to canonical trade fields, so "P/L", "Margin Req."
// and "Opening Commissions + Fees" all resolve without per-vendor mappings.
var tradeHeaderAliases = map[string]string{
	"dateopened":              "date_opened",
	"timeopened":              "time_opened",
	"dateclosed":              "date_closed",
	"timeclosed":              "time_closed",
	"premium":                 "premium",
	"pl":                      "pl",
	"noofcontracts":           "num_contracts",
	"numcontracts":            "num_contracts",
	"contracts":               "num_contracts",
	"marginreq":               "margin_req",
	"marginrequirement":       "margin_req",
	"strategy":                "strategy",
	"openingcommissionsfees":  "opening_commissions",
	"openingcommissions":      "opening_commissions",
	"closingcommissionsfees":  "closing_commissions",
	"closingcommissions":      "closing_commissions",
	"fundsatclose":            "funds_at_close",
	"reasonforclose":          "reason_for_close",
}

// ParseTradeLog parses one block's trade file. Rows missing an opening date
// or a P/L value are dropped with a counted reason.
func ParseTradeLog(blockID string, content []byte) ([]models.Trade, map[string]int, error) {
	header, raw, err := ReadCSV(bytes.NewReader(content))
	if err != nil {
		return nil, nil, fmt.Errorf("parse trade log: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		if canonical, ok := tradeHeaderAliases[collapseHeader(h)]; ok {
			if _, dup := idx[canonical]; !dup {
				idx[canonical] = i
			}
		}
	}
	if _, ok := idx["date_opened"]; !ok {
		return nil, nil, fmt.Errorf("parse trade log: no date-opened column")
	}
	if _, ok := idx["pl"]; !ok {
		return nil, nil, fmt.Errorf("parse trade log: no p/l column")
	}

	cell := func(row []string, field string) string {
		i, ok := idx[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	dropped := make(map[string]int)
	out := make([]models.Trade, 0, len(raw))
	for _, row := range raw {
		date, ok := ParseDate(cell(row, "date_opened"))
		if !ok {
			dropped["bad_date_opened"]++
			continue
		}
		pl, err := ParseFloat(cell(row, "pl"))
		if err != nil || pl == nil {
			dropped["bad_pl"]++
			continue
		}

		t := models.Trade{
			BlockID:    blockID,
			Strategy:   cell(row, "strategy"),
			DateOpened: date,
			PL:         *pl,
		}
		if tm, ok := ParseTime(cell(row, "time_opened")); ok {
			t.TimeOpened = tm
		}
		if d, ok := ParseDate(cell(row, "date_closed")); ok {
			t.DateClosed = &d
		}
		if tm, ok := ParseTime(cell(row, "time_closed")); ok {
			t.TimeClosed = &tm
		}
		t.Premium, _ = ParseFloat(cell(row, "premium"))
		t.MarginReq, _ = ParseFloat(cell(row, "margin_req"))
		t.OpeningCommissions, _ = ParseFloat(cell(row, "opening_commissions"))
		t.ClosingCommissions, _ = ParseFloat(cell(row, "closing_commissions"))
		t.FundsAtClose, _ = ParseFloat(cell(row, "funds_at_close"))
		if n := cell(row, "num_contracts"); n != "" {
			if v, err := strconv.Atoi(n); err == nil {
				t.NumContracts = &v
			}
		}
		if r := cell(row, "reason_for_close"); r != "" {
			t.ReasonForClose = &r
		}

		out = append(out, t)
	}
	return out, dropped, nil
}

// collapseHeader lowercases a header cell and keeps only letters and digits.
func collapseHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
