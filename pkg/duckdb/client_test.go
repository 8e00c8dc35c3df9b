package duckdb

import "testing"

func TestValidIdent(t *testing.T) {
	valid := []string{"ext_import", "a", "Block1", "market_data_daily"}
	for _, s := range valid {
		if !validIdent(s) {
			t.Fatalf("expected %q to be a valid identifier", s)
		}
	}

	invalid := []string{"", "1abc", "a-b", "a b", "a;drop", "ä"}
	for _, s := range invalid {
		if validIdent(s) {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

func TestEscapeLiteral(t *testing.T) {
	if got := escapeLiteral(`it's`); got != `it''s` {
		t.Fatalf("unexpected escape %q", got)
	}
	if got := escapeLiteral("plain"); got != "plain" {
		t.Fatalf("unexpected escape %q", got)
	}
}
