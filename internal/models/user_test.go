package models

import "testing"

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice@example.com", "alice@example.com"},
		{"  Alice@Example.COM ", "alice@example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitStrategyValid(t *testing.T) {
	for _, s := range []SplitStrategy{SplitEqual, SplitPercent} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []SplitStrategy{"", "shares", "EQUAL"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}
