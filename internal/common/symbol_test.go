package common

import (
	"errors"
	"testing"

	"github.com/ternarybob/finsync/internal/models"
)

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"four digits", "7203", "72030", false},
		{"five digits", "72030", "72030", false},
		{"five digits not ending in zero", "13015", "13015", false},
		{"alphanumeric lower", "130a", "130a0", false},
		{"alphanumeric upper", "130A", "130A0", false},
		{"five lowercase letters unchanged", "abcde", "abcde", false},
		{"five alphanumeric unchanged", "130a0", "130a0", false},
		{"whitespace", " 7203 ", "", true},
		{"empty", "", "", true},
		{"too short", "720", "", true},
		{"too long", "720300", "", true},
		{"punctuation", "72-3", "", true},
		{"exchange suffix", "7203.T", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeSymbol(tt.input)
			if tt.wantErr {
				if !errors.Is(err, models.ErrInvalidSymbol) {
					t.Errorf("NormalizeSymbol(%q) error = %v, want ErrInvalidSymbol", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeSymbol(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeSymbol(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestShortSymbol(t *testing.T) {
	if got := ShortSymbol("72030"); got != "7203" {
		t.Errorf("ShortSymbol(72030) = %q, want 7203", got)
	}
	if got := ShortSymbol("13015"); got != "13015" {
		t.Errorf("ShortSymbol(13015) = %q, want 13015", got)
	}
}

func TestNormalizeSymbols(t *testing.T) {
	valid, invalid := NormalizeSymbols([]string{"7203", "72030", "bad!", "6758"})

	if len(valid) != 2 || valid[0] != "72030" || valid[1] != "67580" {
		t.Errorf("valid = %v, want [72030 67580]", valid)
	}
	if len(invalid) != 1 || invalid[0] != "bad!" {
		t.Errorf("invalid = %v, want [bad!]", invalid)
	}
}
