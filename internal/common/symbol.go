// Package common provides shared utilities across the application.
package common

import (
	"fmt"
	"strings"

	"github.com/ternarybob/finsync/internal/models"
)

// SymbolLength is the canonical length of a security code.
const SymbolLength = 5

// NormalizeSymbol converts a security code into its canonical five-character form.
// Supports:
//   - "7203"  -> "72030" (four characters get a trailing '0')
//   - "72030" -> "72030"
//   - "130a"  -> "130a0" (letters keep their case)
//
// Five-character codes come back unchanged. Anything else returns models.ErrInvalidSymbol.
func NormalizeSymbol(code string) (string, error) {
	if !isAlphanumeric(code) {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidSymbol, code)
	}

	switch len(code) {
	case SymbolLength - 1:
		return code + "0", nil
	case SymbolLength:
		return code, nil
	default:
		return "", fmt.Errorf("%w: %q has %d characters", models.ErrInvalidSymbol, code, len(code))
	}
}

// ShortSymbol returns the four-character listing code for a canonical symbol.
// Symbols that do not end in '0' are returned unchanged.
func ShortSymbol(symbol string) string {
	if len(symbol) == SymbolLength && strings.HasSuffix(symbol, "0") {
		return symbol[:SymbolLength-1]
	}
	return symbol
}

// NormalizeSymbols normalizes a list of codes, dropping invalid entries and duplicates.
// The returned slice preserves first-seen order.
func NormalizeSymbols(codes []string) ([]string, []string) {
	seen := make(map[string]bool, len(codes))
	valid := make([]string, 0, len(codes))
	var invalid []string
	for _, c := range codes {
		s, err := NormalizeSymbol(c)
		if err != nil {
			invalid = append(invalid, c)
			continue
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		valid = append(valid, s)
	}
	return valid, invalid
}

func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}
