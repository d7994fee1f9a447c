package models

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a monetary figure that may be undeterminable.
// A zero Amount (Valid=false) stands for missing data, never for zero.
type Amount struct {
	Value decimal.Decimal
	Valid bool
}

// missingMarkers are raw API values that carry no number
var missingMarkers = map[string]bool{
	"":     true,
	"-":    true,
	"N/A":  true,
	"NA":   true,
	"null": true,
	"None": true,
	"nan":  true,
	"NaN":  true,
}

// ParseAmount converts a raw statement field into an Amount.
// Empty strings, "N/A" and anything that is not a number yield an invalid Amount.
func ParseAmount(raw string) Amount {
	s := strings.TrimSpace(raw)
	if missingMarkers[s] {
		return Amount{}
	}
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}
	}
	return Amount{Value: d, Valid: true}
}

// NewAmount wraps an integer figure.
func NewAmount(v int64) Amount {
	return Amount{Value: decimal.NewFromInt(v), Valid: true}
}

// Sub returns a minus b, invalid when either side is missing.
func (a Amount) Sub(b Amount) Amount {
	if !a.Valid || !b.Valid {
		return Amount{}
	}
	return Amount{Value: a.Value.Sub(b.Value), Valid: true}
}

// String renders the amount or "N/A".
func (a Amount) String() string {
	if !a.Valid {
		return "N/A"
	}
	return a.Value.String()
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.Value.InexactFloat64())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*a = Amount{}
	case float64:
		*a = Amount{Value: decimal.NewFromFloat(v), Valid: true}
	case string:
		*a = ParseAmount(v)
	default:
		*a = Amount{}
	}
	return nil
}

// Rate is a percentage rounded to one decimal place that may be undeterminable.
type Rate struct {
	Value float64
	Valid bool
}

// NewRate rounds d half away from zero to one decimal place.
func NewRate(d decimal.Decimal) Rate {
	return Rate{Value: d.Round(1).InexactFloat64(), Valid: true}
}

// String renders the rate with one decimal or "N/A".
func (r Rate) String() string {
	if !r.Valid {
		return "N/A"
	}
	return decimal.NewFromFloat(r.Value).StringFixed(1)
}

func (r Rate) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

func (r *Rate) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*r = Rate{}
		return nil
	}
	*r = Rate{Value: *v, Valid: true}
	return nil
}
