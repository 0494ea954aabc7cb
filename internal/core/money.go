// Package core provides the ledger data model and the pure engines that
// derive totals, reconciliation blocks and monthly rollups from it.
//
// This file contains the numeric coercion rules. Stored documents and
// client payloads may carry amounts as numbers, numeric strings or junk;
// recalculation must never fail because of one bad field, so every
// tolerant conversion goes through ParseOrZero. Validation paths use the
// strict ParseAmount instead.
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// ParseOrZero converts v to a decimal, returning zero for anything that is
// not a finite number or a numeric string.
//
// Examples:
//
//	ParseOrZero(12.5)     -> 12.5
//	ParseOrZero("12,50")  -> 12.5
//	ParseOrZero("abc")    -> 0
//	ParseOrZero(nil)      -> 0
func ParseOrZero(v any) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return n
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero
		}
		return *n
	case int:
		return decimal.NewFromInt(int64(n))
	case int8:
		return decimal.NewFromInt(int64(n))
	case int16:
		return decimal.NewFromInt(int64(n))
	case int32:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case uint:
		return decimal.NewFromUint64(uint64(n))
	case uint8:
		return decimal.NewFromUint64(uint64(n))
	case uint16:
		return decimal.NewFromUint64(uint64(n))
	case uint32:
		return decimal.NewFromUint64(uint64(n))
	case uint64:
		return decimal.NewFromUint64(n)
	case float32:
		return fromFloat(float64(n))
	case float64:
		return fromFloat(n)
	case json.Number:
		return parseOrZeroString(n.String())
	case string:
		return parseOrZeroString(n)
	case *string:
		if n == nil {
			return decimal.Zero
		}
		return parseOrZeroString(*n)
	default:
		return decimal.Zero
	}
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func parseOrZeroString(s string) decimal.Decimal {
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseDecimal accepts both dot (12.34) and comma (12,34) separators.
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty number")
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}

// ParseAmount is the strict counterpart of ParseOrZero, used where a
// number is required. Negative values are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, ErrMissingAmount
	}
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, s)
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	return d, nil
}

// ParseComponent parses an optional expense component. Blank means zero.
func ParseComponent(field, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q is not a number", ErrInvalidInput, field, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative %s", ErrInvalidInput, field)
	}
	return d, nil
}

// MiscValues maps a category label to its amount. Decoding coerces every
// value with ParseOrZero, so legacy documents holding strings still load.
type MiscValues map[string]decimal.Decimal

// UnmarshalJSON implements json.Unmarshaler.
func (m *MiscValues) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*m = CoerceValues(raw)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler. Amount and the expense
// components are coerced with ParseOrZero; an absent or null amount stays
// nil.
func (t *PropertyTransaction) UnmarshalJSON(data []byte) error {
	type plain PropertyTransaction
	var raw struct {
		plain
		Amount            any `json:"amount"`
		Stamp             any `json:"stamp"`
		RegistrationFee   any `json:"registrationFee"`
		OfficeMiscExpense any `json:"officeMiscExpense"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	*t = PropertyTransaction(raw.plain)
	t.Amount = nil
	if raw.Amount != nil {
		a := ParseOrZero(raw.Amount)
		t.Amount = &a
	}
	t.Stamp = ParseOrZero(raw.Stamp)
	t.RegistrationFee = ParseOrZero(raw.RegistrationFee)
	t.OfficeMiscExpense = ParseOrZero(raw.OfficeMiscExpense)
	return nil
}

// CoerceValues converts an arbitrary category mapping into MiscValues.
func CoerceValues(raw map[string]any) MiscValues {
	out := make(MiscValues, len(raw))
	for k, v := range raw {
		out[k] = ParseOrZero(v)
	}
	return out
}

// Total sums every category amount.
func (m MiscValues) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}

// Clone returns a copy of the mapping.
func (m MiscValues) Clone() MiscValues {
	if m == nil {
		return nil
	}
	out := make(MiscValues, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
