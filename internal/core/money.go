// Package core provides the record model shared by the analytics and chart skills.
//
// This file contains the numeric coercion used for amounts read from JSON, CSV,
// spreadsheets and databases.
package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToFloat converts a record value into a float64 amount.
//
// It accepts every Go integer and float kind, json.Number and numeric strings.
// Strings may use a comma as decimal separator ("12,34"), matching how
// spreadsheets export amounts. NaN, infinities, booleans and any other type
// are rejected with ErrInvalidAmount.
//
// Examples:
//   ToFloat(50)              -> 50, nil
//   ToFloat(json.Number("1.5")) -> 1.5, nil
//   ToFloat(" 12,34 ")       -> 12.34, nil
//   ToFloat("abc")           -> 0, ErrInvalidAmount
func ToFloat(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, n.String())
		}
		f = parsed
	case string:
		parsed, ok := parseDecimal(n)
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, n)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, f)
	}
	return f, nil
}

func parseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// Normalize decimal comma
	if !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// CustomerKey normalizes a customer identifier into a grouping key.
// Numbers group by numeric value (1, 1.0 and json.Number("1") are the same
// customer); strings group by their exact text. The second result is false
// when the value cannot identify a customer.
func CustomerKey(v any) (string, bool) {
	switch id := v.(type) {
	case nil:
		return "", false
	case string:
		return "s:" + id, true
	case bool:
		return "b:" + strconv.FormatBool(id), true
	case json.Number, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		f, err := ToFloat(id)
		if err != nil {
			return "", false
		}
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64), true
	default:
		return fmt.Sprintf("%T:%v", v, v), true
	}
}
