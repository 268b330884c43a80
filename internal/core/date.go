package core

import (
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006/01/02",
	"2006-01",
}

// ToDate converts a record value into a time.Time.
// Strings without an offset are read as UTC.
func ToDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return time.Time{}, fmt.Errorf("%w: zero time", ErrInvalidDate)
		}
		return d, nil
	case *time.Time:
		if d == nil || d.IsZero() {
			return time.Time{}, fmt.Errorf("%w: zero time", ErrInvalidDate)
		}
		return *d, nil
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, d)
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidDate, v)
	}
}

// MonthEnd returns the last day of t's calendar month, at midnight in t's location.
func MonthEnd(t time.Time) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, 1, -1)
}

// MonthLabel formats t as YYYY-MM.
func MonthLabel(t time.Time) string {
	return t.Format("2006-01")
}
