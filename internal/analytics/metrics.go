// Package analytics computes dashboard metrics over caller-owned transaction records.
//
// The functions in this file are strict: malformed input is reported as an error
// wrapping one of the core sentinels. Analyzer wraps them for callers that prefer
// a zero value over an error.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"openclaw/internal/core"
)

// AverageLTV groups records by customer_id, sums amount_spent per customer and
// returns the mean of those sums across distinct customers.
//
// Records without a customer id are ignored. A record without an amount still
// counts its customer, contributing nothing to the sum.
func AverageLTV(records []core.Record) (float64, error) {
	if len(records) == 0 {
		return 0, core.ErrEmptyInput
	}
	if !core.AnyHas(records, core.CustomerIDField) {
		return 0, fmt.Errorf("%w: %s", core.ErrMissingField, core.CustomerIDField)
	}
	if !core.AnyHas(records, core.AmountSpentField) {
		return 0, fmt.Errorf("%w: %s", core.ErrMissingField, core.AmountSpentField)
	}

	perCustomer := make(map[string]float64)
	for i, r := range records {
		id, ok := r.Lookup(core.CustomerIDField)
		if !ok {
			continue
		}
		key, ok := core.CustomerKey(id)
		if !ok {
			continue
		}
		amount, err := amountOf(r, core.AmountSpentField)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		perCustomer[key] += amount
	}
	if len(perCustomer) == 0 {
		return 0, fmt.Errorf("%w: no record has a %s", core.ErrMissingField, core.CustomerIDField)
	}

	var total float64
	for _, sum := range perCustomer {
		total += sum
	}
	return total / float64(len(perCustomer)), nil
}

// MonthlyRevenue buckets records by calendar month of fields.DateField and sums
// fields.AmountField within each bucket. Points are chronological and labelled
// YYYY-MM.
//
// Records without a date are dropped; a date that cannot be parsed fails the
// whole aggregation.
func MonthlyRevenue(records []core.Record, fields core.RevenueFields) (core.Series, error) {
	fields = fields.WithDefaults()
	if len(records) == 0 {
		return nil, core.ErrEmptyInput
	}
	if !core.AnyHas(records, fields.DateField) {
		return nil, fmt.Errorf("%w: %s", core.ErrMissingField, fields.DateField)
	}
	if !core.AnyHas(records, fields.AmountField) {
		return nil, fmt.Errorf("%w: %s", core.ErrMissingField, fields.AmountField)
	}

	buckets := make(map[time.Time]float64)
	for i, r := range records {
		raw, ok := r.Lookup(fields.DateField)
		if !ok {
			continue
		}
		date, err := core.ToDate(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		amount, err := amountOf(r, fields.AmountField)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		buckets[monthKey(date)] += amount
	}

	keys := make([]time.Time, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	if fields.FillGaps && len(keys) > 1 {
		keys = fillMonths(keys[0], keys[len(keys)-1])
	}

	series := make(core.Series, 0, len(keys))
	for _, k := range keys {
		series = append(series, core.Point{Label: core.MonthLabel(k), Value: buckets[k]})
	}
	return series, nil
}

// ChurnRate returns lost/activeStart as a percentage.
func ChurnRate(activeStart, lost int) (float64, error) {
	if activeStart <= 0 {
		return 0, core.ErrNoActiveCustomers
	}
	return float64(lost) / float64(activeStart) * 100, nil
}

func amountOf(r core.Record, field string) (float64, error) {
	v, ok := r.Lookup(field)
	if !ok {
		return 0, nil
	}
	f, err := core.ToFloat(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return f, nil
}

// monthKey is the month-end bucket of t in UTC calendar terms. Dates carrying
// an offset keep their own wall-clock month.
func monthKey(t time.Time) time.Time {
	end := core.MonthEnd(t)
	return time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
}

func fillMonths(first, last time.Time) []time.Time {
	var out []time.Time
	for m := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC); !m.After(last); m = m.AddDate(0, 1, 0) {
		out = append(out, monthKey(m))
	}
	return out
}
