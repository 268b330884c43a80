package analytics

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"openclaw/internal/core"
)

func sampleTransactions() []core.Record {
	return []core.Record{
		{"customer_id": 1, "amount_spent": 50, "date": "2026-01-15"},
		{"customer_id": 1, "amount_spent": 150, "date": "2026-02-10"},
		{"customer_id": 2, "amount_spent": 300, "date": "2026-01-20"},
	}
}

func TestAverageLTV(t *testing.T) {
	tests := []struct {
		name    string
		records []core.Record
		want    float64
		wantErr error
	}{
		{
			name:    "mean of per-customer sums",
			records: sampleTransactions(),
			want:    250,
		},
		{
			name: "mixed numeric representations of the same customer",
			records: []core.Record{
				{"customer_id": 7, "amount_spent": json.Number("10")},
				{"customer_id": 7.0, "amount_spent": "5,5"},
			},
			want: 15.5,
		},
		{
			name: "records without customer are ignored",
			records: []core.Record{
				{"customer_id": "a", "amount_spent": 10},
				{"amount_spent": 1000},
				{"customer_id": nil, "amount_spent": 1000},
			},
			want: 10,
		},
		{
			name: "customer without amount still counts",
			records: []core.Record{
				{"customer_id": "a", "amount_spent": 100},
				{"customer_id": "b"},
			},
			want: 50,
		},
		{
			name:    "empty input",
			records: nil,
			wantErr: core.ErrEmptyInput,
		},
		{
			name:    "customer field absent everywhere",
			records: []core.Record{{"amount_spent": 10}},
			wantErr: core.ErrMissingField,
		},
		{
			name:    "amount field absent everywhere",
			records: []core.Record{{"customer_id": 1, "amount": 10}},
			wantErr: core.ErrMissingField,
		},
		{
			name:    "no usable customer ids",
			records: []core.Record{{"customer_id": nil, "amount_spent": 10}},
			wantErr: core.ErrMissingField,
		},
		{
			name:    "non numeric amount",
			records: []core.Record{{"customer_id": 1, "amount_spent": "lots"}},
			wantErr: core.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AverageLTV(tt.records)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if got != 0 {
					t.Fatalf("expected 0 on error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("AverageLTV = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAverageLTVDoesNotMutateInput(t *testing.T) {
	records := sampleTransactions()
	if _, err := AverageLTV(records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records[0]) != 3 || records[0]["amount_spent"] != 50 {
		t.Fatalf("input was modified: %v", records[0])
	}
}

func TestMonthlyRevenue(t *testing.T) {
	amountSpent := core.RevenueFields{DateField: "date", AmountField: "amount_spent"}

	tests := []struct {
		name    string
		records []core.Record
		fields  core.RevenueFields
		want    core.Series
		wantErr error
	}{
		{
			name: "groups by calendar month in chronological order",
			records: []core.Record{
				{"date": "2026-02-10", "amount": 150},
				{"date": "2026-01-15", "amount": 50},
				{"date": "2026-01-20", "amount": 300},
			},
			fields: core.RevenueFields{},
			want:   core.Series{{Label: "2026-01", Value: 350}, {Label: "2026-02", Value: 150}},
		},
		{
			name:    "caller selected amount field",
			records: sampleTransactions(),
			fields:  amountSpent,
			want:    core.Series{{Label: "2026-01", Value: 350}, {Label: "2026-02", Value: 150}},
		},
		{
			name: "months across a year boundary",
			records: []core.Record{
				{"when": "2026-01-01", "amount": 1},
				{"when": "2025-12-31T23:00:00Z", "amount": 2},
			},
			fields: core.RevenueFields{DateField: "when"},
			want:   core.Series{{Label: "2025-12", Value: 2}, {Label: "2026-01", Value: 1}},
		},
		{
			name: "time values and missing dates",
			records: []core.Record{
				{"date": time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), "amount": 10.5},
				{"amount": 99},
				{"date": nil, "amount": 99},
			},
			want: core.Series{{Label: "2026-03", Value: 10.5}},
		},
		{
			name: "gaps are skipped by default",
			records: []core.Record{
				{"date": "2026-01-15", "amount": 1},
				{"date": "2026-04-15", "amount": 4},
			},
			want: core.Series{{Label: "2026-01", Value: 1}, {Label: "2026-04", Value: 4}},
		},
		{
			name: "gaps are zero filled on request",
			records: []core.Record{
				{"date": "2026-04-15", "amount": 4},
				{"date": "2026-01-15", "amount": 1},
			},
			fields: core.RevenueFields{FillGaps: true},
			want: core.Series{
				{Label: "2026-01", Value: 1},
				{Label: "2026-02", Value: 0},
				{Label: "2026-03", Value: 0},
				{Label: "2026-04", Value: 4},
			},
		},
		{
			name:    "empty input",
			wantErr: core.ErrEmptyInput,
		},
		{
			name:    "missing date column",
			records: []core.Record{{"amount": 1}},
			wantErr: core.ErrMissingField,
		},
		{
			name:    "missing amount column",
			records: []core.Record{{"date": "2026-01-01"}},
			fields:  amountSpent,
			wantErr: core.ErrMissingField,
		},
		{
			name:    "unparseable date",
			records: []core.Record{{"date": "2026-01-01", "amount": 1}, {"date": "yesterday", "amount": 1}},
			wantErr: core.ErrInvalidDate,
		},
		{
			name:    "type mismatch during summation",
			records: []core.Record{{"date": "2026-01-01", "amount": map[string]int{"x": 1}}},
			wantErr: core.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MonthlyRevenue(tt.records, tt.fields)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d points %v, want %v", len(got), got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("point %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChurnRate(t *testing.T) {
	tests := []struct {
		start, lost int
		want        float64
		wantErr     bool
	}{
		{100, 25, 25, false},
		{200, 0, 0, false},
		{4, 1, 25, false},
		{0, 10, 0, true},
		{-5, 1, 0, true},
	}
	for _, tt := range tests {
		got, err := ChurnRate(tt.start, tt.lost)
		if tt.wantErr {
			if !errors.Is(err, core.ErrNoActiveCustomers) {
				t.Errorf("ChurnRate(%d, %d) expected ErrNoActiveCustomers, got %v", tt.start, tt.lost, err)
			}
		} else if err != nil {
			t.Errorf("ChurnRate(%d, %d) unexpected error: %v", tt.start, tt.lost, err)
		}
		if got != tt.want {
			t.Errorf("ChurnRate(%d, %d) = %v, want %v", tt.start, tt.lost, got, tt.want)
		}
	}
}
