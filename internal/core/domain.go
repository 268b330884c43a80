package core

import (
	"errors"
	"strings"
)

const (
	CustomerIDField  = "customer_id"
	AmountSpentField = "amount_spent"
	DefaultDateField = "date"
	DefaultAmount    = "amount"

	DefaultXKey        = "label"
	DefaultCategoryKey = "value"
)

type (
	// Record is one transaction as handed over by the caller. The pipeline only reads it.
	Record map[string]any

	// RevenueFields selects the record keys used by monthly revenue aggregation.
	RevenueFields struct {
		DateField   string
		AmountField string
		// FillGaps emits zero-valued points for months without records
		// between the first and the last bucket.
		FillGaps bool
	}

	// RecordKeys names the two keys of every object in a record-array chart.
	RecordKeys struct {
		XKey        string
		CategoryKey string
	}
)

var (
	ErrEmptyInput        = errors.New("empty input")
	ErrMissingField      = errors.New("missing field")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDate       = errors.New("invalid date")
	ErrNoActiveCustomers = errors.New("no active customers")
	ErrMalformedSeries   = errors.New("malformed series")
	ErrDuplicateKey      = errors.New("duplicate output key")
	ErrUnknownKind       = errors.New("unknown chart kind")
)

// DefaultRevenueFields returns the field names used when the caller does not pick any.
func DefaultRevenueFields() RevenueFields {
	return RevenueFields{DateField: DefaultDateField, AmountField: DefaultAmount}
}

// WithDefaults fills blank field names.
func (f RevenueFields) WithDefaults() RevenueFields {
	if strings.TrimSpace(f.DateField) == "" {
		f.DateField = DefaultDateField
	}
	if strings.TrimSpace(f.AmountField) == "" {
		f.AmountField = DefaultAmount
	}
	return f
}

// DefaultRecordKeys returns label/value.
func DefaultRecordKeys() RecordKeys {
	return RecordKeys{XKey: DefaultXKey, CategoryKey: DefaultCategoryKey}
}

// WithDefaults fills blank key names.
func (k RecordKeys) WithDefaults() RecordKeys {
	if k.XKey == "" {
		k.XKey = DefaultXKey
	}
	if k.CategoryKey == "" {
		k.CategoryKey = DefaultCategoryKey
	}
	return k
}

func (k RecordKeys) Validate() error {
	k = k.WithDefaults()
	if k.XKey == k.CategoryKey {
		return ErrDuplicateKey
	}
	return nil
}

// Lookup returns the value stored under key, treating nil as absent.
func (r Record) Lookup(key string) (any, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// AnyHas reports whether at least one record carries key (even with a nil value),
// which is how a column exists in a tabular view of the records.
func AnyHas(records []Record, key string) bool {
	for _, r := range records {
		if _, ok := r[key]; ok {
			return true
		}
	}
	return false
}
