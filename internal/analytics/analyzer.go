package analytics

import (
	"encoding/json"
	"errors"
	"fmt"

	"openclaw/internal/core"
	applog "openclaw/internal/log"
)

// Analyzer is the lenient boundary over the metric functions: it never returns
// an error and never panics. Failures are logged and replaced by the zero value
// of the operation.
type Analyzer struct {
	logger *applog.Logger
}

func NewAnalyzer(logger *applog.Logger) *Analyzer {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Analyzer{logger: logger.WithComponent(applog.ComponentAnalytics)}
}

// LTV returns the average lifetime value, or 0.0 when it cannot be computed.
func (a *Analyzer) LTV(records []core.Record) (ltv float64) {
	a.logger.Info("Computing LTV metric", applog.FieldRecords, len(records))
	defer a.recoverTo(applog.OpLTV, len(records), func() { ltv = 0 })

	v, err := AverageLTV(records)
	if err != nil {
		a.fail(applog.OpLTV, len(records), err)
		return 0
	}
	return v
}

// RevenueByMonth returns the monthly revenue series, or an empty series on failure.
func (a *Analyzer) RevenueByMonth(records []core.Record, fields core.RevenueFields) (series core.Series) {
	a.logger.Info("Aggregating revenue by month", applog.FieldRecords, len(records))
	defer a.recoverTo(applog.OpMonthlyRevenue, len(records), func() { series = core.Series{} })

	s, err := MonthlyRevenue(records, fields)
	if err != nil {
		a.fail(applog.OpMonthlyRevenue, len(records), err)
		return core.Series{}
	}
	return s
}

// RevenueByMonthJSON is RevenueByMonth encoded as a compact JSON array of
// {label, value} objects. It returns "[]" on failure.
func (a *Analyzer) RevenueByMonthJSON(records []core.Record, fields core.RevenueFields) string {
	series := a.RevenueByMonth(records, fields)
	b, err := json.Marshal(series)
	if err != nil {
		a.fail(applog.OpMonthlyRevenue, len(records), fmt.Errorf("encode series: %w", err))
		return "[]"
	}
	return string(b)
}

// Churn returns the churn percentage, 0.0 when there were no active customers.
func (a *Analyzer) Churn(activeStart, lost int) float64 {
	v, err := ChurnRate(activeStart, lost)
	if err != nil {
		a.logger.Debug("Churn rate defaulted to zero",
			applog.FieldOperation, applog.OpChurn,
			"active_customers_start", activeStart,
			applog.FieldError, err)
		return 0
	}
	return v
}

func (a *Analyzer) fail(op string, records int, err error) {
	fields := applog.NewFields().
		WithOperation(op).
		WithRecords(records).
		WithError(err, errorType(err))
	a.logger.Error("Metric computation failed", fields.ToSlice()...)
}

func (a *Analyzer) recoverTo(op string, records int, reset func()) {
	if r := recover(); r != nil {
		a.fail(op, records, fmt.Errorf("panic: %v", r))
		reset()
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyInput),
		errors.Is(err, core.ErrMissingField),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate):
		return applog.ErrorTypeInput
	default:
		return applog.ErrorTypeInternal
	}
}
