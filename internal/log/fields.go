package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldRecords    = "records"
	FieldPoints     = "points"
	FieldSource     = "source"
	FieldKind       = "kind"
	FieldTaskID     = "task_id"
	FieldModel      = "model"
	FieldStatus     = "status"
	FieldExchange   = "exchange"
	FieldRoutingKey = "routing_key"
	FieldDuration   = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentAnalytics = "analytics"
	ComponentChart     = "chart"
	ComponentRunner    = "runner"
	ComponentSource    = "source"
	ComponentAMQP      = "amqp"
)

// Operations defines standard operation names
const (
	OpLTV            = "calculate_ltv"
	OpMonthlyRevenue = "aggregate_revenue_by_month"
	OpChurn          = "compute_churn_rate"
	OpBarChart       = "generate_bar_chart"
	OpRecordArray    = "generate_record_array"
	OpLoad           = "load"
	OpPublish        = "publish"
	OpRun            = "run"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeInput         = "input_shape_error"
	ErrorTypeInternal      = "internal_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeNetwork       = "network_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error and error type fields
func (f LogFields) WithError(err error, errorType string) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
		f[FieldErrorType] = errorType
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRecords adds the number of input records
func (f LogFields) WithRecords(n int) LogFields {
	f[FieldRecords] = n
	return f
}

// WithTask adds task id and model fields
func (f LogFields) WithTask(taskID, model string) LogFields {
	f[FieldTaskID] = taskID
	f[FieldModel] = model
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
