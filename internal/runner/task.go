package runner

import "encoding/json"

// Status is the outcome reported for a task.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// DefaultModel is used when the caller does not pick a model.
const DefaultModel = "llama3.1"

// Task identifies the work handed to the runner.
type Task struct {
	ID    string
	Model string
}

// Result is the structured report printed by the runner.
type Result struct {
	TaskID    string `json:"taskId"`
	Model     string `json:"model"`
	Status    Status `json:"status"`
	Output    string `json:"output"`
	StepsUsed int    `json:"stepsUsed"`
}

// WithDefaults fills the default model. The ID is kept exactly as given,
// surrounding spaces and the empty string included.
func (t Task) WithDefaults() Task {
	if t.Model == "" {
		t.Model = DefaultModel
	}
	return t
}

// ToJSON encodes the result as a single compact JSON object.
func (r Result) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// ResultFromJSON decodes a result produced by ToJSON.
func ResultFromJSON(data []byte) (Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, err
	}
	return r, nil
}
