package harness

import "github.com/roach88/dbnav/internal/result"

// StepRecord is the outcome of one scenario step.
type StepRecord struct {
	Op string `json:"op"`

	// ID is the node or relation instance a step created.
	ID string `json:"id,omitempty"`

	// Error is the error code the step failed with.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step behaved as expected and every assertion
	// held.
	Pass bool `json:"pass"`

	Steps []StepRecord `json:"steps"`

	// Table is the result table over the scenario window.
	Table result.Table `json:"table"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepRecord{},
		Table:  result.Empty(),
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep records the outcome of a step.
func (r *Result) AddStep(op, id, code string) {
	r.Steps = append(r.Steps, StepRecord{Op: op, ID: id, Error: code})
}
