package harness

// TraceEvent is one translated stack event in a scenario's trace.
type TraceEvent struct {
	Seq   int64  `json:"seq"`
	Stack string `json:"stack"`
	Snap  int64  `json:"snap"`
	Level int64  `json:"level"`
	Space string `json:"space"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success: every flow expectation
	// and assertion held.
	Pass bool `json:"pass"`

	// Trace contains the translated stack events in dispatch order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
