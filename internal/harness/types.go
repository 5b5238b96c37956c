package harness

// TraceEvent records one action processed by the store.
type TraceEvent struct {
	Seq    int64          `json:"seq"`
	At     string         `json:"at"` // virtual time since scenario start, e.g. "1.1s"
	Action string         `json:"action"`
	Args   map[string]any `json:"args,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step and assertion succeeded.
	Pass bool `json:"pass"`

	// Trace contains every processed action in processing order, including
	// the ones dispatched by effects.
	Trace []TraceEvent `json:"trace"`

	// Errors contains step and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is a snapshot of the final application state.
	State map[string]any `json:"state,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string]any),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a processed action to the trace.
func (r *Result) AddTrace(at, action string, args map[string]any) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:    int64(len(r.Trace) + 1),
		At:     at,
		Action: action,
		Args:   args,
	})
}
