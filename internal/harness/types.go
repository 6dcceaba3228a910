package harness

// TraceEvent records one step and the result it published.
type TraceEvent struct {
	Seq    int64  `json:"seq"`
	Step   int    `json:"step"`
	Action string `json:"action"`
	Arg    string `json:"arg,omitempty"`

	// Run is the pipeline run triggered by the step, 0 when the action
	// failed and nothing was recompiled.
	Run    int64    `json:"run,omitempty"`
	States []string `json:"states,omitempty"`

	Status   string `json:"status,omitempty"`
	Stage    string `json:"stage,omitempty"`
	Summary  string `json:"summary,omitempty"`
	Message  string `json:"message,omitempty"`
	Artifact string `json:"artifact,omitempty"`

	// Error is the action's own error.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion matched.
	Pass bool `json:"pass"`

	// SessionID is the id the scenario's session ran under.
	SessionID string `json:"session_id"`

	// Trace holds one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result with an empty trace.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Runs counts the steps that triggered a pipeline run.
func (r *Result) Runs() int {
	n := 0
	for _, ev := range r.Trace {
		if ev.Run > 0 {
			n++
		}
	}
	return n
}
