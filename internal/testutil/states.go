package testutil

import (
	"sync"

	"github.com/roach88/ashpad/internal/session"
)

// StateRecorder is a session.Tracer that keeps every pipeline state entered,
// grouped by run.
type StateRecorder struct {
	mu   sync.Mutex
	runs map[int64][]session.State
}

var _ session.Tracer = (*StateRecorder)(nil)

// NewStateRecorder returns an empty recorder.
func NewStateRecorder() *StateRecorder {
	return &StateRecorder{runs: make(map[int64][]session.State)}
}

// Enter implements session.Tracer.
func (r *StateRecorder) Enter(run int64, state session.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run] = append(r.runs[run], state)
}

// States returns a copy of the states entered during run.
func (r *StateRecorder) States(run int64) []session.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]session.State, len(r.runs[run]))
	copy(out, r.runs[run])
	return out
}

// Runs reports how many distinct runs were traced.
func (r *StateRecorder) Runs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}
