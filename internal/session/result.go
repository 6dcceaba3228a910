package session

import (
	"fmt"
	"strings"
)

// Stage names the point at which a run failed.
type Stage string

const (
	StageCompatibility Stage = "compatibility"
	StageConfiguration Stage = "configuration"
	StageCompilation   Stage = "compilation"
	StageWitnessBuild  Stage = "witness_build"
	StageWitnessVerify Stage = "witness_verify"
)

// Stages lists every failure stage in pipeline order.
func Stages() []Stage {
	return []Stage{StageCompatibility, StageConfiguration, StageCompilation, StageWitnessBuild, StageWitnessVerify}
}

// Status is the outcome of a run.
type Status string

const (
	// StatusNone is the status before the first run.
	StatusNone    Status = ""
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Result is the outcome of one pipeline run. A success carries a summary and
// the rendered program; a failure carries its stage and a non-empty,
// sanitized message and never an artifact.
type Result struct {
	Status Status `json:"status"`

	// Selection the run compiled.
	Target string `json:"target"`
	Field  string `json:"field"`

	Summary  string `json:"summary,omitempty"`
	Artifact string `json:"artifact,omitempty"`

	Stage   Stage  `json:"stage,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the run succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// StatusLine is the short text shown above the artifact.
func (r Result) StatusLine() string {
	switch r.Status {
	case StatusSuccess:
		return r.Summary
	case StatusFailure:
		return r.Message
	}
	return "not compiled yet"
}

// Headline is the first line of StatusLine.
func (r Result) Headline() string {
	line, _, _ := strings.Cut(r.StatusLine(), "\n")
	return line
}

// StageError is an error tagged with the pipeline stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Err returns the failure of r as a *StageError, or nil on success.
func (r Result) Err() error {
	if r.Status != StatusFailure {
		return nil
	}
	return &StageError{Stage: r.Stage, Err: fmt.Errorf("%s", r.Message)}
}
