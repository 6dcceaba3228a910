package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ashpad/internal/field"
	"github.com/roach88/ashpad/internal/session"
)

// validName matches scenario names. Names double as golden file names.
var validName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Scenario is a scripted editing session.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// SessionID fixes the session id. Defaults to testutil.DefaultSessionID.
	SessionID string `yaml:"session_id,omitempty"`

	// Workspace is a directory of source files, relative to the scenario
	// file. Empty selects the demo workspace.
	Workspace string `yaml:"workspace,omitempty"`

	// Files are added to the workspace before the session opens, replacing
	// files of the same name.
	Files map[string]string `yaml:"files,omitempty"`

	// Initial selection. Empty values take the session defaults.
	Target string `yaml:"target,omitempty"`
	Field  string `yaml:"field,omitempty"`
	Active string `yaml:"active,omitempty"`

	// SingleFile compiles only the editor buffer.
	SingleFile bool `yaml:"single_file,omitempty"`

	// Steps run in order on one session.
	Steps []Step `yaml:"steps"`

	// Assertions check the trace and final session state.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// dir is the directory the scenario was loaded from.
	dir string
}

// Step is one user action. Exactly one action field is set.
type Step struct {
	Compile bool      `yaml:"compile,omitempty"`
	Edit    *string   `yaml:"edit,omitempty"`
	Select  string    `yaml:"select,omitempty"`
	Add     *FileStep `yaml:"add,omitempty"`
	Remove  string    `yaml:"remove,omitempty"`
	Target  string    `yaml:"target,omitempty"`
	Field   string    `yaml:"field,omitempty"`

	// Expect checks the result published after the step.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// FileStep names a file and its text.
type FileStep struct {
	Name string `yaml:"name"`
	Text string `yaml:"text"`
}

// Step action names, as they appear in traces.
const (
	ActionCompile = "compile"
	ActionEdit    = "edit"
	ActionSelect  = "select"
	ActionAdd     = "add"
	ActionRemove  = "remove"
	ActionTarget  = "target"
	ActionField   = "field"
)

// Action returns the step's action name and its argument. A step with no
// action or more than one returns an empty name.
func (s Step) Action() (name, arg string) {
	n := 0
	set := func(a, v string) {
		n++
		name, arg = a, v
	}
	if s.Compile {
		set(ActionCompile, "")
	}
	if s.Edit != nil {
		set(ActionEdit, *s.Edit)
	}
	if s.Select != "" {
		set(ActionSelect, s.Select)
	}
	if s.Add != nil {
		set(ActionAdd, s.Add.Name)
	}
	if s.Remove != "" {
		set(ActionRemove, s.Remove)
	}
	if s.Target != "" {
		set(ActionTarget, s.Target)
	}
	if s.Field != "" {
		set(ActionField, s.Field)
	}
	if n != 1 {
		return "", ""
	}
	return name, arg
}

// ExpectClause checks one step's outcome. Unset fields are not checked.
type ExpectClause struct {
	// Status is "success" or "failure".
	Status string `yaml:"status,omitempty"`

	// Stage is the failing stage.
	Stage string `yaml:"stage,omitempty"`

	SummaryContains  []string `yaml:"summary_contains,omitempty"`
	MessageContains  []string `yaml:"message_contains,omitempty"`
	ArtifactContains []string `yaml:"artifact_contains,omitempty"`

	// NoArtifact requires the published artifact to be empty.
	NoArtifact bool `yaml:"no_artifact,omitempty"`

	// Error expects the action itself to fail with a message containing
	// this text. No recompile follows a failed action.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the trace or final session state.
type Assertion struct {
	// Type is one of run_count, states, selection or file.
	Type string `yaml:"type"`

	// Count is the expected number of runs (run_count).
	Count int `yaml:"count,omitempty"`

	// Run and States give the expected pipeline states of one run (states).
	Run    int64    `yaml:"run,omitempty"`
	States []string `yaml:"states,omitempty"`

	// Target, Field and Active are the expected final selection (selection).
	Target string `yaml:"target,omitempty"`
	Field  string `yaml:"field,omitempty"`
	Active string `yaml:"active,omitempty"`

	// File must exist and contain Contains, or be absent when Absent is set
	// (file).
	File     string `yaml:"file,omitempty"`
	Contains string `yaml:"contains,omitempty"`
	Absent   bool   `yaml:"absent,omitempty"`
}

// Assertion type constants.
const (
	AssertRunCount  = "run_count"
	AssertStates    = "states"
	AssertSelection = "selection"
	AssertFile      = "file"
)

// LoadScenario reads and parses a scenario YAML file. The workspace path is
// resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML. Unknown fields are rejected so that a
// typo such as "assertion:" fails loudly.
func ParseScenario(data []byte, dir string) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	scenario.dir = dir

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// WorkspaceDir returns the resolved workspace directory, or "" for the demo
// workspace.
func (s *Scenario) WorkspaceDir() string {
	if s.Workspace == "" || filepath.IsAbs(s.Workspace) {
		return s.Workspace
	}
	return filepath.Join(s.dir, s.Workspace)
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !validName.MatchString(s.Name) {
		return fmt.Errorf("name %q must be lowercase letters, digits, '_' or '-'", s.Name)
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if s.Target != "" {
		if _, err := session.ParseTarget(s.Target); err != nil {
			return err
		}
	}
	if s.Field != "" {
		if _, err := field.ParseKind(s.Field); err != nil {
			return err
		}
	}
	if dir := s.WorkspaceDir(); dir != "" {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fmt.Errorf("workspace directory not found: %s", dir)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, step Step) error {
	name, arg := step.Action()
	switch name {
	case "":
		return fmt.Errorf("steps[%d]: exactly one action is required", i)
	case ActionTarget:
		if _, err := session.ParseTarget(arg); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	case ActionField:
		if _, err := field.ParseKind(arg); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	case ActionAdd:
		if step.Add.Name == "" {
			return fmt.Errorf("steps[%d]: add requires a name", i)
		}
	}

	e := step.Expect
	if e == nil {
		return nil
	}
	if e.Error != "" && (e.Status != "" || e.Stage != "") {
		return fmt.Errorf("steps[%d].expect: error cannot be combined with status or stage", i)
	}
	switch session.Status(e.Status) {
	case "", session.StatusSuccess, session.StatusFailure:
	default:
		return fmt.Errorf("steps[%d].expect: unknown status %q", i, e.Status)
	}
	if e.Stage != "" && !slices.Contains(session.Stages(), session.Stage(e.Stage)) {
		return fmt.Errorf("steps[%d].expect: unknown stage %q", i, e.Stage)
	}
	if e.Stage != "" && session.Status(e.Status) == session.StatusSuccess {
		return fmt.Errorf("steps[%d].expect: a successful result has no stage", i)
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertRunCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for run_count", index)
		}
	case AssertStates:
		if a.Run <= 0 {
			return fmt.Errorf("assertions[%d]: run is required for states", index)
		}
		if len(a.States) == 0 {
			return fmt.Errorf("assertions[%d]: states list is required for states", index)
		}
	case AssertSelection:
		if a.Target == "" && a.Field == "" && a.Active == "" {
			return fmt.Errorf("assertions[%d]: selection needs target, field or active", index)
		}
	case AssertFile:
		if a.File == "" {
			return fmt.Errorf("assertions[%d]: file is required for file", index)
		}
		if a.Absent && a.Contains != "" {
			return fmt.Errorf("assertions[%d]: absent cannot be combined with contains", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
