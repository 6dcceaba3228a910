package session

import (
	"fmt"

	"github.com/roach88/ashpad/internal/ash"
	"github.com/roach88/ashpad/internal/field"
)

// Selection is what the user has chosen to compile.
type Selection struct {
	ActiveFile string     `json:"active_file"`
	Target     ash.Target `json:"target"`
	Field      field.Kind `json:"field"`
}

// Pair is a (target, field) combination.
type Pair struct {
	Target ash.Target `json:"target"`
	Field  field.Kind `json:"field"`
}

// CompatibilityError reports a target that is not defined over the selected
// field. It is raised before any compiler call is made.
type CompatibilityError struct {
	Target   ash.Target
	Field    field.Kind
	Required field.Kind
}

func (e *CompatibilityError) Error() string {
	return fmt.Sprintf("%s target must be compiled to the %s field", e.Target, e.Required)
}

// Targets lists the supported targets.
func Targets() []ash.Target {
	return []ash.Target{ash.TargetR1CS, ash.TargetTasm}
}

// ParseTarget converts a user-supplied target name.
func ParseTarget(s string) (ash.Target, error) {
	t := ash.Target(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown target %q (expected r1cs or tasm)", s)
	}
	return t, nil
}

// Validate decides whether target can be compiled over f.
//
// The tasm target is defined over exactly one field; every other field is
// rejected with a CompatibilityError naming it. r1cs accepts every field.
func Validate(target ash.Target, f field.Kind) error {
	if target == ash.TargetTasm && f != ash.TasmField {
		return &CompatibilityError{Target: target, Field: f, Required: ash.TasmField}
	}
	return nil
}

// Pairs lists every (target, field) combination in a fixed order.
func Pairs() []Pair {
	var out []Pair
	for _, t := range Targets() {
		for _, k := range field.Kinds() {
			out = append(out, Pair{Target: t, Field: k})
		}
	}
	return out
}

// ExtensionPriorities returns the file extensions the compiler resolves
// function names with for target, most preferred first. The target-specific
// hand-written extension wins over ash source.
func ExtensionPriorities(target ash.Target) []string {
	switch target {
	case ash.TargetTasm:
		return []string{ash.ExtTasm, ash.ExtAsh}
	case ash.TargetR1CS:
		return []string{ash.ExtAR1CS, ash.ExtAsh}
	}
	return []string{ash.ExtAsh}
}
