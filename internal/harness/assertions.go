package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/ashpad/internal/session"
	"github.com/roach88/ashpad/internal/testutil"
)

// AssertionError is returned when an assertion fails. It carries the trace
// so a failure can be read without rerunning the scenario.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		switch {
		case ev.Error != "":
			fmt.Fprintf(&buf, "  [%d] %s %s: error %s\n", ev.Seq, ev.Action, ev.Arg, ev.Error)
		case ev.Stage != "":
			fmt.Fprintf(&buf, "  [%d] %s %s: run %d %s at %s\n", ev.Seq, ev.Action, ev.Arg, ev.Run, ev.Status, ev.Stage)
		default:
			fmt.Fprintf(&buf, "  [%d] %s %s: run %d %s\n", ev.Seq, ev.Action, ev.Arg, ev.Run, ev.Status)
		}
	}
	return buf.String()
}

// AssertionContext gives assertions access to the finished session.
type AssertionContext struct {
	Session *session.Session
	States  *testutil.StateRecorder
}

func assertRunCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if ev.Run > 0 {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertRunCount,
			Expected: fmt.Sprintf("%d runs", a.Count),
			Actual:   fmt.Sprintf("%d runs", count),
			Trace:    trace,
		}
	}
	return nil
}

func assertStates(trace []TraceEvent, states *testutil.StateRecorder, a Assertion) error {
	var got []string
	for _, s := range states.States(a.Run) {
		got = append(got, string(s))
	}
	if !slices.Equal(got, a.States) {
		return &AssertionError{
			Type:     AssertStates,
			Expected: fmt.Sprintf("run %d states %v", a.Run, a.States),
			Actual:   fmt.Sprintf("%v", got),
			Trace:    trace,
		}
	}
	return nil
}

func assertSelection(trace []TraceEvent, sess *session.Session, a Assertion) error {
	sel := sess.Selection()
	var diffs []string
	if a.Target != "" && a.Target != string(sel.Target) {
		diffs = append(diffs, fmt.Sprintf("target %s", sel.Target))
	}
	if a.Field != "" && a.Field != string(sel.Field) {
		diffs = append(diffs, fmt.Sprintf("field %s", sel.Field))
	}
	if a.Active != "" && a.Active != sel.ActiveFile {
		diffs = append(diffs, fmt.Sprintf("active %s", sel.ActiveFile))
	}
	if len(diffs) > 0 {
		return &AssertionError{
			Type:     AssertSelection,
			Expected: fmt.Sprintf("target=%q field=%q active=%q", a.Target, a.Field, a.Active),
			Actual:   strings.Join(diffs, ", "),
			Trace:    trace,
		}
	}
	return nil
}

func assertFile(trace []TraceEvent, sess *session.Session, a Assertion) error {
	text, err := sess.Workspace().Get(a.File)
	switch {
	case a.Absent && err == nil:
		return &AssertionError{
			Type:     AssertFile,
			Expected: fmt.Sprintf("%s absent", a.File),
			Actual:   "present",
			Trace:    trace,
		}
	case a.Absent:
		return nil
	case err != nil:
		return &AssertionError{
			Type:     AssertFile,
			Expected: fmt.Sprintf("%s present", a.File),
			Actual:   err.Error(),
			Trace:    trace,
		}
	case !strings.Contains(text, a.Contains):
		return &AssertionError{
			Type:     AssertFile,
			Expected: fmt.Sprintf("%s containing %q", a.File, a.Contains),
			Actual:   fmt.Sprintf("%q", text),
			Trace:    trace,
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result and returns
// one message per failed assertion. Selection, file and states assertions
// need actx.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertRunCount:
			err = assertRunCount(result.Trace, a)
		case AssertStates:
			if actx == nil || actx.States == nil {
				err = fmt.Errorf("assertion[%d]: states requires a state recorder", i)
			} else {
				err = assertStates(result.Trace, actx.States, a)
			}
		case AssertSelection, AssertFile:
			if actx == nil || actx.Session == nil {
				err = fmt.Errorf("assertion[%d]: %s requires a session", i, a.Type)
			} else if a.Type == AssertSelection {
				err = assertSelection(result.Trace, actx.Session, a)
			} else {
				err = assertFile(result.Trace, actx.Session, a)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
