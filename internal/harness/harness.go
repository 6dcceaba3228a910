package harness

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/ashpad/internal/ash"
	"github.com/roach88/ashpad/internal/field"
	"github.com/roach88/ashpad/internal/session"
	"github.com/roach88/ashpad/internal/testutil"
	"github.com/roach88/ashpad/internal/workspace"
)

// Harness executes one scenario on a fresh session.
type Harness struct {
	sess   *session.Session
	clock  *testutil.DeterministicClock
	states *testutil.StateRecorder
	log    *zap.Logger
}

// Run executes a scenario and returns its result. Each scenario gets its own
// workspace copy and session, so scenarios can run in parallel.
//
// An error is returned only when the scenario cannot be set up; expectation
// and assertion failures are reported in Result.Errors.
func Run(ctx context.Context, scenario *Scenario, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("scenario", scenario.Name))

	ws, err := openWorkspace(scenario)
	if err != nil {
		return nil, err
	}

	opts := session.Options{
		Workspace:  ws,
		ActiveFile: scenario.Active,
		SingleFile: scenario.SingleFile,
		Logger:     log,
		IDs:        testutil.NewFixedIDGenerator(scenario.SessionID),
	}
	if scenario.Target != "" {
		if opts.Target, err = session.ParseTarget(scenario.Target); err != nil {
			return nil, err
		}
	}
	if scenario.Field != "" {
		if opts.Field, err = field.ParseKind(scenario.Field); err != nil {
			return nil, err
		}
	}
	states := testutil.NewStateRecorder()
	opts.Tracer = states

	sess, err := session.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	h := &Harness{
		sess:   sess,
		clock:  testutil.NewDeterministicClock(),
		states: states,
		log:    log,
	}

	result := NewResult()
	result.SessionID = sess.ID()
	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h.executeStep(i, step, result)
	}

	actx := &AssertionContext{Session: sess, States: states}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	log.Debug("scenario finished",
		zap.Bool("pass", result.Pass),
		zap.Int("runs", result.Runs()),
	)
	return result, nil
}

func openWorkspace(scenario *Scenario) (*workspace.Workspace, error) {
	ws := workspace.Default()
	if dir := scenario.WorkspaceDir(); dir != "" {
		var err error
		if ws, err = workspace.LoadDir(dir); err != nil {
			return nil, fmt.Errorf("failed to load workspace: %w", err)
		}
	}
	for name, text := range scenario.Files {
		ws.Set(name, text)
	}
	return ws, nil
}

// executeStep applies one action, recompiles, records the trace event and
// checks the expect clause.
func (h *Harness) executeStep(i int, step Step, result *Result) {
	name, arg := step.Action()
	ev := TraceEvent{
		Seq:    h.clock.Next(),
		Step:   i,
		Action: name,
		Arg:    arg,
	}
	if name == ActionEdit {
		ev.Arg = ""
	}

	res, err := h.apply(name, arg, step)
	if err != nil {
		ev.Error = err.Error()
	} else {
		ev.Run = h.sess.Presenter().Runs()
		for _, s := range h.states.States(ev.Run) {
			ev.States = append(ev.States, string(s))
		}
		ev.Status = string(res.Status)
		ev.Stage = string(res.Stage)
		ev.Summary = res.Summary
		ev.Message = res.Message
		ev.Artifact = res.Artifact
	}
	result.Trace = append(result.Trace, ev)

	h.log.Debug("step completed",
		zap.Int("step", i),
		zap.String("action", name),
		zap.Int64("run", ev.Run),
		zap.String("status", ev.Status),
		zap.String("stage", ev.Stage),
	)

	for _, msg := range checkExpect(step.Expect, ev) {
		result.AddError(fmt.Sprintf("steps[%d] (%s): %s", i, name, msg))
	}
}

func (h *Harness) apply(name, arg string, step Step) (session.Result, error) {
	var err error
	switch name {
	case ActionCompile:
	case ActionEdit:
		return h.sess.Edit(arg), nil
	case ActionSelect:
		err = h.sess.SelectFile(arg)
	case ActionAdd:
		err = h.sess.AddFile(step.Add.Name, step.Add.Text)
	case ActionRemove:
		err = h.sess.RemoveFile(arg)
	case ActionTarget:
		var t ash.Target
		if t, err = session.ParseTarget(arg); err == nil {
			err = h.sess.SetTarget(t)
		}
	case ActionField:
		var k field.Kind
		if k, err = field.ParseKind(arg); err == nil {
			err = h.sess.SetField(k)
		}
	default:
		err = fmt.Errorf("unknown action %q", name)
	}
	if err != nil {
		return session.Result{}, err
	}
	return h.sess.TriggerRecompile(), nil
}

// checkExpect compares an event with its expect clause.
func checkExpect(e *ExpectClause, ev TraceEvent) []string {
	if e == nil {
		if ev.Error != "" {
			return []string{fmt.Sprintf("unexpected error: %s", ev.Error)}
		}
		return nil
	}

	var errs []string
	if e.Error != "" {
		switch {
		case ev.Error == "":
			errs = append(errs, fmt.Sprintf("expected error containing %q, action succeeded", e.Error))
		case !strings.Contains(ev.Error, e.Error):
			errs = append(errs, fmt.Sprintf("expected error containing %q, got %q", e.Error, ev.Error))
		}
		return errs
	}
	if ev.Error != "" {
		return []string{fmt.Sprintf("unexpected error: %s", ev.Error)}
	}

	if e.Status != "" && e.Status != ev.Status {
		errs = append(errs, fmt.Sprintf("expected status %q, got %q (%s)", e.Status, ev.Status, firstLine(ev.Message)))
	}
	if e.Stage != "" && e.Stage != ev.Stage {
		errs = append(errs, fmt.Sprintf("expected stage %q, got %q", e.Stage, ev.Stage))
	}
	errs = append(errs, missing("summary", ev.Summary, e.SummaryContains)...)
	errs = append(errs, missing("message", ev.Message, e.MessageContains)...)
	errs = append(errs, missing("artifact", ev.Artifact, e.ArtifactContains)...)
	if e.NoArtifact && ev.Artifact != "" {
		errs = append(errs, "expected no artifact")
	}
	return errs
}

func missing(what, text string, wants []string) []string {
	var errs []string
	for _, want := range wants {
		if !strings.Contains(text, want) {
			errs = append(errs, fmt.Sprintf("%s does not contain %q", what, want))
		}
	}
	return errs
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
