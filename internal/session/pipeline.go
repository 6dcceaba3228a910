package session

import (
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/roach88/ashpad/internal/ash"
	"github.com/roach88/ashpad/internal/field"
	"github.com/roach88/ashpad/internal/workspace"
)

// State is a pipeline state.
type State string

const (
	StateIdle            State = "idle"
	StateConfiguring     State = "configuring"
	StateCompiling       State = "compiling"
	StateBuildingWitness State = "building_witness"
	StateVerifying       State = "verifying"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// EntryFn is the function every compilation starts from.
const EntryFn = "entry"

// Tracer observes pipeline state transitions.
type Tracer interface {
	Enter(run int64, state State)
}

// TracerFunc adapts a function to Tracer.
type TracerFunc func(run int64, state State)

// Enter calls f.
func (f TracerFunc) Enter(run int64, state State) { f(run, state) }

// request is everything one run reads. It is assembled from the session
// after the editor buffer has been committed.
type request struct {
	run    int64
	sel    Selection
	files  map[string]string
	source string
	single bool
}

// pipeline runs compilations. It holds no state between runs.
type pipeline struct {
	log    *zap.Logger
	tracer Tracer
}

func (p *pipeline) enter(run int64, s State) {
	p.log.Debug("pipeline state", zap.Int64("run", run), zap.String("state", string(s)))
	if p.tracer != nil {
		p.tracer.Enter(run, s)
	}
}

func (p *pipeline) fail(req request, stage Stage, msg string) Result {
	p.enter(req.run, StateFailed)
	p.log.Debug("pipeline failed", zap.Int64("run", req.run), zap.String("stage", string(stage)))
	return Result{
		Status:  StatusFailure,
		Target:  string(req.sel.Target),
		Field:   string(req.sel.Field),
		Stage:   stage,
		Message: Sanitize(stage, msg),
	}
}

// compile runs the pipeline over field T. The caller has already checked the
// selection for compatibility.
func compile[T field.Element[T]](p *pipeline, req request) Result {
	sel := req.sel

	p.enter(req.run, StateConfiguring)
	c, err := ash.Configure[T](ash.Config{
		Target:              sel.Target,
		Field:               sel.Field,
		EntryFn:             EntryFn,
		ExtensionPriorities: ExtensionPriorities(sel.Target),
	})
	if err != nil {
		return p.fail(req, StageConfiguration, fmt.Sprintf("Failed to create compiler: %v", err))
	}

	p.enter(req.run, StateCompiling)
	files := req.files
	if req.single {
		files = maps.Clone(files)
		delete(files, workspace.EntryFile)
	}
	if err := c.IncludeVFS(files); err != nil {
		return p.fail(req, StageCompilation, fmt.Sprintf("Failed to load workspace: %v", err))
	}
	var prog *ash.Program[T]
	if req.single {
		prog, err = c.CompileSource(req.source)
	} else {
		prog, err = c.Compile(EntryFn)
	}
	if err != nil {
		return p.fail(req, StageCompilation, fmt.Sprintf("Failed to compile to %s: %v", sel.Target, err))
	}

	out := Result{
		Status:   StatusSuccess,
		Target:   string(sel.Target),
		Field:    string(sel.Field),
		Artifact: prog.String(),
	}
	switch sel.Target {
	case ash.TargetR1CS:
		p.enter(req.run, StateBuildingWitness)
		w, err := ash.BuildWitness(prog, nil)
		if err != nil {
			return p.fail(req, StageWitnessBuild, fmt.Sprintf("Failed to build witness: %v", err))
		}

		p.enter(req.run, StateVerifying)
		if err := ash.VerifyWitness(prog, w); err != nil {
			return p.fail(req, StageWitnessVerify, fmt.Sprintf("Failed to solve r1cs: %v", err))
		}
		out.Summary = fmt.Sprintf("Compiling for field %s...\nR1CS: built and validated witness ✅", sel.Field)
	default:
		out.Summary = fmt.Sprintf("Compiling for field %s...\nCompiled program to tasm source", sel.Field)
	}

	p.enter(req.run, StateDone)
	return out
}
