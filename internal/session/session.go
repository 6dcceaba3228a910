package session

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/roach88/ashpad/internal/ash"
	"github.com/roach88/ashpad/internal/digest"
	"github.com/roach88/ashpad/internal/field"
	"github.com/roach88/ashpad/internal/workspace"
)

var (
	// ErrFileExists is returned by AddFile for a name already in the workspace.
	ErrFileExists = errors.New("file already exists in workspace")

	// ErrInvalidFileName is returned by AddFile for names the compiler cannot load.
	ErrInvalidFileName = errors.New("file name must be a function name with a .ash, .ar1cs or .tasm extension")
)

// Run describes one pipeline run for a Recorder.
type Run struct {
	Session         string `json:"session"`
	Seq             int64  `json:"seq"`
	Target          string `json:"target"`
	Field           string `json:"field"`
	ActiveFile      string `json:"active_file"`
	WorkspaceDigest string `json:"workspace_digest"`
	ResultDigest    string `json:"result_digest"`
	Status          Status `json:"status"`
	Stage           Stage  `json:"stage,omitempty"`
	StatusLine      string `json:"status_line"`
	ArtifactLen     int    `json:"artifact_len"`
	SingleFile      bool   `json:"single_file,omitempty"`
}

// Recorder receives every run. Recording failures are logged and never change
// the published result.
type Recorder interface {
	RecordRun(ctx context.Context, run Run) error
}

// Options configures a Session. Zero values select the demo workspace, the
// entry file, the r1cs target and the oxfoi field.
type Options struct {
	Workspace  *workspace.Workspace
	ActiveFile string
	Target     ash.Target
	Field      field.Kind

	// SingleFile compiles only the editor buffer as the entry function,
	// whichever file is active. The rest of the workspace except entry.ash
	// remains callable. A function file such as pow5.ash begins with a
	// parameter header, which is not a valid entry, so selecting one fails
	// at the compilation stage.
	SingleFile bool

	Logger   *zap.Logger
	Tracer   Tracer
	Recorder Recorder
	IDs      IDGenerator
}

// Session is one user's editing and compilation context.
type Session struct {
	id     string
	ws     *workspace.Workspace
	sel    Selection
	buffer string
	single bool

	presenter Presenter
	pipeline  pipeline
	recorder  Recorder
	log       *zap.Logger
	seq       int64

	listeners []func(Selection)
}

// New opens a session. The editor buffer starts with the active file's text.
func New(opts Options) (*Session, error) {
	ws := opts.Workspace
	if ws == nil {
		ws = workspace.Default()
	}
	sel := Selection{
		ActiveFile: workspace.Normalize(opts.ActiveFile),
		Target:     opts.Target,
		Field:      opts.Field,
	}
	if sel.ActiveFile == "" {
		sel.ActiveFile = workspace.EntryFile
	}
	if sel.Target == "" {
		sel.Target = ash.TargetR1CS
	}
	if sel.Field == "" {
		sel.Field = field.KindOxfoi
	}
	if !sel.Target.Valid() {
		return nil, fmt.Errorf("unknown target %q", sel.Target)
	}
	if !sel.Field.Valid() {
		return nil, fmt.Errorf("unknown field %q", sel.Field)
	}
	buffer, err := ws.Get(sel.ActiveFile)
	if err != nil {
		return nil, fmt.Errorf("active file: %w", err)
	}

	ids := opts.IDs
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	id := ids.Generate()
	log = log.With(zap.String("session", id))

	return &Session{
		id:       id,
		ws:       ws,
		sel:      sel,
		buffer:   buffer,
		single:   opts.SingleFile,
		pipeline: pipeline{log: log, tracer: opts.Tracer},
		recorder: opts.Recorder,
		log:      log,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Workspace returns the session's workspace. The active file's text in the
// workspace lags the editor buffer until the next commit.
func (s *Session) Workspace() *workspace.Workspace { return s.ws }

// Selection returns the current selection.
func (s *Session) Selection() Selection { return s.sel }

// Buffer returns the editor buffer for the active file.
func (s *Session) Buffer() string { return s.buffer }

// Presenter returns the session's result holder.
func (s *Session) Presenter() *Presenter { return &s.presenter }

// Result returns the latest published result.
func (s *Session) Result() Result { return s.presenter.Latest() }

// SingleFile reports whether the session compiles only the editor buffer.
func (s *Session) SingleFile() bool { return s.single }

// OnSelectionChange registers fn to be called after every selection change.
// Listeners run synchronously, in registration order.
func (s *Session) OnSelectionChange(fn func(Selection)) {
	s.listeners = append(s.listeners, fn)
}

func (s *Session) changed() {
	s.log.Debug("selection changed",
		zap.String("active", s.sel.ActiveFile),
		zap.String("target", string(s.sel.Target)),
		zap.String("field", string(s.sel.Field)))
	for _, fn := range s.listeners {
		fn(s.sel)
	}
}

// SetActiveText replaces the editor buffer. The text reaches the workspace
// when the next run commits it.
func (s *Session) SetActiveText(text string) {
	s.buffer = text
}

// Edit replaces the editor buffer and recompiles.
func (s *Session) Edit(text string) Result {
	s.SetActiveText(text)
	return s.TriggerRecompile()
}

// commit writes the editor buffer into the workspace.
func (s *Session) commit() {
	s.ws.Set(s.sel.ActiveFile, s.buffer)
}

// SelectFile makes name the active file. The current buffer is committed
// first so no edit is lost.
func (s *Session) SelectFile(name string) error {
	name = workspace.Normalize(name)
	text, err := s.ws.Get(name)
	if err != nil {
		return err
	}
	s.commit()
	if name == s.sel.ActiveFile {
		return nil
	}
	s.sel.ActiveFile = name
	s.buffer = text
	s.changed()
	return nil
}

// AddFile adds a new file to the workspace.
func (s *Session) AddFile(name, text string) error {
	name = workspace.Normalize(name)
	if s.ws.Has(name) {
		return fmt.Errorf("%w: %s", ErrFileExists, name)
	}
	if !ash.IsSourceFile(name) || !ash.IsFunctionName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	s.ws.Set(name, text)
	return nil
}

// WriteFile replaces a file's text, adding the file when it is new. Writing
// the active file replaces the editor buffer.
func (s *Session) WriteFile(name, text string) error {
	name = workspace.Normalize(name)
	if !s.ws.Has(name) && (!ash.IsSourceFile(name) || !ash.IsFunctionName(name)) {
		return fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	s.ws.Set(name, text)
	if name == s.sel.ActiveFile {
		s.buffer = text
	}
	return nil
}

// RemoveFile deletes a file. Removing the active file makes the entry file
// active.
func (s *Session) RemoveFile(name string) error {
	name = workspace.Normalize(name)
	if err := s.ws.Remove(name); err != nil {
		return err
	}
	if name != s.sel.ActiveFile {
		return nil
	}
	s.sel.ActiveFile = workspace.EntryFile
	text, err := s.ws.Get(workspace.EntryFile)
	if err != nil {
		return err
	}
	s.buffer = text
	s.changed()
	return nil
}

// SetTarget changes the compilation target.
func (s *Session) SetTarget(t ash.Target) error {
	if !t.Valid() {
		return fmt.Errorf("unknown target %q", t)
	}
	if t == s.sel.Target {
		return nil
	}
	s.sel.Target = t
	s.changed()
	return nil
}

// SetField changes the field the program is compiled over.
func (s *Session) SetField(k field.Kind) error {
	if !k.Valid() {
		return fmt.Errorf("unknown field %q", k)
	}
	if k == s.sel.Field {
		return nil
	}
	s.sel.Field = k
	s.changed()
	return nil
}

// NextFile selects the file delta positions away from the active file in
// name order, wrapping around.
func (s *Session) NextFile(delta int) error {
	names := s.ws.Names()
	i := slices.Index(names, s.sel.ActiveFile)
	n := len(names)
	return s.SelectFile(names[((i+delta)%n+n)%n])
}

// TriggerRecompile commits the editor buffer and runs the pipeline over the
// current workspace and selection. The result is published and returned.
func (s *Session) TriggerRecompile() Result {
	s.commit()
	s.seq++
	req := request{
		run:    s.seq,
		sel:    s.sel,
		files:  s.ws.Snapshot(),
		source: s.buffer,
		single: s.single,
	}
	res := dispatch(&s.pipeline, req)
	s.presenter.Publish(res)

	s.log.Debug("run finished",
		zap.Int64("run", req.run),
		zap.String("target", res.Target),
		zap.String("field", res.Field),
		zap.String("status", string(res.Status)),
		zap.String("stage", string(res.Stage)))
	s.record(req, res)
	return res
}

func (s *Session) record(req request, res Result) {
	if s.recorder == nil {
		return
	}
	run, err := s.describe(req, res)
	if err == nil {
		err = s.recorder.RecordRun(context.Background(), run)
	}
	if err != nil {
		s.log.Warn("recording run failed", zap.Int64("run", req.run), zap.Error(err))
	}
}

func (s *Session) describe(req request, res Result) (Run, error) {
	wd, err := digest.Workspace(req.files)
	if err != nil {
		return Run{}, err
	}
	rd, err := ResultDigest(res)
	if err != nil {
		return Run{}, err
	}
	return Run{
		Session:         s.id,
		Seq:             req.run,
		Target:          res.Target,
		Field:           res.Field,
		ActiveFile:      req.sel.ActiveFile,
		WorkspaceDigest: wd,
		ResultDigest:    rd,
		Status:          res.Status,
		Stage:           res.Stage,
		StatusLine:      res.Headline(),
		ArtifactLen:     len(res.Artifact),
		SingleFile:      req.single,
	}, nil
}

// ResultDigest returns the content identity of r.
func ResultDigest(r Result) (string, error) {
	return digest.Result(digest.ResultFields{
		Target:   r.Target,
		Field:    r.Field,
		Status:   string(r.Status),
		Stage:    string(r.Stage),
		Summary:  r.Summary,
		Message:  r.Message,
		Artifact: r.Artifact,
	})
}
