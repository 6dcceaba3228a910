package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/roach88/ashpad/internal/ash"
	"github.com/roach88/ashpad/internal/config"
	"github.com/roach88/ashpad/internal/field"
	"github.com/roach88/ashpad/internal/history"
	"github.com/roach88/ashpad/internal/session"
	"github.com/roach88/ashpad/internal/workspace"
)

// WorkspaceFlags are the selection flags shared by compile, watch and edit.
// Empty values fall back to the project manifest.
type WorkspaceFlags struct {
	Target string
	Field  string
	Active string
	DB     string
	Single bool
}

// LoadError represents an error that occurred while preparing a session.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loaded is a workspace with its resolved selection.
type Loaded struct {
	Dir       string
	Project   config.Project
	Workspace *workspace.Workspace
	Target    ash.Target
	Field     field.Kind
	Active    string
	Single    bool

	// History is the database path, empty when runs are not recorded.
	History string
}

// LoadWorkspace reads dir and its manifest and applies flags on top. An empty
// dir selects the demo workspace and the manifest defaults.
func LoadWorkspace(dir string, flags WorkspaceFlags) (*Loaded, error) {
	l := &Loaded{Dir: dir}

	if dir == "" {
		l.Project = config.Default()
		l.Workspace = workspace.Default()
	} else {
		info, err := os.Stat(dir)
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("workspace directory not found: %s", dir)}
		}
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "error accessing workspace directory", Err: err}
		}
		if !info.IsDir() {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
		}

		l.Project, err = config.Load(dir)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeConfigInvalid, Message: "invalid " + config.FileName, Err: err}
		}
		l.Workspace, err = workspace.LoadDir(dir)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "loading workspace", Err: err}
		}
	}

	target := pick(flags.Target, l.Project.Target)
	t, err := session.ParseTarget(target)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidFlag, Message: err.Error()}
	}
	k, err := field.ParseKind(pick(flags.Field, l.Project.Field))
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidFlag, Message: err.Error()}
	}
	l.Target, l.Field = t, k

	l.Active = workspace.Normalize(pick(flags.Active, l.Project.Active))
	if !l.Workspace.Has(l.Active) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("active file not in workspace: %s", l.Active)}
	}
	l.Single = flags.Single || l.Project.SingleFile

	switch {
	case flags.DB != "":
		l.History = flags.DB
	case l.Project.History != "" && dir != "" && !filepath.IsAbs(l.Project.History):
		l.History = filepath.Join(dir, l.Project.History)
	default:
		l.History = l.Project.History
	}
	return l, nil
}

func pick(flag, manifest string) string {
	if flag != "" {
		return flag
	}
	return manifest
}

// OpenSession opens a session on the loaded workspace. The returned close
// function releases the history database and must always be called.
func (l *Loaded) OpenSession(log *zap.Logger) (*session.Session, func() error, error) {
	opts := session.Options{
		Workspace:  l.Workspace,
		ActiveFile: l.Active,
		Target:     l.Target,
		Field:      l.Field,
		SingleFile: l.Single,
		Logger:     log,
	}
	closeFn := func() error { return nil }
	if l.History != "" {
		store, err := history.Open(l.History)
		if err != nil {
			return nil, nil, &LoadError{Code: ErrCodeHistory, Message: "opening history", Err: err}
		}
		opts.Recorder = store
		closeFn = store.Close
	}

	sess, err := session.New(opts)
	if err != nil {
		_ = closeFn()
		return nil, nil, &LoadError{Code: ErrCodeGeneric, Message: "opening session", Err: err}
	}
	return sess, closeFn, nil
}

// loadFailure writes err and converts it to a command error.
func loadFailure(f *OutputFormatter, err error) error {
	var le *LoadError
	if errors.As(err, &le) {
		msg := le.Message
		if le.Err != nil {
			msg = fmt.Sprintf("%s: %v", le.Message, le.Err)
		}
		return f.fail(le.Code, msg, nil)
	}
	return f.fail(ErrCodeGeneric, err.Error(), nil)
}
