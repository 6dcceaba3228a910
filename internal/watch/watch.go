// Package watch mirrors a workspace directory into a session: every change
// to a source file on disk is committed to the session and recompiled.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/roach88/ashpad/internal/ash"
	"github.com/roach88/ashpad/internal/session"
	"github.com/roach88/ashpad/internal/workspace"
)

// DefaultDebounce is how long a file must stay quiet before it is reloaded.
// Editors often save with several writes in a row.
const DefaultDebounce = 200 * time.Millisecond

// Change is one recompile caused by files changing on disk.
type Change struct {
	// Files are the workspace names reloaded, sorted.
	Files []string

	// Removed are the names deleted from the workspace, sorted.
	Removed []string

	Result session.Result
}

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	Logger   *zap.Logger

	// OnChange is called on the watcher goroutine after every recompile.
	OnChange func(Change)
}

// Watcher feeds file changes in dir into a session. The session must not be
// used by anything else while Run is active.
type Watcher struct {
	dir      string
	sess     *session.Session
	log      *zap.Logger
	debounce time.Duration
	onChange func(Change)

	pending map[string]time.Time
}

// New returns a watcher for dir.
func New(dir string, sess *session.Session, opts Options) *Watcher {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		dir:      dir,
		sess:     sess,
		log:      log.With(zap.String("dir", dir)),
		debounce: debounce,
		onChange: opts.OnChange,
		pending:  make(map[string]time.Time),
	}
}

// Run watches until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.log.Info("watching workspace")

	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watcher stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.note(event, time.Now())

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case now := <-ticker.C:
			w.flush(now)
		}
	}
}

// note records a change to a source file directly inside the directory.
func (w *Watcher) note(event fsnotify.Event, now time.Time) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if filepath.Dir(event.Name) != filepath.Clean(w.dir) {
		return
	}
	name := filepath.Base(event.Name)
	if !ash.IsSourceFile(name) {
		return
	}
	w.log.Debug("file event", zap.String("file", name), zap.String("op", event.Op.String()))
	w.pending[name] = now
}

// flush reloads every file that has been quiet for the debounce interval and
// recompiles once for the batch.
func (w *Watcher) flush(now time.Time) {
	var ready []string
	for name, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, name)
			delete(w.pending, name)
		}
	}
	if len(ready) == 0 {
		return
	}
	sort.Strings(ready)

	change := Change{}
	for _, name := range ready {
		removed, err := w.reload(name)
		switch {
		case err != nil:
			w.log.Warn("reload failed", zap.String("file", name), zap.Error(err))
		case removed:
			change.Removed = append(change.Removed, workspace.Normalize(name))
		default:
			change.Files = append(change.Files, workspace.Normalize(name))
		}
	}
	if len(change.Files) == 0 && len(change.Removed) == 0 {
		return
	}

	change.Result = w.sess.TriggerRecompile()
	w.log.Info("recompiled",
		zap.Strings("files", change.Files),
		zap.Strings("removed", change.Removed),
		zap.String("status", string(change.Result.Status)),
		zap.String("stage", string(change.Result.Stage)),
	)
	if w.onChange != nil {
		w.onChange(change)
	}
}

// reload copies one file from disk into the session. A file that no longer
// exists is removed from the workspace, except the entry file, which keeps
// its last text.
func (w *Watcher) reload(name string) (removed bool, err error) {
	data, err := os.ReadFile(filepath.Join(w.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		if !w.sess.Workspace().Has(name) {
			return false, nil
		}
		if err := w.sess.RemoveFile(name); err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, w.sess.WriteFile(name, string(data))
}
