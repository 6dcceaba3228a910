package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/roach88/ashpad/internal/session"
	"github.com/roach88/ashpad/internal/workspace"
)

// fixture writes the demo workspace to a temp dir and opens a session on it.
func fixture(t *testing.T) (string, *session.Session) {
	t.Helper()
	dir := t.TempDir()
	for name, text := range workspace.DemoFiles() {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644))
	}
	ws, err := workspace.LoadDir(dir)
	require.NoError(t, err)
	sess, err := session.New(session.Options{Workspace: ws, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	return dir, sess
}

func write(t *testing.T, dir, name, text string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644))
}

func TestFlushDebounces(t *testing.T) {
	dir, sess := fixture(t)
	var changes []Change
	w := New(dir, sess, Options{Debounce: time.Second, OnChange: func(c Change) { changes = append(changes, c) }})

	start := time.Unix(1000, 0)
	write(t, dir, workspace.EntryFile, "assert_eq(1, 2)\n")
	w.note(fsnotify.Event{Name: filepath.Join(dir, workspace.EntryFile), Op: fsnotify.Write}, start)

	w.flush(start.Add(500 * time.Millisecond))
	assert.Empty(t, changes, "still inside the debounce window")

	// A second write restarts the window.
	w.note(fsnotify.Event{Name: filepath.Join(dir, workspace.EntryFile), Op: fsnotify.Write}, start.Add(800*time.Millisecond))
	w.flush(start.Add(1500 * time.Millisecond))
	assert.Empty(t, changes)

	w.flush(start.Add(1800 * time.Millisecond))
	require.Len(t, changes, 1)
	assert.Equal(t, []string{workspace.EntryFile}, changes[0].Files)
	assert.Equal(t, session.StageWitnessVerify, changes[0].Result.Stage)
	assert.Equal(t, "assert_eq(1, 2)\n", sess.Buffer(), "the active file's disk text becomes the buffer")

	w.flush(start.Add(5 * time.Second))
	assert.Len(t, changes, 1, "nothing left to flush")
}

func TestFlushBatchesFiles(t *testing.T) {
	dir, sess := fixture(t)
	var changes []Change
	w := New(dir, sess, Options{Debounce: time.Millisecond, OnChange: func(c Change) { changes = append(changes, c) }})

	now := time.Unix(2000, 0)
	write(t, dir, "sq.ash", "(a)\nreturn a * a\n")
	write(t, dir, workspace.EntryFile, "assert_eq(sq(4), 16)\n")
	w.note(fsnotify.Event{Name: filepath.Join(dir, "sq.ash"), Op: fsnotify.Create}, now)
	w.note(fsnotify.Event{Name: filepath.Join(dir, workspace.EntryFile), Op: fsnotify.Write}, now)

	w.flush(now.Add(time.Second))
	require.Len(t, changes, 1)
	assert.Equal(t, []string{workspace.EntryFile, "sq.ash"}, changes[0].Files)
	assert.True(t, changes[0].Result.OK(), changes[0].Result.Message)
	assert.Equal(t, int64(1), sess.Presenter().Runs(), "one recompile per batch")
}

func TestFlushRemovesDeletedFiles(t *testing.T) {
	dir, sess := fixture(t)
	var changes []Change
	w := New(dir, sess, Options{Debounce: time.Millisecond, OnChange: func(c Change) { changes = append(changes, c) }})

	now := time.Unix(3000, 0)
	require.NoError(t, os.Remove(filepath.Join(dir, "pow5.ash")))
	w.note(fsnotify.Event{Name: filepath.Join(dir, "pow5.ash"), Op: fsnotify.Remove}, now)
	w.flush(now.Add(time.Second))

	require.Len(t, changes, 1)
	assert.Equal(t, []string{"pow5.ash"}, changes[0].Removed)
	assert.False(t, sess.Workspace().Has("pow5.ash"))
	assert.Equal(t, session.StageCompilation, changes[0].Result.Stage)
	assert.Contains(t, changes[0].Result.Message, "function pow5 not found")
}

func TestFlushKeepsDeletedEntry(t *testing.T) {
	dir, sess := fixture(t)
	called := false
	w := New(dir, sess, Options{Debounce: time.Millisecond, OnChange: func(Change) { called = true }})

	now := time.Unix(4000, 0)
	require.NoError(t, os.Remove(filepath.Join(dir, workspace.EntryFile)))
	w.note(fsnotify.Event{Name: filepath.Join(dir, workspace.EntryFile), Op: fsnotify.Remove}, now)
	w.flush(now.Add(time.Second))

	assert.False(t, called)
	assert.True(t, sess.Workspace().Has(workspace.EntryFile))
	assert.Equal(t, int64(0), sess.Presenter().Runs())
}

func TestNoteIgnoresUnrelatedEvents(t *testing.T) {
	dir, sess := fixture(t)
	w := New(dir, sess, Options{})
	now := time.Now()

	w.note(fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Write}, now)
	w.note(fsnotify.Event{Name: filepath.Join(dir, "sub", "x.ash"), Op: fsnotify.Write}, now)
	w.note(fsnotify.Event{Name: filepath.Join(dir, "pow5.ash"), Op: fsnotify.Chmod}, now)
	assert.Empty(t, w.pending)

	w.note(fsnotify.Event{Name: filepath.Join(dir, "pow5.ash"), Op: fsnotify.Write | fsnotify.Chmod}, now)
	assert.Len(t, w.pending, 1)
}

func TestFlushSkipsInvalidNames(t *testing.T) {
	dir, sess := fixture(t)
	called := false
	w := New(dir, sess, Options{Debounce: time.Millisecond, OnChange: func(Change) { called = true }})

	now := time.Unix(5000, 0)
	write(t, dir, "my-helper.ash", "(a)\nreturn a\n")
	w.note(fsnotify.Event{Name: filepath.Join(dir, "my-helper.ash"), Op: fsnotify.Create}, now)
	w.flush(now.Add(time.Second))

	assert.False(t, called)
	assert.False(t, sess.Workspace().Has("my-helper.ash"))
}

func TestRunReactsToWrites(t *testing.T) {
	dir, sess := fixture(t)
	changes := make(chan Change, 4)
	w := New(dir, sess, Options{
		Debounce: 20 * time.Millisecond,
		Logger:   zaptest.NewLogger(t),
		OnChange: func(c Change) { changes <- c },
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)
	write(t, dir, workspace.EntryFile, "assert_eq(pow5(2), 32)\n")

	select {
	case c := <-changes:
		assert.Contains(t, c.Files, workspace.EntryFile)
		assert.True(t, c.Result.OK(), c.Result.Message)
	case <-time.After(5 * time.Second):
		t.Fatal("no recompile after writing the entry file")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestRunMissingDir(t *testing.T) {
	_, sess := fixture(t)
	w := New(filepath.Join(t.TempDir(), "missing"), sess, Options{})
	err := w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watching")
}
