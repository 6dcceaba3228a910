package workspace

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/ashpad/internal/ash"
)

// EntryFile is the fixed name of the file compilation starts from.
const EntryFile = "entry.ash"

var (
	// ErrNotFound is returned when a named file is not in the workspace.
	ErrNotFound = errors.New("file not found in workspace")

	// ErrEntryProtected is returned when removing the entry file.
	ErrEntryProtected = errors.New("the entry file cannot be removed")
)

// Workspace maps file names to source text.
//
// Workspace is not safe for concurrent use; it is owned by one session.
type Workspace struct {
	files map[string]string
}

// New returns a workspace holding files plus an empty entry file if files
// does not provide one.
func New(files map[string]string) *Workspace {
	w := &Workspace{files: make(map[string]string, len(files)+1)}
	for name, text := range files {
		w.Set(name, text)
	}
	if !w.Has(EntryFile) {
		w.files[EntryFile] = ""
	}
	return w
}

// Default returns the demo workspace a new session starts with.
func Default() *Workspace {
	return New(DemoFiles())
}

// LoadDir reads every .ash, .ar1cs and .tasm file directly inside dir.
// A directory without an entry.ash gets an empty one.
func LoadDir(dir string) (*Workspace, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading workspace %s: %w", dir, err)
	}
	files := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !ash.IsSourceFile(entry.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading workspace file: %w", err)
		}
		files[entry.Name()] = string(data)
	}
	return New(files), nil
}

// Normalize returns the canonical form of a file name.
func Normalize(name string) string {
	return norm.NFC.String(name)
}

// Get returns the text of the named file.
func (w *Workspace) Get(name string) (string, error) {
	text, ok := w.files[Normalize(name)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return text, nil
}

// Set creates or replaces the named file.
func (w *Workspace) Set(name, text string) {
	w.files[Normalize(name)] = text
}

// Has reports whether the named file exists.
func (w *Workspace) Has(name string) bool {
	_, ok := w.files[Normalize(name)]
	return ok
}

// Remove deletes the named file.
func (w *Workspace) Remove(name string) error {
	name = Normalize(name)
	if name == EntryFile {
		return ErrEntryProtected
	}
	if _, ok := w.files[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(w.files, name)
	return nil
}

// Names returns all file names in lexical order.
func (w *Workspace) Names() []string {
	return slices.Sorted(maps.Keys(w.files))
}

// Len returns the number of files.
func (w *Workspace) Len() int {
	return len(w.files)
}

// Snapshot returns a copy of the workspace contents. Later mutations of the
// workspace are not visible through the copy.
func (w *Workspace) Snapshot() map[string]string {
	return maps.Clone(w.files)
}
