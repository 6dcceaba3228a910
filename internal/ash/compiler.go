package ash

import (
	"fmt"
	"maps"
	"path/filepath"
	"strings"

	"github.com/roach88/ashpad/internal/field"
)

// IncludeVFS adds in-memory files to the compiler's workspace, replacing files
// of the same name. Names are bare file names with a source extension.
func (c *Compiler[T]) IncludeVFS(files map[string]string) error {
	for name := range files {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return &LoadError{File: name, Message: "file names must not contain path separators"}
		}
		if !IsSourceFile(name) {
			return &LoadError{File: name, Message: "unsupported extension; expected .ash, .ar1cs or .tasm"}
		}
		if !IsFunctionName(name) {
			return &LoadError{File: name, Message: fmt.Sprintf("%q is not a valid function name", strings.TrimSuffix(name, filepath.Ext(name)))}
		}
	}
	maps.Copy(c.files, files)
	return nil
}

// Files returns the names of every file in the compiler's workspace.
func (c *Compiler[T]) Files() []string {
	names := make([]string, 0, len(c.files))
	for name := range c.files {
		names = append(names, name)
	}
	return names
}

// Compile compiles the workspace starting from the entry function entry.
func (c *Compiler[T]) Compile(entry string) (*Program[T], error) {
	name, ok := c.resolve(entry)
	if !ok {
		return nil, &CompileError{Message: fmt.Sprintf("entry function %s not found in workspace (looked for %s)", entry, c.candidates(entry))}
	}
	if filepath.Ext(name) != "."+ExtAsh {
		return nil, &CompileError{Message: fmt.Sprintf("entry function %s must be an ash source, found %s", entry, name)}
	}
	f, err := parseSource(name, c.files[name], false)
	if err != nil {
		return nil, err
	}
	return c.lowerEntry(f)
}

// CompileSource compiles src as the entry file. Functions it calls are
// resolved against the compiler's workspace.
func (c *Compiler[T]) CompileSource(src string) (*Program[T], error) {
	f, err := parseSource(c.cfg.EntryFn+"."+ExtAsh, src, false)
	if err != nil {
		return nil, err
	}
	return c.lowerEntry(f)
}

func (c *Compiler[T]) lowerEntry(f *sourceFile) (*Program[T], error) {
	if len(f.params) > 0 {
		return nil, errorf(f.params[0].pos, f.src, "the entry function takes no parameters")
	}
	prog := &Program[T]{Target: c.cfg.Target, Field: field.KindOf[T](), Entry: f.name}
	cache := map[string]any{}

	switch c.cfg.Target {
	case TargetR1CS:
		b := newR1CSBuilder[T]()
		l := &lowerer[T, linearCombination[T]]{c: c, b: b, cache: cache, stack: []string{c.cfg.EntryFn}}
		if _, err := l.run(f, map[string]value[linearCombination[T]]{}); err != nil {
			return nil, err
		}
		prog.Signals = b.signals
		prog.Constraints = b.constraints
		prog.Hints = b.hints
	case TargetTasm:
		b := &asmBuilder[T]{}
		l := &lowerer[T, operand[T]]{c: c, b: b, cache: cache, stack: []string{c.cfg.EntryFn}}
		if _, err := l.run(f, map[string]value[operand[T]]{}); err != nil {
			return nil, err
		}
		b.emit("halt")
		prog.Asm = b.lines
		prog.Memory = b.next
	default:
		return nil, &CompileError{Message: fmt.Sprintf("unknown target %q", c.cfg.Target)}
	}
	return prog, nil
}

// resolve finds the file implementing fn, honoring extension priorities.
func (c *Compiler[T]) resolve(fn string) (string, bool) {
	for _, ext := range c.cfg.ExtensionPriorities {
		name := fn + "." + ext
		if _, ok := c.files[name]; ok {
			return name, true
		}
	}
	return "", false
}

func (c *Compiler[T]) candidates(fn string) string {
	names := make([]string, len(c.cfg.ExtensionPriorities))
	for i, ext := range c.cfg.ExtensionPriorities {
		names[i] = fn + "." + ext
	}
	return strings.Join(names, ", ")
}

// function loads and parses the implementation of fn. Parsed files are
// memoized in cache for the duration of one compilation.
func (c *Compiler[T]) function(fn string, cache map[string]any) (any, error) {
	name, ok := c.resolve(fn)
	if !ok {
		return nil, &CompileError{Message: fmt.Sprintf("function %s not found (looked for %s)", fn, c.candidates(fn))}
	}
	if parsed, ok := cache[name]; ok {
		return parsed, nil
	}

	src := c.files[name]
	var (
		parsed any
		err    error
	)
	switch filepath.Ext(name)[1:] {
	case ExtAsh:
		parsed, err = parseSource(name, src, true)
	case ExtAR1CS:
		parsed, err = parseAR1CS(fn, name, src)
	case ExtTasm:
		parsed, err = parseTasm(fn, name, src)
	}
	if err != nil {
		return nil, err
	}
	cache[name] = parsed
	return parsed, nil
}
