package ash

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/roach88/ashpad/internal/field"
)

// Target selects the compilation backend.
type Target string

const (
	// TargetR1CS compiles to a rank-1 constraint system.
	TargetR1CS Target = "r1cs"
	// TargetTasm compiles to tasm assembly.
	TargetTasm Target = "tasm"
)

// Source file extensions understood by the compiler.
const (
	ExtAsh   = "ash"
	ExtAR1CS = "ar1cs"
	ExtTasm  = "tasm"
)

// TasmField is the only field the tasm target is defined over.
const TasmField = field.KindOxfoi

// Valid reports whether t names a supported backend.
func (t Target) Valid() bool {
	return t == TargetR1CS || t == TargetTasm
}

func (t Target) String() string {
	return string(t)
}

// Config describes one compilation.
type Config struct {
	Target              Target
	Field               field.Kind
	EntryFn             string
	ExtensionPriorities []string
	IncludePaths        []string
	Inputs              []string
	SecretInputs        []string
	Verbosity           int
}

// ConfigError reports an unusable Config.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Message)
}

// Compiler compiles workspaces over the field T.
type Compiler[T field.Element[T]] struct {
	cfg   Config
	files map[string]string
}

// Configure validates cfg and returns a compiler for field T.
// Files found in cfg.IncludePaths are loaded into the compiler's workspace.
func Configure[T field.Element[T]](cfg Config) (*Compiler[T], error) {
	if err := validateConfig[T](cfg); err != nil {
		return nil, err
	}

	c := &Compiler[T]{cfg: cfg, files: make(map[string]string)}
	for _, dir := range cfg.IncludePaths {
		if err := c.includeDir(dir); err != nil {
			return nil, &ConfigError{Field: "include_paths", Message: err.Error()}
		}
	}
	return c, nil
}

// Config returns the configuration the compiler was built with.
func (c *Compiler[T]) Config() Config {
	return c.cfg
}

func validateConfig[T field.Element[T]](cfg Config) error {
	if !cfg.Target.Valid() {
		return &ConfigError{Field: "target", Message: fmt.Sprintf("unknown target %q", cfg.Target)}
	}
	if got := field.KindOf[T](); cfg.Field != got {
		return &ConfigError{
			Field:   "field",
			Message: fmt.Sprintf("config requests %q but the compiler is instantiated for %q", cfg.Field, got),
		}
	}
	if cfg.Target == TargetTasm && cfg.Field != TasmField {
		return &ConfigError{
			Field:   "field",
			Message: fmt.Sprintf("tasm target must be compiled to the %s field", TasmField),
		}
	}
	if !isIdent(cfg.EntryFn) {
		return &ConfigError{Field: "entry_fn", Message: fmt.Sprintf("%q is not a valid function name", cfg.EntryFn)}
	}
	if len(cfg.ExtensionPriorities) == 0 {
		return &ConfigError{Field: "extension_priorities", Message: "at least one extension is required"}
	}
	seen := make(map[string]bool)
	for _, ext := range cfg.ExtensionPriorities {
		if seen[ext] {
			return &ConfigError{Field: "extension_priorities", Message: fmt.Sprintf("duplicate extension %q", ext)}
		}
		seen[ext] = true
		switch ext {
		case ExtAsh:
		case ExtAR1CS:
			if cfg.Target != TargetR1CS {
				return &ConfigError{Field: "extension_priorities", Message: "ar1cs files are only usable by the r1cs target"}
			}
		case ExtTasm:
			if cfg.Target != TargetTasm {
				return &ConfigError{Field: "extension_priorities", Message: "tasm files are only usable by the tasm target"}
			}
		default:
			return &ConfigError{Field: "extension_priorities", Message: fmt.Sprintf("unknown extension %q", ext)}
		}
	}
	if !seen[ExtAsh] {
		return &ConfigError{Field: "extension_priorities", Message: "the ash extension must be included"}
	}
	if len(cfg.Inputs) > 0 || len(cfg.SecretInputs) > 0 {
		return &ConfigError{Field: "inputs", Message: "programs hard-code their inputs; public and secret inputs must be empty"}
	}
	return nil
}

// includeDir loads every source file directly inside dir.
func (c *Compiler[T]) includeDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading include path: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !IsSourceFile(entry.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		c.files[entry.Name()] = string(data)
	}
	return nil
}

// IsSourceFile reports whether name carries one of the compiler's extensions.
func IsSourceFile(name string) bool {
	ext := filepath.Ext(name)
	if ext == "" {
		return false
	}
	return slices.Contains([]string{ExtAsh, ExtAR1CS, ExtTasm}, ext[1:])
}

// IsFunctionName reports whether the name of file, minus its extension, is a
// valid function name.
func IsFunctionName(file string) bool {
	return isIdent(strings.TrimSuffix(file, filepath.Ext(file)))
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !isIdentRune(r, i == 0) {
			return false
		}
	}
	return true
}
