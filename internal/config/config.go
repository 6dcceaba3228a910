// Package config loads the optional ashpad.cue project manifest.
//
// A manifest is a CUE file whose top level is unified with the closed
// #Project schema embedded in this package, so unknown fields and invalid
// enum values are rejected with a position. Missing fields take the schema
// defaults.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// FileName is the manifest's name inside a workspace directory.
const FileName = "ashpad.cue"

//go:embed schema.cue
var schemaCUE string

// Project is a decoded manifest.
type Project struct {
	Target     string `json:"target"`
	Field      string `json:"field"`
	Active     string `json:"active"`
	SingleFile bool   `json:"single_file"`
	History    string `json:"history,omitempty"`
}

// Error codes.
const (
	ErrCodeRead    = "E201" // manifest could not be read
	ErrCodeSyntax  = "E202" // manifest is not valid CUE
	ErrCodeInvalid = "E203" // manifest does not satisfy #Project
)

// Error reports an unusable manifest.
type Error struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Default returns the project used when no manifest exists.
func Default() Project {
	p, err := Parse(FileName, nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema defaults: %v", err))
	}
	return p
}

// Load reads dir/ashpad.cue. A missing manifest yields Default().
func Load(dir string) (Project, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Project{}, &Error{Code: ErrCodeRead, Message: err.Error()}
	}
	return Parse(path, data)
}

// Parse validates manifest source against #Project and decodes it.
func Parse(filename string, src []byte) (Project, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Project{}, fmt.Errorf("compiling schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Project"))

	file := ctx.CompileBytes(src, cue.Filename(filename))
	if err := file.Err(); err != nil {
		return Project{}, newError(ErrCodeSyntax, err)
	}

	v := def.Unify(file)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Project{}, newError(ErrCodeInvalid, err)
	}

	var p Project
	if err := v.Decode(&p); err != nil {
		return Project{}, newError(ErrCodeInvalid, err)
	}
	return p, nil
}

// newError converts the first CUE error into an Error with its position.
func newError(code string, err error) *Error {
	e := &Error{Code: code, Message: err.Error()}
	if list := cueerrors.Errors(err); len(list) > 0 {
		first := list[0]
		e.Pos = first.Position()
		format, args := first.Msg()
		e.Message = fmt.Sprintf(format, args...)
		if path := first.Path(); len(path) > 0 {
			e.Message = fmt.Sprintf("%s: %s", strings.Join(path, "."), e.Message)
		}
	}
	return e
}
