package ash

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Diagnostics are always colored, whatever the output is connected to.
var (
	errorStyle  = ansi.Style{}.Bold().ForegroundColor(ansi.Red)
	noteStyle   = ansi.Style{}.Bold()
	gutterStyle = ansi.Style{}.Bold().ForegroundColor(ansi.Blue)
)

// Pos is a location in a workspace file. Line and Col are 1-based.
type Pos struct {
	File string
	Line int
	Col  int
}

// IsValid reports whether the position points into a file.
func (p Pos) IsValid() bool {
	return p.File != "" && p.Line > 0
}

func (p Pos) String() string {
	if !p.IsValid() {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// LoadError reports a workspace that could not be loaded into the compiler.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load %q: %s", e.File, e.Message)
}

// CompileError is a diagnostic produced while lexing, parsing or lowering.
// Error renders it for a color terminal, with a source excerpt when known.
type CompileError struct {
	Pos     Pos
	Message string
	// Line is the text of the offending source line, if available.
	Line string
}

func (e *CompileError) Error() string {
	var b strings.Builder
	b.WriteString(errorStyle.Styled("error") + noteStyle.Styled(": "+e.Message))
	if !e.Pos.IsValid() {
		return b.String()
	}
	gutter := strings.Repeat(" ", len(fmt.Sprint(e.Pos.Line)))
	bar := gutterStyle.Styled("|")
	fmt.Fprintf(&b, "\n%s%s %s", gutter, gutterStyle.Styled("-->"), e.Pos)
	if e.Line != "" {
		fmt.Fprintf(&b, "\n%s %s", gutter, bar)
		fmt.Fprintf(&b, "\n%s %s", gutterStyle.Styled(fmt.Sprintf("%d |", e.Pos.Line)), e.Line)
		caret := strings.Repeat(" ", max(e.Pos.Col-1, 0)) + errorStyle.Styled("^")
		fmt.Fprintf(&b, "\n%s %s %s", gutter, bar, caret)
	}
	return b.String()
}

// WitnessError reports a witness that could not be built or does not satisfy
// the constraint system.
type WitnessError struct {
	// Constraint is the index of the failing constraint, or -1.
	Constraint int
	Message    string
}

func (e *WitnessError) Error() string {
	if e.Constraint >= 0 {
		return fmt.Sprintf("constraint %d: %s", e.Constraint, e.Message)
	}
	return e.Message
}

// errorf builds a CompileError at pos, attaching the source line from src.
func errorf(pos Pos, src string, format string, args ...any) *CompileError {
	return &CompileError{Pos: pos, Message: fmt.Sprintf(format, args...), Line: sourceLine(src, pos.Line)}
}

func sourceLine(src string, line int) string {
	if line <= 0 {
		return ""
	}
	lines := strings.Split(src, "\n")
	if line > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line-1], "\r")
}
