package ash

import (
	"strings"

	"github.com/roach88/ashpad/internal/field"
)

// Program is a compiled workspace. R1CS programs carry constraints and
// witness hints; tasm programs carry an assembly listing.
type Program[T field.Element[T]] struct {
	Target Target
	Field  field.Kind
	Entry  string

	// PublicInputs is the number of public inputs a witness must be built with.
	PublicInputs int

	Signals     int
	Constraints []Constraint[T]
	Hints       []Hint[T]

	Asm []string
	// Memory is the number of RAM cells the listing uses.
	Memory int
}

// String renders the program: one constraint per line for r1cs, one
// instruction per line for tasm.
func (p *Program[T]) String() string {
	var b strings.Builder
	switch p.Target {
	case TargetR1CS:
		for _, c := range p.Constraints {
			b.WriteString(c.String())
			b.WriteByte('\n')
		}
	case TargetTasm:
		for _, line := range p.Asm {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
