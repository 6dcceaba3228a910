package ash

import (
	"fmt"

	"github.com/roach88/ashpad/internal/field"
)

// Witness assigns a value to every signal of an R1CS program; index 0 is one.
type Witness[T field.Element[T]] []T

// BuildWitness evaluates the program's hints in order. inputs must match the
// program's public input count.
func BuildWitness[T field.Element[T]](p *Program[T], inputs []T) (Witness[T], error) {
	if p.Target != TargetR1CS {
		return nil, &WitnessError{Constraint: -1, Message: fmt.Sprintf("witnesses exist only for r1cs programs, not %s", p.Target)}
	}
	if len(inputs) != p.PublicInputs {
		return nil, &WitnessError{Constraint: -1, Message: fmt.Sprintf("expected %d public input(s), got %d", p.PublicInputs, len(inputs))}
	}

	if p.Signals < 1+len(inputs) {
		return nil, &WitnessError{Constraint: -1, Message: "program has no signal for the constant one"}
	}

	w := make(Witness[T], p.Signals)
	w[0] = field.One[T]()
	copy(w[1:], inputs)
	assigned := 1 + len(inputs)

	for _, h := range p.Hints {
		if h.Out != assigned {
			return nil, &WitnessError{Constraint: -1, Message: fmt.Sprintf("hint for %s is out of order", signalName(h.Out))}
		}
		for _, lc := range []linearCombination[T]{h.A, h.B} {
			for _, s := range lc.sortedSignals() {
				if s >= assigned {
					return nil, &WitnessError{Constraint: -1, Message: fmt.Sprintf("%s depends on unassigned %s", signalName(h.Out), signalName(s))}
				}
			}
		}

		a, b := h.A.eval(w), h.B.eval(w)
		if !h.Divide {
			w[h.Out] = a.Mul(b)
		} else {
			inv, err := b.Inverse()
			if err != nil {
				msg := fmt.Sprintf("division by zero computing %s", signalName(h.Out))
				if h.Origin != "" {
					msg += " (" + h.Origin + ")"
				}
				return nil, &WitnessError{Constraint: -1, Message: msg}
			}
			w[h.Out] = a.Mul(inv)
		}
		assigned++
	}
	if assigned != p.Signals {
		return nil, &WitnessError{Constraint: -1, Message: fmt.Sprintf("%d signal(s) have no hint", p.Signals-assigned)}
	}
	return w, nil
}

// VerifyWitness checks every constraint of p against w.
func VerifyWitness[T field.Element[T]](p *Program[T], w Witness[T]) error {
	if len(w) != p.Signals || len(w) == 0 {
		return &WitnessError{Constraint: -1, Message: fmt.Sprintf("witness has %d value(s), program has %d signal(s)", len(w), p.Signals)}
	}
	if !w[0].Equal(field.One[T]()) {
		return &WitnessError{Constraint: -1, Message: "signal one must equal 1"}
	}
	for i, c := range p.Constraints {
		if c.satisfied(w) {
			continue
		}
		a, b, out := c.A.eval(w), c.B.eval(w), c.C.eval(w)
		msg := fmt.Sprintf("unsatisfied: %s * %s != %s", a, b, out)
		if c.Origin != "" {
			msg += " (" + c.Origin + ")"
		}
		return &WitnessError{Constraint: i, Message: msg}
	}
	return nil
}
