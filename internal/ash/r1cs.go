package ash

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/ashpad/internal/field"
)

// oneSignal names signal 0, which always holds the value 1.
const oneSignal = "one"

// term is coeff * signal.
type term[T field.Element[T]] struct {
	Signal int
	Coeff  T
}

// linearCombination is a sum of terms sorted by signal with no zero coefficients.
type linearCombination[T field.Element[T]] []term[T]

func lcConst[T field.Element[T]](v T) linearCombination[T] {
	if v.IsZero() {
		return nil
	}
	return linearCombination[T]{{Signal: 0, Coeff: v}}
}

func lcSignal[T field.Element[T]](s int) linearCombination[T] {
	return linearCombination[T]{{Signal: s, Coeff: field.One[T]()}}
}

func (a linearCombination[T]) add(b linearCombination[T]) linearCombination[T] {
	out := make(linearCombination[T], 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j == len(b) || (i < len(a) && a[i].Signal < b[j].Signal):
			out = append(out, a[i])
			i++
		case i == len(a) || b[j].Signal < a[i].Signal:
			out = append(out, b[j])
			j++
		default:
			if sum := a[i].Coeff.Add(b[j].Coeff); !sum.IsZero() {
				out = append(out, term[T]{Signal: a[i].Signal, Coeff: sum})
			}
			i++
			j++
		}
	}
	return out
}

func (a linearCombination[T]) scale(k T) linearCombination[T] {
	if k.IsZero() {
		return nil
	}
	out := make(linearCombination[T], len(a))
	for i, t := range a {
		out[i] = term[T]{Signal: t.Signal, Coeff: t.Coeff.Mul(k)}
	}
	return out
}

// constant reports the value of a combination that only references signal 0.
func (a linearCombination[T]) constant() (T, bool) {
	var zero T
	switch {
	case len(a) == 0:
		return zero, true
	case len(a) == 1 && a[0].Signal == 0:
		return a[0].Coeff, true
	}
	return zero, false
}

// eval computes the combination over a witness.
func (a linearCombination[T]) eval(w []T) T {
	var acc T
	for _, t := range a {
		acc = acc.Add(t.Coeff.Mul(w[t.Signal]))
	}
	return acc
}

func (a linearCombination[T]) String() string {
	if len(a) == 0 {
		return "0*" + oneSignal
	}
	parts := make([]string, len(a))
	for i, t := range a {
		parts[i] = t.Coeff.String() + "*" + signalName(t.Signal)
	}
	return strings.Join(parts, " + ")
}

func signalName(s int) string {
	if s == 0 {
		return oneSignal
	}
	return fmt.Sprintf("x%d", s)
}

// Constraint requires A * B - C = 0.
type Constraint[T field.Element[T]] struct {
	A, B, C linearCombination[T]
	// Origin names the source that produced the constraint.
	Origin string
}

func (c Constraint[T]) String() string {
	s := fmt.Sprintf("0 = (%s) * (%s) - (%s)", c.A, c.B, c.C)
	if c.Origin != "" {
		s += " # " + c.Origin
	}
	return s
}

// satisfied reports whether the witness satisfies the constraint.
func (c Constraint[T]) satisfied(w []T) bool {
	return c.A.eval(w).Mul(c.B.eval(w)).Equal(c.C.eval(w))
}

// Hint tells the witness builder how to compute signal Out.
type Hint[T field.Element[T]] struct {
	Out int
	// Divide selects A / B instead of A * B.
	Divide bool
	A, B   linearCombination[T]
	Origin string
}

// r1csBuilder is the backend for the r1cs target.
type r1csBuilder[T field.Element[T]] struct {
	signals     int
	constraints []Constraint[T]
	hints       []Hint[T]
}

func newR1CSBuilder[T field.Element[T]]() *r1csBuilder[T] {
	return &r1csBuilder[T]{signals: 1}
}

func (b *r1csBuilder[T]) alloc() int {
	s := b.signals
	b.signals++
	return s
}

func (b *r1csBuilder[T]) constant(v T) linearCombination[T] { return lcConst(v) }

func (b *r1csBuilder[T]) constValue(h linearCombination[T]) (T, bool) { return h.constant() }

func (b *r1csBuilder[T]) add(x, y linearCombination[T]) linearCombination[T] { return x.add(y) }

func (b *r1csBuilder[T]) sub(x, y linearCombination[T]) linearCombination[T] {
	return x.add(y.scale(field.FromInt64[T](-1)))
}

func (b *r1csBuilder[T]) neg(x linearCombination[T]) linearCombination[T] {
	return x.scale(field.FromInt64[T](-1))
}

func (b *r1csBuilder[T]) mul(x, y linearCombination[T]) linearCombination[T] {
	if k, ok := x.constant(); ok {
		return y.scale(k)
	}
	if k, ok := y.constant(); ok {
		return x.scale(k)
	}
	return b.product(x, y, "")
}

func (b *r1csBuilder[T]) product(x, y linearCombination[T], origin string) linearCombination[T] {
	s := b.alloc()
	b.hints = append(b.hints, Hint[T]{Out: s, A: x, B: y, Origin: origin})
	b.constraints = append(b.constraints, Constraint[T]{A: x, B: y, C: lcSignal[T](s), Origin: origin})
	return lcSignal[T](s)
}

func (b *r1csBuilder[T]) div(x, y linearCombination[T]) (linearCombination[T], error) {
	if k, ok := y.constant(); ok {
		inv, err := k.Inverse()
		if err != nil {
			return nil, fmt.Errorf("division by zero")
		}
		return x.scale(inv), nil
	}
	return b.quotient(x, y, ""), nil
}

func (b *r1csBuilder[T]) quotient(x, y linearCombination[T], origin string) linearCombination[T] {
	s := b.alloc()
	b.hints = append(b.hints, Hint[T]{Out: s, Divide: true, A: x, B: y, Origin: origin})
	b.constraints = append(b.constraints, Constraint[T]{A: y, B: lcSignal[T](s), C: x, Origin: origin})
	return lcSignal[T](s)
}

// callExtern inlines an .ar1cs function, substituting the caller's
// combinations for its parameters.
func (b *r1csBuilder[T]) callExtern(fn *externFunc, args []linearCombination[T], pos Pos) ([]linearCombination[T], error) {
	if fn.ext != ExtAR1CS {
		return nil, &CompileError{Pos: pos, Message: fmt.Sprintf("%s cannot be used by the r1cs target", fn.file)}
	}
	env := map[string]linearCombination[T]{oneSignal: lcSignal[T](0)}
	for i, p := range fn.params {
		env[p] = args[i]
	}

	subst := func(terms []lcTerm) (linearCombination[T], error) {
		var out linearCombination[T]
		for _, t := range terms {
			lc, ok := env[t.name]
			if !ok {
				return nil, errorf(t.pos, fn.src, "unknown signal %s", t.name)
			}
			var zero T
			out = out.add(lc.scale(zero.FromBig(t.coeff)))
		}
		return out, nil
	}

	for _, line := range fn.ar1cs {
		origin := fmt.Sprintf("%s:%d", fn.file, line.pos.Line)
		a, err := subst(line.a)
		if err != nil {
			return nil, err
		}
		bb, err := subst(line.b)
		if err != nil {
			return nil, err
		}
		if line.out == "" {
			c, err := subst(line.c)
			if err != nil {
				return nil, err
			}
			b.constraints = append(b.constraints, Constraint[T]{A: a, B: bb, C: c, Origin: origin})
			continue
		}
		if _, exists := env[line.out]; exists {
			return nil, errorf(line.pos, fn.src, "signal %s is already defined", line.out)
		}
		if line.op == tokSlash {
			env[line.out] = b.quotient(a, bb, origin)
		} else {
			env[line.out] = b.product(a, bb, origin)
		}
	}

	outs := make([]linearCombination[T], len(fn.returns))
	for i, name := range fn.returns {
		lc, ok := env[name]
		if !ok {
			return nil, &CompileError{Pos: Pos{File: fn.file, Line: 1, Col: 1}, Message: fmt.Sprintf("returned signal %s is never defined", name), Line: sourceLine(fn.src, 1)}
		}
		outs[i] = lc
	}
	return outs, nil
}

// sortedSignals lists the signals a combination references.
func (a linearCombination[T]) sortedSignals() []int {
	out := make([]int, len(a))
	for i, t := range a {
		out[i] = t.Signal
	}
	sort.Ints(out)
	return out
}
