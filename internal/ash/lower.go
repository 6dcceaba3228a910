package ash

import (
	"fmt"

	"github.com/roach88/ashpad/internal/field"
)

// maxCallDepth bounds function inlining.
const maxCallDepth = 64

// backend turns scalar operations into target code. H is the backend's
// handle for a scalar value.
type backend[T field.Element[T], H any] interface {
	constant(v T) H
	constValue(h H) (T, bool)
	add(a, b H) H
	sub(a, b H) H
	mul(a, b H) H
	div(a, b H) (H, error)
	neg(a H) H
	callExtern(fn *externFunc, args []H, pos Pos) ([]H, error)
}

// value is a scalar or a (possibly nested) vector of scalars.
type value[H any] struct {
	scalar H
	elems  []value[H]
	vector bool
	void   bool
}

func scalarValue[H any](h H) value[H] {
	return value[H]{scalar: h}
}

func (v value[H]) shape() string {
	if v.void {
		return "nothing"
	}
	if !v.vector {
		return "scalar"
	}
	return fmt.Sprintf("vector of %d", len(v.elems))
}

func sameShape[H any](a, b value[H]) bool {
	if a.vector != b.vector || a.void != b.void || len(a.elems) != len(b.elems) {
		return false
	}
	for i := range a.elems {
		if !sameShape(a.elems[i], b.elems[i]) {
			return false
		}
	}
	return true
}

// lowerer walks parsed ash code, inlining function calls, and drives a backend.
type lowerer[T field.Element[T], H any] struct {
	c     *Compiler[T]
	b     backend[T, H]
	cache map[string]any
	stack []string
}

type frame[H any] struct {
	file *sourceFile
	vars map[string]value[H]
}

// run lowers the body of f. It reports the returned value, or a void value
// when the body has no return statement.
func (l *lowerer[T, H]) run(f *sourceFile, vars map[string]value[H]) (value[H], error) {
	fr := &frame[H]{file: f, vars: vars}
	for i, s := range f.body {
		switch s := s.(type) {
		case *assignStmt:
			v, err := l.eval(fr, s.value)
			if err != nil {
				return value[H]{}, err
			}
			if v.void {
				return value[H]{}, l.errorf(fr, s.value.position(), "cannot assign a call that returns nothing")
			}
			prev, exists := fr.vars[s.name]
			switch {
			case s.declare && exists:
				return value[H]{}, l.errorf(fr, s.pos, "%s is already defined", s.name)
			case !s.declare && !exists:
				return value[H]{}, l.errorf(fr, s.pos, "assignment to undefined variable %s; use let", s.name)
			case !s.declare && !sameShape(prev, v):
				return value[H]{}, l.errorf(fr, s.pos, "cannot assign %s to %s, which holds a %s", v.shape(), s.name, prev.shape())
			}
			fr.vars[s.name] = v

		case *callStmt:
			if _, err := l.call(fr, s.call); err != nil {
				return value[H]{}, err
			}

		case *returnStmt:
			if !f.hasHeader {
				return value[H]{}, l.errorf(fr, s.pos, "return outside of a function")
			}
			if i != len(f.body)-1 {
				return value[H]{}, l.errorf(fr, f.body[i+1].position(), "unreachable code after return")
			}
			return l.eval(fr, s.value)
		}
	}
	return value[H]{void: true}, nil
}

func (l *lowerer[T, H]) errorf(fr *frame[H], pos Pos, format string, args ...any) error {
	return errorf(pos, fr.file.src, format, args...)
}

func (l *lowerer[T, H]) eval(fr *frame[H], e expr) (value[H], error) {
	switch e := e.(type) {
	case *intLit:
		v, err := field.Parse[T](e.text)
		if err != nil {
			return value[H]{}, l.errorf(fr, e.pos, "%v", err)
		}
		return scalarValue(l.b.constant(v)), nil

	case *identExpr:
		v, ok := fr.vars[e.name]
		if !ok {
			return value[H]{}, l.errorf(fr, e.pos, "undefined variable %s", e.name)
		}
		return v, nil

	case *vecLit:
		out := value[H]{vector: true}
		for _, el := range e.elems {
			v, err := l.eval(fr, el)
			if err != nil {
				return value[H]{}, err
			}
			if v.void {
				return value[H]{}, l.errorf(fr, el.position(), "vector element returns nothing")
			}
			if len(out.elems) > 0 && !sameShape(out.elems[0], v) {
				return value[H]{}, l.errorf(fr, el.position(), "vector elements must share a shape: %s vs %s", out.elems[0].shape(), v.shape())
			}
			out.elems = append(out.elems, v)
		}
		return out, nil

	case *indexExpr:
		target, err := l.eval(fr, e.target)
		if err != nil {
			return value[H]{}, err
		}
		if !target.vector {
			return value[H]{}, l.errorf(fr, e.pos, "cannot index a %s", target.shape())
		}
		idx, err := l.eval(fr, e.index)
		if err != nil {
			return value[H]{}, err
		}
		k, ok := l.constIndex(idx)
		if !ok {
			return value[H]{}, l.errorf(fr, e.index.position(), "vector index must be a constant scalar")
		}
		if k >= uint64(len(target.elems)) {
			return value[H]{}, l.errorf(fr, e.index.position(), "index %d out of range for %s", k, target.shape())
		}
		return target.elems[k], nil

	case *callExpr:
		v, err := l.call(fr, e)
		if err != nil {
			return value[H]{}, err
		}
		if v.void {
			return value[H]{}, l.errorf(fr, e.pos, "%s returns nothing", e.name)
		}
		return v, nil

	case *unaryExpr:
		x, err := l.eval(fr, e.x)
		if err != nil {
			return value[H]{}, err
		}
		return mapValue(x, func(h H) H { return l.b.neg(h) }), nil

	case *binaryExpr:
		x, err := l.eval(fr, e.x)
		if err != nil {
			return value[H]{}, err
		}
		y, err := l.eval(fr, e.y)
		if err != nil {
			return value[H]{}, err
		}
		op := l.binaryOp(e.op)
		out, err := zipValues(x, y, op)
		if err != nil {
			return value[H]{}, l.errorf(fr, e.pos, "%v", err)
		}
		return out, nil
	}
	return value[H]{}, l.errorf(fr, e.position(), "unsupported expression")
}

func (l *lowerer[T, H]) constIndex(v value[H]) (uint64, bool) {
	if v.vector || v.void {
		return 0, false
	}
	c, ok := l.b.constValue(v.scalar)
	if !ok {
		return 0, false
	}
	n := c.BigInt()
	if !n.IsUint64() {
		return 0, false
	}
	return n.Uint64(), true
}

func (l *lowerer[T, H]) binaryOp(op tokenKind) func(a, b H) (H, error) {
	switch op {
	case tokPlus:
		return func(a, b H) (H, error) { return l.b.add(a, b), nil }
	case tokMinus:
		return func(a, b H) (H, error) { return l.b.sub(a, b), nil }
	case tokStar:
		return func(a, b H) (H, error) { return l.b.mul(a, b), nil }
	default:
		return l.b.div
	}
}

func mapValue[H any](v value[H], f func(H) H) value[H] {
	if !v.vector {
		return scalarValue(f(v.scalar))
	}
	out := value[H]{vector: true, elems: make([]value[H], len(v.elems))}
	for i, el := range v.elems {
		out.elems[i] = mapValue(el, f)
	}
	return out
}

// zipValues applies op element-wise; a scalar operand is broadcast over a vector.
func zipValues[H any](a, b value[H], op func(a, b H) (H, error)) (value[H], error) {
	switch {
	case !a.vector && !b.vector:
		h, err := op(a.scalar, b.scalar)
		return scalarValue(h), err
	case a.vector && b.vector && len(a.elems) != len(b.elems):
		return value[H]{}, fmt.Errorf("shape mismatch: %s vs %s", a.shape(), b.shape())
	}

	n := len(a.elems)
	if !a.vector {
		n = len(b.elems)
	}
	out := value[H]{vector: true, elems: make([]value[H], n)}
	for i := 0; i < n; i++ {
		x, y := a, b
		if a.vector {
			x = a.elems[i]
		}
		if b.vector {
			y = b.elems[i]
		}
		el, err := zipValues(x, y, op)
		if err != nil {
			return value[H]{}, err
		}
		out.elems[i] = el
	}
	return out, nil
}

func (l *lowerer[T, H]) call(fr *frame[H], call *callExpr) (value[H], error) {
	args := make([]value[H], len(call.args))
	for i, a := range call.args {
		v, err := l.eval(fr, a)
		if err != nil {
			return value[H]{}, err
		}
		if v.void {
			return value[H]{}, l.errorf(fr, a.position(), "argument %d of %s returns nothing", i+1, call.name)
		}
		args[i] = v
	}

	for _, active := range l.stack {
		if active == call.name {
			return value[H]{}, l.errorf(fr, call.pos, "recursive call to %s is not supported", call.name)
		}
	}
	if len(l.stack) >= maxCallDepth {
		return value[H]{}, l.errorf(fr, call.pos, "call depth exceeds %d", maxCallDepth)
	}

	fn, err := l.c.function(call.name, l.cache)
	if err != nil {
		if ce, ok := err.(*CompileError); ok && !ce.Pos.IsValid() {
			return value[H]{}, l.errorf(fr, call.pos, "%s", ce.Message)
		}
		return value[H]{}, err
	}

	l.stack = append(l.stack, call.name)
	defer func() { l.stack = l.stack[:len(l.stack)-1] }()

	switch fn := fn.(type) {
	case *sourceFile:
		if len(args) != len(fn.params) {
			return value[H]{}, l.errorf(fr, call.pos, "%s expects %d argument(s), got %d", call.name, len(fn.params), len(args))
		}
		vars := make(map[string]value[H], len(args))
		for i, p := range fn.params {
			vars[p.name] = args[i]
		}
		return l.run(fn, vars)

	case *externFunc:
		if len(args) != len(fn.params) {
			return value[H]{}, l.errorf(fr, call.pos, "%s expects %d argument(s), got %d", call.name, len(fn.params), len(args))
		}
		v, err := l.callExternMapped(fn, args, call.pos)
		if err != nil {
			if _, ok := err.(*CompileError); ok {
				return value[H]{}, err
			}
			return value[H]{}, l.errorf(fr, call.pos, "%v", err)
		}
		return v, nil
	}
	return value[H]{}, l.errorf(fr, call.pos, "cannot call %s", call.name)
}

// callExternMapped calls a scalar extern function, mapping it element-wise when
// any argument is a vector.
func (l *lowerer[T, H]) callExternMapped(fn *externFunc, args []value[H], pos Pos) (value[H], error) {
	n := -1
	for _, a := range args {
		if !a.vector {
			continue
		}
		if n >= 0 && len(a.elems) != n {
			return value[H]{}, fmt.Errorf("%s: vector arguments differ in length", fn.name)
		}
		n = len(a.elems)
	}

	if n < 0 {
		handles := make([]H, len(args))
		for i, a := range args {
			handles[i] = a.scalar
		}
		outs, err := l.b.callExtern(fn, handles, pos)
		if err != nil {
			return value[H]{}, err
		}
		switch len(outs) {
		case 0:
			return value[H]{void: true}, nil
		case 1:
			return scalarValue(outs[0]), nil
		}
		v := value[H]{vector: true}
		for _, h := range outs {
			v.elems = append(v.elems, scalarValue(h))
		}
		return v, nil
	}

	out := value[H]{vector: true}
	for i := 0; i < n; i++ {
		sub := make([]value[H], len(args))
		for j, a := range args {
			sub[j] = a
			if a.vector {
				sub[j] = a.elems[i]
			}
		}
		el, err := l.callExternMapped(fn, sub, pos)
		if err != nil {
			return value[H]{}, err
		}
		if el.void {
			out.void = true
			continue
		}
		out.elems = append(out.elems, el)
	}
	if out.void {
		return value[H]{void: true}, nil
	}
	return out, nil
}
