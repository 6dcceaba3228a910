package ash

import (
	"fmt"

	"github.com/roach88/ashpad/internal/field"
)

// operand is a tasm scalar: either a compile-time constant or a value stored
// in RAM at addr.
type operand[T field.Element[T]] struct {
	isConst bool
	value   T
	addr    int
}

// asmBuilder is the backend for the tasm target. Every computed scalar is
// written to a fresh RAM cell; constants are folded at compile time.
type asmBuilder[T field.Element[T]] struct {
	lines []string
	next  int
}

func (b *asmBuilder[T]) emit(lines ...string) {
	b.lines = append(b.lines, lines...)
}

func (b *asmBuilder[T]) load(o operand[T]) {
	if o.isConst {
		b.emit("push " + o.value.String())
		return
	}
	b.emit(fmt.Sprintf("push %d", o.addr), "read_mem 1", "pop 1")
}

// store pops the top of the stack into a new RAM cell.
func (b *asmBuilder[T]) store() operand[T] {
	addr := b.next
	b.next++
	b.emit(fmt.Sprintf("push %d", addr), "write_mem 1", "pop 1")
	return operand[T]{addr: addr}
}

func (b *asmBuilder[T]) constant(v T) operand[T] {
	return operand[T]{isConst: true, value: v}
}

func (b *asmBuilder[T]) constValue(o operand[T]) (T, bool) {
	return o.value, o.isConst
}

func (b *asmBuilder[T]) binary(x, y operand[T], fold func(a, b T) T, ops ...string) operand[T] {
	if x.isConst && y.isConst {
		return b.constant(fold(x.value, y.value))
	}
	b.load(x)
	b.load(y)
	b.emit(ops...)
	return b.store()
}

func (b *asmBuilder[T]) add(x, y operand[T]) operand[T] {
	return b.binary(x, y, func(p, q T) T { return p.Add(q) }, "add")
}

func (b *asmBuilder[T]) sub(x, y operand[T]) operand[T] {
	return b.binary(x, y, func(p, q T) T { return p.Sub(q) }, "push -1", "mul", "add")
}

func (b *asmBuilder[T]) mul(x, y operand[T]) operand[T] {
	return b.binary(x, y, func(p, q T) T { return p.Mul(q) }, "mul")
}

func (b *asmBuilder[T]) div(x, y operand[T]) (operand[T], error) {
	if y.isConst {
		inv, err := y.value.Inverse()
		if err != nil {
			return operand[T]{}, fmt.Errorf("division by zero")
		}
		return b.mul(x, b.constant(inv)), nil
	}
	b.load(x)
	b.load(y)
	b.emit("invert", "mul")
	return b.store(), nil
}

func (b *asmBuilder[T]) neg(x operand[T]) operand[T] {
	if x.isConst {
		return b.constant(x.value.Neg())
	}
	b.load(x)
	b.emit("push -1", "mul")
	return b.store()
}

// callExtern inlines a .tasm function: arguments are pushed in order, the body
// runs, and the results left on the stack are stored to RAM.
func (b *asmBuilder[T]) callExtern(fn *externFunc, args []operand[T], pos Pos) ([]operand[T], error) {
	if fn.ext != ExtTasm {
		return nil, &CompileError{Pos: pos, Message: fmt.Sprintf("%s cannot be used by the tasm target", fn.file)}
	}
	for _, a := range args {
		b.load(a)
	}
	b.emit(fn.asm...)

	outs := make([]operand[T], len(fn.returns))
	for i := len(outs) - 1; i >= 0; i-- {
		outs[i] = b.store()
	}
	return outs, nil
}
