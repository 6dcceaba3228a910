package field

import (
	"errors"
	"math/big"
)

// ErrNoInverse is returned when inverting the zero element.
var ErrNoInverse = errors.New("zero has no multiplicative inverse")

// Element is the capability every field algebra provides to generic code.
// The zero value of an implementation is the additive identity.
type Element[T any] interface {
	Add(T) T
	Sub(T) T
	Mul(T) T
	Neg() T
	Inverse() (T, error)
	Equal(T) bool
	IsZero() bool

	// FromBig reduces x (which may be negative) into the field.
	FromBig(x *big.Int) T
	// BigInt returns the canonical representative in [0, p).
	BigInt() *big.Int
	// String renders the canonical representative in decimal.
	String() string
	Kind() Kind
}

// FromInt64 converts a machine integer into the field of T.
func FromInt64[T Element[T]](v int64) T {
	var zero T
	return zero.FromBig(big.NewInt(v))
}

// One returns the multiplicative identity of T.
func One[T Element[T]]() T {
	return FromInt64[T](1)
}

// Parse reads a decimal integer literal into the field of T.
func Parse[T Element[T]](s string) (T, error) {
	var zero T
	x, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return zero, errors.New("invalid integer literal " + s)
	}
	return zero.FromBig(x), nil
}

// KindOf returns the Kind of the field type T.
func KindOf[T Element[T]]() Kind {
	var zero T
	return zero.Kind()
}

// Pow raises x to a non-negative exponent by square-and-multiply.
func Pow[T Element[T]](x T, e *big.Int) T {
	acc := One[T]()
	for i := e.BitLen() - 1; i >= 0; i-- {
		acc = acc.Mul(acc)
		if e.Bit(i) == 1 {
			acc = acc.Mul(x)
		}
	}
	return acc
}
