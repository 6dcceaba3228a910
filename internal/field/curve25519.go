package field

import (
	"math/big"
	"slices"

	edfield "filippo.io/edwards25519/field"
)

// curve25519P is 2^255 - 19.
var curve25519P = func() *big.Int {
	p := new(big.Int).Lsh(big.NewInt(1), 255)
	return p.Sub(p, big.NewInt(19))
}()

// Curve25519 is an element of the field of order 2^255 - 19.
type Curve25519 struct{ e edfield.Element }

func (a Curve25519) Add(b Curve25519) Curve25519 {
	var r Curve25519
	r.e.Add(&a.e, &b.e)
	return r
}

func (a Curve25519) Sub(b Curve25519) Curve25519 {
	var r Curve25519
	r.e.Subtract(&a.e, &b.e)
	return r
}

func (a Curve25519) Mul(b Curve25519) Curve25519 {
	var r Curve25519
	r.e.Multiply(&a.e, &b.e)
	return r
}

func (a Curve25519) Neg() Curve25519 {
	var r Curve25519
	r.e.Negate(&a.e)
	return r
}

func (a Curve25519) Inverse() (Curve25519, error) {
	if a.IsZero() {
		return Curve25519{}, ErrNoInverse
	}
	var r Curve25519
	r.e.Invert(&a.e)
	return r, nil
}

func (a Curve25519) Equal(b Curve25519) bool { return a.e.Equal(&b.e) == 1 }

func (a Curve25519) IsZero() bool {
	var zero edfield.Element
	return a.e.Equal(&zero) == 1
}

// FromBig reduces x with math/big first: the library only decodes 32-byte
// little-endian encodings.
func (Curve25519) FromBig(x *big.Int) Curve25519 {
	buf := new(big.Int).Mod(x, curve25519P).FillBytes(make([]byte, 32))
	slices.Reverse(buf)
	var r Curve25519
	if _, err := r.e.SetBytes(buf); err != nil {
		panic("field: curve25519 encoding: " + err.Error())
	}
	return r
}

func (a Curve25519) BigInt() *big.Int {
	buf := a.e.Bytes()
	slices.Reverse(buf)
	return new(big.Int).SetBytes(buf)
}

func (a Curve25519) String() string { return a.BigInt().String() }

func (Curve25519) Kind() Kind { return KindCurve25519 }

// Compile-time checks that every field satisfies Element.
var (
	_ Element[Foi]        = Foi{}
	_ Element[Curve25519] = Curve25519{}
	_ Element[Bn128]      = Bn128{}
)
