package field

import (
	"math/big"

	"github.com/consensys/gnark-crypto/field/goldilocks"
)

// Foi is an element of the oxfoi field, p = 2^64 - 2^32 + 1 (the Goldilocks
// prime).
type Foi struct{ e goldilocks.Element }

func (a Foi) Add(b Foi) Foi {
	var r Foi
	r.e.Add(&a.e, &b.e)
	return r
}

func (a Foi) Sub(b Foi) Foi {
	var r Foi
	r.e.Sub(&a.e, &b.e)
	return r
}

func (a Foi) Mul(b Foi) Foi {
	var r Foi
	r.e.Mul(&a.e, &b.e)
	return r
}

func (a Foi) Neg() Foi {
	var r Foi
	r.e.Neg(&a.e)
	return r
}

func (a Foi) Inverse() (Foi, error) {
	if a.e.IsZero() {
		return Foi{}, ErrNoInverse
	}
	var r Foi
	r.e.Inverse(&a.e)
	return r, nil
}

func (a Foi) Equal(b Foi) bool { return a.e.Equal(&b.e) }

func (a Foi) IsZero() bool { return a.e.IsZero() }

func (Foi) FromBig(x *big.Int) Foi {
	var r Foi
	r.e.SetBigInt(x)
	return r
}

func (a Foi) BigInt() *big.Int { return a.e.BigInt(new(big.Int)) }

func (a Foi) String() string { return a.e.String() }

func (Foi) Kind() Kind { return KindOxfoi }
