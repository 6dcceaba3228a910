package field

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Bn128 is an element of the alt_bn128 (BN254) scalar field.
type Bn128 struct{ e fr.Element }

func (a Bn128) Add(b Bn128) Bn128 {
	var r Bn128
	r.e.Add(&a.e, &b.e)
	return r
}

func (a Bn128) Sub(b Bn128) Bn128 {
	var r Bn128
	r.e.Sub(&a.e, &b.e)
	return r
}

func (a Bn128) Mul(b Bn128) Bn128 {
	var r Bn128
	r.e.Mul(&a.e, &b.e)
	return r
}

func (a Bn128) Neg() Bn128 {
	var r Bn128
	r.e.Neg(&a.e)
	return r
}

func (a Bn128) Inverse() (Bn128, error) {
	if a.e.IsZero() {
		return Bn128{}, ErrNoInverse
	}
	var r Bn128
	r.e.Inverse(&a.e)
	return r, nil
}

func (a Bn128) Equal(b Bn128) bool { return a.e.Equal(&b.e) }

func (a Bn128) IsZero() bool { return a.e.IsZero() }

func (Bn128) FromBig(x *big.Int) Bn128 {
	var r Bn128
	r.e.SetBigInt(x)
	return r
}

func (a Bn128) BigInt() *big.Int { return a.e.BigInt(new(big.Int)) }

func (a Bn128) String() string { return a.e.String() }

func (Bn128) Kind() Kind { return KindAltBn128 }
