package field

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/field/goldilocks"
)

// Kind names one of the supported field algebras.
type Kind string

const (
	KindOxfoi      Kind = "oxfoi"
	KindCurve25519 Kind = "curve25519"
	KindAltBn128   Kind = "alt_bn128"
)

// Kinds returns every supported field in menu order.
func Kinds() []Kind {
	return []Kind{KindOxfoi, KindCurve25519, KindAltBn128}
}

// ParseKind converts a field name into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown field %q: must be one of %v", s, Kinds())
}

// Valid reports whether k is one of the supported fields.
func (k Kind) Valid() bool {
	_, err := ParseKind(string(k))
	return err == nil
}

func (k Kind) String() string {
	return string(k)
}

// Modulus returns the prime of the field named by k, or nil for an unknown kind.
func (k Kind) Modulus() *big.Int {
	switch k {
	case KindOxfoi:
		return goldilocks.Modulus()
	case KindCurve25519:
		return new(big.Int).Set(curve25519P)
	case KindAltBn128:
		return fr.Modulus()
	default:
		return nil
	}
}
