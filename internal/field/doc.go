// Package field implements the prime-field algebras programs are compiled over.
//
// Three fields are supported, named by Kind:
//
//   - oxfoi: p = 2^64 - 2^32 + 1, the field of the tasm target
//   - curve25519: p = 2^255 - 19
//   - alt_bn128: the BN254 scalar field
//
// Each field is a distinct Go type satisfying Element. Generic code is written
// once against Element and instantiated per field:
//
//	func square[T field.Element[T]](x T) T { return x.Mul(x) }
//
// Arithmetic is delegated to gnark-crypto (goldilocks, bn254/fr) and to
// filippo.io/edwards25519/field. Elements are immutable values; every operation
// returns a new element.
package field
