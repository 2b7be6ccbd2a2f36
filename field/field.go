// Package field fixes the circuit field to the BN254 scalar field and wraps
// the gnark-crypto element type with the conversions the rest of the module
// needs. Witness values arrive as decimal strings; parsing is strict so a
// malformed value is rejected before any constraint is evaluated.
package field

import (
	"errors"
	"fmt"
	"math/big"

	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrMalformedFieldValue is returned when an input is not a canonical
// representative of the field: non-numeric, negative, or >= the modulus.
var ErrMalformedFieldValue = errors.New("malformed field value")

// Modulus returns a fresh copy of the field order.
func Modulus() *big.Int {
	return fr.Modulus()
}

// BitLen returns the bit length of the field order.
func BitLen() int {
	return fr.Bits
}

func Zero() fr.Element {
	var z fr.Element
	return z
}

func One() fr.Element {
	var o fr.Element
	o.SetOne()
	return o
}

// FromUint64 returns the element representing v.
func FromUint64(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

// FromBig reduces v modulo the field order. Negative values wrap around, as
// in gnark's variable conversion.
func FromBig(v *big.Int) fr.Element {
	var e fr.Element
	e.SetBigInt(v)
	return e
}

// ToBig returns the canonical big.Int representative in [0, modulus).
func ToBig(e fr.Element) *big.Int {
	var b big.Int
	e.BigInt(&b)
	return &b
}

// ParseDecimal parses a strict base-10 representative in [0, modulus).
func ParseDecimal(s string) (fr.Element, error) {
	var e fr.Element
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return e, fmt.Errorf("%w: %q is not a decimal integer", ErrMalformedFieldValue, s)
	}
	if b.Sign() < 0 || b.Cmp(fr.Modulus()) >= 0 {
		return e, fmt.Errorf("%w: %q is out of range", ErrMalformedFieldValue, s)
	}
	e.SetBigInt(b)
	return e, nil
}

// FormatDecimal renders the canonical decimal representative, the inverse of
// ParseDecimal.
func FormatDecimal(e fr.Element) string {
	return ToBig(e).String()
}

// Inverse returns 1/x, or ok=false when x is zero.
func Inverse(x fr.Element) (fr.Element, bool) {
	if x.IsZero() {
		return x, false
	}
	var inv fr.Element
	inv.Inverse(&x)
	return inv, true
}
