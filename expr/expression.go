// Package expr implements linear combinations of circuit signals, following
// the shape of gnark's frontend/internal/expr. An Expression is a sorted list
// of terms; signal id 0 is the constant wire 1, so a term with SID 0 is a
// plain constant.
package expr

import (
	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/covenantzk/transfercircuit/utils"
)

// Term is coeff * signal.
type Term struct {
	SID   int
	Coeff fr.Element
}

func NewTerm(sid int, coeff fr.Element) Term {
	return Term{SID: sid, Coeff: coeff}
}

func (t Term) HashCode() uint64 {
	x := t.Coeff[0] ^ t.Coeff[1] ^ t.Coeff[2] ^ t.Coeff[3]
	x ^= uint64(t.SID) * 998244353
	return x
}

// Expression is a linear combination of signals. Invariant: terms are sorted
// by SID and SIDs are unique; the zero expression is a single constant-0 term.
type Expression []Term

// NewConstant returns the expression c.
func NewConstant(c fr.Element) Expression {
	return Expression{NewTerm(0, c)}
}

// NewLinear returns the expression c * signal.
func NewLinear(sid int, c fr.Element) Expression {
	return Expression{NewTerm(sid, c)}
}

func (e Expression) Clone() Expression {
	res := make(Expression, len(e))
	copy(res, e)
	return res
}

// Len implements sort.Interface.
func (e Expression) Len() int { return len(e) }

// Swap implements sort.Interface.
func (e Expression) Swap(i, j int) { e[i], e[j] = e[j], e[i] }

// Less implements sort.Interface.
func (e Expression) Less(i, j int) bool { return e[i].SID < e[j].SID }

// Equal returns true if both sorted expressions are the same.
func (e Expression) Equal(o Expression) bool {
	if len(e) != len(o) {
		return false
	}
	for i := range e {
		if e[i] != o[i] {
			return false
		}
	}
	return true
}

// EqualI lets an Expression be used as a utils.Map key.
func (e Expression) EqualI(o utils.Hashable) bool {
	return e.Equal(o.(Expression))
}

// HashCode returns a fast, non-cryptographic hash of the expression.
// Requires the expression to be sorted.
func (e Expression) HashCode() uint64 {
	h := uint64(17)
	for _, t := range e {
		h = h*23 + t.HashCode()
	}
	return h
}

// IsConstant reports whether the expression references no signal.
func (e Expression) IsConstant() bool {
	for _, t := range e {
		if t.SID != 0 {
			return false
		}
	}
	return true
}

// ConstantValue returns the constant an expression evaluates to, if it does
// not reference any signal.
func (e Expression) ConstantValue() (fr.Element, bool) {
	var zero fr.Element
	if len(e) == 0 {
		return zero, true
	}
	if len(e) == 1 && e[0].SID == 0 {
		return e[0].Coeff, true
	}
	return zero, false
}

// SingleSignal returns the signal id if the expression is exactly 1 * signal.
func (e Expression) SingleSignal() (int, bool) {
	var one fr.Element
	one.SetOne()
	if len(e) == 1 && e[0].SID != 0 && e[0].Coeff.Equal(&one) {
		return e[0].SID, true
	}
	return 0, false
}
