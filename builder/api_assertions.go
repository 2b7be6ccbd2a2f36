package builder

import (
	"fmt"

	"github.com/covenantzk/transfercircuit/field"
)

// AssertIsEqual constrains x == y. Asserting two unequal constants can never
// be satisfied and is a construction bug, so it panics immediately.
func (b *Builder) AssertIsEqual(x, y Variable) {
	b.mustBuild()
	d := b.Sub(x, y)
	if c, ok := b.constantValue(d); ok {
		if !c.IsZero() {
			panic(fmt.Sprintf("AssertIsEqual on constants that differ by %s",
				field.FormatDecimal(c)))
		}
		return
	}
	if v, ok := b.zeroes.Find(d); ok && v.(constraintStatus) == asserted {
		return
	}
	b.zeroes.Set(d, asserted)
	b.addConstraint(d, b.eOne, b.eZero)
}

// AssertIsBoolean constrains x to 0 or 1 via x*(x-1) = 0. Variables already
// marked or asserted boolean are skipped, so gadget composition does not
// double-constrain.
func (b *Builder) AssertIsBoolean(x Variable) {
	b.mustBuild()
	if c, ok := b.constantValue(x); ok {
		one := field.One()
		if !c.IsZero() && !c.Equal(&one) {
			panic(fmt.Sprintf("AssertIsBoolean on constant %s", field.FormatDecimal(c)))
		}
		return
	}
	if _, ok := b.booleans.Find(x); ok {
		return
	}
	b.booleans.Set(x, asserted)
	b.assertProduct(x, b.Sub(x, b.eOne), b.eZero)
}

// MarkBoolean records (but does not constrain) that x is boolean through an
// existing constraint, so later AssertIsBoolean calls add nothing.
func (b *Builder) MarkBoolean(x Variable) {
	b.mustBuild()
	if c, ok := b.constantValue(x); ok {
		one := field.One()
		if !c.IsZero() && !c.Equal(&one) {
			panic("MarkBoolean on a non-boolean constant")
		}
		return
	}
	b.booleans.Add(x, marked)
}

// IsBoolean reports whether x is known boolean, either marked or asserted.
func (b *Builder) IsBoolean(x Variable) bool {
	if c, ok := b.constantValue(x); ok {
		one := field.One()
		return c.IsZero() || c.Equal(&one)
	}
	_, ok := b.booleans.Find(x)
	return ok
}
