// Package std provides the reusable gadgets the transfer circuit is composed
// of: equality, windowed comparison, selection by a private index, and
// fixed-length boolean/numeric folds. Every gadget expands to a constraint
// count that depends only on its shape, never on witness values; there is no
// data-dependent branching in the compiled circuit.
package std

import (
	"math/big"

	"github.com/covenantzk/transfercircuit/builder"
	"github.com/covenantzk/transfercircuit/field"
)

// Equal returns 1 iff x == y, as IsZero(x - y).
func Equal(b *builder.Builder, x, y builder.Variable) builder.Variable {
	return b.IsZero(b.Sub(x, y))
}

// ArrayEqual returns 1 iff xs and ys agree at every position: AllOf over the
// per-position Equal results. The lengths must match; a mismatch is a
// construction bug and panics.
func ArrayEqual(b *builder.Builder, xs, ys []builder.Variable) builder.Variable {
	if len(xs) != len(ys) {
		panic("ArrayEqual: length mismatch")
	}
	eqs := make([]builder.Variable, len(xs))
	for i := range xs {
		eqs[i] = Equal(b, xs[i], ys[i])
	}
	return AllOf(b, eqs)
}

// LessThan returns 1 iff x < y, by decomposing x - y + 2^bitWidth into
// bitWidth+1 bits and inspecting the top bit.
//
// Correctness precondition: both operands must already be constrained to
// [0, 2^bitWidth). The gadget does not range-check them itself; comparing
// unconstrained values is meaningless. This mirrors the comparator it is
// derived from.
func LessThan(b *builder.Builder, bitWidth int, x, y builder.Variable) builder.Variable {
	if bitWidth <= 0 || bitWidth+1 >= field.BitLen() {
		panic("LessThan: bit width out of range")
	}
	shift := field.FromBig(new(big.Int).Lsh(big.NewInt(1), uint(bitWidth)))
	s := b.Add(b.Sub(x, y), b.Constant(shift))
	bits := b.ToBinary(s, bitWidth+1)
	lt := b.Sub(b.One(), bits[bitWidth])
	b.MarkBoolean(lt)
	return lt
}

// Selector returns the indicator vector of index over [0, n): position i is
// Equal(i, index). If index lies outside [0, n) every position is 0; callers
// that need a valid index must assert the vector sums to 1.
func Selector(b *builder.Builder, n int, index builder.Variable) []builder.Variable {
	sel := make([]builder.Variable, n)
	for i := 0; i < n; i++ {
		sel[i] = Equal(b, b.Constant(uint64(i)), index)
	}
	return sel
}

// ArraySelect returns arr[index] as the selector-weighted sum over all slots.
// This is the canonical replacement for dynamic indexing, which the
// constraint model cannot express. With index outside [0, len(arr)) the sum
// degenerates to 0; see Selector.
func ArraySelect(b *builder.Builder, arr []builder.Variable, index builder.Variable) builder.Variable {
	return Dot(b, Selector(b, len(arr), index), arr)
}

// Dot returns the inner product of two equal-length vectors.
func Dot(b *builder.Builder, xs, ys []builder.Variable) builder.Variable {
	if len(xs) != len(ys) {
		panic("Dot: length mismatch")
	}
	acc := b.Zero()
	for i := range xs {
		acc = b.Add(acc, b.Mul(xs[i], ys[i]))
	}
	return acc
}

// AllOf folds booleans with a running product: the result is 1 iff every
// element is 1. Inputs are boolean-constrained (a no-op for gadget outputs
// already known boolean).
func AllOf(b *builder.Builder, xs []builder.Variable) builder.Variable {
	acc := b.One()
	for _, x := range xs {
		b.AssertIsBoolean(x)
		acc = b.Mul(acc, x)
	}
	b.MarkBoolean(acc)
	return acc
}

// AnyOf folds booleans with acc + x - acc*x: the result is 1 iff at least one
// element is 1.
func AnyOf(b *builder.Builder, xs []builder.Variable) builder.Variable {
	acc := b.Zero()
	for _, x := range xs {
		b.AssertIsBoolean(x)
		acc = b.Sub(b.Add(acc, x), b.Mul(acc, x))
	}
	b.MarkBoolean(acc)
	return acc
}

// Sum folds numeric values with a running total. Sums stay linear, so this
// adds no constraints on its own.
func Sum(b *builder.Builder, xs []builder.Variable) builder.Variable {
	acc := b.Zero()
	for _, x := range xs {
		acc = b.Add(acc, x)
	}
	return acc
}
