package builder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/covenantzk/transfercircuit/field"
	"github.com/covenantzk/transfercircuit/ir"
)

func frVec(vs ...uint64) []fr.Element {
	out := make([]fr.Element, len(vs))
	for i, v := range vs {
		out[i] = field.FromUint64(v)
	}
	return out
}

func TestConstantFolding(t *testing.T) {
	b := New()

	v := b.Mul(b.Constant(3), b.Constant(4))
	c, ok := v.ConstantValue()
	assert.True(t, ok)
	assert.Equal(t, field.FromUint64(12), c)

	v = b.Add(b.Constant(3), b.Constant(4))
	c, ok = v.ConstantValue()
	assert.True(t, ok)
	assert.Equal(t, field.FromUint64(7), c)

	v = b.Sub(b.Constant(3), b.Constant(3))
	c, ok = v.ConstantValue()
	assert.True(t, ok)
	assert.Equal(t, field.Zero(), c)

	assert.Panics(t, func() { b.Constant("not a number") })
}

func TestArithmetic(t *testing.T) {
	b := New()
	x := b.SecretInput("x")
	y := b.SecretInput("y")
	z := b.Add(b.Mul(x, y), x)
	circuit := b.Finalize()

	asn, err := circuit.Solve(nil, frVec(3, 4))
	assert.NoError(t, err)
	assert.Equal(t, field.FromUint64(15), asn.Eval(z))
}

func TestIsZero(t *testing.T) {
	b := New()
	x := b.SecretInput("x")
	z := b.IsZero(x)
	circuit := b.Finalize()

	asn, err := circuit.Solve(nil, frVec(0))
	assert.NoError(t, err)
	assert.Equal(t, field.One(), asn.Eval(z))

	asn, err = circuit.Solve(nil, frVec(5))
	assert.NoError(t, err)
	assert.Equal(t, field.Zero(), asn.Eval(z))
}

func TestSelect(t *testing.T) {
	b := New()
	cond := b.SecretInput("cond")
	v := b.Select(cond, b.Constant(11), b.Constant(22))
	circuit := b.Finalize()

	asn, err := circuit.Solve(nil, frVec(1))
	assert.NoError(t, err)
	assert.Equal(t, field.FromUint64(11), asn.Eval(v))

	asn, err = circuit.Solve(nil, frVec(0))
	assert.NoError(t, err)
	assert.Equal(t, field.FromUint64(22), asn.Eval(v))

	// the condition is boolean-constrained
	_, err = circuit.Solve(nil, frVec(2))
	assert.True(t, errors.Is(err, ir.ErrUnsatisfiedConstraint))
}

func TestToBinary(t *testing.T) {
	b := New()
	x := b.SecretInput("x")
	bits := b.ToBinary(x, 4)
	circuit := b.Finalize()

	asn, err := circuit.Solve(nil, frVec(13))
	assert.NoError(t, err)
	want := []uint64{1, 0, 1, 1} // little endian
	for i, bit := range bits {
		assert.Equal(t, field.FromUint64(want[i]), asn.Eval(bit), "bit %d", i)
	}

	// 16 does not fit in 4 bits; the recomposition constraint must fail
	_, err = circuit.Solve(nil, frVec(16))
	assert.True(t, errors.Is(err, ir.ErrUnsatisfiedConstraint))
}

func TestAssertIsEqualOnConstants(t *testing.T) {
	b := New()
	assert.Panics(t, func() { b.AssertIsEqual(b.One(), b.Zero()) })
	assert.NotPanics(t, func() { b.AssertIsEqual(b.One(), b.Constant(1)) })
}

func TestFrozenBuilderPanics(t *testing.T) {
	b := New()
	b.SecretInput("x")
	b.Finalize()
	assert.Panics(t, func() { b.SecretInput("y") })
	assert.Panics(t, func() { b.Finalize() })
}

func TestBooleanAssertionDedup(t *testing.T) {
	b := New()
	x := b.SecretInput("x")
	b.AssertIsBoolean(x)
	n := len(b.constraints)
	b.AssertIsBoolean(x)
	assert.Equal(t, n, len(b.constraints))
}

func TestProductDedup(t *testing.T) {
	b := New()
	x := b.SecretInput("x")
	y := b.SecretInput("y")
	b.Mul(x, y)
	n := len(b.instructions)
	b.Mul(x, y)
	b.Mul(y, x) // products are symmetric
	assert.Equal(t, n, len(b.instructions))
}
