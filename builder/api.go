package builder

import (
	"math/big"
	"sort"

	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/covenantzk/transfercircuit/expr"
	"github.com/covenantzk/transfercircuit/field"
	"github.com/covenantzk/transfercircuit/ir"
	"github.com/covenantzk/transfercircuit/utils"
)

// ---------------------------------------------------------------------------
// Arithmetic

// Add returns x + y + rest... No constraint is recorded; sums stay symbolic
// linear combinations.
func (b *Builder) Add(x, y Variable, rest ...Variable) Variable {
	b.mustBuild()
	vars := append([]Variable{x, y}, rest...)
	return b.add(vars, false)
}

// Sub returns x - y - rest...
func (b *Builder) Sub(x, y Variable, rest ...Variable) Variable {
	b.mustBuild()
	vars := append([]Variable{x, y}, rest...)
	return b.add(vars, true)
}

// Neg returns -x.
func (b *Builder) Neg(x Variable) Variable {
	b.mustBuild()
	res := x.Clone()
	for i := range res {
		res[i].Coeff.Neg(&res[i].Coeff)
	}
	return normalize(res)
}

// add merges term lists; when sub is set, every list after the first is
// negated.
func (b *Builder) add(vars []Variable, sub bool) Variable {
	capacity := 0
	for _, v := range vars {
		capacity += len(v)
	}
	res := make(expr.Expression, 0, capacity)
	res = append(res, vars[0]...)
	for _, v := range vars[1:] {
		for _, t := range v {
			if sub {
				t.Coeff.Neg(&t.Coeff)
			}
			res = append(res, t)
		}
	}
	return normalize(res)
}

// normalize sorts terms, folds duplicates, and drops zero coefficients,
// keeping the expression canonical for the dedup maps.
func normalize(e expr.Expression) expr.Expression {
	sort.Sort(e)
	out := e[:0]
	for _, t := range e {
		if len(out) > 0 && out[len(out)-1].SID == t.SID {
			out[len(out)-1].Coeff.Add(&out[len(out)-1].Coeff, &t.Coeff)
			continue
		}
		out = append(out, t)
	}
	// drop cancelled terms
	k := 0
	for _, t := range out {
		if !t.Coeff.IsZero() {
			out[k] = t
			k++
		}
	}
	out = out[:k]
	if len(out) == 0 {
		return expr.NewConstant(field.Zero())
	}
	return out
}

// MulConstant scales a variable by a constant without recording a constraint.
func (b *Builder) MulConstant(x Variable, c fr.Element) Variable {
	b.mustBuild()
	if c.IsZero() {
		return b.eZero
	}
	res := x.Clone()
	for i := range res {
		res[i].Coeff.Mul(&res[i].Coeff, &c)
	}
	return normalize(res)
}

// Mul returns x * y. Constant operands fold into coefficients; a product of
// two genuine variables allocates one internal signal and one constraint.
// Identical products are deduplicated, so the constraint count of a gadget
// depends only on its shape, never on witness values.
func (b *Builder) Mul(x, y Variable, rest ...Variable) Variable {
	b.mustBuild()
	res := b.mul2(x, y)
	for _, v := range rest {
		res = b.mul2(res, v)
	}
	return res
}

func (b *Builder) mul2(x, y Variable) Variable {
	cx, xConst := b.constantValue(x)
	cy, yConst := b.constantValue(y)
	if xConst && yConst {
		var c fr.Element
		c.Mul(&cx, &cy)
		return expr.NewConstant(c)
	}
	if xConst {
		return b.MulConstant(y, cx)
	}
	if yConst {
		return b.MulConstant(x, cy)
	}
	return expr.NewLinear(b.productSignal(x, y), b.tOne)
}

// productSignal returns the signal id holding x*y, allocating it and the
// matching constraint on first use.
func (b *Builder) productSignal(x, y Variable) int {
	if exprLess(y, x) {
		x, y = y, x
	}
	key := productKey{a: x, b: y}
	if id, ok := b.products.Find(key); ok {
		return id.(int)
	}
	out := b.newSignal()
	b.instructions = append(b.instructions, ir.NewProductInstruction(x.Clone(), y.Clone(), out))
	b.addConstraint(x.Clone(), y.Clone(), expr.NewLinear(out, b.tOne))
	b.products.Set(key, out)
	return out
}

// assertProduct records x*y = z directly, without a new signal.
func (b *Builder) assertProduct(x, y, z Variable) {
	b.addConstraint(x.Clone(), y.Clone(), z.Clone())
}

// ---------------------------------------------------------------------------
// Hints

// InverseOrZeroHint computes 1/x, or 0 when x is 0. It backs IsZero.
func InverseOrZeroHint(mod *big.Int, inputs []*big.Int, outputs []*big.Int) error {
	x := new(big.Int).Mod(inputs[0], mod)
	if x.Sign() == 0 {
		outputs[0].SetInt64(0)
		return nil
	}
	outputs[0].ModInverse(x, mod)
	return nil
}

// BitsHint decomposes the input into little-endian bits, one output per bit.
func BitsHint(mod *big.Int, inputs []*big.Int, outputs []*big.Int) error {
	x := new(big.Int).Mod(inputs[0], mod)
	for i := range outputs {
		outputs[i].SetUint64(uint64(x.Bit(i)))
	}
	return nil
}

// NewHint allocates nbOutputs signals whose values the evaluator computes by
// calling f. Hint outputs carry no constraints; the caller must pin them down
// with explicit assertions, exactly as with gnark hints.
func (b *Builder) NewHint(f ir.Hint, nbOutputs int, inputs ...Variable) ([]Variable, error) {
	b.mustBuild()
	ins := make([]expr.Expression, len(inputs))
	for i, v := range inputs {
		ins[i] = v.Clone()
	}
	outIDs := make([]int, nbOutputs)
	res := make([]Variable, nbOutputs)
	for i := range outIDs {
		outIDs[i] = b.newSignal()
		res[i] = expr.NewLinear(outIDs[i], b.tOne)
	}
	b.instructions = append(b.instructions, ir.NewHintInstruction(f, ins, outIDs))
	return res, nil
}

// ---------------------------------------------------------------------------
// Predicates and conditionals

// IsZero returns 1 if x is zero and 0 otherwise, via the inverse-of-input
// witness hint: m = 1 - x*inv(x) with x*m = 0. Two constraints, one hint
// signal, independent of the value of x.
func (b *Builder) IsZero(x Variable) Variable {
	b.mustBuild()
	if c, ok := b.constantValue(x); ok {
		if c.IsZero() {
			return b.eOne
		}
		return b.eZero
	}
	inv, err := b.NewHint(InverseOrZeroHint, 1, x)
	if err != nil {
		panic(err)
	}
	t := expr.NewLinear(b.productSignal(x, inv[0]), b.tOne)
	m := b.Sub(b.eOne, t)
	b.assertProduct(x, m, b.eZero)
	b.MarkBoolean(m)
	return m
}

// Select returns a if cond is 1 and b if cond is 0. cond is
// boolean-constrained.
func (b *Builder) Select(cond, x, y Variable) Variable {
	b.mustBuild()
	b.AssertIsBoolean(cond)
	if c, ok := b.constantValue(cond); ok {
		if c.IsZero() {
			return y
		}
		return x
	}
	d := b.Sub(x, y)
	return b.Add(y, b.Mul(cond, d))
}

// ---------------------------------------------------------------------------
// Bit decomposition

// ToBinary decomposes v into n little-endian bits. Each bit is
// boolean-constrained and the weighted sum is constrained back to v, so the
// result costs n+1 constraints regardless of the value.
func (b *Builder) ToBinary(v Variable, n int) []Variable {
	b.mustBuild()
	if n <= 0 {
		panic("ToBinary: bit count must be positive")
	}
	bits, err := b.NewHint(BitsHint, n, v)
	if err != nil {
		panic(err)
	}
	var weight fr.Element
	weight.SetOne()
	two := field.FromUint64(2)
	acc := b.eZero
	for i := 0; i < n; i++ {
		b.AssertIsBoolean(bits[i])
		acc = b.Add(acc, b.MulConstant(bits[i], weight))
		weight.Mul(&weight, &two)
	}
	b.AssertIsEqual(acc, v)
	return bits
}

// ---------------------------------------------------------------------------
// product dedup key

type productKey struct {
	a, b expr.Expression
}

func (k productKey) HashCode() uint64 {
	return k.a.HashCode()*1000000007 + k.b.HashCode()
}

func (k productKey) EqualI(o utils.Hashable) bool {
	ok := o.(productKey)
	return k.a.Equal(ok.a) && k.b.Equal(ok.b)
}

// exprLess gives a total order on canonical expressions, used to make the
// product cache key symmetric.
func exprLess(a, b expr.Expression) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	for i := range a {
		if a[i].SID != b[i].SID {
			return a[i].SID < b[i].SID
		}
		c := a[i].Coeff.Cmp(&b[i].Coeff)
		if c != 0 {
			return c < 0
		}
	}
	return false
}
