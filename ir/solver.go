package ir

import (
	"fmt"
	"math/big"

	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/covenantzk/transfercircuit/expr"
	"github.com/covenantzk/transfercircuit/field"
)

// Assignment is the full signal assignment produced by a successful solve.
type Assignment struct {
	circuit *Circuit
	Values  []fr.Element
}

// Solve evaluates the circuit on the given input vectors. The inputs must
// match the compiled Public/Secret order exactly. It runs a single pass over
// the instruction list (construction order is topological order), then checks
// every constraint and fails with ErrUnsatisfiedConstraint on the first
// violated equation.
func (c *Circuit) Solve(public, secret []fr.Element) (*Assignment, error) {
	if len(public) != len(c.Public) {
		return nil, fmt.Errorf("%w: %d public inputs, circuit expects %d",
			ErrShapeMismatch, len(public), len(c.Public))
	}
	if len(secret) != len(c.Secret) {
		return nil, fmt.Errorf("%w: %d secret inputs, circuit expects %d",
			ErrShapeMismatch, len(secret), len(c.Secret))
	}

	values := make([]fr.Element, c.NbSignals)
	filled := make([]bool, c.NbSignals)
	values[0].SetOne()
	filled[0] = true

	for i, in := range c.Public {
		values[in.ID] = public[i]
		filled[in.ID] = true
	}
	for i, in := range c.Secret {
		values[in.ID] = secret[i]
		filled[in.ID] = true
	}

	eval := func(e expr.Expression) fr.Element {
		var res, t fr.Element
		for _, term := range e {
			if !filled[term.SID] {
				panic(fmt.Sprintf("signal s%d read before definition", term.SID))
			}
			t.Mul(&values[term.SID], &term.Coeff)
			res.Add(&res, &t)
		}
		return res
	}

	mod := field.Modulus()
	for idx, insn := range c.Instructions {
		switch insn.Type {
		case IProduct:
			a := eval(insn.A)
			b := eval(insn.B)
			var out fr.Element
			out.Mul(&a, &b)
			values[insn.OutputIDs[0]] = out
			filled[insn.OutputIDs[0]] = true
		case IHint:
			in := make([]*big.Int, len(insn.Inputs))
			for i, e := range insn.Inputs {
				in[i] = field.ToBig(eval(e))
			}
			out := make([]*big.Int, len(insn.OutputIDs))
			for i := range out {
				out[i] = new(big.Int)
			}
			if err := insn.HintFunc(mod, in, out); err != nil {
				return nil, fmt.Errorf("%w: hint at instruction %d: %v",
					ErrUnsatisfiedConstraint, idx, err)
			}
			for i, sid := range insn.OutputIDs {
				values[sid] = field.FromBig(out[i])
				filled[sid] = true
			}
		default:
			panic(fmt.Sprintf("unknown instruction type %d", insn.Type))
		}
	}

	for i := range filled {
		if !filled[i] {
			panic(fmt.Sprintf("signal s%d was never assigned", i))
		}
	}

	a := &Assignment{circuit: c, Values: values}
	if err := c.check(a); err != nil {
		return nil, err
	}
	return a, nil
}

// check verifies every constraint against a full assignment.
func (c *Circuit) check(a *Assignment) error {
	var l, r, o fr.Element
	for i, con := range c.Constraints {
		l = a.Eval(con.A)
		r = a.Eval(con.B)
		o = a.Eval(con.C)
		l.Mul(&l, &r)
		if !l.Equal(&o) {
			if con.Label != "" {
				return fmt.Errorf("%w: %s (constraint %d: (%s)*(%s) != %s)",
					ErrUnsatisfiedConstraint, con.Label, i,
					exprString(con.A), exprString(con.B), exprString(con.C))
			}
			return fmt.Errorf("%w: constraint %d: (%s)*(%s) != %s",
				ErrUnsatisfiedConstraint, i,
				exprString(con.A), exprString(con.B), exprString(con.C))
		}
	}
	return nil
}

// Eval evaluates a linear combination under the assignment.
func (a *Assignment) Eval(e expr.Expression) fr.Element {
	var res, t fr.Element
	for _, term := range e {
		t.Mul(&a.Values[term.SID], &term.Coeff)
		res.Add(&res, &t)
	}
	return res
}

// PublicVector returns the public values in protocol order: declared public
// inputs in allocation order, then exports in declaration order. This order
// is stable across solves of the same compiled circuit.
func (a *Assignment) PublicVector() []fr.Element {
	out := make([]fr.Element, 0, a.circuit.PublicLen())
	for _, in := range a.circuit.Public {
		out = append(out, a.Values[in.ID])
	}
	for _, ex := range a.circuit.Exports {
		out = append(out, a.Eval(ex.E))
	}
	return out
}

// Export returns a named exported value.
func (a *Assignment) Export(name string) (fr.Element, bool) {
	for _, ex := range a.circuit.Exports {
		if ex.Name == name {
			return a.Eval(ex.E), true
		}
	}
	var z fr.Element
	return z, false
}
