package backend

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/frontend"

	"github.com/covenantzk/transfercircuit/expr"
	"github.com/covenantzk/transfercircuit/field"
	"github.com/covenantzk/transfercircuit/ir"
)

// adapterCircuit replays a compiled circuit inside gnark. Every signal is a
// witness variable; the full assignment comes from the native solver, so
// hints never run inside the frontend. Public carries the circuit's public
// inputs followed by its exports, Secret every remaining signal in ID order.
type adapterCircuit struct {
	Public []frontend.Variable `gnark:",public"`
	Secret []frontend.Variable

	cs *ir.Circuit `gnark:"-"`
}

func newAdapter(cs *ir.Circuit) *adapterCircuit {
	return &adapterCircuit{
		Public: make([]frontend.Variable, cs.PublicLen()),
		Secret: make([]frontend.Variable, secretLen(cs)),
		cs:     cs,
	}
}

// secretLen counts the signals not bound to a public input slot. Signal 0
// is the constant wire and has no witness entry.
func secretLen(cs *ir.Circuit) int {
	return cs.NbSignals - 1 - len(cs.Public)
}

func (c *adapterCircuit) Define(api frontend.API) error {
	vals := make([]frontend.Variable, c.cs.NbSignals)
	vals[0] = 1

	isPublic := make(map[int]bool, len(c.cs.Public))
	for i, in := range c.cs.Public {
		vals[in.ID] = c.Public[i]
		isPublic[in.ID] = true
	}
	si := 0
	for id := 1; id < c.cs.NbSignals; id++ {
		if isPublic[id] {
			continue
		}
		vals[id] = c.Secret[si]
		si++
	}

	lc := func(e expr.Expression) frontend.Variable {
		var acc frontend.Variable = 0
		for _, t := range e {
			acc = api.Add(acc, api.Mul(field.ToBig(t.Coeff), vals[t.SID]))
		}
		return acc
	}

	for _, con := range c.cs.Constraints {
		api.AssertIsEqual(api.Mul(lc(con.A), lc(con.B)), lc(con.C))
	}
	// Exports are bound to the tail of the public vector.
	for k, ex := range c.cs.Exports {
		api.AssertIsEqual(lc(ex.E), c.Public[len(c.cs.Public)+k])
	}
	return nil
}

// adapterAssignment packs a solved circuit into the adapter's witness shape.
func adapterAssignment(cs *ir.Circuit, asn *ir.Assignment) *adapterCircuit {
	a := newAdapter(cs)
	for i, v := range asn.PublicVector() {
		a.Public[i] = v
	}
	isPublic := make(map[int]bool, len(cs.Public))
	for _, in := range cs.Public {
		isPublic[in.ID] = true
	}
	si := 0
	for id := 1; id < cs.NbSignals; id++ {
		if isPublic[id] {
			continue
		}
		a.Secret[si] = asn.Values[id]
		si++
	}
	return a
}

// publicAssignment packs just the public vector, for verification.
func publicAssignment(cs *ir.Circuit, public []fr.Element) *adapterCircuit {
	a := newAdapter(cs)
	for i, v := range public {
		a.Public[i] = v
	}
	return a
}
