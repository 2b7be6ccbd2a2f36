// Package mimchash implements the MiMC hash over the BN254 scalar field,
// both as a circuit gadget and as a native mirror for witness-side
// computation. Round constants come from gnark-crypto, so the permutation
// matches the curve's standard parameters; the chaining is Miyaguchi-Preneel
// (h' = E_h(m) + h + m) with the x^5 round function, as in gnark's in-circuit
// hasher.
package mimchash

import (
	"sync"

	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	frmimc "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"

	"github.com/covenantzk/transfercircuit/builder"
)

var (
	once      sync.Once
	constants []fr.Element
)

func roundConstants() []fr.Element {
	once.Do(func() {
		raw := frmimc.GetConstants()
		constants = make([]fr.Element, len(raw))
		for i := range raw {
			constants[i].SetBigInt(&raw[i])
		}
	})
	return constants
}

// Hasher is the in-circuit MiMC sponge. Write buffers field elements; Sum
// absorbs them into the running state and returns it. The constraint count
// is fixed per absorbed element.
type Hasher struct {
	b    *builder.Builder
	h    builder.Variable
	data []builder.Variable
}

func New(b *builder.Builder) *Hasher {
	return &Hasher{b: b, h: b.Zero()}
}

func (h *Hasher) Write(vs ...builder.Variable) {
	h.data = append(h.data, vs...)
}

// Reset restores the initial state and drops buffered data.
func (h *Hasher) Reset() {
	h.h = h.b.Zero()
	h.data = nil
}

// Sum absorbs the buffered elements and returns the state.
func (h *Hasher) Sum() builder.Variable {
	for _, m := range h.data {
		r := h.encrypt(m)
		h.h = h.b.Add(r, h.h, m)
	}
	h.data = nil
	return h.h
}

func (h *Hasher) encrypt(m builder.Variable) builder.Variable {
	x := m
	for _, c := range roundConstants() {
		t := h.b.Add(x, h.h, h.b.Constant(c))
		x = pow5(h.b, t)
	}
	return h.b.Add(x, h.h)
}

func pow5(b *builder.Builder, x builder.Variable) builder.Variable {
	x2 := b.Mul(x, x)
	x4 := b.Mul(x2, x2)
	return b.Mul(x4, x)
}

// NativeSum computes the same hash outside the circuit. The gadget and this
// function stay in lockstep by sharing the round constants and chaining.
func NativeSum(vs ...fr.Element) fr.Element {
	var h fr.Element
	for _, m := range vs {
		r := nativeEncrypt(h, m)
		h.Add(&h, &r)
		h.Add(&h, &m)
	}
	return h
}

func nativeEncrypt(h, m fr.Element) fr.Element {
	x := m
	var t, t2, t4 fr.Element
	for _, c := range roundConstants() {
		t.Add(&x, &h)
		t.Add(&t, &c)
		t2.Square(&t)
		t4.Square(&t2)
		x.Mul(&t4, &t)
	}
	x.Add(&x, &h)
	return x
}
