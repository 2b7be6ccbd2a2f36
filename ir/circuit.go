// Package ir holds the compiled form of a circuit: the ordered instruction
// list that computes internal signals, the constraints every assignment must
// satisfy, and the public-signal order that forms the protocol contract with
// the proof backend.
package ir

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/covenantzk/transfercircuit/expr"
	"github.com/covenantzk/transfercircuit/field"
)

// Hint computes witness-only values at solving time. It matches the gnark
// solver hint signature so the same function can back both evaluators.
type Hint func(mod *big.Int, inputs []*big.Int, outputs []*big.Int) error

// InstructionType enumerates the ways an internal signal is computed.
type InstructionType int

const (
	_ InstructionType = iota
	// IProduct defines Out = A * B. The matching product constraint is
	// recorded separately in Constraints.
	IProduct
	// IHint fills OutputIDs from HintFunc; no constraint is implied, the
	// builder must pin hint outputs down with explicit assertions.
	IHint
)

// Instruction computes one or more internal signals from earlier signals.
// Construction order is topological order: every expression an instruction
// reads refers only to signals defined before it.
type Instruction struct {
	Type      InstructionType
	A, B      expr.Expression
	HintFunc  Hint
	Inputs    []expr.Expression
	OutputIDs []int
}

func NewProductInstruction(a, b expr.Expression, out int) Instruction {
	return Instruction{Type: IProduct, A: a, B: b, OutputIDs: []int{out}}
}

func NewHintInstruction(f Hint, inputs []expr.Expression, outputIDs []int) Instruction {
	return Instruction{Type: IHint, HintFunc: f, Inputs: inputs, OutputIDs: outputIDs}
}

// Constraint is the equation A * B = C over linear combinations of signals.
// Label is a diagnostic tag only; it never affects satisfiability or the
// compiled shape.
type Constraint struct {
	A, B, C expr.Expression
	Label   string
}

// Input is a named input signal. Name is the key used by flat witness
// serializations.
type Input struct {
	ID   int
	Name string
}

// Export is an internal value promoted to the public vector.
type Export struct {
	Name string
	E    expr.Expression
}

// Circuit is a frozen constraint system. It is immutable after the builder
// finalizes it; concurrent reads are safe.
type Circuit struct {
	// NbSignals counts every signal including the constant wire 0.
	NbSignals    int
	Public       []Input
	Secret       []Input
	Instructions []Instruction
	Constraints  []Constraint
	Exports      []Export
}

// NbConstraints returns the number of equations, which is independent of any
// witness by construction.
func (c *Circuit) NbConstraints() int {
	return len(c.Constraints)
}

// PublicLen returns the length of the public vector: declared public inputs
// followed by exports.
func (c *Circuit) PublicLen() int {
	return len(c.Public) + len(c.Exports)
}

// PublicNames returns the public-vector names in protocol order.
func (c *Circuit) PublicNames() []string {
	names := make([]string, 0, c.PublicLen())
	for _, in := range c.Public {
		names = append(names, in.Name)
	}
	for _, ex := range c.Exports {
		names = append(names, ex.Name)
	}
	return names
}

// String renders a short summary, for logs.
func (c *Circuit) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "circuit signals=%d constraints=%d public=[%s]",
		c.NbSignals, len(c.Constraints), strings.Join(c.PublicNames(), ","))
	return sb.String()
}

// exprString renders an expression for diagnostics.
func exprString(e expr.Expression) string {
	s := make([]string, len(e))
	for i, t := range e {
		if t.SID == 0 {
			s[i] = field.FormatDecimal(t.Coeff)
		} else {
			s[i] = fmt.Sprintf("s%d*%s", t.SID, field.FormatDecimal(t.Coeff))
		}
	}
	return strings.Join(s, "+")
}
