// Package builder constructs constraint systems. It follows the shape of the
// gnark frontend builder: signals are integer ids allocated in construction
// order, variables are linear combinations over those ids, and products and
// assertions are recorded as instructions and R1CS-style constraints.
//
// The builder phase must fully complete before any witness is evaluated:
// Finalize freezes the system into an ir.Circuit and every later call on the
// builder panics. Misuse of the API (wrong shapes, assertions that can never
// hold on constants) panics; data problems surface later as typed errors from
// the evaluator.
package builder

import (
	"fmt"

	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/covenantzk/transfercircuit/expr"
	"github.com/covenantzk/transfercircuit/field"
	"github.com/covenantzk/transfercircuit/ir"
	"github.com/covenantzk/transfercircuit/utils"
)

// Variable is a linear combination of signals. The zero value is not a valid
// variable; obtain variables from the builder.
type Variable = expr.Expression

type constraintStatus int

const (
	_ constraintStatus = iota
	// marked: known to hold through an existing constraint; no new one needed.
	marked
	// asserted: an explicit constraint was recorded.
	asserted
)

type Builder struct {
	nbSignals int // includes the constant wire 0

	public []ir.Input
	secret []ir.Input

	instructions []ir.Instruction
	constraints  []ir.Constraint
	exports      []ir.Export

	// deduplication maps, keyed by expression
	booleans utils.Map
	zeroes   utils.Map
	products utils.Map

	label     string
	finalized bool

	tOne        fr.Element
	eZero, eOne Variable
}

func New() *Builder {
	b := &Builder{
		nbSignals: 1, // signal 0 is the constant 1
		booleans:  make(utils.Map),
		zeroes:    make(utils.Map),
		products:  make(utils.Map),
	}
	b.tOne = field.One()
	b.eZero = expr.NewConstant(field.Zero())
	b.eOne = expr.NewConstant(b.tOne)
	return b
}

func (b *Builder) mustBuild() {
	if b.finalized {
		panic("builder is frozen; construction must complete before finalize")
	}
}

func (b *Builder) newSignal() int {
	id := b.nbSignals
	b.nbSignals++
	return id
}

// PublicInput allocates a named public input signal. Allocation order defines
// the head of the public vector.
func (b *Builder) PublicInput(name string) Variable {
	b.mustBuild()
	id := b.newSignal()
	b.public = append(b.public, ir.Input{ID: id, Name: name})
	return expr.NewLinear(id, b.tOne)
}

// SecretInput allocates a named private input signal.
func (b *Builder) SecretInput(name string) Variable {
	b.mustBuild()
	id := b.newSignal()
	b.secret = append(b.secret, ir.Input{ID: id, Name: name})
	return expr.NewLinear(id, b.tOne)
}

// MakePublic exports an internal value to the tail of the public vector.
// Export order is declaration order.
func (b *Builder) MakePublic(v Variable, name string) {
	b.mustBuild()
	b.exports = append(b.exports, ir.Export{Name: name, E: v.Clone()})
}

// Label tags subsequently recorded constraints for evaluator diagnostics.
// Labels never change the compiled shape.
func (b *Builder) Label(l string) {
	b.label = l
}

// Constant converts a host value to a circuit constant. Accepted kinds match
// what witness code hands around: field elements, Go integers, and canonical
// decimal strings.
func (b *Builder) Constant(v interface{}) Variable {
	switch t := v.(type) {
	case Variable:
		return t
	case fr.Element:
		return expr.NewConstant(t)
	case int:
		if t < 0 {
			var e fr.Element
			e.SetUint64(uint64(-t))
			e.Neg(&e)
			return expr.NewConstant(e)
		}
		return expr.NewConstant(field.FromUint64(uint64(t)))
	case uint64:
		return expr.NewConstant(field.FromUint64(t))
	case string:
		e, err := field.ParseDecimal(t)
		if err != nil {
			panic(err)
		}
		return expr.NewConstant(e)
	default:
		panic(fmt.Sprintf("cannot convert %T to a circuit constant", v))
	}
}

// One returns the constant 1.
func (b *Builder) One() Variable { return b.eOne }

// Zero returns the constant 0.
func (b *Builder) Zero() Variable { return b.eZero }

// constantValue returns the constant a variable evaluates to, if it
// references no signal.
func (b *Builder) constantValue(v Variable) (fr.Element, bool) {
	return v.ConstantValue()
}

// Finalize freezes the builder and returns the compiled circuit. The builder
// must not be used afterwards.
func (b *Builder) Finalize() *ir.Circuit {
	b.mustBuild()
	b.finalized = true
	return &ir.Circuit{
		NbSignals:    b.nbSignals,
		Public:       b.public,
		Secret:       b.secret,
		Instructions: b.instructions,
		Constraints:  b.constraints,
		Exports:      b.exports,
	}
}

// addConstraint records A*B = C with the current label.
func (b *Builder) addConstraint(a, bb, c Variable) {
	b.constraints = append(b.constraints, ir.Constraint{
		A: a, B: bb, C: c, Label: b.label,
	})
}
