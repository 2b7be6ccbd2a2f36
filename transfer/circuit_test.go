package transfer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/covenantzk/transfercircuit/field"
	"github.com/covenantzk/transfercircuit/ir"
	"github.com/covenantzk/transfercircuit/mimchash"
)

func frVec(vs ...uint64) []fr.Element {
	out := make([]fr.Element, len(vs))
	for i, v := range vs {
		out[i] = field.FromUint64(v)
	}
	return out
}

// covenantScript returns a fresh copy per slot so tests can mutate one
// slot's script without touching the others.
func covenantScript() []fr.Element {
	return frVec(11, 22, 33, 44)
}

// balancedWitness is a plain two-in two-out transfer under a shared
// covenant script, with distinct owner keys per slot.
func balancedWitness(cfg Config) *Witness {
	w := NewWitness(cfg)
	w.Inputs[0] = UTXO{Amount: field.FromUint64(100), Script: covenantScript(), OwnerKeyX: field.FromUint64(1001), OwnerKeyY: field.FromUint64(1002)}
	w.Inputs[1] = UTXO{Amount: field.FromUint64(50), Script: covenantScript(), OwnerKeyX: field.FromUint64(2001), OwnerKeyY: field.FromUint64(2002)}
	w.Outputs[0] = UTXO{Amount: field.FromUint64(80), Script: covenantScript(), OwnerKeyX: field.FromUint64(3001), OwnerKeyY: field.FromUint64(3002)}
	w.Outputs[1] = UTXO{Amount: field.FromUint64(70), Script: covenantScript(), OwnerKeyX: field.FromUint64(4001), OwnerKeyY: field.FromUint64(4002)}
	w.SelectedInput = 0
	w.ActiveOutputs = 2
	return w
}

func compileDefault(t *testing.T) *Circuit {
	c, err := Compile(DefaultConfig())
	assert.NoError(t, err)
	return c
}

func TestCompileRejectsBadConfig(t *testing.T) {
	_, err := Compile(Config{MaxInputs: 0, MaxOutputs: 4, ScriptLen: 4, SlotBits: 4, CommitGroupSize: 8})
	assert.Error(t, err)
	_, err = Compile(Config{MaxInputs: 4, MaxOutputs: 16, ScriptLen: 4, SlotBits: 4, CommitGroupSize: 8})
	assert.Error(t, err)
}

func TestBalancedTransfer(t *testing.T) {
	c := compileDefault(t)
	_, err := c.Solve(balancedWitness(c.Cfg))
	assert.NoError(t, err)
}

func TestBalanceViolation(t *testing.T) {
	c := compileDefault(t)
	w := balancedWitness(c.Cfg)
	// 150 in, 200 out
	w.Outputs[0].Amount = field.FromUint64(100)
	w.Outputs[1].Amount = field.FromUint64(100)
	_, err := c.Solve(w)
	assert.True(t, errors.Is(err, ir.ErrUnsatisfiedConstraint))
	assert.Contains(t, err.Error(), "balance")
}

func TestCovenantMutation(t *testing.T) {
	c := compileDefault(t)

	// mutating an active output's script must be rejected
	w := balancedWitness(c.Cfg)
	w.Outputs[1].Script[2] = field.FromUint64(999)
	_, err := c.Solve(w)
	assert.True(t, errors.Is(err, ir.ErrUnsatisfiedConstraint))
	assert.Contains(t, err.Error(), "covenant")

	// the same mutation on a padding slot is invisible to the check
	w = balancedWitness(c.Cfg)
	w.Outputs[3].Script[2] = field.FromUint64(999)
	_, err = c.Solve(w)
	assert.NoError(t, err)
}

func TestCovenantFollowsSelectedInput(t *testing.T) {
	c := compileDefault(t)
	w := balancedWitness(c.Cfg)
	// input 1 carries a different script; selecting it makes the outputs'
	// shared script wrong
	w.Inputs[1].Script = frVec(5, 6, 7, 8)
	w.SelectedInput = 1
	_, err := c.Solve(w)
	assert.True(t, errors.Is(err, ir.ErrUnsatisfiedConstraint))
	assert.Contains(t, err.Error(), "covenant")
}

func TestSelectedInputOutOfRange(t *testing.T) {
	c := compileDefault(t)
	w := balancedWitness(c.Cfg)
	w.SelectedInput = 7
	_, err := c.Solve(w)
	assert.True(t, errors.Is(err, ir.ErrUnsatisfiedConstraint))
	assert.Contains(t, err.Error(), "covenant")
}

func TestActiveOutputsOutOfRange(t *testing.T) {
	c := compileDefault(t)
	w := balancedWitness(c.Cfg)
	w.ActiveOutputs = 1 << c.Cfg.SlotBits
	_, err := c.Solve(w)
	assert.True(t, errors.Is(err, ir.ErrUnsatisfiedConstraint))
}

func TestHook(t *testing.T) {
	c := compileDefault(t)

	// spend mode with a companion script present among the inputs
	w := balancedWitness(c.Cfg)
	w.SpendMode = true
	copy(w.CompanionScript, w.Inputs[0].Script)
	_, err := c.Solve(w)
	assert.NoError(t, err)

	// spend mode without the companion anywhere
	w = balancedWitness(c.Cfg)
	w.SpendMode = true
	w.CompanionScript = frVec(9, 9, 9, 9)
	_, err = c.Solve(w)
	assert.True(t, errors.Is(err, ir.ErrUnsatisfiedConstraint))
	assert.Contains(t, err.Error(), "hook")

	// outside spend mode the companion is ignored
	w = balancedWitness(c.Cfg)
	w.CompanionScript = frVec(9, 9, 9, 9)
	_, err = c.Solve(w)
	assert.NoError(t, err)
}

func TestExports(t *testing.T) {
	c := compileDefault(t)
	w := balancedWitness(c.Cfg)
	asn, err := c.Solve(w)
	assert.NoError(t, err)

	// recompute the commitment tree natively from the witness
	var flat []fr.Element
	for _, o := range w.Outputs {
		flat = append(flat, o.Amount)
		flat = append(flat, o.Script...)
		flat = append(flat, o.OwnerKeyX, o.OwnerKeyY)
	}
	var groups []fr.Element
	for lo := 0; lo < len(flat); lo += c.Cfg.CommitGroupSize {
		hi := lo + c.Cfg.CommitGroupSize
		if hi > len(flat) {
			hi = len(flat)
		}
		groups = append(groups, mimchash.NativeSum(flat[lo:hi]...))
	}
	wantCommit := mimchash.NativeSum(groups...)

	commit, ok := asn.Export(ExportCommitment)
	assert.True(t, ok)
	assert.Equal(t, wantCommit, commit)

	sel := w.Inputs[w.SelectedInput]
	msgPre := append(append([]fr.Element{sel.Amount}, sel.Script...), wantCommit)
	wantMsg := mimchash.NativeSum(msgPre...)
	msg, ok := asn.Export(ExportSigMessage)
	assert.True(t, ok)
	assert.Equal(t, wantMsg, msg)

	x, _ := asn.Export(ExportOwnerKeyX)
	y, _ := asn.Export(ExportOwnerKeyY)
	assert.Equal(t, sel.OwnerKeyX, x)
	assert.Equal(t, sel.OwnerKeyY, y)
}

func TestPublicVectorOrder(t *testing.T) {
	c := compileDefault(t)
	assert.Equal(t, []string{"spendMode", ExportCommitment, ExportSigMessage, ExportOwnerKeyX, ExportOwnerKeyY},
		c.CS.PublicNames())

	asn, err := c.Solve(balancedWitness(c.Cfg))
	assert.NoError(t, err)
	pub := asn.PublicVector()
	assert.Len(t, pub, 5)
	assert.Equal(t, field.Zero(), pub[0]) // spendMode off
	commit, _ := asn.Export(ExportCommitment)
	assert.Equal(t, commit, pub[1])
}

func TestConstraintCountIsDataIndependent(t *testing.T) {
	a, err := Compile(DefaultConfig())
	assert.NoError(t, err)
	b, err := Compile(DefaultConfig())
	assert.NoError(t, err)
	assert.Equal(t, a.CS.NbConstraints(), b.CS.NbConstraints())
	assert.Equal(t, a.CS.NbSignals, b.CS.NbSignals)
}

func TestAssignShapeMismatch(t *testing.T) {
	c := compileDefault(t)

	w := balancedWitness(c.Cfg)
	w.Inputs = w.Inputs[:2]
	_, _, err := w.Assign(c.Cfg)
	assert.True(t, errors.Is(err, ir.ErrShapeMismatch))

	w = balancedWitness(c.Cfg)
	w.Outputs[0].Script = frVec(1, 2)
	_, _, err = w.Assign(c.Cfg)
	assert.True(t, errors.Is(err, ir.ErrShapeMismatch))

	w = balancedWitness(c.Cfg)
	w.CompanionScript = nil
	_, _, err = w.Assign(c.Cfg)
	assert.True(t, errors.Is(err, ir.ErrShapeMismatch))
}
