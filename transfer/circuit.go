// Package transfer builds the confidential asset transfer circuit: a
// fixed-geometry constraint system over UTXO slots enforcing value balance,
// covenant script preservation, hook companion matching, and a commitment
// plus signature-message binding over the outputs.
package transfer

import (
	"fmt"

	"github.com/covenantzk/transfercircuit/builder"
	"github.com/covenantzk/transfercircuit/ir"
	"github.com/covenantzk/transfercircuit/mimchash"
	"github.com/covenantzk/transfercircuit/std"
)

// Export names of the circuit's derived public outputs, in public vector
// order after the spendMode input.
const (
	ExportCommitment = "outputCommitment"
	ExportSigMessage = "sigMessage"
	ExportOwnerKeyX  = "ownerKeyX"
	ExportOwnerKeyY  = "ownerKeyY"
)

// Circuit pairs a geometry with its compiled constraint system.
type Circuit struct {
	Cfg Config
	CS  *ir.Circuit
}

type slotVars struct {
	amount builder.Variable
	script []builder.Variable
	ownerX builder.Variable
	ownerY builder.Variable
}

// Compile builds the transfer circuit for the given geometry. The constraint
// count depends only on cfg, never on witness data.
func Compile(cfg Config) (*Circuit, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	b := builder.New()

	spendMode := b.PublicInput("spendMode")
	b.AssertIsBoolean(spendMode)

	inputs := allocSlots(b, cfg, "in", cfg.MaxInputs)
	outputs := allocSlots(b, cfg, "out", cfg.MaxOutputs)
	selectedInput := b.SecretInput("selectedInput")
	activeOutputs := b.SecretInput("activeOutputs")
	companion := make([]builder.Variable, cfg.ScriptLen)
	for j := range companion {
		companion[j] = b.SecretInput(fmt.Sprintf("companion%d", j))
	}

	inAmounts := make([]builder.Variable, cfg.MaxInputs)
	inScripts := make([][]builder.Variable, cfg.MaxInputs)
	inOwnerX := make([]builder.Variable, cfg.MaxInputs)
	inOwnerY := make([]builder.Variable, cfg.MaxInputs)
	for i, s := range inputs {
		inAmounts[i], inScripts[i], inOwnerX[i], inOwnerY[i] = s.amount, s.script, s.ownerX, s.ownerY
	}
	outAmounts := make([]builder.Variable, cfg.MaxOutputs)
	for i, s := range outputs {
		outAmounts[i] = s.amount
	}

	// Balance: padding slots carry zero amounts, so summing the full
	// arrays is exact.
	b.Label("balance")
	b.AssertIsEqual(std.Sum(b, inAmounts), std.Sum(b, outAmounts))

	// Covenant: every active output must carry the selected input's
	// script, field for field.
	b.Label("covenant")
	sel := std.Selector(b, cfg.MaxInputs, selectedInput)
	b.AssertIsEqual(std.Sum(b, sel), b.One())
	covenant := make([]builder.Variable, cfg.ScriptLen)
	for j := range covenant {
		col := make([]builder.Variable, cfg.MaxInputs)
		for i := range col {
			col[i] = inScripts[i][j]
		}
		covenant[j] = std.Dot(b, sel, col)
	}
	selAmount := std.Dot(b, sel, inAmounts)
	selOwnerX := std.Dot(b, sel, inOwnerX)
	selOwnerY := std.Dot(b, sel, inOwnerY)

	// Range-constrain the count once; slot indices are constants.
	b.ToBinary(activeOutputs, cfg.SlotBits)
	for i, s := range outputs {
		active := std.LessThan(b, cfg.SlotBits, b.Constant(i), activeOutputs)
		mismatch := b.Sub(b.One(), std.ArrayEqual(b, s.script, covenant))
		b.AssertIsEqual(b.Mul(active, mismatch), b.Zero())
	}

	// Hook: in spend mode at least one input slot must carry the
	// companion script of the token being spent.
	b.Label("hook")
	hits := make([]builder.Variable, cfg.MaxInputs)
	for i, s := range inputs {
		hits[i] = std.ArrayEqual(b, s.script, companion)
	}
	hit := std.AnyOf(b, hits)
	b.AssertIsEqual(b.Mul(spendMode, b.Sub(b.One(), hit)), b.Zero())

	// Binding: hash the flattened outputs in fixed groups, then the group
	// digests, then fold the spend context into the signature message.
	b.Label("binding")
	h := mimchash.New(b)
	flat := flattenOutputVars(cfg, outputs)
	var groupHashes []builder.Variable
	for lo := 0; lo < len(flat); lo += cfg.CommitGroupSize {
		hi := lo + cfg.CommitGroupSize
		if hi > len(flat) {
			hi = len(flat)
		}
		h.Reset()
		h.Write(flat[lo:hi]...)
		groupHashes = append(groupHashes, h.Sum())
	}
	h.Reset()
	h.Write(groupHashes...)
	commitment := h.Sum()

	h.Reset()
	h.Write(selAmount)
	h.Write(covenant...)
	h.Write(commitment)
	message := h.Sum()

	b.MakePublic(commitment, ExportCommitment)
	b.MakePublic(message, ExportSigMessage)
	b.MakePublic(selOwnerX, ExportOwnerKeyX)
	b.MakePublic(selOwnerY, ExportOwnerKeyY)

	return &Circuit{Cfg: cfg, CS: b.Finalize()}, nil
}

// allocSlots allocates the secret inputs of one slot array. The order here
// is the wire format of the secret witness vector; Witness.Assign mirrors it.
func allocSlots(b *builder.Builder, cfg Config, prefix string, n int) []slotVars {
	slots := make([]slotVars, n)
	for i := range slots {
		slots[i].amount = b.SecretInput(fmt.Sprintf("%s%d.amount", prefix, i))
		slots[i].script = make([]builder.Variable, cfg.ScriptLen)
		for j := range slots[i].script {
			slots[i].script[j] = b.SecretInput(fmt.Sprintf("%s%d.script%d", prefix, i, j))
		}
		slots[i].ownerX = b.SecretInput(fmt.Sprintf("%s%d.ownerX", prefix, i))
		slots[i].ownerY = b.SecretInput(fmt.Sprintf("%s%d.ownerY", prefix, i))
	}
	return slots
}

// flattenOutputVars lists every output field in slot allocation order, the
// preimage layout of the output commitment.
func flattenOutputVars(cfg Config, outputs []slotVars) []builder.Variable {
	flat := make([]builder.Variable, 0, cfg.MaxOutputs*(cfg.ScriptLen+3))
	for _, s := range outputs {
		flat = append(flat, s.amount)
		flat = append(flat, s.script...)
		flat = append(flat, s.ownerX, s.ownerY)
	}
	return flat
}
