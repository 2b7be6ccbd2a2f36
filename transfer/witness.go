package transfer

import (
	"encoding/json"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/covenantzk/transfercircuit/field"
	"github.com/covenantzk/transfercircuit/ir"
)

// UTXO is one slot of the input or output array. Padding slots carry zero
// in every field.
type UTXO struct {
	Amount    fr.Element
	Script    []fr.Element
	OwnerKeyX fr.Element
	OwnerKeyY fr.Element
}

// EmptyUTXO returns a zero padding slot for the given geometry.
func EmptyUTXO(cfg Config) UTXO {
	return UTXO{Script: make([]fr.Element, cfg.ScriptLen)}
}

// Witness holds one full assignment of the circuit's inputs.
type Witness struct {
	Inputs  []UTXO
	Outputs []UTXO
	// SelectedInput indexes the input slot whose script, amount and owner
	// key drive the covenant and binding checks.
	SelectedInput int
	// ActiveOutputs counts the leading output slots that are real; the
	// covenant check skips padding beyond it.
	ActiveOutputs int
	// SpendMode enables the hook check.
	SpendMode bool
	// CompanionScript is the hook target; ignored unless SpendMode.
	CompanionScript []fr.Element
}

// NewWitness returns a witness with every slot zero-padded to capacity.
func NewWitness(cfg Config) *Witness {
	w := &Witness{
		Inputs:          make([]UTXO, cfg.MaxInputs),
		Outputs:         make([]UTXO, cfg.MaxOutputs),
		CompanionScript: make([]fr.Element, cfg.ScriptLen),
	}
	for i := range w.Inputs {
		w.Inputs[i] = EmptyUTXO(cfg)
	}
	for i := range w.Outputs {
		w.Outputs[i] = EmptyUTXO(cfg)
	}
	return w
}

// Assign flattens the witness into the circuit's public and secret vectors,
// in the wire order fixed by Compile.
func (w *Witness) Assign(cfg Config) (public, secret []fr.Element, err error) {
	if len(w.Inputs) != cfg.MaxInputs {
		return nil, nil, fmt.Errorf("%w: %d input slots, want %d", ir.ErrShapeMismatch, len(w.Inputs), cfg.MaxInputs)
	}
	if len(w.Outputs) != cfg.MaxOutputs {
		return nil, nil, fmt.Errorf("%w: %d output slots, want %d", ir.ErrShapeMismatch, len(w.Outputs), cfg.MaxOutputs)
	}
	if len(w.CompanionScript) != cfg.ScriptLen {
		return nil, nil, fmt.Errorf("%w: companion script of %d fields, want %d", ir.ErrShapeMismatch, len(w.CompanionScript), cfg.ScriptLen)
	}

	public = make([]fr.Element, 1)
	if w.SpendMode {
		public[0] = field.One()
	}

	secret = make([]fr.Element, 0, (cfg.MaxInputs+cfg.MaxOutputs)*(cfg.ScriptLen+3)+2+cfg.ScriptLen)
	appendSlots := func(slots []UTXO, kind string) error {
		for i, s := range slots {
			if len(s.Script) != cfg.ScriptLen {
				return fmt.Errorf("%w: %s %d script of %d fields, want %d", ir.ErrShapeMismatch, kind, i, len(s.Script), cfg.ScriptLen)
			}
			secret = append(secret, s.Amount)
			secret = append(secret, s.Script...)
			secret = append(secret, s.OwnerKeyX, s.OwnerKeyY)
		}
		return nil
	}
	if err := appendSlots(w.Inputs, "input"); err != nil {
		return nil, nil, err
	}
	if err := appendSlots(w.Outputs, "output"); err != nil {
		return nil, nil, err
	}
	secret = append(secret, field.FromUint64(uint64(w.SelectedInput)), field.FromUint64(uint64(w.ActiveOutputs)))
	secret = append(secret, w.CompanionScript...)
	return public, secret, nil
}

// Solve assigns the witness and evaluates the circuit, checking every
// constraint.
func (c *Circuit) Solve(w *Witness) (*ir.Assignment, error) {
	public, secret, err := w.Assign(c.Cfg)
	if err != nil {
		return nil, err
	}
	return c.CS.Solve(public, secret)
}

type utxoJSON struct {
	Amount    string   `json:"amount"`
	Script    []string `json:"script"`
	OwnerKeyX string   `json:"ownerKeyX"`
	OwnerKeyY string   `json:"ownerKeyY"`
}

type witnessJSON struct {
	Inputs          []utxoJSON `json:"inputs"`
	Outputs         []utxoJSON `json:"outputs"`
	SelectedInput   int        `json:"selectedInput"`
	ActiveOutputs   int        `json:"activeOutputs"`
	SpendMode       bool       `json:"spendMode"`
	CompanionScript []string   `json:"companionScript,omitempty"`
}

// ParseWitnessJSON decodes the decimal-string witness serialization. Slot
// arrays shorter than capacity are zero-padded; longer ones are rejected.
func ParseWitnessJSON(cfg Config, data []byte) (*Witness, error) {
	var raw witnessJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("transfer: decode witness: %w", err)
	}
	if len(raw.Inputs) > cfg.MaxInputs {
		return nil, fmt.Errorf("%w: %d input slots, capacity %d", ir.ErrShapeMismatch, len(raw.Inputs), cfg.MaxInputs)
	}
	if len(raw.Outputs) > cfg.MaxOutputs {
		return nil, fmt.Errorf("%w: %d output slots, capacity %d", ir.ErrShapeMismatch, len(raw.Outputs), cfg.MaxOutputs)
	}

	w := NewWitness(cfg)
	w.SelectedInput = raw.SelectedInput
	w.ActiveOutputs = raw.ActiveOutputs
	w.SpendMode = raw.SpendMode

	parseSlot := func(u utxoJSON, kind string, i int) (UTXO, error) {
		s := EmptyUTXO(cfg)
		var err error
		if s.Amount, err = field.ParseDecimal(u.Amount); err != nil {
			return s, fmt.Errorf("%s %d amount: %w", kind, i, err)
		}
		if len(u.Script) != cfg.ScriptLen {
			return s, fmt.Errorf("%w: %s %d script of %d fields, want %d", ir.ErrShapeMismatch, kind, i, len(u.Script), cfg.ScriptLen)
		}
		for j, f := range u.Script {
			if s.Script[j], err = field.ParseDecimal(f); err != nil {
				return s, fmt.Errorf("%s %d script[%d]: %w", kind, i, j, err)
			}
		}
		if s.OwnerKeyX, err = field.ParseDecimal(u.OwnerKeyX); err != nil {
			return s, fmt.Errorf("%s %d ownerKeyX: %w", kind, i, err)
		}
		if s.OwnerKeyY, err = field.ParseDecimal(u.OwnerKeyY); err != nil {
			return s, fmt.Errorf("%s %d ownerKeyY: %w", kind, i, err)
		}
		return s, nil
	}
	for i, u := range raw.Inputs {
		s, err := parseSlot(u, "input", i)
		if err != nil {
			return nil, err
		}
		w.Inputs[i] = s
	}
	for i, u := range raw.Outputs {
		s, err := parseSlot(u, "output", i)
		if err != nil {
			return nil, err
		}
		w.Outputs[i] = s
	}
	if raw.CompanionScript != nil {
		if len(raw.CompanionScript) != cfg.ScriptLen {
			return nil, fmt.Errorf("%w: companion script of %d fields, want %d", ir.ErrShapeMismatch, len(raw.CompanionScript), cfg.ScriptLen)
		}
		for j, f := range raw.CompanionScript {
			var err error
			if w.CompanionScript[j], err = field.ParseDecimal(f); err != nil {
				return nil, fmt.Errorf("companion script[%d]: %w", j, err)
			}
		}
	}
	return w, nil
}
