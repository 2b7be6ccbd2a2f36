package transfer

import "fmt"

// Config fixes the circuit geometry. All capacities are compile-time
// constants of the constraint system; witnesses with fewer real slots are
// zero-padded, never shorter.
type Config struct {
	// MaxInputs and MaxOutputs bound the UTXO slot arrays.
	MaxInputs  int
	MaxOutputs int
	// ScriptLen is the number of field elements per locking script.
	ScriptLen int
	// SlotBits is the comparison window for slot counts; 2^SlotBits must
	// exceed MaxOutputs so LessThan operands stay in range.
	SlotBits int
	// CommitGroupSize is the number of flattened output fields hashed per
	// group in the commitment tree.
	CommitGroupSize int
}

func DefaultConfig() Config {
	return Config{
		MaxInputs:       4,
		MaxOutputs:      4,
		ScriptLen:       4,
		SlotBits:        4,
		CommitGroupSize: 8,
	}
}

func (c Config) validate() error {
	if c.MaxInputs <= 0 || c.MaxOutputs <= 0 {
		return fmt.Errorf("transfer: slot capacities must be positive, got %d/%d", c.MaxInputs, c.MaxOutputs)
	}
	if c.ScriptLen <= 0 {
		return fmt.Errorf("transfer: script length must be positive, got %d", c.ScriptLen)
	}
	if c.CommitGroupSize <= 0 {
		return fmt.Errorf("transfer: commit group size must be positive, got %d", c.CommitGroupSize)
	}
	if c.SlotBits <= 0 || 1<<uint(c.SlotBits) <= c.MaxOutputs {
		return fmt.Errorf("transfer: slot bits %d cannot represent %d outputs", c.SlotBits, c.MaxOutputs)
	}
	return nil
}
