package transfer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/covenantzk/transfercircuit/field"
	"github.com/covenantzk/transfercircuit/ir"
)

const witnessDoc = `{
	"inputs": [
		{"amount": "100", "script": ["11", "22", "33", "44"], "ownerKeyX": "1001", "ownerKeyY": "1002"},
		{"amount": "50", "script": ["11", "22", "33", "44"], "ownerKeyX": "2001", "ownerKeyY": "2002"}
	],
	"outputs": [
		{"amount": "80", "script": ["11", "22", "33", "44"], "ownerKeyX": "3001", "ownerKeyY": "3002"},
		{"amount": "70", "script": ["11", "22", "33", "44"], "ownerKeyX": "4001", "ownerKeyY": "4002"}
	],
	"selectedInput": 0,
	"activeOutputs": 2,
	"spendMode": false
}`

func TestParseWitnessJSON(t *testing.T) {
	cfg := DefaultConfig()
	w, err := ParseWitnessJSON(cfg, []byte(witnessDoc))
	assert.NoError(t, err)

	// short arrays are padded to capacity
	assert.Len(t, w.Inputs, cfg.MaxInputs)
	assert.Len(t, w.Outputs, cfg.MaxOutputs)
	assert.Equal(t, field.FromUint64(100), w.Inputs[0].Amount)
	assert.Equal(t, field.Zero(), w.Inputs[2].Amount)
	assert.Equal(t, 2, w.ActiveOutputs)
	assert.False(t, w.SpendMode)

	// and the parsed witness solves
	c, err := Compile(cfg)
	assert.NoError(t, err)
	_, err = c.Solve(w)
	assert.NoError(t, err)
}

func TestParseWitnessJSONErrors(t *testing.T) {
	cfg := DefaultConfig()

	_, err := ParseWitnessJSON(cfg, []byte(`not json`))
	assert.Error(t, err)

	_, err = ParseWitnessJSON(cfg, []byte(`{"inputs": [{"amount": "0x64", "script": ["1","2","3","4"], "ownerKeyX": "0", "ownerKeyY": "0"}]}`))
	assert.True(t, errors.Is(err, field.ErrMalformedFieldValue))

	_, err = ParseWitnessJSON(cfg, []byte(`{"inputs": [{"amount": "1", "script": ["1","2"], "ownerKeyX": "0", "ownerKeyY": "0"}]}`))
	assert.True(t, errors.Is(err, ir.ErrShapeMismatch))

	_, err = ParseWitnessJSON(cfg, []byte(`{"companionScript": ["1","2"]}`))
	assert.True(t, errors.Is(err, ir.ErrShapeMismatch))
}

func TestParseWitnessJSONTooManySlots(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxInputs = 1
	_, err := ParseWitnessJSON(cfg, []byte(witnessDoc))
	assert.True(t, errors.Is(err, ir.ErrShapeMismatch))
}

func TestAssignOrderMatchesCircuit(t *testing.T) {
	cfg := DefaultConfig()
	w := balancedWitness(cfg)
	public, secret, err := w.Assign(cfg)
	assert.NoError(t, err)
	assert.Len(t, public, 1)

	c, err := Compile(cfg)
	assert.NoError(t, err)
	assert.Len(t, secret, len(c.CS.Secret))

	// spot-check the head of the secret vector against the declared names
	assert.Equal(t, "in0.amount", c.CS.Secret[0].Name)
	assert.Equal(t, w.Inputs[0].Amount, secret[0])
	assert.Equal(t, "in0.script0", c.CS.Secret[1].Name)
	assert.Equal(t, w.Inputs[0].Script[0], secret[1])
}
