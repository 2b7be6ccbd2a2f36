package backend

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"

	"github.com/covenantzk/transfercircuit/field"
)

// Bundle is the portable result of one proving run: the proof, the public
// vector it verifies against, and the owner's signature over the exported
// message.
type Bundle struct {
	Proof     groth16.Proof
	Public    []fr.Element
	Signature []byte
}

type bundleJSON struct {
	Proof     string   `json:"proof"`
	Public    []string `json:"public"`
	Signature string   `json:"signature,omitempty"`
}

func (b *Bundle) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := b.Proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("backend: encode proof: %w", err)
	}
	raw := bundleJSON{
		Proof:     hex.EncodeToString(buf.Bytes()),
		Public:    make([]string, len(b.Public)),
		Signature: hex.EncodeToString(b.Signature),
	}
	for i, v := range b.Public {
		raw.Public[i] = field.FormatDecimal(v)
	}
	return json.Marshal(raw)
}

func (b *Bundle) UnmarshalJSON(data []byte) error {
	var raw bundleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("backend: decode bundle: %w", err)
	}
	proofBytes, err := hex.DecodeString(raw.Proof)
	if err != nil {
		return fmt.Errorf("backend: decode proof: %w", err)
	}
	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return fmt.Errorf("backend: decode proof: %w", err)
	}
	public := make([]fr.Element, len(raw.Public))
	for i, s := range raw.Public {
		if public[i], err = field.ParseDecimal(s); err != nil {
			return fmt.Errorf("backend: public[%d]: %w", i, err)
		}
	}
	var sig []byte
	if raw.Signature != "" {
		if sig, err = hex.DecodeString(raw.Signature); err != nil {
			return fmt.Errorf("backend: decode signature: %w", err)
		}
	}
	b.Proof, b.Public, b.Signature = proof, public, sig
	return nil
}
