// Package transfercircuit ties the pieces together: compile the covenant
// transfer circuit, lower it to the proof backend, and run the full
// solve / prove / sign / verify round trip.
package transfercircuit

import (
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/rs/zerolog"

	"github.com/covenantzk/transfercircuit/backend"
	"github.com/covenantzk/transfercircuit/transfer"
)

// Prover owns a compiled circuit and its lowered proof system.
type Prover struct {
	Circuit *transfer.Circuit
	System  *backend.System
	log     zerolog.Logger
}

// NewProver compiles the circuit for cfg and lowers it to an R1CS.
func NewProver(cfg transfer.Config, log zerolog.Logger) (*Prover, error) {
	circuit, err := transfer.Compile(cfg)
	if err != nil {
		return nil, err
	}
	system, err := backend.NewSystem(circuit.CS, log)
	if err != nil {
		return nil, err
	}
	return &Prover{Circuit: circuit, System: system, log: log}, nil
}

// Stats summarizes the compiled circuit.
type Stats struct {
	Constraints   int
	R1CSSize      int
	PublicSignals int
	SecretInputs  int
}

func (p *Prover) Stats() Stats {
	return Stats{
		Constraints:   p.Circuit.CS.NbConstraints(),
		R1CSSize:      p.System.NbConstraints(),
		PublicSignals: p.Circuit.CS.PublicLen(),
		SecretInputs:  len(p.Circuit.CS.Secret),
	}
}

// Prove solves the witness, generates a proof, and signs the exported
// message with the owner key.
func (p *Prover) Prove(keys *backend.Keys, w *transfer.Witness, ownerKey *eddsa.PrivateKey) (*backend.Bundle, error) {
	asn, err := p.Circuit.Solve(w)
	if err != nil {
		return nil, err
	}
	proof, err := p.System.Prove(keys, asn)
	if err != nil {
		return nil, err
	}
	bundle := &backend.Bundle{Proof: proof, Public: asn.PublicVector()}
	if ownerKey != nil {
		msg, _ := asn.Export(transfer.ExportSigMessage)
		if bundle.Signature, err = backend.SignMessage(ownerKey, msg); err != nil {
			return nil, err
		}
	}
	return bundle, nil
}

// Verify checks the proof and, when a signature is present, the owner's
// EdDSA signature over the exported message.
func (p *Prover) Verify(vk groth16.VerifyingKey, bundle *backend.Bundle) error {
	if err := p.System.Verify(vk, bundle.Proof, bundle.Public); err != nil {
		return err
	}
	if len(bundle.Signature) == 0 {
		return nil
	}
	exports := p.exportValues(bundle.Public)
	return backend.VerifySignature(
		exports[transfer.ExportOwnerKeyX],
		exports[transfer.ExportOwnerKeyY],
		exports[transfer.ExportSigMessage],
		bundle.Signature,
	)
}

// exportValues maps export names to their slots in the public vector.
func (p *Prover) exportValues(public []fr.Element) map[string]fr.Element {
	cs := p.Circuit.CS
	out := make(map[string]fr.Element, len(cs.Exports))
	base := len(cs.Public)
	for i, ex := range cs.Exports {
		out[ex.Name] = public[base+i]
	}
	return out
}

// GenerateOwnerKey draws a fresh owner key pair.
func GenerateOwnerKey(rand io.Reader) (*eddsa.PrivateKey, error) {
	return backend.GenerateKey(rand)
}
