// Package backend is the proof-system boundary: it lowers a compiled
// circuit into a gnark R1CS, runs Groth16 setup, proving and verification
// over BN254, and handles key serialization and the native EdDSA signature
// over the circuit's exported message.
package backend

import (
	"fmt"
	"io"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	gnarklogger "github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"

	"github.com/covenantzk/transfercircuit/ir"
)

// System is a circuit lowered to a gnark constraint system, ready for
// setup and proving.
type System struct {
	cs  *ir.Circuit
	ccs constraint.ConstraintSystem
	log zerolog.Logger
}

// NewSystem compiles the circuit into a BN254 R1CS. gnark's own logger is
// routed through the given one for the duration of the compile.
func NewSystem(cs *ir.Circuit, log zerolog.Logger) (*System, error) {
	restore := routeGnarkLogger(log)
	defer restore()

	start := time.Now()
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, newAdapter(cs))
	if err != nil {
		return nil, fmt.Errorf("backend: compile: %w", err)
	}
	log.Debug().
		Int("constraints", ccs.GetNbConstraints()).
		Dur("took", time.Since(start)).
		Msg("lowered circuit to r1cs")
	return &System{cs: cs, ccs: ccs, log: log}, nil
}

// NbConstraints reports the size of the lowered system.
func (s *System) NbConstraints() int { return s.ccs.GetNbConstraints() }

// Keys holds a Groth16 key pair.
type Keys struct {
	PK groth16.ProvingKey
	VK groth16.VerifyingKey
}

// Setup runs the Groth16 trusted setup for this system.
func (s *System) Setup() (*Keys, error) {
	restore := routeGnarkLogger(s.log)
	defer restore()

	pk, vk, err := groth16.Setup(s.ccs)
	if err != nil {
		return nil, fmt.Errorf("backend: setup: %w", err)
	}
	return &Keys{PK: pk, VK: vk}, nil
}

// Prove generates a proof for a solved assignment. The assignment must come
// from the same circuit the system was built from.
func (s *System) Prove(keys *Keys, asn *ir.Assignment) (groth16.Proof, error) {
	restore := routeGnarkLogger(s.log)
	defer restore()

	w, err := frontend.NewWitness(adapterAssignment(s.cs, asn), ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("%w: witness: %v", ErrProofGeneration, err)
	}
	start := time.Now()
	proof, err := groth16.Prove(s.ccs, keys.PK, w)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProofGeneration, err)
	}
	s.log.Debug().Dur("took", time.Since(start)).Msg("proof generated")
	return proof, nil
}

// Verify checks a proof against the public vector (public inputs followed by
// exports, in circuit order).
func (s *System) Verify(vk groth16.VerifyingKey, proof groth16.Proof, public []fr.Element) error {
	restore := routeGnarkLogger(s.log)
	defer restore()

	if len(public) != s.cs.PublicLen() {
		return fmt.Errorf("%w: %d public values, circuit expects %d",
			ir.ErrShapeMismatch, len(public), s.cs.PublicLen())
	}
	w, err := frontend.NewWitness(publicAssignment(s.cs, public), ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("%w: witness: %v", ErrProofVerification, err)
	}
	if err := groth16.Verify(proof, vk, w); err != nil {
		return fmt.Errorf("%w: %v", ErrProofVerification, err)
	}
	return nil
}

// WriteKeys serializes the key pair.
func (k *Keys) WriteKeys(pkw, vkw io.Writer) error {
	if _, err := k.PK.WriteTo(pkw); err != nil {
		return fmt.Errorf("backend: write proving key: %w", err)
	}
	if _, err := k.VK.WriteTo(vkw); err != nil {
		return fmt.Errorf("backend: write verifying key: %w", err)
	}
	return nil
}

// ReadKeys deserializes a key pair written by WriteKeys.
func ReadKeys(pkr, vkr io.Reader) (*Keys, error) {
	pk := groth16.NewProvingKey(ecc.BN254)
	if _, err := pk.ReadFrom(pkr); err != nil {
		return nil, fmt.Errorf("%w: proving key: %v", ErrKeyLoad, err)
	}
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(vkr); err != nil {
		return nil, fmt.Errorf("%w: verifying key: %v", ErrKeyLoad, err)
	}
	return &Keys{PK: pk, VK: vk}, nil
}

// ReadVerifyingKey loads just the verifying half.
func ReadVerifyingKey(r io.Reader) (groth16.VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("%w: verifying key: %v", ErrKeyLoad, err)
	}
	return vk, nil
}

// routeGnarkLogger swaps gnark's global logger for ours and returns a
// restore func. gnark logs through zerolog, so the two compose directly.
func routeGnarkLogger(log zerolog.Logger) func() {
	old := gnarklogger.Logger()
	gnarklogger.Set(log)
	return func() { gnarklogger.Set(old) }
}
