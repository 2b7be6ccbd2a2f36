package backend

import "errors"

var (
	// ErrKeyLoad is returned when a proving or verifying key cannot be
	// read back from its serialized form.
	ErrKeyLoad = errors.New("key load failed")
	// ErrProofGeneration is returned when the prover rejects a witness.
	ErrProofGeneration = errors.New("proof generation failed")
	// ErrProofVerification is returned when a proof does not check out
	// against the public vector.
	ErrProofVerification = errors.New("proof verification failed")
	// ErrSignature is returned on signing or signature check failures.
	ErrSignature = errors.New("signature check failed")
)
