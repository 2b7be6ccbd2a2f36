package ir

import "errors"

var (
	// ErrShapeMismatch means the caller supplied input vectors whose lengths
	// do not match the compiled circuit's fixed capacities. Rejected before
	// any constraint is evaluated.
	ErrShapeMismatch = errors.New("witness shape mismatch")

	// ErrUnsatisfiedConstraint means the full assignment violates at least
	// one equation. The witness is invalid; the process is fine.
	ErrUnsatisfiedConstraint = errors.New("unsatisfied constraint")
)
