package utils

import "errors"

// Error kinds surfaced by the spatial discretization and its collaborators.
// All errors returned from residual/Jacobian assembly wrap one of these, so
// drivers can select recovery behavior (e.g. CFL backoff on ErrNumericInvalid
// or ErrUnphysicalState) with errors.Is.
var (
	// ErrConfigInvalid indicates an unknown flux/gradient/limiter/BC name,
	// an undeclared boundary marker, or mutually exclusive options.
	ErrConfigInvalid = errors.New("config invalid")

	// ErrNumericInvalid indicates a NaN or Inf in an intermediate quantity.
	ErrNumericInvalid = errors.New("numeric invalid")

	// ErrUnphysicalState indicates non-positive density or pressure on a
	// state that was about to enter physics evaluations.
	ErrUnphysicalState = errors.New("unphysical state")

	// ErrMeshInconsistent indicates bad topology or metrics in the mesh,
	// e.g. a zero-length face or an edge not shared consistently.
	ErrMeshInconsistent = errors.New("mesh inconsistent")
)
