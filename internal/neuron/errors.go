package neuron

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every backend. Callers test with errors.Is.
var (
	// ErrShapeMismatch reports disagreeing T or N between related tensors.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrMissingState reports a backward pass without the pre-reset trace
	// produced by a training forward pass.
	ErrMissingState = errors.New("missing saved state")

	// ErrUnsupportedDType reports a dtype the backend cannot compute in.
	ErrUnsupportedDType = errors.New("unsupported dtype")

	// ErrInvalidConfig reports invalid scalar parameters, a missing
	// surrogate, or an invalid block size.
	ErrInvalidConfig = errors.New("invalid config")
)

var errNoSurrogate = fmt.Errorf("%w: surrogate function is required", ErrInvalidConfig)
