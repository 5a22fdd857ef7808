// Package ops defines the differentiable operations recorded on the gradient tape.
//
// Each operation implements the Operation interface, which provides:
//   - Forward pass: computed by the backend before the op is recorded
//   - Backward pass: computes gradients for inputs given output gradients
//
// Supported operations:
//   - AddOp: element-wise addition (d(a+b)/da = 1, d(a+b)/db = 1)
//   - MultiStepIFOp: multi-step integrate-and-fire, outputs [S, V], inputs [x, v_init]
//   - LastStepOp: final timestep of a sequence, used to carry membrane state
//   - ReshapeOp: shape change, used by single-step calls
package ops

import "github.com/born-ml/snn/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor.
	//
	// Example for AddOp:
	//   inputs: [a, b]
	//   outputGrad: dL/d(a+b)
	//   returns: [dL/d(a+b), dL/d(a+b)] (gradient flows equally to both inputs)
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// MultiOutputOperation represents an operation that produces multiple outputs,
// such as MultiStepIFOp producing spikes and potentials.
//
// The tape handles these specially by collecting gradients for ALL outputs
// before calling BackwardMulti. Outputs that received no gradient are
// zero-filled.
type MultiOutputOperation interface {
	Operation

	// Outputs returns all output tensors produced by this operation.
	Outputs() []*tensor.RawTensor

	// BackwardMulti computes gradients for inputs given gradients for ALL outputs.
	// This is used instead of Backward for multi-output operations.
	BackwardMulti(outputGrads []*tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor
}

// Releaser is implemented by operations holding saved forward state that
// should be dropped when the tape is cleared without a backward pass.
type Releaser interface {
	Release()
}
