package ops

import (
	"fmt"

	"github.com/born-ml/snn/internal/tensor"
)

// LastStepOp selects the final timestep of a sequence [T, ...].
//
// It links the membrane potential of one multi-step call to the initial
// potential of the next, so gradients flow across calls.
type LastStepOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewLastStepOp creates a new LastStepOp.
func NewLastStepOp(seq, last *tensor.RawTensor) *LastStepOp {
	return &LastStepOp{input: seq, output: last}
}

// Backward scatters outputGrad into the last timestep of a zero gradient.
func (op *LastStepOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grad, err := tensor.NewRaw(op.input.Shape(), outputGrad.DType(), backend.Device())
	if err != nil {
		panic(fmt.Sprintf("last_step backward: %v", err))
	}
	if err := grad.SetTimeStep(op.input.Shape()[0]-1, outputGrad); err != nil {
		panic(fmt.Sprintf("last_step backward: %v", err))
	}
	return []*tensor.RawTensor{grad}
}

// Inputs returns [seq].
func (op *LastStepOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the final timestep.
func (op *LastStepOp) Output() *tensor.RawTensor {
	return op.output
}
