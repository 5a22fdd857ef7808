package ops

import (
	"fmt"
	"sync"

	"github.com/born-ml/snn/internal/neuron"
	"github.com/born-ml/snn/internal/surrogate"
	"github.com/born-ml/snn/internal/tensor"
)

// ErrContextConsumed is returned when a MultiStepIFOp is differentiated a
// second time; its saved pre-reset trace was released by the first pass.
var ErrContextConsumed = fmt.Errorf("%w: multi-step IF context already consumed", neuron.ErrMissingState)

// ifContext is the state saved by a training forward pass.
type ifContext struct {
	h      *tensor.RawTensor
	params neuron.Params
	sg     surrogate.Function
}

// MultiStepIFOp records one training invocation of the integrate-and-fire
// recurrence: (x, v_init) -> (S, V).
//
// Backward pass:
//   - runs the reverse-time recurrence on the saved pre-reset trace H
//   - returns [dL/dx, dL/dv_init]; the scalar parameters get no gradient
//
// The saved context is consumed by exactly one backward pass and H is
// released afterwards.
type MultiStepIFOp struct {
	inputs  []*tensor.RawTensor // [x, v_init]
	outputs []*tensor.RawTensor // [s, v]
	kernel  neuron.Kernel

	mu  sync.Mutex
	ctx *ifContext
}

// NewMultiStepIFOp creates a MultiStepIFOp from a training forward result.
// res.H must be set; the op takes ownership of it.
func NewMultiStepIFOp(x, vInit *tensor.RawTensor, res *neuron.ForwardResult, p neuron.Params, sg surrogate.Function, kernel neuron.Kernel) *MultiStepIFOp {
	return &MultiStepIFOp{
		inputs:  []*tensor.RawTensor{x, vInit},
		outputs: []*tensor.RawTensor{res.S, res.V},
		kernel:  kernel,
		ctx:     &ifContext{h: res.H, params: p, sg: sg},
	}
}

// Run consumes the saved context and computes the input gradients.
func (op *MultiStepIFOp) Run(gradS, gradV *tensor.RawTensor) (gradX, gradVInit *tensor.RawTensor, err error) {
	op.mu.Lock()
	ctx := op.ctx
	op.ctx = nil
	op.mu.Unlock()
	if ctx == nil {
		return nil, nil, ErrContextConsumed
	}
	defer ctx.h.Release()

	gradX, gradVInit, err = op.kernel.MultiStepIFBackward(gradS, gradV, ctx.h, ctx.params, ctx.sg)
	if err != nil {
		return nil, nil, err
	}

	vInit := op.inputs[1]
	if !gradVInit.Shape().Equal(vInit.Shape()) {
		gradVInit, err = gradVInit.Reshape(vInit.Shape())
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", neuron.ErrShapeMismatch, err)
		}
	}
	return gradX, gradVInit, nil
}

// BackwardMulti computes [dL/dx, dL/dv_init] from [dL/dS, dL/dV].
// Panics if the context was already consumed or the kernel fails.
func (op *MultiStepIFOp) BackwardMulti(outputGrads []*tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	if len(outputGrads) != 2 {
		panic(fmt.Sprintf("multistep_if backward: expected 2 output gradients, got %d", len(outputGrads)))
	}
	gradX, gradVInit, err := op.Run(outputGrads[0], outputGrads[1])
	if err != nil {
		panic(fmt.Sprintf("multistep_if backward: %v", err))
	}
	return []*tensor.RawTensor{gradX, gradVInit}
}

// Backward treats outputGrad as dL/dS with no gradient flowing into V.
func (op *MultiStepIFOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	zero, err := tensor.NewRaw(outputGrad.Shape(), outputGrad.DType(), backend.Device())
	if err != nil {
		panic(fmt.Sprintf("multistep_if backward: %v", err))
	}
	return op.BackwardMulti([]*tensor.RawTensor{outputGrad, zero}, backend)
}

// Inputs returns [x, v_init].
func (op *MultiStepIFOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the spike output S.
func (op *MultiStepIFOp) Output() *tensor.RawTensor {
	return op.outputs[0]
}

// Outputs returns [S, V].
func (op *MultiStepIFOp) Outputs() []*tensor.RawTensor {
	return op.outputs
}

// Saved reports whether the context is still available for a backward pass.
func (op *MultiStepIFOp) Saved() bool {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.ctx != nil
}

// Release drops the saved context without running backward.
func (op *MultiStepIFOp) Release() {
	op.mu.Lock()
	ctx := op.ctx
	op.ctx = nil
	op.mu.Unlock()
	if ctx != nil {
		ctx.h.Release()
	}
}
