package neuron

import (
	"fmt"

	"github.com/born-ml/snn/internal/surrogate"
	"github.com/born-ml/snn/internal/tensor"
)

// ForwardResult holds the outputs of a forward invocation.
// H is nil for the inference variant.
type ForwardResult struct {
	S *tensor.RawTensor // [T, ...] spikes, same dtype as x
	V *tensor.RawTensor // [T, ...] post-reset potential
	H *tensor.RawTensor // [T, ...] pre-reset potential (training only)
}

// Kernel is the tensor-level entry point pair implemented by every backend.
type Kernel interface {
	// MultiStepIF runs the forward recurrence over x [T, ...] starting from
	// vInit (N elements). With saveIntermediates the result also carries H.
	MultiStepIF(x, vInit *tensor.RawTensor, p Params, saveIntermediates bool) (*ForwardResult, error)

	// MultiStepIFBackward runs the backward recurrence and returns the
	// gradients w.r.t. x ([T, ...]) and vInit (shaped like one timestep).
	MultiStepIFBackward(gradS, gradV, h *tensor.RawTensor, p Params, sg surrogate.Function) (gradX, gradVInit *tensor.RawTensor, err error)
}

// CheckForward validates the forward operands and returns T and N.
func CheckForward(x, vInit *tensor.RawTensor) (steps, channels int, err error) {
	if x == nil || vInit == nil {
		return 0, 0, fmt.Errorf("%w: x and v_init are required", ErrShapeMismatch)
	}
	steps, channels, err = x.Shape().TimeMajor()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: x: %v", ErrShapeMismatch, err)
	}
	if vInit.NumElements() != channels {
		return 0, 0, fmt.Errorf("%w: v_init %v has %d elements, x %v has N=%d channels",
			ErrShapeMismatch, vInit.Shape(), vInit.NumElements(), x.Shape(), channels)
	}
	if err := checkDType(x.DType()); err != nil {
		return 0, 0, err
	}
	if vInit.DType() != x.DType() {
		return 0, 0, fmt.Errorf("%w: v_init is %s, x is %s", ErrUnsupportedDType, vInit.DType(), x.DType())
	}
	return steps, channels, nil
}

// CheckBackward validates the backward operands and returns T and N.
//
// The computation dtype is that of gradS; gradV and h must match it.
func CheckBackward(gradS, gradV, h *tensor.RawTensor) (steps, channels int, err error) {
	if h == nil {
		return 0, 0, fmt.Errorf("%w: backward requires h_seq from a training forward pass", ErrMissingState)
	}
	if h.Released() {
		return 0, 0, fmt.Errorf("%w: h_seq was already released", ErrMissingState)
	}
	if gradS == nil || gradV == nil {
		return 0, 0, fmt.Errorf("%w: grad_s_seq and grad_v_seq are required", ErrShapeMismatch)
	}
	if !gradS.Shape().Equal(gradV.Shape()) || !gradS.Shape().Equal(h.Shape()) {
		return 0, 0, fmt.Errorf("%w: grad_s_seq %v, grad_v_seq %v, h_seq %v",
			ErrShapeMismatch, gradS.Shape(), gradV.Shape(), h.Shape())
	}
	steps, channels, err = gradS.Shape().TimeMajor()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: grad_s_seq: %v", ErrShapeMismatch, err)
	}
	if err := checkDType(gradS.DType()); err != nil {
		return 0, 0, err
	}
	if gradV.DType() != gradS.DType() || h.DType() != gradS.DType() {
		return 0, 0, fmt.Errorf("%w: grad_s_seq is %s, grad_v_seq is %s, h_seq is %s",
			ErrUnsupportedDType, gradS.DType(), gradV.DType(), h.DType())
	}
	return steps, channels, nil
}

func checkDType(dt tensor.DataType) error {
	if !dt.IsFloat() {
		return fmt.Errorf("%w: %s (only float32/float64 supported)", ErrUnsupportedDType, dt)
	}
	return nil
}
