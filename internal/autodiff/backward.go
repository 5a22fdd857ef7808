package autodiff

import (
	"fmt"

	"github.com/born-ml/snn/internal/tensor"
)

// BackwardCapable is an interface for backends that support backward pass.
// AutodiffBackend implements this interface.
type BackwardCapable interface {
	tensor.Backend
	// GetTape returns the gradient tape for backward computation.
	GetTape() *GradientTape
}

// GetTape returns the gradient tape (implements BackwardCapable interface).
func (b *AutodiffBackend[B]) GetTape() *GradientTape {
	return b.tape
}

// Backward computes gradients of sum(t) using the backend's tape, i.e. it
// seeds t with ones.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	s, v, _ := backend.MultiStepIFNode(x, vInit, cfg)
//	gradients := autodiff.Backward(tensor.New[float32](s, backend), backend)
//	grad := gradients[x] // d(sum S)/dx
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	return BackwardSeeds(backend, t.Raw())
}

// BackwardSeeds computes gradients of the sum of every given output, seeding
// each with ones. Outputs of the same multi-output operation, such as S and
// V of one integrate-and-fire call, are differentiated together.
func BackwardSeeds[B BackwardCapable](backend B, outputs ...*tensor.RawTensor) map[*tensor.RawTensor]*tensor.RawTensor {
	tape := backend.GetTape()

	if tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}

	seeds := make(map[*tensor.RawTensor]*tensor.RawTensor, len(outputs))
	for _, out := range outputs {
		seeds[out] = ones(out, backend.Device())
	}
	return tape.BackwardFrom(seeds, backend)
}

func ones(like *tensor.RawTensor, device tensor.Device) *tensor.RawTensor {
	grad, err := tensor.NewRaw(like.Shape(), like.DType(), device)
	if err != nil {
		panic(fmt.Sprintf("backward: failed to create output gradient: %v", err))
	}

	switch like.DType() {
	case tensor.Float32:
		data := grad.AsFloat32()
		for i := range data {
			data[i] = 1.0
		}
	case tensor.Float64:
		data := grad.AsFloat64()
		for i := range data {
			data[i] = 1.0
		}
	default:
		panic(fmt.Sprintf("backward: unsupported dtype %s (only float32/float64 supported)", like.DType()))
	}
	return grad
}
