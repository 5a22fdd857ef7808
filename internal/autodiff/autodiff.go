// Package autodiff implements automatic differentiation using the decorator pattern.
//
// AutodiffBackend wraps any spiking Backend (CPU, WebGPU) and adds gradient
// tracking through a GradientTape.
//
// Architecture:
//   - Decorator pattern: AutodiffBackend[B] wraps any Backend implementation
//   - GradientTape: Records operations during forward pass
//   - Operation interface: Each op (Add, Reshape, MultiStepIF, LastStep) implements backward pass
//   - Mode selection: while the tape records, MultiStepIFNode runs the training
//     variant and saves the pre-reset trace; otherwise it runs inference
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	s, v, err := backend.MultiStepIFNode(x, vInit, neuron.DefaultConfig())
//	grads := backend.Tape().BackwardFrom(map[*tensor.RawTensor]*tensor.RawTensor{s: gradS, v: gradV}, backend)
//	gradX := grads[x]
package autodiff

import (
	"fmt"

	"github.com/born-ml/snn/internal/autodiff/ops"
	"github.com/born-ml/snn/internal/neuron"
	"github.com/born-ml/snn/internal/surrogate"
	"github.com/born-ml/snn/internal/tensor"
)

// Backend is what AutodiffBackend needs from the wrapped backend.
type Backend interface {
	tensor.Backend
	neuron.Kernel

	// LastStep returns a copy of the final timestep of a sequence [T, ...].
	LastStep(seq *tensor.RawTensor) (*tensor.RawTensor, error)
}

// AutodiffBackend wraps a Backend and adds automatic differentiation.
// It implements Backend itself and records operations in a GradientTape.
type AutodiffBackend[B Backend] struct {
	inner B             // Wrapped backend (CPU, GPU, etc.)
	tape  *GradientTape // Records operations for backpropagation
}

// New creates a new AutodiffBackend wrapping the given backend.
func New[B Backend](backend B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{
		inner: backend,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape for manual control.
func (b *AutodiffBackend[B]) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend for direct access.
func (b *AutodiffBackend[B]) Inner() B {
	return b.inner
}

// Name returns the backend name.
func (b *AutodiffBackend[B]) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Device returns the compute device.
func (b *AutodiffBackend[B]) Device() tensor.Device {
	return b.inner.Device()
}

// Add performs element-wise addition and records the operation.
func (b *AutodiffBackend[B]) Add(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Add(a, c)

	if b.tape.IsRecording() {
		b.tape.Record(ops.NewAddOp(a, c, result))
	}

	return result
}

// Reshape reshapes a tensor and records the operation.
func (b *AutodiffBackend[B]) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result := b.inner.Reshape(t, newShape)

	if b.tape.IsRecording() {
		b.tape.Record(ops.NewReshapeOp(t, result))
	}

	return result
}

// MultiStepIF forwards to the wrapped backend without recording.
func (b *AutodiffBackend[B]) MultiStepIF(x, vInit *tensor.RawTensor, p neuron.Params, saveIntermediates bool) (*neuron.ForwardResult, error) {
	return b.inner.MultiStepIF(x, vInit, p, saveIntermediates)
}

// MultiStepIFBackward forwards to the wrapped backend.
func (b *AutodiffBackend[B]) MultiStepIFBackward(gradS, gradV, h *tensor.RawTensor, p neuron.Params, sg surrogate.Function) (gradX, gradVInit *tensor.RawTensor, err error) {
	return b.inner.MultiStepIFBackward(gradS, gradV, h, p, sg)
}

// MultiStepIFNode runs an integrate-and-fire node over x [T, ...] starting
// from vInit and returns the spike and potential sequences.
//
// While the tape is recording, the training variant runs and a
// MultiStepIFOp holding the pre-reset trace is recorded; gradients then flow
// to x and vInit. Otherwise the inference variant runs and nothing is saved.
func (b *AutodiffBackend[B]) MultiStepIFNode(x, vInit *tensor.RawTensor, cfg neuron.Config) (s, v *tensor.RawTensor, err error) {
	if !b.tape.IsRecording() {
		res, err := b.inner.MultiStepIF(x, vInit, cfg.Params(), false)
		if err != nil {
			return nil, nil, err
		}
		return res.S, res.V, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("autodiff: MultiStepIFNode: %w", err)
	}
	p := cfg.Params()
	res, err := b.inner.MultiStepIF(x, vInit, p, true)
	if err != nil {
		return nil, nil, err
	}
	b.tape.Record(ops.NewMultiStepIFOp(x, vInit, res, p, cfg.Surrogate, b.inner))
	return res.S, res.V, nil
}

// LastStep returns the final timestep of seq and records the selection so
// gradients reach seq.
func (b *AutodiffBackend[B]) LastStep(seq *tensor.RawTensor) (*tensor.RawTensor, error) {
	last, err := b.inner.LastStep(seq)
	if err != nil {
		return nil, err
	}
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewLastStepOp(seq, last))
	}
	return last, nil
}
