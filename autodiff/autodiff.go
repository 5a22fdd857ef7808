// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides automatic differentiation for the spiking kernels.
//
// The autodiff backend wraps any kernel backend. While its tape records,
// integrate-and-fire calls run the training forward pass and keep the
// pre-reset potential for the backward recurrence; otherwise they run the
// cheaper inference pass.
//
// Example:
//
//	import (
//	    "github.com/born-ml/snn/autodiff"
//	    "github.com/born-ml/snn/backend/cpu"
//	    "github.com/born-ml/snn/nn"
//	    "github.com/born-ml/snn/tensor"
//	)
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//	    backend.Tape().StartRecording()
//
//	    node, _ := nn.NewIFNode(nn.DefaultIFNodeConfig(), backend)
//	    x := tensor.Randn[float32](tensor.Shape{8, 128}, 0.5, 0.25, 1, backend)
//	    spikes := node.Forward(x)
//
//	    // Gradients of sum(spikes) w.r.t. every recorded input
//	    grads := autodiff.Backward(spikes, backend)
//	    _ = grads[x.Raw()]
//	}
package autodiff

import (
	"github.com/born-ml/snn/internal/autodiff"
	"github.com/born-ml/snn/internal/tensor"
)

// Kernel is what a backend must provide to be wrapped: tensor plumbing plus
// the integrate-and-fire kernels.
type Kernel = autodiff.Backend

// Backend is the autodiff-enabled backend.
type Backend[B Kernel] = autodiff.AutodiffBackend[B]

// New creates a new autodiff backend wrapping the given backend.
//
// Example:
//
//	base := cpu.New()
//	backend := autodiff.New(base)
func New[B Kernel](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// BackwardCapable interface for backends that support backpropagation.
type BackwardCapable = autodiff.BackwardCapable

// Backward computes gradients of sum(t) via backpropagation.
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.Backward(t, backend)
}

// BackwardSeeds computes gradients of the sum of several outputs, for
// example the spikes and the final membrane potential of a layer.
func BackwardSeeds[B BackwardCapable](backend B, outputs ...*tensor.RawTensor) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.BackwardSeeds(backend, outputs...)
}
