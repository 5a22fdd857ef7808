// Package nn implements stateful spiking modules on top of the neuron kernels.
//
// This package provides:
//   - Module interface: Base interface for all stateful components
//   - IFNode: Multi-step integrate-and-fire layer keeping membrane potential
//   - Sequential: Container for stacking modules
package nn

import (
	"github.com/born-ml/snn/internal/tensor"
)

// Module is the base interface for spiking network components.
//
// Spiking modules carry state across calls (the membrane potential), so
// besides Forward every module can be reset and its state saved or restored:
//
//	net := nn.NewSequential[Backend](node1, node2)
//	for _, batch := range batches {
//	    out := net.Forward(batch)
//	    ...
//	    net.Reset()
//	}
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output sequence [T, ...] of the module given an
	// input sequence [T, ...].
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Reset restores the initial state.
	Reset()

	// StateDict returns the module's state tensors by name.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict restores state saved by StateDict.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}
