package tensor

// Backend defines the interface that all compute backends must implement.
//
// The neuron kernels themselves are described by neuron.Kernel; Backend only
// carries what tensors and the gradient tape need on their own.
//
// Implementations:
//   - CPU: pure Go, channel blocks run on goroutines
//   - WebGPU: WGSL compute shaders (windows builds)
type Backend interface {
	// Add performs element-wise addition of two tensors of equal shape.
	// The gradient tape uses it to accumulate gradients.
	Add(a, b *RawTensor) *RawTensor

	// Reshape returns a tensor of the same data with a new shape.
	// Under autodiff the reshape is recorded so gradients reach the input.
	Reshape(t *RawTensor, newShape Shape) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
