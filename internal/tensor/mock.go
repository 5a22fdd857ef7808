package tensor

import "fmt"

// Verify that MockBackend implements Backend.
var _ Backend = (*MockBackend)(nil)

// MockBackend is a minimal float64-accumulating backend for testing tensors
// without importing a real backend.
type MockBackend struct{}

// NewMockBackend creates a new MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Name returns the backend name.
func (m *MockBackend) Name() string {
	return "mock"
}

// Device returns the device type.
func (m *MockBackend) Device() Device {
	return CPU
}

// Add performs element-wise addition of equally shaped float tensors.
func (m *MockBackend) Add(a, b *RawTensor) *RawTensor {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("mock add: shape mismatch %v vs %v", a.Shape(), b.Shape()))
	}
	out, err := NewRaw(a.Shape(), a.DType(), CPU)
	if err != nil {
		panic(err)
	}
	switch a.DType() {
	case Float32:
		x, y, dst := a.AsFloat32(), b.AsFloat32(), out.AsFloat32()
		for i := range dst {
			dst[i] = float32(float64(x[i]) + float64(y[i]))
		}
	case Float64:
		x, y, dst := a.AsFloat64(), b.AsFloat64(), out.AsFloat64()
		for i := range dst {
			dst[i] = x[i] + y[i]
		}
	default:
		panic(fmt.Sprintf("mock add: unsupported dtype %s", a.DType()))
	}
	return out
}

// Reshape returns a view with the new shape.
func (m *MockBackend) Reshape(t *RawTensor, newShape Shape) *RawTensor {
	out, err := t.Reshape(newShape)
	if err != nil {
		panic(fmt.Sprintf("mock reshape: %v", err))
	}
	return out
}
