package tensor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Device represents the compute device for tensor operations.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// tensorBuffer is a reference-counted shared buffer.
// Saved training state (the pre-reset trace) is released through it as soon
// as the backward pass has consumed it.
type tensorBuffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

// newTensorBuffer creates a new reference-counted buffer with refCount = 1.
func newTensorBuffer(size int) *tensorBuffer {
	buf := &tensorBuffer{
		data: make([]byte, size),
	}
	buf.refCount.Store(1)
	return buf
}

func (tb *tensorBuffer) addRef() {
	tb.refCount.Add(1)
}

// release decrements the reference count and drops the memory at zero.
func (tb *tensorBuffer) release() {
	if tb.refCount.Add(-1) == 0 {
		tb.mu.Lock()
		defer tb.mu.Unlock()
		tb.data = nil
	}
}

// bytes returns the current backing slice, nil once released.
func (tb *tensorBuffer) bytes() []byte {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.data
}

func (tb *tensorBuffer) isUnique() bool {
	return tb.refCount.Load() == 1
}

// RawTensor is the low-level tensor representation: a row-major byte buffer
// plus shape and runtime type information.
type RawTensor struct {
	buffer *tensorBuffer
	shape  Shape
	stride []int
	dtype  DataType
	device Device
}

// NewRaw creates a new zero-filled RawTensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	byteSize := shape.NumElements() * dtype.Size()

	return &RawTensor{
		buffer: newTensorBuffer(byteSize),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
	}, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the tensor's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// Released reports whether the underlying memory has been dropped.
func (r *RawTensor) Released() bool {
	return r.buffer.bytes() == nil
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
// A slice obtained before Release stays valid; Data returns nil afterwards.
func (r *RawTensor) Data() []byte {
	return r.buffer.bytes()
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	data := r.live()
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", r.dtype))
	}
	data := r.live()
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*float64)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	if r.dtype != Int32 {
		panic(fmt.Sprintf("tensor dtype is %s, not int32", r.dtype))
	}
	data := r.live()
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*int32)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsBool interprets the data as []bool.
// Panics if the tensor's dtype is not Bool.
func (r *RawTensor) AsBool() []bool {
	if r.dtype != Bool {
		panic(fmt.Sprintf("tensor dtype is %s, not bool", r.dtype))
	}
	data := r.live()
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*bool)(unsafe.Pointer(&data[0])), r.NumElements())
}

// live returns the byte buffer, panicking if it was released.
func (r *RawTensor) live() []byte {
	data := r.buffer.bytes()
	if data == nil {
		panic("tensor: use of released tensor")
	}
	return data
}

// Floats returns the tensor data as a typed slice.
// Panics if F does not match the tensor's dtype.
func Floats[F Float](r *RawTensor) []F {
	var dummy F
	switch any(dummy).(type) {
	case float32:
		return any(r.AsFloat32()).([]F)
	default:
		return any(r.AsFloat64()).([]F)
	}
}

// Clone creates a shallow copy of the RawTensor (shares buffer with reference counting).
func (r *RawTensor) Clone() *RawTensor {
	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
	}
}

// Copy creates a deep copy of the RawTensor with its own buffer.
func (r *RawTensor) Copy() *RawTensor {
	out, err := NewRaw(r.shape, r.dtype, r.device)
	if err != nil {
		panic(fmt.Sprintf("tensor: copy: %v", err))
	}
	copy(out.buffer.data, r.live())
	return out
}

// Release decrements the reference count and deallocates if it reaches 0.
func (r *RawTensor) Release() {
	r.buffer.release()
}

// IsUnique returns true if this tensor is the only reference to the buffer.
func (r *RawTensor) IsUnique() bool {
	return r.buffer.isUnique()
}

// Reshape returns a view sharing the buffer with a new shape of equal size.
func (r *RawTensor) Reshape(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != r.NumElements() {
		return nil, fmt.Errorf("cannot reshape %v (%d elements) to %v (%d elements)",
			r.shape, r.NumElements(), shape, shape.NumElements())
	}
	view := r.Clone()
	view.shape = shape.Clone()
	view.stride = shape.ComputeStrides()
	return view, nil
}

// TimeStep copies timestep t of a time-major sequence [T, ...] into a new
// tensor of the per-step shape.
func (r *RawTensor) TimeStep(t int) (*RawTensor, error) {
	steps, channels, err := r.shape.TimeMajor()
	if err != nil {
		return nil, err
	}
	if t < 0 || t >= steps {
		return nil, fmt.Errorf("timestep %d out of range [0, %d)", t, steps)
	}
	out, err := NewRaw(r.shape.Step(), r.dtype, r.device)
	if err != nil {
		return nil, err
	}
	size := channels * r.dtype.Size()
	copy(out.buffer.data, r.live()[t*size:(t+1)*size])
	return out, nil
}

// SetTimeStep copies src, which must hold one timestep's worth of elements
// of the same dtype, into timestep t of a time-major sequence.
func (r *RawTensor) SetTimeStep(t int, src *RawTensor) error {
	steps, channels, err := r.shape.TimeMajor()
	if err != nil {
		return err
	}
	if t < 0 || t >= steps {
		return fmt.Errorf("timestep %d out of range [0, %d)", t, steps)
	}
	if src.dtype != r.dtype || src.NumElements() != channels {
		return fmt.Errorf("cannot write %v %s into a timestep of %v %s", src.shape, src.dtype, r.shape, r.dtype)
	}
	size := channels * r.dtype.Size()
	copy(r.live()[t*size:(t+1)*size], src.live())
	return nil
}
