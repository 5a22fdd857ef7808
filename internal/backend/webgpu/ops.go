//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"

	"github.com/born-ml/snn/internal/tensor"
	"github.com/go-webgpu/webgpu/wgpu"
)

// Add computes element-wise a + b on the GPU (float32, equal shapes).
func (b *Backend) Add(a, other *tensor.RawTensor) *tensor.RawTensor {
	if !a.Shape().Equal(other.Shape()) {
		panic(fmt.Sprintf("webgpu: add: shape mismatch %v vs %v", a.Shape(), other.Shape()))
	}
	if a.DType() != tensor.Float32 || other.DType() != tensor.Float32 {
		panic(fmt.Sprintf("webgpu: add: only float32 supported, got %s and %s", a.DType(), other.DType()))
	}

	pipeline := b.pipeline("add", addShader)

	bufferA := b.createBuffer(a.Data(), storageUsage)
	defer bufferA.Release()
	bufferOther := b.createBuffer(other.Data(), storageUsage)
	defer bufferOther.Release()

	//nolint:gosec // G115: integer overflow conversion int -> uint64
	resultSize := uint64(a.ByteSize())
	bufferResult := b.bufferPool.Acquire(resultSize, storageUsage)
	defer b.bufferPool.Release(bufferResult, resultSize, storageUsage)

	params := make([]byte, 16)
	//nolint:gosec // G115: integer overflow conversion int -> uint32
	binary.LittleEndian.PutUint32(params[0:4], uint32(a.NumElements()))
	bufferParams := b.createUniformBuffer(params)
	defer bufferParams.Release()

	b.dispatch(pipeline, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufferA, 0, resultSize),
		wgpu.BufferBindingEntry(1, bufferOther, 0, resultSize),
		wgpu.BufferBindingEntry(2, bufferResult, 0, resultSize),
		wgpu.BufferBindingEntry(3, bufferParams, 0, 16),
	}, a.NumElements())

	result := b.alloc(a.Shape())
	if err := b.readBuffer(bufferResult, result.Data()); err != nil {
		panic(fmt.Sprintf("webgpu: add: %v", err))
	}
	return result
}

// Reshape returns a view of t with a new shape. No GPU work is involved.
func (b *Backend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	view, err := t.Reshape(newShape)
	if err != nil {
		panic(fmt.Sprintf("webgpu: reshape: %v", err))
	}
	return view
}

func (b *Backend) alloc(shape tensor.Shape) *tensor.RawTensor {
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.WebGPU)
	if err != nil {
		panic(fmt.Sprintf("webgpu: failed to allocate %v: %v", shape, err))
	}
	return raw
}
