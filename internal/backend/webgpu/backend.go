//go:build windows

// Package webgpu implements the WebGPU backend: integrate-and-fire recurrences
// as WGSL compute shaders, one invocation per channel.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings.
package webgpu

import (
	"fmt"
	"sync"

	"github.com/born-ml/snn/internal/tensor"
	"github.com/go-webgpu/webgpu/wgpu"
)

// Backend runs the neuron kernels on a WebGPU device. Only float32 is
// supported.
type Backend struct {
	device *wgpu.Device
	queue  *wgpu.Queue

	// Shader and pipeline cache, keyed by kernel variant
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	// Buffer pool for the per-call storage buffers
	bufferPool *BufferPool
}

// New creates a WebGPU backend on an already initialized device and queue.
// The caller keeps ownership of both; Release only drops what the backend
// created.
func New(device *wgpu.Device, queue *wgpu.Queue) (*Backend, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("webgpu: device and queue are required")
	}
	return &Backend{
		device:     device,
		queue:      queue,
		shaders:    make(map[string]*wgpu.ShaderModule),
		pipelines:  make(map[string]*wgpu.ComputePipeline),
		bufferPool: NewBufferPool(device),
	}, nil
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "WebGPU"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}

// Release drops cached pipelines, shaders and pooled buffers.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for name, pipeline := range b.pipelines {
		pipeline.Release()
		delete(b.pipelines, name)
	}
	for name, shader := range b.shaders {
		shader.Release()
		delete(b.shaders, name)
	}
	b.bufferPool.Clear()
}

// PoolStats returns buffer pool statistics.
func (b *Backend) PoolStats() (allocated, released, hits, misses uint64, pooledCount int) {
	return b.bufferPool.Stats()
}
