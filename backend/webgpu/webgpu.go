//go:build windows

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU backend for the spiking kernels.
//
// Each channel is one shader invocation that walks the whole time axis, so
// the time recurrence stays sequential while channels run in parallel.
// Only float32 is supported. Backward passes need a surrogate with a WGSL
// form; every built-in surrogate has one.
//
// Example:
//
//	import (
//	    "github.com/born-ml/snn/autodiff"
//	    "github.com/born-ml/snn/backend/webgpu"
//	    "github.com/born-ml/snn/nn"
//	)
//
//	func main() {
//	    gpu, err := webgpu.New(device, queue)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer gpu.Release()
//
//	    backend := autodiff.New(gpu)
//	    node, _ := nn.NewIFNode(nn.DefaultIFNodeConfig(), backend)
//	}
package webgpu

import (
	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/born-ml/snn/autodiff"
	internalwebgpu "github.com/born-ml/snn/internal/backend/webgpu"
	"github.com/born-ml/snn/neuron"
	"github.com/born-ml/snn/tensor"
)

// Backend represents the WebGPU backend implementation.
type Backend = internalwebgpu.Backend

// ErrNoShader reports a surrogate without a WGSL form.
var ErrNoShader = internalwebgpu.ErrNoShader

// Compile-time checks for the interfaces Backend implements.
var (
	_ tensor.Backend  = (*Backend)(nil)
	_ neuron.Kernel   = (*Backend)(nil)
	_ autodiff.Kernel = (*Backend)(nil)
)

// New creates a WebGPU backend on an initialized device and queue.
// Call Release() when done to free cached pipelines and pooled buffers.
func New(device *wgpu.Device, queue *wgpu.Queue) (*Backend, error) {
	return internalwebgpu.New(device, queue)
}
