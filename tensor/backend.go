// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/snn/internal/tensor"

// Backend defines the interface that all compute backends must implement.
//
// Implementations:
//   - backend/cpu: Pure Go, channel blocks run on goroutines
//   - backend/webgpu: WGSL compute shaders via WebGPU (windows builds)
//
// Decorator backends for additional functionality:
//   - autodiff: Automatic differentiation (wraps any backend)
//
// The integrate-and-fire kernels are part of the backend types themselves
// (see neuron.Kernel); Backend carries only what tensors need.
type Backend = tensor.Backend
