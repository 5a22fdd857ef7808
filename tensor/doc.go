// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the tensors the spiking kernels operate on.
//
// # Overview
//
// Sequences are time-major: a tensor of shape [T, d1, d2, ...] holds T
// timesteps of N = d1·d2·… independent channels. This package provides:
//   - Generic type-safe tensors (Tensor[T, B])
//   - Seeded random creation for reproducible input currents
//   - Zero-copy reshapes and per-timestep slicing
//   - Device abstraction (CPU, WebGPU)
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/snn/backend/cpu"
//	    "github.com/born-ml/snn/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    // 8 timesteps of a 4x32 layer
//	    x := tensor.Randn[float32](tensor.Shape{8, 4, 32}, 0.5, 0.25, 1, backend)
//	    steps, channels, _ := x.Shape().TimeMajor() // 8, 128
//	}
//
// # Supported Data Types
//
// The kernels accept float32 and float64. Int32 and Bool tensors can be
// created for index and mask data but are rejected by every neuron kernel.
package tensor
