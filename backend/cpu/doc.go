// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for the spiking kernels.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Float32 and Float64 support
//   - Channel blocks launched in parallel, time loop sequential per block
//   - Pluggable block-size selection (fixed, heuristic or autotuned)
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/snn/backend/cpu"
//	    "github.com/born-ml/snn/neuron"
//	    "github.com/born-ml/snn/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Randn[float32](tensor.Shape{8, 128}, 0.5, 0.25, 1, backend)
//	    v0 := tensor.Zeros[float32](tensor.Shape{128}, backend)
//
//	    res, err := backend.MultiStepIF(x.Raw(), v0.Raw(), neuron.Params{VThreshold: 1, SoftReset: true}, false)
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each kernel invocation
// allocates its own outputs and does not share mutable state; the
// autotuner cache is guarded by a mutex.
package cpu
