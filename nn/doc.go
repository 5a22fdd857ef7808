// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides spiking network layers.
//
// # Overview
//
// This package contains:
//   - IFNode: a multi-step integrate-and-fire layer with persistent state
//   - Sequential: a container running modules in order
//   - Module: the interface every layer implements
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/snn/backend/cpu"
//	    "github.com/born-ml/snn/nn"
//	    "github.com/born-ml/snn/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    node, err := nn.NewIFNode(nn.DefaultIFNodeConfig(), backend)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    x := tensor.Randn[float32](tensor.Shape{8, 4, 32}, 0.5, 0.25, 1, backend)
//	    spikes := node.Forward(x) // [8, 4, 32]
//	    v := node.V()             // [4, 32], carried into the next Forward
//	    node.Reset()
//	}
//
// # Training
//
// Wrap the backend with autodiff and start its tape; IFNode then runs the
// training variant and gradients flow through the surrogate derivative.
package nn
