// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/snn/internal/nn"
	"github.com/born-ml/snn/internal/tensor"
)

// Module interface defines the common interface for all network modules.
type Module[B tensor.Backend] = nn.Module[B]

// SpikingBackend is a backend able to run integrate-and-fire nodes.
type SpikingBackend = nn.SpikingBackend

// IFNodeConfig configures an IFNode.
type IFNodeConfig = nn.IFNodeConfig

// DefaultIFNodeConfig returns neuron.DefaultConfig starting from rest at 0.
func DefaultIFNodeConfig() IFNodeConfig {
	return nn.DefaultIFNodeConfig()
}

// IFNode is a multi-step integrate-and-fire layer whose membrane potential
// persists between calls until Reset.
type IFNode[B SpikingBackend] = nn.IFNode[B]

// NewIFNode creates an IFNode.
//
// Example:
//
//	cfg := nn.DefaultIFNodeConfig()
//	cfg.VReset = nil // soft reset
//	node, err := nn.NewIFNode(cfg, backend)
func NewIFNode[B SpikingBackend](cfg IFNodeConfig, backend B) (*IFNode[B], error) {
	return nn.NewIFNode(cfg, backend)
}

// Sequential is a container that chains modules together.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a new Sequential container.
//
// Example:
//
//	model := nn.NewSequential[B](first, second)
//	out := model.Forward(x)
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}
