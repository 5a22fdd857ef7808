// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package neuron describes the multi-step integrate-and-fire (IF) neuron.
//
// For N independent channels over T timesteps, starting from v = v_init:
//
//	h[t] = v[t-1] + x[t]                   // charge
//	s[t] = 1 if h[t] >= v_threshold else 0  // fire
//	v[t] = h[t] - s[t]*v_threshold          // soft reset
//	v[t] = s[t]*v_reset + (1-s[t])*h[t]     // hard reset
//
// The backward pass walks time in reverse with a surrogate derivative in
// place of the step function. DetachReset drops the reset term's dependence
// on the spike from the gradient.
//
// Every backend implements Kernel. Most users reach the kernels through
// nn.IFNode and autodiff.
package neuron

import (
	"github.com/born-ml/snn/internal/neuron"
)

// Params are the scalar kernel parameters, fixed for one invocation.
type Params = neuron.Params

// Config is the op-level configuration of an integrate-and-fire node.
// A nil VReset selects soft reset.
type Config = neuron.Config

// ForwardResult holds S, V and (training only) H of a forward invocation.
type ForwardResult = neuron.ForwardResult

// Kernel is the tensor-level forward/backward pair every backend implements.
type Kernel = neuron.Kernel

// Errors returned by the kernels. Test with errors.Is.
var (
	ErrShapeMismatch    = neuron.ErrShapeMismatch
	ErrMissingState     = neuron.ErrMissingState
	ErrUnsupportedDType = neuron.ErrUnsupportedDType
	ErrInvalidConfig    = neuron.ErrInvalidConfig
)

// DefaultConfig returns threshold 1, hard reset to 0, reset not detached,
// and a sigmoid surrogate with alpha 4.
func DefaultConfig() Config {
	return neuron.DefaultConfig()
}

// ResetTo returns a hard-reset target for Config.VReset.
//
// Example:
//
//	cfg := neuron.DefaultConfig()
//	cfg.VReset = neuron.ResetTo(-0.5) // hard reset to -0.5
//	cfg.VReset = nil                  // soft reset
func ResetTo(v float64) *float64 {
	return neuron.ResetTo(v)
}
