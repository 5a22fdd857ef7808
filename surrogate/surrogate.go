// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package surrogate provides the surrogate derivatives used in place of the
// spike function's derivative during the backward pass.
//
// Built-in surrogates also run inside GPU kernels. Func wraps an arbitrary
// Go function and is CPU only.
//
// Example:
//
//	cfg := neuron.DefaultConfig()
//	cfg.Surrogate = surrogate.ATan{Alpha: 2}
//
//	sg, err := surrogate.Parse("triangle:1")
package surrogate

import (
	"github.com/born-ml/snn/internal/surrogate"
)

// Function is a surrogate derivative of the unit step.
type Function = surrogate.Function

// Shader is implemented by surrogates that have a WGSL form.
type Shader = surrogate.Shader

// Built-in surrogates. A zero parameter selects the default.
type (
	Sigmoid     = surrogate.Sigmoid
	ATan        = surrogate.ATan
	Triangle    = surrogate.Triangle
	SoftSign    = surrogate.SoftSign
	Rectangular = surrogate.Rectangular
	Func        = surrogate.Func
)

// Parse builds a surrogate from a "name" or "name:param" string, e.g.
// "sigmoid:4" or "atan".
func Parse(text string) (Function, error) {
	return surrogate.Parse(text)
}

// Builtin returns one instance of every built-in surrogate with default parameters.
func Builtin() []Function {
	return surrogate.Builtin()
}
