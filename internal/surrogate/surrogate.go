// Package surrogate provides smooth stand-in derivatives for the spiking
// threshold.
//
// The forward pass of an integrate-and-fire neuron emits s = Θ(h - v_threshold)
// where Θ is the unit step. Θ has zero derivative almost everywhere, so the
// backward pass replaces Θ' with a bounded bump g(x) evaluated at
// x = h - v_threshold. Each Function exposes:
//
//   - Grad64 / Grad32: g(x), evaluated pointwise by the CPU kernels
//   - Primitive: a smooth spike function σ with σ' = g, used by gradient checks
//   - WGSL (optional, via Shader): the same g as a shader function for GPU kernels
//
// Example:
//
//	sg := surrogate.Sigmoid{Alpha: 4}
//	gradX, gradV0, err := backend.MultiStepIFBackward(gradS, gradV, h, params, sg)
package surrogate

import (
	"fmt"
	"strconv"
	"strings"
)

// Function is a surrogate derivative of the unit step.
type Function interface {
	// Name returns a short identifier such as "sigmoid(alpha=4)".
	Name() string

	// Grad64 evaluates the surrogate derivative at x in float64.
	Grad64(x float64) float64

	// Grad32 evaluates the surrogate derivative at x in float32.
	Grad32(x float32) float32

	// Primitive evaluates the smooth spike function whose derivative is Grad64.
	Primitive(x float64) float64
}

// Shader is implemented by surrogates that can run inside GPU kernels.
//
// WGSL returns a WGSL function declaration named sg with signature
// fn sg(x: f32) -> f32.
type Shader interface {
	WGSL() string
}

// For returns the surrogate derivative as a function on the kernel element type.
func For[F float32 | float64](fn Function) func(F) F {
	var dummy F
	switch any(dummy).(type) {
	case float32:
		return any(fn.Grad32).(func(F) F)
	default:
		return any(fn.Grad64).(func(F) F)
	}
}

// Parse builds a surrogate from a "name" or "name:param" string, e.g.
// "sigmoid", "atan:2", "triangle:1", "softsign:2", "rect:1".
func Parse(text string) (Function, error) {
	name, param, hasParam := strings.Cut(strings.ToLower(strings.TrimSpace(text)), ":")
	var p float64
	if hasParam {
		v, err := strconv.ParseFloat(param, 64)
		if err != nil {
			return nil, fmt.Errorf("surrogate %q: invalid parameter: %w", text, err)
		}
		if v <= 0 {
			return nil, fmt.Errorf("surrogate %q: parameter must be > 0", text)
		}
		p = v
	}

	switch name {
	case "sigmoid":
		return Sigmoid{Alpha: p}, nil
	case "atan":
		return ATan{Alpha: p}, nil
	case "triangle", "piecewise_quadratic":
		return Triangle{Alpha: p}, nil
	case "softsign":
		return SoftSign{Alpha: p}, nil
	case "rect", "rectangular":
		return Rectangular{Width: p}, nil
	default:
		return nil, fmt.Errorf("unknown surrogate %q", text)
	}
}

// Builtin returns one instance of every built-in surrogate with default parameters.
func Builtin() []Function {
	return []Function{
		Sigmoid{},
		ATan{},
		Triangle{},
		SoftSign{},
		Rectangular{},
	}
}

// orDefault returns v, or def when v is not positive.
func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

// wgslFloat formats a float64 as a WGSL f32 literal.
func wgslFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
