// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	"github.com/born-ml/snn/autodiff"
	internalcpu "github.com/born-ml/snn/internal/backend/cpu"
	"github.com/born-ml/snn/internal/autotune"
	"github.com/born-ml/snn/neuron"
	"github.com/born-ml/snn/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Config controls goroutine fan-out and block-size selection.
type Config = internalcpu.Config

// Compile-time checks for the interfaces Backend implements.
var (
	_ tensor.Backend  = (*Backend)(nil)
	_ neuron.Kernel   = (*Backend)(nil)
	_ autodiff.Kernel = (*Backend)(nil)
)

// New creates a new CPU backend with the default configuration.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{8, 128}, backend)
func New() *Backend {
	return internalcpu.New()
}

// DefaultConfig returns the configuration New uses.
func DefaultConfig() Config {
	return internalcpu.DefaultConfig()
}

// NewWithConfig creates a CPU backend with an explicit configuration.
//
// Example:
//
//	cfg := cpu.DefaultConfig()
//	cfg.BlockSize = cpu.Autotune()
//	backend := cpu.NewWithConfig(cfg)
func NewWithConfig(cfg Config) *Backend {
	return internalcpu.NewWithConfig(cfg)
}

// FixedBlockSize returns a strategy that always uses n channels per block.
func FixedBlockSize(n int) autotune.Strategy {
	return autotune.Fixed(n)
}

// Autotune returns a strategy that times the candidate block sizes on the
// first call for each problem shape and caches the fastest.
func Autotune() autotune.Strategy {
	return autotune.NewTuner(autotune.DefaultTunerConfig())
}
