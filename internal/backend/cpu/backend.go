// Package cpu implements the CPU backend: integrate-and-fire recurrences over
// channel blocks executed on goroutines.
package cpu

import (
	"github.com/born-ml/snn/internal/autotune"
	"github.com/born-ml/snn/internal/parallel"
	"github.com/born-ml/snn/internal/tensor"
)

// Config configures a CPUBackend.
type Config struct {
	// Parallel controls how channel blocks are spread over goroutines.
	Parallel parallel.Config

	// BlockSize picks the channel-block size per invocation.
	// Nil means autotune.Heuristic sized for Parallel.NumWorkers.
	BlockSize autotune.Strategy
}

// DefaultConfig returns a configuration using every CPU and the heuristic
// block-size strategy.
func DefaultConfig() Config {
	return Config{Parallel: parallel.DefaultConfig()}
}

// CPUBackend runs the neuron kernels on the CPU.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
	blocks   autotune.Strategy
}

// New creates a new CPU backend with DefaultConfig.
func New() *CPUBackend {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a CPU backend with the given configuration.
func NewWithConfig(cfg Config) *CPUBackend {
	blocks := cfg.BlockSize
	if blocks == nil {
		blocks = autotune.Heuristic{Workers: cfg.Parallel.Workers()}
	}
	return &CPUBackend{
		device:   tensor.CPU,
		parallel: cfg.Parallel,
		blocks:   blocks,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// BlockStrategy returns the block-size strategy in use.
func (cpu *CPUBackend) BlockStrategy() autotune.Strategy {
	return cpu.blocks
}
