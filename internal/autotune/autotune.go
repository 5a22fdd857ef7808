// Package autotune chooses the channel-block size for the neuron kernels.
//
// Block size only changes execution granularity, never results, so every
// strategy here is free to pick any positive size. Strategies receive a run
// callback that executes the kernel with a given block size; the kernels only
// write their outputs, so running a candidate more than once is harmless.
package autotune

import (
	"fmt"
	"runtime"

	"github.com/born-ml/snn/internal/tensor"
)

// Key identifies a tuning problem. Mode distinguishes the kernel variant,
// e.g. "fwd/soft/train" or "bwd/hard/detach".
type Key struct {
	T, N  int
	DType tensor.DataType
	Mode  string
}

// String returns a compact description of the key.
func (k Key) String() string {
	return fmt.Sprintf("T=%d N=%d %s %s", k.T, k.N, k.DType, k.Mode)
}

// Strategy picks a block size for a kernel invocation.
//
// run executes the kernel with the given block size. Strategies that do not
// measure anything never call it; callers always run the chosen size
// themselves afterwards.
type Strategy interface {
	BlockSize(key Key, run func(blockSize int)) int
}

// DefaultCandidates returns the block sizes searched by default:
// f·w·32 for f in {1, 2} and w in {4, 8}.
func DefaultCandidates() []int {
	return []int{128, 256, 512, 1024}
}

// Fixed always returns the same block size.
type Fixed int

// BlockSize implements Strategy.
func (f Fixed) BlockSize(Key, func(int)) int {
	return int(f)
}

// Heuristic picks the largest candidate that still yields at least one block
// per worker, falling back to the smallest candidate for small N.
type Heuristic struct {
	Candidates []int // Ascending; nil means DefaultCandidates.
	Workers    int   // Zero means runtime.NumCPU.
}

// BlockSize implements Strategy.
func (h Heuristic) BlockSize(key Key, _ func(int)) int {
	cands := h.Candidates
	if len(cands) == 0 {
		cands = DefaultCandidates()
	}
	workers := h.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	best := cands[0]
	for _, c := range cands {
		if (key.N+c-1)/c >= workers {
			best = c
		}
	}
	return best
}
