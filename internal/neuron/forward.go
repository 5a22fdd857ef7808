package neuron

import (
	"fmt"

	"github.com/born-ml/snn/internal/tensor"
)

// Float is the set of element types the kernels compute in.
type Float = tensor.Float

// ForwardSeq holds the flat buffers of one forward invocation.
// All [T, N] buffers are time-major: element (t, c) lives at t*N + c.
type ForwardSeq[F Float] struct {
	T, N int
	X    []F // [T, N] input current, read-only
	V0   []F // [N] initial potential, read-only
	S    []F // [T, N] spikes, written
	V    []F // [T, N] post-reset potential, written
	H    []F // [T, N] pre-reset potential, written only when non-nil (training)
}

// Validate checks buffer lengths against T and N.
func (seq ForwardSeq[F]) Validate() error {
	if seq.T <= 0 || seq.N <= 0 {
		return fmt.Errorf("%w: T=%d, N=%d must be positive", ErrShapeMismatch, seq.T, seq.N)
	}
	size := seq.T * seq.N
	if len(seq.X) != size {
		return fmt.Errorf("%w: x has %d elements, want T*N=%d", ErrShapeMismatch, len(seq.X), size)
	}
	if len(seq.V0) != seq.N {
		return fmt.Errorf("%w: v_init has %d elements, want N=%d", ErrShapeMismatch, len(seq.V0), seq.N)
	}
	if len(seq.S) != size || len(seq.V) != size {
		return fmt.Errorf("%w: outputs must have T*N=%d elements", ErrShapeMismatch, size)
	}
	if seq.H != nil && len(seq.H) != size {
		return fmt.Errorf("%w: h_seq has %d elements, want T*N=%d", ErrShapeMismatch, len(seq.H), size)
	}
	return nil
}

// Forward runs the forward recurrence for the channels of one block.
//
// The potential register starts at V0 and is carried through t = 0..T-1 in
// order. Only columns [b.Start, b.Start+b.Len) of any buffer are read or
// written. When seq.H is nil the pre-reset potential stays in a scratch
// register (inference variant); S and V are identical either way.
func Forward[F Float](seq ForwardSeq[F], p Params, b Block) {
	step := forwardHard[F]
	if p.SoftReset {
		step = forwardSoft[F]
	}
	th, vr := F(p.VThreshold), F(p.VReset)

	v := make([]F, b.Len)
	copy(v, span(seq.V0, b))

	if seq.H == nil {
		h := make([]F, b.Len)
		for t := 0; t < seq.T; t++ {
			step(v, row(seq.X, t, seq.N, b), h, row(seq.S, t, seq.N, b), row(seq.V, t, seq.N, b), th, vr)
		}
		return
	}
	for t := 0; t < seq.T; t++ {
		step(v, row(seq.X, t, seq.N, b), row(seq.H, t, seq.N, b), row(seq.S, t, seq.N, b), row(seq.V, t, seq.N, b), th, vr)
	}
}

// forwardSoft advances one timestep with subtractive reset.
func forwardSoft[F Float](v, x, h, s, vOut []F, th, _ F) {
	for j := range v {
		hj := v[j] + x[j]
		var sj F
		if hj >= th {
			sj = 1
		}
		vj := hj - sj*th
		h[j] = hj
		s[j] = sj
		vOut[j] = vj
		v[j] = vj
	}
}

// forwardHard advances one timestep with reset to vr.
func forwardHard[F Float](v, x, h, s, vOut []F, th, vr F) {
	for j := range v {
		hj := v[j] + x[j]
		var sj F
		if hj >= th {
			sj = 1
		}
		vj := sj*vr + (1-sj)*hj
		h[j] = hj
		s[j] = sj
		vOut[j] = vj
		v[j] = vj
	}
}
