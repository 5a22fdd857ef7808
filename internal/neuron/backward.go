package neuron

import "fmt"

// BackwardSeq holds the flat buffers of one backward invocation.
type BackwardSeq[F Float] struct {
	T, N   int
	GradS  []F // [T, N] gradient flowing into the spike output
	GradV  []F // [T, N] gradient flowing into the potential output
	H      []F // [T, N] pre-reset potential saved by the training forward pass
	GradX  []F // [T, N] gradient w.r.t. the input current, written
	GradV0 []F // [N] gradient w.r.t. the initial potential, written
}

// Validate checks buffer lengths against T and N.
func (seq BackwardSeq[F]) Validate() error {
	if seq.H == nil {
		return fmt.Errorf("%w: backward requires h_seq from a training forward pass", ErrMissingState)
	}
	if seq.T <= 0 || seq.N <= 0 {
		return fmt.Errorf("%w: T=%d, N=%d must be positive", ErrShapeMismatch, seq.T, seq.N)
	}
	size := seq.T * seq.N
	for _, buf := range []struct {
		name string
		n    int
	}{
		{"grad_s_seq", len(seq.GradS)},
		{"grad_v_seq", len(seq.GradV)},
		{"h_seq", len(seq.H)},
		{"grad_x_seq", len(seq.GradX)},
	} {
		if buf.n != size {
			return fmt.Errorf("%w: %s has %d elements, want T*N=%d", ErrShapeMismatch, buf.name, buf.n, size)
		}
	}
	if len(seq.GradV0) != seq.N {
		return fmt.Errorf("%w: grad_v_init has %d elements, want N=%d", ErrShapeMismatch, len(seq.GradV0), seq.N)
	}
	return nil
}

// backwardStep computes one reverse timestep: it reads the carried gradient
// acc (∂L/∂v[t]), writes ∂L/∂h[t] into gx and carries it on in acc.
type backwardStep[F Float] func(acc, gs, gv, h, gx []F, th, vr F, sg func(F) F)

// selectBackward picks the variant for (soft_reset, detach_reset) once per invocation.
func selectBackward[F Float](p Params) backwardStep[F] {
	switch {
	case p.SoftReset && p.DetachReset:
		return backwardSoftDetach[F]
	case p.SoftReset:
		return backwardSoft[F]
	case p.DetachReset:
		return backwardHardDetach[F]
	default:
		return backwardHard[F]
	}
}

// Backward runs the backward recurrence for the channels of one block.
//
// Time runs t = T-1..0 with an accumulator starting at zero. Since
// h[t] = v[t-1] + x[t], the gradient w.r.t. h[t] is both the gradient
// w.r.t. x[t] and the gradient carried into v[t-1]; after t = 0 the carried
// value is the gradient w.r.t. v_init.
func Backward[F Float](seq BackwardSeq[F], p Params, sg func(F) F, b Block) {
	step := selectBackward[F](p)
	th, vr := F(p.VThreshold), F(p.VReset)

	acc := make([]F, b.Len)
	for t := seq.T - 1; t >= 0; t-- {
		step(acc,
			row(seq.GradS, t, seq.N, b),
			row(seq.GradV, t, seq.N, b),
			row(seq.H, t, seq.N, b),
			row(seq.GradX, t, seq.N, b),
			th, vr, sg)
	}
	copy(span(seq.GradV0, b), acc)
}

// v = h - s·th with s treated as a constant: ∂v/∂h = 1.
func backwardSoftDetach[F Float](acc, gs, gv, h, gx []F, th, _ F, sg func(F) F) {
	for j := range acc {
		c := gv[j] + acc[j]
		gh := c + gs[j]*sg(h[j]-th)
		gx[j] = gh
		acc[j] = gh
	}
}

// v = h - s·th: ∂v/∂h = 1 - th·sg.
func backwardSoft[F Float](acc, gs, gv, h, gx []F, th, _ F, sg func(F) F) {
	for j := range acc {
		c := gv[j] + acc[j]
		gh := c + (gs[j]-th*c)*sg(h[j]-th)
		gx[j] = gh
		acc[j] = gh
	}
}

// v = s·vr + (1-s)·h with s treated as a constant: ∂v/∂h = 1 - s.
func backwardHardDetach[F Float](acc, gs, gv, h, gx []F, th, _ F, sg func(F) F) {
	for j := range acc {
		c := gv[j] + acc[j]
		var s F
		if h[j] >= th {
			s = 1
		}
		gh := c*(1-s) + gs[j]*sg(h[j]-th)
		gx[j] = gh
		acc[j] = gh
	}
}

// v = s·vr + (1-s)·h: ∂v/∂h = (1 - s) + (vr - h)·sg.
func backwardHard[F Float](acc, gs, gv, h, gx []F, th, vr F, sg func(F) F) {
	for j := range acc {
		c := gv[j] + acc[j]
		var s F
		if h[j] >= th {
			s = 1
		}
		gh := c*(1-s) + (gs[j]+c*(vr-h[j]))*sg(h[j]-th)
		gx[j] = gh
		acc[j] = gh
	}
}
