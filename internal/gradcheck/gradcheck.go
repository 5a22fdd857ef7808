// Package gradcheck compares the analytic backward recurrence against
// finite differences.
//
// The true forward pass is piecewise constant in the spike, so it cannot be
// differentiated numerically. Instead the check differentiates a relaxed
// forward pass that agrees with the real one at the evaluation point and
// whose spike is a straight-through blend:
//
//	s̃(h) = Θ(H - θ) + σ(h - θ) - σ(H - θ)
//
// where H is the pre-reset trace of the real forward pass and σ is the
// surrogate's primitive. At h = H the value is the real spike and the slope is
// the surrogate derivative. With detach_reset the reset uses Θ(H - θ) alone.
package gradcheck

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/snn/internal/neuron"
	"github.com/born-ml/snn/internal/parallel"
	"github.com/born-ml/snn/internal/surrogate"
)

// Problem is one gradient-check instance. The scalar loss is
//
//	L = Σ_t,c WS[t,c]·s[t,c] + WV[t,c]·v[t,c]
//
// so WS and WV are the upstream gradients fed to the backward pass.
type Problem struct {
	T, N      int
	X         []float64 // [T, N]
	V0        []float64 // [N]
	WS        []float64 // [T, N]
	WV        []float64 // [T, N]
	Params    neuron.Params
	Surrogate surrogate.Function

	// Step is the finite-difference step; zero means 1e-6.
	Step float64
}

// Report holds analytic and numeric gradients and their largest deviation.
type Report struct {
	AnalyticX, NumericX   []float64
	AnalyticV0, NumericV0 []float64
	MaxAbsErr             float64
}

// Run evaluates both gradients.
func Run(pb Problem) (*Report, error) {
	if pb.Surrogate == nil {
		return nil, fmt.Errorf("gradcheck: %w: surrogate function is required", neuron.ErrInvalidConfig)
	}
	size := pb.T * pb.N
	if len(pb.WS) != size || len(pb.WV) != size {
		return nil, fmt.Errorf("gradcheck: %w: loss weights must have T*N=%d elements", neuron.ErrShapeMismatch, size)
	}

	fwd := neuron.ForwardSeq[float64]{
		T: pb.T, N: pb.N,
		X:  pb.X,
		V0: pb.V0,
		S:  make([]float64, size),
		V:  make([]float64, size),
		H:  make([]float64, size),
	}
	if err := neuron.RunForward(fwd, pb.Params, pb.N, parallel.Sequential()); err != nil {
		return nil, fmt.Errorf("gradcheck: forward: %w", err)
	}

	bwd := neuron.BackwardSeq[float64]{
		T: pb.T, N: pb.N,
		GradS:  pb.WS,
		GradV:  pb.WV,
		H:      fwd.H,
		GradX:  make([]float64, size),
		GradV0: make([]float64, pb.N),
	}
	if err := neuron.RunBackward(bwd, pb.Params, pb.Surrogate.Grad64, pb.N, parallel.Sequential()); err != nil {
		return nil, fmt.Errorf("gradcheck: backward: %w", err)
	}

	step := pb.Step
	if step == 0 {
		step = 1e-6
	}
	z := make([]float64, 0, size+pb.N)
	z = append(z, pb.X...)
	z = append(z, pb.V0...)
	loss := func(z []float64) float64 {
		return relaxedLoss(pb, fwd.H, z[:size], z[size:])
	}
	num := fd.Gradient(nil, loss, z, &fd.Settings{Formula: fd.Central, Step: step})

	r := &Report{
		AnalyticX:  bwd.GradX,
		NumericX:   num[:size],
		AnalyticV0: bwd.GradV0,
		NumericV0:  num[size:],
	}
	r.MaxAbsErr = math.Max(maxAbsDiff(r.AnalyticX, r.NumericX), maxAbsDiff(r.AnalyticV0, r.NumericV0))
	return r, nil
}

// relaxedLoss evaluates L along the straight-through forward pass anchored at hNom.
func relaxedLoss(pb Problem, hNom, x, v0 []float64) float64 {
	p := pb.Params
	prim := pb.Surrogate.Primitive
	v := append([]float64(nil), v0...)

	var loss float64
	for t := 0; t < pb.T; t++ {
		for c := 0; c < pb.N; c++ {
			i := t*pb.N + c
			h := v[c] + x[i]
			var hard float64
			if hNom[i] >= p.VThreshold {
				hard = 1
			}
			s := hard + prim(h-p.VThreshold) - prim(hNom[i]-p.VThreshold)
			sReset := s
			if p.DetachReset {
				sReset = hard
			}
			if p.SoftReset {
				v[c] = h - sReset*p.VThreshold
			} else {
				v[c] = sReset*p.VReset + (1-sReset)*h
			}
			loss += pb.WS[i]*s + pb.WV[i]*v[c]
		}
	}
	return loss
}

func maxAbsDiff(a, b []float64) float64 {
	d := make([]float64, len(a))
	floats.SubTo(d, a, b)
	return floats.Norm(d, math.Inf(1))
}
