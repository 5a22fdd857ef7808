package gradcheck

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/snn/internal/neuron"
	"github.com/born-ml/snn/internal/surrogate"
)

func variants() []neuron.Params {
	return []neuron.Params{
		{VThreshold: 1, SoftReset: true, DetachReset: true},
		{VThreshold: 1, SoftReset: true},
		{VThreshold: 1, VReset: 0, DetachReset: true},
		{VThreshold: 1, VReset: -0.2},
	}
}

func name(p neuron.Params) string {
	return p.BackwardMode()
}

// TestSingleStepSoftDetach is the T=1 sanity check for subtractive reset
// with a detached reset, across several surrogates.
func TestSingleStepSoftDetach(t *testing.T) {
	p := neuron.Params{VThreshold: 1, SoftReset: true, DetachReset: true}
	sgs := []surrogate.Function{
		surrogate.Triangle{Alpha: 1},
		surrogate.Sigmoid{Alpha: 4},
		surrogate.ATan{Alpha: 2},
	}
	for _, sg := range sgs {
		t.Run(sg.Name(), func(t *testing.T) {
			pb := Problem{
				T: 1, N: 3,
				X:         []float64{0.5, 0.1, 0.9},
				V0:        []float64{0.6, 0.2, 0.3},
				WS:        []float64{1.0, -0.5, 2.0},
				WV:        []float64{0.3, 1.0, -1.0},
				Params:    p,
				Surrogate: sg,
			}
			r, err := Run(pb)
			require.NoError(t, err)
			assert.Less(t, r.MaxAbsErr, 1e-6, "analytic %v numeric %v", r.AnalyticX, r.NumericX)

			// dL/dx = wv + ws·sg(h - θ) when the reset is detached.
			for c := 0; c < pb.N; c++ {
				h := pb.V0[c] + pb.X[c]
				want := pb.WV[c] + pb.WS[c]*sg.Grad64(h-1)
				assert.InDelta(t, want, r.AnalyticX[c], 1e-12)
			}
		})
	}
}

// TestAllVariants checks every (reset, detach) combination over several
// timesteps, so the carried accumulator is exercised too.
func TestAllVariants(t *testing.T) {
	sgs := []surrogate.Function{
		surrogate.Triangle{Alpha: 1},
		surrogate.Sigmoid{Alpha: 4},
		surrogate.ATan{Alpha: 2},
		surrogate.SoftSign{Alpha: 2},
	}
	for _, p := range variants() {
		for _, sg := range sgs {
			t.Run(fmt.Sprintf("%s/%s", name(p), sg.Name()), func(t *testing.T) {
				pb := RandomProblem(6, 5, p, sg, 7)
				r, err := Run(pb)
				require.NoError(t, err)
				assert.Less(t, r.MaxAbsErr, 1e-5)
			})
		}
	}
}

func TestRunErrors(t *testing.T) {
	pb := RandomProblem(2, 2, variants()[0], nil, 1)
	_, err := Run(pb)
	assert.ErrorIs(t, err, neuron.ErrInvalidConfig)

	pb = RandomProblem(2, 2, variants()[0], surrogate.Sigmoid{}, 1)
	pb.WS = pb.WS[:1]
	_, err = Run(pb)
	assert.ErrorIs(t, err, neuron.ErrShapeMismatch)
}
