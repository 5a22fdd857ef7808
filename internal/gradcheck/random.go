package gradcheck

import (
	"math/rand"

	"github.com/born-ml/snn/internal/neuron"
	"github.com/born-ml/snn/internal/surrogate"
)

// RandomProblem builds a reproducible problem whose currents drive a mix of
// spiking and silent steps around a threshold of p.VThreshold.
func RandomProblem(steps, channels int, p neuron.Params, sg surrogate.Function, seed int64) Problem {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // G404: reproducible test input
	size := steps * channels
	pb := Problem{
		T: steps, N: channels,
		X:         make([]float64, size),
		V0:        make([]float64, channels),
		WS:        make([]float64, size),
		WV:        make([]float64, size),
		Params:    p,
		Surrogate: sg,
	}
	scale := p.VThreshold
	if scale == 0 {
		scale = 1
	}
	for i := range pb.X {
		pb.X[i] = scale * (rng.Float64()*0.9 - 0.1)
		pb.WS[i] = rng.NormFloat64()
		pb.WV[i] = rng.NormFloat64()
	}
	for i := range pb.V0 {
		pb.V0[i] = scale * rng.Float64() * 0.5
	}
	return pb
}
