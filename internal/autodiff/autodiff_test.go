package autodiff_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/snn/internal/autodiff"
	"github.com/born-ml/snn/internal/backend/cpu"
	"github.com/born-ml/snn/internal/neuron"
	"github.com/born-ml/snn/internal/surrogate"
	"github.com/born-ml/snn/internal/tensor"
)

func raw64(t *testing.T, data []float64, shape ...int) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(tensor.Shape(shape), tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsFloat64(), data)
	return r
}

func ones64(t *testing.T, shape ...int) *tensor.RawTensor {
	t.Helper()
	r := raw64(t, nil, shape...)
	for i := range r.AsFloat64() {
		r.AsFloat64()[i] = 1
	}
	return r
}

func TestAutodiffBackend_Metadata(t *testing.T) {
	backend := autodiff.New(cpu.New())
	assert.Equal(t, "Autodiff(CPU)", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
	assert.Equal(t, "CPU", backend.Inner().Name())
	assert.Same(t, backend.Tape(), backend.GetTape())
}

func TestTape_Recording(t *testing.T) {
	tape := autodiff.New(cpu.New()).Tape()

	assert.False(t, tape.IsRecording())
	tape.StartRecording()
	assert.True(t, tape.IsRecording())
	tape.StopRecording()
	assert.False(t, tape.IsRecording())
}

func TestTape_Add(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	a := raw64(t, []float64{1, 2}, 2)
	b := raw64(t, []float64{3, 4}, 2)
	sum := backend.Add(a, b)
	twice := backend.Add(sum, a)
	assert.Equal(t, 2, backend.Tape().NumOps())

	grads := autodiff.Backward(tensor.New[float64](twice, backend), backend)
	assert.Equal(t, []float64{2, 2}, grads[a].AsFloat64())
	assert.Equal(t, []float64{1, 1}, grads[b].AsFloat64())
}

func TestMultiStepIFNode_InferenceWhenNotRecording(t *testing.T) {
	backend := autodiff.New(cpu.New())
	x := raw64(t, []float64{0.6, 0.6, 0.6}, 3, 1)
	vInit := raw64(t, []float64{0}, 1)

	s, v, err := backend.MultiStepIFNode(x, vInit, neuron.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0}, s.AsFloat64())
	assert.InDeltaSlice(t, []float64{0.6, 0, 0.6}, v.AsFloat64(), 1e-12)
	assert.Equal(t, 0, backend.Tape().NumOps())

	// Inference needs no surrogate.
	cfg := neuron.DefaultConfig()
	cfg.Surrogate = nil
	_, _, err = backend.MultiStepIFNode(x, vInit, cfg)
	require.NoError(t, err)
}

func TestMultiStepIFNode_TrainingMatchesKernel(t *testing.T) {
	inner := cpu.New()
	backend := autodiff.New(inner)
	cfg := neuron.Config{VThreshold: 1, VReset: neuron.ResetTo(-0.1), Surrogate: surrogate.ATan{Alpha: 2}}

	x := tensor.Randn[float64](tensor.Shape{6, 2, 4}, 0.4, 0.6, 5, inner).Raw()
	vInit := tensor.Uniform[float64](tensor.Shape{2, 4}, -0.3, 0.3, 6, inner).Raw()

	backend.Tape().StartRecording()
	s, v, err := backend.MultiStepIFNode(x, vInit, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.Tape().NumOps())

	grads := autodiff.BackwardSeeds(backend, s, v)

	ref, err := inner.MultiStepIF(x, vInit, cfg.Params(), true)
	require.NoError(t, err)
	assert.Equal(t, ref.S.AsFloat64(), s.AsFloat64())
	assert.Equal(t, ref.V.AsFloat64(), v.AsFloat64())

	wantX, wantV0, err := inner.MultiStepIFBackward(ones64(t, 6, 2, 4), ones64(t, 6, 2, 4), ref.H, cfg.Params(), cfg.Surrogate)
	require.NoError(t, err)
	assert.Equal(t, wantX.AsFloat64(), grads[x].AsFloat64())
	assert.Equal(t, wantV0.AsFloat64(), grads[vInit].AsFloat64())
	assert.Equal(t, vInit.Shape(), grads[vInit].Shape())
}

func TestMultiStepIFNode_MissingGradientIsZero(t *testing.T) {
	inner := cpu.New()
	backend := autodiff.New(inner)
	cfg := neuron.Config{VThreshold: 1, Surrogate: surrogate.Sigmoid{Alpha: 4}}

	x := raw64(t, []float64{0.5, 0.9, 0.3, 0.8}, 4)
	vInit := raw64(t, []float64{0.2}, 1)

	backend.Tape().StartRecording()
	s, _, err := backend.MultiStepIFNode(x, vInit, cfg)
	require.NoError(t, err)
	grads := autodiff.BackwardSeeds(backend, s)

	ref, err := inner.MultiStepIF(x, vInit, cfg.Params(), true)
	require.NoError(t, err)
	wantX, _, err := inner.MultiStepIFBackward(ones64(t, 4), raw64(t, make([]float64, 4), 4), ref.H, cfg.Params(), cfg.Surrogate)
	require.NoError(t, err)
	assert.Equal(t, wantX.AsFloat64(), grads[x].AsFloat64())
}

// Two chained calls linked through LastStep must reproduce one call over
// the concatenated sequence.
func TestMultiStepIFNode_ChainedCalls(t *testing.T) {
	for _, cfg := range []neuron.Config{
		{VThreshold: 1, Surrogate: surrogate.Sigmoid{Alpha: 4}},
		{VThreshold: 1, DetachReset: true, Surrogate: surrogate.Sigmoid{Alpha: 4}},
		{VThreshold: 0.8, VReset: neuron.ResetTo(0), Surrogate: surrogate.Triangle{Alpha: 1}},
		{VThreshold: 0.8, VReset: neuron.ResetTo(0.1), DetachReset: true, Surrogate: surrogate.SoftSign{Alpha: 2}},
	} {
		t.Run(cfg.String(), func(t *testing.T) {
			inner := cpu.New()
			const n = 3
			full := tensor.Randn[float64](tensor.Shape{5, n}, 0.5, 0.5, 9, inner).Raw().AsFloat64()
			x1 := raw64(t, full[:3*n], 3, n)
			x2 := raw64(t, full[3*n:], 2, n)
			xAll := raw64(t, full, 5, n)
			v0 := raw64(t, []float64{0, 0.3, -0.2}, n)

			backend := autodiff.New(inner)
			backend.Tape().StartRecording()
			s1, v1, err := backend.MultiStepIFNode(x1, v0, cfg)
			require.NoError(t, err)
			last, err := backend.LastStep(v1)
			require.NoError(t, err)
			s2, v2, err := backend.MultiStepIFNode(x2, last, cfg)
			require.NoError(t, err)
			assert.Equal(t, 3, backend.Tape().NumOps())

			grads := autodiff.BackwardSeeds(backend, s1, v1, s2, v2)

			ref, err := inner.MultiStepIF(xAll, v0, cfg.Params(), true)
			require.NoError(t, err)
			assert.Equal(t, ref.S.AsFloat64(), append(append([]float64{}, s1.AsFloat64()...), s2.AsFloat64()...))
			assert.Equal(t, ref.V.AsFloat64(), append(append([]float64{}, v1.AsFloat64()...), v2.AsFloat64()...))

			wantX, wantV0, err := inner.MultiStepIFBackward(ones64(t, 5, n), ones64(t, 5, n), ref.H, cfg.Params(), cfg.Surrogate)
			require.NoError(t, err)
			gotX := append(append([]float64{}, grads[x1].AsFloat64()...), grads[x2].AsFloat64()...)
			assert.InDeltaSlice(t, wantX.AsFloat64(), gotX, 1e-12)
			assert.InDeltaSlice(t, wantV0.AsFloat64(), grads[v0].AsFloat64(), 1e-12)
		})
	}
}

func TestMultiStepIFNode_SecondBackwardPanics(t *testing.T) {
	backend := autodiff.New(cpu.New())
	x := raw64(t, []float64{0.5, 1.5}, 2)
	vInit := raw64(t, []float64{0}, 1)

	backend.Tape().StartRecording()
	s, v, err := backend.MultiStepIFNode(x, vInit, neuron.DefaultConfig())
	require.NoError(t, err)

	autodiff.BackwardSeeds(backend, s, v)
	assert.Panics(t, func() { autodiff.BackwardSeeds(backend, s, v) })
}

func TestMultiStepIFNode_Errors(t *testing.T) {
	backend := autodiff.New(cpu.New())
	x := raw64(t, []float64{0.5, 1.5}, 2, 1)

	backend.Tape().StartRecording()
	cfg := neuron.DefaultConfig()
	cfg.Surrogate = nil
	_, _, err := backend.MultiStepIFNode(x, raw64(t, []float64{0}, 1), cfg)
	assert.True(t, errors.Is(err, neuron.ErrInvalidConfig))

	_, _, err = backend.MultiStepIFNode(x, raw64(t, []float64{0, 0}, 2), neuron.DefaultConfig())
	assert.True(t, errors.Is(err, neuron.ErrShapeMismatch))
	assert.Equal(t, 0, backend.Tape().NumOps())
}

func TestTape_ClearReleasesSavedState(t *testing.T) {
	backend := autodiff.New(cpu.New())
	x := raw64(t, []float64{0.5, 1.5}, 2)
	vInit := raw64(t, []float64{0}, 1)

	backend.Tape().StartRecording()
	_, _, err := backend.MultiStepIFNode(x, vInit, neuron.DefaultConfig())
	require.NoError(t, err)

	backend.Tape().Clear()
	assert.Equal(t, 0, backend.Tape().NumOps())
	assert.True(t, backend.Tape().IsRecording())
}

func TestBackward_NoOps(t *testing.T) {
	backend := autodiff.New(cpu.New())
	x := raw64(t, []float64{1}, 1)
	assert.Panics(t, func() { autodiff.Backward(tensor.New[float64](x, backend), backend) })

	grads := backend.Tape().BackwardFrom(map[*tensor.RawTensor]*tensor.RawTensor{x: x}, backend)
	assert.Len(t, grads, 1)
}
