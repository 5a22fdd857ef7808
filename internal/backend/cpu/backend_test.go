package cpu

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/snn/internal/autotune"
	"github.com/born-ml/snn/internal/neuron"
	"github.com/born-ml/snn/internal/parallel"
	"github.com/born-ml/snn/internal/surrogate"
	"github.com/born-ml/snn/internal/tensor"
)

func rawFrom[F float32 | float64](t *testing.T, data []F, shape ...int) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(tensor.Shape(shape), tensor.DataTypeOf[F](), tensor.CPU)
	require.NoError(t, err)
	copy(tensor.Floats[F](raw), data)
	return raw
}

func softParams() neuron.Params {
	return neuron.Params{VThreshold: 1, SoftReset: true}
}

func hardParams() neuron.Params {
	return neuron.Params{VThreshold: 1, VReset: 0}
}

func TestCPUBackend_New(t *testing.T) {
	backend := New()
	require.NotNil(t, backend)
	assert.Equal(t, "CPU", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
	assert.IsType(t, autotune.Heuristic{}, backend.BlockStrategy())

	fixed := NewWithConfig(Config{Parallel: parallel.Sequential(), BlockSize: autotune.Fixed(32)})
	assert.Equal(t, autotune.Fixed(32), fixed.BlockStrategy())
}

func TestCPUBackend_Add(t *testing.T) {
	backend := New()

	a := rawFrom(t, []float32{1, 2, 3, 4}, 2, 2)
	b := rawFrom(t, []float32{10, 20, 30, 40}, 2, 2)
	sum := backend.Add(a, b)
	assert.Equal(t, []float32{11, 22, 33, 44}, sum.AsFloat32())
	assert.Equal(t, []float32{1, 2, 3, 4}, a.AsFloat32(), "operands are not modified")

	c := rawFrom(t, []float64{0.5, -0.5}, 2)
	d := rawFrom(t, []float64{0.25, 0.25}, 2)
	assert.Equal(t, []float64{0.75, -0.25}, backend.Add(c, d).AsFloat64())

	assert.Panics(t, func() { backend.Add(a, rawFrom(t, []float32{1, 2}, 2)) })
	assert.Panics(t, func() { backend.Add(c, rawFrom(t, []float32{1, 2}, 2)) })
}

func TestCPUBackend_MultiStepIF_Trace(t *testing.T) {
	backend := New()

	// One channel, constant current 0.6, soft reset at threshold 1.
	x := rawFrom(t, []float64{0.6, 0.6, 0.6, 0.6}, 4)
	vInit := rawFrom(t, []float64{0}, 1)

	res, err := backend.MultiStepIF(x, vInit, softParams(), true)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 1, 0, 1}, res.S.AsFloat64())
	assert.InDeltaSlice(t, []float64{0.6, 0.2, 0.8, 0.4}, res.V.AsFloat64(), 1e-12)
	assert.InDeltaSlice(t, []float64{0.6, 1.2, 0.8, 1.4}, res.H.AsFloat64(), 1e-12)
	assert.Equal(t, tensor.Shape{4}, res.S.Shape())

	res, err = backend.MultiStepIF(x, vInit, hardParams(), false)
	require.NoError(t, err)
	assert.Nil(t, res.H)
	assert.Equal(t, []float64{0, 1, 0, 1}, res.S.AsFloat64())
	assert.InDeltaSlice(t, []float64{0.6, 0, 0.6, 0}, res.V.AsFloat64(), 1e-12)
}

func TestCPUBackend_MultiStepIF_ModesAgree(t *testing.T) {
	backend := New()
	x := tensor.Randn[float32](tensor.Shape{12, 3, 50}, 0.4, 0.6, 7, backend).Raw()
	vInit := tensor.Uniform[float32](tensor.Shape{3, 50}, -0.5, 0.5, 8, backend).Raw()

	for _, p := range []neuron.Params{softParams(), hardParams(), {VThreshold: 0.5, VReset: -0.2}} {
		train, err := backend.MultiStepIF(x, vInit, p, true)
		require.NoError(t, err)
		infer, err := backend.MultiStepIF(x, vInit, p, false)
		require.NoError(t, err)

		assert.Equal(t, train.S.AsFloat32(), infer.S.AsFloat32())
		assert.Equal(t, train.V.AsFloat32(), infer.V.AsFloat32())
		assert.Equal(t, x.Shape(), train.H.Shape())
	}
}

func TestCPUBackend_BlockSizeInvariance(t *testing.T) {
	base := New()
	x := tensor.Randn[float64](tensor.Shape{9, 301}, 0.3, 0.7, 1, base).Raw()
	vInit := tensor.Zeros[float64](tensor.Shape{301}, base).Raw()
	gradS := tensor.Randn[float64](tensor.Shape{9, 301}, 0, 1, 2, base).Raw()
	gradV := tensor.Randn[float64](tensor.Shape{9, 301}, 0, 1, 3, base).Raw()
	sg := surrogate.ATan{Alpha: 2}

	type outputs struct{ s, v, gx, gv0 []float64 }
	run := func(backend *CPUBackend, p neuron.Params) outputs {
		res, err := backend.MultiStepIF(x, vInit, p, true)
		require.NoError(t, err)
		gx, gv0, err := backend.MultiStepIFBackward(gradS, gradV, res.H, p, sg)
		require.NoError(t, err)
		return outputs{res.S.AsFloat64(), res.V.AsFloat64(), gx.AsFloat64(), gv0.AsFloat64()}
	}

	for _, p := range []neuron.Params{softParams(), hardParams(), {VThreshold: 1, SoftReset: true, DetachReset: true}} {
		want := run(NewWithConfig(Config{Parallel: parallel.Sequential(), BlockSize: autotune.Fixed(1024)}), p)
		for _, bs := range []int{1, 7, 128, 300, 301} {
			cfg := Config{
				Parallel:  parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1},
				BlockSize: autotune.Fixed(bs),
			}
			got := run(NewWithConfig(cfg), p)
			assert.Equal(t, want, got, "block size %d, params %+v", bs, p)
		}
	}
}

func TestCPUBackend_MultiStepIFBackward_SingleStep(t *testing.T) {
	backend := New()
	sg := surrogate.Sigmoid{Alpha: 4}

	x := rawFrom(t, []float64{0.5}, 1, 1)
	vInit := rawFrom(t, []float64{0}, 1)
	p := neuron.Params{VThreshold: 1, SoftReset: true, DetachReset: true}

	res, err := backend.MultiStepIF(x, vInit, p, true)
	require.NoError(t, err)

	gradS := rawFrom(t, []float64{2}, 1, 1)
	gradV := rawFrom(t, []float64{0.25}, 1, 1)
	gx, gv0, err := backend.MultiStepIFBackward(gradS, gradV, res.H, p, sg)
	require.NoError(t, err)

	want := 0.25 + 2*sg.Grad64(0.5-1)
	assert.InDelta(t, want, gx.AsFloat64()[0], 1e-12)
	assert.InDelta(t, want, gv0.AsFloat64()[0], 1e-12)
	assert.Equal(t, tensor.Shape{1}, gv0.Shape())
}

func TestCPUBackend_MultiStepIFBackward_Shapes(t *testing.T) {
	backend := New()
	x := tensor.Randn[float32](tensor.Shape{5, 2, 3}, 0.5, 0.5, 11, backend).Raw()
	vInit := tensor.Zeros[float32](tensor.Shape{2, 3}, backend).Raw()

	res, err := backend.MultiStepIF(x, vInit, hardParams(), true)
	require.NoError(t, err)

	ones := tensor.Full[float32](tensor.Shape{5, 2, 3}, 1, backend).Raw()
	gx, gv0, err := backend.MultiStepIFBackward(ones, ones, res.H, hardParams(), surrogate.Triangle{Alpha: 1})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{5, 2, 3}, gx.Shape())
	assert.Equal(t, tensor.Shape{2, 3}, gv0.Shape())
	assert.Equal(t, tensor.Float32, gx.DType())
}

func TestCPUBackend_Tuner(t *testing.T) {
	tuner := autotune.NewTuner(autotune.TunerConfig{Reps: 1})
	backend := NewWithConfig(Config{Parallel: parallel.DefaultConfig(), BlockSize: tuner})

	x := tensor.Randn[float32](tensor.Shape{4, 600}, 0.5, 0.5, 3, backend).Raw()
	vInit := tensor.Zeros[float32](tensor.Shape{600}, backend).Raw()

	ref, err := New().MultiStepIF(x, vInit, softParams(), false)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		res, err := backend.MultiStepIF(x, vInit, softParams(), false)
		require.NoError(t, err)
		assert.Equal(t, ref.V.AsFloat32(), res.V.AsFloat32())
	}
	assert.Equal(t, 1, tuner.Len())

	bs, ok := tuner.Cached(autotune.Key{T: 4, N: 600, DType: tensor.Float32, Mode: "fwd/soft/infer"})
	require.True(t, ok)
	assert.Contains(t, autotune.DefaultCandidates(), bs)

	_, err = backend.MultiStepIF(x, vInit, softParams(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, tuner.Len())
}

func TestCPUBackend_Errors(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{0.1, 0.2, 0.3, 0.4}, 2, 2)
	vInit := rawFrom(t, []float32{0, 0}, 2)
	sg := surrogate.Sigmoid{Alpha: 4}

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"v_init size", func() error {
			_, err := backend.MultiStepIF(x, rawFrom(t, []float32{0, 0, 0}, 3), softParams(), false)
			return err
		}, neuron.ErrShapeMismatch},
		{"mixed dtype", func() error {
			_, err := backend.MultiStepIF(x, rawFrom(t, []float64{0, 0}, 2), softParams(), false)
			return err
		}, neuron.ErrUnsupportedDType},
		{"int input", func() error {
			ints, err := tensor.NewRaw(tensor.Shape{2, 2}, tensor.Int32, tensor.CPU)
			require.NoError(t, err)
			_, err = backend.MultiStepIF(ints, vInit, softParams(), false)
			return err
		}, neuron.ErrUnsupportedDType},
		{"non-finite threshold", func() error {
			_, err := backend.MultiStepIF(x, vInit, neuron.Params{VThreshold: math.Inf(1), SoftReset: true}, false)
			return err
		}, neuron.ErrInvalidConfig},
		{"missing h", func() error {
			_, _, err := backend.MultiStepIFBackward(x, x, nil, softParams(), sg)
			return err
		}, neuron.ErrMissingState},
		{"released h", func() error {
			h := x.Copy()
			h.Release()
			_, _, err := backend.MultiStepIFBackward(x, x, h, softParams(), sg)
			return err
		}, neuron.ErrMissingState},
		{"gradient shape", func() error {
			_, _, err := backend.MultiStepIFBackward(x, rawFrom(t, []float32{0, 0}, 1, 2), x, softParams(), sg)
			return err
		}, neuron.ErrShapeMismatch},
		{"nil surrogate", func() error {
			_, _, err := backend.MultiStepIFBackward(x, x, x, softParams(), nil)
			return err
		}, neuron.ErrInvalidConfig},
		{"invalid block size", func() error {
			bad := NewWithConfig(Config{Parallel: parallel.Sequential(), BlockSize: autotune.Fixed(0)})
			_, err := bad.MultiStepIF(x, vInit, softParams(), false)
			return err
		}, neuron.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestCPUBackend_LastStep(t *testing.T) {
	backend := New()
	seq := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, 3, 2)
	last, err := backend.LastStep(seq)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2}, last.Shape())
	assert.Equal(t, []float32{5, 6}, last.AsFloat32())
}

func TestCPUBackend_MultiStepIFNode(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{0.6, 0.6, 0.6}, 3)
	vInit := rawFrom(t, []float32{0}, 1)

	s, v, err := backend.MultiStepIFNode(x, vInit, neuron.Config{VThreshold: 1})
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, s.AsFloat32())
	assert.InDeltaSlice(t, []float32{0.6, 0.2, 0.8}, v.AsFloat32(), 1e-6)

	view := backend.Reshape(x, tensor.Shape{3, 1})
	assert.Equal(t, tensor.Shape{3, 1}, view.Shape())
	assert.Panics(t, func() { backend.Reshape(x, tensor.Shape{2}) })
}
