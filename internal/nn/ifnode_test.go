package nn_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/snn/internal/autodiff"
	"github.com/born-ml/snn/internal/backend/cpu"
	"github.com/born-ml/snn/internal/neuron"
	"github.com/born-ml/snn/internal/nn"
	"github.com/born-ml/snn/internal/tensor"
)

func softConfig() nn.IFNodeConfig {
	cfg := nn.DefaultIFNodeConfig()
	cfg.VReset = nil
	return cfg
}

func TestIFNode_StatePersistsAcrossCalls(t *testing.T) {
	backend := cpu.New()
	full := tensor.Randn[float32](tensor.Shape{6, 4}, 0.5, 0.5, 1, backend)
	data := full.Data()
	first, err := tensor.FromSlice(data[:12], tensor.Shape{3, 4}, backend)
	require.NoError(t, err)
	second, err := tensor.FromSlice(data[12:], tensor.Shape{3, 4}, backend)
	require.NoError(t, err)

	whole, err := nn.NewIFNode(softConfig(), backend)
	require.NoError(t, err)
	want := whole.Forward(full).Data()

	split, err := nn.NewIFNode(softConfig(), backend)
	require.NoError(t, err)
	got := append(append([]float32{}, split.Forward(first).Data()...), split.Forward(second).Data()...)

	assert.Equal(t, want, got)
	assert.Equal(t, whole.V().Data(), split.V().Data())
	assert.Equal(t, tensor.Shape{4}, split.V().Shape())
}

func TestIFNode_StepMatchesForward(t *testing.T) {
	backend := cpu.New()
	cfg := nn.DefaultIFNodeConfig()
	cfg.VInit = 0.25

	x := tensor.Randn[float32](tensor.Shape{5, 2, 3}, 0.4, 0.6, 2, backend)
	seqNode, err := nn.NewIFNode(cfg, backend)
	require.NoError(t, err)
	want := seqNode.Forward(x).Data()

	stepNode, err := nn.NewIFNode(cfg, backend)
	require.NoError(t, err)
	var got []float32
	for step := 0; step < 5; step++ {
		raw, err := x.Raw().TimeStep(step)
		require.NoError(t, err)
		s, err := stepNode.Step(tensor.New[float32](raw, backend))
		require.NoError(t, err)
		assert.Equal(t, tensor.Shape{2, 3}, s.Shape())
		got = append(got, s.Data()...)
	}
	assert.Equal(t, want, got)
}

func TestIFNode_ScalarStep(t *testing.T) {
	backend := cpu.New()
	node, err := nn.NewIFNode(nn.DefaultIFNodeConfig(), backend)
	require.NoError(t, err)

	var got []float32
	for _, x := range []float32{0.6, 0.6, 0.3} {
		s, err := node.Step(tensor.Full[float32](tensor.Shape{}, x, backend))
		require.NoError(t, err)
		assert.Equal(t, tensor.Shape{}, s.Shape())
		got = append(got, s.Data()...)
	}
	// 0.6 -> 1.2 spikes and resets to 0, then 0.3 stays below threshold.
	assert.Equal(t, []float32{0, 1, 0}, got)
}

func TestIFNode_ResetAndVInit(t *testing.T) {
	backend := cpu.New()
	cfg := softConfig()
	cfg.VInit = 0.5
	node, err := nn.NewIFNode(cfg, backend)
	require.NoError(t, err)
	assert.Nil(t, node.V())

	x, err := tensor.FromSlice([]float32{0.6, 0.1}, tensor.Shape{2, 1}, backend)
	require.NoError(t, err)

	// 0.5+0.6 = 1.1 spikes, leaving 0.1; then 0.2.
	assert.Equal(t, []float32{1, 0}, node.Forward(x).Data())
	assert.InDelta(t, 0.2, node.V().Data()[0], 1e-6)

	// Without reset the node continues from 0.2.
	assert.Equal(t, []float32{0, 0}, node.Forward(x).Data())

	node.Reset()
	assert.Nil(t, node.V())
	assert.Equal(t, []float32{1, 0}, node.Forward(x).Data())
}

func TestIFNode_StoreVSeq(t *testing.T) {
	backend := cpu.New()
	x := tensor.Full[float32](tensor.Shape{4, 3}, 0.3, backend)

	node, err := nn.NewIFNode(softConfig(), backend)
	require.NoError(t, err)
	node.Forward(x)
	assert.Nil(t, node.VSeq())

	cfg := softConfig()
	cfg.StoreVSeq = true
	node, err = nn.NewIFNode(cfg, backend)
	require.NoError(t, err)
	node.Forward(x)
	require.NotNil(t, node.VSeq())
	assert.Equal(t, tensor.Shape{4, 3}, node.VSeq().Shape())
	assert.Equal(t, node.VSeq().Data()[9:], node.V().Data())
}

func TestIFNode_ShapeChangeNeedsReset(t *testing.T) {
	backend := cpu.New()
	node, err := nn.NewIFNode(nn.DefaultIFNodeConfig(), backend)
	require.NoError(t, err)

	node.Forward(tensor.Zeros[float32](tensor.Shape{2, 3}, backend))
	_, err = node.ForwardSeq(tensor.Zeros[float32](tensor.Shape{2, 5}, backend))
	assert.True(t, errors.Is(err, neuron.ErrShapeMismatch))
	assert.Panics(t, func() { node.Forward(tensor.Zeros[float32](tensor.Shape{2, 5}, backend)) })

	node.Reset()
	_, err = node.ForwardSeq(tensor.Zeros[float32](tensor.Shape{2, 5}, backend))
	assert.NoError(t, err)
}

func TestIFNode_InvalidConfig(t *testing.T) {
	backend := cpu.New()

	cfg := nn.DefaultIFNodeConfig()
	cfg.VInit = math.NaN()
	_, err := nn.NewIFNode(cfg, backend)
	assert.True(t, errors.Is(err, neuron.ErrInvalidConfig))

	cfg = nn.DefaultIFNodeConfig()
	cfg.VThreshold = math.Inf(1)
	_, err = nn.NewIFNode(cfg, backend)
	assert.True(t, errors.Is(err, neuron.ErrInvalidConfig))
}

func TestIFNode_StateDict(t *testing.T) {
	backend := cpu.New()
	x := tensor.Randn[float32](tensor.Shape{3, 4}, 0.5, 0.5, 3, backend)

	node, err := nn.NewIFNode(softConfig(), backend)
	require.NoError(t, err)
	assert.Empty(t, node.StateDict())
	node.Forward(x)

	saved := node.StateDict()
	require.Contains(t, saved, "v")

	other, err := nn.NewIFNode(softConfig(), backend)
	require.NoError(t, err)
	require.NoError(t, other.LoadStateDict(saved))
	assert.Equal(t, node.Forward(x).Data(), other.Forward(x).Data())

	assert.Error(t, other.LoadStateDict(map[string]*tensor.RawTensor{}))
	wrong := tensor.Zeros[float64](tensor.Shape{4}, backend).Raw()
	assert.True(t, errors.Is(other.LoadStateDict(map[string]*tensor.RawTensor{"v": wrong}), neuron.ErrUnsupportedDType))
}

func TestSequential(t *testing.T) {
	backend := cpu.New()
	first, err := nn.NewIFNode(softConfig(), backend)
	require.NoError(t, err)
	second, err := nn.NewIFNode(nn.IFNodeConfig{Config: neuron.Config{VThreshold: 0.5, VReset: neuron.ResetTo(0)}}, backend)
	require.NoError(t, err)

	net := nn.NewSequential[*cpu.CPUBackend](first, second)
	assert.Equal(t, 2, net.Len())
	assert.Same(t, first, net.Module(0))
	assert.Panics(t, func() { net.Module(2) })

	x := tensor.Full[float32](tensor.Shape{4, 2}, 0.6, backend)
	out := net.Forward(x)
	// First layer spikes at t=1 and t=3; each spike crosses the second threshold.
	assert.Equal(t, []float32{0, 0, 1, 1, 0, 0, 1, 1}, out.Data())

	state := net.StateDict()
	assert.Contains(t, state, "0.v")
	assert.Contains(t, state, "1.v")

	net.Reset()
	assert.Nil(t, first.V())
	assert.Nil(t, second.V())

	require.NoError(t, net.LoadStateDict(state))
	assert.NotNil(t, first.V())
	assert.NotNil(t, second.V())
}

func TestIFNode_Training(t *testing.T) {
	backend := autodiff.New(cpu.New())
	cfg := nn.DefaultIFNodeConfig()
	node, err := nn.NewIFNode(cfg, backend)
	require.NoError(t, err)

	backend.Tape().StartRecording()
	x1 := tensor.Randn[float32](tensor.Shape{3, 4}, 0.5, 0.5, 4, backend)
	x2 := tensor.Randn[float32](tensor.Shape{4}, 0.5, 0.5, 5, backend)
	node.Forward(x1)
	s, err := node.Step(x2)
	require.NoError(t, err)

	grads := autodiff.Backward(s, backend)
	require.Contains(t, grads, x1.Raw())
	require.Contains(t, grads, x2.Raw())
	assert.Equal(t, x1.Shape(), grads[x1.Raw()].Shape())
	assert.Equal(t, x2.Shape(), grads[x2.Raw()].Shape())

	// Each x2 channel only affects its own spike at a positive surrogate slope.
	for _, g := range grads[x2.Raw()].AsFloat32() {
		assert.Greater(t, g, float32(0))
	}
	backend.Tape().Clear()
}
