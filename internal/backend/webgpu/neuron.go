//go:build windows

package webgpu

import (
	"fmt"

	"github.com/born-ml/snn/internal/neuron"
	"github.com/born-ml/snn/internal/surrogate"
	"github.com/born-ml/snn/internal/tensor"
	"github.com/go-webgpu/webgpu/wgpu"
)

// MultiStepIF runs the integrate-and-fire forward recurrence on the GPU.
// Only float32 tensors are accepted.
func (b *Backend) MultiStepIF(x, vInit *tensor.RawTensor, p neuron.Params, saveIntermediates bool) (*neuron.ForwardResult, error) {
	steps, channels, err := neuron.CheckForward(x, vInit)
	if err != nil {
		return nil, fmt.Errorf("webgpu: MultiStepIF: %w", err)
	}
	if x.DType() != tensor.Float32 {
		return nil, fmt.Errorf("webgpu: MultiStepIF: %w: %s (only float32 supported)", neuron.ErrUnsupportedDType, x.DType())
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("webgpu: MultiStepIF: %w", err)
	}

	mode := p.ForwardMode(saveIntermediates)
	pipeline := b.pipeline(shaderKey(mode, nil), ifForwardShader(p, saveIntermediates))

	bufferX := b.createBuffer(x.Data(), storageUsage)
	defer bufferX.Release()
	bufferV0 := b.createBuffer(vInit.Data(), storageUsage)
	defer bufferV0.Release()
	bufferParams := b.createUniformBuffer(ifUniform(steps, channels, float32(p.VThreshold), float32(p.VReset)))
	defer bufferParams.Release()

	//nolint:gosec // G115: integer overflow conversion int -> uint64
	seqSize := uint64(x.ByteSize())
	//nolint:gosec // G115: integer overflow conversion int -> uint64
	stepSize := uint64(vInit.ByteSize())

	outputs := 2
	if saveIntermediates {
		outputs = 3
	}
	buffers := make([]*wgpu.Buffer, outputs)
	for i := range buffers {
		buffers[i] = b.bufferPool.Acquire(seqSize, storageUsage)
		defer b.bufferPool.Release(buffers[i], seqSize, storageUsage)
	}

	entries := []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufferX, 0, seqSize),
		wgpu.BufferBindingEntry(1, bufferV0, 0, stepSize),
		wgpu.BufferBindingEntry(2, buffers[0], 0, seqSize),
		wgpu.BufferBindingEntry(3, buffers[1], 0, seqSize),
		wgpu.BufferBindingEntry(4, bufferParams, 0, 16),
	}
	if saveIntermediates {
		entries = append(entries, wgpu.BufferBindingEntry(5, buffers[2], 0, seqSize))
	}
	b.dispatch(pipeline, entries, channels)

	res := &neuron.ForwardResult{
		S: b.alloc(x.Shape()),
		V: b.alloc(x.Shape()),
	}
	targets := []*tensor.RawTensor{res.S, res.V}
	if saveIntermediates {
		res.H = b.alloc(x.Shape())
		targets = append(targets, res.H)
	}
	for i, dst := range targets {
		if err := b.readBuffer(buffers[i], dst.Data()); err != nil {
			return nil, fmt.Errorf("webgpu: MultiStepIF: %w", err)
		}
	}
	return res, nil
}

// MultiStepIFBackward runs the integrate-and-fire backward recurrence on the
// GPU. The surrogate must provide a WGSL form (see surrogate.Shader).
func (b *Backend) MultiStepIFBackward(gradS, gradV, h *tensor.RawTensor, p neuron.Params, sg surrogate.Function) (gradX, gradVInit *tensor.RawTensor, err error) {
	steps, channels, err := neuron.CheckBackward(gradS, gradV, h)
	if err != nil {
		return nil, nil, fmt.Errorf("webgpu: MultiStepIFBackward: %w", err)
	}
	if gradS.DType() != tensor.Float32 {
		return nil, nil, fmt.Errorf("webgpu: MultiStepIFBackward: %w: %s (only float32 supported)", neuron.ErrUnsupportedDType, gradS.DType())
	}
	if err := p.Validate(); err != nil {
		return nil, nil, fmt.Errorf("webgpu: MultiStepIFBackward: %w", err)
	}
	if sg == nil {
		return nil, nil, fmt.Errorf("webgpu: MultiStepIFBackward: %w: surrogate function is required", neuron.ErrInvalidConfig)
	}

	code, err := ifBackwardShader(p, sg)
	if err != nil {
		return nil, nil, fmt.Errorf("webgpu: MultiStepIFBackward: %w", err)
	}
	pipeline := b.pipeline(shaderKey(p.BackwardMode(), sg), code)

	bufferGradS := b.createBuffer(gradS.Data(), storageUsage)
	defer bufferGradS.Release()
	bufferGradV := b.createBuffer(gradV.Data(), storageUsage)
	defer bufferGradV.Release()
	bufferH := b.createBuffer(h.Data(), storageUsage)
	defer bufferH.Release()
	bufferParams := b.createUniformBuffer(ifUniform(steps, channels, float32(p.VThreshold), float32(p.VReset)))
	defer bufferParams.Release()

	//nolint:gosec // G115: integer overflow conversion int -> uint64
	seqSize := uint64(gradS.ByteSize())
	//nolint:gosec // G115: integer overflow conversion int -> uint64
	stepSize := uint64(channels * 4)

	bufferGradX := b.bufferPool.Acquire(seqSize, storageUsage)
	defer b.bufferPool.Release(bufferGradX, seqSize, storageUsage)
	bufferGradV0 := b.bufferPool.Acquire(stepSize, storageUsage)
	defer b.bufferPool.Release(bufferGradV0, stepSize, storageUsage)

	b.dispatch(pipeline, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufferGradS, 0, seqSize),
		wgpu.BufferBindingEntry(1, bufferGradV, 0, seqSize),
		wgpu.BufferBindingEntry(2, bufferH, 0, seqSize),
		wgpu.BufferBindingEntry(3, bufferGradX, 0, seqSize),
		wgpu.BufferBindingEntry(4, bufferGradV0, 0, stepSize),
		wgpu.BufferBindingEntry(5, bufferParams, 0, 16),
	}, channels)

	gradX = b.alloc(gradS.Shape())
	gradVInit = b.alloc(gradS.Shape().Step())
	if err := b.readBuffer(bufferGradX, gradX.Data()); err != nil {
		return nil, nil, fmt.Errorf("webgpu: MultiStepIFBackward: %w", err)
	}
	if err := b.readBuffer(bufferGradV0, gradVInit.Data()); err != nil {
		return nil, nil, fmt.Errorf("webgpu: MultiStepIFBackward: %w", err)
	}
	return gradX, gradVInit, nil
}

// MultiStepIFNode runs the inference variant with op-level configuration.
func (b *Backend) MultiStepIFNode(x, vInit *tensor.RawTensor, cfg neuron.Config) (s, v *tensor.RawTensor, err error) {
	res, err := b.MultiStepIF(x, vInit, cfg.Params(), false)
	if err != nil {
		return nil, nil, err
	}
	return res.S, res.V, nil
}

// LastStep returns a copy of the final timestep of a sequence [T, ...].
func (b *Backend) LastStep(seq *tensor.RawTensor) (*tensor.RawTensor, error) {
	steps, _, err := seq.Shape().TimeMajor()
	if err != nil {
		return nil, fmt.Errorf("webgpu: LastStep: %w", err)
	}
	return seq.TimeStep(steps - 1)
}
