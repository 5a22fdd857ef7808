package cpu

import (
	"fmt"

	"github.com/born-ml/snn/internal/autotune"
	"github.com/born-ml/snn/internal/neuron"
	"github.com/born-ml/snn/internal/surrogate"
	"github.com/born-ml/snn/internal/tensor"
)

// MultiStepIF runs the integrate-and-fire forward recurrence.
//
// x has shape [T, ...] and vInit holds N = prod(x.Shape()[1:]) elements.
// S and V are allocated with the shape and dtype of x; H is allocated only
// when saveIntermediates is set.
func (cpu *CPUBackend) MultiStepIF(x, vInit *tensor.RawTensor, p neuron.Params, saveIntermediates bool) (*neuron.ForwardResult, error) {
	steps, channels, err := neuron.CheckForward(x, vInit)
	if err != nil {
		return nil, fmt.Errorf("cpu: MultiStepIF: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("cpu: MultiStepIF: %w", err)
	}

	res := &neuron.ForwardResult{
		S: cpu.alloc(x.Shape(), x.DType()),
		V: cpu.alloc(x.Shape(), x.DType()),
	}
	if saveIntermediates {
		res.H = cpu.alloc(x.Shape(), x.DType())
	}

	key := autotune.Key{T: steps, N: channels, DType: x.DType(), Mode: p.ForwardMode(saveIntermediates)}
	switch x.DType() {
	case tensor.Float32:
		err = runForward[float32](cpu, key, x, vInit, res, p)
	case tensor.Float64:
		err = runForward[float64](cpu, key, x, vInit, res, p)
	}
	if err != nil {
		return nil, fmt.Errorf("cpu: MultiStepIF: %w", err)
	}
	return res, nil
}

// MultiStepIFBackward runs the integrate-and-fire backward recurrence.
//
// The computation dtype follows gradS. gradX has the shape of gradS and
// gradVInit has the per-step shape.
func (cpu *CPUBackend) MultiStepIFBackward(gradS, gradV, h *tensor.RawTensor, p neuron.Params, sg surrogate.Function) (gradX, gradVInit *tensor.RawTensor, err error) {
	steps, channels, err := neuron.CheckBackward(gradS, gradV, h)
	if err != nil {
		return nil, nil, fmt.Errorf("cpu: MultiStepIFBackward: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, nil, fmt.Errorf("cpu: MultiStepIFBackward: %w", err)
	}
	if sg == nil {
		return nil, nil, fmt.Errorf("cpu: MultiStepIFBackward: %w: surrogate function is required", neuron.ErrInvalidConfig)
	}

	gradX = cpu.alloc(gradS.Shape(), gradS.DType())
	gradVInit = cpu.alloc(gradS.Shape().Step(), gradS.DType())

	key := autotune.Key{T: steps, N: channels, DType: gradS.DType(), Mode: p.BackwardMode()}
	switch gradS.DType() {
	case tensor.Float32:
		err = runBackward(cpu, key, gradS, gradV, h, gradX, gradVInit, p, surrogate.For[float32](sg))
	case tensor.Float64:
		err = runBackward(cpu, key, gradS, gradV, h, gradX, gradVInit, p, surrogate.For[float64](sg))
	}
	if err != nil {
		return nil, nil, fmt.Errorf("cpu: MultiStepIFBackward: %w", err)
	}
	return gradX, gradVInit, nil
}

// LastStep returns a copy of the final timestep of a sequence [T, ...].
func (cpu *CPUBackend) LastStep(seq *tensor.RawTensor) (*tensor.RawTensor, error) {
	steps, _, err := seq.Shape().TimeMajor()
	if err != nil {
		return nil, fmt.Errorf("cpu: LastStep: %w", err)
	}
	return seq.TimeStep(steps - 1)
}

func runForward[F neuron.Float](cpu *CPUBackend, key autotune.Key, x, vInit *tensor.RawTensor, res *neuron.ForwardResult, p neuron.Params) error {
	seq := neuron.ForwardSeq[F]{
		T:  key.T,
		N:  key.N,
		X:  tensor.Floats[F](x),
		V0: tensor.Floats[F](vInit),
		S:  tensor.Floats[F](res.S),
		V:  tensor.Floats[F](res.V),
	}
	if res.H != nil {
		seq.H = tensor.Floats[F](res.H)
	}
	bs := cpu.blocks.BlockSize(key, func(bs int) {
		_ = neuron.RunForward(seq, p, bs, cpu.parallel) //nolint:errcheck // rerun below reports errors
	})
	return neuron.RunForward(seq, p, bs, cpu.parallel)
}

func runBackward[F neuron.Float](cpu *CPUBackend, key autotune.Key, gradS, gradV, h, gradX, gradVInit *tensor.RawTensor, p neuron.Params, sg func(F) F) error {
	seq := neuron.BackwardSeq[F]{
		T:      key.T,
		N:      key.N,
		GradS:  tensor.Floats[F](gradS),
		GradV:  tensor.Floats[F](gradV),
		H:      tensor.Floats[F](h),
		GradX:  tensor.Floats[F](gradX),
		GradV0: tensor.Floats[F](gradVInit),
	}
	bs := cpu.blocks.BlockSize(key, func(bs int) {
		_ = neuron.RunBackward(seq, p, sg, bs, cpu.parallel) //nolint:errcheck // rerun below reports errors
	})
	return neuron.RunBackward(seq, p, sg, bs, cpu.parallel)
}

func (cpu *CPUBackend) alloc(shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	raw, err := tensor.NewRaw(shape, dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("cpu: failed to allocate %v %s: %v", shape, dtype, err))
	}
	return raw
}

// MultiStepIFNode runs the inference variant with op-level configuration.
// The CPU backend tracks no gradients; wrap it with autodiff for training.
func (cpu *CPUBackend) MultiStepIFNode(x, vInit *tensor.RawTensor, cfg neuron.Config) (s, v *tensor.RawTensor, err error) {
	res, err := cpu.MultiStepIF(x, vInit, cfg.Params(), false)
	if err != nil {
		return nil, nil, err
	}
	return res.S, res.V, nil
}
