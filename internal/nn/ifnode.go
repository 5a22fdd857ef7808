package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/snn/internal/neuron"
	"github.com/born-ml/snn/internal/tensor"
)

// SpikingBackend is a backend able to run integrate-and-fire nodes.
//
// The CPU backend runs inference only; autodiff.AutodiffBackend selects the
// training variant while its tape records.
type SpikingBackend interface {
	tensor.Backend
	MultiStepIFNode(x, vInit *tensor.RawTensor, cfg neuron.Config) (s, v *tensor.RawTensor, err error)
	LastStep(seq *tensor.RawTensor) (*tensor.RawTensor, error)
}

// IFNodeConfig configures an IFNode.
type IFNodeConfig struct {
	neuron.Config

	// VInit is the membrane potential the node starts from and returns to on Reset.
	VInit float64

	// StoreVSeq keeps the full potential trace of the last call instead of
	// only its final step.
	StoreVSeq bool
}

// DefaultIFNodeConfig returns neuron.DefaultConfig starting from rest at 0.
func DefaultIFNodeConfig() IFNodeConfig {
	return IFNodeConfig{Config: neuron.DefaultConfig()}
}

// IFNode is a multi-step integrate-and-fire layer.
//
// The membrane potential persists between calls: the final potential of one
// Forward is the initial potential of the next, until Reset. Inputs are
// time-major sequences [T, ...]; the state has the per-step shape [...].
//
// Example:
//
//	node, _ := nn.NewIFNode(nn.DefaultIFNodeConfig(), backend)
//	spikes := node.Forward(x) // x: [T, batch, features]
//	node.Reset()
type IFNode[B SpikingBackend] struct {
	cfg     IFNodeConfig
	backend B

	v    *tensor.RawTensor // [...], nil until the first call
	vSeq *tensor.RawTensor // [T, ...], only with StoreVSeq
}

// NewIFNode creates an IFNode. The surrogate may be nil when the node is
// only used for inference.
func NewIFNode[B SpikingBackend](cfg IFNodeConfig, backend B) (*IFNode[B], error) {
	if err := cfg.Params().Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(cfg.VInit) || math.IsInf(cfg.VInit, 0) {
		return nil, fmt.Errorf("%w: v_init must be finite, got %v", neuron.ErrInvalidConfig, cfg.VInit)
	}
	return &IFNode[B]{cfg: cfg, backend: backend}, nil
}

// Config returns the node configuration.
func (n *IFNode[B]) Config() IFNodeConfig {
	return n.cfg
}

// ForwardSeq runs the node over xSeq [T, ...] and returns the spikes [T, ...].
func (n *IFNode[B]) ForwardSeq(xSeq *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	x := xSeq.Raw()
	if _, _, err := x.Shape().TimeMajor(); err != nil {
		return nil, fmt.Errorf("%w: %v", neuron.ErrShapeMismatch, err)
	}

	vInit, err := n.initialState(x.Shape().Step())
	if err != nil {
		return nil, err
	}

	s, v, err := n.backend.MultiStepIFNode(x, vInit, n.cfg.Config)
	if err != nil {
		return nil, err
	}
	last, err := n.backend.LastStep(v)
	if err != nil {
		return nil, err
	}

	n.v = last
	n.vSeq = nil
	if n.cfg.StoreVSeq {
		n.vSeq = v
	}
	return tensor.New[float32](s, n.backend), nil
}

// Forward runs the node over a sequence. Panics on error.
func (n *IFNode[B]) Forward(xSeq *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	s, err := n.ForwardSeq(xSeq)
	if err != nil {
		panic(fmt.Sprintf("IFNode.Forward: %v", err))
	}
	return s
}

// Step advances the node by a single timestep. x has the per-step shape and
// so do the returned spikes.
func (n *IFNode[B]) Step(x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	stepShape := x.Shape()
	seqShape := append(tensor.Shape{1}, stepShape...)
	xSeq := tensor.New[float32](n.backend.Reshape(x.Raw(), seqShape), n.backend)

	s, err := n.ForwardSeq(xSeq)
	if err != nil {
		return nil, err
	}
	return tensor.New[float32](n.backend.Reshape(s.Raw(), stepShape), n.backend), nil
}

// Reset restores the membrane potential to VInit and drops the stored trace.
func (n *IFNode[B]) Reset() {
	n.v = nil
	n.vSeq = nil
}

// V returns the current membrane potential, or nil before the first call.
func (n *IFNode[B]) V() *tensor.Tensor[float32, B] {
	if n.v == nil {
		return nil
	}
	return tensor.New[float32](n.v, n.backend)
}

// VSeq returns the potential trace of the last call, or nil unless
// StoreVSeq is set.
func (n *IFNode[B]) VSeq() *tensor.Tensor[float32, B] {
	if n.vSeq == nil {
		return nil
	}
	return tensor.New[float32](n.vSeq, n.backend)
}

// StateDict returns {"v": potential} once the node has run.
func (n *IFNode[B]) StateDict() map[string]*tensor.RawTensor {
	if n.v == nil {
		return map[string]*tensor.RawTensor{}
	}
	return map[string]*tensor.RawTensor{"v": n.v}
}

// LoadStateDict restores the membrane potential. The tensor is copied.
func (n *IFNode[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	v, ok := stateDict["v"]
	if !ok {
		return fmt.Errorf("missing state %q", "v")
	}
	if v.DType() != tensor.Float32 {
		return fmt.Errorf("%w: state v is %s, want float32", neuron.ErrUnsupportedDType, v.DType())
	}
	n.v = v.Copy()
	n.vSeq = nil
	return nil
}

// String returns a compact description of the node.
func (n *IFNode[B]) String() string {
	return fmt.Sprintf("IFNode(%s, v_init=%g, store_v_seq=%t)", n.cfg.Config, n.cfg.VInit, n.cfg.StoreVSeq)
}

func (n *IFNode[B]) initialState(stepShape tensor.Shape) (*tensor.RawTensor, error) {
	if n.v == nil {
		return tensor.Full[float32](stepShape, float32(n.cfg.VInit), n.backend).Raw(), nil
	}
	if n.v.NumElements() != stepShape.NumElements() {
		return nil, fmt.Errorf("%w: node state %v does not match input step %v (call Reset first)",
			neuron.ErrShapeMismatch, n.v.Shape(), stepShape)
	}
	return n.v, nil
}
