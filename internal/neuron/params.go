package neuron

import (
	"fmt"
	"math"

	"github.com/born-ml/snn/internal/surrogate"
)

// Params are the scalar kernel parameters, fixed for one invocation.
type Params struct {
	VThreshold  float64 // Spike when the pre-reset potential reaches this value.
	VReset      float64 // Hard reset target; ignored when SoftReset is set.
	SoftReset   bool    // Subtract the threshold instead of snapping to VReset.
	DetachReset bool    // Exclude the reset term's dependence on the spike from gradients.
}

// Validate checks that the parameters are finite.
func (p Params) Validate() error {
	if math.IsNaN(p.VThreshold) || math.IsInf(p.VThreshold, 0) {
		return fmt.Errorf("%w: v_threshold must be finite, got %v", ErrInvalidConfig, p.VThreshold)
	}
	if !p.SoftReset && (math.IsNaN(p.VReset) || math.IsInf(p.VReset, 0)) {
		return fmt.Errorf("%w: v_reset must be finite, got %v", ErrInvalidConfig, p.VReset)
	}
	return nil
}

// ForwardMode identifies the forward variant for tuning caches.
func (p Params) ForwardMode(saveIntermediates bool) string {
	mode := "hard"
	if p.SoftReset {
		mode = "soft"
	}
	if saveIntermediates {
		return "fwd/" + mode + "/train"
	}
	return "fwd/" + mode + "/infer"
}

// BackwardMode identifies the backward variant for tuning caches.
func (p Params) BackwardMode() string {
	mode := "hard"
	if p.SoftReset {
		mode = "soft"
	}
	if p.DetachReset {
		return "bwd/" + mode + "/detach"
	}
	return "bwd/" + mode
}

// Config is the op-level configuration of an integrate-and-fire node.
//
// A nil VReset selects soft (subtractive) reset; any value selects hard reset
// to that value.
type Config struct {
	VThreshold  float64
	VReset      *float64
	DetachReset bool
	Surrogate   surrogate.Function
}

// DefaultConfig returns the conventional IF node setup: threshold 1, hard
// reset to 0, reset not detached, sigmoid surrogate with alpha 4.
func DefaultConfig() Config {
	return Config{
		VThreshold: 1.0,
		VReset:     ResetTo(0),
		Surrogate:  surrogate.Sigmoid{Alpha: 4},
	}
}

// ResetTo returns a hard-reset target for Config.VReset.
func ResetTo(v float64) *float64 {
	return &v
}

// SoftReset reports whether the configuration uses subtractive reset.
func (c Config) SoftReset() bool {
	return c.VReset == nil
}

// Params derives the kernel parameters.
func (c Config) Params() Params {
	p := Params{
		VThreshold:  c.VThreshold,
		SoftReset:   c.VReset == nil,
		DetachReset: c.DetachReset,
	}
	if c.VReset != nil {
		p.VReset = *c.VReset
	}
	return p
}

// Validate checks the scalar parameters and the surrogate.
func (c Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if c.Surrogate == nil {
		return errNoSurrogate
	}
	return nil
}

// String returns a compact description, e.g. "IF(v_th=1, v_reset=0, detach=false, sg=sigmoid(alpha=4))".
func (c Config) String() string {
	reset := "soft"
	if c.VReset != nil {
		reset = fmt.Sprintf("%g", *c.VReset)
	}
	sg := "none"
	if c.Surrogate != nil {
		sg = c.Surrogate.Name()
	}
	return fmt.Sprintf("IF(v_th=%g, v_reset=%s, detach=%t, sg=%s)", c.VThreshold, reset, c.DetachReset, sg)
}
