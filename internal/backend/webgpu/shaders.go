package webgpu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/born-ml/snn/internal/neuron"
	"github.com/born-ml/snn/internal/surrogate"
)

// workgroupSize is the number of channels handled by one workgroup.
// Each invocation owns one channel and walks the whole time axis.
const workgroupSize = 256

// ErrNoShader reports a surrogate without a WGSL form.
var ErrNoShader = errors.New("webgpu: surrogate has no WGSL form")

// addShader performs element-wise addition: result = a + b.
const addShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        result[idx] = a[idx] + b[idx];
    }
}
`

// ifParams is shared by the forward and backward kernels (16 bytes).
const ifParams = `
struct Params {
    steps: u32,
    channels: u32,
    v_threshold: f32,
    v_reset: f32,
}
`

// ifForwardShader generates the forward recurrence for one (reset, save)
// combination. Bindings: 0 x_seq, 1 v_init, 2 s_seq, 3 v_seq, 4 params,
// 5 h_seq (training only).
func ifForwardShader(p neuron.Params, saveIntermediates bool) string {
	var sb strings.Builder
	sb.WriteString(`
@group(0) @binding(0) var<storage, read> x_seq: array<f32>;
@group(0) @binding(1) var<storage, read> v_init: array<f32>;
@group(0) @binding(2) var<storage, read_write> s_seq: array<f32>;
@group(0) @binding(3) var<storage, read_write> v_seq: array<f32>;
`)
	if saveIntermediates {
		sb.WriteString("@group(0) @binding(5) var<storage, read_write> h_seq: array<f32>;\n")
	}
	sb.WriteString(ifParams)
	sb.WriteString(`@group(0) @binding(4) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let ch = global_id.x;
    if (ch >= params.channels) {
        return;
    }
    var v = v_init[ch];
    for (var t: u32 = 0u; t < params.steps; t = t + 1u) {
        let idx = t * params.channels + ch;
        let h = v + x_seq[idx];
        let s = select(0.0, 1.0, h >= params.v_threshold);
`)
	if saveIntermediates {
		sb.WriteString("        h_seq[idx] = h;\n")
	}
	if p.SoftReset {
		sb.WriteString("        v = h - s * params.v_threshold;\n")
	} else {
		sb.WriteString("        v = s * params.v_reset + (1.0 - s) * h;\n")
	}
	sb.WriteString(`        s_seq[idx] = s;
        v_seq[idx] = v;
    }
}
`)
	return sb.String()
}

// ifBackwardShader generates the backward recurrence for one (reset, detach)
// combination with the surrogate inlined. Bindings: 0 grad_s_seq,
// 1 grad_v_seq, 2 h_seq, 3 grad_x_seq, 4 grad_v_init, 5 params.
func ifBackwardShader(p neuron.Params, sg surrogate.Function) (string, error) {
	shader, ok := sg.(surrogate.Shader)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoShader, sg.Name())
	}

	var sb strings.Builder
	sb.WriteString(`
@group(0) @binding(0) var<storage, read> grad_s_seq: array<f32>;
@group(0) @binding(1) var<storage, read> grad_v_seq: array<f32>;
@group(0) @binding(2) var<storage, read> h_seq: array<f32>;
@group(0) @binding(3) var<storage, read_write> grad_x_seq: array<f32>;
@group(0) @binding(4) var<storage, read_write> grad_v_init: array<f32>;
`)
	sb.WriteString(ifParams)
	sb.WriteString("@group(0) @binding(5) var<uniform> params: Params;\n\n")
	sb.WriteString(shader.WGSL())
	sb.WriteString(`

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let ch = global_id.x;
    if (ch >= params.channels) {
        return;
    }
    var acc: f32 = 0.0;
    for (var i: u32 = 0u; i < params.steps; i = i + 1u) {
        let t = params.steps - 1u - i;
        let idx = t * params.channels + ch;
        let h = h_seq[idx];
        let sgv = sg(h - params.v_threshold);
        let carried = grad_v_seq[idx] + acc;
`)
	switch {
	case p.SoftReset && p.DetachReset:
		sb.WriteString("        let grad_h = carried + grad_s_seq[idx] * sgv;\n")
	case p.SoftReset:
		sb.WriteString("        let grad_h = carried + (grad_s_seq[idx] - params.v_threshold * carried) * sgv;\n")
	case p.DetachReset:
		sb.WriteString("        let s = select(0.0, 1.0, h >= params.v_threshold);\n")
		sb.WriteString("        let grad_h = carried * (1.0 - s) + grad_s_seq[idx] * sgv;\n")
	default:
		sb.WriteString("        let s = select(0.0, 1.0, h >= params.v_threshold);\n")
		sb.WriteString("        let grad_h = carried * (1.0 - s) + (grad_s_seq[idx] + carried * (params.v_reset - h)) * sgv;\n")
	}
	sb.WriteString(`        grad_x_seq[idx] = grad_h;
        acc = grad_h;
    }
    grad_v_init[ch] = acc;
}
`)
	return sb.String(), nil
}

// shaderKey names a generated kernel for the shader and pipeline caches.
func shaderKey(mode string, sg surrogate.Function) string {
	if sg == nil {
		return mode
	}
	return mode + "|" + sg.Name()
}
