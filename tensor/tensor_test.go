// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/born-ml/snn/internal/backend/cpu"
	"github.com/born-ml/snn/tensor"
)

// TestBackendInterface verifies that cpu.CPUBackend implements tensor.Backend.
func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = (*cpu.CPUBackend)(nil)
}

// TestRawTensorAPI verifies RawTensor type alias exposes expected API.
func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{4, 2, 3}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}

	if !raw.Shape().Equal(tensor.Shape{4, 2, 3}) {
		t.Errorf("Shape() = %v, want [4 2 3]", raw.Shape())
	}
	if raw.DType() != tensor.Float32 {
		t.Errorf("DType() = %v, want Float32", raw.DType())
	}
	if raw.Device() != tensor.CPU {
		t.Errorf("Device() = %v, want CPU", raw.Device())
	}
	if n := raw.NumElements(); n != 24 {
		t.Errorf("NumElements() = %d, want 24", n)
	}
	if size := raw.ByteSize(); size != 96 {
		t.Errorf("ByteSize() = %d, want 96", size)
	}

	steps, channels, err := raw.Shape().TimeMajor()
	if err != nil {
		t.Fatalf("TimeMajor failed: %v", err)
	}
	if steps != 4 || channels != 6 {
		t.Errorf("TimeMajor() = (%d, %d), want (4, 6)", steps, channels)
	}

	last, err := raw.TimeStep(3)
	if err != nil {
		t.Fatalf("TimeStep failed: %v", err)
	}
	if !last.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("TimeStep(3).Shape() = %v, want [2 3]", last.Shape())
	}
}

// TestCreationFunctions verifies the public creation wrappers.
func TestCreationFunctions(t *testing.T) {
	backend := cpu.New()

	z := tensor.Zeros[float32](tensor.Shape{3}, backend)
	for i, v := range z.Data() {
		if v != 0 {
			t.Errorf("Zeros[%d] = %v, want 0", i, v)
		}
	}

	f := tensor.Full[float64](tensor.Shape{2}, 0.5, backend)
	for i, v := range f.Data() {
		if v != 0.5 {
			t.Errorf("Full[%d] = %v, want 0.5", i, v)
		}
	}

	a := tensor.Randn[float32](tensor.Shape{4, 8}, 0, 1, 7, backend)
	b := tensor.Randn[float32](tensor.Shape{4, 8}, 0, 1, 7, backend)
	for i := range a.Data() {
		if a.Data()[i] != b.Data()[i] {
			t.Fatalf("Randn with equal seeds differs at %d", i)
		}
	}

	u := tensor.Uniform[float64](tensor.Shape{100}, -1, 1, 3, backend)
	for i, v := range u.Data() {
		if v < -1 || v >= 1 {
			t.Errorf("Uniform[%d] = %v outside [-1, 1)", i, v)
		}
	}

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if got := x.Add(x).At(1, 1); got != 8 {
		t.Errorf("Add().At(1, 1) = %v, want 8", got)
	}
	if _, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 2}, backend); err == nil {
		t.Error("FromSlice with wrong length should fail")
	}
}

// TestTypeConstants verifies the dtype and device aliases.
func TestTypeConstants(t *testing.T) {
	if tensor.Float32.Size() != 4 || tensor.Float64.Size() != 8 {
		t.Error("unexpected float sizes")
	}
	if !tensor.Float32.IsFloat() || tensor.Int32.IsFloat() || tensor.Bool.IsFloat() {
		t.Error("unexpected IsFloat results")
	}
	if tensor.CPU.String() != "CPU" || tensor.WebGPU.String() != "WebGPU" {
		t.Error("unexpected device names")
	}
}
