package tensor

import (
	"sync"
	"testing"
)

func TestRawTensorZeroCopy(t *testing.T) {
	raw, err := NewRaw(Shape{3, 2}, Float32, CPU)
	if err != nil {
		t.Fatal(err)
	}
	data := raw.AsFloat32()
	if len(data) != 6 {
		t.Errorf("AsFloat32 length = %d, want 6", len(data))
	}
	data[0] = 42
	if Floats[float32](raw)[0] != 42 {
		t.Error("Floats should share memory with AsFloat32")
	}
	if raw.ByteSize() != 24 {
		t.Errorf("ByteSize = %d, want 24", raw.ByteSize())
	}
}

func TestRawTensorWrongDTypePanics(t *testing.T) {
	raw, _ := NewRaw(Shape{2}, Float64, CPU)
	defer func() {
		if recover() == nil {
			t.Error("AsFloat32 on a float64 tensor should panic")
		}
	}()
	raw.AsFloat32()
}

func TestRawTensorCloneAndRelease(t *testing.T) {
	raw, _ := NewRaw(Shape{4}, Float64, CPU)
	clone := raw.Clone()
	if raw.IsUnique() {
		t.Error("buffer shared by a clone should not be unique")
	}

	clone.Release()
	if raw.Released() {
		t.Error("buffer must survive while a reference remains")
	}
	if !raw.IsUnique() {
		t.Error("buffer should be unique after the clone is released")
	}

	raw.Release()
	if !raw.Released() {
		t.Error("buffer should be released")
	}
	defer func() {
		if recover() == nil {
			t.Error("access to a released tensor should panic")
		}
	}()
	raw.AsFloat64()
}

// TestRawTensorConcurrentRelease reads the buffer while another goroutine
// drops the last reference. Run with -race.
func TestRawTensorConcurrentRelease(t *testing.T) {
	raw, _ := NewRaw(Shape{8}, Float32, CPU)
	clone := raw.Clone()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		clone.Release()
		raw.Release()
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if data := raw.Data(); data != nil && len(data) != 32 {
				t.Errorf("Data() has %d bytes, want 32", len(data))
			}
			_ = raw.Released()
		}
	}()
	wg.Wait()

	if !raw.Released() {
		t.Error("buffer should be released")
	}
	if raw.Data() != nil {
		t.Error("Data() should be nil after release")
	}
}

func TestRawTensorCopy(t *testing.T) {
	raw, _ := NewRaw(Shape{2}, Float32, CPU)
	raw.AsFloat32()[1] = 3
	cp := raw.Copy()
	cp.AsFloat32()[1] = 5
	if raw.AsFloat32()[1] != 3 {
		t.Error("Copy must not share memory")
	}
	if !cp.IsUnique() {
		t.Error("Copy should own its buffer")
	}
}

func TestRawTensorReshape(t *testing.T) {
	raw, _ := NewRaw(Shape{2, 3}, Float32, CPU)
	view, err := raw.Reshape(Shape{3, 2})
	if err != nil {
		t.Fatal(err)
	}
	view.AsFloat32()[5] = 1
	if raw.AsFloat32()[5] != 1 {
		t.Error("Reshape should return a view")
	}
	if _, err := raw.Reshape(Shape{4}); err == nil {
		t.Error("expected element count error")
	}
}

func TestRawTensorTimeSteps(t *testing.T) {
	raw, _ := NewRaw(Shape{3, 2}, Float64, CPU)
	copy(raw.AsFloat64(), []float64{1, 2, 3, 4, 5, 6})

	step, err := raw.TimeStep(1)
	if err != nil {
		t.Fatal(err)
	}
	if got := step.AsFloat64(); got[0] != 3 || got[1] != 4 {
		t.Errorf("TimeStep(1) = %v, want [3 4]", got)
	}
	if _, err := raw.TimeStep(3); err == nil {
		t.Error("expected out of range error")
	}

	src, _ := NewRaw(Shape{2}, Float64, CPU)
	copy(src.AsFloat64(), []float64{9, 8})
	if err := raw.SetTimeStep(0, src); err != nil {
		t.Fatal(err)
	}
	if got := raw.AsFloat64(); got[0] != 9 || got[1] != 8 || got[2] != 3 {
		t.Errorf("SetTimeStep wrote %v", got)
	}

	wrong, _ := NewRaw(Shape{2}, Float32, CPU)
	if err := raw.SetTimeStep(0, wrong); err == nil {
		t.Error("expected dtype mismatch error")
	}
}
