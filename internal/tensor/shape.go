package tensor

import "fmt"

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// TimeMajor splits a sequence shape [T, d1, d2, ...] into the number of
// timesteps T and the flattened channel count N = d1*d2*...
//
// A 1-D shape [T] has a single channel.
func (s Shape) TimeMajor() (steps, channels int, err error) {
	if len(s) == 0 {
		return 0, 0, fmt.Errorf("sequence shape must have a time axis, got scalar")
	}
	if err := s.Validate(); err != nil {
		return 0, 0, err
	}
	return s[0], s[1:].NumElements(), nil
}

// Step returns the per-timestep shape [d1, d2, ...] of a sequence shape.
// A 1-D sequence yields [1].
func (s Shape) Step() Shape {
	if len(s) <= 1 {
		return Shape{1}
	}
	return s[1:].Clone()
}
