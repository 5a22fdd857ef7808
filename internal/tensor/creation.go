package tensor

import (
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros[float32](Shape{3, 4}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	var dummy T
	dtype := inferDataType(dummy)

	raw, err := NewRaw(shape, dtype, b.Device())
	if err != nil {
		panic(err) // Shape validation should prevent this
	}

	return New[T, B](raw, b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	vInit := tensor.Full[float32](Shape{128}, 0.5, backend)
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn creates a float tensor with samples from a normal distribution
// N(mean, std²) drawn from a seeded source, so input currents are reproducible.
//
// Example:
//
//	x := tensor.Randn[float32](Shape{16, 1024}, 0.3, 0.5, 42, backend)
func Randn[F Float, B Backend](shape Shape, mean, std float64, seed int64, b B) *Tensor[F, B] {
	t := Zeros[F, B](shape, b)
	data := t.Data()

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // G404: reproducible simulation input
	for i := range data {
		data[i] = F(mean + std*rng.NormFloat64())
	}
	return t
}

// Uniform creates a float tensor with samples uniformly distributed in [lo, hi).
func Uniform[F Float, B Backend](shape Shape, lo, hi float64, seed int64, b B) *Tensor[F, B] {
	t := Zeros[F, B](shape, b)
	data := t.Data()

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // G404: reproducible simulation input
	for i := range data {
		data[i] = F(lo + (hi-lo)*rng.Float64())
	}
	return t
}
