// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/snn/internal/tensor"
)

// RawTensor is the low-level tensor representation.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType(), Device()
//   - Type-safe data access via AsFloat32(), AsFloat64()
//   - Timestep access via TimeStep() and SetTimeStep()
//   - Reference counting via Clone() and Release()
//
// Most users should use the high-level Tensor[T, B] type instead.
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{4, 16}, tensor.Float32, tensor.CPU)
//	data := raw.AsFloat32()     // Type-safe access
//	last, _ := raw.TimeStep(3)  // Copy of the final step, shape [16]
type RawTensor = tensor.RawTensor
