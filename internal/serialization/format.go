package serialization

import (
	"time"

	"github.com/born-ml/snn/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "SNNS"
	FormatVersion   = 1
	HeaderAlignment = 64 // Tensor data starts on a 64-byte boundary
	ChecksumSize    = 32 // SHA-256
	FixedHeaderSize = 4 + 4 + 4 + 8 + ChecksumSize
)

// Data type string constants for serialization.
const (
	DTypeFloat32 = "float32"
	DTypeFloat64 = "float64"
	DTypeInt32   = "int32"
	DTypeBool    = "bool"
)

// Flags for the .snn format.
const (
	FlagHasMetadata uint32 = 1 << 0 // custom metadata included
)

// Header represents the JSON header in a .snn file.
type Header struct {
	FormatVersion int               `json:"format_version"` // Version of the .snn format
	Version       string            `json:"snn_version"`    // Library version that wrote the file
	ModuleType    string            `json:"module_type"`    // e.g. "IFNode", "Sequential"
	CreatedAt     time.Time         `json:"created_at"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// TensorMeta describes a tensor in the .snn file.
type TensorMeta struct {
	Name   string `json:"name"`   // e.g. "0.v"
	DType  string `json:"dtype"`  // e.g. "float32"
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Bytes from the start of the data section
	Size   int64  `json:"size"`   // Size in bytes
}

// dtypeToString converts tensor.DataType to string representation.
func dtypeToString(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return DTypeFloat32
	case tensor.Float64:
		return DTypeFloat64
	case tensor.Int32:
		return DTypeInt32
	case tensor.Bool:
		return DTypeBool
	default:
		return "unknown"
	}
}

// stringToDtype converts string representation to tensor.DataType.
func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case DTypeFloat32:
		return tensor.Float32, true
	case DTypeFloat64:
		return tensor.Float64, true
	case DTypeInt32:
		return tensor.Int32, true
	case DTypeBool:
		return tensor.Bool, true
	default:
		return 0, false
	}
}

// padding returns the number of zero bytes after a header of n bytes.
func padding(n int64) int64 {
	pos := int64(FixedHeaderSize) + n
	return (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment
}
