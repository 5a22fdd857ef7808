package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/born-ml/snn/internal/tensor"
)

// Version is recorded in every header.
const Version = "0.1.0"

// Writer writes network state in .snn format.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer emitting to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteState writes a state dictionary with the given module type and
// optional metadata.
func (w *Writer) WriteState(stateDict map[string]*tensor.RawTensor, moduleType string, metadata map[string]string) error {
	return w.WriteStateWithHeader(stateDict, Header{
		ModuleType: moduleType,
		CreatedAt:  time.Now().UTC(),
		Metadata:   metadata,
	})
}

// WriteStateWithHeader writes a state dictionary with a caller-built header.
// Tensors, FormatVersion and Version are filled in.
func (w *Writer) WriteStateWithHeader(stateDict map[string]*tensor.RawTensor, header Header) error {
	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		names = append(names, name)
	}
	sort.Strings(names)

	header.FormatVersion = FormatVersion
	header.Version = Version
	header.Tensors = make([]TensorMeta, 0, len(names))

	var currentOffset int64
	data := make([]byte, 0)
	for _, name := range names {
		raw := stateDict[name]
		if raw == nil || raw.Released() {
			return fmt.Errorf("tensor %s: nil or released", name)
		}
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		size := int64(raw.ByteSize())
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  dtypeToString(raw.DType()),
			Shape:  []int(raw.Shape().Clone()),
			Offset: currentOffset,
			Size:   size,
		})
		data = append(data, raw.Data()[:size]...)
		currentOffset += size
	}

	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	bw := bufio.NewWriter(w.w)
	if _, err := bw.WriteString(MagicBytes); err != nil {
		return fmt.Errorf("failed to write magic bytes: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return fmt.Errorf("failed to write version: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, flags); err != nil {
		return fmt.Errorf("failed to write flags: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	checksum := ComputeChecksum(data)
	if _, err := bw.Write(checksum[:]); err != nil {
		return fmt.Errorf("failed to write checksum: %w", err)
	}
	if _, err := bw.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if pad := padding(int64(len(headerJSON))); pad > 0 {
		if _, err := bw.Write(make([]byte, pad)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}
	if _, err := bw.Write(data); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return bw.Flush()
}

// SaveFile writes a state dictionary to a .snn file at path.
func SaveFile(path string, stateDict map[string]*tensor.RawTensor, moduleType string, metadata map[string]string) (err error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for state saving
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return NewWriter(file).WriteState(stateDict, moduleType, metadata)
}
