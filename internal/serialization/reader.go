package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/snn/internal/tensor"
)

// ReaderOptions configures ReadState.
type ReaderOptions struct {
	SkipChecksumValidation bool          // Skip checksum validation (faster but less safe)
	Device                 tensor.Device // Device recorded on loaded tensors (default CPU)
}

// ReadState reads a .snn stream and returns its header and tensors.
func ReadState(r io.Reader, opts ReaderOptions) (Header, map[string]*tensor.RawTensor, error) {
	br := bufio.NewReader(r)

	magic := make([]byte, 4)
	if _, err := io.ReadFull(br, magic); err != nil {
		return Header{}, nil, fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(magic) != MagicBytes {
		return Header{}, nil, fmt.Errorf("%w: got %q", ErrInvalidMagic, magic)
	}

	var version, flags uint32
	var headerSize uint64
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return Header{}, nil, fmt.Errorf("failed to read version: %w", err)
	}
	if version != FormatVersion {
		return Header{}, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	if err := binary.Read(br, binary.LittleEndian, &flags); err != nil {
		return Header{}, nil, fmt.Errorf("failed to read flags: %w", err)
	}
	if err := binary.Read(br, binary.LittleEndian, &headerSize); err != nil {
		return Header{}, nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return Header{}, nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}
	var stored [ChecksumSize]byte
	if _, err := io.ReadFull(br, stored[:]); err != nil {
		return Header{}, nil, fmt.Errorf("failed to read checksum: %w", err)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(br, headerJSON); err != nil {
		return Header{}, nil, fmt.Errorf("failed to read header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return Header{}, nil, fmt.Errorf("failed to parse header: %w", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	if _, err := br.Discard(int(padding(int64(headerSize)))); err != nil {
		return Header{}, nil, fmt.Errorf("failed to skip padding: %w", err)
	}
	data, err := io.ReadAll(br)
	if err != nil {
		return Header{}, nil, fmt.Errorf("failed to read tensor data: %w", err)
	}

	if !opts.SkipChecksumValidation {
		if err := ValidateChecksum(ComputeChecksum(data), stored); err != nil {
			return Header{}, nil, err
		}
	}
	if err := ValidateHeader(&header, int64(len(data))); err != nil {
		return Header{}, nil, fmt.Errorf("validation failed: %w", err)
	}

	state := make(map[string]*tensor.RawTensor, len(header.Tensors))
	for _, meta := range header.Tensors {
		dtype, _ := stringToDtype(meta.DType) // checked by ValidateHeader
		raw, err := tensor.NewRaw(tensor.Shape(meta.Shape), dtype, opts.Device)
		if err != nil {
			return Header{}, nil, fmt.Errorf("tensor %s: %w", meta.Name, err)
		}
		copy(raw.Data(), data[meta.Offset:meta.Offset+meta.Size])
		state[meta.Name] = raw
	}
	return header, state, nil
}

// LoadFile reads a .snn file with default options.
func LoadFile(path string) (Header, map[string]*tensor.RawTensor, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for state loading
	file, err := os.Open(path)
	if err != nil {
		return Header{}, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()
	return ReadState(file, ReaderOptions{})
}
