package neuron

import "fmt"

// Block is a contiguous range of channels processed as one unit.
//
// Width is the nominal block size; Len is the number of valid channels,
// smaller than Width only for the last block when N is not a multiple of the
// block size. Kernels never touch columns at or beyond Start+Len.
type Block struct {
	Start int
	Len   int
	Width int
}

// Partition tiles [0, n) into blocks of blockSize channels. The blocks cover
// every channel exactly once, in increasing order.
func Partition(n, blockSize int) ([]Block, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: block size must be > 0, got %d", ErrInvalidConfig, blockSize)
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: channel count must be > 0, got %d", ErrInvalidConfig, n)
	}
	blocks := make([]Block, 0, NumBlocks(n, blockSize))
	for start := 0; start < n; start += blockSize {
		blocks = append(blocks, Block{
			Start: start,
			Len:   min(blockSize, n-start),
			Width: blockSize,
		})
	}
	return blocks, nil
}

// NumBlocks returns ceil(n / blockSize).
func NumBlocks(n, blockSize int) int {
	return (n + blockSize - 1) / blockSize
}

// Masked reports whether the block is a partial last block.
func (b Block) Masked() bool {
	return b.Len < b.Width
}

// row returns the valid columns of timestep t in a [T, n] buffer.
func row[F any](buf []F, t, n int, b Block) []F {
	off := t*n + b.Start
	return buf[off : off+b.Len : off+b.Len]
}

// span returns the valid columns of a [n] buffer.
func span[F any](buf []F, b Block) []F {
	return buf[b.Start : b.Start+b.Len : b.Start+b.Len]
}
