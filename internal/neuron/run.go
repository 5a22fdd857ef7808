package neuron

import (
	"github.com/born-ml/snn/internal/parallel"
)

// RunForward validates seq and runs Forward over every block of size
// blockSize, in parallel according to cfg.
func RunForward[F Float](seq ForwardSeq[F], p Params, blockSize int, cfg parallel.Config) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := seq.Validate(); err != nil {
		return err
	}
	blocks, err := Partition(seq.N, blockSize)
	if err != nil {
		return err
	}
	parallel.For(len(blocks), func(i int) {
		Forward(seq, p, blocks[i])
	}, cfg)
	return nil
}

// RunBackward validates seq and runs Backward over every block of size
// blockSize, in parallel according to cfg.
func RunBackward[F Float](seq BackwardSeq[F], p Params, sg func(F) F, blockSize int, cfg parallel.Config) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if sg == nil {
		return errNoSurrogate
	}
	if err := seq.Validate(); err != nil {
		return err
	}
	blocks, err := Partition(seq.N, blockSize)
	if err != nil {
		return err
	}
	parallel.For(len(blocks), func(i int) {
		Backward(seq, p, sg, blocks[i])
	}, cfg)
	return nil
}
