package sampling

import (
	"fmt"
	"iter"
)

// Batch holds skip-gram pairs: Targets[i] is a context word of Inputs[i].
type Batch struct {
	Inputs  []int `cbor:"inputs"`
	Targets []int `cbor:"targets"`
}

// Len returns the number of pairs in the batch.
func (b Batch) Len() int {
	return len(b.Inputs)
}

// Batches splits seq into consecutive chunks of batchSize ids, the last one
// possibly shorter, and yields one Batch per chunk. Context windows are drawn
// from the chunk only and never reach into neighbouring chunks.
//
// The returned sequence is lazy; ranging over it again starts from the first
// chunk.
func Batches(seq []int, batchSize, windowSize int, rng Source) (iter.Seq[Batch], error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBatchSize, batchSize)
	}
	if windowSize < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, windowSize)
	}

	return func(yield func(Batch) bool) {
		var neighbours []int
		for offset := 0; offset < len(seq); offset += batchSize {
			chunk := seq[offset:min(offset+batchSize, len(seq))]

			var b Batch
			for i, center := range chunk {
				neighbours = appendWindow(neighbours[:0], chunk, i, windowSize, rng)
				for range neighbours {
					b.Inputs = append(b.Inputs, center)
				}
				b.Targets = append(b.Targets, neighbours...)
			}

			batchesEmitted.Inc()
			pairsEmitted.Add(float64(b.Len()))
			if !yield(b) {
				return
			}
		}
	}, nil
}
