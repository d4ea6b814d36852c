package client

import (
	"context"
	"errors"
	"iter"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/rs/zerolog/log"

	"github.com/23skdu/longbow-skipgram/internal/sampling"
)

// PairWriter is the sink side of a FlightClient.
type PairWriter interface {
	DoPut(ctx context.Context, datasetName string, record arrow.RecordBatch) error
}

// ForwardStats summarises one Forward call.
type ForwardStats struct {
	Batches int
	Pairs   int
	Failed  int
	Skipped int
}

// Forwarder sends skip-gram batches to a dataset, one record per batch.
type Forwarder struct {
	writer  PairWriter
	dataset string
	builder *RecordBatchBuilder
	breaker *CircuitBreaker
}

// NewForwarder creates a Forwarder guarded by breaker.
func NewForwarder(w PairWriter, dataset string, breaker *CircuitBreaker) *Forwarder {
	return &Forwarder{
		writer:  w,
		dataset: dataset,
		builder: NewRecordBatchBuilder(memory.NewGoAllocator()),
		breaker: breaker,
	}
}

// Forward drains batches into the dataset. Empty batches are skipped and
// failed puts are counted and logged. It stops early when ctx is done or the
// circuit breaker opens.
func (f *Forwarder) Forward(ctx context.Context, batches iter.Seq[sampling.Batch]) (ForwardStats, error) {
	var stats ForwardStats
	for b := range batches {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if b.Len() == 0 {
			stats.Skipped++
			continue
		}

		rec := f.builder.BuildPairBatch(b)
		err := f.breaker.Do(func() error {
			return f.writer.DoPut(ctx, f.dataset, rec)
		})
		rec.Release()

		switch {
		case errors.Is(err, ErrCircuitOpen):
			forwardedBatches.WithLabelValues("rejected").Inc()
			return stats, err
		case err != nil:
			forwardedBatches.WithLabelValues("failed").Inc()
			log.Warn().Err(err).Str("dataset", f.dataset).Msg("Failed to forward batch")
			stats.Failed++
		default:
			forwardedBatches.WithLabelValues("sent").Inc()
			forwardedPairs.Add(float64(b.Len()))
			stats.Batches++
			stats.Pairs += b.Len()
		}
	}
	return stats, nil
}
