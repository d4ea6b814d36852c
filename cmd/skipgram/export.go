package main

import (
	"bufio"
	"io"
	"iter"
	"os"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/rs/zerolog/log"

	"github.com/23skdu/longbow-skipgram/internal/client"
	"github.com/23skdu/longbow-skipgram/internal/pipeline"
	"github.com/23skdu/longbow-skipgram/internal/sampling"
)

func countPairs(batches iter.Seq[sampling.Batch]) (n, pairs int) {
	for b := range batches {
		n++
		pairs += b.Len()
	}
	return n, pairs
}

func exportEpoch(p *pipeline.Pipeline, prep *pipeline.Prepared, path string) error {
	batches, err := p.Batches(prep)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriter(f)
	rows, err := writePairStream(w, batches)
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	log.Info().Str("path", path).Int64("pairs", rows).Msg("Exported training pairs")
	return f.Close()
}

// writePairStream writes one record per non-empty batch as an Arrow IPC stream.
func writePairStream(w io.Writer, batches iter.Seq[sampling.Batch]) (int64, error) {
	builder := client.NewRecordBatchBuilder(memory.NewGoAllocator())
	writer := ipc.NewWriter(w, ipc.WithSchema(client.PairSchema))

	var rows int64
	for b := range batches {
		if b.Len() == 0 {
			continue
		}
		rec := builder.BuildPairBatch(b)
		err := writer.Write(rec)
		rows += rec.NumRows()
		rec.Release()
		if err != nil {
			_ = writer.Close()
			return rows, err
		}
	}
	return rows, writer.Close()
}
