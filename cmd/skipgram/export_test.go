package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/23skdu/longbow-skipgram/internal/client"
	"github.com/23skdu/longbow-skipgram/internal/pipeline"
	"github.com/23skdu/longbow-skipgram/internal/sampling"
)

func TestCountPairs(t *testing.T) {
	batches := slices.Values([]sampling.Batch{
		{Inputs: []int{0, 0}, Targets: []int{1, 2}},
		{},
		{Inputs: []int{3}, Targets: []int{4}},
	})
	n, pairs := countPairs(batches)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, pairs)
}

func TestWritePairStream(t *testing.T) {
	batches := slices.Values([]sampling.Batch{
		{Inputs: []int{0, 0, 1}, Targets: []int{1, 2, 0}},
		{},
		{Inputs: []int{2}, Targets: []int{1}},
	})

	var buf bytes.Buffer
	rows, err := writePairStream(&buf, batches)
	require.NoError(t, err)
	assert.Equal(t, int64(4), rows)

	r, err := ipc.NewReader(&buf, ipc.WithAllocator(memory.NewGoAllocator()))
	require.NoError(t, err)
	defer r.Release()
	assert.True(t, r.Schema().Equal(client.PairSchema))

	var centers, contexts []int32
	records := 0
	for r.Next() {
		rec := r.Record()
		records++
		centers = append(centers, rec.Column(0).(*array.Int32).Int32Values()...)
		contexts = append(contexts, rec.Column(1).(*array.Int32).Int32Values()...)
	}
	require.NoError(t, r.Err())

	assert.Equal(t, 2, records)
	assert.Equal(t, []int32{0, 0, 1, 2}, centers)
	assert.Equal(t, []int32{1, 2, 0, 1}, contexts)
}

func TestExportEpoch(t *testing.T) {
	cfg := pipeline.DefaultConfig()
	cfg.Threshold = 1.0
	cfg.Seed = 5
	cfg.BatchSize = 4
	cfg.WindowSize = 1
	p, err := pipeline.New(cfg)
	require.NoError(t, err)

	prep, err := p.Prepare(context.Background(), []string{"a", "b", "a", "c", "a", "b"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "pairs.arrow")
	require.NoError(t, exportEpoch(p, prep, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r, err := ipc.NewReader(f)
	require.NoError(t, err)
	defer r.Release()

	var rows int64
	for r.Next() {
		rows += r.Record().NumRows()
	}
	require.NoError(t, r.Err())
	assert.Equal(t, int64(8), rows)
}
