package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/23skdu/longbow-skipgram/internal/embeddings"
)

func writeRawMatrix(t *testing.T, rows, cols int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "emb.bin")
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, make([]float32, rows*cols)))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func writeArrowMatrix(t *testing.T, rows, cols int) string {
	t.Helper()
	pool := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: embeddings.ColumnName, Type: arrow.FixedSizeListOf(int32(cols), arrow.PrimitiveTypes.Float32)},
	}, nil)

	b := array.NewFixedSizeListBuilder(pool, int32(cols), arrow.PrimitiveTypes.Float32)
	defer b.Release()
	values := b.ValueBuilder().(*array.Float32Builder)
	for i := 0; i < rows; i++ {
		b.Append(true)
		values.AppendValues(make([]float32, cols), nil)
	}
	arr := b.NewArray()
	defer arr.Release()

	rec := array.NewRecordBatch(schema, []arrow.Array{arr}, int64(rows))
	defer rec.Release()

	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(schema))
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "emb.arrow")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func TestLoadEmbeddings_RowsMatchVocabulary(t *testing.T) {
	vocabSize := prepareTiny(t).Vocab.Size()

	emb, err := loadEmbeddings(writeRawMatrix(t, vocabSize, 4), 4, vocabSize)
	require.NoError(t, err)
	rows, _ := emb.Dims()
	assert.Equal(t, vocabSize, rows)

	emb, err = loadEmbeddings(writeArrowMatrix(t, vocabSize, 4), 0, vocabSize)
	require.NoError(t, err)
	rows, _ = emb.Dims()
	assert.Equal(t, vocabSize, rows)
}

func TestLoadEmbeddings_RejectsMismatchedRows(t *testing.T) {
	vocabSize := prepareTiny(t).Vocab.Size()

	for _, rows := range []int{vocabSize - 1, 300} {
		_, err := loadEmbeddings(writeRawMatrix(t, rows, 4), 4, vocabSize)
		require.ErrorIs(t, err, embeddings.ErrShapeMismatch, "raw rows=%d", rows)

		_, err = loadEmbeddings(writeArrowMatrix(t, rows, 4), 0, vocabSize)
		require.ErrorIs(t, err, embeddings.ErrShapeMismatch, "arrow rows=%d", rows)
	}
}
