package embeddings

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
)

func writeRaw(t *testing.T, values []float32) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "embeddings.bin")
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, values))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func TestLoadRawFloat32(t *testing.T) {
	path := writeRaw(t, []float32{1, 2, 3, 4, 5, 6})

	m, err := LoadRawFloat32(path, 2, 3)
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, []float64{4, 5, 6}, m.RawRowView(1))

	t.Run("InferRows", func(t *testing.T) {
		m, err := LoadRawFloat32(path, 0, 2)
		require.NoError(t, err)
		r, _ := m.Dims()
		assert.Equal(t, 3, r)
	})

	t.Run("ShapeMismatch", func(t *testing.T) {
		_, err := LoadRawFloat32(path, 4, 3)
		require.ErrorIs(t, err, ErrShapeMismatch)

		_, err = LoadRawFloat32(path, 0, 4)
		require.ErrorIs(t, err, ErrShapeMismatch)

		_, err = LoadRawFloat32(path, 2, 0)
		require.ErrorIs(t, err, ErrShapeMismatch)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadRawFloat32("non_existent_file", 1, 1)
		require.Error(t, err)
	})
}

func embeddingStream(t *testing.T, dim int, rows ...[]float32) []byte {
	t.Helper()
	pool := memory.NewGoAllocator()
	schema := arrow.NewSchema(
		[]arrow.Field{
			{Name: "token", Type: arrow.BinaryTypes.String},
			{Name: ColumnName, Type: arrow.FixedSizeListOf(int32(dim), arrow.PrimitiveTypes.Float32)},
		},
		nil,
	)

	tokenBuilder := array.NewStringBuilder(pool)
	defer tokenBuilder.Release()
	embedBuilder := array.NewFixedSizeListBuilder(pool, int32(dim), arrow.PrimitiveTypes.Float32)
	defer embedBuilder.Release()
	floatBuilder := embedBuilder.ValueBuilder().(*array.Float32Builder)

	for i, row := range rows {
		tokenBuilder.Append(string(rune('a' + i)))
		embedBuilder.Append(true)
		floatBuilder.AppendValues(row, nil)
	}

	tokenArr := tokenBuilder.NewArray()
	defer tokenArr.Release()
	embedArr := embedBuilder.NewArray()
	defer embedArr.Release()

	rec := array.NewRecordBatch(schema, []arrow.Array{tokenArr, embedArr}, int64(len(rows)))
	defer rec.Release()

	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(schema))
	require.NoError(t, writer.Write(rec))
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

func TestLoadArrow(t *testing.T) {
	stream := embeddingStream(t, 2, []float32{1, 0}, []float32{0, 1}, []float32{0.5, 0.5})

	m, err := LoadArrow(bytes.NewReader(stream))
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, []float64{0.5, 0.5}, m.RawRowView(2))
}

func TestLoadArrowFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.arrow")
	require.NoError(t, os.WriteFile(path, embeddingStream(t, 3, []float32{1, 2, 3}), 0644))

	m, err := LoadArrowFile(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, m.RawRowView(0))
}

func TestLoadArrow_Empty(t *testing.T) {
	_, err := LoadArrow(bytes.NewReader(embeddingStream(t, 2)))
	require.ErrorIs(t, err, ErrNoEmbeddings)
}

func TestLoadArrow_MissingColumn(t *testing.T) {
	pool := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{{Name: "f1", Type: arrow.PrimitiveTypes.Float32}}, nil)
	b := array.NewFloat32Builder(pool)
	defer b.Release()
	b.AppendValues([]float32{1, 2}, nil)
	a := b.NewArray()
	defer a.Release()
	rec := array.NewRecordBatch(schema, []arrow.Array{a}, 2)
	defer rec.Release()

	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(schema))
	require.NoError(t, writer.Write(rec))
	require.NoError(t, writer.Close())

	_, err := LoadArrow(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ColumnName)
}

func TestCheckRows(t *testing.T) {
	m, err := LoadRawFloat32(writeRaw(t, make([]float32, 12)), 0, 4)
	require.NoError(t, err)

	require.NoError(t, CheckRows(m, 3))
	require.ErrorIs(t, CheckRows(m, 2), ErrShapeMismatch)
	require.ErrorIs(t, CheckRows(m, 300), ErrShapeMismatch)
}
