// Package embeddings loads externally trained [V, D] embedding matrices.
package embeddings

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// ColumnName is the Arrow column holding one fixed-size list<float32> per vocabulary id.
const ColumnName = "embedding"

var (
	ErrShapeMismatch = errors.New("embedding file does not match requested shape")
	ErrNoEmbeddings  = errors.New("no embedding rows found")
)

// LoadRawFloat32 reads a row-major little-endian float32 matrix with cols
// columns. If rows <= 0 the row count is inferred from the file size.
func LoadRawFloat32(path string, rows, cols int) (*mat.Dense, error) {
	if cols <= 0 {
		return nil, fmt.Errorf("%w: cols=%d", ErrShapeMismatch, cols)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	rowBytes := int64(cols) * 4
	if rows <= 0 {
		if info.Size()%rowBytes != 0 {
			return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrShapeMismatch, info.Size(), rowBytes)
		}
		rows = int(info.Size() / rowBytes)
	}
	if info.Size() != int64(rows)*rowBytes {
		return nil, fmt.Errorf("%w: %d bytes, want %dx%d float32", ErrShapeMismatch, info.Size(), rows, cols)
	}
	if rows == 0 {
		return nil, ErrNoEmbeddings
	}

	f32s := make([]float32, rows*cols)
	if err := binary.Read(bufio.NewReader(file), binary.LittleEndian, f32s); err != nil {
		return nil, fmt.Errorf("failed to read embeddings: %w", err)
	}
	data := make([]float64, len(f32s))
	for i, v := range f32s {
		data[i] = float64(v)
	}

	log.Debug().Str("path", path).Int("rows", rows).Int("cols", cols).Msg("Loaded raw embeddings")
	return mat.NewDense(rows, cols, data), nil
}

// LoadArrow reads an Arrow IPC stream whose ColumnName column is a
// fixed-size list of float32. Rows across record batches are concatenated
// in stream order.
func LoadArrow(r io.Reader) (*mat.Dense, error) {
	reader, err := ipc.NewReader(r, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("failed to create IPC reader: %w", err)
	}
	defer reader.Release()

	var (
		data []float64
		rows int
		dim  int
	)
	for reader.Next() {
		rec := reader.Record()
		indices := rec.Schema().FieldIndices(ColumnName)
		if len(indices) == 0 {
			return nil, fmt.Errorf("missing %q column", ColumnName)
		}
		fsl, ok := rec.Column(indices[0]).(*array.FixedSizeList)
		if !ok {
			return nil, fmt.Errorf("column %q is %s, want fixed_size_list<float32>", ColumnName, rec.Column(indices[0]).DataType())
		}
		values, ok := fsl.ListValues().(*array.Float32)
		if !ok {
			return nil, fmt.Errorf("column %q values are %s, want float32", ColumnName, fsl.ListValues().DataType())
		}

		width := int(fsl.DataType().(*arrow.FixedSizeListType).Len())
		if dim == 0 {
			dim = width
		} else if dim != width {
			return nil, fmt.Errorf("%w: batch width %d, want %d", ErrShapeMismatch, width, dim)
		}

		for i := 0; i < fsl.Len(); i++ {
			start, end := fsl.ValueOffsets(i)
			for j := start; j < end; j++ {
				data = append(data, float64(values.Value(int(j))))
			}
			rows++
		}
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("error reading Arrow stream: %w", err)
	}
	if rows == 0 || dim == 0 {
		return nil, ErrNoEmbeddings
	}

	log.Debug().Int("rows", rows).Int("cols", dim).Msg("Loaded Arrow embeddings")
	return mat.NewDense(rows, dim, data), nil
}

// LoadArrowFile opens path and calls LoadArrow.
func LoadArrowFile(path string) (*mat.Dense, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	return LoadArrow(bufio.NewReader(file))
}

// CheckRows reports ErrShapeMismatch unless m has exactly vocabSize rows,
// one per vocabulary id.
func CheckRows(m mat.Matrix, vocabSize int) error {
	if rows, _ := m.Dims(); rows != vocabSize {
		return fmt.Errorf("%w: %d embedding rows for %d vocabulary words", ErrShapeMismatch, rows, vocabSize)
	}
	return nil
}
