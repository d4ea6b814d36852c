package client

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"

	"github.com/23skdu/longbow-skipgram/internal/sampling"
)

func TestBuildPairBatch(t *testing.T) {
	pool := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer pool.AssertSize(t, 0)
	builder := NewRecordBatchBuilder(pool)

	t.Run("Empty input", func(t *testing.T) {
		rb := builder.BuildPairBatch(sampling.Batch{})
		defer rb.Release()
		assert.Equal(t, int64(0), rb.NumRows())
		assert.Equal(t, int64(2), rb.NumCols())
	})

	t.Run("Valid input", func(t *testing.T) {
		rb := builder.BuildPairBatch(sampling.Batch{
			Inputs:  []int{10, 11, 11, 12},
			Targets: []int{11, 10, 12, 11},
		})
		defer rb.Release()

		assert.Equal(t, int64(4), rb.NumRows())
		assert.Equal(t, "center", rb.ColumnName(0))
		assert.Equal(t, "context", rb.ColumnName(1))

		centers := rb.Column(0).(*array.Int32)
		contexts := rb.Column(1).(*array.Int32)
		assert.Equal(t, []int32{10, 11, 11, 12}, centers.Int32Values())
		assert.Equal(t, []int32{11, 10, 12, 11}, contexts.Int32Values())
	})
}
