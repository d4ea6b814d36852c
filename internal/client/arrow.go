package client

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/23skdu/longbow-skipgram/internal/sampling"
)

// PairSchema is the Arrow layout for skip-gram training pairs.
var PairSchema = arrow.NewSchema(
	[]arrow.Field{
		{Name: "center", Type: arrow.PrimitiveTypes.Int32},
		{Name: "context", Type: arrow.PrimitiveTypes.Int32},
	},
	nil,
)

// RecordBatchBuilder creates Arrow RecordBatches from skip-gram batches.
type RecordBatchBuilder struct {
	mem memory.Allocator
}

// NewRecordBatchBuilder creates a new builder.
func NewRecordBatchBuilder(mem memory.Allocator) *RecordBatchBuilder {
	return &RecordBatchBuilder{mem: mem}
}

// BuildPairBatch converts a batch into a record with one row per pair.
// The caller must Release the record.
func (b *RecordBatchBuilder) BuildPairBatch(batch sampling.Batch) arrow.RecordBatch {
	centers := array.NewInt32Builder(b.mem)
	defer centers.Release()
	contexts := array.NewInt32Builder(b.mem)
	defer contexts.Release()

	centers.Reserve(batch.Len())
	contexts.Reserve(batch.Len())
	for i := range batch.Inputs {
		centers.UnsafeAppend(int32(batch.Inputs[i]))
		contexts.UnsafeAppend(int32(batch.Targets[i]))
	}

	centerArr := centers.NewArray()
	defer centerArr.Release()
	contextArr := contexts.NewArray()
	defer contextArr.Release()

	return array.NewRecordBatch(PairSchema, []arrow.Array{centerArr, contextArr}, int64(batch.Len()))
}
