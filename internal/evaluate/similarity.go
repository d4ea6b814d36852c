// Package evaluate scores trained embeddings by cosine similarity.
package evaluate

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrInvalidValidSize   = errors.New("validation size must be positive and even")
	ErrInvalidValidWindow = errors.New("validation window must be positive")
	ErrWindowExceedsVocab = errors.New("twice the validation window exceeds the vocabulary")
	ErrIDOutOfRange       = errors.New("vocabulary id out of range")
)

// IntSource picks validation ids. *rand.Rand from math/rand/v2 satisfies it.
type IntSource interface {
	IntN(n int) int
}

// Options controls how validation words are picked.
type Options struct {
	// ValidSize is the number of validation words. Must be even.
	ValidSize int
	// ValidWindow splits ids into common [0, w) and less common [w, 2w) words.
	ValidWindow int
	// Device names where the computation runs. It only labels metrics.
	Device string
}

// DefaultOptions returns 16 validation words drawn from the 200 most frequent ids.
func DefaultOptions() Options {
	return Options{ValidSize: 16, ValidWindow: 100, Device: "cpu"}
}

// Neighbour is a vocabulary id and its similarity to a query.
type Neighbour struct {
	ID         int     `cbor:"id"`
	Similarity float64 `cbor:"similarity"`
}

// Result holds the validation ids and their similarity to every vocabulary row.
type Result struct {
	ValidIDs []int

	// Similarities is [len(ValidIDs), V]; entry (i, j) is the cosine
	// similarity of ValidIDs[i] and id j.
	Similarities *mat.Dense
}

// CosineSimilarity picks ValidSize/2 ids from [0, ValidWindow) and ValidSize/2
// from [ValidWindow, 2*ValidWindow), then scores each against every row of emb.
// emb is [V, D] and is not modified.
func CosineSimilarity(emb mat.Matrix, opts Options, rng IntSource) (*Result, error) {
	start := time.Now()

	if opts.ValidSize <= 0 || opts.ValidSize%2 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidValidSize, opts.ValidSize)
	}
	if opts.ValidWindow <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidValidWindow, opts.ValidWindow)
	}
	rows, cols := emb.Dims()
	if 2*opts.ValidWindow > rows {
		return nil, fmt.Errorf("%w: 2*%d > %d", ErrWindowExceedsVocab, opts.ValidWindow, rows)
	}

	half := opts.ValidSize / 2
	ids := make([]int, opts.ValidSize)
	for i := 0; i < half; i++ {
		ids[i] = rng.IntN(opts.ValidWindow)
	}
	for i := half; i < opts.ValidSize; i++ {
		ids[i] = opts.ValidWindow + rng.IntN(opts.ValidWindow)
	}

	norm := NormalizeRows(emb)
	valid := mat.NewDense(opts.ValidSize, cols, nil)
	for i, id := range ids {
		valid.SetRow(i, norm.RawRowView(id))
	}

	sims := mat.NewDense(opts.ValidSize, rows, nil)
	sims.Mul(valid, norm.T())

	device := opts.Device
	if device == "" {
		device = "cpu"
	}
	evaluationDuration.WithLabelValues(device).Observe(time.Since(start).Seconds())
	validationWords.Add(float64(len(ids)))

	return &Result{ValidIDs: ids, Similarities: sims}, nil
}

// Nearest returns the k vocabulary ids most similar to validation word i,
// excluding the validation id itself.
func (r *Result) Nearest(i, k int) []Neighbour {
	return topK(r.Similarities.RawRowView(i), r.ValidIDs[i], k)
}

// NormalizeRows returns a copy of m with every row scaled to unit L2 norm.
// All-zero rows are left as zeros.
func NormalizeRows(m mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(m)
	rows, _ := out.Dims()
	for i := 0; i < rows; i++ {
		row := out.RawRowView(i)
		if n := floats.Norm(row, 2); n > 0 {
			floats.Scale(1/n, row)
		}
	}
	return out
}

// Index answers nearest-neighbour queries over a normalised embedding matrix.
type Index struct {
	norm *mat.Dense
}

// NewIndex normalises emb once for repeated queries.
func NewIndex(emb mat.Matrix) *Index {
	return &Index{norm: NormalizeRows(emb)}
}

// Size returns the number of rows in the index.
func (x *Index) Size() int {
	rows, _ := x.norm.Dims()
	return rows
}

// Similar returns the k ids closest to id, excluding id itself.
func (x *Index) Similar(id, k int) ([]Neighbour, error) {
	rows, _ := x.norm.Dims()
	if id < 0 || id >= rows {
		return nil, fmt.Errorf("%w: %d", ErrIDOutOfRange, id)
	}
	scores := mat.NewVecDense(rows, nil)
	scores.MulVec(x.norm, x.norm.RowView(id))
	return topK(scores.RawVector().Data, id, k), nil
}

func topK(scores []float64, exclude, k int) []Neighbour {
	out := make([]Neighbour, 0, len(scores))
	for id, s := range scores {
		if id != exclude {
			out = append(out, Neighbour{ID: id, Similarity: s})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Similarity > out[b].Similarity
	})
	if k < len(out) {
		out = out[:max(k, 0)]
	}
	return out
}
