package sampling

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/23skdu/longbow-skipgram/internal/vocab"
)

// DefaultThreshold is the subsampling threshold t from the word2vec paper.
const DefaultThreshold = 1e-5

// epsilon keeps the discard formula finite for ids that never occur.
const epsilon = 1e-10

// Result is the output of Subsample.
type Result struct {
	// Kept holds the surviving ids in corpus order.
	Kept []int

	// Frequencies maps every vocabulary token to count/total over the
	// full sequence, whether or not the token survived.
	Frequencies map[string]float64
}

// DiscardProbability returns 1 - sqrt(t/(f+epsilon)).
// It is never positive when freq <= threshold, so such tokens are always kept.
func DiscardProbability(freq, threshold float64) float64 {
	p := 1 - math.Sqrt(threshold/(freq+epsilon))
	if freq <= threshold && p > 0 {
		return 0
	}
	return p
}

// Subsample encodes tokens with v and discards frequent ids at random.
// v must have been built from a token list covering tokens.
func Subsample(tokens []string, v *vocab.Vocabulary, threshold float64, rng Source) (*Result, error) {
	if !(threshold > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
	}

	ids, err := v.Encode(tokens)
	if err != nil {
		return nil, fmt.Errorf("subsample: %w", err)
	}

	counts := make([]int, v.Size())
	for _, id := range ids {
		counts[id]++
	}

	total := float64(len(ids))
	freqs := make([]float64, len(counts))
	probs := make([]float64, len(counts))
	for id, c := range counts {
		if total > 0 {
			freqs[id] = float64(c) / total
		}
		probs[id] = DiscardProbability(freqs[id], threshold)
	}

	kept := make([]int, 0, len(ids))
	for _, id := range ids {
		u := rng.Float64()
		if p := probs[id]; p <= 0 || u > p {
			kept = append(kept, id)
		}
	}

	frequencies := make(map[string]float64, len(freqs))
	for id, f := range freqs {
		frequencies[v.Token(id)] = f
	}

	subsampledTokens.WithLabelValues("kept").Add(float64(len(kept)))
	subsampledTokens.WithLabelValues("discarded").Add(float64(len(ids) - len(kept)))
	log.Debug().
		Int("total", len(ids)).
		Int("kept", len(kept)).
		Float64("threshold", threshold).
		Msg("Subsampling applied")

	return &Result{Kept: kept, Frequencies: frequencies}, nil
}
