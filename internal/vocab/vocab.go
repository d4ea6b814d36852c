// Package vocab maps tokens to dense integer ids ordered by frequency.
package vocab

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownToken is returned when encoding a token the vocabulary never saw.
var ErrUnknownToken = errors.New("token not in vocabulary")

// Vocabulary is a bijection between tokens and ids in [0, Size()).
// Id 0 is the most frequent token. It is immutable once built.
type Vocabulary struct {
	toID   map[string]int
	tokens []string
	counts []int
	total  int
}

// Build counts tokens and assigns ids by descending count.
// Ties keep the order in which tokens were first seen.
func Build(tokens []string) *Vocabulary {
	counts := make(map[string]int)
	var order []string
	for _, tok := range tokens {
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	v := &Vocabulary{
		toID:   make(map[string]int, len(order)),
		tokens: order,
		counts: make([]int, len(order)),
		total:  len(tokens),
	}
	for id, tok := range order {
		v.toID[tok] = id
		v.counts[id] = counts[tok]
	}
	return v
}

// Size returns the number of distinct tokens.
func (v *Vocabulary) Size() int {
	return len(v.tokens)
}

// Total returns the number of tokens the vocabulary was built from.
func (v *Vocabulary) Total() int {
	return v.total
}

// ID looks up the id for token.
func (v *Vocabulary) ID(token string) (int, bool) {
	id, ok := v.toID[token]
	return id, ok
}

// Token returns the token for id, or "" if id is out of range.
func (v *Vocabulary) Token(id int) string {
	if id < 0 || id >= len(v.tokens) {
		return ""
	}
	return v.tokens[id]
}

// Count returns how often the token with the given id occurred.
func (v *Vocabulary) Count(id int) int {
	if id < 0 || id >= len(v.counts) {
		return 0
	}
	return v.counts[id]
}

// Tokens returns the tokens in id order. The slice must not be modified.
func (v *Vocabulary) Tokens() []string {
	return v.tokens
}

// Encode maps every token to its id.
func (v *Vocabulary) Encode(tokens []string) ([]int, error) {
	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		id, ok := v.toID[tok]
		if !ok {
			return nil, fmt.Errorf("encode position %d %q: %w", i, tok, ErrUnknownToken)
		}
		ids[i] = id
	}
	return ids, nil
}

// VocabToInt returns a copy of the token to id mapping.
func (v *Vocabulary) VocabToInt() map[string]int {
	m := make(map[string]int, len(v.toID))
	for tok, id := range v.toID {
		m[tok] = id
	}
	return m
}

// IntToVocab returns the id to token mapping.
func (v *Vocabulary) IntToVocab() map[int]string {
	m := make(map[int]string, len(v.tokens))
	for id, tok := range v.tokens {
		m[id] = tok
	}
	return m
}
