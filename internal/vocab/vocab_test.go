package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tokens := []string{"a", "b", "a", "c", "a", "b"}
	v := Build(tokens)

	require.Equal(t, 3, v.Size())
	require.Equal(t, 6, v.Total())

	id, ok := v.ID("a")
	require.True(t, ok)
	assert.Equal(t, 0, id)
	assert.Equal(t, 3, v.Count(0))

	// b (2) before c (1)
	assert.Equal(t, "b", v.Token(1))
	assert.Equal(t, "c", v.Token(2))
}

func TestBuild_Bijection(t *testing.T) {
	tokens := []string{"the", "quick", "brown", "fox", "jumps", "over", "the", "lazy", "dog", "the", "fox"}
	v := Build(tokens)

	toInt := v.VocabToInt()
	toVocab := v.IntToVocab()
	require.Len(t, toInt, 8)
	require.Len(t, toVocab, 8)

	for tok, id := range toInt {
		assert.Equal(t, tok, toVocab[id])
	}
	for id := 0; id < v.Size(); id++ {
		assert.Contains(t, toVocab, id)
	}

	assert.Equal(t, "the", v.Token(0))
	assert.Equal(t, "fox", v.Token(1))
}

func TestBuild_TieBreakFirstSeen(t *testing.T) {
	v := Build([]string{"z", "y", "x", "y", "z", "x"})
	assert.Equal(t, []string{"z", "y", "x"}, v.Tokens())

	again := Build([]string{"z", "y", "x", "y", "z", "x"})
	assert.Equal(t, v.Tokens(), again.Tokens())
}

func TestBuild_Empty(t *testing.T) {
	v := Build(nil)
	assert.Equal(t, 0, v.Size())
	assert.Empty(t, v.VocabToInt())
	assert.Empty(t, v.IntToVocab())
	assert.Equal(t, "", v.Token(0))
}

func TestEncode(t *testing.T) {
	v := Build([]string{"a", "b", "a"})

	ids, err := v.Encode([]string{"b", "a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 1}, ids)

	_, err = v.Encode([]string{"a", "missing"})
	require.ErrorIs(t, err, ErrUnknownToken)
}

func TestTokenOutOfRange(t *testing.T) {
	v := Build([]string{"a"})
	assert.Equal(t, "", v.Token(-1))
	assert.Equal(t, "", v.Token(1))
	assert.Equal(t, 0, v.Count(5))
}
