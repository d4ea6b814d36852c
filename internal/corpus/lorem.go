package corpus

import (
	"strings"
)

var loremWords = []string{
	"lorem", "ipsum", "dolor", "sit", "amet", "consectetur", "adipiscing", "elit",
	"sed", "do", "eiusmod", "tempor", "incididunt", "ut", "labore", "et", "dolore",
	"magna", "aliqua", "ut", "enim", "ad", "minim", "veniam", "quis", "nostrud",
	"exercitation", "ullamco", "laboris", "nisi", "ut", "aliquip", "ex", "ea",
	"commodo", "consequat", "duis", "aute", "irure", "dolor", "in", "reprehenderit",
	"in", "voluptate", "velit", "esse", "cillum", "dolore", "eu", "fugiat", "nulla",
	"pariatur", "excepteur", "sint", "occaecat", "cupidatat", "non", "proident",
	"sunt", "in", "culpa", "qui", "officia", "deserunt", "mollit", "anim", "id", "est", "laborum",
}

// IntSource is the slice of math/rand/v2's *Rand used by GenerateLorem.
type IntSource interface {
	IntN(n int) int
}

// GenerateLorem builds a synthetic corpus of lorem ipsum paragraphs separated
// by blank lines. Each paragraph has 3-7 sentences of 5-14 words.
//
// Words are drawn as the minimum of two uniform indices, so earlier entries of
// the word list are much more frequent than later ones. The resulting
// long-tailed counts give subsampling something to discard.
func GenerateLorem(paragraphs int, rng IntSource) string {
	var sb strings.Builder
	for p := range max(paragraphs, 0) {
		if p > 0 {
			sb.WriteString("\n\n")
		}
		for s := range 3 + rng.IntN(5) {
			if s > 0 {
				sb.WriteByte(' ')
			}
			writeSentence(&sb, 5+rng.IntN(10), rng)
		}
	}
	return sb.String()
}

func writeSentence(sb *strings.Builder, words int, rng IntSource) {
	for w := range words {
		word := skewedWord(rng)
		if w == 0 {
			sb.WriteString(strings.ToUpper(word[:1]))
			sb.WriteString(word[1:])
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(word)
	}
	sb.WriteByte('.')
}

func skewedWord(rng IntSource) string {
	n := len(loremWords)
	return loremWords[min(rng.IntN(n), rng.IntN(n))]
}
