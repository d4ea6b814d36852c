package tokenizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tokenizer defines the interface for text tokenization.
// Implementations must be deterministic for a fixed input.
type Tokenizer interface {
	Tokenize(text string) []string
}

// PunctuationMode decides how punctuation is treated when splitting words.
type PunctuationMode int

const (
	// NamePunctuation replaces each punctuation rune with a named token such as <PERIOD>.
	// Punctuation without a name is dropped.
	NamePunctuation PunctuationMode = iota
	// DropPunctuation removes punctuation entirely.
	DropPunctuation
	// KeepPunctuation treats punctuation as an ordinary word character.
	KeepPunctuation
)

var punctuationNames = map[rune]string{
	'.':  "<PERIOD>",
	',':  "<COMMA>",
	'"':  "<QUOTATION_MARK>",
	';':  "<SEMICOLON>",
	'!':  "<EXCLAMATION_MARK>",
	'?':  "<QUESTION_MARK>",
	'(':  "<LEFT_PAREN>",
	')':  "<RIGHT_PAREN>",
	'-':  "<HYPHENS>",
	':':  "<COLON>",
	'\'': "<APOSTROPHE>",
}

// WordTokenizer splits text into lowercase, accent-stripped word tokens.
type WordTokenizer struct {
	Punctuation PunctuationMode

	// PreserveCase disables lowercasing.
	PreserveCase bool

	// MinCount drops words that occur MinCount times or fewer.
	// Punctuation names are subject to the same rule. Zero disables trimming.
	MinCount int
}

// NewWordTokenizer returns a tokenizer that names punctuation and keeps every word.
func NewWordTokenizer() *WordTokenizer {
	return &WordTokenizer{Punctuation: NamePunctuation}
}

// Tokenize implements Tokenizer.
func (t *WordTokenizer) Tokenize(text string) []string {
	if !t.PreserveCase {
		text = strings.ToLower(text)
	}
	text = stripMarks(text)

	tokens := t.split(text)
	if t.MinCount > 0 {
		tokens = trimRare(tokens, t.MinCount)
	}
	return tokens
}

func stripMarks(text string) string {
	if isASCII(text) {
		return text
	}
	tform := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(tform, text)
	if err != nil {
		return text
	}
	return out
}

func (t *WordTokenizer) split(text string) []string {
	tokens := make([]string, 0, len(text)/5)
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range text {
		if unicode.IsSpace(r) {
			flush()
			continue
		}
		if !isPunctuation(r) || t.Punctuation == KeepPunctuation {
			current.WriteRune(r)
			continue
		}
		flush()
		if t.Punctuation == NamePunctuation {
			if name, ok := punctuationNames[r]; ok {
				tokens = append(tokens, name)
			}
		}
	}
	flush()
	return tokens
}

func trimRare(tokens []string, minCount int) []string {
	counts := make(map[string]int, len(tokens)/4)
	for _, tok := range tokens {
		counts[tok]++
	}
	kept := tokens[:0]
	for _, tok := range tokens {
		if counts[tok] > minCount {
			kept = append(kept, tok)
		}
	}
	return kept
}
