// Package corpus loads raw text and turns it into token sequences.
package corpus

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/23skdu/longbow-skipgram/internal/tokenizer"
)

// Load reads the whole file at path into memory and tokenizes it.
func Load(path string, tok tokenizer.Tokenizer) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}
	log.Debug().Str("path", path).Int("bytes", len(data)).Msg("Corpus read")
	return tok.Tokenize(string(data)), nil
}
