package pipeline

import (
	"fmt"
	"os"
	"strconv"

	"github.com/23skdu/longbow-skipgram/internal/sampling"
)

// Config holds the data preparation settings.
type Config struct {
	// CorpusPath is the plain-text file read wholly into memory.
	CorpusPath string
	// Threshold is the subsampling threshold t.
	Threshold float64
	// Seed seeds the random source; runs with equal non-zero seeds are identical.
	// Zero picks a fresh seed per run.
	Seed uint64
	// MinCount drops words occurring MinCount times or fewer before the vocabulary is built.
	MinCount int
	// BatchSize is the number of ids per chunk in the batch generator.
	BatchSize int
	// WindowSize is the maximum context distance.
	WindowSize int
}

// DefaultConfig returns the settings used when no flags are given.
func DefaultConfig() *Config {
	return &Config{
		CorpusPath: "data/text8",
		Threshold:  sampling.DefaultThreshold,
		Seed:       0,
		MinCount:   0,
		BatchSize:  512,
		WindowSize: 5,
	}
}

// ApplyEnv overrides fields from SKIPGRAM_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("SKIPGRAM_CORPUS"); v != "" {
		c.CorpusPath = v
	}
	if v := os.Getenv("SKIPGRAM_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SKIPGRAM_THRESHOLD: %w", err)
		}
		c.Threshold = f
	}
	if v := os.Getenv("SKIPGRAM_SEED"); v != "" {
		s, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SKIPGRAM_SEED: %w", err)
		}
		c.Seed = s
	}
	if v := os.Getenv("SKIPGRAM_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SKIPGRAM_BATCH_SIZE: %w", err)
		}
		c.BatchSize = n
	}
	if v := os.Getenv("SKIPGRAM_WINDOW"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SKIPGRAM_WINDOW: %w", err)
		}
		c.WindowSize = n
	}
	return nil
}

// Validate checks the numeric settings.
func (c *Config) Validate() error {
	if c.CorpusPath == "" {
		return fmt.Errorf("corpus path is required")
	}
	if !(c.Threshold > 0) {
		return fmt.Errorf("%w: %v", sampling.ErrInvalidThreshold, c.Threshold)
	}
	if c.MinCount < 0 {
		return fmt.Errorf("invalid min count: %d", c.MinCount)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("%w: %d", sampling.ErrInvalidBatchSize, c.BatchSize)
	}
	if c.WindowSize < 1 {
		return fmt.Errorf("%w: %d", sampling.ErrInvalidWindow, c.WindowSize)
	}
	return nil
}
