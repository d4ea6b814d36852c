// Package sampling implements Mikolov subsampling and skip-gram pair generation.
//
// Every random decision is drawn from an injected Source so that runs can be
// reproduced under a fixed seed. *rand.Rand from math/rand/v2 satisfies Source.
package sampling

import "errors"

// Source is the random source used by the samplers.
type Source interface {
	// IntN returns a uniform integer in [0, n).
	IntN(n int) int
	// Float64 returns a uniform float in [0, 1).
	Float64() float64
}

var (
	ErrInvalidThreshold = errors.New("subsampling threshold must be positive")
	ErrInvalidWindow    = errors.New("window size must be at least 1")
	ErrInvalidBatchSize = errors.New("batch size must be at least 1")
	ErrIndexOutOfRange  = errors.New("target index out of range")
)
