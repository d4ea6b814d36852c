package sampling

import "fmt"

// Window picks R uniformly from [1, windowSize] and returns the items within
// R positions of idx, excluding idx itself, in order. The result holds
// between 0 and 2*windowSize items.
func Window[T any](seq []T, idx, windowSize int, rng Source) ([]T, error) {
	if windowSize < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, windowSize)
	}
	if idx < 0 || idx >= len(seq) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, idx, len(seq))
	}
	return appendWindow(nil, seq, idx, windowSize, rng), nil
}

// appendWindow appends the context of seq[idx] to dst. Arguments must already be valid.
func appendWindow[T any](dst, seq []T, idx, windowSize int, rng Source) []T {
	r := 1 + rng.IntN(windowSize)
	start := max(0, idx-r)
	end := min(len(seq), idx+r+1)

	dst = append(dst, seq[start:idx]...)
	return append(dst, seq[idx+1:end]...)
}
