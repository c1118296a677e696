package scoring

import "errors"

// Validation sentinels. Callers match with errors.Is; the wrapped message
// carries the offending index or dimension.
var (
	ErrRaggedMatrix    = errors.New("metric rows must have the same length")
	ErrDirectionLength = errors.New("directions must have one entry per metric column")
	ErrWeightLength    = errors.New("weights must have one entry per metric column")
	ErrCapRange        = errors.New("cap fraction must be in (0, 1]")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrNonFinite       = errors.New("non-finite metric value")
	ErrModeUnknown     = errors.New("unknown mode")
)
