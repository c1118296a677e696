package scoring

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Direction marks how a metric column is read: +1 means a higher raw value is
// better, -1 means a lower raw value is better.
type Direction int8

const (
	HigherIsBetter Direction = 1
	LowerIsBetter  Direction = -1
)

// AggregationMode selects the weighted mean used to collapse a quality row
// into a single composite score.
type AggregationMode uint8

const (
	AggregationArithmetic AggregationMode = iota
	AggregationGeometric
	AggregationHarmonic
)

func (m AggregationMode) String() string {
	switch m {
	case AggregationArithmetic:
		return "arithmetic"
	case AggregationGeometric:
		return "geometric"
	case AggregationHarmonic:
		return "harmonic"
	}
	return fmt.Sprintf("aggregation(%d)", uint8(m))
}

// ParseAggregationMode maps a policy string onto an AggregationMode.
func ParseAggregationMode(s string) (AggregationMode, error) {
	switch s {
	case "arithmetic":
		return AggregationArithmetic, nil
	case "geometric":
		return AggregationGeometric, nil
	case "harmonic":
		return AggregationHarmonic, nil
	}
	return 0, fmt.Errorf("%w: aggregation mode %q, expected arithmetic, geometric or harmonic", ErrModeUnknown, s)
}

// NonFiniteMode controls what happens when a raw metric value is NaN or
// infinite: sanitize it to 0, or reject the whole matrix.
type NonFiniteMode uint8

const (
	NonFiniteSanitize NonFiniteMode = iota
	NonFiniteReject
)

func (m NonFiniteMode) String() string {
	switch m {
	case NonFiniteSanitize:
		return "sanitize"
	case NonFiniteReject:
		return "reject"
	}
	return fmt.Sprintf("nonfinite(%d)", uint8(m))
}

// ParseNonFiniteMode maps a policy string onto a NonFiniteMode. The empty
// string selects sanitize, matching the historical behavior.
func ParseNonFiniteMode(s string) (NonFiniteMode, error) {
	switch s {
	case "", "sanitize":
		return NonFiniteSanitize, nil
	case "reject":
		return NonFiniteReject, nil
	}
	return 0, fmt.Errorf("%w: non-finite mode %q, expected sanitize or reject", ErrModeUnknown, s)
}

// NormalizeParams configures the metric normalizer.
type NormalizeParams struct {
	Directions   []Direction // one per metric column; nil means all HigherIsBetter
	ConstantFill float64     // quality assigned to every cell of a constant column
	Epsilon      float64
	NonFinite    NonFiniteMode
}

// AggregateParams configures the quality aggregator.
type AggregateParams struct {
	Weights []float64 // one per metric column; nil means uniform
	Mode    AggregationMode
	Epsilon float64
}

// CapParams configures the cap clipper. A zero Fraction means capping is
// disabled at the allocator level; CapShares itself requires (0, 1].
type CapParams struct {
	Fraction      float64
	Epsilon       float64
	MaxIterations int
}

// AggregateResult carries the composite scores and the renormalized weights
// actually used to produce them.
type AggregateResult struct {
	Scores           []float64
	EffectiveWeights []float64
}

// AllocationResult is the full pipeline output: the quality matrix, the
// composite scores, and both the uncapped and capped share vectors.
type AllocationResult struct {
	Qualities        *mat.Dense
	Scores           []float64
	EffectiveWeights []float64
	Uncapped         []float64
	Capped           []float64
}

// FairnessReport is a read-only concentration snapshot over a share vector.
type FairnessReport struct {
	Gini           float64 `json:"gini"`
	HHI            float64 `json:"hhi"`
	NormalizedHHI  float64 `json:"normalizedHhi"`
	EffectiveCount float64 `json:"effectiveCount"`
	TopK           int     `json:"topK"`
	TopKShare      float64 `json:"topKShare"`
}
