package scoring

import (
	"gonum.org/v1/gonum/mat"
)

// Allocator owns the pipeline order Normalize -> Aggregate -> CapShares. It
// performs no numeric work of its own beyond sequencing the three stages and
// packaging both the uncapped and capped allocations for downstream use.
type Allocator struct {
	normalize NormalizeParams
	aggregate AggregateParams
	capping   CapParams
}

type AllocatorOption func(*Allocator)

func WithNormalizeParams(params NormalizeParams) AllocatorOption {
	return func(a *Allocator) {
		a.normalize = params
	}
}

func WithAggregateParams(params AggregateParams) AllocatorOption {
	return func(a *Allocator) {
		a.aggregate = params
	}
}

func WithCapParams(params CapParams) AllocatorOption {
	return func(a *Allocator) {
		a.capping = params
	}
}

func WithDirections(directions []Direction) AllocatorOption {
	return func(a *Allocator) {
		a.normalize.Directions = directions
	}
}

func WithWeights(weights []float64) AllocatorOption {
	return func(a *Allocator) {
		a.aggregate.Weights = weights
	}
}

func WithAggregationMode(mode AggregationMode) AllocatorOption {
	return func(a *Allocator) {
		a.aggregate.Mode = mode
	}
}

// WithCapFraction sets the per-entity share ceiling. A zero fraction leaves
// capping disabled and the capped allocation equal to the uncapped one.
func WithCapFraction(fraction float64) AllocatorOption {
	return func(a *Allocator) {
		a.capping.Fraction = fraction
	}
}

func NewAllocator(opts ...AllocatorOption) *Allocator {
	a := &Allocator{
		normalize: DefaultNormalizeParams(),
		aggregate: DefaultAggregateParams(),
		capping:   DefaultCapParams(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Allocate runs the full pipeline over a raw metric matrix and returns the
// quality matrix, composite scores, and both share vectors.
func (a *Allocator) Allocate(metrics *mat.Dense) (AllocationResult, error) {
	quality, err := NormalizeMetrics(metrics, a.normalize)
	if err != nil {
		return AllocationResult{}, err
	}

	aggregated, err := AggregateQualities(quality, a.aggregate)
	if err != nil {
		return AllocationResult{}, err
	}

	uncapped := NormalizeShares(aggregated.Scores, a.capping.Epsilon)

	capped := uncapped
	if a.capping.Fraction > 0 && len(uncapped) > 0 {
		capped, err = CapShares(aggregated.Scores, a.capping)
		if err != nil {
			return AllocationResult{}, err
		}
	}

	return AllocationResult{
		Qualities:        quality,
		Scores:           aggregated.Scores,
		EffectiveWeights: aggregated.EffectiveWeights,
		Uncapped:         uncapped,
		Capped:           capped,
	}, nil
}
