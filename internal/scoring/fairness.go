package scoring

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// AnalyzeFairness computes concentration diagnostics over any non-negative
// vector. The input does not need to sum to 1; shares are derived internally.
// It depends on nothing else in this package besides NormalizeShares, so it
// can be pointed at raw scores, capped allocations, or payout amounts alike.
func AnalyzeFairness(v []float64, topK int) (FairnessReport, error) {
	for i, x := range v {
		if x < 0 {
			return FairnessReport{}, fmt.Errorf("%w: %v at index %d", ErrNegativeValue, x, i)
		}
	}

	n := len(v)
	if topK < 0 {
		topK = 0
	}
	if topK > n {
		topK = n
	}
	if n == 0 {
		return FairnessReport{TopK: topK}, nil
	}

	shares := NormalizeShares(v, DefaultEpsilon)

	hhi := 0.0
	for _, p := range shares {
		hhi += p * p
	}

	normalizedHHI := 0.0
	if n > 1 {
		floor := 1.0 / float64(n)
		normalizedHHI = (hhi - floor) / (1 - floor)
		if normalizedHHI < 0 {
			normalizedHHI = 0
		} else if normalizedHHI > 1 {
			normalizedHHI = 1
		}
	}

	effectiveCount := float64(n)
	if hhi > DefaultEpsilon {
		effectiveCount = 1 / hhi
	}

	sorted := make([]float64, n)
	copy(sorted, shares)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	topKShare := floats.Sum(sorted[:topK])

	return FairnessReport{
		Gini:           giniCoefficient(v),
		HHI:            hhi,
		NormalizedHHI:  normalizedHHI,
		EffectiveCount: effectiveCount,
		TopK:           topK,
		TopKShare:      topKShare,
	}, nil
}

// giniCoefficient computes the Gini index over an ascending sort with 1-based
// ranks: (2*sum((i+1)*x_i)) / (n*sum(x)) - (n+1)/n. An empty or all-zero
// vector has no inequality to measure and yields 0.
func giniCoefficient(v []float64) float64 {
	n := len(v)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, v)
	sort.Float64s(sorted)

	total := floats.Sum(sorted)
	if total <= DefaultEpsilon {
		return 0
	}

	weighted := 0.0
	for i, x := range sorted {
		weighted += float64(i+1) * x
	}

	return (2*weighted)/(float64(n)*total) - float64(n+1)/float64(n)
}
