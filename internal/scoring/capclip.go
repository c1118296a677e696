package scoring

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// CapShares converts a non-negative score vector into an allocation that sums
// to 1 with no entry above params.Fraction, redistributing clipped excess to
// the remaining entries in proportion to their share of the uncapped mass.
//
// When the cap is infeasible for the entity count (fraction < 1/n) the loop
// ends with every entry clipped and falls back to the uniform vector, so the
// result still sums to 1. The input is never mutated.
func CapShares(scores []float64, params CapParams) ([]float64, error) {
	if params.Fraction <= 0 || params.Fraction > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrCapRange, params.Fraction)
	}
	for i, v := range scores {
		if v < 0 {
			return nil, fmt.Errorf("%w: score %v at index %d", ErrNegativeValue, v, i)
		}
	}

	eps := epsilonOrDefault(params.Epsilon)
	maxIterations := params.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultCapIterations
	}

	shares := NormalizeShares(scores, eps)
	n := len(shares)
	if n == 0 {
		return shares, nil
	}

	limit := params.Fraction
	capped := make([]bool, n)

	for range maxIterations {
		// Clip everything above the cap and collect the excess. Entries
		// sitting at the boundary count as capped so redistribution cannot
		// push them back over, which guarantees forward progress.
		excess := 0.0
		clippedAny := false
		for i, v := range shares {
			switch {
			case v > limit+eps:
				excess += v - limit
				shares[i] = limit
				capped[i] = true
				clippedAny = true
			case v >= limit-eps:
				capped[i] = true
			default:
				capped[i] = false
			}
		}
		if !clippedAny {
			break
		}

		underMass := 0.0
		underCount := 0
		for i, v := range shares {
			if !capped[i] {
				underMass += v
				underCount++
			}
		}

		if underCount == 0 {
			// Every entry sits at the cap with excess left over: the cap is
			// infeasible for this entity count.
			uniform := 1.0 / float64(n)
			for i := range shares {
				shares[i] = uniform
			}
			break
		}

		if underMass <= eps {
			// The uncapped entries hold no mass, so proportional
			// redistribution is undefined; spread the excess equally.
			part := excess / float64(underCount)
			for i := range shares {
				if !capped[i] {
					shares[i] += part
				}
			}
			continue
		}

		scale := excess / underMass
		for i := range shares {
			if !capped[i] {
				shares[i] += shares[i] * scale
			}
		}
	}

	sum := floats.Sum(shares)
	if math.Abs(sum-1) > DefaultSumTolerance && sum > eps {
		floats.Scale(1/sum, shares)
	}
	for i, v := range shares {
		if v < 0 && v > -eps {
			shares[i] = 0
		}
	}

	return shares, nil
}
