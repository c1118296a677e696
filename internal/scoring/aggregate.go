package scoring

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// AggregateQualities collapses each row of a quality matrix into a single
// composite score using the configured weighted mean. It returns the scores
// together with the effective (renormalized) weights that produced them.
//
// The geometric mean floors each quality at epsilon before taking the log, so
// a zero-quality metric is heavily penalizing but never -Inf. The harmonic
// mean floors the same way and collapses to 0 when its denominator vanishes.
func AggregateQualities(quality *mat.Dense, params AggregateParams) (AggregateResult, error) {
	rows, cols := quality.Dims()
	if rows == 0 || cols == 0 {
		return AggregateResult{Scores: []float64{}, EffectiveWeights: []float64{}}, nil
	}
	if params.Weights != nil && len(params.Weights) != cols {
		return AggregateResult{}, fmt.Errorf("%w: got %d for %d columns", ErrWeightLength, len(params.Weights), cols)
	}

	eps := epsilonOrDefault(params.Epsilon)
	weights := effectiveWeights(params.Weights, cols, eps)

	scores := make([]float64, rows)
	row := make([]float64, cols)

	for i := range rows {
		mat.Row(row, i, quality)

		switch params.Mode {
		case AggregationArithmetic:
			scores[i] = floats.Dot(weights, row)
		case AggregationGeometric:
			logSum := 0.0
			for j, psi := range row {
				logSum += weights[j] * math.Log(math.Max(psi, eps))
			}
			scores[i] = math.Exp(logSum)
		case AggregationHarmonic:
			denom := 0.0
			for j, psi := range row {
				denom += weights[j] / math.Max(psi, eps)
			}
			if denom > eps {
				scores[i] = 1 / denom
			} else {
				scores[i] = 0
			}
		default:
			return AggregateResult{}, fmt.Errorf("%w: aggregation mode %d", ErrModeUnknown, params.Mode)
		}
	}

	return AggregateResult{Scores: scores, EffectiveWeights: weights}, nil
}

// effectiveWeights renormalizes supplied weights to sum to 1, clamping
// negative entries to 0 first. Absent or zero-sum weights fall back to a
// uniform distribution over the columns.
func effectiveWeights(weights []float64, cols int, eps float64) []float64 {
	result := make([]float64, cols)

	if weights == nil {
		uniform := 1.0 / float64(cols)
		for i := range result {
			result[i] = uniform
		}
		return result
	}

	copy(result, weights)
	for i, w := range result {
		if w < 0 {
			result[i] = 0
		}
	}

	sum := floats.Sum(result)
	if sum <= eps {
		uniform := 1.0 / float64(cols)
		for i := range result {
			result[i] = uniform
		}
		return result
	}

	floats.Scale(1.0/sum, result)
	return result
}
