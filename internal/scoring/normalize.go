package scoring

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// NormalizeMetrics rescales a raw metric matrix into a direction-adjusted
// quality matrix with every entry in [0, 1]. Each column is min-max scaled
// independently; a constant column (max - min within epsilon) is filled with
// params.ConstantFill regardless of direction.
func NormalizeMetrics(metrics *mat.Dense, params NormalizeParams) (*mat.Dense, error) {
	rows, cols := metrics.Dims()
	if rows == 0 || cols == 0 {
		return &mat.Dense{}, nil
	}
	if params.Directions != nil && len(params.Directions) != cols {
		return nil, fmt.Errorf("%w: got %d for %d columns", ErrDirectionLength, len(params.Directions), cols)
	}

	eps := epsilonOrDefault(params.Epsilon)

	quality := mat.NewDense(rows, cols, nil)
	col := make([]float64, rows)

	for j := range cols {
		mat.Col(col, j, metrics)

		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				if params.NonFinite == NonFiniteReject {
					return nil, fmt.Errorf("%w at row %d column %d", ErrNonFinite, i, j)
				}
				col[i] = 0
			}
		}

		min := floats.Min(col)
		max := floats.Max(col)

		if max-min <= eps {
			for i := range col {
				col[i] = params.ConstantFill
			}
			quality.SetCol(j, col)
			continue
		}

		span := max - min
		direction := HigherIsBetter
		if params.Directions != nil {
			direction = params.Directions[j]
		}
		for i, v := range col {
			base := (v - min) / span
			if direction == LowerIsBetter {
				base = 1 - base
			}
			col[i] = base
		}
		quality.SetCol(j, col)
	}

	return quality, nil
}

// NormalizeShares scales a non-negative vector so it sums to 1. A zero-sum
// vector yields a uniform distribution instead of a division by zero.
func NormalizeShares(v []float64, eps float64) []float64 {
	result := make([]float64, len(v))
	copy(result, v)
	if len(result) == 0 {
		return result
	}

	eps = epsilonOrDefault(eps)

	sum := floats.Sum(result)
	if sum <= eps {
		uniform := 1.0 / float64(len(result))
		for i := range result {
			result[i] = uniform
		}
		return result
	}

	floats.Scale(1.0/sum, result)
	return result
}
