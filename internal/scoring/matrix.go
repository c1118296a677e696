package scoring

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// NewMetricMatrix builds a dense entities-by-metrics matrix from per-entity
// rows. Every row must have the same length. An input with no rows or no
// columns yields an empty matrix rather than an error.
func NewMetricMatrix(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 {
		return &mat.Dense{}, nil
	}

	cols := len(rows[0])
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", ErrRaggedMatrix, i, len(row), cols)
		}
	}
	if cols == 0 {
		return &mat.Dense{}, nil
	}

	data := make([]float64, 0, len(rows)*cols)
	for _, row := range rows {
		data = append(data, row...)
	}

	return mat.NewDense(len(rows), cols, data), nil
}

// MatrixRows converts a dense matrix back into per-entity rows, primarily for
// serializing pipeline output.
func MatrixRows(m *mat.Dense) [][]float64 {
	if m == nil {
		return [][]float64{}
	}
	rows, _ := m.Dims()
	out := make([][]float64, rows)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
