package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func mustMatrix(t *testing.T, rows [][]float64) *mat.Dense {
	t.Helper()
	m, err := NewMetricMatrix(rows)
	require.NoError(t, err)
	return m
}

func TestNewMetricMatrix_RaggedRows(t *testing.T) {
	_, err := NewMetricMatrix([][]float64{{1, 2, 3}, {4, 5}})
	require.ErrorIs(t, err, ErrRaggedMatrix)
}

func TestNewMetricMatrix_Empty(t *testing.T) {
	m, err := NewMetricMatrix([][]float64{})
	require.NoError(t, err)
	rows, cols := m.Dims()
	assert.Zero(t, rows)
	assert.Zero(t, cols)
}

func TestNormalizeMetrics_BoundsAndDirection(t *testing.T) {
	m := mustMatrix(t, [][]float64{
		{1200, 60, 99.9},
		{900, 45, 99.5},
		{1500, 80, 99.7},
	})

	params := DefaultNormalizeParams()
	params.Directions = []Direction{HigherIsBetter, LowerIsBetter, HigherIsBetter}

	quality, err := NormalizeMetrics(m, params)
	require.NoError(t, err)

	rows, cols := quality.Dims()
	require.Equal(t, 3, rows)
	require.Equal(t, 3, cols)

	for i := range rows {
		for j := range cols {
			v := quality.At(i, j)
			assert.GreaterOrEqual(t, v, 0.0, "row %d col %d", i, j)
			assert.LessOrEqual(t, v, 1.0, "row %d col %d", i, j)
		}
	}

	// Column 0 is higher-is-better: max raw value maps to 1, min to 0.
	assert.InDelta(t, 0.0, quality.At(1, 0), 1e-12)
	assert.InDelta(t, 1.0, quality.At(2, 0), 1e-12)

	// Column 1 is lower-is-better: min raw value maps to 1, max to 0.
	assert.InDelta(t, 1.0, quality.At(1, 1), 1e-12)
	assert.InDelta(t, 0.0, quality.At(2, 1), 1e-12)
}

func TestNormalizeMetrics_ConstantColumn(t *testing.T) {
	m := mustMatrix(t, [][]float64{{42}, {42}, {42}})

	for _, direction := range []Direction{HigherIsBetter, LowerIsBetter} {
		params := DefaultNormalizeParams()
		params.Directions = []Direction{direction}

		quality, err := NormalizeMetrics(m, params)
		require.NoError(t, err)
		for i := range 3 {
			assert.Equal(t, 1.0, quality.At(i, 0), "direction %d", direction)
		}
	}
}

func TestNormalizeMetrics_ConstantFillOverride(t *testing.T) {
	m := mustMatrix(t, [][]float64{{7}, {7}})

	params := DefaultNormalizeParams()
	params.ConstantFill = 0.5

	quality, err := NormalizeMetrics(m, params)
	require.NoError(t, err)
	assert.Equal(t, 0.5, quality.At(0, 0))
	assert.Equal(t, 0.5, quality.At(1, 0))
}

func TestNormalizeMetrics_EmptyMatrix(t *testing.T) {
	quality, err := NormalizeMetrics(&mat.Dense{}, DefaultNormalizeParams())
	require.NoError(t, err)
	rows, cols := quality.Dims()
	assert.Zero(t, rows)
	assert.Zero(t, cols)
}

func TestNormalizeMetrics_DirectionLengthMismatch(t *testing.T) {
	m := mustMatrix(t, [][]float64{{1, 2}, {3, 4}})

	params := DefaultNormalizeParams()
	params.Directions = []Direction{HigherIsBetter}

	_, err := NormalizeMetrics(m, params)
	require.ErrorIs(t, err, ErrDirectionLength)
}

func TestNormalizeMetrics_NonFiniteSanitize(t *testing.T) {
	m := mustMatrix(t, [][]float64{{math.NaN()}, {10}, {math.Inf(1)}})

	quality, err := NormalizeMetrics(m, DefaultNormalizeParams())
	require.NoError(t, err)

	// NaN and +Inf both sanitize to 0 before min/max, so 10 is the column max.
	assert.InDelta(t, 0.0, quality.At(0, 0), 1e-12)
	assert.InDelta(t, 1.0, quality.At(1, 0), 1e-12)
	assert.InDelta(t, 0.0, quality.At(2, 0), 1e-12)
}

func TestNormalizeMetrics_NonFiniteReject(t *testing.T) {
	m := mustMatrix(t, [][]float64{{math.NaN()}, {10}})

	params := DefaultNormalizeParams()
	params.NonFinite = NonFiniteReject

	_, err := NormalizeMetrics(m, params)
	require.ErrorIs(t, err, ErrNonFinite)
}

func TestNormalizeShares_ZeroSum(t *testing.T) {
	shares := NormalizeShares([]float64{0, 0, 0}, DefaultEpsilon)
	for _, v := range shares {
		assert.InDelta(t, 1.0/3.0, v, 1e-12)
	}
}

func TestNormalizeShares_DoesNotMutateInput(t *testing.T) {
	in := []float64{2, 6}
	_ = NormalizeShares(in, DefaultEpsilon)
	assert.Equal(t, []float64{2, 6}, in)
}
