package scoring

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestAllocator_ProviderMatrix(t *testing.T) {
	// Throughput up, latency down, availability up.
	m := mustMatrix(t, [][]float64{
		{1200, 60, 99.9},
		{900, 45, 99.5},
		{1500, 80, 99.7},
	})

	allocator := NewAllocator(
		WithDirections([]Direction{HigherIsBetter, LowerIsBetter, HigherIsBetter}),
		WithWeights([]float64{0.5, 0.3, 0.2}),
		WithAggregationMode(AggregationGeometric),
		WithCapFraction(0.4),
	)

	result, err := allocator.Allocate(m)
	require.NoError(t, err)

	rows, cols := result.Qualities.Dims()
	require.Equal(t, 3, rows)
	require.Equal(t, 3, cols)
	for i := range rows {
		for j := range cols {
			v := result.Qualities.At(i, j)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}

	require.Len(t, result.Scores, 3)
	for i, s := range result.Scores {
		assert.Greater(t, s, 0.0, "score %d", i)
	}

	assert.InDelta(t, 1.0, floats.Sum(result.Uncapped), 1e-9)
	assert.InDelta(t, 1.0, floats.Sum(result.Capped), 1e-9)
	for i, s := range result.Capped {
		assert.LessOrEqual(t, s, 0.4+DefaultEpsilon, "capped share %d", i)
	}
}

func TestAllocator_NoCapMeansCappedEqualsUncapped(t *testing.T) {
	m := mustMatrix(t, [][]float64{{10, 1}, {5, 2}, {1, 9}})

	result, err := NewAllocator().Allocate(m)
	require.NoError(t, err)
	assert.Equal(t, result.Uncapped, result.Capped)
}

func TestAllocator_EmptyMatrix(t *testing.T) {
	result, err := NewAllocator(WithCapFraction(0.5)).Allocate(&mat.Dense{})
	require.NoError(t, err)
	assert.Empty(t, result.Scores)
	assert.Empty(t, result.Uncapped)
	assert.Empty(t, result.Capped)
}

func TestAllocator_PropagatesValidationErrors(t *testing.T) {
	m := mustMatrix(t, [][]float64{{1, 2}})

	_, err := NewAllocator(WithDirections([]Direction{HigherIsBetter})).Allocate(m)
	require.Error(t, err)

	_, err = NewAllocator(WithWeights([]float64{1, 2, 3})).Allocate(m)
	require.Error(t, err)

	_, err = NewAllocator(WithCapFraction(1.5)).Allocate(m)
	require.Error(t, err)
}

func TestAllocator_ConstantColumnsOnly(t *testing.T) {
	m := mustMatrix(t, [][]float64{{42}, {42}, {42}})

	result, err := NewAllocator(WithCapFraction(0.5)).Allocate(m)
	require.NoError(t, err)

	// Every quality is the constant fill, every score identical, shares
	// uniform under any feasible cap.
	for _, s := range result.Capped {
		assert.InDelta(t, 1.0/3.0, s, 1e-9)
	}
}

func TestAllocator_OptionsOverrideDefaults(t *testing.T) {
	normalize := DefaultNormalizeParams()
	normalize.ConstantFill = 0.25

	aggregate := DefaultAggregateParams()
	aggregate.Mode = AggregationHarmonic

	capping := DefaultCapParams()
	capping.Fraction = 0.6
	capping.MaxIterations = 10

	a := NewAllocator(
		WithNormalizeParams(normalize),
		WithAggregateParams(aggregate),
		WithCapParams(capping),
	)
	assert.Equal(t, 0.25, a.normalize.ConstantFill)
	assert.Equal(t, AggregationHarmonic, a.aggregate.Mode)
	assert.Equal(t, 0.6, a.capping.Fraction)
	assert.Equal(t, 10, a.capping.MaxIterations)
}

func BenchmarkAllocator(b *testing.B) {
	sizes := []struct {
		entities int
		metrics  int
	}{
		{250, 4},
		{250, 10},
		{1000, 10},
	}

	rng := rand.New(rand.NewPCG(3, 5))

	for _, size := range sizes {
		b.Run(fmt.Sprintf("Entities%d_Metrics%d", size.entities, size.metrics), func(b *testing.B) {
			data := make([]float64, size.entities*size.metrics)
			for i := range data {
				data[i] = rng.Float64() * 100
			}
			m := mat.NewDense(size.entities, size.metrics, data)
			allocator := NewAllocator(WithCapFraction(0.05), WithAggregationMode(AggregationGeometric))

			b.ResetTimer()
			for b.Loop() {
				_, _ = allocator.Allocate(m)
			}
		})
	}
}
