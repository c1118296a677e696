package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animica-labs/poies/internal/policy"
	"github.com/animica-labs/poies/internal/scoring"
)

func testPolicy() *policy.Policy {
	p := &policy.Policy{
		Scoring: policy.ScoringPolicy{
			Metrics: []policy.MetricSpec{
				{Name: "throughput", Direction: 1, Weight: 0.5},
				{Name: "latency_p95", Direction: -1, Weight: 0.3},
				{Name: "availability", Direction: 1, Weight: 0.2},
			},
			Aggregation: scoring.AggregationGeometric.String(),
			Epsilon:     scoring.DefaultEpsilon,
		},
		Acceptance: policy.AcceptancePolicy{
			BaseEntropyMicro: 1_000_000,
			ClassCapsMicro: map[string]int64{
				"compute": 400_000,
			},
		},
	}
	return p
}

func TestNewEvaluator_NilPolicy(t *testing.T) {
	_, err := NewEvaluator(nil)
	require.Error(t, err)
}

func TestEvaluate_AcceptsAboveTheta(t *testing.T) {
	evaluator, err := NewEvaluator(testPolicy())
	require.NoError(t, err)

	outcome, err := evaluator.Evaluate(Candidate{
		BlockID:    "blk-1",
		ThetaMicro: 1_100_000,
		Rows: []ProofRow{
			{Entity: "prov-a", Class: ProofHash, Metrics: []float64{1200, 60, 99.9}},
			{Entity: "prov-b", Class: ProofStorage, Metrics: []float64{900, 45, 99.5}},
			{Entity: "prov-c", Class: ProofQuantum, Metrics: []float64{1500, 80, 99.7}},
		},
	})
	require.NoError(t, err)

	require.Len(t, outcome.PerEntity, 3)
	for _, entity := range outcome.PerEntity {
		assert.GreaterOrEqual(t, entity.GammaMicro, int64(0))
		assert.LessOrEqual(t, entity.GammaMicro, int64(scoring.MicroUnit))
		assert.Equal(t, entity.GammaMicro, entity.ClampedMicro, "no class cap applies")
	}

	// Base entropy plus three non-negative gamma contributions.
	assert.GreaterOrEqual(t, outcome.ScoreMicro, int64(1_000_000))
	assert.True(t, outcome.Accepted)
	assert.Equal(t, outcome.ScoreMicro-outcome.ThetaMicro, outcome.DistanceMicro)
}

func TestEvaluate_ClassCapClampsOnIntegers(t *testing.T) {
	evaluator, err := NewEvaluator(testPolicy())
	require.NoError(t, err)

	// A lone row normalizes to constant columns, so gamma is the constant
	// fill (1.0) and quantizes to a full micro unit, well above the cap.
	outcome, err := evaluator.Evaluate(Candidate{
		BlockID: "blk-2",
		Rows: []ProofRow{
			{Entity: "prov-a", Class: ProofCompute, Metrics: []float64{1200, 60, 99.9}},
		},
	})
	require.NoError(t, err)

	require.Len(t, outcome.PerEntity, 1)
	assert.Equal(t, int64(scoring.MicroUnit), outcome.PerEntity[0].GammaMicro)
	assert.Equal(t, int64(400_000), outcome.PerEntity[0].ClampedMicro)
	assert.Equal(t, int64(1_400_000), outcome.ScoreMicro)
}

func TestEvaluate_TotalCap(t *testing.T) {
	p := testPolicy()
	p.Acceptance.TotalCapMicro = 1_200_000

	evaluator, err := NewEvaluator(p)
	require.NoError(t, err)

	outcome, err := evaluator.Evaluate(Candidate{
		BlockID:    "blk-3",
		ThetaMicro: 1_200_000,
		Rows: []ProofRow{
			{Entity: "prov-a", Class: ProofHash, Metrics: []float64{1, 1, 1}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1_200_000), outcome.ScoreMicro)
	assert.True(t, outcome.Accepted)
	assert.Zero(t, outcome.DistanceMicro)
}

func TestEvaluate_TotalCapScalesBreakdown(t *testing.T) {
	p := testPolicy()
	p.Acceptance.TotalCapMicro = 2_000_000

	evaluator, err := NewEvaluator(p)
	require.NoError(t, err)

	// Two identical rows make every column constant, so each entity's gamma
	// is a full micro unit: base 1.0 + 1.0 + 1.0 = 3.0 before the ceiling.
	outcome, err := evaluator.Evaluate(Candidate{
		BlockID: "blk-5",
		Rows: []ProofRow{
			{Entity: "prov-a", Class: ProofHash, Metrics: []float64{1, 1, 1}},
			{Entity: "prov-b", Class: ProofStorage, Metrics: []float64{1, 1, 1}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2_000_000), outcome.ScoreMicro)

	// Contributions scale down together rather than only the total moving.
	require.Len(t, outcome.PerEntity, 2)
	sum := int64(0)
	for _, entity := range outcome.PerEntity {
		assert.Equal(t, int64(500_000), entity.ClampedMicro)
		assert.Equal(t, int64(scoring.MicroUnit), entity.GammaMicro, "raw gamma stays reported")
		sum += entity.ClampedMicro
	}
	assert.Equal(t, outcome.ScoreMicro, p.Acceptance.BaseEntropyMicro+sum)
}

func TestEvaluate_TotalCapBelowBaseEntropy(t *testing.T) {
	p := testPolicy()
	p.Acceptance.TotalCapMicro = 800_000

	evaluator, err := NewEvaluator(p)
	require.NoError(t, err)

	outcome, err := evaluator.Evaluate(Candidate{
		BlockID: "blk-6",
		Rows: []ProofRow{
			{Entity: "prov-a", Class: ProofHash, Metrics: []float64{1, 1, 1}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(800_000), outcome.ScoreMicro)
	require.Len(t, outcome.PerEntity, 1)
	assert.Zero(t, outcome.PerEntity[0].ClampedMicro, "no budget remains past base entropy")
}

func TestEvaluate_EmptyCandidateScoresBaseEntropyOnly(t *testing.T) {
	evaluator, err := NewEvaluator(testPolicy())
	require.NoError(t, err)

	outcome, err := evaluator.Evaluate(Candidate{BlockID: "blk-4", ThetaMicro: 2_000_000})
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), outcome.ScoreMicro)
	assert.False(t, outcome.Accepted)
	assert.Equal(t, int64(-1_000_000), outcome.DistanceMicro)
	assert.Empty(t, outcome.PerEntity)
}

func TestEvaluate_RowLengthMismatch(t *testing.T) {
	evaluator, err := NewEvaluator(testPolicy())
	require.NoError(t, err)

	_, err = evaluator.Evaluate(Candidate{
		Rows: []ProofRow{{Entity: "prov-a", Metrics: []float64{1, 2}}},
	})
	require.Error(t, err)
}

func TestProofClassRoundTrip(t *testing.T) {
	for _, class := range []ProofClass{ProofHash, ProofCompute, ProofQuantum, ProofStorage, ProofVDF} {
		parsed, err := ParseProofClass(class.String())
		require.NoError(t, err)
		assert.Equal(t, class, parsed)
	}

	_, err := ParseProofClass("steam")
	require.Error(t, err)
}
