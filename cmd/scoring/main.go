package main

import (
	"github.com/rs/zerolog/log"

	"github.com/animica-labs/poies/internal/scoring"
	"github.com/animica-labs/poies/internal/utils/logger"
)

func main() {
	logger.Init()

	runAllocationDemo()
	runCapClipDemo()
	runQuantizeDemo()
}

func runAllocationDemo() {
	log.Info().Msg("--- Allocation pipeline ---")

	providers := []string{"prov-a", "prov-b", "prov-c"}
	matrix, err := scoring.NewMetricMatrix([][]float64{
		{1200, 60, 99.9},
		{900, 45, 99.5},
		{1500, 80, 99.7},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build metric matrix")
	}

	weights := []float64{0.5, 0.3, 0.2}
	allocator := scoring.NewAllocator(
		scoring.WithDirections([]scoring.Direction{
			scoring.HigherIsBetter,
			scoring.LowerIsBetter,
			scoring.HigherIsBetter,
		}),
		scoring.WithWeights(weights),
		scoring.WithAggregationMode(scoring.AggregationGeometric),
		scoring.WithCapFraction(0.4),
	)
	logger.Sugar().Infow("Running allocation", "weights", weights, "capFraction", 0.4)

	result, err := allocator.Allocate(matrix)
	if err != nil {
		log.Fatal().Err(err).Msg("allocation failed")
	}

	for i, provider := range providers {
		log.Info().
			Str("provider", provider).
			Float64("score", result.Scores[i]).
			Float64("share", result.Capped[i]).
			Msg("allocated")
	}

	report, err := scoring.AnalyzeFairness(result.Capped, 2)
	if err != nil {
		log.Fatal().Err(err).Msg("fairness analysis failed")
	}
	log.Info().
		Float64("gini", report.Gini).
		Float64("hhi", report.HHI).
		Float64("effective_count", report.EffectiveCount).
		Float64("top_k_share", report.TopKShare).
		Msg("fairness")

	scoring.PlotSharesTerminal(providers, result.Capped, "Capped shares")
}

func runCapClipDemo() {
	log.Info().Msg("--- Cap clipping ---")

	shares := []float64{0.6, 0.25, 0.1, 0.05}
	capped, err := scoring.CapShares(shares, scoring.CapParams{
		Fraction:      0.3,
		Epsilon:       scoring.DefaultEpsilon,
		MaxIterations: scoring.DefaultCapIterations,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("cap clipping failed")
	}

	for i := range shares {
		log.Info().
			Float64("before", shares[i]).
			Float64("after", capped[i]).
			Msg("clipped")
	}
}

func runQuantizeDemo() {
	log.Info().Msg("--- Micro-unit quantization ---")

	shares := []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}
	micro := scoring.QuantizeShares(shares)

	var total int64
	for i, m := range micro {
		total += m
		log.Info().Float64("share", shares[i]).Int64("micro", m).Msg("quantized")
	}
	log.Info().Int64("total", total).Msg("quantized shares sum to one full unit")
}
