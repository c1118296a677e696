// Package consensus is the engine's block-acceptance consumer. It turns a
// candidate's proof rows into one integer micro-nat score and compares it to
// the caller-supplied threshold. Everything past the comparison (fork choice,
// block validity, retargeting) lives elsewhere.
package consensus

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/animica-labs/poies/internal/policy"
	"github.com/animica-labs/poies/internal/registry"
	"github.com/animica-labs/poies/internal/scoring"
)

type Evaluator struct {
	policy *policy.Policy
}

func NewEvaluator(p *policy.Policy) (*Evaluator, error) {
	if p == nil {
		return nil, fmt.Errorf("policy cannot be nil")
	}
	return &Evaluator{policy: p}, nil
}

// Evaluate computes a candidate's composite score and the acceptance
// comparison. Scores cross the float/integer boundary exactly once, via
// ToMicro; class ceilings, the total ceiling, and the theta comparison all
// happen on integers so every node agrees on the verdict.
func (e *Evaluator) Evaluate(candidate Candidate) (Outcome, error) {
	snapshots := make([]registry.MetricSnapshot, 0, len(candidate.Rows))
	metricNames := e.policy.MetricNames()
	for i, row := range candidate.Rows {
		if len(row.Metrics) != len(metricNames) {
			return Outcome{}, fmt.Errorf("row %d has %d metrics, policy defines %d", i, len(row.Metrics), len(metricNames))
		}
		metrics := make(map[string]float64, len(metricNames))
		for j, name := range metricNames {
			metrics[name] = row.Metrics[j]
		}
		snapshots = append(snapshots, registry.MetricSnapshot{Provider: row.Entity, Metrics: metrics})
	}

	outcome := Outcome{
		BlockID:    candidate.BlockID,
		ThetaMicro: candidate.ThetaMicro,
		ScoreMicro: e.policy.Acceptance.BaseEntropyMicro,
		PerEntity:  []EntityScore{},
	}

	if len(candidate.Rows) > 0 {
		matrix, _, err := registry.BuildMatrix(snapshots, metricNames)
		if err != nil {
			return Outcome{}, err
		}

		allocator, err := e.policy.Allocator()
		if err != nil {
			return Outcome{}, err
		}

		result, err := allocator.Allocate(matrix)
		if err != nil {
			return Outcome{}, err
		}

		for i, row := range candidate.Rows {
			gamma := scoring.ToMicro(result.Scores[i])
			clamped := gamma
			classCap, hasCap := e.policy.Acceptance.ClassCapsMicro[row.Class.String()]
			if hasCap && clamped > classCap {
				clamped = classCap
			}

			outcome.PerEntity = append(outcome.PerEntity, EntityScore{
				Entity:        row.Entity,
				Class:         row.Class,
				GammaMicro:    gamma,
				ClampedMicro:  clamped,
				ClassCapMicro: classCap,
			})
			outcome.ScoreMicro += clamped
		}
	}

	if limit := e.policy.Acceptance.TotalCapMicro; limit > 0 && outcome.ScoreMicro > limit {
		e.clipTotal(&outcome, limit)
	}

	outcome.Accepted = outcome.ScoreMicro >= candidate.ThetaMicro
	outcome.DistanceMicro = outcome.ScoreMicro - candidate.ThetaMicro

	log.Debug().
		Str("block_id", candidate.BlockID).
		Int64("score_micro", outcome.ScoreMicro).
		Int64("theta_micro", outcome.ThetaMicro).
		Bool("accepted", outcome.Accepted).
		Int("entities", len(outcome.PerEntity)).
		Msg("evaluated candidate")

	return outcome, nil
}

// clipTotal enforces the total score ceiling by downscaling every entity's
// clamped contribution proportionally, so the per-entity breakdown still
// sums to ScoreMicro minus the base entropy. Integer division truncates, so
// the clipped score can land slightly under the limit; every node truncates
// identically.
func (e *Evaluator) clipTotal(outcome *Outcome, limit int64) {
	base := e.policy.Acceptance.BaseEntropyMicro
	gammaTotal := outcome.ScoreMicro - base
	budget := limit - base

	if budget <= 0 || gammaTotal <= 0 {
		// Base entropy alone reaches the ceiling; proof contributions are
		// fully suppressed.
		for i := range outcome.PerEntity {
			outcome.PerEntity[i].ClampedMicro = 0
		}
		outcome.ScoreMicro = limit
		return
	}

	scaled := int64(0)
	for i := range outcome.PerEntity {
		v := outcome.PerEntity[i].ClampedMicro * budget / gammaTotal
		outcome.PerEntity[i].ClampedMicro = v
		scaled += v
	}
	outcome.ScoreMicro = base + scaled
}
