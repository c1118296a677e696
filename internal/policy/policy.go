// Package policy loads the scoring policy that parameterizes every engine
// call. The engine itself holds no configuration; weights, directions, caps,
// and tolerances all flow from here at call time.
package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/animica-labs/poies/internal/scoring"
)

// MetricSpec describes one column of the metric matrix: its registry name,
// reading direction, and aggregation weight.
type MetricSpec struct {
	Name      string  `yaml:"name"`
	Direction int8    `yaml:"direction"`
	Weight    float64 `yaml:"weight"`
}

// ScoringPolicy holds the engine knobs shared by acceptance and settlement.
type ScoringPolicy struct {
	Metrics     []MetricSpec `yaml:"metrics"`
	Aggregation string       `yaml:"aggregation"`
	CapFraction float64      `yaml:"capFraction"`
	// ConstantFill is a pointer so an explicit 0 survives decoding; only an
	// absent key takes the default fill of 1.
	ConstantFill *float64 `yaml:"constantFill"`
	Epsilon      float64      `yaml:"epsilon"`
	NonFinite    string       `yaml:"nonFinite"`
	TopK         int          `yaml:"topK"`
}

// AcceptancePolicy holds the integer thresholds the consensus consumer
// applies on micro-nat scores.
type AcceptancePolicy struct {
	ThetaMicro       int64            `yaml:"thetaMicro"`
	BaseEntropyMicro int64            `yaml:"baseEntropyMicro"`
	ClassCapsMicro   map[string]int64 `yaml:"classCapsMicro"`
	TotalCapMicro    int64            `yaml:"totalCapMicro"`
}

// SettlementPolicy holds the epoch payout parameters.
type SettlementPolicy struct {
	PoolMicro    string `yaml:"poolMicro"` // decimal string, parsed as uint256
	TreasuryBps  uint64 `yaml:"treasuryBps"`
	EpochSeconds int    `yaml:"epochSeconds"`
}

type Policy struct {
	Scoring    ScoringPolicy    `yaml:"scoring"`
	Acceptance AcceptancePolicy `yaml:"acceptance"`
	Settlement SettlementPolicy `yaml:"settlement"`
}

// Load reads a policy file, expands ${VAR} references from the environment,
// decodes it, and validates it.
func Load(path string) (*Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}

	expanded := os.ExpandEnv(string(raw))

	p := &Policy{}
	if err := yaml.Unmarshal([]byte(expanded), p); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}

	p.applyDefaults()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validate policy: %w", err)
	}
	return p, nil
}

func (p *Policy) applyDefaults() {
	if p.Scoring.Aggregation == "" {
		p.Scoring.Aggregation = scoring.AggregationGeometric.String()
	}
	if p.Scoring.Epsilon == 0 {
		p.Scoring.Epsilon = scoring.DefaultEpsilon
	}
	for i := range p.Scoring.Metrics {
		if p.Scoring.Metrics[i].Direction == 0 {
			p.Scoring.Metrics[i].Direction = int8(scoring.HigherIsBetter)
		}
	}
	if p.Settlement.EpochSeconds == 0 {
		p.Settlement.EpochSeconds = 600
	}
}

func (p *Policy) Validate() error {
	if len(p.Scoring.Metrics) == 0 {
		return fmt.Errorf("at least one metric is required")
	}
	for i, m := range p.Scoring.Metrics {
		if m.Name == "" {
			return fmt.Errorf("metric %d has no name", i)
		}
		if m.Direction != int8(scoring.HigherIsBetter) && m.Direction != int8(scoring.LowerIsBetter) {
			return fmt.Errorf("metric %q direction must be 1 or -1, got %d", m.Name, m.Direction)
		}
		if m.Weight < 0 {
			return fmt.Errorf("metric %q weight cannot be negative", m.Name)
		}
	}
	if _, err := p.AggregationMode(); err != nil {
		return err
	}
	if _, err := p.NonFiniteMode(); err != nil {
		return err
	}
	if p.Scoring.CapFraction < 0 || p.Scoring.CapFraction > 1 {
		return fmt.Errorf("cap fraction must be in [0, 1], got %v", p.Scoring.CapFraction)
	}
	if p.Scoring.ConstantFill != nil && (*p.Scoring.ConstantFill < 0 || *p.Scoring.ConstantFill > 1) {
		return fmt.Errorf("constant fill must be in [0, 1], got %v", *p.Scoring.ConstantFill)
	}
	if p.Scoring.TopK < 0 {
		return fmt.Errorf("topK cannot be negative")
	}
	if p.Settlement.TreasuryBps > 10_000 {
		return fmt.Errorf("treasury bps cannot exceed 10000, got %d", p.Settlement.TreasuryBps)
	}
	return nil
}

func (p *Policy) AggregationMode() (scoring.AggregationMode, error) {
	return scoring.ParseAggregationMode(p.Scoring.Aggregation)
}

func (p *Policy) NonFiniteMode() (scoring.NonFiniteMode, error) {
	return scoring.ParseNonFiniteMode(p.Scoring.NonFinite)
}

// ConstantFill returns the configured constant-column fill. An absent key
// falls back to the default; an explicit 0 stays 0.
func (p *Policy) ConstantFill() float64 {
	if p.Scoring.ConstantFill == nil {
		return scoring.DefaultConstantFill
	}
	return *p.Scoring.ConstantFill
}

// MetricNames returns the column order every metric matrix must follow.
func (p *Policy) MetricNames() []string {
	names := make([]string, len(p.Scoring.Metrics))
	for i, m := range p.Scoring.Metrics {
		names[i] = m.Name
	}
	return names
}

func (p *Policy) Directions() []scoring.Direction {
	directions := make([]scoring.Direction, len(p.Scoring.Metrics))
	for i, m := range p.Scoring.Metrics {
		directions[i] = scoring.Direction(m.Direction)
	}
	return directions
}

func (p *Policy) Weights() []float64 {
	weights := make([]float64, len(p.Scoring.Metrics))
	for i, m := range p.Scoring.Metrics {
		weights[i] = m.Weight
	}
	return weights
}

// Allocator builds a fully configured pipeline from the policy.
func (p *Policy) Allocator() (*scoring.Allocator, error) {
	mode, err := p.AggregationMode()
	if err != nil {
		return nil, err
	}
	nonFinite, err := p.NonFiniteMode()
	if err != nil {
		return nil, err
	}

	normalize := scoring.DefaultNormalizeParams()
	normalize.Directions = p.Directions()
	normalize.ConstantFill = p.ConstantFill()
	normalize.Epsilon = p.Scoring.Epsilon
	normalize.NonFinite = nonFinite

	aggregate := scoring.DefaultAggregateParams()
	aggregate.Weights = p.Weights()
	aggregate.Mode = mode
	aggregate.Epsilon = p.Scoring.Epsilon

	capping := scoring.DefaultCapParams()
	capping.Fraction = p.Scoring.CapFraction
	capping.Epsilon = p.Scoring.Epsilon

	return scoring.NewAllocator(
		scoring.WithNormalizeParams(normalize),
		scoring.WithAggregateParams(aggregate),
		scoring.WithCapParams(capping),
	), nil
}
