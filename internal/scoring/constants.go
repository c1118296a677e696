package scoring

const (
	// DefaultEpsilon guards divisions, log floors, and cap comparisons.
	DefaultEpsilon = 1e-12

	// DefaultSumTolerance is the allowed drift from 1.0 before a share vector
	// gets renormalized.
	DefaultSumTolerance = 1e-9

	// DefaultCapIterations bounds the cap redistribution loop.
	DefaultCapIterations = 1000

	// DefaultConstantFill is the quality assigned to every cell of a metric
	// column whose values are all identical.
	DefaultConstantFill = 1.0

	// MicroUnit is the integer scale for quantized scores and shares.
	MicroUnit = 1_000_000
)

func DefaultNormalizeParams() NormalizeParams {
	return NormalizeParams{
		ConstantFill: DefaultConstantFill,
		Epsilon:      DefaultEpsilon,
		NonFinite:    NonFiniteSanitize,
	}
}

func DefaultAggregateParams() AggregateParams {
	return AggregateParams{
		Mode:    AggregationGeometric,
		Epsilon: DefaultEpsilon,
	}
}

func DefaultCapParams() CapParams {
	return CapParams{
		Epsilon:       DefaultEpsilon,
		MaxIterations: DefaultCapIterations,
	}
}

func epsilonOrDefault(eps float64) float64 {
	if eps <= 0 {
		return DefaultEpsilon
	}
	return eps
}
