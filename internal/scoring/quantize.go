package scoring

import (
	"math"
	"sort"
)

// ToMicro converts a float score into integer micro-units with round-half-up
// and a small guard against values sitting an ulp below a half boundary.
// Non-finite or non-positive inputs quantize to 0. Everything that crosses
// the consensus or settlement boundary goes through this so downstream
// comparisons happen on integers only.
func ToMicro(x float64) int64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x <= 0 {
		return 0
	}
	return int64(math.Round(x*MicroUnit + 1e-12))
}

// QuantizeShares converts a share vector into integer micro-shares that sum
// to exactly MicroUnit, using largest-remainder apportionment with ties
// broken by lower index. The input is renormalized first, so any
// non-negative vector is acceptable.
func QuantizeShares(shares []float64) []int64 {
	n := len(shares)
	if n == 0 {
		return []int64{}
	}

	normalized := NormalizeShares(shares, DefaultEpsilon)

	micros := make([]int64, n)
	remainders := make([]float64, n)
	assigned := int64(0)
	for i, p := range normalized {
		exact := p * MicroUnit
		floor := math.Floor(exact)
		micros[i] = int64(floor)
		remainders[i] = exact - floor
		assigned += micros[i]
	}

	// Hand the leftover units to the largest remainders, lower index first
	// on ties, so equal inputs always quantize identically.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})

	leftover := int64(MicroUnit) - assigned
	for i := int64(0); i < leftover; i++ {
		micros[order[i%int64(n)]]++
	}

	return micros
}
