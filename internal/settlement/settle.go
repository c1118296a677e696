// Package settlement turns capped allocations into integer token payouts
// once per epoch. All splitting happens on integers: micro-shares in, a
// uint256 pool out, and a conservation invariant that every unit of the pool
// lands either on a provider or in the treasury.
package settlement

import (
	"fmt"
	"sort"

	"github.com/holiman/uint256"

	"github.com/animica-labs/poies/internal/scoring"
)

var microUnit = uint256.NewInt(uint64(scoring.MicroUnit))

// SplitPool divides a pool into a treasury slice and per-provider payouts
// proportional to integer micro-shares. The treasury takes bps/10000 of the
// pool (floored); each provider then receives remainder*share/1e6 (floored),
// and leftover dust goes to the largest fractional parts, lower index first.
// Sum of payouts plus treasury always equals the pool exactly.
func SplitPool(pool *uint256.Int, treasuryBps uint64, microShares []int64) ([]*uint256.Int, *uint256.Int, error) {
	if pool == nil {
		return nil, nil, fmt.Errorf("pool cannot be nil")
	}
	if treasuryBps > 10_000 {
		return nil, nil, fmt.Errorf("treasury bps cannot exceed 10000, got %d", treasuryBps)
	}

	shareSum := int64(0)
	for i, share := range microShares {
		if share < 0 {
			return nil, nil, fmt.Errorf("micro share cannot be negative, got %d at index %d", share, i)
		}
		shareSum += share
	}
	if len(microShares) > 0 && shareSum != int64(scoring.MicroUnit) {
		return nil, nil, fmt.Errorf("micro shares must sum to %d, got %d", scoring.MicroUnit, shareSum)
	}

	treasury := new(uint256.Int).Mul(pool, uint256.NewInt(treasuryBps))
	treasury.Div(treasury, uint256.NewInt(10_000))

	if len(microShares) == 0 {
		// No providers this epoch: the whole pool stays in the treasury.
		return []*uint256.Int{}, new(uint256.Int).Set(pool), nil
	}

	remainder := new(uint256.Int).Sub(pool, treasury)

	payouts := make([]*uint256.Int, len(microShares))
	fractions := make([]uint64, len(microShares))
	paid := new(uint256.Int)
	for i, share := range microShares {
		scaled, overflow := new(uint256.Int).MulOverflow(remainder, uint256.NewInt(uint64(share)))
		if overflow {
			return nil, nil, fmt.Errorf("pool too large to split without overflow")
		}
		fractions[i] = new(uint256.Int).Mod(scaled, microUnit).Uint64()
		payouts[i] = scaled.Div(scaled, microUnit)
		paid.Add(paid, payouts[i])
	}

	// Flooring loses strictly less than one unit per provider, so the dust
	// fits in a uint64 and one extra unit per recipient settles it.
	dust := new(uint256.Int).Sub(remainder, paid).Uint64()
	order := make([]int, len(microShares))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fractions[order[a]] > fractions[order[b]]
	})
	one := uint256.NewInt(1)
	for i := uint64(0); i < dust; i++ {
		idx := order[i%uint64(len(order))]
		payouts[idx].Add(payouts[idx], one)
	}

	return payouts, treasury, nil
}
