package bundle

import (
	"context"

	"github.com/rustyeddy/allocator/strategy"
)

// AllocateCapital pulls amount into custody and fans it out across the
// registered strategies. The split between exposure and yield is leverage
// aware; each exposure strategy is capped at its target share of the
// exposure bucket. Per-strategy failures are contained: a broken strategy
// contributes nothing and the unconsumed amount stays idle.
//
// totalAllocated grows by the requested amount regardless of how much was
// actually placed — it tracks custody, not deployment.
func (b *Bundle) AllocateCapital(ctx context.Context, amount float64) (Split, error) {
	if amount <= 0 {
		return Split{}, ErrAmountTooLow
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Checked under the lock so an emergency exit that trips the breaker
	// can never interleave with an in-flight deposit.
	if err := b.breaker.Allow(); err != nil {
		return Split{}, err
	}

	b.maybeOptimizeLocked(ctx)

	exposurePortion := b.exposurePortionLocked(amount)
	yieldPortion := amount - exposurePortion

	split := Split{Requested: amount}
	split.Exposure = b.placeExposureLocked(ctx, exposurePortion)
	split.Yield = b.placeYieldLocked(ctx, yieldPortion)

	b.totalAllocated += amount

	b.flowLocked("allocate", amount, split.Exposure+split.Yield, split.Exposure, split.Yield)
	log.WithFields(map[string]interface{}{
		"requested": amount,
		"exposure":  split.Exposure,
		"yield":     split.Yield,
	}).Info("capital allocated")

	return split, nil
}

// exposurePortionLocked splits a deposit between the exposure and yield
// buckets. At or below 1x aggregate leverage the split is a flat 50/50;
// above 1x the exposure portion shrinks in inverse proportion to leverage,
// and at the hard leverage cap nothing more goes toward exposure.
func (b *Bundle) exposurePortionLocked(amount float64) float64 {
	leverage := b.aggregateLeverageLocked()

	if leverage >= b.params.MaxTotalLeverage {
		return 0
	}
	half := amount / 2
	if leverage > 100 {
		return half * 100 / float64(leverage)
	}
	return half
}

// aggregateLeverageLocked is total self-reported exposure over total backing
// collateral, x100. Unreadable strategies contribute nothing; an empty book
// reports 1x.
func (b *Bundle) aggregateLeverageLocked() int {
	var totalExposure, totalCollateral float64

	for _, a := range b.exposures {
		if !a.Active {
			continue
		}
		info, ok := strategy.TryInfo(a.Strategy)
		if !ok {
			continue
		}
		totalExposure += info.CurrentExposure
		if info.Leverage > 0 {
			totalCollateral += info.CurrentExposure * 100 / float64(info.Leverage)
		} else {
			totalCollateral += info.CurrentExposure
		}
	}

	if totalCollateral <= 0 {
		return 100
	}
	return int(totalExposure * 100 / totalCollateral)
}

// placeExposureLocked fans the exposure bucket across active strategies in
// registry order. Each strategy gets at most its target share of the bucket
// and at most what is still unconsumed.
func (b *Bundle) placeExposureLocked(ctx context.Context, portion float64) float64 {
	if portion <= 0 {
		return 0
	}

	remaining := portion
	placed := 0.0

	for _, a := range b.exposures {
		if !a.Active || a.TargetBps <= 0 || remaining <= 0 {
			continue
		}

		amt := portion * float64(a.TargetBps) / 10000
		if amt > remaining {
			amt = remaining
		}
		if amt <= 0 {
			continue
		}

		res := strategy.TryOpen(ctx, a.Strategy, amt)
		if !res.OK {
			log.WithField("strategy", a.Strategy.Name()).Warnf("open exposure failed, skipping: %v", res.Err)
			continue
		}

		a.Current += amt
		a.TotalAllocated += amt
		remaining -= amt
		placed += amt
	}

	return placed
}

// placeYieldLocked fans the yield bucket across the yield strategies in
// proportion to their fixed fractions.
func (b *Bundle) placeYieldLocked(ctx context.Context, portion float64) float64 {
	if portion <= 0 || !b.yield.Active {
		return 0
	}

	placed := 0.0
	for i, ys := range b.yield.Strategies {
		share := portion * float64(b.yield.FractionsBps[i]) / 10000
		if share <= 0 {
			continue
		}

		res := strategy.TryDeposit(ctx, ys, share)
		if !res.OK {
			log.WithField("strategy", ys.Name()).Warnf("yield deposit failed, skipping: %v", res.Err)
			continue
		}

		// res.Amount is the shares the strategy minted for this deposit.
		b.yield.SharesHeld[i] += res.Amount
		b.yield.TotalCapital += share
		placed += share
	}

	return placed
}
