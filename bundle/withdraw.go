package bundle

import (
	"context"

	"github.com/rustyeddy/allocator/strategy"
)

// WithdrawCapital pulls amount back out of the strategies, proportionally:
// the ratio of amount to the bundle's live value is applied uniformly to
// every exposure position and to the yield bucket. Per-strategy failures are
// contained and skipped; the realized total is what actually came back.
func (b *Bundle) WithdrawCapital(ctx context.Context, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, ErrAmountTooLow
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.breaker.Allow(); err != nil {
		return 0, err
	}
	if amount > b.totalAllocated {
		return 0, ErrInsufficientCapital
	}

	total := b.currentTotalValueLocked()
	if total <= 0 {
		// Nothing deployed anywhere; there is nothing to pull back.
		return 0, nil
	}

	ratioBps := amount * 10000 / total
	if ratioBps > 10000 {
		ratioBps = 10000
	}

	realized := b.closeExposureLocked(ctx, ratioBps)
	realized += b.redeemYieldLocked(ctx, ratioBps)

	b.totalAllocated -= realized
	if b.totalAllocated < 0 {
		b.totalAllocated = 0
	}

	b.flowLocked("withdraw", amount, realized, 0, 0)
	log.WithFields(map[string]interface{}{
		"requested": amount,
		"realized":  realized,
	}).Info("capital withdrawn")

	return realized, nil
}

// currentTotalValueLocked sums the live self-reported value of every
// strategy holding capital. Unreadable strategies count as zero.
func (b *Bundle) currentTotalValueLocked() float64 {
	total := 0.0

	for _, a := range b.exposures {
		if !a.Active {
			continue
		}
		if info, ok := strategy.TryInfo(a.Strategy); ok {
			total += info.CurrentExposure
		}
	}
	for _, ys := range b.yield.Strategies {
		if res := strategy.TryTotalValue(ys); res.OK {
			total += res.Amount
		}
	}
	return total
}

// closeExposureLocked asks each position to close its share of the ratio.
func (b *Bundle) closeExposureLocked(ctx context.Context, ratioBps float64) float64 {
	realized := 0.0

	for _, a := range b.exposures {
		if !a.Active || a.Current <= 0 {
			continue
		}

		closeAmt := a.Current * ratioBps / 10000
		if closeAmt <= 0 {
			continue
		}

		res := strategy.TryClose(ctx, a.Strategy, closeAmt)
		if !res.OK {
			log.WithField("strategy", a.Strategy.Name()).Warnf("close exposure failed, skipping: %v", res.Err)
			continue
		}

		realized += res.Amount
		a.Current -= closeAmt
		if a.Current < 0 {
			a.Current = 0
		}
	}

	return realized
}

// redeemYieldLocked redeems the ratio's share of each strategy's held shares.
// Redemptions are denominated in shares; aggregate capital bookkeeping shrinks
// by the same ratio, split by the fixed fractions.
func (b *Bundle) redeemYieldLocked(ctx context.Context, ratioBps float64) float64 {
	if !b.yield.Active || b.yield.TotalCapital <= 0 {
		return 0
	}

	bucket := b.yield.TotalCapital * ratioBps / 10000
	realized := 0.0

	for i, ys := range b.yield.Strategies {
		shares := b.yield.SharesHeld[i] * ratioBps / 10000
		if shares <= 0 {
			continue
		}

		res := strategy.TryWithdraw(ctx, ys, shares)
		if !res.OK {
			log.WithField("strategy", ys.Name()).Warnf("yield withdraw failed, skipping: %v", res.Err)
			continue
		}

		realized += res.Amount
		b.yield.SharesHeld[i] -= shares
		b.yield.TotalCapital -= bucket * float64(b.yield.FractionsBps[i]) / 10000
		if b.yield.TotalCapital < 0 {
			b.yield.TotalCapital = 0
		}
	}

	return realized
}
