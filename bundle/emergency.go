package bundle

import (
	"context"
	"fmt"

	"github.com/rustyeddy/allocator/strategy"
)

// EmergencyExitAll trips the circuit breaker and unwinds everything it can:
// each exposure strategy gets an emergency exit (failure logged, never
// propagated), then the yield bundle is fully redeemed. Per-strategy
// bookkeeping is zeroed regardless of exit success.
//
// This is the one path allowed to leave totalAllocated out of step with
// per-strategy bookkeeping: under emergency conditions recovering capital
// beats keeping the ledger tidy. Privileged surface.
func (b *Bundle) EmergencyExitAll(ctx context.Context) (float64, error) {
	b.breaker.Trip()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.eventLocked("breaker_tripped", "emergency exit")
	log.Warn("emergency exit: circuit breaker tripped")

	recovered := 0.0

	for _, a := range b.exposures {
		if !a.Active || a.Current <= 0 {
			continue
		}

		res := strategy.TryExit(ctx, a.Strategy)
		if res.OK {
			recovered += res.Amount
		} else {
			log.WithField("strategy", a.Strategy.Name()).Errorf("emergency exit failed: %v", res.Err)
		}
		a.Current = 0
	}

	if b.yield.Active && b.yield.TotalCapital > 0 {
		for i, ys := range b.yield.Strategies {
			shares := b.yield.SharesHeld[i]
			if shares <= 0 {
				continue
			}
			res := strategy.TryWithdraw(ctx, ys, shares)
			if res.OK {
				recovered += res.Amount
			} else {
				log.WithField("strategy", ys.Name()).Errorf("emergency yield redemption failed: %v", res.Err)
			}
			b.yield.SharesHeld[i] = 0
		}
		b.yield.TotalCapital = 0
	}

	b.flowLocked("emergency", 0, recovered, 0, 0)
	b.eventLocked("emergency_exit", fmt.Sprintf("recovered=%.2f", recovered))
	log.WithField("recovered", recovered).Warn("emergency exit complete")

	return recovered, nil
}
