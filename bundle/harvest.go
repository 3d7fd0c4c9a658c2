package bundle

import (
	"context"

	"github.com/rustyeddy/allocator/strategy"
)

// HarvestYield collects accrued yield from every strategy holding capital.
// Per-strategy failures are contained; the total is what actually came in.
func (b *Bundle) HarvestYield(ctx context.Context) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.breaker.Allow(); err != nil {
		return 0, err
	}

	harvested := 0.0

	for _, a := range b.exposures {
		if !a.Active {
			continue
		}
		res := strategy.TryHarvest(ctx, a.Strategy)
		if !res.OK {
			log.WithField("strategy", a.Strategy.Name()).Warnf("harvest failed, skipping: %v", res.Err)
			continue
		}
		harvested += res.Amount
	}

	for _, ys := range b.yield.Strategies {
		res := strategy.TryYieldHarvest(ctx, ys)
		if !res.OK {
			log.WithField("strategy", ys.Name()).Warnf("yield harvest failed, skipping: %v", res.Err)
			continue
		}
		harvested += res.Amount
	}

	if harvested > 0 {
		b.flowLocked("harvest", 0, harvested, 0, 0)
		log.WithField("harvested", harvested).Info("yield harvested")
	}

	return harvested, nil
}
