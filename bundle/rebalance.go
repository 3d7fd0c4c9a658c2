package bundle

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/allocator/internal/id"
	"github.com/rustyeddy/allocator/journal"
	"github.com/rustyeddy/allocator/optimizer"
	"github.com/rustyeddy/allocator/strategy"
)

// RebalanceStrategies marks every active exposure strategy whose deployed
// share has drifted from its target by at least the rebalance threshold.
// This updates bookkeeping only — capital moves through subsequent allocate
// and withdraw flows, which respect the (possibly refreshed) targets.
// Rate-limited by the configured rebalance interval. Returns true iff any
// strategy exceeded the threshold.
func (b *Bundle) RebalanceStrategies() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if b.rebalanceInterval > 0 && now.Sub(b.lastRebalance) < b.rebalanceInterval {
		return false, ErrRateLimited
	}
	b.lastRebalance = now

	totalDeployed := 0.0
	for _, a := range b.exposures {
		if a.Active {
			totalDeployed += a.Current
		}
	}
	if totalDeployed <= 0 {
		return false, nil
	}

	count := 0
	valueMoved := 0.0

	for _, a := range b.exposures {
		if !a.Active {
			continue
		}

		currentBps := int(a.Current * 10000 / totalDeployed)
		deviation := currentBps - a.TargetBps
		if deviation < 0 {
			deviation = -deviation
		}
		if deviation < b.params.RebalanceThresholdBps {
			continue
		}

		a.LastRebalance = now
		valueMoved += totalDeployed * float64(deviation) / 10000
		count++
	}

	if count > 0 {
		b.eventLocked("rebalance", fmt.Sprintf("strategies=%d value_moved=%.2f", count, valueMoved))
		log.WithFields(map[string]interface{}{
			"strategies":  count,
			"value_moved": valueMoved,
		}).Info("rebalance executed")
	}

	return count > 0, nil
}

// TriggerOptimization runs a full optimization pass immediately, ignoring the
// pacing interval. Privileged surface; also used by the demo command.
func (b *Bundle) TriggerOptimization(ctx context.Context) (optimizer.Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.opt == nil {
		return optimizer.Result{}, fmt.Errorf("no optimizer configured")
	}
	return b.optimizeLocked(ctx), nil
}

// maybeOptimizeLocked runs an optimization pass when the pacing interval has
// elapsed. Best effort: nothing here may abort the deposit that triggered it.
func (b *Bundle) maybeOptimizeLocked(ctx context.Context) {
	if b.opt == nil || b.optimizationInterval <= 0 {
		return
	}
	now := b.now()
	if now.Sub(b.lastOptimization) < b.optimizationInterval {
		return
	}
	b.lastOptimization = now
	b.optimizeLocked(ctx)
}

// optimizeLocked scores the active strategies, and when the optimizer judges
// a reallocation worth its cost, refreshes the target weights from the
// proposal (clamped to each strategy's min/max band).
func (b *Bundle) optimizeLocked(ctx context.Context) optimizer.Result {
	_ = ctx // scoring is read-only; no capital moves here

	started := b.now()

	strategies := make([]strategy.ExposureStrategy, 0, len(b.exposures))
	active := make([]*ExposureAllocation, 0, len(b.exposures))
	for _, a := range b.exposures {
		if a.Active {
			strategies = append(strategies, a.Strategy)
			active = append(active, a)
		}
	}

	// The exposure bucket aims for half of custody capital.
	target := b.totalAllocated / 2

	scores := b.opt.AnalyzeStrategies(strategies, target, b.optimizationInterval)
	res := b.opt.CalculateOptimalAllocation(scores)

	if res.ShouldRebalance {
		b.applyAllocationLocked(active, res.Allocation)
	}

	elapsed := b.now().Sub(started)
	err := b.jnl.RecordOptimization(journal.OptimizationRecord{
		RunID:      id.New(),
		Time:       started,
		Strategies: len(strategies),
		SavingBps:  res.ExpectedSavingBps,
		Gas:        res.ImplementationGas,
		Elapsed:    elapsed,
		Rebalance:  res.ShouldRebalance,
		Confidence: res.Confidence,
	})
	if err != nil {
		log.Warnf("journal optimization failed: %v", err)
	}

	log.WithFields(map[string]interface{}{
		"strategies": len(strategies),
		"saving_bps": res.ExpectedSavingBps,
		"gas":        res.ImplementationGas,
		"rebalance":  res.ShouldRebalance,
		"elapsed":    elapsed.Round(time.Microsecond),
	}).Info("optimization performed")

	return res
}

// applyAllocationLocked installs a proposed weight vector as the new targets,
// clamping each to its strategy's band and trimming any excess so the sum of
// active targets never exceeds 10000.
func (b *Bundle) applyAllocationLocked(active []*ExposureAllocation, allocation []int) {
	if len(allocation) != len(active) {
		return
	}

	sum := 0
	for i, a := range active {
		w := allocation[i]
		if w < a.MinBps {
			w = a.MinBps
		}
		if a.MaxBps > 0 && w > a.MaxBps {
			w = a.MaxBps
		}
		a.TargetBps = w
		sum += w
	}

	// Clamping to minimums can push the sum past 10000; trim the overweight
	// entries down toward their minimums until it fits.
	for i := len(active) - 1; i >= 0 && sum > 10000; i-- {
		a := active[i]
		spare := a.TargetBps - a.MinBps
		if spare <= 0 {
			continue
		}
		cut := sum - 10000
		if cut > spare {
			cut = spare
		}
		a.TargetBps -= cut
		sum -= cut
	}

	b.eventLocked("allocation_updated", fmt.Sprintf("strategies=%d", len(active)))
}
