package bundle

import (
	"context"
	"fmt"

	"github.com/rustyeddy/allocator/strategy"
)

// AddExposureStrategy registers a candidate exposure strategy under the
// configured cap. The candidate is probed for the expected capability shape
// before it is trusted; a primary strategy carries a fixed 1000 bps minimum
// weight. Privileged surface.
func (b *Bundle) AddExposureStrategy(s strategy.ExposureStrategy, targetBps, maxBps int, primary bool) error {
	if err := strategy.ProbeExposure(s); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.exposures) >= b.params.MaxStrategyCount {
		return ErrTooManyStrategies
	}
	for _, a := range b.exposures {
		if a.Strategy.Name() == s.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicateStrategy, s.Name())
		}
	}

	minBps := 0
	if primary {
		minBps = primaryMinBps
	}

	if targetBps < minBps || targetBps > 10000 {
		return fmt.Errorf("%w: target %d outside [%d, 10000]", ErrTargetOutOfBounds, targetBps, minBps)
	}
	if maxBps > 0 && targetBps > maxBps {
		return fmt.Errorf("%w: target %d above max %d", ErrTargetOutOfBounds, targetBps, maxBps)
	}

	sum := targetBps
	for _, a := range b.exposures {
		if a.Active {
			sum += a.TargetBps
		}
	}
	if sum > 10000 {
		return fmt.Errorf("%w: sum would be %d", ErrTargetOverCommitted, sum)
	}

	b.exposures = append(b.exposures, &ExposureAllocation{
		Strategy:  s,
		TargetBps: targetBps,
		MaxBps:    maxBps,
		MinBps:    minBps,
		Primary:   primary,
		Active:    true,
	})

	b.eventLocked("strategy_added", fmt.Sprintf("name=%s target_bps=%d primary=%v", s.Name(), targetBps, primary))
	log.WithFields(map[string]interface{}{
		"strategy":   s.Name(),
		"target_bps": targetBps,
		"primary":    primary,
	}).Info("exposure strategy added")

	return nil
}

// RemoveExposureStrategy deregisters a strategy by name. A best-effort
// emergency exit runs first; its failure is logged and removal proceeds
// anyway. The registry slot is removed by swap-and-pop. Privileged surface.
func (b *Bundle) RemoveExposureStrategy(ctx context.Context, name string) (recovered float64, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := -1
	for i, a := range b.exposures {
		if a.Strategy.Name() == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
	}

	a := b.exposures[idx]
	if a.Current > 0 {
		res := strategy.TryExit(ctx, a.Strategy)
		if res.OK {
			recovered = res.Amount
		} else {
			log.WithField("strategy", name).Warnf("exit before removal failed: %v", res.Err)
		}
	}
	a.Current = 0
	a.TargetBps = 0
	a.Active = false

	last := len(b.exposures) - 1
	b.exposures[idx] = b.exposures[last]
	b.exposures[last] = nil
	b.exposures = b.exposures[:last]

	b.eventLocked("strategy_removed", fmt.Sprintf("name=%s recovered=%.2f", name, recovered))
	log.WithFields(map[string]interface{}{
		"strategy":  name,
		"recovered": recovered,
	}).Info("exposure strategy removed")

	return recovered, nil
}

// UpdateYieldBundle replaces the yield-side composition. The fraction list
// must parallel the strategy list and sum to exactly 10000 when non-empty;
// every candidate is probed before the swap. Aggregate yield capital carries
// over to the new composition. Privileged surface.
func (b *Bundle) UpdateYieldBundle(strategies []strategy.YieldStrategy, fractionsBps []int) error {
	if len(strategies) != len(fractionsBps) {
		return fmt.Errorf("%w: %d strategies, %d fractions", ErrBadFractionSum, len(strategies), len(fractionsBps))
	}
	if len(strategies) > 0 {
		sum := 0
		for _, f := range fractionsBps {
			if f < 0 {
				return fmt.Errorf("%w: negative fraction %d", ErrBadFractionSum, f)
			}
			sum += f
		}
		if sum != 10000 {
			return fmt.Errorf("%w: got %d", ErrBadFractionSum, sum)
		}
	}
	for _, ys := range strategies {
		if err := strategy.ProbeYield(ys); err != nil {
			return err
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.yield.Strategies = append([]strategy.YieldStrategy(nil), strategies...)
	b.yield.FractionsBps = append([]int(nil), fractionsBps...)
	b.yield.SharesHeld = make([]float64, len(strategies))
	b.yield.Active = len(strategies) > 0

	b.eventLocked("yield_bundle_updated", fmt.Sprintf("strategies=%d", len(strategies)))
	log.WithField("strategies", len(strategies)).Info("yield bundle updated")

	return nil
}
