package risk

import "fmt"

// Parameters are the bundle-wide risk limits. All percentage-like fields are
// parts-per-10000; leverage is x100 (100 = 1x).
type Parameters struct {
	MaxTotalLeverage int // 300 = 3x aggregate cap
	MaxStrategyCount int // 10

	RebalanceThresholdBps int // 500 = rebalance on a 5% drift
	EmergencyThresholdBps int // 2000 = emergency review on a 20% drift

	MaxSlippageBps   int // 100 = 1% per rebalance leg
	MinEfficiencyBps int // 9000 = at least 90% of capital productive
}

// Default returns the limits used when no config overrides them.
func Default() Parameters {
	return Parameters{
		MaxTotalLeverage:      300,
		MaxStrategyCount:      10,
		RebalanceThresholdBps: 500,
		EmergencyThresholdBps: 2000,
		MaxSlippageBps:        100,
		MinEfficiencyBps:      9000,
	}
}

// Validate checks the limits are internally consistent.
func (p Parameters) Validate() error {
	if p.MaxTotalLeverage < 100 {
		return fmt.Errorf("max_total_leverage must be at least 100 (1x), got %d", p.MaxTotalLeverage)
	}
	if p.MaxStrategyCount <= 0 {
		return fmt.Errorf("max_strategy_count must be positive, got %d", p.MaxStrategyCount)
	}
	if p.RebalanceThresholdBps <= 0 || p.RebalanceThresholdBps > 10000 {
		return fmt.Errorf("rebalance_threshold_bps must be in (0, 10000], got %d", p.RebalanceThresholdBps)
	}
	if p.EmergencyThresholdBps < p.RebalanceThresholdBps || p.EmergencyThresholdBps > 10000 {
		return fmt.Errorf("emergency_threshold_bps must be in [rebalance threshold, 10000], got %d", p.EmergencyThresholdBps)
	}
	if p.MaxSlippageBps < 0 || p.MaxSlippageBps > 10000 {
		return fmt.Errorf("max_slippage_bps must be in [0, 10000], got %d", p.MaxSlippageBps)
	}
	if p.MinEfficiencyBps < 0 || p.MinEfficiencyBps > 10000 {
		return fmt.Errorf("min_efficiency_bps must be in [0, 10000], got %d", p.MinEfficiencyBps)
	}
	return nil
}
