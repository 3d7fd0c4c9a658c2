package optimizer

import (
	"fmt"
	"time"

	"github.com/rustyeddy/allocator/strategy"
)

// Score is the ephemeral scorecard for one strategy. Cost is parts-per-10000
// (lower is cheaper); the other sub-scores are 0..100 (higher is better).
// Composite is 0..10000.
type Score struct {
	Strategy string

	CostBps     int
	Risk        int
	Liquidity   int
	Reliability int
	Capacity    int

	Composite   int
	Recommended bool
	Reason      string
}

// defaultReliability is used when a strategy has no recorded history yet.
const defaultReliability = 50

// AnalyzeStrategies probes each strategy's self-reported state and produces a
// scorecard per strategy. targetExposure is the notional the caller intends
// to deploy in total; horizon scales funding cost into the effective cost. A
// strategy that cannot be probed scores zero and is not recommended — a
// broken strategy never aborts the batch.
func (o *Optimizer) AnalyzeStrategies(strategies []strategy.ExposureStrategy, targetExposure float64, horizon time.Duration) []Score {
	scores := make([]Score, 0, len(strategies))
	for _, s := range strategies {
		scores = append(scores, o.scoreStrategy(s, targetExposure, horizon))
	}
	return scores
}

func (o *Optimizer) scoreStrategy(s strategy.ExposureStrategy, targetExposure float64, horizon time.Duration) Score {
	name := s.Name()

	info, ok := strategy.TryInfo(s)
	if !ok {
		log.WithField("strategy", name).Warn("exposure info unreadable, scoring zero")
		return Score{Strategy: name, CostBps: 10000, Risk: 100, Reason: "exposure info unreadable"}
	}
	costs, ok := strategy.TryCosts(s)
	if !ok {
		log.WithField("strategy", name).Warn("cost breakdown unreadable, scoring zero")
		return Score{Strategy: name, CostBps: 10000, Risk: 100, Reason: "cost breakdown unreadable"}
	}

	cost := clamp(effectiveCostBps(costs, horizon), 0, 10000)
	risk := clamp(info.RiskScore, 0, 100)

	// Liquidity looks at the headroom left in the strategy; capacity at the
	// total size it could ever absorb.
	liquidity := stepScore(info.MaxCapacity-info.CurrentExposure, targetExposure)
	capacity := stepScore(info.MaxCapacity, targetExposure)

	reliability, hasHistory := o.successRate(name)
	if !hasHistory {
		reliability = defaultReliability
	}

	composite := o.cfg.CostWeight*(10000-cost)/100 +
		o.cfg.RiskWeight*(100-risk) +
		o.cfg.LiquidityWeight*liquidity +
		o.cfg.ReliabilityWeight*reliability +
		o.cfg.CapacityWeight*capacity

	sc := Score{
		Strategy:    name,
		CostBps:     cost,
		Risk:        risk,
		Liquidity:   liquidity,
		Reliability: reliability,
		Capacity:    capacity,
		Composite:   composite,
	}

	switch {
	case !info.Active:
		sc.Reason = "strategy inactive"
	case composite < o.cfg.RecommendBps:
		sc.Reason = fmt.Sprintf("composite %d below recommendation floor %d", composite, o.cfg.RecommendBps)
	default:
		sc.Recommended = true
		sc.Reason = fmt.Sprintf("composite %d/10000", composite)
	}
	return sc
}

// effectiveCostBps is the strategy's all-in cost with funding scaled to the
// analysis horizon. Funding is quoted annualized; a short horizon pays only
// its share of it.
func effectiveCostBps(c strategy.CostBreakdown, horizon time.Duration) int {
	cost := c.TotalCostBps
	if horizon > 0 && horizon < 365*24*time.Hour {
		carried := int(float64(c.FundingRateBps) * horizon.Hours() / (365 * 24))
		cost = cost - c.FundingRateBps + carried
	}
	return cost
}

// stepScore grades available size against the target at the 2x / 1x / 0.5x /
// 0.25x breakpoints.
func stepScore(available, target float64) int {
	if target <= 0 {
		return 100
	}
	switch {
	case available >= 2*target:
		return 100
	case available >= target:
		return 75
	case available >= target/2:
		return 50
	case available >= target/4:
		return 25
	default:
		return 0
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
