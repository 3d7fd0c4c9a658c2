package optimizer

import (
	"fmt"
	"sort"

	"github.com/rustyeddy/allocator/strategy"
)

// Result is the outcome of one optimization pass.
type Result struct {
	Scores []Score

	// Allocation holds the proposed weight per analyzed strategy, same order
	// as Scores, parts-per-10000. Unrecommended strategies get zero.
	Allocation []int

	ExpectedSavingBps     int // vs. the baseline cost
	ExpectedRiskReduction int // vs. the baseline risk, 0..100 points

	ImplementationGas uint64
	ShouldRebalance   bool
	Confidence        int // 0..100, grows with ledger depth

	Instructions []Instruction
}

// Instruction is one leg of a proposed rebalance. From/To name strategies; an
// empty string means idle bundle capital.
type Instruction struct {
	From string
	To   string

	AmountBps int // share of deployed capital to move

	// Priority orders execution: 1 = emergency exit, 2 = move toward a
	// cheaper strategy, 3 = trim an expensive one.
	Priority int

	MaxSlippageBps int
	Emergency      bool
	Reason         string
}

// CalculateOptimalAllocation turns a scorecard batch into a proposed weight
// vector and judges whether applying it beats its implementation cost.
// Recommended strategies receive weight inversely proportional to their cost
// score, so cheaper exposure gets more capital.
func (o *Optimizer) CalculateOptimalAllocation(scores []Score) Result {
	res := Result{
		Scores:     scores,
		Allocation: make([]int, len(scores)),
	}

	// Inverse-cost weights over the recommended set.
	totalInverse := 0
	recommended := 0
	for _, sc := range scores {
		if sc.Recommended {
			totalInverse += 10000 - sc.CostBps
			recommended++
		}
	}

	if recommended == 0 {
		res.Confidence = o.confidence(scores)
		return res
	}

	allocated := 0
	lastIdx := -1
	for i, sc := range scores {
		if !sc.Recommended {
			continue
		}
		var w int
		if totalInverse > 0 {
			w = (10000 - sc.CostBps) * 10000 / totalInverse
		} else {
			w = 10000 / recommended
		}
		res.Allocation[i] = w
		allocated += w
		lastIdx = i
	}
	// Integer division leaves dust; park it on the last recommended entry so
	// the vector sums to exactly 10000.
	res.Allocation[lastIdx] += 10000 - allocated

	// Weighted-average cost and risk of the proposal vs. fixed baselines.
	avgCost, avgRisk := 0, 0
	for i, sc := range scores {
		avgCost += res.Allocation[i] * sc.CostBps
		avgRisk += res.Allocation[i] * sc.Risk
	}
	avgCost /= 10000
	avgRisk /= 10000

	if saving := o.cfg.BaselineCostBps - avgCost; saving > 0 {
		res.ExpectedSavingBps = saving
	}
	if reduction := o.cfg.BaselineRisk - avgRisk; reduction > 0 {
		res.ExpectedRiskReduction = reduction
	}

	res.ImplementationGas = o.cfg.BaseGas + uint64(recommended)*o.cfg.PerStrategyGas
	res.ShouldRebalance = res.ExpectedSavingBps >= o.cfg.MinSavingBps &&
		res.ImplementationGas <= o.cfg.MaxGas
	res.Confidence = o.confidence(scores)

	return res
}

// confidence grows from 50 (no history) toward 100 as the ledgers fill.
func (o *Optimizer) confidence(scores []Score) int {
	if len(scores) == 0 {
		return 0
	}
	depth := 0
	for _, sc := range scores {
		depth += o.historySize(sc.Strategy)
	}
	avg := depth / len(scores)
	return 50 + 50*avg/HistoryCapacity
}

// ShouldRebalance reports whether the current weight vector differs from the
// proposal anywhere. Both vectors are parts-per-10000, same order.
func ShouldRebalance(current, optimal []int) bool {
	if len(current) != len(optimal) {
		return true
	}
	for i := range current {
		if current[i] != optimal[i] {
			return true
		}
	}
	return false
}

// RebalanceInstructions emits one instruction per strategy whose current
// weight differs from the proposal, ordered by priority. A strategy in an
// emergency state (inactive, risk above 90, or unresponsive) is exited first
// regardless of the weight delta.
func (o *Optimizer) RebalanceInstructions(strategies []strategy.ExposureStrategy, current, optimal []int) []Instruction {
	n := len(strategies)
	if len(current) < n {
		n = len(current)
	}
	if len(optimal) < n {
		n = len(optimal)
	}

	var out []Instruction
	for i := 0; i < n; i++ {
		s := strategies[i]
		delta := optimal[i] - current[i]

		if emergency, why := emergencyState(s); emergency {
			out = append(out, Instruction{
				From:           s.Name(),
				AmountBps:      current[i],
				Priority:       1,
				MaxSlippageBps: o.cfg.MaxSlippageBps,
				Emergency:      true,
				Reason:         why,
			})
			continue
		}

		if delta == 0 {
			continue
		}

		ins := Instruction{
			MaxSlippageBps: o.cfg.MaxSlippageBps,
		}
		if delta > 0 {
			ins.To = s.Name()
			ins.AmountBps = delta
			ins.Priority = 2
			ins.Reason = fmt.Sprintf("increase toward cheaper strategy by %d bps", delta)
		} else {
			ins.From = s.Name()
			ins.AmountBps = -delta
			ins.Priority = 3
			ins.Reason = fmt.Sprintf("decrease by %d bps", -delta)
		}
		out = append(out, ins)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// emergencyState reports whether a strategy needs to be unwound immediately.
func emergencyState(s strategy.ExposureStrategy) (bool, string) {
	info, ok := strategy.TryInfo(s)
	if !ok {
		return true, "strategy unresponsive"
	}
	if !info.Active {
		return true, "strategy inactive"
	}
	if info.RiskScore > 90 {
		return true, fmt.Sprintf("risk score %d above 90", info.RiskScore)
	}
	return false, ""
}
