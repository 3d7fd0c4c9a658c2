package optimizer

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/allocator/strategy"
)

var log = logrus.WithField("module", "optimizer")

// Config holds the scoring weights, cost-benefit baselines, and the gas model
// used to decide whether a reallocation pays for itself.
type Config struct {
	// Composite weights, percent. Must sum to 100.
	CostWeight        int `json:"cost_weight" yaml:"cost_weight"`               // 40
	RiskWeight        int `json:"risk_weight" yaml:"risk_weight"`               // 20
	LiquidityWeight   int `json:"liquidity_weight" yaml:"liquidity_weight"`     // 15
	ReliabilityWeight int `json:"reliability_weight" yaml:"reliability_weight"` // 15
	CapacityWeight    int `json:"capacity_weight" yaml:"capacity_weight"`       // 10

	// RecommendBps is the composite floor for a strategy to be recommended.
	RecommendBps int `json:"recommend_bps" yaml:"recommend_bps"` // 6000

	// Cost-benefit baselines the proposal is compared against.
	BaselineCostBps int `json:"baseline_cost_bps" yaml:"baseline_cost_bps"` // 500 = 5%
	BaselineRisk    int `json:"baseline_risk" yaml:"baseline_risk"`         // 50

	// Gas model for implementation cost.
	BaseGas        uint64 `json:"base_gas" yaml:"base_gas"`                 // 200_000
	PerStrategyGas uint64 `json:"per_strategy_gas" yaml:"per_strategy_gas"` // 150_000

	// Rebalance is only worth it when the expected saving clears
	// MinSavingBps and the gas bill stays under MaxGas.
	MinSavingBps int    `json:"min_saving_bps" yaml:"min_saving_bps"` // 25
	MaxGas       uint64 `json:"max_gas" yaml:"max_gas"`               // 1_500_000

	// MaxSlippageBps is stamped onto every rebalance instruction.
	MaxSlippageBps int `json:"max_slippage_bps" yaml:"max_slippage_bps"` // 100
}

// DefaultConfig returns the weights and thresholds used absent overrides.
func DefaultConfig() Config {
	return Config{
		CostWeight:        40,
		RiskWeight:        20,
		LiquidityWeight:   15,
		ReliabilityWeight: 15,
		CapacityWeight:    10,
		RecommendBps:      6000,
		BaselineCostBps:   500,
		BaselineRisk:      50,
		BaseGas:           200_000,
		PerStrategyGas:    150_000,
		MinSavingBps:      25,
		MaxGas:            1_500_000,
		MaxSlippageBps:    100,
	}
}

// Validate checks the config is usable.
func (c Config) Validate() error {
	sum := c.CostWeight + c.RiskWeight + c.LiquidityWeight + c.ReliabilityWeight + c.CapacityWeight
	if sum != 100 {
		return fmt.Errorf("composite weights must sum to 100, got %d", sum)
	}
	if c.RecommendBps < 0 || c.RecommendBps > 10000 {
		return fmt.Errorf("recommend_bps must be in [0, 10000], got %d", c.RecommendBps)
	}
	if c.BaselineCostBps < 0 || c.BaselineCostBps > 10000 {
		return fmt.Errorf("baseline_cost_bps must be in [0, 10000], got %d", c.BaselineCostBps)
	}
	if c.BaselineRisk < 0 || c.BaselineRisk > 100 {
		return fmt.Errorf("baseline_risk must be in [0, 100], got %d", c.BaselineRisk)
	}
	if c.MinSavingBps < 0 {
		return fmt.Errorf("min_saving_bps must be non-negative, got %d", c.MinSavingBps)
	}
	return nil
}

// Optimizer scores strategies and derives allocation proposals. It holds no
// allocation state of its own; the only thing it accumulates is the bounded
// per-strategy performance ledger.
type Optimizer struct {
	cfg  Config
	feed strategy.PriceFeed

	mu   sync.Mutex
	hist map[string]*history
}

// New returns an Optimizer. The feed may be nil; scoring reads strategies
// directly and only simulated collaborators price through it.
func New(feed strategy.PriceFeed, cfg Config) *Optimizer {
	return &Optimizer{
		cfg:  cfg,
		feed: feed,
		hist: make(map[string]*history),
	}
}

// RecordPerformance appends one execution outcome to a strategy's ledger.
// The ledger holds at most HistoryCapacity samples; the oldest is evicted.
func (o *Optimizer) RecordPerformance(name string, ret float64, costBps int, elapsed time.Duration, success bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.ledger(name).add(Sample{
		Return:  ret,
		CostBps: costBps,
		Elapsed: elapsed,
		Success: success,
		At:      time.Now(),
	})
}

// UpdateRiskAssessment appends an assessed risk score (0..100) to a
// strategy's risk ledger, bounded like the execution ledger.
func (o *Optimizer) UpdateRiskAssessment(name string, score int) {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.ledger(name).addRisk(score)
}

// LatestRiskAssessment returns the most recent assessed risk for a strategy.
func (o *Optimizer) LatestRiskAssessment(name string) (score int, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	h, found := o.hist[name]
	if !found {
		return 0, false
	}
	return h.latestRisk()
}

// History returns a strategy's ledger oldest-first.
func (o *Optimizer) History(name string) []Sample {
	o.mu.Lock()
	defer o.mu.Unlock()

	h, ok := o.hist[name]
	if !ok {
		return nil
	}
	return h.samples()
}

func (o *Optimizer) ledger(name string) *history {
	h, ok := o.hist[name]
	if !ok {
		h = &history{}
		o.hist[name] = h
	}
	return h
}

func (o *Optimizer) successRate(name string) (int, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	h, ok := o.hist[name]
	if !ok {
		return 0, false
	}
	return h.successRate()
}

func (o *Optimizer) historySize(name string) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	h, ok := o.hist[name]
	if !ok {
		return 0
	}
	return h.size
}
