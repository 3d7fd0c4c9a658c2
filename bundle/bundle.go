// Package bundle owns pooled capital and fans it out across interchangeable
// exposure and yield strategies. All persisted allocation state lives here;
// strategies are consulted, never trusted.
package bundle

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/allocator/internal/id"
	"github.com/rustyeddy/allocator/journal"
	"github.com/rustyeddy/allocator/optimizer"
	"github.com/rustyeddy/allocator/risk"
	"github.com/rustyeddy/allocator/strategy"
)

var log = logrus.WithField("module", "bundle")

var (
	// ErrAmountTooLow rejects zero or negative capital amounts.
	ErrAmountTooLow = errors.New("amount too low")

	// ErrInsufficientCapital rejects withdrawals above allocated capital.
	ErrInsufficientCapital = errors.New("insufficient allocated capital")

	// ErrTooManyStrategies rejects registrations past the configured cap.
	ErrTooManyStrategies = errors.New("strategy count cap reached")

	// ErrDuplicateStrategy rejects a second registration under one name.
	ErrDuplicateStrategy = errors.New("strategy already registered")

	// ErrUnknownStrategy means the named strategy is not registered.
	ErrUnknownStrategy = errors.New("unknown strategy")

	// ErrTargetOverCommitted rejects target weights that would push the sum
	// of active targets above 10000.
	ErrTargetOverCommitted = errors.New("active targets would exceed 10000 bps")

	// ErrTargetOutOfBounds rejects a target outside its min/max band.
	ErrTargetOutOfBounds = errors.New("target allocation out of bounds")

	// ErrBadFractionSum rejects yield fractions that do not sum to 10000.
	ErrBadFractionSum = errors.New("yield fractions must sum to 10000 bps")

	// ErrRateLimited means the minimum interval between rebalances has not
	// elapsed.
	ErrRateLimited = errors.New("rebalance interval not elapsed")
)

// primaryMinBps is the fixed minimum weight of a primary strategy.
const primaryMinBps = 1000

// ExposureAllocation is the bundle's bookkeeping for one registered exposure
// strategy. Target weights are parts-per-10000 of the exposure bucket;
// Current is deployed capital in account currency.
type ExposureAllocation struct {
	Strategy strategy.ExposureStrategy

	TargetBps int
	MaxBps    int
	MinBps    int

	Primary bool
	Active  bool

	Current        float64
	TotalAllocated float64 // cumulative, never decreases
	LastRebalance  time.Time
}

// YieldBundle is the bundle's bookkeeping for the yield side: an ordered
// strategy list with parallel weight fractions that sum to exactly 10000
// when non-empty.
type YieldBundle struct {
	Strategies   []strategy.YieldStrategy
	FractionsBps []int

	// SharesHeld tracks the shares each strategy minted for our deposits,
	// parallel to Strategies. Redemptions are denominated in these shares,
	// never in capital, so non-1:1 share prices stay correct.
	SharesHeld []float64

	TotalCapital    float64
	CurrentLeverage int // x100
	MaxLeverage     int // x100
	Active          bool
}

// Split reports how a deposit was divided and placed.
type Split struct {
	Requested float64
	Exposure  float64 // actually placed into exposure strategies
	Yield     float64 // actually placed into yield strategies
}

// Options configures a Bundle.
type Options struct {
	Params risk.Parameters

	// OptimizationInterval paces the best-effort optimization pass piggy-
	// backed on deposits. Zero disables it.
	OptimizationInterval time.Duration

	// RebalanceInterval rate-limits RebalanceStrategies.
	RebalanceInterval time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Bundle is the capital allocation engine. All mutating entry points hold a
// single lock for their full duration, so no two operations ever observe
// interleaved state.
type Bundle struct {
	mu sync.Mutex

	params  risk.Parameters
	breaker risk.Breaker

	opt *optimizer.Optimizer
	jnl journal.Journal

	optimizationInterval time.Duration
	rebalanceInterval    time.Duration
	now                  func() time.Time

	exposures []*ExposureAllocation
	yield     YieldBundle

	// totalAllocated tracks capital accepted into custody, not capital
	// actually deployed; a strategy failure during placement leaves the
	// difference idle but still counted here.
	totalAllocated float64

	lastOptimization time.Time
	lastRebalance    time.Time
}

// New returns a Bundle. The optimizer may be nil (no optimization passes);
// a nil journal falls back to journal.Nop.
func New(opt *optimizer.Optimizer, jnl journal.Journal, opts Options) (*Bundle, error) {
	if err := opts.Params.Validate(); err != nil {
		return nil, fmt.Errorf("risk parameters: %w", err)
	}
	if jnl == nil {
		jnl = journal.Nop{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Bundle{
		params:               opts.Params,
		opt:                  opt,
		jnl:                  jnl,
		optimizationInterval: opts.OptimizationInterval,
		rebalanceInterval:    opts.RebalanceInterval,
		now:                  opts.Now,
	}, nil
}

// TotalAllocatedCapital returns the capital currently counted in custody.
func (b *Bundle) TotalAllocatedCapital() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalAllocated
}

// Exposures returns a snapshot of the exposure registry bookkeeping.
func (b *Bundle) Exposures() []ExposureAllocation {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]ExposureAllocation, len(b.exposures))
	for i, a := range b.exposures {
		out[i] = *a
	}
	return out
}

// Yield returns a snapshot of the yield bundle bookkeeping.
func (b *Bundle) Yield() YieldBundle {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.yield
	out.Strategies = append([]strategy.YieldStrategy(nil), b.yield.Strategies...)
	out.FractionsBps = append([]int(nil), b.yield.FractionsBps...)
	out.SharesHeld = append([]float64(nil), b.yield.SharesHeld...)
	return out
}

// RiskParameters returns the active risk limits.
func (b *Bundle) RiskParameters() risk.Parameters {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.params
}

// SetRiskParameters replaces the risk limits. Privileged surface.
func (b *Bundle) SetRiskParameters(p risk.Parameters) error {
	if err := p.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.params = p
	b.eventLocked("risk_parameters_updated", fmt.Sprintf("max_leverage=%d max_strategies=%d rebalance_threshold=%d",
		p.MaxTotalLeverage, p.MaxStrategyCount, p.RebalanceThresholdBps))
	log.WithField("max_leverage", p.MaxTotalLeverage).Info("risk parameters updated")
	return nil
}

// BreakerTripped reports the circuit breaker state.
func (b *Bundle) BreakerTripped() bool {
	return b.breaker.Tripped()
}

// TripBreaker activates the circuit breaker. Privileged surface.
func (b *Bundle) TripBreaker() {
	b.breaker.Trip()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.eventLocked("breaker_tripped", "operator")
	log.Warn("circuit breaker tripped")
}

// ResetBreaker clears the circuit breaker. Privileged surface.
func (b *Bundle) ResetBreaker() {
	b.breaker.Reset()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.eventLocked("breaker_reset", "operator")
	log.Info("circuit breaker reset")
}

// eventLocked writes an audit event; journal failures are logged, never
// propagated — the audit trail must not block capital operations.
func (b *Bundle) eventLocked(kind, detail string) {
	err := b.jnl.RecordEvent(journal.EventRecord{
		EventID: id.New(),
		Time:    b.now(),
		Kind:    kind,
		Detail:  detail,
	})
	if err != nil {
		log.WithField("kind", kind).Warnf("journal event failed: %v", err)
	}
}

// flowLocked writes a flow record; failures are logged, never propagated.
func (b *Bundle) flowLocked(kind string, requested, realized, exposure, yield float64) {
	err := b.jnl.RecordFlow(journal.FlowRecord{
		FlowID:    id.New(),
		Time:      b.now(),
		Kind:      kind,
		Requested: requested,
		Realized:  realized,
		Exposure:  exposure,
		Yield:     yield,
	})
	if err != nil {
		log.WithField("kind", kind).Warnf("journal flow failed: %v", err)
	}
}
