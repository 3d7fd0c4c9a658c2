package sim

import (
	"context"
	"errors"
	"sync"

	"github.com/rustyeddy/allocator/strategy"
)

// ErrInjected is returned by simulated calls whose failure flag is set.
var ErrInjected = errors.New("injected failure")

// ExposureConfig describes one simulated exposure strategy.
type ExposureConfig struct {
	Name       string
	Type       strategy.ExposureType
	Underlying string

	Leverage    int // x100
	CostBps     int
	RiskScore   int
	MaxCapacity float64

	PendingYield float64 // returned by the first harvest
}

// Exposure is a deterministic in-memory exposure strategy with failure
// injection, used by the demo command and by tests.
type Exposure struct {
	mu   sync.Mutex
	cfg  ExposureConfig
	feed strategy.PriceFeed

	collateral float64
	pending    float64
	active     bool

	// Failure injection. A set flag makes the corresponding call fail.
	FailInfo  bool
	FailCosts bool
	FailOpen  bool
	FailClose bool
	FailExit  bool
}

// NewExposure returns a simulated exposure strategy.
func NewExposure(cfg ExposureConfig, feed strategy.PriceFeed) *Exposure {
	if cfg.Leverage <= 0 {
		cfg.Leverage = 100
	}
	return &Exposure{cfg: cfg, feed: feed, pending: cfg.PendingYield, active: true}
}

func (e *Exposure) Name() string { return e.cfg.Name }

// SetActive toggles the strategy's self-reported active flag.
func (e *Exposure) SetActive(active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = active
}

// Collateral returns the capital currently held by the strategy.
func (e *Exposure) Collateral() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.collateral
}

func (e *Exposure) ExposureInfo() (strategy.ExposureInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.FailInfo {
		return strategy.ExposureInfo{}, ErrInjected
	}

	liq := 0.0
	if e.feed != nil && e.cfg.Leverage > 100 {
		if p, err := e.feed.Price(e.cfg.Underlying); err == nil {
			// Naive liquidation model: price move that wipes the collateral.
			liq = p * (1 - 100/float64(e.cfg.Leverage))
		}
	}

	return strategy.ExposureInfo{
		Type:             e.cfg.Type,
		Underlying:       e.cfg.Underlying,
		Leverage:         e.cfg.Leverage,
		CollateralRatio:  10000 * 100 / e.cfg.Leverage,
		CurrentExposure:  e.collateral * float64(e.cfg.Leverage) / 100,
		MaxCapacity:      e.cfg.MaxCapacity,
		CurrentCostBps:   e.cfg.CostBps,
		RiskScore:        e.cfg.RiskScore,
		Active:           e.active,
		LiquidationPrice: liq,
	}, nil
}

func (e *Exposure) CostBreakdown() (strategy.CostBreakdown, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.FailCosts {
		return strategy.CostBreakdown{}, ErrInjected
	}

	// Split the configured total into plausible components.
	funding := e.cfg.CostBps / 2
	fee := e.cfg.CostBps / 4
	return strategy.CostBreakdown{
		FundingRateBps:   funding,
		ManagementFeeBps: fee,
		SlippageCostBps:  e.cfg.CostBps - funding - fee,
		TotalCostBps:     e.cfg.CostBps,
	}, nil
}

func (e *Exposure) OpenExposure(ctx context.Context, amount float64) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.FailOpen {
		return 0, ErrInjected
	}
	if amount <= 0 {
		return 0, errors.New("amount must be positive")
	}

	e.collateral += amount
	return amount * float64(e.cfg.Leverage) / 100, nil
}

func (e *Exposure) CloseExposure(ctx context.Context, amount float64) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.FailClose {
		return 0, ErrInjected
	}
	if amount <= 0 {
		return 0, errors.New("amount must be positive")
	}

	closed := amount
	if closed > e.collateral {
		closed = e.collateral
	}
	e.collateral -= closed
	return closed, nil
}

func (e *Exposure) HarvestYield(ctx context.Context) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	harvested := e.pending
	e.pending = 0
	return harvested, nil
}

func (e *Exposure) EmergencyExit(ctx context.Context) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.FailExit {
		return 0, ErrInjected
	}

	recovered := e.collateral
	e.collateral = 0
	e.active = false
	return recovered, nil
}
