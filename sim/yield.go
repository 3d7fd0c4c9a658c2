package sim

import (
	"context"
	"errors"
	"sync"
)

// YieldConfig describes one simulated yield strategy.
type YieldConfig struct {
	Name         string
	PendingYield float64 // returned by the first harvest
	SharePrice   float64 // capital per share; 0 means 1:1
}

// Yield is a deterministic in-memory yield strategy. Shares convert to capital
// at the fixed configured price; value only changes through deposits,
// withdrawals, and explicit Accrue calls.
type Yield struct {
	mu      sync.Mutex
	cfg     YieldConfig
	value   float64
	pending float64

	FailDeposit  bool
	FailWithdraw bool
	FailValue    bool
	FailHarvest  bool
}

// NewYield returns a simulated yield strategy.
func NewYield(cfg YieldConfig) *Yield {
	if cfg.SharePrice <= 0 {
		cfg.SharePrice = 1
	}
	return &Yield{cfg: cfg, pending: cfg.PendingYield}
}

func (y *Yield) Name() string { return y.cfg.Name }

func (y *Yield) Deposit(ctx context.Context, amount float64) (float64, error) {
	y.mu.Lock()
	defer y.mu.Unlock()

	if y.FailDeposit {
		return 0, ErrInjected
	}
	if amount <= 0 {
		return 0, errors.New("amount must be positive")
	}

	y.value += amount
	return amount / y.cfg.SharePrice, nil
}

func (y *Yield) Withdraw(ctx context.Context, shares float64) (float64, error) {
	y.mu.Lock()
	defer y.mu.Unlock()

	if y.FailWithdraw {
		return 0, ErrInjected
	}
	if shares <= 0 {
		return 0, errors.New("shares must be positive")
	}

	amount := shares * y.cfg.SharePrice
	if amount > y.value {
		amount = y.value
	}
	y.value -= amount
	return amount, nil
}

func (y *Yield) TotalValue() (float64, error) {
	y.mu.Lock()
	defer y.mu.Unlock()

	if y.FailValue {
		return 0, ErrInjected
	}
	return y.value, nil
}

func (y *Yield) HarvestYield(ctx context.Context) (float64, error) {
	y.mu.Lock()
	defer y.mu.Unlock()

	if y.FailHarvest {
		return 0, ErrInjected
	}

	harvested := y.pending
	y.pending = 0
	return harvested, nil
}

// Accrue adds earned yield to the strategy's value, simulating time passing.
func (y *Yield) Accrue(amount float64) {
	y.mu.Lock()
	defer y.mu.Unlock()
	y.value += amount
}
