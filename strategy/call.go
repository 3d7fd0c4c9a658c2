package strategy

import (
	"context"
	"fmt"
	"math"
)

// CallResult is the outcome of a guarded collaborator call. A failed call
// carries Err and contributes zero; callers never see a panic or a malformed
// amount from a misbehaving strategy.
type CallResult struct {
	OK     bool
	Amount float64
	Err    error
}

// guarded runs f, converting panics and malformed amounts into a failed
// CallResult. One broken strategy must never take down an aggregate
// operation, so nothing is allowed to escape this wrapper.
func guarded(f func() (float64, error)) (res CallResult) {
	defer func() {
		if r := recover(); r != nil {
			res = CallResult{Err: fmt.Errorf("strategy panicked: %v", r)}
		}
	}()

	amount, err := f()
	if err != nil {
		return CallResult{Err: err}
	}
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return CallResult{Err: fmt.Errorf("strategy returned malformed amount %v", amount)}
	}
	return CallResult{OK: true, Amount: amount}
}

// TryOpen opens exposure on s, contained.
func TryOpen(ctx context.Context, s ExposureStrategy, amount float64) CallResult {
	return guarded(func() (float64, error) { return s.OpenExposure(ctx, amount) })
}

// TryClose closes exposure on s, contained.
func TryClose(ctx context.Context, s ExposureStrategy, amount float64) CallResult {
	return guarded(func() (float64, error) { return s.CloseExposure(ctx, amount) })
}

// TryHarvest harvests accrued yield from s, contained.
func TryHarvest(ctx context.Context, s ExposureStrategy) CallResult {
	return guarded(func() (float64, error) { return s.HarvestYield(ctx) })
}

// TryExit runs an emergency exit on s, contained.
func TryExit(ctx context.Context, s ExposureStrategy) CallResult {
	return guarded(func() (float64, error) { return s.EmergencyExit(ctx) })
}

// TryDeposit deposits into y, contained. Amount holds the shares minted.
func TryDeposit(ctx context.Context, y YieldStrategy, amount float64) CallResult {
	return guarded(func() (float64, error) { return y.Deposit(ctx, amount) })
}

// TryWithdraw redeems shares from y, contained.
func TryWithdraw(ctx context.Context, y YieldStrategy, shares float64) CallResult {
	return guarded(func() (float64, error) { return y.Withdraw(ctx, shares) })
}

// TryYieldHarvest harvests from y, contained.
func TryYieldHarvest(ctx context.Context, y YieldStrategy) CallResult {
	return guarded(func() (float64, error) { return y.HarvestYield(ctx) })
}

// TryTotalValue reads y's value, contained.
func TryTotalValue(y YieldStrategy) CallResult {
	return guarded(func() (float64, error) { return y.TotalValue() })
}

// TryInfo reads s's exposure snapshot, contained.
func TryInfo(s ExposureStrategy) (info ExposureInfo, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			info, ok = ExposureInfo{}, false
		}
	}()

	info, err := s.ExposureInfo()
	if err != nil {
		return ExposureInfo{}, false
	}
	return info, true
}

// TryCosts reads s's cost breakdown, contained.
func TryCosts(s ExposureStrategy) (costs CostBreakdown, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			costs, ok = CostBreakdown{}, false
		}
	}()

	costs, err := s.CostBreakdown()
	if err != nil {
		return CostBreakdown{}, false
	}
	return costs, true
}
