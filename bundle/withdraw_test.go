package bundle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/allocator/risk"
	"github.com/rustyeddy/allocator/sim"
	"github.com/rustyeddy/allocator/strategy"
)

// fundedBundle builds the standard two-strategy book: 6000/4000 exposure
// targets plus one yield vault, funded with a 1000 deposit. Deployed state:
// 300 + 200 exposure, 500 yield.
func fundedBundle(t *testing.T) (*Bundle, *sim.Exposure, *sim.Exposure, *sim.Yield) {
	t.Helper()

	b := newTestBundle(t)

	s1 := newExposure("s1", 50, 10)
	s2 := newExposure("s2", 80, 20)
	require.NoError(t, b.AddExposureStrategy(s1, 6000, 0, true))
	require.NoError(t, b.AddExposureStrategy(s2, 4000, 0, false))

	y := sim.NewYield(sim.YieldConfig{Name: "vault"})
	require.NoError(t, b.UpdateYieldBundle([]strategy.YieldStrategy{y}, []int{10000}))

	_, err := b.AllocateCapital(context.Background(), 1000)
	require.NoError(t, err)

	return b, s1, s2, y
}

func TestWithdrawPreconditions(t *testing.T) {
	t.Parallel()

	b, _, _, _ := fundedBundle(t)

	_, err := b.WithdrawCapital(context.Background(), 0)
	assert.ErrorIs(t, err, ErrAmountTooLow)

	_, err = b.WithdrawCapital(context.Background(), 2000)
	assert.ErrorIs(t, err, ErrInsufficientCapital)

	b.TripBreaker()
	_, err = b.WithdrawCapital(context.Background(), 100)
	assert.ErrorIs(t, err, risk.ErrBreakerTripped)
}

func TestWithdrawProportional(t *testing.T) {
	t.Parallel()

	b, s1, s2, _ := fundedBundle(t)

	// 250 of a 1000 live book is a 25% haircut everywhere.
	realized, err := b.WithdrawCapital(context.Background(), 250)
	require.NoError(t, err)
	assert.InDelta(t, 250, realized, 0.001)

	assert.InDelta(t, 225, s1.Collateral(), 0.001)
	assert.InDelta(t, 150, s2.Collateral(), 0.001)
	assert.InDelta(t, 375, b.Yield().TotalCapital, 0.001)
	assert.InDelta(t, 750, b.TotalAllocatedCapital(), 0.001)
}

func TestWithdrawFullRoundTrip(t *testing.T) {
	t.Parallel()

	b, s1, s2, _ := fundedBundle(t)

	realized, err := b.WithdrawCapital(context.Background(), 1000)
	require.NoError(t, err)
	assert.InDelta(t, 1000, realized, 0.001)

	assert.Zero(t, s1.Collateral())
	assert.Zero(t, s2.Collateral())
	assert.InDelta(t, 0, b.Yield().TotalCapital, 0.001)
	assert.InDelta(t, 0, b.TotalAllocatedCapital(), 0.001)
}

func TestWithdrawContainsFailures(t *testing.T) {
	t.Parallel()

	b, s1, s2, _ := fundedBundle(t)
	s2.FailClose = true

	realized, err := b.WithdrawCapital(context.Background(), 250)
	require.NoError(t, err)

	// s2's 50 leg is skipped; custody only shrinks by what came back.
	assert.InDelta(t, 200, realized, 0.001)
	assert.InDelta(t, 225, s1.Collateral(), 0.001)
	assert.InDelta(t, 200, s2.Collateral(), 0.001)
	assert.InDelta(t, 800, b.TotalAllocatedCapital(), 0.001)
}

func TestWithdrawThenAllocateRoundTrip(t *testing.T) {
	t.Parallel()

	b, s1, s2, y := fundedBundle(t)

	liveValue := func() float64 {
		v, err := y.TotalValue()
		require.NoError(t, err)
		return s1.Collateral() + s2.Collateral() + v
	}

	before := liveValue()

	realized, err := b.WithdrawCapital(context.Background(), 400)
	require.NoError(t, err)
	require.InDelta(t, 400, realized, 0.001)

	_, err = b.AllocateCapital(context.Background(), 400)
	require.NoError(t, err)

	// No price movement and zero slippage in the sim, so putting the same
	// amount back restores the bundle's live value.
	assert.InDelta(t, before, liveValue(), 0.001)
	assert.InDelta(t, 1000, b.TotalAllocatedCapital(), 0.001)
}

func TestWithdrawRedeemsShares(t *testing.T) {
	t.Parallel()

	b := newTestBundle(t)

	s := newExposure("s", 50, 10)
	require.NoError(t, b.AddExposureStrategy(s, 10000, 0, true))

	// Two units of capital per share: deposited capital mints half as many
	// shares, and redemptions must be denominated in shares.
	y := sim.NewYield(sim.YieldConfig{Name: "vault", SharePrice: 2})
	require.NoError(t, b.UpdateYieldBundle([]strategy.YieldStrategy{y}, []int{10000}))

	_, err := b.AllocateCapital(context.Background(), 1000)
	require.NoError(t, err)

	snap := b.Yield()
	require.Len(t, snap.SharesHeld, 1)
	assert.InDelta(t, 250, snap.SharesHeld[0], 0.001)
	assert.InDelta(t, 500, snap.TotalCapital, 0.001)

	// A 25% haircut pulls exactly 250 of capital, not double-counted
	// through the share price.
	realized, err := b.WithdrawCapital(context.Background(), 250)
	require.NoError(t, err)
	assert.InDelta(t, 250, realized, 0.001)

	value, err := y.TotalValue()
	require.NoError(t, err)
	assert.InDelta(t, 375, value, 0.001)
	assert.InDelta(t, 187.5, b.Yield().SharesHeld[0], 0.001)
}

func TestWithdrawNothingDeployed(t *testing.T) {
	t.Parallel()

	b := newTestBundle(t)

	s := newExposure("s", 50, 10)
	s.FailOpen = true
	require.NoError(t, b.AddExposureStrategy(s, 10000, 0, true))

	_, err := b.AllocateCapital(context.Background(), 1000)
	require.NoError(t, err)

	realized, err := b.WithdrawCapital(context.Background(), 100)
	require.NoError(t, err)
	assert.Zero(t, realized)
}
