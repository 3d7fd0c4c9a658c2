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

func TestAddExposureStrategyValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		add     func(b *Bundle) error
		wantErr error
	}{
		{
			name: "nil strategy",
			add: func(b *Bundle) error {
				return b.AddExposureStrategy(nil, 5000, 0, false)
			},
			wantErr: strategy.ErrProbeFailed,
		},
		{
			name: "unreadable strategy",
			add: func(b *Bundle) error {
				s := newExposure("down", 50, 10)
				s.FailInfo = true
				return b.AddExposureStrategy(s, 5000, 0, false)
			},
			wantErr: strategy.ErrProbeFailed,
		},
		{
			name: "primary below minimum weight",
			add: func(b *Bundle) error {
				return b.AddExposureStrategy(newExposure("p", 50, 10), 500, 0, true)
			},
			wantErr: ErrTargetOutOfBounds,
		},
		{
			name: "target above max",
			add: func(b *Bundle) error {
				return b.AddExposureStrategy(newExposure("s", 50, 10), 6000, 5000, false)
			},
			wantErr: ErrTargetOutOfBounds,
		},
		{
			name: "target above 10000",
			add: func(b *Bundle) error {
				return b.AddExposureStrategy(newExposure("s", 50, 10), 10001, 0, false)
			},
			wantErr: ErrTargetOutOfBounds,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := newTestBundle(t)
			assert.ErrorIs(t, tt.add(b), tt.wantErr)
			assert.Empty(t, b.Exposures())
		})
	}
}

func TestAddExposureStrategyCap(t *testing.T) {
	t.Parallel()

	params := risk.Default()
	params.MaxStrategyCount = 1

	b, err := New(nil, nil, Options{Params: params})
	require.NoError(t, err)

	require.NoError(t, b.AddExposureStrategy(newExposure("first", 50, 10), 5000, 0, false))
	err = b.AddExposureStrategy(newExposure("second", 50, 10), 2000, 0, false)
	assert.ErrorIs(t, err, ErrTooManyStrategies)
}

func TestAddExposureStrategyDuplicate(t *testing.T) {
	t.Parallel()

	b := newTestBundle(t)

	require.NoError(t, b.AddExposureStrategy(newExposure("dup", 50, 10), 3000, 0, false))
	err := b.AddExposureStrategy(newExposure("dup", 80, 20), 2000, 0, false)
	assert.ErrorIs(t, err, ErrDuplicateStrategy)
}

func TestAddExposureStrategyOverCommit(t *testing.T) {
	t.Parallel()

	b := newTestBundle(t)

	require.NoError(t, b.AddExposureStrategy(newExposure("a", 50, 10), 6000, 0, false))
	err := b.AddExposureStrategy(newExposure("b", 50, 10), 5000, 0, false)
	assert.ErrorIs(t, err, ErrTargetOverCommitted)
}

func TestRemoveExposureStrategy(t *testing.T) {
	t.Parallel()

	b := newTestBundle(t)

	s1 := newExposure("s1", 50, 10)
	s2 := newExposure("s2", 80, 20)
	s3 := newExposure("s3", 90, 30)
	require.NoError(t, b.AddExposureStrategy(s1, 4000, 0, true))
	require.NoError(t, b.AddExposureStrategy(s2, 3000, 0, false))
	require.NoError(t, b.AddExposureStrategy(s3, 3000, 0, false))

	_, err := b.AllocateCapital(context.Background(), 1000)
	require.NoError(t, err)

	recovered, err := b.RemoveExposureStrategy(context.Background(), "s2")
	require.NoError(t, err)
	assert.InDelta(t, 150, recovered, 0.001) // 500 * 3000/10000
	assert.Zero(t, s2.Collateral())

	// Swap-and-pop: the last entry takes the vacated slot.
	exps := b.Exposures()
	require.Len(t, exps, 2)
	assert.Equal(t, "s1", exps[0].Strategy.Name())
	assert.Equal(t, "s3", exps[1].Strategy.Name())
}

func TestRemoveExposureStrategyUnknown(t *testing.T) {
	t.Parallel()

	b := newTestBundle(t)
	_, err := b.RemoveExposureStrategy(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestRemoveExposureStrategySurvivesExitFailure(t *testing.T) {
	t.Parallel()

	b := newTestBundle(t)

	s := newExposure("stuck", 50, 10)
	require.NoError(t, b.AddExposureStrategy(s, 10000, 0, true))

	_, err := b.AllocateCapital(context.Background(), 1000)
	require.NoError(t, err)

	s.FailExit = true
	recovered, err := b.RemoveExposureStrategy(context.Background(), "stuck")
	require.NoError(t, err, "a stuck exit must not block removal")
	assert.Zero(t, recovered)
	assert.Empty(t, b.Exposures())
}

func TestUpdateYieldBundleValidation(t *testing.T) {
	t.Parallel()

	ok := sim.NewYield(sim.YieldConfig{Name: "ok"})

	tests := []struct {
		name       string
		strategies []strategy.YieldStrategy
		fractions  []int
	}{
		{"length mismatch", []strategy.YieldStrategy{ok}, []int{5000, 5000}},
		{"sum under 10000", []strategy.YieldStrategy{ok}, []int{9000}},
		{"sum over 10000", []strategy.YieldStrategy{ok}, []int{10001}},
		{"negative fraction", []strategy.YieldStrategy{ok, ok}, []int{11000, -1000}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := newTestBundle(t)
			err := b.UpdateYieldBundle(tt.strategies, tt.fractions)
			assert.ErrorIs(t, err, ErrBadFractionSum)
		})
	}
}

func TestUpdateYieldBundleProbesCandidates(t *testing.T) {
	t.Parallel()

	b := newTestBundle(t)

	broken := sim.NewYield(sim.YieldConfig{Name: "broken"})
	broken.FailValue = true

	err := b.UpdateYieldBundle([]strategy.YieldStrategy{broken}, []int{10000})
	assert.ErrorIs(t, err, strategy.ErrProbeFailed)
}

func TestUpdateYieldBundleCarriesCapital(t *testing.T) {
	t.Parallel()

	b, _, _, _ := fundedBundle(t)
	require.InDelta(t, 500, b.Yield().TotalCapital, 0.001)

	// Swapping the composition keeps the aggregate bucket value.
	a := sim.NewYield(sim.YieldConfig{Name: "a"})
	c := sim.NewYield(sim.YieldConfig{Name: "c"})
	require.NoError(t, b.UpdateYieldBundle([]strategy.YieldStrategy{a, c}, []int{6000, 4000}))

	y := b.Yield()
	assert.InDelta(t, 500, y.TotalCapital, 0.001)
	assert.Equal(t, []int{6000, 4000}, y.FractionsBps)
	require.Len(t, y.Strategies, 2)
}

func TestUpdateYieldBundleEmptyDeactivates(t *testing.T) {
	t.Parallel()

	b, _, _, _ := fundedBundle(t)

	require.NoError(t, b.UpdateYieldBundle(nil, nil))
	assert.False(t, b.Yield().Active)
}
