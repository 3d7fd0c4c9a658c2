package optimizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/allocator/sim"
	"github.com/rustyeddy/allocator/strategy"
)

func TestScorePerfectStrategy(t *testing.T) {
	t.Parallel()

	o := New(nil, DefaultConfig())

	s := sim.NewExposure(sim.ExposureConfig{
		Name: "ideal", Type: strategy.ExposureSpot, Underlying: "BTC",
		CostBps: 0, RiskScore: 0, MaxCapacity: 1_000_000,
	}, nil)

	// A flawless execution record pushes reliability to 100.
	for i := 0; i < 10; i++ {
		o.RecordPerformance("ideal", 0.01, 0, time.Millisecond, true)
	}

	scores := o.AnalyzeStrategies([]strategy.ExposureStrategy{s}, 100_000, 0)
	require.Len(t, scores, 1)

	sc := scores[0]
	assert.Equal(t, 10000, sc.Composite)
	assert.True(t, sc.Recommended)
	assert.Equal(t, 0, sc.CostBps)
	assert.Equal(t, 0, sc.Risk)
	assert.Equal(t, 100, sc.Liquidity)
	assert.Equal(t, 100, sc.Reliability)
	assert.Equal(t, 100, sc.Capacity)
}

func TestScoreDefaultsReliabilityWithoutHistory(t *testing.T) {
	t.Parallel()

	o := New(nil, DefaultConfig())
	s := sim.NewExposure(sim.ExposureConfig{
		Name: "fresh", CostBps: 0, RiskScore: 0, MaxCapacity: 1_000_000,
	}, nil)

	scores := o.AnalyzeStrategies([]strategy.ExposureStrategy{s}, 100_000, 0)
	require.Len(t, scores, 1)
	assert.Equal(t, defaultReliability, scores[0].Reliability)
}

func TestScoreUnresponsiveStrategy(t *testing.T) {
	t.Parallel()

	o := New(nil, DefaultConfig())

	s := sim.NewExposure(sim.ExposureConfig{Name: "down", MaxCapacity: 1000}, nil)
	s.FailInfo = true

	scores := o.AnalyzeStrategies([]strategy.ExposureStrategy{s}, 1000, 0)
	require.Len(t, scores, 1)

	sc := scores[0]
	assert.False(t, sc.Recommended)
	assert.Equal(t, 10000, sc.CostBps)
	assert.Equal(t, 100, sc.Risk)
	assert.Zero(t, sc.Composite)
}

func TestScoreUnreadableCostsNotRecommended(t *testing.T) {
	t.Parallel()

	o := New(nil, DefaultConfig())

	s := sim.NewExposure(sim.ExposureConfig{Name: "half-down", MaxCapacity: 1000}, nil)
	s.FailCosts = true

	scores := o.AnalyzeStrategies([]strategy.ExposureStrategy{s}, 1000, 0)
	require.Len(t, scores, 1)
	assert.False(t, scores[0].Recommended)
}

func TestScoreInactiveStrategyNotRecommended(t *testing.T) {
	t.Parallel()

	o := New(nil, DefaultConfig())

	s := sim.NewExposure(sim.ExposureConfig{
		Name: "paused", CostBps: 0, RiskScore: 0, MaxCapacity: 1_000_000,
	}, nil)
	s.SetActive(false)

	scores := o.AnalyzeStrategies([]strategy.ExposureStrategy{s}, 100, 0)
	require.Len(t, scores, 1)
	assert.False(t, scores[0].Recommended)
	assert.Equal(t, "strategy inactive", scores[0].Reason)
}

func TestScoreBrokenStrategyNeverAbortsBatch(t *testing.T) {
	t.Parallel()

	o := New(nil, DefaultConfig())

	good := sim.NewExposure(sim.ExposureConfig{
		Name: "good", CostBps: 50, RiskScore: 10, MaxCapacity: 1_000_000,
	}, nil)
	bad := sim.NewExposure(sim.ExposureConfig{Name: "bad"}, nil)
	bad.FailInfo = true

	scores := o.AnalyzeStrategies([]strategy.ExposureStrategy{bad, good}, 1000, 0)
	require.Len(t, scores, 2)
	assert.False(t, scores[0].Recommended)
	assert.True(t, scores[1].Recommended)
}

func TestStepScoreBreakpoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		available float64
		target    float64
		want      int
	}{
		{"double target", 2000, 1000, 100},
		{"just under double", 1999, 1000, 75},
		{"exactly target", 1000, 1000, 75},
		{"half target", 500, 1000, 50},
		{"quarter target", 250, 1000, 25},
		{"below quarter", 249, 1000, 0},
		{"nothing available", 0, 1000, 0},
		{"zero target", 0, 0, 100},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, stepScore(tt.available, tt.target))
		})
	}
}

func TestEffectiveCostScalesFundingToHorizon(t *testing.T) {
	t.Parallel()

	costs := strategy.CostBreakdown{
		FundingRateBps:   365,
		ManagementFeeBps: 100,
		TotalCostBps:     465,
	}

	// A one-day horizon carries one day of annualized funding.
	got := effectiveCostBps(costs, 24*time.Hour)
	assert.Equal(t, 101, got)

	// No horizon means the full annualized figure.
	assert.Equal(t, 465, effectiveCostBps(costs, 0))

	// A horizon at or past a year pays everything.
	assert.Equal(t, 465, effectiveCostBps(costs, 2*365*24*time.Hour))
}
