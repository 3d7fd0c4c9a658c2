package strategy

import "context"

// ExposureType identifies the mechanism a strategy uses to gain synthetic
// price exposure to its underlying asset.
type ExposureType string

const (
	// ExposurePerpetual holds a leveraged derivative position.
	ExposurePerpetual ExposureType = "perpetual"
	// ExposureSwap holds a total-return swap agreement.
	ExposureSwap ExposureType = "swap"
	// ExposureSpot holds the underlying token directly.
	ExposureSpot ExposureType = "spot"
)

// ExposureInfo is a strategy's self-reported snapshot. Every field comes from
// the strategy itself; callers must treat it as a claim, not a fact.
type ExposureInfo struct {
	Type       ExposureType
	Underlying string // e.g. "BTC"

	Leverage        int // x100: 100 = 1x
	CollateralRatio int // parts-per-10000 of exposure backed by collateral

	CurrentExposure float64 // notional, account currency
	MaxCapacity     float64 // notional the strategy can absorb in total

	CurrentCostBps int // all-in running cost, parts-per-10000
	RiskScore      int // 0 (safest) .. 100 (riskiest)

	Active           bool
	LiquidationPrice float64 // 0 when the mechanism cannot be liquidated
}

// CostBreakdown itemizes a strategy's running cost. All fields are
// parts-per-10000 per year except where the mechanism makes that meaningless.
type CostBreakdown struct {
	FundingRateBps   int
	BorrowRateBps    int
	ManagementFeeBps int
	SlippageCostBps  int
	GasCostBps       int
	TotalCostBps     int
}

// ExposureStrategy is the capability set an exposure mechanism must provide.
// Implementations are interchangeable; the allocator never inspects the
// concrete type behind the interface.
type ExposureStrategy interface {
	Name() string

	ExposureInfo() (ExposureInfo, error)
	CostBreakdown() (CostBreakdown, error)

	// OpenExposure deploys amount of capital and returns the notional
	// exposure actually gained.
	OpenExposure(ctx context.Context, amount float64) (float64, error)

	// CloseExposure unwinds amount of deployed capital and returns the
	// capital actually freed.
	CloseExposure(ctx context.Context, amount float64) (float64, error)

	// HarvestYield collects any yield the position has accrued.
	HarvestYield(ctx context.Context) (float64, error)

	// EmergencyExit unwinds everything as fast as the mechanism allows and
	// returns whatever capital was recovered.
	EmergencyExit(ctx context.Context) (float64, error)
}

// YieldStrategy is the capability set a yield mechanism must provide for
// capital parked outside the exposure bucket.
type YieldStrategy interface {
	Name() string

	Deposit(ctx context.Context, amount float64) (shares float64, err error)
	Withdraw(ctx context.Context, shares float64) (amount float64, err error)
	TotalValue() (float64, error)
	HarvestYield(ctx context.Context) (float64, error)
}

// PriceFeed supplies spot prices for underlyings. Strategies consume it
// internally; the allocator itself never prices assets.
type PriceFeed interface {
	Price(underlying string) (float64, error)
}
