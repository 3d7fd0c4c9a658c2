package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/allocator/bundle"
	"github.com/rustyeddy/allocator/journal"
	"github.com/rustyeddy/allocator/optimizer"
	"github.com/rustyeddy/allocator/sim"
	"github.com/rustyeddy/allocator/strategy"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a full allocation cycle against simulated strategies",
	Long: `Demo builds a bundle with three simulated exposure strategies and two
yield strategies, then runs the full cycle: allocate, optimize, rebalance,
harvest, withdraw. Every step is journaled.

Example:
  allocator demo --deposit 100000 --db ./demo.sqlite`,
	RunE: runDemo,
}

var (
	demoDeposit  float64
	demoWithdraw float64
	demoDBPath   string
)

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().Float64VarP(&demoDeposit, "deposit", "d", 100_000, "capital to allocate")
	demoCmd.Flags().Float64VarP(&demoWithdraw, "withdraw", "w", 25_000, "capital to withdraw at the end")
	demoCmd.Flags().StringVar(&demoDBPath, "db", "./demo.sqlite", "path to SQLite journal DB")
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	jnl, err := journal.NewSQLite(demoDBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jnl.Close()

	feed := sim.NewFeed(map[string]float64{"BTC": 60_000})

	perp := sim.NewExposure(sim.ExposureConfig{
		Name: "perp-btc", Type: strategy.ExposurePerpetual, Underlying: "BTC",
		Leverage: 200, CostBps: 180, RiskScore: 55, MaxCapacity: 500_000,
	}, feed)
	swap := sim.NewExposure(sim.ExposureConfig{
		Name: "swap-btc", Type: strategy.ExposureSwap, Underlying: "BTC",
		Leverage: 100, CostBps: 90, RiskScore: 30, MaxCapacity: 1_000_000,
	}, feed)
	spot := sim.NewExposure(sim.ExposureConfig{
		Name: "spot-btc", Type: strategy.ExposureSpot, Underlying: "BTC",
		Leverage: 100, CostBps: 40, RiskScore: 10, MaxCapacity: 2_000_000,
	}, feed)

	opt := optimizer.New(feed, cfg.Optimizer)

	optInterval, _ := cfg.Bundle.ParseOptimizationInterval()
	rebInterval, _ := cfg.Bundle.ParseRebalanceInterval()

	b, err := bundle.New(opt, jnl, bundle.Options{
		Params:               cfg.Risk.Parameters(),
		OptimizationInterval: optInterval,
		RebalanceInterval:    rebInterval,
	})
	if err != nil {
		return fmt.Errorf("bundle: %w", err)
	}

	if err := b.AddExposureStrategy(spot, 4000, 6000, true); err != nil {
		return fmt.Errorf("add strategy: %w", err)
	}
	if err := b.AddExposureStrategy(swap, 3500, 5000, false); err != nil {
		return fmt.Errorf("add strategy: %w", err)
	}
	if err := b.AddExposureStrategy(perp, 2500, 4000, false); err != nil {
		return fmt.Errorf("add strategy: %w", err)
	}

	stable := sim.NewYield(sim.YieldConfig{Name: "stable-lending", PendingYield: 120})
	lp := sim.NewYield(sim.YieldConfig{Name: "lp-vault", PendingYield: 80})
	if err := b.UpdateYieldBundle([]strategy.YieldStrategy{stable, lp}, []int{7000, 3000}); err != nil {
		return fmt.Errorf("yield bundle: %w", err)
	}

	ctx := context.Background()
	started := time.Now()

	split, err := b.AllocateCapital(ctx, demoDeposit)
	if err != nil {
		return fmt.Errorf("allocate: %w", err)
	}
	fmt.Printf("Allocated %.2f: exposure=%.2f yield=%.2f idle=%.2f\n",
		split.Requested, split.Exposure, split.Yield,
		split.Requested-split.Exposure-split.Yield)

	res, err := b.TriggerOptimization(ctx)
	if err != nil {
		return fmt.Errorf("optimize: %w", err)
	}
	fmt.Printf("Optimization: saving=%dbps gas=%d rebalance=%v confidence=%d\n",
		res.ExpectedSavingBps, res.ImplementationGas, res.ShouldRebalance, res.Confidence)
	for _, sc := range res.Scores {
		fmt.Printf("  %-10s composite=%-5d recommended=%-5v %s\n",
			sc.Strategy, sc.Composite, sc.Recommended, sc.Reason)
	}

	if moved, err := b.RebalanceStrategies(); err == nil && moved {
		fmt.Println("Rebalance bookkeeping updated")
	}

	harvested, err := b.HarvestYield(ctx)
	if err != nil {
		return fmt.Errorf("harvest: %w", err)
	}
	fmt.Printf("Harvested %.2f\n", harvested)

	realized, err := b.WithdrawCapital(ctx, demoWithdraw)
	if err != nil {
		return fmt.Errorf("withdraw: %w", err)
	}
	fmt.Printf("Withdrew %.2f (requested %.2f)\n", realized, demoWithdraw)

	fmt.Printf("\nCustody: %.2f  Elapsed: %s  Journal: %s\n",
		b.TotalAllocatedCapital(), time.Since(started).Round(time.Millisecond), demoDBPath)
	return nil
}
