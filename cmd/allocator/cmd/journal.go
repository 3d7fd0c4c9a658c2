package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/allocator/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect a journal database",
	Long: `Journal prints recent capital flows, optimization runs, and admin events
from a SQLite journal.

Example:
  allocator journal --db ./demo.sqlite --since 24h`,
	RunE: runJournal,
}

var (
	jnDBPath string
	jnSince  time.Duration
	jnLimit  int
)

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().StringVar(&jnDBPath, "db", "./allocator.sqlite", "path to SQLite journal DB")
	journalCmd.Flags().DurationVar(&jnSince, "since", 24*time.Hour, "how far back to look")
	journalCmd.Flags().IntVar(&jnLimit, "limit", 20, "max optimization runs to show")
}

func runJournal(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(jnDBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	end := time.Now().Add(time.Minute)
	start := end.Add(-jnSince)

	flows, err := j.ListFlowsBetween(start, end)
	if err != nil {
		return fmt.Errorf("list flows: %w", err)
	}
	fmt.Printf("Flows (%d):\n", len(flows))
	for _, f := range flows {
		fmt.Printf("  %s  %-10s requested=%-12.2f realized=%-12.2f exposure=%-12.2f yield=%.2f\n",
			f.Time.Format(time.RFC3339), f.Kind, f.Requested, f.Realized, f.Exposure, f.Yield)
	}

	runs, err := j.ListOptimizations(jnLimit)
	if err != nil {
		return fmt.Errorf("list optimizations: %w", err)
	}
	fmt.Printf("\nOptimization runs (%d):\n", len(runs))
	for _, r := range runs {
		fmt.Printf("  %s  strategies=%-3d saving=%-5dbps gas=%-8d rebalance=%-5v confidence=%d\n",
			r.Time.Format(time.RFC3339), r.Strategies, r.SavingBps, r.Gas, r.Rebalance, r.Confidence)
	}

	events, err := j.ListEventsBetween(start, end)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	fmt.Printf("\nEvents (%d):\n", len(events))
	for _, e := range events {
		fmt.Printf("  %s  %-24s %s\n", e.Time.Format(time.RFC3339), e.Kind, e.Detail)
	}

	return nil
}
