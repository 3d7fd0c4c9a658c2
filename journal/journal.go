package journal

import "time"

// FlowRecord captures one capital movement through the bundle.
type FlowRecord struct {
	FlowID    string
	Time      time.Time
	Kind      string // "allocate", "withdraw", "harvest", "emergency"
	Requested float64
	Realized  float64
	Exposure  float64 // portion placed into / pulled from exposure strategies
	Yield     float64 // portion placed into / pulled from yield strategies
}

// OptimizationRecord captures one optimizer pass.
type OptimizationRecord struct {
	RunID      string
	Time       time.Time
	Strategies int
	SavingBps  int
	Gas        uint64
	Elapsed    time.Duration
	Rebalance  bool
	Confidence int
}

// EventRecord captures everything else worth an audit trail: strategy
// registry changes, rebalances, breaker trips, risk parameter updates.
type EventRecord struct {
	EventID string
	Time    time.Time
	Kind    string
	Detail  string
}

type Journal interface {
	RecordFlow(FlowRecord) error
	RecordOptimization(OptimizationRecord) error
	RecordEvent(EventRecord) error
	Close() error
}

// Nop discards everything. Useful for tests and for running without an audit
// trail.
type Nop struct{}

func (Nop) RecordFlow(FlowRecord) error                 { return nil }
func (Nop) RecordOptimization(OptimizationRecord) error { return nil }
func (Nop) RecordEvent(EventRecord) error               { return nil }
func (Nop) Close() error                                { return nil }
