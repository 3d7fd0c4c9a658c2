package optimizer

import "time"

// HistoryCapacity bounds each per-strategy ledger. When full, the oldest
// entry is overwritten.
const HistoryCapacity = 100

// Sample is one recorded execution outcome for a strategy.
type Sample struct {
	Return  float64 // realized return for the period, fractional
	CostBps int     // observed all-in cost
	Elapsed time.Duration
	Success bool
	At      time.Time
}

// history holds a strategy's bounded ledgers: execution samples and risk
// assessments, each a fixed-capacity ring. next points at the slot the next
// entry lands in, so chronological order starts at next once the ring wraps.
type history struct {
	buf  [HistoryCapacity]Sample
	next int
	size int

	riskBuf  [HistoryCapacity]int
	riskNext int
	riskSize int
}

func (h *history) add(s Sample) {
	h.buf[h.next] = s
	h.next = (h.next + 1) % HistoryCapacity
	if h.size < HistoryCapacity {
		h.size++
	}
}

func (h *history) addRisk(score int) {
	h.riskBuf[h.riskNext] = score
	h.riskNext = (h.riskNext + 1) % HistoryCapacity
	if h.riskSize < HistoryCapacity {
		h.riskSize++
	}
}

// samples returns the execution ledger oldest-first.
func (h *history) samples() []Sample {
	out := make([]Sample, 0, h.size)
	start := 0
	if h.size == HistoryCapacity {
		start = h.next
	}
	for i := 0; i < h.size; i++ {
		out = append(out, h.buf[(start+i)%HistoryCapacity])
	}
	return out
}

// successRate returns the 0..100 success percentage, or ok=false when the
// ledger is empty.
func (h *history) successRate() (rate int, ok bool) {
	if h.size == 0 {
		return 0, false
	}
	succeeded := 0
	for _, s := range h.samples() {
		if s.Success {
			succeeded++
		}
	}
	return succeeded * 100 / h.size, true
}

// latestRisk returns the most recent assessed risk score, or ok=false when
// none has been recorded.
func (h *history) latestRisk() (score int, ok bool) {
	if h.riskSize == 0 {
		return 0, false
	}
	last := (h.riskNext - 1 + HistoryCapacity) % HistoryCapacity
	return h.riskBuf[last], true
}
