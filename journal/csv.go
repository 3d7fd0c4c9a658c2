package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	flows  *csv.Writer
	events *csv.Writer
	ff, ef *os.File
}

func NewCSV(flowsPath, eventsPath string) (*CSVJournal, error) {
	ff, err := os.Create(flowsPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(eventsPath)
	if err != nil {
		return nil, err
	}

	fw := csv.NewWriter(ff)
	ew := csv.NewWriter(ef)

	if err := fw.Write([]string{"flow_id", "time", "kind", "requested", "realized", "exposure", "yield"}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"event_id", "time", "kind", "detail"}); err != nil {
		return nil, err
	}

	fw.Flush()
	if err := fw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{fw, ew, ff, ef}, nil
}

func (j *CSVJournal) RecordFlow(rec FlowRecord) error {
	err := j.flows.Write([]string{
		rec.FlowID,
		rec.Time.Format(time.RFC3339),
		rec.Kind,
		f(rec.Requested),
		f(rec.Realized),
		f(rec.Exposure),
		f(rec.Yield),
	})
	if err != nil {
		return err
	}
	j.flows.Flush()
	return j.flows.Error()
}

// RecordOptimization lands in the events file; optimization runs are sparse
// enough that a separate CSV is not worth the third file handle.
func (j *CSVJournal) RecordOptimization(rec OptimizationRecord) error {
	detail := "saving_bps=" + strconv.Itoa(rec.SavingBps) +
		" gas=" + strconv.FormatUint(rec.Gas, 10) +
		" rebalance=" + strconv.FormatBool(rec.Rebalance) +
		" confidence=" + strconv.Itoa(rec.Confidence)
	return j.RecordEvent(EventRecord{
		EventID: rec.RunID,
		Time:    rec.Time,
		Kind:    "optimization",
		Detail:  detail,
	})
}

func (j *CSVJournal) RecordEvent(rec EventRecord) error {
	err := j.events.Write([]string{
		rec.EventID,
		rec.Time.Format(time.RFC3339),
		rec.Kind,
		rec.Detail,
	})
	if err != nil {
		return err
	}
	j.events.Flush()
	return j.events.Error()
}

func (j *CSVJournal) Close() error {
	j.flows.Flush()
	if err := j.flows.Error(); err != nil {
		return err
	}
	j.events.Flush()
	if err := j.events.Error(); err != nil {
		return err
	}

	if err := j.ff.Close(); err != nil {
		return err
	}
	if err := j.ef.Close(); err != nil {
		return err
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
