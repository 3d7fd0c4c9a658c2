package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordFlow(f FlowRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO flows
		(flow_id, time, kind, requested, realized, exposure, yield)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.FlowID, f.Time, f.Kind, f.Requested, f.Realized, f.Exposure, f.Yield,
	)
	return err
}

func (j *SQLite) RecordOptimization(o OptimizationRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO optimizations
		(run_id, time, strategies, saving_bps, gas, elapsed_ns, rebalance, confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.RunID, o.Time, o.Strategies, o.SavingBps, o.Gas,
		o.Elapsed.Nanoseconds(), o.Rebalance, o.Confidence,
	)
	return err
}

func (j *SQLite) RecordEvent(e EventRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO events
		(event_id, time, kind, detail)
		VALUES (?, ?, ?, ?)`,
		e.EventID, e.Time, e.Kind, e.Detail,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
