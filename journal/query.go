package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetFlow returns a single flow record by ID.
func (j *SQLite) GetFlow(flowID string) (FlowRecord, error) {
	var rec FlowRecord

	row := j.db.QueryRow(`
		SELECT flow_id, time, kind, requested, realized, exposure, yield
		FROM flows
		WHERE flow_id = ?`, flowID)

	err := row.Scan(
		&rec.FlowID,
		&rec.Time,
		&rec.Kind,
		&rec.Requested,
		&rec.Realized,
		&rec.Exposure,
		&rec.Yield,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return FlowRecord{}, fmt.Errorf("flow %q not found", flowID)
		}
		return FlowRecord{}, err
	}
	return rec, nil
}

// ListFlowsBetween returns flows whose time is within [start, end).
func (j *SQLite) ListFlowsBetween(start, end time.Time) ([]FlowRecord, error) {
	rows, err := j.db.Query(`
		SELECT flow_id, time, kind, requested, realized, exposure, yield
		FROM flows
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FlowRecord
	for rows.Next() {
		var rec FlowRecord
		if err := rows.Scan(
			&rec.FlowID,
			&rec.Time,
			&rec.Kind,
			&rec.Requested,
			&rec.Realized,
			&rec.Exposure,
			&rec.Yield,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEventsBetween returns events whose time is within [start, end).
func (j *SQLite) ListEventsBetween(start, end time.Time) ([]EventRecord, error) {
	rows, err := j.db.Query(`
		SELECT event_id, time, kind, detail
		FROM events
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var rec EventRecord
		if err := rows.Scan(&rec.EventID, &rec.Time, &rec.Kind, &rec.Detail); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListOptimizations returns the most recent optimization runs, newest first.
func (j *SQLite) ListOptimizations(limit int) ([]OptimizationRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, strategies, saving_bps, gas, elapsed_ns, rebalance, confidence
		FROM optimizations
		ORDER BY time DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OptimizationRecord
	for rows.Next() {
		var rec OptimizationRecord
		var elapsedNS int64
		if err := rows.Scan(
			&rec.RunID,
			&rec.Time,
			&rec.Strategies,
			&rec.SavingBps,
			&rec.Gas,
			&elapsedNS,
			&rec.Rebalance,
			&rec.Confidence,
		); err != nil {
			return nil, err
		}
		rec.Elapsed = time.Duration(elapsedNS)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
