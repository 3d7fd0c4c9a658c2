package journal

const Schema = `
CREATE TABLE IF NOT EXISTS flows (
	flow_id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	kind TEXT NOT NULL,
	requested REAL NOT NULL,
	realized REAL NOT NULL,
	exposure REAL NOT NULL,
	yield REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS optimizations (
	run_id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	strategies INTEGER NOT NULL,
	saving_bps INTEGER NOT NULL,
	gas INTEGER NOT NULL,
	elapsed_ns INTEGER NOT NULL,
	rebalance INTEGER NOT NULL,
	confidence INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	event_id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	kind TEXT NOT NULL,
	detail TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_flows_time ON flows(time);
CREATE INDEX IF NOT EXISTS idx_events_time ON events(time);
`
