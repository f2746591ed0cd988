package store

// catalogDDL defines the catalog database: the partition registry, the
// stream-to-table registry, and projector offsets. Execute with db.Exec.
const catalogDDL = `
-- Daily partition files owned by this store
CREATE TABLE IF NOT EXISTS partitions (
    day TEXT PRIMARY KEY,
    path TEXT NOT NULL,
    created_ts INTEGER NOT NULL,
    UNIQUE(day, path)
);

-- Stream registry: maps a stream id to its table name
CREATE TABLE IF NOT EXISTS streams (
    stream TEXT PRIMARY KEY,
    tbl TEXT NOT NULL,
    UNIQUE(stream, tbl)
);

-- Projector offsets: last event sequence each consumer has handled
CREATE TABLE IF NOT EXISTS projections (
    name TEXT PRIMARY KEY,
    last_seq INTEGER NOT NULL
);
`

// streamTableDDL is the per-stream event table, created inside a partition
// file. The schema is final from day one: trace_id is present at creation
// and the store never alters an existing table. Evolving the schema means
// creating a new table at the new shape; historical tables stay read-only.
const streamTableDDL = `
CREATE TABLE IF NOT EXISTS %q (
    seq INTEGER PRIMARY KEY,
    type TEXT NOT NULL,
    ts INTEGER NOT NULL,
    trace_id TEXT,
    payload BLOB
);
`
