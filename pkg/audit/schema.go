package audit

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// schema creates the exchange table. Times are stored as Unix nanoseconds
// so both drivers read them back identically.
const schema = `
CREATE TABLE IF NOT EXISTS exchanges (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    request_id TEXT,
    transport TEXT NOT NULL,

    provider TEXT NOT NULL,
    model TEXT NOT NULL,

    outcome TEXT NOT NULL,
    stop_reason TEXT,
    error_type TEXT,

    frames INTEGER NOT NULL DEFAULT 0,
    response_bytes INTEGER NOT NULL DEFAULT 0,
    input_tokens INTEGER NOT NULL DEFAULT 0,
    output_tokens INTEGER NOT NULL DEFAULT 0,

    started_at INTEGER NOT NULL,
    duration_ns INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_exchanges_started_at ON exchanges(started_at);
CREATE INDEX IF NOT EXISTS idx_exchanges_session_id ON exchanges(session_id, started_at);
`

const insertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

const getSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const insertRecord = `
INSERT INTO exchanges (
    id, session_id, request_id, transport,
    provider, model,
    outcome, stop_reason, error_type,
    frames, response_bytes, input_tokens, output_tokens,
    started_at, duration_ns
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectColumns = `
SELECT id, session_id, request_id, transport,
    provider, model,
    outcome, stop_reason, error_type,
    frames, response_bytes, input_tokens, output_tokens,
    started_at, duration_ns
FROM exchanges
`
