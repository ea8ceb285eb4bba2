package sqlite

// schemaSQL creates the entities table. Counter columns are projections of
// the JSON document maintained on every write so list queries stay cheap.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS entities (
	id            TEXT PRIMARY KEY,
	kind          TEXT NOT NULL,
	name          TEXT NOT NULL,
	phase         TEXT NOT NULL,
	skill_count   INTEGER NOT NULL DEFAULT 0,
	tool_count    INTEGER NOT NULL DEFAULT 0,
	grant_count   INTEGER NOT NULL DEFAULT 0,
	handoff_count INTEGER NOT NULL DEFAULT 0,
	message_count INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL,
	document      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entities_created_at ON entities(created_at);
CREATE INDEX IF NOT EXISTS idx_entities_phase ON entities(phase);
`
