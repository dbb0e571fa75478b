package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

// atoms_fts is created separately in ensureFTS: FTS5 availability depends
// on the SQLite build, so it must not gate the versioned schema.
var migrations = []migration{
	{
		Version:     1,
		Description: "atoms: materialized current-state view of the atom ledger",
		SQL: `
CREATE TABLE atoms (
    atom_id      TEXT PRIMARY KEY,
    ts           TEXT,
    type         TEXT,
    scope        TEXT,
    tags         TEXT,
    entities     TEXT,
    summary      TEXT,
    content      TEXT,
    w            REAL,
    uses         INTEGER,
    last_used_ts TEXT,
    pinned       INTEGER
);
`,
	},
	{
		Version:     2,
		Description: "edges: directed weighted relations (neighbor, coact)",
		SQL: `
CREATE TABLE edges (
    src     TEXT,
    dst     TEXT,
    kind    TEXT,
    weight  REAL,
    n       INTEGER NOT NULL DEFAULT 0,
    last_ts TEXT,
    PRIMARY KEY (src, dst, kind)
);

CREATE INDEX idx_edges_src_kind ON edges(src, kind);
CREATE INDEX idx_edges_dst_kind ON edges(dst, kind);
`,
	},
}

func (db *DB) migrate() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
