package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// AtomRow is the queryable-index projection of an atom: the latest ledger
// snapshot, with list fields flattened to comma-joined strings. Provenance
// is not projected.
type AtomRow struct {
	AtomID     string
	TS         string
	Type       string
	Scope      string
	Tags       string
	Entities   string
	Summary    string
	Content    string
	W          float64
	Uses       int
	LastUsedTS string
	Pinned     bool
}

// EdgeRow is a directed weighted relation between two atoms.
type EdgeRow struct {
	Src    string
	Dst    string
	Kind   string // "neighbor" | "coact"
	Weight float64
	N      int
	LastTS string
}

const atomCols = "atom_id, ts, type, scope, tags, entities, summary, content, w, uses, last_used_ts, pinned"

func scanAtomRow(s interface{ Scan(...any) error }) (AtomRow, error) {
	var r AtomRow
	var pinned int
	err := s.Scan(&r.AtomID, &r.TS, &r.Type, &r.Scope, &r.Tags, &r.Entities,
		&r.Summary, &r.Content, &r.W, &r.Uses, &r.LastUsedTS, &pinned)
	r.Pinned = pinned != 0
	return r, err
}

// UpsertAtom replaces the index row for an atom and refreshes its
// full-text projection.
func (db *DB) UpsertAtom(r AtomRow) error {
	pinned := 0
	if r.Pinned {
		pinned = 1
	}
	_, err := db.Exec(`
		INSERT INTO atoms (`+atomCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(atom_id) DO UPDATE SET
			ts=excluded.ts, type=excluded.type, scope=excluded.scope,
			tags=excluded.tags, entities=excluded.entities,
			summary=excluded.summary, content=excluded.content,
			w=excluded.w, uses=excluded.uses,
			last_used_ts=excluded.last_used_ts, pinned=excluded.pinned
	`, r.AtomID, r.TS, r.Type, r.Scope, r.Tags, r.Entities,
		r.Summary, r.Content, r.W, r.Uses, r.LastUsedTS, pinned)
	if err != nil {
		return fmt.Errorf("upsert atom %s: %w", r.AtomID, err)
	}

	// FTS tables have no usable ON CONFLICT; delete + insert keeps the
	// projection in sync.
	if db.fts {
		if _, err := db.Exec("DELETE FROM atoms_fts WHERE atom_id = ?", r.AtomID); err == nil {
			db.Exec("INSERT INTO atoms_fts (atom_id, summary, content, tags, entities, scope) VALUES (?, ?, ?, ?, ?, ?)",
				r.AtomID, r.Summary, r.Content, r.Tags, r.Entities, r.Scope)
		}
	}
	return nil
}

// GetAtom returns the index row for an atom, or nil if not present.
func (db *DB) GetAtom(atomID string) (*AtomRow, error) {
	row := db.QueryRow("SELECT "+atomCols+" FROM atoms WHERE atom_id = ?", atomID)
	r, err := scanAtomRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get atom %s: %w", atomID, err)
	}
	return &r, nil
}

// SearchRanked runs a bm25-ranked full-text search. It returns an empty
// result set, never an error, when the text engine is unavailable or
// rejects the query; callers fall back to SearchSubstring.
func (db *DB) SearchRanked(query string, limit int) []AtomRow {
	if !db.fts {
		return nil
	}
	rows, err := db.Query(`
		SELECT atoms.atom_id, atoms.ts, atoms.type, atoms.scope, atoms.tags, atoms.entities,
		       atoms.summary, atoms.content, atoms.w, atoms.uses, atoms.last_used_ts, atoms.pinned
		FROM atoms_fts JOIN atoms ON atoms_fts.atom_id = atoms.atom_id
		WHERE atoms_fts MATCH ?
		ORDER BY bm25(atoms_fts)
		LIMIT ?`, query, limit)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []AtomRow
	for rows.Next() {
		r, err := scanAtomRow(rows)
		if err != nil {
			return nil
		}
		out = append(out, r)
	}
	if rows.Err() != nil {
		return nil
	}
	return out
}

// SearchSubstring is the case-insensitive LIKE fallback across the same
// fields as the full-text projection.
func (db *DB) SearchSubstring(query string, limit int) ([]AtomRow, error) {
	q := "%" + strings.ToLower(query) + "%"
	rows, err := db.Query(`
		SELECT `+atomCols+` FROM atoms
		WHERE lower(summary) LIKE ? OR lower(content) LIKE ? OR lower(tags) LIKE ?
		   OR lower(entities) LIKE ? OR lower(scope) LIKE ?
		ORDER BY pinned DESC, w DESC, uses DESC
		LIMIT ?`, q, q, q, q, q, limit)
	if err != nil {
		return nil, fmt.Errorf("substring search: %w", err)
	}
	defer rows.Close()

	var out []AtomRow
	for rows.Next() {
		r, err := scanAtomRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Neighbors returns outgoing edges of the given kind, strongest first.
func (db *DB) Neighbors(atomID, kind string, limit int) ([]EdgeRow, error) {
	rows, err := db.Query(`
		SELECT src, dst, kind, weight, n, last_ts FROM edges
		WHERE src = ? AND kind = ?
		ORDER BY weight DESC, n DESC
		LIMIT ?`, atomID, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("neighbors of %s: %w", atomID, err)
	}
	defer rows.Close()

	var out []EdgeRow
	for rows.Next() {
		var e EdgeRow
		if err := rows.Scan(&e.Src, &e.Dst, &e.Kind, &e.Weight, &e.N, &e.LastTS); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpsertEdge sets an edge's weight to the given value and increments its
// usage count by nInc. Edges are directed; callers wanting symmetry insert
// both directions.
func (db *DB) UpsertEdge(src, dst, kind string, weight float64, ts string, nInc int) error {
	_, err := db.Exec(`
		INSERT INTO edges (src, dst, kind, weight, n, last_ts)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(src, dst, kind) DO UPDATE SET
			weight = excluded.weight,
			n = edges.n + ?,
			last_ts = excluded.last_ts
	`, src, dst, kind, weight, nInc, ts, nInc)
	if err != nil {
		return fmt.Errorf("upsert edge %s->%s (%s): %w", src, dst, kind, err)
	}
	return nil
}

// DeleteAtom removes an atom's index row and full-text projection.
// Idempotent; the ledger is untouched.
func (db *DB) DeleteAtom(atomID string) error {
	if _, err := db.Exec("DELETE FROM atoms WHERE atom_id = ?", atomID); err != nil {
		return fmt.Errorf("delete atom %s: %w", atomID, err)
	}
	if db.fts {
		db.Exec("DELETE FROM atoms_fts WHERE atom_id = ?", atomID)
	}
	return nil
}

// IterAtoms returns the full atom population ordered by
// pinned desc, w desc, uses desc.
func (db *DB) IterAtoms() ([]AtomRow, error) {
	rows, err := db.Query("SELECT " + atomCols + " FROM atoms ORDER BY pinned DESC, w DESC, uses DESC")
	if err != nil {
		return nil, fmt.Errorf("iterate atoms: %w", err)
	}
	defer rows.Close()

	var out []AtomRow
	for rows.Next() {
		r, err := scanAtomRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
