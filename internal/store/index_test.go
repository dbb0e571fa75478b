package store

import (
	"testing"
)

func testIndex(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func row(id, summary string, w float64, uses int, pinned bool) AtomRow {
	return AtomRow{
		AtomID:  id,
		TS:      "2026-01-01T00:00:00Z",
		Type:    "idea",
		Summary: summary,
		Content: summary,
		W:       w,
		Uses:    uses,
		Pinned:  pinned,
	}
}

func TestUpsertAndGetAtom(t *testing.T) {
	db := testIndex(t)

	if err := db.UpsertAtom(row("atom_a", "ship small patches", 0.05, 0, false)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.GetAtom("atom_a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected row, got nil")
	}
	if got.Summary != "ship small patches" || got.W != 0.05 {
		t.Errorf("row = %+v", got)
	}

	// Upsert replaces, never duplicates.
	r := row("atom_a", "ship small patches", 1.5, 3, false)
	if err := db.UpsertAtom(r); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got, _ = db.GetAtom("atom_a")
	if got.W != 1.5 || got.Uses != 3 {
		t.Errorf("w = %f uses = %d, want 1.5/3", got.W, got.Uses)
	}

	all, err := db.IterAtoms()
	if err != nil {
		t.Fatalf("iter: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("atoms = %d, want 1", len(all))
	}
}

func TestGetAtomMissing(t *testing.T) {
	db := testIndex(t)
	got, err := db.GetAtom("atom_nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("expected nil for missing atom")
	}
}

func TestSearchRanked(t *testing.T) {
	db := testIndex(t)
	db.UpsertAtom(row("atom_a", "ship small patches", 0.05, 0, false))
	db.UpsertAtom(row("atom_b", "pattern cohesion meta-atoms", 0.05, 0, false))

	hits := db.SearchRanked("small patches", 10)
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
	if hits[0].AtomID != "atom_a" {
		t.Errorf("hit = %s, want atom_a", hits[0].AtomID)
	}

	if hits := db.SearchRanked("zebra", 10); len(hits) != 0 {
		t.Errorf("no-match query returned %d hits", len(hits))
	}

	// A query the FTS engine rejects yields empty, not an error.
	if hits := db.SearchRanked(`"unbalanced`, 10); len(hits) != 0 {
		t.Errorf("malformed query returned %d hits", len(hits))
	}
}

func TestSearchSubstringOrdering(t *testing.T) {
	db := testIndex(t)
	db.UpsertAtom(row("atom_weak", "orbital mechanics notes", 0.1, 0, false))
	db.UpsertAtom(row("atom_strong", "orbital mechanics summary", 2.0, 5, false))
	db.UpsertAtom(row("atom_pinned", "orbital mechanics reference", 0.0, 0, true))

	hits, err := db.SearchSubstring("ORBITAL", 10)
	if err != nil {
		t.Fatalf("substring search: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("hits = %d, want 3", len(hits))
	}
	// pinned desc, then w desc.
	if hits[0].AtomID != "atom_pinned" || hits[1].AtomID != "atom_strong" || hits[2].AtomID != "atom_weak" {
		t.Errorf("order = %s, %s, %s", hits[0].AtomID, hits[1].AtomID, hits[2].AtomID)
	}
}

func TestEdges(t *testing.T) {
	db := testIndex(t)
	ts := "2026-01-01T00:00:00Z"

	if err := db.UpsertEdge("a", "b", "coact", 1.0, ts, 1); err != nil {
		t.Fatalf("upsert edge: %v", err)
	}
	// Weight is overwritten, n accumulates.
	if err := db.UpsertEdge("a", "b", "coact", 0.7, ts, 1); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	db.UpsertEdge("a", "c", "coact", 2.0, ts, 0)
	db.UpsertEdge("a", "b", "neighbor", 0.5, ts, 0)

	edges, err := db.Neighbors("a", "coact", 10)
	if err != nil {
		t.Fatalf("neighbors: %v", err)
	}
	if len(edges) != 2 {
		t.Fatalf("edges = %d, want 2", len(edges))
	}
	// weight desc.
	if edges[0].Dst != "c" || edges[1].Dst != "b" {
		t.Errorf("order = %s, %s", edges[0].Dst, edges[1].Dst)
	}
	if edges[1].Weight != 0.7 || edges[1].N != 2 {
		t.Errorf("a->b = w %f n %d, want 0.7/2", edges[1].Weight, edges[1].N)
	}

	// Directed: no reverse edge unless inserted.
	back, _ := db.Neighbors("b", "coact", 10)
	if len(back) != 0 {
		t.Errorf("reverse edges = %d, want 0", len(back))
	}
}

func TestDeleteAtom(t *testing.T) {
	db := testIndex(t)
	db.UpsertAtom(row("atom_a", "to be removed", 0.05, 0, false))

	if err := db.DeleteAtom("atom_a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := db.GetAtom("atom_a"); got != nil {
		t.Error("atom still present after delete")
	}
	if hits := db.SearchRanked("removed", 10); len(hits) != 0 {
		t.Error("fts projection still matches after delete")
	}

	// Idempotent.
	if err := db.DeleteAtom("atom_a"); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
}

func TestIterAtomsOrdering(t *testing.T) {
	db := testIndex(t)
	db.UpsertAtom(row("atom_low", "one", -1.0, 0, false))
	db.UpsertAtom(row("atom_high", "two", 3.0, 0, false))
	db.UpsertAtom(row("atom_pin", "three", -4.0, 0, true))

	all, err := db.IterAtoms()
	if err != nil {
		t.Fatalf("iter: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("atoms = %d, want 3", len(all))
	}
	if all[0].AtomID != "atom_pin" || all[1].AtomID != "atom_high" || all[2].AtomID != "atom_low" {
		t.Errorf("order = %s, %s, %s", all[0].AtomID, all[1].AtomID, all[2].AtomID)
	}
}
