package store

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/synaptic-ai/synaptic/internal/config"
	"github.com/synaptic-ai/synaptic/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	cfg := config.Default()
	cfg.Home = t.TempDir()
	st, err := Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func ledgerLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	var lines []string
	for _, l := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func TestAddAtom(t *testing.T) {
	st := testStore(t)

	atom, err := st.AddAtom(AddParams{
		Type:    "idea",
		Scope:   []string{"orion", "colony"},
		Tags:    []string{"process"},
		Content: "ship small patches",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if !strings.HasPrefix(atom.AtomID, "atom_") {
		t.Errorf("atom_id = %q, want atom_ prefix", atom.AtomID)
	}
	if atom.W != 0.05 || atom.Uses != 0 || atom.LastUsedTS != "" {
		t.Errorf("fresh atom strength state = %+v", atom)
	}
	if atom.Summary != "ship small patches" {
		t.Errorf("summary should default to content, got %q", atom.Summary)
	}
	if atom.Hash == "" {
		t.Error("hash should be set at creation")
	}

	got, err := st.DB.GetAtom(atom.AtomID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Scope != "orion,colony" {
		t.Errorf("index row = %+v", got)
	}

	if lines := ledgerLines(t, filepath.Join(st.Home, "atoms.jsonl")); len(lines) != 1 {
		t.Errorf("ledger lines = %d, want 1", len(lines))
	}
}

func TestStableIDIdempotent(t *testing.T) {
	payload := map[string]any{
		"ts": "2026-01-11T04:10:00Z", "type": "idea",
		"scope": []string{"orion"}, "tags": []string{}, "entities": []string{},
		"content": "ship small patches", "summary": "ship small patches",
		"source": map[string]any{},
	}
	a := model.StableID("atom", payload)
	b := model.StableID("atom", payload)
	if a != b {
		t.Errorf("same payload gave %q and %q", a, b)
	}

	payload["content"] = "different"
	if c := model.StableID("atom", payload); c == a {
		t.Error("different payload gave the same id")
	}
}

func TestAddAtomTruncation(t *testing.T) {
	cfg := config.Default()
	cfg.Home = t.TempDir()
	cfg.MaxAtomBytes = 20
	st, err := Open(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()
	st.Init()

	atom, err := st.AddAtom(AddParams{
		Type:    "idea",
		Content: strings.Repeat("x", 100),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(atom.Content) > 20 {
		t.Errorf("content = %d bytes, want <= 20", len(atom.Content))
	}
	if !strings.HasSuffix(atom.Content, "…") {
		t.Errorf("truncated content should end with ellipsis, got %q", atom.Content)
	}
}

func TestUpdateAtomStrength(t *testing.T) {
	st := testStore(t)
	atom, _ := st.AddAtom(AddParams{Type: "idea", Content: "ship small patches"})

	ts := model.NowISO()
	if err := st.UpdateAtomStrength(atom.AtomID, ts, 0.01, 1, &ts); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := st.DB.GetAtom(atom.AtomID)
	if math.Abs(got.W-0.06) > 1e-9 {
		t.Errorf("w = %f, want 0.06", got.W)
	}
	if got.Uses != 1 {
		t.Errorf("uses = %d, want 1", got.Uses)
	}
	if got.LastUsedTS != ts {
		t.Errorf("last_used_ts = %q, want %q", got.LastUsedTS, ts)
	}

	// Each update appends a new full ledger record.
	if lines := ledgerLines(t, filepath.Join(st.Home, "atoms.jsonl")); len(lines) != 2 {
		t.Errorf("ledger lines = %d, want 2", len(lines))
	}
}

func TestUpdateAtomStrengthClamp(t *testing.T) {
	st := testStore(t)
	atom, _ := st.AddAtom(AddParams{Type: "idea", Content: "ship small patches"})
	ts := model.NowISO()

	if err := st.UpdateAtomStrength(atom.AtomID, ts, 100, 0, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := st.DB.GetAtom(atom.AtomID)
	if got.W != 5.0 {
		t.Errorf("w = %f, want clamp to 5", got.W)
	}

	if err := st.UpdateAtomStrength(atom.AtomID, ts, -100, 0, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = st.DB.GetAtom(atom.AtomID)
	if got.W != -5.0 {
		t.Errorf("w = %f, want clamp to -5", got.W)
	}
}

func TestUpdateAtomStrengthMissingIsNoop(t *testing.T) {
	st := testStore(t)
	if err := st.UpdateAtomStrength("atom_ghost", model.NowISO(), 1, 1, nil); err != nil {
		t.Fatalf("update of missing atom should be a silent no-op, got %v", err)
	}
	if lines := ledgerLines(t, filepath.Join(st.Home, "atoms.jsonl")); len(lines) != 0 {
		t.Errorf("ledger lines = %d, want 0", len(lines))
	}
}

func TestLogActivation(t *testing.T) {
	st := testStore(t)

	ev, err := st.LogActivation("small patches", []string{"atom_a"}, "search", map[string]any{"k": 5})
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if !strings.HasPrefix(ev.ActID, "act_") {
		t.Errorf("act_id = %q", ev.ActID)
	}
	if lines := ledgerLines(t, filepath.Join(st.Home, "activations.jsonl")); len(lines) != 1 {
		t.Errorf("activation lines = %d, want 1", len(lines))
	}
}

func TestReindex(t *testing.T) {
	st := testStore(t)
	atom, _ := st.AddAtom(AddParams{Type: "idea", Content: "ship small patches"})
	ts := model.NowISO()
	st.UpdateAtomStrength(atom.AtomID, ts, 1.0, 2, &ts)

	// Simulate a partial trailing write; replay must skip it.
	f, err := os.OpenFile(filepath.Join(st.Home, "atoms.jsonl"), os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	f.WriteString(`{"atom_id":"atom_trunc","ts":"2026-`)
	f.Close()

	// Wipe the current row so replay has to restore it.
	st.DeleteAtom(atom.AtomID)

	rep, err := st.Reindex()
	if err != nil {
		t.Fatalf("reindex: %v", err)
	}
	if rep.Records != 2 || rep.Atoms != 1 || rep.Skipped != 1 {
		t.Errorf("report = %+v, want records 2 atoms 1 skipped 1", rep)
	}

	// Last record wins.
	got, _ := st.DB.GetAtom(atom.AtomID)
	if got == nil {
		t.Fatal("atom missing after reindex")
	}
	if math.Abs(got.W-1.05) > 1e-9 || got.Uses != 2 {
		t.Errorf("replayed row = w %f uses %d, want 1.05/2", got.W, got.Uses)
	}
}

func TestTruncateBytes(t *testing.T) {
	if got := truncateBytes("short", 100); got != "short" {
		t.Errorf("got %q", got)
	}
	got := truncateBytes("héllo wörld, this is long", 10)
	if len(got) > 10 {
		t.Errorf("len = %d, want <= 10", len(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("got %q, want ellipsis suffix", got)
	}
}
