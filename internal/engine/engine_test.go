package engine

import (
	"testing"

	"github.com/synaptic-ai/synaptic/internal/config"
	"github.com/synaptic-ai/synaptic/internal/store"
)

func testStore(t *testing.T) (*store.Store, config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.Home = t.TempDir()
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st, cfg
}

func testRetriever(t *testing.T, st *store.Store, cfg config.Config) *Retriever {
	t.Helper()
	r, err := NewRetriever(st, cfg)
	if err != nil {
		t.Fatalf("new retriever: %v", err)
	}
	t.Cleanup(r.Close)
	return r
}

func addAtom(t *testing.T, st *store.Store, content string, pinned bool) string {
	t.Helper()
	atom, err := st.AddAtom(store.AddParams{Type: "idea", Content: content, Pinned: pinned})
	if err != nil {
		t.Fatalf("add atom: %v", err)
	}
	return atom.AtomID
}
