package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/synaptic-ai/synaptic/internal/config"
	"github.com/synaptic-ai/synaptic/internal/model"
)

// Ledger file names under the synaptic home directory.
const (
	atomsLedger       = "atoms.jsonl"
	activationsLedger = "activations.jsonl"
	indexFile         = "synaptic.sqlite"
)

// initialW is the strength a freshly added atom starts with.
const initialW = 0.05

// Store owns the append-only ledgers and keeps the SQLite index
// synchronized as the materialized current-state view.
//
//   - atoms.jsonl: authoritative atom history (append-only, last write wins)
//   - activations.jsonl: usage events (append-only)
//   - synaptic.sqlite: query index and edges
type Store struct {
	Home string
	DB   *DB

	cfg       config.Config
	atomsPath string
	actsPath  string
}

// Open creates the home directory if needed and opens the index.
func Open(cfg config.Config) (*Store, error) {
	if err := os.MkdirAll(cfg.Home, 0o755); err != nil {
		return nil, fmt.Errorf("create home %s: %w", cfg.Home, err)
	}
	db, err := OpenDB(filepath.Join(cfg.Home, indexFile))
	if err != nil {
		return nil, err
	}
	return &Store{
		Home:      cfg.Home,
		DB:        db,
		cfg:       cfg,
		atomsPath: filepath.Join(cfg.Home, atomsLedger),
		actsPath:  filepath.Join(cfg.Home, activationsLedger),
	}, nil
}

// Close closes the index.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Init touches the ledger files so tooling sees them.
func (s *Store) Init() error {
	for _, p := range []string{s.atomsPath, s.actsPath} {
		f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("touch %s: %w", p, err)
		}
		f.Close()
	}
	return nil
}

// AddParams are the caller-supplied fields of a new atom.
type AddParams struct {
	Type     string
	Scope    []string
	Tags     []string
	Entities []string
	Content  string
	Summary  string
	Source   map[string]any
	Pinned   bool
}

// AddAtom validates and truncates the payload, derives the content-hash
// identity, appends the record to the atom ledger, and projects it into
// the index. Identical payloads added at the same timestamp yield the same
// atom id.
func (s *Store) AddAtom(p AddParams) (*model.Atom, error) {
	ts := model.NowISO()
	if p.Source == nil {
		p.Source = map[string]any{}
	}

	content := truncateBytes(strings.TrimSpace(p.Content), s.cfg.MaxAtomBytes)
	summary := strings.TrimSpace(p.Summary)
	if summary == "" {
		summary = strings.TrimSpace(p.Content)
	}
	summary = truncateBytes(summary, s.cfg.MaxAtomBytes)

	scope := nonNil(p.Scope)
	tags := nonNil(p.Tags)
	entities := nonNil(p.Entities)

	atomID := model.StableID("atom", map[string]any{
		"ts": ts, "type": p.Type, "scope": scope, "tags": tags,
		"entities": entities, "content": content, "summary": summary,
		"source": p.Source,
	})

	atom := &model.Atom{
		AtomID:   atomID,
		TS:       ts,
		Type:     p.Type,
		Scope:    scope,
		Tags:     tags,
		Entities: entities,
		Content:  content,
		Summary:  summary,
		Source:   p.Source,
		W:        initialW,
		Uses:     0,
		Pinned:   p.Pinned,
		Hash:     model.SHA256Text(summary + "\n" + content),
	}

	if err := appendJSONL(s.atomsPath, atom); err != nil {
		return nil, err
	}
	if err := s.DB.UpsertAtom(rowFromAtom(atom)); err != nil {
		return nil, err
	}
	return atom, nil
}

// UpdateAtomStrength applies a strength mutation to an atom: deltaW is
// added to w (clamped), usesInc to the use counter. lastUsed, when non-nil,
// replaces last_used_ts verbatim (decay passes use this to avoid advancing
// recency); when nil the existing value is kept, defaulting to ts.
//
// Each update appends a new full ledger record; unknown atom ids are a
// silent no-op. Provenance is not retained on this path.
func (s *Store) UpdateAtomStrength(atomID, ts string, deltaW float64, usesInc int, lastUsed *string) error {
	row, err := s.DB.GetAtom(atomID)
	if err != nil {
		return err
	}
	if row == nil {
		return nil
	}

	last := row.LastUsedTS
	if lastUsed != nil {
		last = *lastUsed
	} else if last == "" {
		last = ts
	}

	atom := &model.Atom{
		AtomID:     row.AtomID,
		TS:         row.TS,
		Type:       row.Type,
		Scope:      splitList(row.Scope),
		Tags:       splitList(row.Tags),
		Entities:   splitList(row.Entities),
		Content:    row.Content,
		Summary:    row.Summary,
		Source:     map[string]any{},
		W:          model.ClampW(row.W + deltaW),
		Uses:       row.Uses + usesInc,
		LastUsedTS: last,
		Pinned:     row.Pinned,
	}

	if err := appendJSONL(s.atomsPath, atom); err != nil {
		return err
	}
	return s.DB.UpsertAtom(rowFromAtom(atom))
}

// LogActivation appends an immutable usage event to the activation ledger.
// It never mutates atoms.
func (s *Store) LogActivation(query string, atomIDs []string, kind string, meta map[string]any) (*model.ActivationEvent, error) {
	ts := model.NowISO()
	if meta == nil {
		meta = map[string]any{}
	}
	atomIDs = nonNil(atomIDs)

	ev := &model.ActivationEvent{
		ActID: model.StableID("act", map[string]any{
			"ts": ts, "query": query, "atom_ids": atomIDs, "kind": kind, "meta": meta,
		}),
		TS:      ts,
		Query:   query,
		AtomIDs: atomIDs,
		Kind:    kind,
		Meta:    meta,
	}
	if err := appendJSONL(s.actsPath, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// IterAtomsIndexed returns the full population from the index, used by
// maintenance passes.
func (s *Store) IterAtomsIndexed() ([]AtomRow, error) {
	return s.DB.IterAtoms()
}

// DeleteAtom removes an atom from the index only; ledger history is
// permanent.
func (s *Store) DeleteAtom(atomID string) error {
	return s.DB.DeleteAtom(atomID)
}

// ReindexReport summarizes a ledger replay.
type ReindexReport struct {
	Records int    `json:"records"`
	Atoms   int    `json:"atoms"`
	Skipped int    `json:"skipped"`
	TS      string `json:"ts"`
}

// Reindex rebuilds the index's atom view by folding the atom ledger in
// order: the last snapshot per atom id wins. Unparseable lines (including
// a partially written trailing line) are skipped, not fatal. Edges are
// left untouched; they have no ledger.
func (s *Store) Reindex() (*ReindexReport, error) {
	f, err := os.Open(s.atomsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &ReindexReport{TS: model.NowISO()}, nil
		}
		return nil, fmt.Errorf("open atom ledger: %w", err)
	}
	defer f.Close()

	if _, err := s.DB.Exec("DELETE FROM atoms"); err != nil {
		return nil, fmt.Errorf("clear atoms: %w", err)
	}
	if s.DB.fts {
		s.DB.Exec("DELETE FROM atoms_fts")
	}

	rep := &ReindexReport{TS: model.NowISO()}
	ids := make(map[string]struct{})

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var atom model.Atom
		if err := json.Unmarshal([]byte(line), &atom); err != nil || atom.AtomID == "" {
			rep.Skipped++
			continue
		}
		if err := s.DB.UpsertAtom(rowFromAtom(&atom)); err != nil {
			return nil, err
		}
		rep.Records++
		ids[atom.AtomID] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read atom ledger: %w", err)
	}
	rep.Atoms = len(ids)
	return rep, nil
}

func rowFromAtom(a *model.Atom) AtomRow {
	return AtomRow{
		AtomID:     a.AtomID,
		TS:         a.TS,
		Type:       a.Type,
		Scope:      strings.Join(a.Scope, ","),
		Tags:       strings.Join(a.Tags, ","),
		Entities:   strings.Join(a.Entities, ","),
		Summary:    a.Summary,
		Content:    a.Content,
		W:          a.W,
		Uses:       a.Uses,
		LastUsedTS: a.LastUsedTS,
		Pinned:     a.Pinned,
	}
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}

// truncateBytes caps s at max bytes, replacing the cut tail with an
// ellipsis marker without splitting a rune.
func truncateBytes(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	const marker = "…"
	cut := max - len(marker)
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + marker
}

func appendJSONL(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal ledger record: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append ledger %s: %w", path, err)
	}
	return nil
}
