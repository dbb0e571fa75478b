// Package engine implements the retrieval and lifecycle passes over the
// synaptic store: L1 hybrid search, L2 graph expansion, meta-atom
// proposal, strength decay, and budget pruning.
package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/synaptic-ai/synaptic/internal/config"
	"github.com/synaptic-ai/synaptic/internal/embed"
	"github.com/synaptic-ai/synaptic/internal/model"
	"github.com/synaptic-ai/synaptic/internal/store"
)

// Retrieved is a ranked L1 search result. Never persisted.
type Retrieved struct {
	AtomID  string        `json:"atom_id"`
	Score   float64       `json:"score"`
	Reasons []string      `json:"reasons"`
	Row     store.AtomRow `json:"row"`
}

// L2Suggestion is an adjacent atom proposed by graph or similarity
// expansion.
type L2Suggestion struct {
	AtomID  string   `json:"atom_id"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// MetaCandidate is a proposed higher-level grouping of co-activated atoms.
type MetaCandidate struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Members []string `json:"members"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

const (
	// l2SimilarityPool caps how many indexed atoms the L2 similarity scan
	// considers, a fixed performance ceiling independent of store size.
	l2SimilarityPool = 400

	// metaCoactFanout caps coact edges fetched per vertex when building
	// the meta-proposal adjacency.
	metaCoactFanout = 50

	metaCohesionThreshold = 0.15
)

// Retriever performs L1 search, L2 expansion, and meta-atom proposal.
type Retriever struct {
	st       *store.Store
	cfg      config.Config
	embedder *embed.Hasher
	vectors  *vectorCache
}

// NewRetriever creates a Retriever over the given store.
func NewRetriever(st *store.Store, cfg config.Config) (*Retriever, error) {
	vc, err := newVectorCache()
	if err != nil {
		return nil, fmt.Errorf("vector cache: %w", err)
	}
	return &Retriever{
		st:       st,
		cfg:      cfg,
		embedder: embed.NewHasher(cfg.EmbedDim),
		vectors:  vc,
	}, nil
}

// Close releases the vector cache.
func (r *Retriever) Close() {
	r.vectors.close()
}

// atomVector returns the embedding of an atom's summary+content, memoized
// by atom id (atom text is immutable per id).
func (r *Retriever) atomVector(row store.AtomRow) embed.Vector {
	if v, ok := r.vectors.get(row.AtomID); ok {
		return v
	}
	v := r.embedder.Embed(row.Summary + "\n" + row.Content)
	r.vectors.set(row.AtomID, v)
	return v
}

// L1Search ranks indexed atoms against a query by blending lexical rank,
// embedding similarity, and learned strength:
//
//	score = 0.70*sim + 0.20*tanh(w_eff/2) + 0.08*tanh(uses/10) + 0.02*pinned
func (r *Retriever) L1Search(query string, k int) ([]Retrieved, error) {
	if k < 1 {
		k = 1
	}
	if k > r.cfg.MaxResultAtoms {
		k = r.cfg.MaxResultAtoms
	}

	toks := embed.Tokenize(query)
	if len(toks) > 10 {
		toks = toks[:10]
	}
	ftsQuery := strings.Join(toks, " ")
	if ftsQuery == "" {
		ftsQuery = query
	}

	limit := 4 * k
	if limit < 20 {
		limit = 20
	}
	rows := r.st.DB.SearchRanked(ftsQuery, limit)
	if len(rows) == 0 {
		var err error
		rows, err = r.st.DB.SearchSubstring(query, limit)
		if err != nil {
			return nil, err
		}
	}

	qv := r.embedder.Embed(query)
	ts := model.NowISO()

	scored := make([]Retrieved, 0, len(rows))
	for _, row := range rows {
		sim := embed.Cosine(qv, r.atomVector(row))

		pinned := 0.0
		if row.Pinned {
			pinned = 1.0
		}

		wEff := row.W
		if r.cfg.DecayOnRetrieval && !row.Pinned {
			last := row.LastUsedTS
			if last == "" {
				last = row.TS
			}
			wEff = row.W * DecayFactor(last, ts, r.cfg.DecayHalfLifeDays)
		}

		score := 0.70*sim + 0.20*math.Tanh(wEff/2.0) + 0.08*math.Tanh(float64(row.Uses)/10.0) + 0.02*pinned

		var reasons []string
		if sim > 0 {
			reasons = append(reasons, fmt.Sprintf("sim:%.2f", sim))
		}
		if row.Pinned {
			reasons = append(reasons, "pinned")
		}
		if wEff != 0 {
			reasons = append(reasons, fmt.Sprintf("w_eff:%.2f", wEff))
		}

		scored = append(scored, Retrieved{AtomID: row.AtomID, Score: score, Reasons: reasons, Row: row})
	}

	// Stable: ties keep candidate order.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

type l2slot struct {
	score   float64
	reasons map[string]struct{}
}

// L2Expand proposes atoms adjacent to the L1 seeds: graph neighbors and
// co-activations contribute by edge weight, and a similarity scan over the
// indexed population contributes by cosine against the concatenated seed
// summaries. Contributions merge additively per atom.
func (r *Retriever) L2Expand(seeds []Retrieved, neighborK, take int) ([]L2Suggestion, error) {
	if take < 0 {
		take = 0
	}
	if take > 50 {
		take = 50
	}
	if neighborK < 5 {
		neighborK = 5
	}
	if neighborK > 200 {
		neighborK = 200
	}

	seedSet := make(map[string]struct{}, len(seeds))
	for _, s := range seeds {
		seedSet[s.AtomID] = struct{}{}
	}

	candidates := make(map[string]*l2slot)
	slot := func(id string) *l2slot {
		c, ok := candidates[id]
		if !ok {
			c = &l2slot{reasons: make(map[string]struct{})}
			candidates[id] = c
		}
		return c
	}

	for _, s := range seeds {
		for _, kind := range []string{"neighbor", "coact"} {
			edges, err := r.st.DB.Neighbors(s.AtomID, kind, neighborK)
			if err != nil {
				return nil, err
			}
			for _, e := range edges {
				if _, isSeed := seedSet[e.Dst]; isSeed {
					continue
				}
				c := slot(e.Dst)
				if kind == "neighbor" {
					c.score += 0.8 * e.Weight
					c.reasons["neighbor"] = struct{}{}
				} else {
					c.score += 0.3*e.Weight + 0.1*math.Tanh(float64(e.N)/10.0)
					c.reasons["coact"] = struct{}{}
				}
			}
		}
	}

	// Similarity pool: first l2SimilarityPool atoms in population order,
	// not similarity-ordered.
	var parts []string
	for _, s := range seeds {
		parts = append(parts, s.Row.Summary)
	}
	qv := r.embedder.Embed(strings.Join(parts, " "))

	rows, err := r.st.IterAtomsIndexed()
	if err != nil {
		return nil, err
	}
	type simHit struct {
		atomID string
		sim    float64
	}
	var pool []simHit
	for i, row := range rows {
		if i >= l2SimilarityPool {
			break
		}
		if _, isSeed := seedSet[row.AtomID]; isSeed {
			continue
		}
		sim := embed.Cosine(qv, r.atomVector(row))
		if sim >= r.cfg.L2SimThreshold {
			pool = append(pool, simHit{row.AtomID, sim})
		}
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].sim > pool[j].sim })
	if len(pool) > neighborK {
		pool = pool[:neighborK]
	}
	for _, h := range pool {
		c := slot(h.atomID)
		c.score += 0.6 * h.sim
		c.reasons["sim"] = struct{}{}
	}

	out := make([]L2Suggestion, 0, len(candidates))
	for id, c := range candidates {
		reasons := make([]string, 0, len(c.reasons))
		for reason := range c.reasons {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		out = append(out, L2Suggestion{AtomID: id, Score: c.score, Reasons: reasons})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].AtomID < out[j].AtomID
	})
	if len(out) > take {
		out = out[:take]
	}
	return out, nil
}

// ProposeMeta looks for tightly co-activated triples among the seeds and
// top L2 suggestions and proposes them as meta-atom candidates.
func (r *Retriever) ProposeMeta(seeds []Retrieved, l2 []L2Suggestion, take int) ([]MetaCandidate, error) {
	if take < 0 {
		take = 0
	}
	if take > 10 {
		take = 10
	}

	var topIDs []string
	seen := make(map[string]struct{})
	add := func(id string) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			topIDs = append(topIDs, id)
		}
	}
	for _, s := range seeds {
		add(s.AtomID)
	}
	for i, x := range l2 {
		if i >= 12 {
			break
		}
		add(x.AtomID)
	}

	// Local co-activation adjacency restricted to the candidate set.
	adj := make(map[string]map[string]float64, len(topIDs))
	for _, a := range topIDs {
		adj[a] = make(map[string]float64)
		edges, err := r.st.DB.Neighbors(a, "coact", metaCoactFanout)
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			if _, ok := seen[e.Dst]; ok {
				adj[a][e.Dst] = e.Weight + 0.05*float64(e.N)
			}
		}
	}

	type weighted struct {
		id string
		w  float64
	}

	var cands []MetaCandidate
	anchors := seeds
	if len(anchors) > 6 {
		anchors = anchors[:6]
	}
	for _, s := range anchors {
		anchor := s.AtomID
		neigh := make([]weighted, 0, len(adj[anchor]))
		for id, w := range adj[anchor] {
			neigh = append(neigh, weighted{id, w})
		}
		sort.Slice(neigh, func(i, j int) bool {
			if neigh[i].w != neigh[j].w {
				return neigh[i].w > neigh[j].w
			}
			return neigh[i].id < neigh[j].id
		})
		if len(neigh) > 5 {
			neigh = neigh[:5]
		}
		if len(neigh) < 2 {
			continue
		}

		for i := 0; i < len(neigh); i++ {
			for j := i + 1; j < len(neigh); j++ {
				b, c := neigh[i], neigh[j]
				bc := adj[b.id][c.id] + adj[c.id][b.id]
				cohesion := (b.w + c.w + bc) / 3.0
				if cohesion < metaCohesionThreshold {
					continue
				}
				members := []string{anchor, b.id, c.id}
				cands = append(cands, MetaCandidate{
					Title:   fmt.Sprintf("Pattern cluster (%d)", len(members)),
					Summary: "Frequent co-activation suggests these ideas belong to the same working concept.",
					Members: members,
					Score:   cohesion,
					Reasons: []string{"coact_cohesion"},
				})
			}
		}
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].Score > cands[j].Score })

	// Dedupe by unordered member set; first (highest-scoring) wins.
	out := make([]MetaCandidate, 0, take)
	dedup := make(map[string]struct{})
	for _, m := range cands {
		key := memberKey(m.Members)
		if _, ok := dedup[key]; ok {
			continue
		}
		dedup[key] = struct{}{}
		out = append(out, m)
		if len(out) >= take {
			break
		}
	}
	return out, nil
}

func memberKey(members []string) string {
	sorted := append([]string(nil), members...)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}
