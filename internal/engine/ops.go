package engine

import (
	"github.com/synaptic-ai/synaptic/internal/config"
	"github.com/synaptic-ai/synaptic/internal/store"
)

// Reinforcement bumps applied to atoms touched by retrieval.
const (
	searchBump = 0.01
	briefBump  = 0.02
)

// SearchResult is the outcome of a full search operation.
type SearchResult struct {
	Seeds []Retrieved  `json:"results"`
	Decay *DecayReport `json:"decay,omitempty"`
}

// RunSearch performs L1 search and the bookkeeping around it: an optional
// persisted decay pass first, activation logging, and a small strength
// bump on every hit.
func RunSearch(r *Retriever, st *store.Store, cfg config.Config, query string, k int, withDecay bool) (*SearchResult, error) {
	res := &SearchResult{}

	if withDecay {
		rep, err := ApplyDecay(st, cfg.DecayHalfLifeDays, DefaultMinDelta)
		if err != nil {
			return nil, err
		}
		res.Decay = rep
	}

	seeds, err := r.L1Search(query, k)
	if err != nil {
		return nil, err
	}
	res.Seeds = seeds

	atomIDs := make([]string, len(seeds))
	for i, s := range seeds {
		atomIDs[i] = s.AtomID
	}

	meta := map[string]any{"k": k}
	if res.Decay != nil {
		meta["decay"] = res.Decay
	}
	if _, err := st.LogActivation(query, atomIDs, "search", meta); err != nil {
		return nil, err
	}

	if _, err := strengthen(st, query, atomIDs, "strengthen_on_search", searchBump); err != nil {
		return nil, err
	}
	return res, nil
}

// BriefResult is the outcome of a full brief operation.
type BriefResult struct {
	Brief   string          `json:"brief"`
	Seeds   []Retrieved     `json:"results"`
	L2      []L2Suggestion  `json:"l2_suggestions"`
	Meta    []MetaCandidate `json:"meta_candidates"`
	Decay   *DecayReport    `json:"decay,omitempty"`
	AtomIDs []string        `json:"atom_ids"`
}

// RunBrief builds a memory brief: L1 seeds, L2 expansion, meta-atom
// proposals, and the rendered markdown. Seeds are reinforced and their
// co-activation is recorded as symmetric coact edges.
func RunBrief(r *Retriever, st *store.Store, cfg config.Config, query string, k, l2Take, metaTake int, withDecay bool) (*BriefResult, error) {
	res := &BriefResult{}

	if withDecay {
		rep, err := ApplyDecay(st, cfg.DecayHalfLifeDays, DefaultMinDelta)
		if err != nil {
			return nil, err
		}
		res.Decay = rep
	}

	seeds, err := r.L1Search(query, k)
	if err != nil {
		return nil, err
	}
	l2, err := r.L2Expand(seeds, cfg.L2NeighborK, l2Take)
	if err != nil {
		return nil, err
	}
	meta, err := r.ProposeMeta(seeds, l2, metaTake)
	if err != nil {
		return nil, err
	}
	res.Seeds, res.L2, res.Meta = seeds, l2, meta

	atomIDs := make([]string, len(seeds))
	for i, s := range seeds {
		atomIDs[i] = s.AtomID
	}
	res.AtomIDs = atomIDs

	actMeta := map[string]any{"k": k, "l2": l2Take}
	if res.Decay != nil {
		actMeta["decay"] = res.Decay
	}
	if _, err := st.LogActivation(query, atomIDs, "brief", actMeta); err != nil {
		return nil, err
	}

	ts, err := strengthen(st, query, atomIDs, "strengthen_on_brief", briefBump)
	if err != nil {
		return nil, err
	}

	// Record co-activation among seeds. Edges are directed, so both
	// directions are inserted explicitly.
	for i := 0; i < len(atomIDs); i++ {
		for j := i + 1; j < len(atomIDs); j++ {
			a, b := atomIDs[i], atomIDs[j]
			if err := st.DB.UpsertEdge(a, b, "coact", 1.0, ts, 1); err != nil {
				return nil, err
			}
			if err := st.DB.UpsertEdge(b, a, "coact", 1.0, ts, 1); err != nil {
				return nil, err
			}
		}
	}

	res.Brief = BuildBrief(query, seeds, l2, meta)
	return res, nil
}

// strengthen logs a manual activation note and bumps every touched atom.
// Returns the event timestamp so callers can reuse it.
func strengthen(st *store.Store, query string, atomIDs []string, note string, bump float64) (string, error) {
	ev, err := st.LogActivation(query, atomIDs, "manual", map[string]any{"note": note})
	if err != nil {
		return "", err
	}
	ts := ev.TS
	for _, id := range atomIDs {
		if err := st.UpdateAtomStrength(id, ts, bump, 1, &ts); err != nil {
			return "", err
		}
	}
	return ts, nil
}
