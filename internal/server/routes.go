package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/synaptic-ai/synaptic/internal/engine"
	"github.com/synaptic-ai/synaptic/internal/store"
)

func (s *Server) handleAddAtom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type     string         `json:"type"`
		Scope    []string       `json:"scope"`
		Tags     []string       `json:"tags"`
		Entities []string       `json:"entities"`
		Content  string         `json:"content"`
		Summary  string         `json:"summary"`
		Source   map[string]any `json:"source"`
		Pinned   bool           `json:"pinned"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Type == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "type and content required")
		return
	}

	atom, err := s.st.AddAtom(store.AddParams{
		Type:     req.Type,
		Scope:    req.Scope,
		Tags:     req.Tags,
		Entities: req.Entities,
		Content:  req.Content,
		Summary:  req.Summary,
		Source:   req.Source,
		Pinned:   req.Pinned,
	})
	if err != nil {
		log.Printf("add atom: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "atom": atom})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q required")
		return
	}
	k := intParam(r, "k", 12)
	withDecay := boolParam(r, "decay")

	res, err := engine.RunSearch(s.retriever, s.st, s.cfg, query, k, withDecay)
	if err != nil {
		log.Printf("search: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "results": searchPayload(res.Seeds), "decay": res.Decay})
}

func (s *Server) handleBrief(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q required")
		return
	}
	k := intParam(r, "k", 12)
	l2Take := intParam(r, "l2", 8)
	metaTake := intParam(r, "meta", 3)
	withDecay := boolParam(r, "decay")

	res, err := engine.RunBrief(s.retriever, s.st, s.cfg, query, k, l2Take, metaTake, withDecay)
	if err != nil {
		log.Printf("brief: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":              true,
		"brief":           res.Brief,
		"atom_ids":        res.AtomIDs,
		"l2_suggestions":  res.L2,
		"meta_candidates": res.Meta,
		"decay":           res.Decay,
	})
}

func (s *Server) handleDecay(w http.ResponseWriter, r *http.Request) {
	halfLife := s.cfg.DecayHalfLifeDays
	var req struct {
		HalfLifeDays float64 `json:"half_life_days"`
	}
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.HalfLifeDays > 0 {
			halfLife = req.HalfLifeDays
		}
	}

	rep, err := engine.ApplyDecay(s.st, halfLife, engine.DefaultMinDelta)
	if err != nil {
		log.Printf("decay: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "report": rep})
}

func (s *Server) handlePrune(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MaxMB  float64 `json:"max_mb"`
		DryRun bool    `json:"dry_run"`
	}
	req.MaxMB = 50
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	maxBytes := int64(req.MaxMB * 1024 * 1024)
	rep, err := engine.PruneToBudget(s.st, s.cfg.DecayHalfLifeDays, maxBytes, req.DryRun)
	if err != nil {
		log.Printf("prune: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "report": rep})
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	rep, err := s.st.Reindex()
	if err != nil {
		log.Printf("reindex: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "report": rep})
}

// searchPayload trims L1 results to the fields API consumers need.
func searchPayload(seeds []engine.Retrieved) []map[string]any {
	out := make([]map[string]any, len(seeds))
	for i, s := range seeds {
		out[i] = map[string]any{
			"atom_id": s.AtomID,
			"score":   s.Score,
			"reasons": s.Reasons,
			"summary": s.Row.Summary,
		}
	}
	return out
}

func intParam(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolParam(r *http.Request, name string) bool {
	switch r.URL.Query().Get(name) {
	case "1", "true", "yes":
		return true
	}
	return false
}
