// Package server exposes the synaptic store over a local HTTP API.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/synaptic-ai/synaptic/internal/config"
	"github.com/synaptic-ai/synaptic/internal/engine"
	"github.com/synaptic-ai/synaptic/internal/store"
)

// Server is the synaptic HTTP API server. It wraps the same single-writer
// store the CLI uses; it is a local convenience surface, not a distributed
// interface.
type Server struct {
	st        *store.Store
	cfg       config.Config
	retriever *engine.Retriever
	router    chi.Router
	version   string
	started   time.Time
}

// New creates a Server over an open store.
func New(st *store.Store, cfg config.Config, version string) (*Server, error) {
	r, err := engine.NewRetriever(st, cfg)
	if err != nil {
		return nil, err
	}
	s := &Server{
		st:        st,
		cfg:       cfg,
		retriever: r,
		version:   version,
		started:   time.Now(),
	}
	s.routes()
	return s, nil
}

// Close releases the retriever.
func (s *Server) Close() {
	s.retriever.Close()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/atoms", s.handleAddAtom)
		r.Get("/search", s.handleSearch)
		r.Get("/brief", s.handleBrief)
		r.Post("/decay", s.handleDecay)
		r.Post("/prune", s.handlePrune)
		r.Post("/reindex", s.handleReindex)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := s.st.DB.Ping() == nil
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"home":    s.st.Home,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}
