// Package model defines the persisted record shapes for the synaptic store:
// atoms (memory units) and activation events, plus the content-derived IDs
// and timestamp helpers they depend on.
package model

// Atom is a single memory unit. The ledger holds the full history of an
// atom as append-only snapshots; the latest snapshot for an atom_id is the
// authoritative current state.
type Atom struct {
	AtomID   string   `json:"atom_id"`
	TS       string   `json:"ts"`
	Type     string   `json:"type"` // idea|decision|constraint|insight|question|plan|code|principle|cluster
	Scope    []string `json:"scope"`
	Tags     []string `json:"tags"`
	Entities []string `json:"entities"`

	Content string `json:"content"` // short raw text
	Summary string `json:"summary"` // distilled form, defaults to content

	Source map[string]any `json:"source"` // opaque provenance, e.g. {"kind":"chat","ref":"..."}

	// Strength state.
	W          float64 `json:"w"` // clamped to [-5, 5]
	Uses       int     `json:"uses"`
	LastUsedTS string  `json:"last_used_ts"`

	Pinned bool   `json:"pinned"`
	Hash   string `json:"hash"`
}

// ActivationEvent records that a query touched a set of atoms. Write-once.
type ActivationEvent struct {
	ActID   string         `json:"act_id"`
	TS      string         `json:"ts"`
	Query   string         `json:"query"`
	AtomIDs []string       `json:"atom_ids"`
	Kind    string         `json:"kind"` // "search" | "brief" | "cite" | "manual"
	Meta    map[string]any `json:"meta"`
}

// MinW and MaxW bound an atom's strength.
const (
	MinW = -5.0
	MaxW = 5.0
)

// ClampW clamps a strength value into [MinW, MaxW].
func ClampW(w float64) float64 {
	if w < MinW {
		return MinW
	}
	if w > MaxW {
		return MaxW
	}
	return w
}
