package engine

import (
	"math"

	"github.com/synaptic-ai/synaptic/internal/model"
	"github.com/synaptic-ai/synaptic/internal/store"
)

// decayUnchanged is the factor above which an atom is considered
// untouched by a decay pass.
const decayUnchanged = 0.999999

// DefaultMinDelta is the smallest strength change a decay pass persists.
const DefaultMinDelta = 1e-6

// DecayFactor returns a multiplier in (0, 1] for exponential decay based
// on time since last use. A non-positive half-life or an unparseable
// timestamp yields 1 (no decay). Computed in Go rather than SQL:
// modernc.org/sqlite has no pow().
func DecayFactor(lastTS, nowTS string, halfLifeDays float64) float64 {
	if halfLifeDays <= 0 {
		return 1.0
	}
	t0, ok0 := model.ParseISO(lastTS)
	t1, ok1 := model.ParseISO(nowTS)
	if !ok0 || !ok1 {
		return 1.0
	}
	dtDays := t1.Sub(t0).Seconds() / 86400.0
	if dtDays <= 0 {
		return 1.0
	}
	lambda := math.Ln2 / halfLifeDays
	return math.Exp(-lambda * dtDays)
}

// DecayReport summarizes a persisted decay pass.
type DecayReport struct {
	AtomsSeen    int     `json:"atoms_seen"`
	AtomsUpdated int     `json:"atoms_updated"`
	AvgFactor    float64 `json:"avg_factor"`
	TS           string  `json:"ts"`
}

// ApplyDecay persists time-based decay into stored strengths. Retrieval
// also applies dynamic decay for ranking, but persisting keeps stored
// w-values honest across long gaps and improves pruning decisions.
//
// Pinned atoms are exempt. last_used_ts is explicitly preserved: decay
// must never advance recency.
func ApplyDecay(st *store.Store, halfLifeDays, minDelta float64) (*DecayReport, error) {
	ts := model.NowISO()
	rep := &DecayReport{TS: ts}

	rows, err := st.IterAtomsIndexed()
	if err != nil {
		return nil, err
	}

	var factors []float64
	for _, row := range rows {
		rep.AtomsSeen++
		if row.Pinned {
			continue
		}

		last := row.LastUsedTS
		if last == "" {
			last = row.TS
		}
		f := DecayFactor(last, ts, halfLifeDays)
		factors = append(factors, f)
		if f >= decayUnchanged {
			continue
		}

		w2 := row.W * f
		if math.Abs(w2-row.W) <= minDelta {
			continue
		}

		prior := row.LastUsedTS
		if err := st.UpdateAtomStrength(row.AtomID, ts, w2-row.W, 0, &prior); err != nil {
			return nil, err
		}
		rep.AtomsUpdated++
	}

	rep.AvgFactor = 1.0
	if len(factors) > 0 {
		var sum float64
		for _, f := range factors {
			sum += f
		}
		rep.AvgFactor = sum / float64(len(factors))
	}
	return rep, nil
}
