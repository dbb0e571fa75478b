package engine

import (
	"math"
	"sort"

	"github.com/synaptic-ai/synaptic/internal/model"
	"github.com/synaptic-ai/synaptic/internal/store"
)

// PruneReport summarizes a prune pass.
type PruneReport struct {
	Kept        int      `json:"kept"`
	Removed     int      `json:"removed"`
	BytesBefore int64    `json:"bytes_before"`
	BytesAfter  int64    `json:"bytes_after"`
	RemovedIDs  []string `json:"removed_ids"`
}

// EstimateAtomBytes approximates an atom's storage footprint as the UTF-8
// byte length of its text fields.
func EstimateAtomBytes(row store.AtomRow) int {
	return len(row.Summary) + len(row.Content) + len(row.Tags) + len(row.Entities)
}

// PruneToBudget evicts the lowest-priority atoms from the index until the
// estimated population size fits maxBytes. Pinned atoms are always kept,
// even past the budget. Priority uses the same decay factor as ApplyDecay
// but evaluates it in memory only.
//
// Unless dryRun, removed atoms are deleted from the index; ledger history
// is untouched.
func PruneToBudget(st *store.Store, halfLifeDays float64, maxBytes int64, dryRun bool) (*PruneReport, error) {
	rows, err := st.IterAtomsIndexed()
	if err != nil {
		return nil, err
	}

	var bytesBefore int64
	for _, r := range rows {
		bytesBefore += int64(EstimateAtomBytes(r))
	}

	if bytesBefore <= maxBytes {
		return &PruneReport{
			Kept:        len(rows),
			BytesBefore: bytesBefore,
			BytesAfter:  bytesBefore,
			RemovedIDs:  []string{},
		}, nil
	}

	ts := model.NowISO()
	priority := func(r store.AtomRow) float64 {
		pinned := 0.0
		if r.Pinned {
			pinned = 1.0
		}

		last := r.LastUsedTS
		if last == "" {
			last = r.TS
		}
		wEff := r.W * DecayFactor(last, ts, halfLifeDays)

		used := 0.0
		if r.LastUsedTS != "" {
			used = 1.0
		}
		sizePen := float64(EstimateAtomBytes(r)) / 10000.0
		return 10.0*pinned + 2.2*math.Tanh(wEff/2.0) + 0.9*math.Tanh(float64(r.Uses)/10.0) + 0.25*used - 0.35*sizePen
	}

	type scored struct {
		row store.AtomRow
		pri float64
	}
	rankedScored := make([]scored, len(rows))
	for i, r := range rows {
		rankedScored[i] = scored{r, priority(r)}
	}
	sort.SliceStable(rankedScored, func(i, j int) bool { return rankedScored[i].pri > rankedScored[j].pri })
	ranked := make([]store.AtomRow, len(rankedScored))
	for i, s := range rankedScored {
		ranked[i] = s.row
	}

	kept := make(map[string]struct{}, len(ranked))
	var bytesAfter int64
	for _, r := range ranked {
		b := int64(EstimateAtomBytes(r))
		if bytesAfter+b <= maxBytes || r.Pinned {
			kept[r.AtomID] = struct{}{}
			bytesAfter += b
		}
	}

	rep := &PruneReport{
		Kept:        len(kept),
		BytesBefore: bytesBefore,
		BytesAfter:  bytesAfter,
		RemovedIDs:  []string{},
	}
	for _, r := range ranked {
		if _, ok := kept[r.AtomID]; ok {
			continue
		}
		rep.RemovedIDs = append(rep.RemovedIDs, r.AtomID)
	}
	rep.Removed = len(rep.RemovedIDs)

	if !dryRun {
		for _, id := range rep.RemovedIDs {
			if err := st.DeleteAtom(id); err != nil {
				return nil, err
			}
		}
	}
	return rep, nil
}
