package engine

import (
	"github.com/dgraph-io/ristretto/v2"

	"github.com/synaptic-ai/synaptic/internal/embed"
)

// vectorCache memoizes atom embedding vectors across queries. Atom content
// is immutable per id, so entries never need invalidation; ristretto
// handles admission and eviction by cost.
type vectorCache struct {
	c *ristretto.Cache[string, embed.Vector]
}

const vectorCacheCost = 16 << 20 // 16MB of sparse vectors

func newVectorCache() (*vectorCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, embed.Vector]{
		NumCounters: 100_000,
		MaxCost:     vectorCacheCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &vectorCache{c: c}, nil
}

func (vc *vectorCache) get(atomID string) (embed.Vector, bool) {
	return vc.c.Get(atomID)
}

func (vc *vectorCache) set(atomID string, v embed.Vector) {
	// 12 bytes per sparse entry (int key + float64 value, amortized).
	vc.c.Set(atomID, v, int64(len(v)*12)+1)
}

func (vc *vectorCache) close() {
	vc.c.Close()
}
