// Package embed provides a tiny local embedder based on stable feature
// hashing. Vectors are deterministic across runs and processes: tokens are
// bucketed with a truncated sha256 digest, never a process-salted hash.
package embed

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
)

// Vector is a sparse, L2-normalized embedding: bucket index -> value.
// The zero-length map is the zero vector.
type Vector map[int]float64

// DefaultDim is the embedding dimension used when none is configured.
const DefaultDim = 256

// Hasher embeds text by hashing tokens into a fixed number of buckets and
// accumulating term frequency.
type Hasher struct {
	dim int
}

// NewHasher returns a Hasher with the given dimension (DefaultDim if <= 0).
func NewHasher(dim int) *Hasher {
	if dim <= 0 {
		dim = DefaultDim
	}
	return &Hasher{dim: dim}
}

// Dim returns the vector dimension.
func (h *Hasher) Dim() int { return h.dim }

// Embed returns the sparse L2-normalized term-frequency vector for text,
// or an empty vector if the text has no tokens.
func (h *Hasher) Embed(text string) Vector {
	toks := Tokenize(text)
	if len(toks) == 0 {
		return Vector{}
	}

	counts := make(Vector)
	for _, t := range toks {
		idx := int(stableHash64(t) % uint64(h.dim))
		counts[idx]++
	}

	var sum float64
	for _, v := range counts {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	if norm <= 0 {
		return counts
	}
	for k, v := range counts {
		counts[k] = v / norm
	}
	return counts
}

// Cosine computes the dot product of two sparse vectors over their shared
// indices, iterating the smaller map. Zero if either vector is empty.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	var s float64
	for k, va := range a {
		if vb, ok := b[k]; ok {
			s += va * vb
		}
	}
	return s
}

// Tokenize splits text into lowercase runs of letters, digits and
// underscores.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			current.WriteRune(r)
		} else if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// stableHash64 maps a token to a fixed 64-bit value: the first 8 bytes of
// its sha256 digest, big-endian.
func stableHash64(token string) uint64 {
	d := sha256.Sum256([]byte(token))
	return binary.BigEndian.Uint64(d[:8])
}
