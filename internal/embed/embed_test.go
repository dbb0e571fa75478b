package embed

import (
	"math"
	"reflect"
	"testing"
)

func TestEmbedDeterministic(t *testing.T) {
	h := NewHasher(256)
	a := h.Embed("ship small patches often")
	b := h.Embed("ship small patches often")
	if !reflect.DeepEqual(a, b) {
		t.Error("identical text should embed to identical vectors")
	}

	h2 := NewHasher(256)
	c := h2.Embed("ship small patches often")
	if !reflect.DeepEqual(a, c) {
		t.Error("vectors should be identical across embedder instances")
	}
}

func TestEmbedNormalized(t *testing.T) {
	h := NewHasher(64)
	v := h.Embed("alpha beta gamma alpha")

	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if math.Abs(math.Sqrt(sum)-1.0) > 1e-9 {
		t.Errorf("norm = %f, want 1.0", math.Sqrt(sum))
	}
}

func TestEmbedEmpty(t *testing.T) {
	h := NewHasher(256)
	if v := h.Embed(""); len(v) != 0 {
		t.Errorf("empty text should embed to zero vector, got %d entries", len(v))
	}
	if v := h.Embed("!!! ... ???"); len(v) != 0 {
		t.Errorf("punctuation-only text should embed to zero vector, got %d entries", len(v))
	}
}

func TestCosine(t *testing.T) {
	h := NewHasher(256)

	v := h.Embed("pattern cohesion meta atoms")
	if got := Cosine(v, v); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("cosine(v, v) = %f, want 1.0", got)
	}

	if got := Cosine(v, Vector{}); got != 0 {
		t.Errorf("cosine against zero vector = %f, want 0", got)
	}
	if got := Cosine(Vector{}, Vector{}); got != 0 {
		t.Errorf("cosine of two zero vectors = %f, want 0", got)
	}

	a := h.Embed("completely different words here")
	sim := Cosine(v, a)
	if sim < 0 || sim > 1 {
		t.Errorf("cosine out of [0,1]: %f", sim)
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Ship SMALL_patches, v2!")
	want := []string{"ship", "small_patches", "v2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tokenize = %v, want %v", got, want)
	}

	if toks := Tokenize(""); len(toks) != 0 {
		t.Errorf("tokenize empty = %v, want none", toks)
	}
}

func TestHasherDefaultDim(t *testing.T) {
	if h := NewHasher(0); h.Dim() != DefaultDim {
		t.Errorf("dim = %d, want %d", h.Dim(), DefaultDim)
	}
}
