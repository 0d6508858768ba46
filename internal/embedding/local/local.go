// Package local provides a deterministic, dependency-free embedder: hashed
// bag-of-words folded into a fixed dimension. It captures no semantics beyond
// token overlap, but it needs no network and always returns the same vector
// for the same text, which makes it the provider of choice for development
// and tests.
package local

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// DefaultDimension is the vector size used when none is configured.
const DefaultDimension = 256

// Embedder hashes tokens into a fixed-size vector and L2-normalizes it.
type Embedder struct {
	dim          int
	tokenPattern *regexp.Regexp
}

// New creates an embedder producing vectors of the given dimension.
func New(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Embedder{
		dim:          dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
	}
}

// Name returns the provider identifier.
func (e *Embedder) Name() string { return "local" }

// Dimension returns the fixed size of produced vectors.
func (e *Embedder) Dimension() int { return e.dim }

// Embed maps text to a vector. Text without any tokens maps to the zero
// vector, which the index scores as similarity 0 against everything.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, e.dim)
	tokens := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	for _, tok := range tokens {
		h := fnv.New32a()
		h.Write([]byte(tok))
		sum := h.Sum32()
		slot := int(sum % uint32(e.dim))
		// Half the hash space contributes negatively so distinct token sets
		// do not all collapse into the positive orthant.
		if sum&0x80000000 != 0 {
			vec[slot] -= 1
		} else {
			vec[slot] += 1
		}
	}
	normalize(vec)
	return vec, nil
}

// EmbedBatch embeds each text in order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// normalize scales v to unit length in place; the zero vector stays zero.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
