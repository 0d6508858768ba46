// Package memory provides an in-memory vector index using brute-force cosine
// similarity. It is the reference backend: exact scores, deterministic
// ordering, no external services.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"

	"docrag/internal/domain"
	"docrag/internal/vectorstore"
)

// Builder builds immutable in-memory indexes.
type Builder struct{}

func NewBuilder() *Builder { return &Builder{} }

// Build validates that chunks and vectors align and share one dimension, then
// snapshots them into an Index. The input slices are copied; callers may reuse
// them afterwards.
func (Builder) Build(ctx context.Context, chunks []string, vectors [][]float32) (vectorstore.Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("build index: %d chunks for %d vectors", len(chunks), len(vectors))
	}
	ix := &Index{
		chunks:  make([]string, len(chunks)),
		vectors: make([][]float32, len(vectors)),
		norms:   make([]float64, len(vectors)),
	}
	copy(ix.chunks, chunks)
	for i, v := range vectors {
		if i == 0 {
			ix.dim = len(v)
		} else if len(v) != ix.dim {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, index has %d",
				domain.ErrDimensionMismatch, i, len(v), ix.dim)
		}
		vec := make([]float32, len(v))
		copy(vec, v)
		ix.vectors[i] = vec
		ix.norms[i] = norm(vec)
	}
	return ix, nil
}

// Index is an immutable snapshot of chunk vectors. All methods are safe for
// concurrent use because nothing is written after Build returns.
type Index struct {
	chunks  []string
	vectors [][]float32
	norms   []float64
	dim     int
}

func (ix *Index) Len() int       { return len(ix.chunks) }
func (ix *Index) Dimension() int { return ix.dim }

func (ix *Index) Close() error { return nil }

// Search scores every entry against the query and returns the top k, ties
// broken by insertion order. A zero-magnitude query or entry scores 0.
func (ix *Index) Search(ctx context.Context, vector []float32, k int) ([]domain.RankedResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k < 1 {
		return nil, fmt.Errorf("search: k must be positive, got %d", k)
	}
	if len(ix.chunks) == 0 {
		return []domain.RankedResult{}, nil
	}
	if len(vector) != ix.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			domain.ErrDimensionMismatch, len(vector), ix.dim)
	}
	qnorm := norm(vector)
	results := make([]domain.RankedResult, len(ix.chunks))
	for i := range ix.chunks {
		var score float32
		if qnorm != 0 && ix.norms[i] != 0 {
			score = float32(dot(ix.vectors[i], vector) / (ix.norms[i] * qnorm))
		}
		results[i] = domain.RankedResult{Chunk: ix.chunks[i], Score: score}
	}
	// Stable sort keeps equal scores in insertion order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

func dot(a, b []float32) float64 {
	sum := 0.0
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(v []float32) float64 {
	sum := 0.0
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
