// Package vectorstore defines the contracts for building and querying vector
// indexes. An Index is built in one shot and never mutated afterwards; the
// engine publishes a fully built Index atomically, so readers observe either
// the complete old index or the complete new one.
package vectorstore

import (
	"context"

	"docrag/internal/domain"
)

// Index is a fully built collection of (chunk, vector) entries supporting
// cosine similarity search.
type Index interface {
	// Search returns up to min(k, Len()) results sorted by similarity
	// descending, equal scores ordered by insertion. An empty index yields an
	// empty result; a query of the wrong dimension yields
	// domain.ErrDimensionMismatch.
	Search(ctx context.Context, vector []float32, k int) ([]domain.RankedResult, error)
	// Len reports the number of indexed entries.
	Len() int
	// Dimension reports the vector dimension, 0 for an empty index.
	Dimension() int
	// Close releases backend resources tied to this index.
	Close() error
}

// Builder constructs an Index from chunks and their vectors, aligned by
// position. Build is all-or-nothing: it either returns a complete index or an
// error and no index, and it never touches previously built indexes.
type Builder interface {
	Build(ctx context.Context, chunks []string, vectors [][]float32) (Index, error)
}
