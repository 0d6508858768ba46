// Package embedding defines the embedding provider contract. Providers turn
// text into fixed-dimension vectors; all vectors produced by one provider
// share the same dimension.
package embedding

import "context"

// Embedder converts text into numeric vector representations. It is the only
// network-bound capability the retrieval engine depends on, so callers pass a
// context and should bound it with a deadline.
//
// EmbedBatch returns one vector per input, aligned by position, and is
// all-or-nothing: on error no partial result is returned.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
