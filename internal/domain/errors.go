package domain

import "errors"

// Error kinds shared across the engine, stores and providers. Callers match
// them with errors.Is; wrapping sites attach detail with fmt.Errorf("%w: ...").
var (
	// ErrInvalidChunking reports unusable chunk size / overlap parameters.
	ErrInvalidChunking = errors.New("invalid chunking parameters")

	// ErrEmptyDocument reports an ingestion whose text produced zero chunks.
	ErrEmptyDocument = errors.New("document produced no chunks")

	// ErrProvider reports a failed or timed out embedding provider call.
	ErrProvider = errors.New("embedding provider failure")

	// ErrDimensionMismatch reports vectors of differing length being compared
	// or inserted into one index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrNoSession reports a query before any document has been indexed.
	ErrNoSession = errors.New("no document indexed yet")
)
