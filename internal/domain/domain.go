package domain

import "time"

// RankedResult pairs a retrieved chunk with its cosine similarity to the query.
// Results are always returned sorted by Score descending; entries with equal
// scores keep the order in which their chunks were indexed.
type RankedResult struct {
	Chunk string  `json:"chunk"`
	Score float32 `json:"score"`
}

// Receipt summarizes a successful ingestion.
type Receipt struct {
	DocumentID string `json:"document_id"`
	Document   string `json:"document"`
	ChunkCount int    `json:"chunk_count"`
}

// Status reports whether a document session is queryable and how big it is.
type Status struct {
	SessionPresent bool      `json:"session_present"`
	ChunkCount     int       `json:"chunk_count"`
	DocumentID     string    `json:"document_id,omitempty"`
	Document       string    `json:"document,omitempty"`
	IndexedAt      time.Time `json:"indexed_at,omitzero"`
}
