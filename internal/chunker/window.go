// Package chunker splits raw document text into fixed-size windows with
// controlled overlap, the unit of retrieval for the vector index.
package chunker

import (
	"fmt"

	"docrag/internal/domain"
)

// Splitter cuts text into windows of at most Size bytes, each window starting
// Size-Overlap bytes after the previous one. Splitting operates on bytes, not
// runes: the same input always yields the same windows, arbitrary (even
// non-UTF-8) content is accepted, and rejoining the windows' non-overlapping
// prefixes reproduces the input exactly.
type Splitter struct {
	size    int
	overlap int
}

// New validates the window geometry. Overlap must leave forward motion:
// 0 <= overlap < size.
func New(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d, must be positive", domain.ErrInvalidChunking, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap %d, must not be negative", domain.ErrInvalidChunking, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d >= chunk size %d", domain.ErrInvalidChunking, overlap, size)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Size returns the configured window size in bytes.
func (s *Splitter) Size() int { return s.size }

// Overlap returns the configured overlap in bytes.
func (s *Splitter) Overlap() int { return s.overlap }

// Split cuts text into chunks. Empty text yields no chunks; any non-empty
// text yields at least one. The final chunk may be shorter than the window.
func (s *Splitter) Split(text string) []string {
	if len(text) == 0 {
		return nil
	}
	stride := s.size - s.overlap
	chunks := make([]string, 0, (len(text)+stride-1)/stride)
	for start := 0; start < len(text); start += stride {
		end := start + s.size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
	}
	return chunks
}

