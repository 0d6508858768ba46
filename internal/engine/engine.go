// Package engine coordinates chunking, embedding, and index builds, and
// serves similarity queries against the most recently published session.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"docrag/internal/chunker"
	"docrag/internal/domain"
	"docrag/internal/embedding"
	"docrag/internal/vectorstore"
)

// session is one ingested document with its built index. refs counts the
// publisher (1) plus active readers; whoever drops it to zero closes the
// index, so a replaced session stays alive until its last query finishes.
type session struct {
	index      vectorstore.Index
	documentID string
	document   string
	indexedAt  time.Time

	refs atomic.Int64
}

func newSession(index vectorstore.Index, document string) *session {
	s := &session{
		index:      index,
		documentID: uuid.NewString(),
		document:   document,
		indexedAt:  time.Now().UTC(),
	}
	s.refs.Store(1)
	return s
}

func (s *session) acquire() bool {
	for {
		n := s.refs.Load()
		if n == 0 {
			return false
		}
		if s.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (s *session) release(log *slog.Logger) {
	if s.refs.Add(-1) != 0 {
		return
	}
	if err := s.index.Close(); err != nil {
		log.Warn("closing retired index", "document", s.document, "error", err)
	}
}

type Options struct {
	// DefaultK is used when a query does not ask for a result count.
	DefaultK int
	// ProviderTimeout bounds each call to the embedding provider.
	ProviderTimeout time.Duration
	Logger          *slog.Logger
}

// Engine owns the single resident session. Ingest replaces it atomically;
// Answer and Status read whichever session is published at that moment.
type Engine struct {
	splitter *chunker.Splitter
	embedder embedding.Embedder
	builder  vectorstore.Builder

	defaultK int
	timeout  time.Duration
	log      *slog.Logger

	cur atomic.Pointer[session]
}

func New(splitter *chunker.Splitter, embedder embedding.Embedder, builder vectorstore.Builder, opts Options) *Engine {
	if opts.DefaultK < 1 {
		opts.DefaultK = 3
	}
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{
		splitter: splitter,
		embedder: embedder,
		builder:  builder,
		defaultK: opts.DefaultK,
		timeout:  opts.ProviderTimeout,
		log:      opts.Logger,
	}
}

// Ingest chunks the document, embeds every chunk, builds a fresh index, and
// publishes it as the new session. Nothing is published on any failure: the
// previous session, if any, keeps serving queries untouched.
func (e *Engine) Ingest(ctx context.Context, document, content string) (domain.Receipt, error) {
	start := time.Now()

	chunks := e.splitter.Split(content)
	if len(chunks) == 0 {
		return domain.Receipt{}, fmt.Errorf("%w: %q yielded no chunks", domain.ErrEmptyDocument, document)
	}

	ectx, cancel := context.WithTimeout(ctx, e.timeout)
	vectors, err := e.embedder.EmbedBatch(ectx, chunks)
	cancel()
	if err != nil {
		return domain.Receipt{}, err
	}

	index, err := e.builder.Build(ctx, chunks, vectors)
	if err != nil {
		return domain.Receipt{}, err
	}

	sess := newSession(index, document)
	if old := e.cur.Swap(sess); old != nil {
		old.release(e.log)
	}

	e.log.Info("document ingested",
		"document", document,
		"document_id", sess.documentID,
		"chunks", index.Len(),
		"dimension", index.Dimension(),
		"embedder", e.embedder.Name(),
		"took", time.Since(start))

	return domain.Receipt{
		DocumentID: sess.documentID,
		Document:   document,
		ChunkCount: index.Len(),
	}, nil
}

// Answer embeds the question and returns the top k chunks from the current
// session. k below 1 falls back to the configured default. Without a
// published session it fails with domain.ErrNoSession.
func (e *Engine) Answer(ctx context.Context, question string, k int) ([]domain.RankedResult, error) {
	if k < 1 {
		k = e.defaultK
	}

	sess := e.acquireCurrent()
	if sess == nil {
		return nil, domain.ErrNoSession
	}
	defer sess.release(e.log)

	ectx, cancel := context.WithTimeout(ctx, e.timeout)
	vec, err := e.embedder.Embed(ectx, question)
	cancel()
	if err != nil {
		return nil, err
	}

	return sess.index.Search(ctx, vec, k)
}

// Status reports the published session without touching the provider.
func (e *Engine) Status() domain.Status {
	sess := e.acquireCurrent()
	if sess == nil {
		return domain.Status{}
	}
	defer sess.release(e.log)

	return domain.Status{
		SessionPresent: true,
		ChunkCount:     sess.index.Len(),
		DocumentID:     sess.documentID,
		Document:       sess.document,
		IndexedAt:      sess.indexedAt,
	}
}

// DefaultK reports the result count used when a query does not specify one.
func (e *Engine) DefaultK() int { return e.defaultK }

// Close retires the published session. Its index is released as soon as the
// last in-flight query against it completes.
func (e *Engine) Close() {
	if old := e.cur.Swap(nil); old != nil {
		old.release(e.log)
	}
}

// acquireCurrent pins the published session against concurrent replacement.
// A swap can retire the loaded session before the reference is taken, so
// retry on the freshly published one.
func (e *Engine) acquireCurrent() *session {
	for {
		sess := e.cur.Load()
		if sess == nil {
			return nil
		}
		if sess.acquire() {
			return sess
		}
	}
}
