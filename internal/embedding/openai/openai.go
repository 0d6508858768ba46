// Package openai embeds text through the OpenAI embeddings API or any
// OpenAI-compatible endpoint.
package openai

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"docrag/internal/domain"
)

// Client implements embedding.Embedder on top of go-openai.
type Client struct {
	api       *openai.Client
	model     string
	batchSize int
}

// Config configures the embeddings client. The API key is read from the
// environment so it never lands in config files.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	BatchSize int
}

// New creates a client, reading the API key from cfg.APIKeyEnv.
func New(cfg Config) (*Client, error) {
	keyEnv := cfg.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(keyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", keyEnv)
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 32
	}
	apiCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		api:       openai.NewClientWithConfig(apiCfg),
		model:     model,
		batchSize: batch,
	}, nil
}

// Name returns the provider identifier.
func (c *Client) Name() string { return "openai" }

// Embed returns the embedding vector for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds all texts, issuing one API request per batchSize inputs.
// The result is aligned with the input; any failed request fails the whole
// batch.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		if err := c.embedSlice(ctx, texts[start:end], out[start:end]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// embedSlice fills out with vectors for texts, restoring request order from
// the per-item Index the API reports.
func (c *Client) embedSlice(ctx context.Context, texts []string, out [][]float32) error {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrProvider, err)
	}
	if len(resp.Data) != len(texts) {
		return fmt.Errorf("%w: got %d embeddings for %d inputs", domain.ErrProvider, len(resp.Data), len(texts))
	}
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) || out[d.Index] != nil {
			return fmt.Errorf("%w: unexpected embedding index %d", domain.ErrProvider, d.Index)
		}
		if len(d.Embedding) == 0 {
			return fmt.Errorf("%w: empty embedding at index %d", domain.ErrProvider, d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		out[d.Index] = vec
	}
	for i, v := range out {
		if v == nil {
			return fmt.Errorf("%w: no embedding returned for input %d", domain.ErrProvider, i)
		}
	}
	return nil
}
