// Package app assembles the retrieval engine from configuration. Both
// binaries go through Build so they agree on how components are selected.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"docrag/internal/chunker"
	"docrag/internal/config"
	"docrag/internal/embedding"
	"docrag/internal/embedding/local"
	"docrag/internal/embedding/ollama"
	"docrag/internal/embedding/openai"
	"docrag/internal/engine"
	"docrag/internal/vectorstore"
	"docrag/internal/vectorstore/memory"
	"docrag/internal/vectorstore/qdrant"
)

// Build validates the config and wires chunker, embedder, store, and engine.
// The returned cleanup retires the session and releases store connections;
// call it once the engine is no longer needed.
func Build(cfg *config.AppConfig, log *slog.Logger) (*engine.Engine, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	sp, err := chunker.New(cfg.Chunker.Size, cfg.Chunker.Overlap)
	if err != nil {
		return nil, nil, err
	}

	emb, err := buildEmbedder(cfg.Embedder)
	if err != nil {
		return nil, nil, err
	}
	// A provider that answers health probes gets pinged once up front so a
	// dead backend surfaces at startup instead of on the first ingest.
	if h, ok := emb.(interface{ Healthy(context.Context) bool }); ok {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if !h.Healthy(pingCtx) {
			log.Warn("embedding provider unreachable", "provider", emb.Name())
		}
		cancel()
	}

	builder, closeStore, err := buildStore(cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	eng := engine.New(sp, emb, builder, engine.Options{
		DefaultK:        cfg.Retrieval.TopK,
		ProviderTimeout: time.Duration(cfg.Retrieval.ProviderTimeoutSecs) * time.Second,
		Logger:          log,
	})

	cleanup := func() {
		eng.Close()
		if closeStore != nil {
			if err := closeStore(); err != nil {
				log.Warn("closing vector store", "error", err)
			}
		}
	}
	return eng, cleanup, nil
}

func buildEmbedder(cfg config.EmbedderConfig) (embedding.Embedder, error) {
	switch cfg.Type {
	case "local", "":
		dim := 0
		if cfg.Local != nil {
			dim = cfg.Local.Dimension
		}
		return local.New(dim), nil
	case "openai":
		ocfg := openai.Config{}
		if cfg.OpenAI != nil {
			ocfg = openai.Config{
				BaseURL:   cfg.OpenAI.BaseURL,
				APIKeyEnv: cfg.OpenAI.APIKeyEnv,
				Model:     cfg.OpenAI.Model,
				BatchSize: cfg.OpenAI.BatchSize,
			}
		}
		return openai.New(ocfg)
	case "ollama":
		ocfg := ollama.Config{}
		if cfg.Ollama != nil {
			ocfg = ollama.Config{Host: cfg.Ollama.Host, Model: cfg.Ollama.Model}
		}
		return ollama.New(ocfg), nil
	default:
		return nil, fmt.Errorf("unknown embedder type %q", cfg.Type)
	}
}

func buildStore(cfg config.StoreConfig) (vectorstore.Builder, func() error, error) {
	switch cfg.Type {
	case "memory", "":
		return memory.NewBuilder(), nil, nil
	case "qdrant":
		qcfg := qdrant.Config{}
		if cfg.Qdrant != nil {
			qcfg = qdrant.Config{
				Host:             cfg.Qdrant.Host,
				Port:             cfg.Qdrant.Port,
				CollectionPrefix: cfg.Qdrant.CollectionPrefix,
			}
		}
		qb, err := qdrant.NewBuilder(qcfg)
		if err != nil {
			return nil, nil, err
		}
		return qb, qb.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}
