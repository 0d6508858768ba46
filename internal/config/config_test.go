package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Chunker.Size != 1000 || cfg.Chunker.Overlap != 200 {
		t.Errorf("chunker defaults = %d/%d, want 1000/200", cfg.Chunker.Size, cfg.Chunker.Overlap)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("top_k default = %d, want 3", cfg.Retrieval.TopK)
	}
	if cfg.Embedder.Type != "local" || cfg.Store.Type != "memory" {
		t.Errorf("defaults = embedder %q store %q, want local and memory", cfg.Embedder.Type, cfg.Store.Type)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config fails validation: %v", err)
	}
}

func TestLoad_MergesFileWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
embedder:
  type: openai
  openai:
    model: text-embedding-3-large
chunker:
  size: 400
  overlap: 40
store:
  type: qdrant
  qdrant:
    host: qdrant.internal
    port: 6334
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Embedder.OpenAI.Model != "text-embedding-3-large" {
		t.Errorf("model = %q, want the value from the file", cfg.Embedder.OpenAI.Model)
	}
	if cfg.Embedder.OpenAI.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("api_key_env = %q, want the default", cfg.Embedder.OpenAI.APIKeyEnv)
	}
	if cfg.Chunker.Size != 400 || cfg.Chunker.Overlap != 40 {
		t.Errorf("chunker = %d/%d, want 400/40 from the file", cfg.Chunker.Size, cfg.Chunker.Overlap)
	}
	if cfg.Store.Qdrant.Host != "qdrant.internal" {
		t.Errorf("qdrant host = %q, want qdrant.internal", cfg.Store.Qdrant.Host)
	}
	if cfg.Retrieval.TopK != 3 || cfg.Server.Port != 8000 {
		t.Errorf("unset sections not defaulted: top_k=%d port=%d", cfg.Retrieval.TopK, cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	mutate := func(f func(*AppConfig)) *AppConfig {
		cfg := defaultConfig()
		f(cfg)
		return cfg
	}
	cases := []struct {
		name    string
		cfg     *AppConfig
		wantErr bool
	}{
		{"defaults", defaultConfig(), false},
		{"zero chunk size", mutate(func(c *AppConfig) { c.Chunker.Size = 0 }), true},
		{"overlap equals size", mutate(func(c *AppConfig) { c.Chunker.Overlap = c.Chunker.Size }), true},
		{"negative overlap", mutate(func(c *AppConfig) { c.Chunker.Overlap = -1 }), true},
		{"unknown embedder", mutate(func(c *AppConfig) { c.Embedder.Type = "word2vec" }), true},
		{"unknown store", mutate(func(c *AppConfig) { c.Store.Type = "redis" }), true},
		{"zero top_k", mutate(func(c *AppConfig) { c.Retrieval.TopK = 0 }), true},
		{"port out of range", mutate(func(c *AppConfig) { c.Server.Port = 70000 }), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Chunker.Size = 123
	cfg.Chunker.Overlap = 7
	cfg.Embedder.Type = "ollama"
	cfg.Embedder.Ollama = &OllamaEmbedderConfig{Host: "http://ollama:11434", Model: "all-minilm"}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Chunker.Size != 123 || got.Chunker.Overlap != 7 {
		t.Errorf("chunker = %d/%d, want 123/7", got.Chunker.Size, got.Chunker.Overlap)
	}
	if got.Embedder.Type != "ollama" || got.Embedder.Ollama.Model != "all-minilm" {
		t.Errorf("embedder = %+v, want the saved ollama settings", got.Embedder)
	}
}
