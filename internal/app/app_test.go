package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"docrag/internal/config"
)

func defaultTestConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func TestBuild_DefaultConfigEndToEnd(t *testing.T) {
	cfg := defaultTestConfig(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	eng, cleanup, err := Build(cfg, log)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer cleanup()

	ctx := context.Background()
	content := "The reactor manual covers cooling. " + strings.Repeat("Routine padding sentence for volume. ", 40)
	receipt, err := eng.Ingest(ctx, "manual.txt", content)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if receipt.ChunkCount < 2 {
		t.Errorf("chunk count = %d, want the document split across chunks", receipt.ChunkCount)
	}

	results, err := eng.Answer(ctx, "reactor cooling", 2)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if !strings.Contains(results[0].Chunk, "reactor") {
		t.Errorf("top chunk = %q, want the one about the reactor", results[0].Chunk)
	}
}

func TestBuild_RejectsInvalidConfig(t *testing.T) {
	cfg := defaultTestConfig(t)
	cfg.Chunker.Overlap = cfg.Chunker.Size
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, _, err := Build(cfg, log); err == nil {
		t.Fatal("expected error for overlap equal to size")
	}
}
