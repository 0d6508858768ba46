package local

import (
	"context"
	"math"
	"testing"
)

func TestEmbed_Deterministic(t *testing.T) {
	e := New(128)
	ctx := context.Background()

	first, err := e.Embed(ctx, "the quick brown fox")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	again, err := e.Embed(ctx, "the quick brown fox")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(first) != len(again) {
		t.Fatalf("dimensions differ: %d vs %d", len(first), len(again))
	}
	for i := range first {
		if first[i] != again[i] {
			t.Fatalf("component %d differs: %v vs %v", i, first[i], again[i])
		}
	}
}

func TestEmbed_FixedDimension(t *testing.T) {
	e := New(64)
	ctx := context.Background()
	for _, text := range []string{"", "one", "a much longer sentence with many more words in it"} {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			t.Fatalf("Embed(%q): %v", text, err)
		}
		if len(vec) != 64 {
			t.Fatalf("Embed(%q) dimension = %d, want 64", text, len(vec))
		}
	}
}

func TestEmbed_UnitNorm(t *testing.T) {
	e := New(128)
	vec, err := e.Embed(context.Background(), "vectors should be normalized to unit length")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	var sum float64
	for _, x := range vec {
		sum += float64(x) * float64(x)
	}
	if math.Abs(math.Sqrt(sum)-1) > 1e-5 {
		t.Fatalf("norm = %v, want 1", math.Sqrt(sum))
	}
}

func TestEmbed_NoTokensIsZeroVector(t *testing.T) {
	e := New(32)
	vec, err := e.Embed(context.Background(), "!!! ... ---")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	for i, x := range vec {
		if x != 0 {
			t.Fatalf("component %d = %v, want zero vector", i, x)
		}
	}
}

func TestEmbedBatch_AlignedWithInput(t *testing.T) {
	e := New(64)
	ctx := context.Background()
	texts := []string{"alpha", "beta", "gamma"}

	batch, err := e.EmbedBatch(ctx, texts)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(batch) != len(texts) {
		t.Fatalf("got %d vectors for %d texts", len(batch), len(texts))
	}
	for i, text := range texts {
		single, err := e.Embed(ctx, text)
		if err != nil {
			t.Fatalf("Embed(%q): %v", text, err)
		}
		for j := range single {
			if batch[i][j] != single[j] {
				t.Fatalf("batch vector %d differs from single embedding of %q", i, text)
			}
		}
	}
}

func TestEmbed_CanceledContext(t *testing.T) {
	e := New(16)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Embed(ctx, "text"); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestNew_DefaultDimension(t *testing.T) {
	if got := New(0).Dimension(); got != DefaultDimension {
		t.Fatalf("Dimension() = %d, want %d", got, DefaultDimension)
	}
}
