package memory

import (
	"context"
	"errors"
	"math"
	"testing"

	"docrag/internal/domain"
	"docrag/internal/vectorstore"
)

func buildIndex(t *testing.T, chunks []string, vectors [][]float32) vectorstore.Index {
	t.Helper()
	ix, err := NewBuilder().Build(context.Background(), chunks, vectors)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return ix
}

func TestSearch_TieBreakInsertionOrder(t *testing.T) {
	ix := buildIndex(t,
		[]string{"A", "B", "C"},
		[][]float32{{1, 0}, {0, 1}, {1, 0}},
	)
	got, err := ix.Search(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if got[0].Chunk != "A" || got[1].Chunk != "C" {
		t.Errorf("got order [%s, %s], want [A, C]", got[0].Chunk, got[1].Chunk)
	}
	for i, r := range got {
		if math.Abs(float64(r.Score)-1.0) > 1e-6 {
			t.Errorf("result %d score = %v, want 1.0", i, r.Score)
		}
	}
}

func TestSearch_SelfSimilarity(t *testing.T) {
	ix := buildIndex(t,
		[]string{"a", "b"},
		[][]float32{{0.3, 0.4, 0.5}, {-1, 2, -3}},
	)
	got, err := ix.Search(context.Background(), []float32{0.3, 0.4, 0.5}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got[0].Chunk != "a" {
		t.Fatalf("top result = %q, want a", got[0].Chunk)
	}
	if math.Abs(float64(got[0].Score)-1.0) > 1e-6 {
		t.Errorf("self similarity = %v, want 1.0", got[0].Score)
	}
}

func TestSearch_DescendingOrder(t *testing.T) {
	ix := buildIndex(t,
		[]string{"opposite", "orthogonal", "aligned"},
		[][]float32{{-1, 0}, {0, 1}, {2, 0}},
	)
	got, err := ix.Search(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []string{"aligned", "orthogonal", "opposite"}
	for i := range want {
		if got[i].Chunk != want[i] {
			t.Errorf("position %d = %q, want %q", i, got[i].Chunk, want[i])
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("scores not descending at %d: %v > %v", i, got[i].Score, got[i-1].Score)
		}
	}
}

func TestSearch_KExceedsSize(t *testing.T) {
	ix := buildIndex(t,
		[]string{"x", "y"},
		[][]float32{{1, 0}, {0, 1}},
	)
	got, err := ix.Search(context.Background(), []float32{1, 1}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d results, want 2", len(got))
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	ix := buildIndex(t, nil, nil)
	got, err := ix.Search(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d results from empty index, want 0", len(got))
	}
	if ix.Len() != 0 || ix.Dimension() != 0 {
		t.Errorf("empty index Len=%d Dimension=%d, want 0 and 0", ix.Len(), ix.Dimension())
	}
}

func TestSearch_ZeroMagnitude(t *testing.T) {
	ix := buildIndex(t,
		[]string{"zero", "unit"},
		[][]float32{{0, 0}, {1, 0}},
	)

	got, err := ix.Search(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, r := range got {
		if r.Chunk == "zero" && r.Score != 0 {
			t.Errorf("zero entry score = %v, want 0", r.Score)
		}
	}

	got, err = ix.Search(context.Background(), []float32{0, 0}, 2)
	if err != nil {
		t.Fatalf("Search with zero query: %v", err)
	}
	for _, r := range got {
		if r.Score != 0 {
			t.Errorf("score against zero query = %v, want 0", r.Score)
		}
	}
}

func TestSearch_DimensionMismatch(t *testing.T) {
	ix := buildIndex(t,
		[]string{"a"},
		[][]float32{{1, 2, 3}},
	)
	_, err := ix.Search(context.Background(), []float32{1, 2}, 1)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestSearch_RejectsNonPositiveK(t *testing.T) {
	ix := buildIndex(t, []string{"a"}, [][]float32{{1}})
	for _, k := range []int{0, -1} {
		if _, err := ix.Search(context.Background(), []float32{1}, k); err == nil {
			t.Errorf("k=%d: expected error", k)
		}
	}
}

func TestBuild_RejectsMixedDimensions(t *testing.T) {
	_, err := NewBuilder().Build(context.Background(),
		[]string{"a", "b"},
		[][]float32{{1, 0}, {1, 0, 0}},
	)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestBuild_RejectsLengthMismatch(t *testing.T) {
	_, err := NewBuilder().Build(context.Background(),
		[]string{"a", "b"},
		[][]float32{{1, 0}},
	)
	if err == nil {
		t.Fatal("expected error for mismatched chunk and vector counts")
	}
}

func TestBuild_CopiesInput(t *testing.T) {
	chunks := []string{"a"}
	vectors := [][]float32{{1, 0}}
	ix := buildIndex(t, chunks, vectors)

	vectors[0][0] = -1
	chunks[0] = "mutated"

	got, err := ix.Search(context.Background(), []float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got[0].Chunk != "a" {
		t.Errorf("chunk = %q, want the snapshot taken at build", got[0].Chunk)
	}
	if math.Abs(float64(got[0].Score)-1.0) > 1e-6 {
		t.Errorf("score = %v, want 1.0 from the snapshot taken at build", got[0].Score)
	}
}
