package retrieval

import (
	"context"
	"testing"
)

// vecEmbedder returns fixed vectors per known text so similarity ordering in
// tests is deterministic. Unknown texts share a default vector.
type vecEmbedder struct {
	vectors map[string][]float32
}

func (v vecEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if vec, ok := v.vectors[text]; ok {
		return vec, nil
	}
	return []float32{0.1, 0.1, 0.1}, nil
}

func (v vecEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := v.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func TestVectorStoreAddAndSearch(t *testing.T) {
	ctx := context.Background()
	embedder := vecEmbedder{vectors: map[string][]float32{
		"Lagaan was directed by Gowariker.": {1, 0, 0},
		"Cricket is played with a bat.":     {0, 1, 0},
		"who directed Lagaan":               {0.9, 0.1, 0},
	}}

	store, err := NewVectorStore(StoreConfig{Collection: "test"}, embedder)
	if err != nil {
		t.Fatalf("new vector store: %v", err)
	}

	passages := []Passage{
		{ID: "p1", Content: "Lagaan was directed by Gowariker.", Metadata: map[string]string{"title": "Lagaan"}},
		{ID: "p2", Content: "Cricket is played with a bat.", Metadata: map[string]string{"title": "Cricket"}},
	}
	if err := store.Add(ctx, passages); err != nil {
		t.Fatalf("add passages: %v", err)
	}
	if got := store.Count(); got != 2 {
		t.Fatalf("expected count 2, got %d", got)
	}

	results, err := store.SearchByText(ctx, "who directed Lagaan", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Passage.ID != "p1" {
		t.Errorf("most similar passage not first: %+v", results[0].Passage)
	}
	if results[0].Similarity <= results[1].Similarity {
		t.Errorf("similarities not descending: %.3f <= %.3f", results[0].Similarity, results[1].Similarity)
	}
	if results[0].Passage.Metadata["title"] != "Lagaan" {
		t.Errorf("metadata lost in round trip: %+v", results[0].Passage.Metadata)
	}
}

func TestVectorStoreTopKClamped(t *testing.T) {
	ctx := context.Background()
	store, err := NewVectorStore(StoreConfig{Collection: "test"}, vecEmbedder{})
	if err != nil {
		t.Fatalf("new vector store: %v", err)
	}

	// Asking an empty collection must not error.
	results, err := store.SearchByText(ctx, "anything", 5)
	if err != nil {
		t.Fatalf("search empty store: %v", err)
	}
	if results != nil {
		t.Errorf("expected no results from empty store, got %d", len(results))
	}

	if err := store.Add(ctx, []Passage{{ID: "p1", Content: "only passage"}}); err != nil {
		t.Fatalf("add: %v", err)
	}
	results, err = store.SearchByText(ctx, "query", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("topK must clamp to stored count, got %d", len(results))
	}
}
