package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	results []SearchResult
	err     error
	added   []Passage
	count   int
}

func (f *fakeStore) Add(ctx context.Context, passages []Passage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, passages...)
	f.count += len(passages)
	return nil
}

func (f *fakeStore) SearchByText(ctx context.Context, queryText string, topK int) ([]SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if topK > len(f.results) {
		topK = len(f.results)
	}
	return f.results[:topK], nil
}

func (f *fakeStore) Count() int { return f.count }
func (f *fakeStore) Close() error { return nil }

type fakeEmbedder struct {
	mu      sync.Mutex
	batches [][]string
	err     error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.batches = append(f.batches, texts)
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

func TestRetrieveMapsResults(t *testing.T) {
	store := &fakeStore{
		count: 2,
		results: []SearchResult{
			{Passage: Passage{ID: "p1", Content: "Lagaan was directed by Gowariker."}, Similarity: 0.91},
			{Passage: Passage{ID: "p2", Content: "Gowariker is Indian."}, Similarity: 0.84},
		},
	}
	r := NewRetriever(store, nil)

	candidates, err := r.Retrieve(context.Background(), "Lagaan director", 5)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "Lagaan was directed by Gowariker.", candidates[0].Document)
	assert.InDelta(t, 0.91, candidates[0].Score, 1e-6)
	assert.Equal(t, 0, candidates[0].Index)
	assert.Equal(t, 1, candidates[1].Index)
}

func TestRetrieveEmptyStoreFails(t *testing.T) {
	r := NewRetriever(&fakeStore{}, nil)
	_, err := r.Retrieve(context.Background(), "anything", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestRetrieveSearchErrorWrapped(t *testing.T) {
	store := &fakeStore{count: 1, err: errors.New("gob corrupted")}
	r := NewRetriever(store, nil)
	_, err := r.Retrieve(context.Background(), "anything", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gob corrupted")
}

func TestIndexerBatchesAndStores(t *testing.T) {
	store := &fakeStore{}
	embedder := &fakeEmbedder{}
	ix := NewIndexer(IndexerConfig{BatchSize: 2, Concurrency: 2}, store, embedder, nil)

	passages := make([]Passage, 5)
	for i := range passages {
		passages[i] = Passage{ID: fmt.Sprintf("p%d", i), Content: fmt.Sprintf("passage %d", i)}
	}

	n, err := ix.Index(context.Background(), passages)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// 5 passages at batch size 2 makes 3 embedding calls.
	assert.Len(t, embedder.batches, 3)
	assert.Len(t, store.added, 5)
}

func TestIndexerEmptyCorpus(t *testing.T) {
	ix := NewIndexer(IndexerConfig{}, &fakeStore{}, &fakeEmbedder{}, nil)
	n, err := ix.Index(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIndexerEmbedErrorAborts(t *testing.T) {
	store := &fakeStore{}
	embedder := &fakeEmbedder{err: errors.New("rate limited")}
	ix := NewIndexer(IndexerConfig{}, store, embedder, nil)

	_, err := ix.Index(context.Background(), []Passage{{ID: "p0", Content: "text"}})
	require.Error(t, err)
	assert.Empty(t, store.added)
}
