package retrieval

import (
	"context"
	"fmt"

	"hopqa/internal/logging"
	"hopqa/internal/multihop"
)

// Retriever adapts a VectorStore to the orchestrator's retrieval contract.
// It is stateless across queries and safe for concurrent use.
type Retriever struct {
	store  VectorStore
	logger logging.Logger
}

// NewRetriever wraps a vector store for use by the hop loop.
func NewRetriever(store VectorStore, logger logging.Logger) *Retriever {
	return &Retriever{store: store, logger: logging.OrNop(logger)}
}

// Retrieve returns the k nearest passages for a query. An empty store is an
// error: a run against a missing index should fail loudly, not answer from
// nothing.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]multihop.Candidate, error) {
	if r.store.Count() == 0 {
		return nil, fmt.Errorf("vector store is empty, index the corpus first")
	}

	results, err := r.store.SearchByText(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	candidates := make([]multihop.Candidate, 0, len(results))
	for i, res := range results {
		candidates = append(candidates, multihop.Candidate{
			Document: res.Passage.Content,
			Score:    float64(res.Similarity),
			Index:    i,
		})
	}
	r.logger.Debug("retrieved %d passages for %q", len(candidates), query)
	return candidates, nil
}
