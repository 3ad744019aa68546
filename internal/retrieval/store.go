package retrieval

import (
	"context"
	"fmt"
	"path/filepath"

	chromem "github.com/philippgille/chromem-go"
)

// StoreConfig holds vector store configuration.
type StoreConfig struct {
	PersistPath string // Directory holding the persisted index
	Collection  string // Collection name (corpus-specific)
}

// Passage is a stored corpus document.
type Passage struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// SearchResult is one nearest-neighbor match.
type SearchResult struct {
	Passage    Passage
	Similarity float32 // 0.0 to 1.0
}

// VectorStore manages passage embeddings and similarity search. The store is
// read-only during question answering and safe for concurrent queries.
type VectorStore interface {
	// Add adds passages to the store.
	Add(ctx context.Context, passages []Passage) error

	// SearchByText performs similarity search by text query.
	SearchByText(ctx context.Context, queryText string, topK int) ([]SearchResult, error)

	// Count returns total passage count.
	Count() int

	// Close closes the store.
	Close() error
}

// chromemStore implements VectorStore using chromem-go.
type chromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	config     StoreConfig
}

// NewVectorStore creates a vector store, persisted when PersistPath is set.
func NewVectorStore(config StoreConfig, embedder Embedder) (VectorStore, error) {
	if config.Collection == "" {
		config.Collection = "default"
	}

	var db *chromem.DB
	var err error
	if config.PersistPath != "" {
		persistFile := filepath.Join(config.PersistPath, "chromem.gob")
		db, err = chromem.NewPersistentDB(persistFile, false)
		if err != nil {
			return nil, fmt.Errorf("create persistent DB: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	embeddingFunc := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	}

	collection, err := db.GetOrCreateCollection(config.Collection, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &chromemStore{
		db:         db,
		collection: collection,
		config:     config,
	}, nil
}

// Add adds passages to the store.
func (s *chromemStore) Add(ctx context.Context, passages []Passage) error {
	if len(passages) == 0 {
		return nil
	}

	for _, p := range passages {
		err := s.collection.AddDocument(ctx, chromem.Document{
			ID:       p.ID,
			Content:  p.Content,
			Metadata: p.Metadata,
		})
		if err != nil {
			return fmt.Errorf("add passage %s: %w", p.ID, err)
		}
	}
	return nil
}

// SearchByText performs similarity search using a text query.
func (s *chromemStore) SearchByText(ctx context.Context, queryText string, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	// chromem refuses to return more results than stored documents.
	if count := s.collection.Count(); topK > count {
		topK = count
	}
	if topK == 0 {
		return nil, nil
	}

	results, err := s.collection.Query(ctx, queryText, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	searchResults := make([]SearchResult, 0, len(results))
	for _, r := range results {
		searchResults = append(searchResults, SearchResult{
			Passage: Passage{
				ID:       r.ID,
				Content:  r.Content,
				Metadata: r.Metadata,
			},
			Similarity: r.Similarity,
		})
	}
	return searchResults, nil
}

// Count returns total passage count.
func (s *chromemStore) Count() int {
	return s.collection.Count()
}

// Close closes the store.
func (s *chromemStore) Close() error {
	// chromem-go auto-persists on changes, no explicit close needed
	return nil
}
