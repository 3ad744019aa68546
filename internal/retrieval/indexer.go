package retrieval

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"hopqa/internal/logging"
)

// IndexerConfig tunes corpus ingestion.
type IndexerConfig struct {
	BatchSize   int // Passages per embedding request, max 100
	Concurrency int // Concurrent embedding batches
}

// Indexer ingests a corpus into the vector store. Batches are embedded
// concurrently through the shared embedder so its cache is warm before the
// store inserts documents one by one.
type Indexer struct {
	config   IndexerConfig
	store    VectorStore
	embedder Embedder
	logger   logging.Logger
}

// NewIndexer creates an indexer over the given store and embedder.
func NewIndexer(config IndexerConfig, store VectorStore, embedder Embedder, logger logging.Logger) *Indexer {
	if config.BatchSize <= 0 || config.BatchSize > 100 {
		config.BatchSize = 100
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}
	return &Indexer{
		config:   config,
		store:    store,
		embedder: embedder,
		logger:   logging.OrNop(logger),
	}
}

// Index embeds and stores all passages, returning the number indexed.
func (ix *Indexer) Index(ctx context.Context, passages []Passage) (int, error) {
	if len(passages) == 0 {
		return 0, nil
	}
	start := time.Now()
	ix.logger.Info("indexing %d passages (batch %d, concurrency %d)",
		len(passages), ix.config.BatchSize, ix.config.Concurrency)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.config.Concurrency)

	for begin := 0; begin < len(passages); begin += ix.config.BatchSize {
		end := begin + ix.config.BatchSize
		if end > len(passages) {
			end = len(passages)
		}
		batch := passages[begin:end]
		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, p := range batch {
				texts[i] = p.Content
			}
			if _, err := ix.embedder.EmbedBatch(gctx, texts); err != nil {
				return fmt.Errorf("embed batch at %d: %w", begin, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	// All embeddings are cached now; Add resolves them without API calls.
	if err := ix.store.Add(ctx, passages); err != nil {
		return 0, fmt.Errorf("store passages: %w", err)
	}

	ix.logger.Info("indexed %d passages in %s", len(passages), time.Since(start).Round(time.Millisecond))
	return len(passages), nil
}
