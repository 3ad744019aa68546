package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hopqa/internal/dataset"
	"hopqa/internal/retrieval"
)

func newIndexCmd(configFile *string) *cobra.Command {
	var (
		maxExamples int
		level       string
		batchSize   int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "index <dataset.json>",
		Short: "Build the vector index from a HotpotQA dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			examples, err := dataset.Load(args[0], logger)
			if err != nil {
				return err
			}
			examples = dataset.FilterByLevel(examples, level)
			passages := dataset.Passages(examples, maxExamples)
			fmt.Printf("%s %d passages from %d examples\n", bold("Extracted"), len(passages), len(examples))

			embedder, err := retrieval.NewEmbedder(retrieval.EmbedderConfig{
				Model:     cfg.Embedding.Model,
				APIKey:    cfg.Embedding.APIKey,
				BaseURL:   cfg.Embedding.BaseURL,
				CacheSize: cfg.Embedding.CacheSize,
			})
			if err != nil {
				return err
			}
			store, err := retrieval.NewVectorStore(retrieval.StoreConfig{
				PersistPath: cfg.Index.PersistPath,
				Collection:  cfg.Index.Collection,
			}, embedder)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			indexer := retrieval.NewIndexer(retrieval.IndexerConfig{
				BatchSize:   batchSize,
				Concurrency: concurrency,
			}, store, embedder, logger)

			n, err := indexer.Index(cmd.Context(), passages)
			if err != nil {
				return err
			}
			fmt.Printf("%s %d passages indexed into %q\n", green("Done:"), n, cfg.Index.Collection)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxExamples, "max-examples", 1000, "limit how many examples feed the corpus (0 = all)")
	cmd.Flags().StringVar(&level, "level", "", "keep only examples of this difficulty (easy, medium, hard)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 100, "passages per embedding request")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "concurrent embedding batches")
	return cmd
}
