package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"hopqa/internal/config"
	"hopqa/internal/llm"
	"hopqa/internal/logging"
	"hopqa/internal/multihop"
	"hopqa/internal/oracle"
	"hopqa/internal/retrieval"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func errorText(msg string) string { return red("error: " + msg) }

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "hopqa",
		Short:         "Multi-hop retrieval question answering",
		Long:          "hopqa answers complex questions by iteratively retrieving evidence,\njudging it with an LLM, and synthesizing a final answer.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: ./hopqa.yaml)")

	root.AddCommand(
		newServeCmd(&configFile),
		newAskCmd(&configFile),
		newIndexCmd(&configFile),
		newEvalCmd(&configFile),
		newExperimentsCmd(&configFile),
		newVersionCmd(),
	)
	return root
}

func loadConfig(configFile string) (*config.Config, logging.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	return cfg, logger, nil
}

// services bundles everything a command needs to answer questions.
type services struct {
	store        retrieval.VectorStore
	retriever    *retrieval.Retriever
	orchestrator *multihop.Orchestrator
}

// buildServices constructs the QA stack once; handlers share it read-only.
func buildServices(cfg *config.Config, logger logging.Logger) (*services, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := llm.NewAnthropicClient(cfg.LLM.Model, llm.Config{
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		MaxTokens:  cfg.LLM.MaxTokens,
		Timeout:    cfg.LLM.Timeout,
		MaxRetries: cfg.LLM.MaxRetries,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create LLM client: %w", err)
	}

	embedder, err := retrieval.NewEmbedder(retrieval.EmbedderConfig{
		Model:     cfg.Embedding.Model,
		APIKey:    cfg.Embedding.APIKey,
		BaseURL:   cfg.Embedding.BaseURL,
		CacheSize: cfg.Embedding.CacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	store, err := retrieval.NewVectorStore(retrieval.StoreConfig{
		PersistPath: cfg.Index.PersistPath,
		Collection:  cfg.Index.Collection,
	}, embedder)
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}

	retriever := retrieval.NewRetriever(store, logger)
	reasoner := oracle.New(client, oracle.Config{MaxTokens: cfg.LLM.MaxTokens}, logger)
	orchestrator := multihop.New(retriever, reasoner, multihop.Config{
		MaxHops:          cfg.QA.MaxHops,
		RetrieveK:        cfg.QA.RetrieveK,
		RankTopK:         cfg.QA.RankTopK,
		ContextBudget:    cfg.QA.ContextBudget,
		StepTimeout:      cfg.QA.StepTimeout,
		SynthesisTimeout: cfg.QA.SynthesisTimeout,
	}, logger)

	return &services{
		store:        store,
		retriever:    retriever,
		orchestrator: orchestrator,
	}, nil
}
