package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hopqa/internal/dataset"
	"hopqa/internal/evaluation"
	"hopqa/internal/experiment"
)

func newEvalCmd(configFile *string) *cobra.Command {
	var (
		maxExamples int
		maxHops     int
		level       string
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "eval <dataset.json>",
		Short: "Evaluate answer quality on a HotpotQA dump and save the run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			svc, err := buildServices(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = svc.store.Close() }()

			examples, err := dataset.Load(args[0], logger)
			if err != nil {
				return err
			}
			examples = dataset.FilterByLevel(examples, level)
			if maxExamples > 0 && maxExamples < len(examples) {
				examples = examples[:maxExamples]
			}
			if len(examples) == 0 {
				return fmt.Errorf("no examples to evaluate")
			}

			var evaluator evaluation.Evaluator
			for i, ex := range examples {
				result, err := svc.orchestrator.Run(cmd.Context(), ex.Question, maxHops)
				if err != nil {
					logger.Warn("question %s failed: %v", ex.ID, err)
					evaluator.Score(ex.ID, "", ex.Answer, 0)
					continue
				}
				scored := evaluator.Score(ex.ID, result.Answer, ex.Answer, result.NumHops)
				marker := red("✗")
				if scored.ExactMatch {
					marker = green("✓")
				}
				fmt.Printf("%s [%d/%d] %s %s\n", marker, i+1, len(examples),
					gray(ex.Question), fmt.Sprintf("f1=%.2f", scored.F1))
			}

			metrics := evaluator.Metrics()
			fmt.Printf("\n%s em=%.3f f1=%.3f avg_hops=%.2f (n=%d)\n",
				bold("Overall:"), metrics.ExactMatch, metrics.F1, metrics.AvgHops, metrics.TotalExamples)

			tracker, err := experiment.NewTracker(cfg.QA.ExperimentDir, logger)
			if err != nil {
				return err
			}
			id, err := tracker.Save(experiment.Experiment{
				Name:        name,
				Description: description,
				Config: map[string]any{
					"max_hops":   cfg.QA.MaxHops,
					"retrieve_k": cfg.QA.RetrieveK,
					"rank_top_k": cfg.QA.RankTopK,
					"model":      cfg.LLM.Model,
					"level":      level,
				},
				Metrics: map[string]float64{
					"exact_match":    metrics.ExactMatch,
					"f1":             metrics.F1,
					"avg_hops":       metrics.AvgHops,
					"total_examples": float64(metrics.TotalExamples),
				},
			})
			if err != nil {
				return err
			}
			fmt.Printf("%s %s\n", green("Saved experiment:"), id)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxExamples, "max-examples", 50, "how many questions to evaluate (0 = all)")
	cmd.Flags().IntVar(&maxHops, "max-hops", 0, "maximum retrieval hops (default from config)")
	cmd.Flags().StringVar(&level, "level", "", "keep only examples of this difficulty")
	cmd.Flags().StringVar(&name, "name", "eval", "experiment name")
	cmd.Flags().StringVar(&description, "description", "", "experiment description")
	return cmd
}
