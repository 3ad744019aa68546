package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newAskCmd(configFile *string) *cobra.Command {
	var maxHops int

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer one question from the command line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))

			cfg, logger, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			svc, err := buildServices(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = svc.store.Close() }()

			fmt.Printf("%s %s\n", bold("Question:"), question)
			start := time.Now()
			result, err := svc.orchestrator.Run(cmd.Context(), question, maxHops)
			if err != nil {
				return err
			}
			elapsed := time.Since(start).Round(10 * time.Millisecond)

			fmt.Printf("\n%s %s\n", bold("Answer:"), green(result.Answer))
			fmt.Printf("%s %s\n", bold("Confidence:"), confidenceColor(result.Confidence))
			if result.ReasoningSummary != "" {
				fmt.Printf("\n%s\n%s\n", bold("Reasoning:"), result.ReasoningSummary)
			}

			fmt.Printf("\n%s (%d hops, %s)\n", bold("Evidence trail"), result.NumHops, elapsed)
			for i, query := range result.QueriesUsed {
				fmt.Printf("  %s %s\n", cyan(fmt.Sprintf("hop %d:", i+1)), query)
				if i < len(result.EvidenceSummaries) {
					fmt.Printf("    %s\n", gray(result.EvidenceSummaries[i]))
				}
			}

			if result.Validation.IsSupported {
				fmt.Printf("\n%s %s\n", green("supported:"), gray(result.Validation.SupportingEvidence))
			} else {
				fmt.Printf("\n%s\n", yellow("warning: answer not verified against the evidence"))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxHops, "max-hops", 0, "maximum retrieval hops (default from config)")
	return cmd
}

func confidenceColor(confidence string) string {
	switch confidence {
	case "high":
		return green(confidence)
	case "low":
		return red(confidence)
	default:
		return yellow(confidence)
	}
}
