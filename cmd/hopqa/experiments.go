package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hopqa/internal/experiment"
)

func newExperimentsCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "experiments",
		Short: "Inspect saved evaluation runs",
	}
	cmd.AddCommand(newExperimentsListCmd(configFile), newExperimentsCompareCmd(configFile))
	return cmd
}

func openTracker(configFile *string) (*experiment.Tracker, error) {
	cfg, logger, err := loadConfig(*configFile)
	if err != nil {
		return nil, err
	}
	return experiment.NewTracker(cfg.QA.ExperimentDir, logger)
}

func newExperimentsListCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved experiments, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := openTracker(configFile)
			if err != nil {
				return err
			}
			experiments, err := tracker.List()
			if err != nil {
				return err
			}
			if len(experiments) == 0 {
				fmt.Println("No experiments found.")
				return nil
			}
			for _, exp := range experiments {
				fmt.Printf("%s %s %s\n", bold(exp.Name), gray(exp.ID),
					gray(exp.CreatedAt.Format("2006-01-02 15:04")))
				fmt.Printf("  em=%.3f f1=%.3f\n",
					exp.Metrics["exact_match"], exp.Metrics["f1"])
			}
			return nil
		},
	}
}

func newExperimentsCompareCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <name-or-id>...",
		Short: "Compare metrics across experiments",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := openTracker(configFile)
			if err != nil {
				return err
			}
			cmp, err := tracker.Compare(args)
			if err != nil {
				return err
			}
			if len(cmp.Experiments) == 0 {
				return fmt.Errorf("no matching experiments")
			}
			for metric, values := range cmp.Metrics {
				fmt.Printf("%s\n", bold(metric))
				for _, v := range values {
					if v.Value == nil {
						fmt.Printf("  %-30s %s\n", v.Experiment, gray("n/a"))
						continue
					}
					fmt.Printf("  %-30s %.3f\n", v.Experiment, *v.Value)
				}
			}
			return nil
		},
	}
}
