// ABOUTME: CLI command that fits the injury-risk model and prints its evaluation.
// ABOUTME: Uses the seeded train/test split from the config.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/proguard/internal/analysis"
	"github.com/harperreed/proguard/internal/report"
)

var trainSource sourceFlags

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the injury-risk model and show its evaluation",
	Long: `Fit the configured estimator on each athlete's labelled sessions and
evaluate it on a held-out split.

Only sessions with an injury label and fully defined metrics (ACWR, TRIMP,
monotony, strain) are used. The split is shuffled with the configured seed
so repeated runs give the same result.

OUTPUT:

  Confusion matrix (rows are actual, columns predicted) and a classification
  report with precision, recall, F1 and support per class, accuracy, macro
  and weighted averages.

EXAMPLES:

  proguard train
  proguard train --file training_data.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := trainSource.load()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No records found.")
			return nil
		}

		opts := cfg.AnalysisOptions()
		results, err := analysis.Run(records, opts)
		if err != nil {
			return err
		}

		var firstErr error
		trained := 0
		for i, res := range results {
			if i > 0 {
				fmt.Fprintln(out)
			}
			report.Heading(out, res.DisplayName())
			fmt.Fprintf(out, "%d sessions, %d usable for training\n", res.Len(), res.Usable)
			if res.Scorer == nil {
				color.New(color.FgYellow).Fprintf(out, "⚠ %v\n", res.TrainErr)
				if firstErr == nil {
					firstErr = res.TrainErr
				}
				continue
			}
			trained++
			report.Evaluation(out, res.Scorer)
		}

		if trained == 0 {
			return fmt.Errorf("no model could be trained: %w", firstErr)
		}
		return nil
	},
}

func init() {
	trainSource.bind(trainCmd)
	rootCmd.AddCommand(trainCmd)
}
