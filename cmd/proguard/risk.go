// ABOUTME: CLI command showing the latest session's status and injury risk.
// ABOUTME: Plots risk over time against the Moderate and High thresholds.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/proguard/internal/analysis"
	"github.com/harperreed/proguard/internal/report"
)

var (
	riskSource  sourceFlags
	riskNoChart bool
	riskWidth   int
)

var riskCmd = &cobra.Command{
	Use:     "risk",
	Aliases: []string{"r"},
	Short:   "Show the latest training status and injury risk",
	Long: `Train the model and score the most recent session of each athlete.

TIERS:

  Low        risk below 30%
  Moderate   30% to 70%
  High       above 70%

The chart shows the model's risk estimate for every session with complete
metrics, with flat lines at 30% and 70%.

EXAMPLES:

  proguard risk
  proguard risk --athlete alice
  proguard risk --file training_data.csv --no-chart`,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := riskSource.load()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No records found.")
			return nil
		}

		results, err := analysis.Run(records, cfg.AnalysisOptions())
		if err != nil {
			return err
		}

		for i, res := range results {
			if i > 0 {
				fmt.Fprintln(out)
			}
			report.Heading(out, res.DisplayName())
			report.Latest(out, res)

			if riskNoChart {
				continue
			}
			if chart := report.RiskChart(res.History, riskWidth); chart != "" {
				fmt.Fprintln(out)
				fmt.Fprintln(out, chart)
			}
		}
		return nil
	},
}

func init() {
	riskSource.bind(riskCmd)
	riskCmd.Flags().BoolVar(&riskNoChart, "no-chart", false, "skip the risk-over-time chart")
	riskCmd.Flags().IntVar(&riskWidth, "width", 60, "chart width in columns")
	rootCmd.AddCommand(riskCmd)
}
