// ABOUTME: CLI command printing derived load metrics per session.
// ABOUTME: Undefined values are shown as "-".
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/proguard/internal/analysis"
	"github.com/harperreed/proguard/internal/report"
)

var (
	metricsSource sourceFlags
	metricsLimit  int
)

var metricsCmd = &cobra.Command{
	Use:     "metrics",
	Aliases: []string{"m"},
	Short:   "Show TRIMP, ACWR, monotony and strain per session",
	Long: `Compute training-load metrics for every session, per athlete.

COLUMNS:

  TRIMP     duration x HR reserve ratio x e^(1.92 x ratio)
  ACUTE     EWMA of TRIMP, span 7
  CHRONIC   EWMA of TRIMP, span 28
  ACWR      ACUTE / CHRONIC
  MONO      mean / std of the last 7 TRIMP values
  WEEKLY    sum of the last 7 TRIMP values
  STRAIN    WEEKLY x MONO
  STATUS    Overtraining, Undertraining or Optimal

Window metrics are "-" until an athlete has 7 sessions.

EXAMPLES:

  proguard metrics                        # All stored sessions
  proguard metrics -n 14                  # Last 14 sessions per athlete
  proguard metrics --file data.csv        # Straight from a file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := metricsSource.load()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No records found.")
			return nil
		}

		series, err := analysis.Compute(records, cfg.Params())
		if err != nil {
			return err
		}
		for i, s := range series {
			if i > 0 {
				fmt.Fprintln(out)
			}
			report.Heading(out, s.DisplayName())
			report.MetricsTable(out, s, metricsLimit)
		}
		return nil
	},
}

func init() {
	metricsSource.bind(metricsCmd)
	metricsCmd.Flags().IntVarP(&metricsLimit, "limit", "n", 0, "only the most recent N sessions per athlete (0 = all)")
	rootCmd.AddCommand(metricsCmd)
}
