// ABOUTME: CLI command for listing training sessions.
// ABOUTME: Supports filtering by athlete and limiting results.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/proguard/internal/models"
	"github.com/harperreed/proguard/internal/storage"
)

var (
	listAthlete string
	listLimit   int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List training sessions",
	Long: `List recent training sessions, newest first.

OUTPUT FORMAT:

  Each line shows: ID  DATE  ATHLETE  DURATION  HEART RATE  INJURED  (NOTES)

  The ID is an 8-character prefix you can use with the delete command.
  INJURED is "-" when the outcome is not recorded.

EXAMPLES:

  proguard list                     # Show last 20 sessions
  proguard list --athlete alice     # Only alice's sessions
  proguard list -n 50               # Show last 50 sessions`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openRepo()
		if err != nil {
			return err
		}

		filter := storage.RecordFilter{Limit: listLimit}
		if listAthlete != "" {
			filter.Athlete = &listAthlete
		}
		records, err := store.ListRecords(filter)
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("No records found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, r := range records {
			notes := ""
			if r.Notes != nil && *r.Notes != "" {
				notes = faint.Sprintf(" (%s)", truncate(*r.Notes, 30))
			}
			athlete := r.Athlete
			if athlete == "" {
				athlete = "-"
			}
			fmt.Printf("%s %s %s %6.0f min %4.0f bpm  %s%s\n",
				faint.Sprint(r.ShortID()),
				faint.Sprint(r.Date.Format("2006-01-02")),
				padRight(truncate(athlete, 12), 12),
				r.DurationMinutes,
				r.HeartRateAvg,
				injuredLabel(r),
				notes)
		}

		return nil
	},
}

func injuredLabel(r *models.TrainingRecord) string {
	switch {
	case r.Injured == nil:
		return "-"
	case *r.Injured:
		return color.RedString("injured")
	default:
		return "ok"
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	listCmd.Flags().StringVarP(&listAthlete, "athlete", "a", "", "filter by athlete")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max number of results")
	rootCmd.AddCommand(listCmd)
}
