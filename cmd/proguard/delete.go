// ABOUTME: CLI command for deleting training sessions.
// ABOUTME: Supports deletion by full ID or ID prefix.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a training session",
	Long: `Delete a training session by its ID or ID prefix.

You can use either the full UUID or just the first few characters (prefix).
The ID prefix is shown in the first column of 'proguard list' output.

EXAMPLES:

  proguard delete abc12345                  # Delete by 8-char prefix
  proguard rm abc1                          # Short prefix (if unique)

CAUTION:

  This permanently deletes the session and changes the metrics of every
  later session for that athlete. If the prefix matches multiple sessions,
  an error is returned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idOrPrefix := args[0]

		store, err := openRepo()
		if err != nil {
			return err
		}

		r, err := store.GetRecord(idOrPrefix)
		if err != nil {
			return fmt.Errorf("record not found: %s", idOrPrefix)
		}

		if err := store.DeleteRecord(idOrPrefix); err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}

		color.Yellow("✗ Deleted session")
		fmt.Printf("  %s %s %.0f min @ %.0f bpm\n",
			color.New(color.Faint).Sprint(r.ShortID()),
			r.Date.Format("2006-01-02"),
			r.DurationMinutes, r.HeartRateAvg)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
