// ABOUTME: CLI command for ingesting training logs from CSV or FIT files.
// ABOUTME: Reports each skipped row when --skip-malformed is set.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/proguard/internal/ingest"
	"github.com/harperreed/proguard/internal/models"
	"github.com/harperreed/proguard/internal/storage"
)

var (
	importAthlete       string
	importSkipMalformed bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import training sessions from CSV or FIT files",
	Long: `Import training sessions from CSV logs or FIT activity files.

CSV FORMAT:

  A header row is required. Recognised columns (case-insensitive):

    date       date, day, session_date
    duration   duration, duration_min, duration_minutes, minutes
    heart rate hr_avg, heart_rate_avg, avg_hr, heart_rate, hr
    injured    injured, injury                (optional, true/false or 1/0)
    athlete    athlete, player, athlete_id    (optional)

FIT FILES:

  Each session message becomes one record using its start time, elapsed time
  and average heart rate.

By default the first malformed row aborts the import and nothing is stored.
With --skip-malformed bad rows are reported and the rest are imported.

EXAMPLES:

  proguard import training_data.csv
  proguard import --athlete alice morning_run.fit
  proguard import --skip-malformed export-*.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := ingest.Options{
			Athlete:       importAthlete,
			SkipMalformed: importSkipMalformed,
		}

		var records []*models.TrainingRecord
		for _, path := range args {
			res, err := ingest.ParseFile(path, opts)
			if err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}
			for _, skipped := range res.Skipped {
				color.Yellow("⚠ %s: skipped %v", path, skipped)
			}
			for i := range res.Records {
				records = append(records, &res.Records[i])
			}
		}

		if len(records) == 0 {
			fmt.Println("No records to import.")
			return nil
		}

		store, err := openRepo()
		if err != nil {
			return err
		}
		if err := store.ImportData(storage.NewExportData(records)); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported %d records", len(records))
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importAthlete, "athlete", "", "athlete for files without an athlete column")
	importCmd.Flags().BoolVar(&importSkipMalformed, "skip-malformed", false, "skip malformed rows instead of aborting")
	rootCmd.AddCommand(importCmd)
}
