// ABOUTME: Shared record loading for the analysis commands.
// ABOUTME: Reads from --file when given, otherwise from the configured store.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/proguard/internal/ingest"
	"github.com/harperreed/proguard/internal/models"
	"github.com/harperreed/proguard/internal/storage"
)

// sourceFlags selects the records an analysis command works on.
type sourceFlags struct {
	file          string
	athlete       string
	skipMalformed bool
}

func (f *sourceFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "analyse a CSV or FIT file instead of the store")
	cmd.Flags().StringVarP(&f.athlete, "athlete", "a", "", "only this athlete")
	cmd.Flags().BoolVar(&f.skipMalformed, "skip-malformed", false, "skip malformed rows in --file")
}

func (f *sourceFlags) reset() {
	*f = sourceFlags{}
}

// load returns the selected records in chronological order.
func (f *sourceFlags) load() ([]models.TrainingRecord, error) {
	if f.file != "" {
		res, err := ingest.ParseFile(f.file, ingest.Options{SkipMalformed: f.skipMalformed})
		if err != nil {
			return nil, err
		}
		for _, skipped := range res.Skipped {
			color.Yellow("⚠ skipped %v", skipped)
		}
		records := res.Records
		if f.athlete != "" {
			records = ingest.FilterAthlete(records, f.athlete)
		}
		return records, nil
	}

	store, err := openRepo()
	if err != nil {
		return nil, err
	}
	filter := storage.RecordFilter{}
	if f.athlete != "" {
		filter.Athlete = &f.athlete
	}
	records, err := store.ListRecords(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return storage.Chronological(records), nil
}
