// ABOUTME: CLI command for logging a single training session.
// ABOUTME: Validates the same fields as file ingestion.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/proguard/internal/ingest"
	"github.com/harperreed/proguard/internal/models"
)

var (
	addDate     string
	addDuration float64
	addHR       float64
	addInjured  string
	addAthlete  string
	addNotes    string
)

var addCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"a"},
	Short:   "Log a training session",
	Long: `Log a training session with its duration and average heart rate.

The injury label is optional. Unlabelled sessions still get metrics but are
left out of model training.

Examples:
  proguard add --duration 60 --hr 145
  proguard add --date 2024-03-02 --duration 90 --hr 162 --injured false
  proguard add --duration 45 --hr 170 --athlete alice --notes "intervals"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		date := time.Now()
		if addDate != "" {
			t, err := ingest.ParseDate(addDate)
			if err != nil {
				return fmt.Errorf("invalid date: %s", addDate)
			}
			date = t
		}
		if addDuration < 0 {
			return &models.MalformedRecordError{Field: ingest.FieldDuration, Value: fmt.Sprint(addDuration), Err: fmt.Errorf("must not be negative")}
		}
		if addHR <= 0 {
			return &models.MalformedRecordError{Field: ingest.FieldHeartRate, Value: fmt.Sprint(addHR), Err: fmt.Errorf("must be positive")}
		}

		r := models.NewTrainingRecord(date, addDuration, addHR)
		if addAthlete != "" {
			r.WithAthlete(addAthlete)
		}
		if addInjured != "" {
			injured, err := ingest.ParseBool(addInjured)
			if err != nil {
				return fmt.Errorf("invalid --injured value: %s", addInjured)
			}
			r.WithInjured(injured)
		}
		if addNotes != "" {
			r.WithNotes(addNotes)
		}

		store, err := openRepo()
		if err != nil {
			return err
		}
		if err := store.CreateRecord(r); err != nil {
			return fmt.Errorf("failed to create record: %w", err)
		}

		color.Green("✓ Added session")
		fmt.Printf("  %s %s %.0f min @ %.0f bpm\n",
			color.New(color.Faint).Sprint(r.ShortID()),
			r.Date.Format("2006-01-02"),
			r.DurationMinutes, r.HeartRateAvg)

		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addDate, "date", "", "session date (YYYY-MM-DD, default today)")
	addCmd.Flags().Float64Var(&addDuration, "duration", 0, "duration in minutes")
	addCmd.Flags().Float64Var(&addHR, "hr", 0, "average heart rate (bpm)")
	addCmd.Flags().StringVar(&addInjured, "injured", "", "injury outcome (true/false)")
	addCmd.Flags().StringVar(&addAthlete, "athlete", "", "athlete name")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "notes for the session")
	_ = addCmd.MarkFlagRequired("duration")
	_ = addCmd.MarkFlagRequired("hr")
	rootCmd.AddCommand(addCmd)
}
