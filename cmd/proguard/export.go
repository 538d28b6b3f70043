// ABOUTME: CLI commands for exporting and restoring training data.
// ABOUTME: Supports JSON, YAML, and a Markdown analysis report.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/proguard/internal/analysis"
	"github.com/harperreed/proguard/internal/report"
	"github.com/harperreed/proguard/internal/storage"
)

var (
	exportOutput  string
	exportAthlete string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export training data",
	Long: `Export training data in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export grouped by athlete (human-readable)
  markdown   Analysis report: metrics table, latest risk and model evaluation

OPTIONS:

  --output, -o    Write to file instead of stdout
  --athlete       Only this athlete (markdown only)

EXAMPLES:

  proguard export json                      # Export all data as JSON
  proguard export json -o backup.json       # Save to file
  proguard export yaml                      # Export as YAML
  proguard export markdown -o report.md     # Write the analysis report`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]

		store, err := openRepo()
		if err != nil {
			return err
		}

		var data []byte
		switch format {
		case "json":
			data, err = storage.ExportJSON(store)
		case "yaml":
			data, err = storage.ExportYAML(store)
		case "markdown":
			var md string
			md, err = exportMarkdown(store, exportAthlete)
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
		}

		return nil
	},
}

func exportMarkdown(store storage.Repository, athlete string) (string, error) {
	filter := storage.RecordFilter{}
	if athlete != "" {
		filter.Athlete = &athlete
	}
	records, err := store.ListRecords(filter)
	if err != nil {
		return "", err
	}
	results, err := analysis.Run(storage.Chronological(records), cfg.AnalysisOptions())
	if err != nil {
		return "", err
	}
	return report.Markdown(results, time.Now()), nil
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore training data from a JSON export",
	Long: `Restore training data from a JSON backup created by 'proguard export json'.

Duplicate entries (same ID) will cause an error.

EXAMPLES:

  proguard restore backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		store, err := openRepo()
		if err != nil {
			return err
		}
		if err := storage.ImportJSON(store, data); err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}

		color.Green("✓ Restored from %s", filename)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportAthlete, "athlete", "", "only this athlete (markdown only)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(restoreCmd)
}
