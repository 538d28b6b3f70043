// ABOUTME: CLI command for copying records between storage backends.
// ABOUTME: Moves data from Charm KV to SQLite or back without duplicating IDs.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/proguard/internal/config"
	"github.com/harperreed/proguard/internal/storage"
)

var (
	migrateFrom   string
	migrateTo     string
	migrateDryRun bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy records between storage backends",
	Long: `Copy training records from one storage backend to another.

Records whose ID already exists in the destination are skipped, so the
command can be re-run safely. The source is left untouched.

USAGE:

  proguard migrate --dry-run                    # Preview charm -> sqlite
  proguard migrate                              # Copy charm -> sqlite
  proguard migrate --from sqlite --to charm     # Copy local data into Charm

AFTER MIGRATION:

  Set "backend" in ~/.config/proguard/config.json to the destination.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateFrom == migrateTo {
			return fmt.Errorf("source and destination are both %q", migrateFrom)
		}

		src, err := openBackend(migrateFrom)
		if err != nil {
			return fmt.Errorf("open %s: %w", migrateFrom, err)
		}
		defer src.Close()

		if migrateDryRun {
			color.Yellow("Dry run mode - no changes will be made")
			data, err := src.GetAllData()
			if err != nil {
				return err
			}
			fmt.Printf("Would copy up to %d records from %s to %s\n", len(data.Records), migrateFrom, migrateTo)
			return nil
		}

		dst, err := openBackend(migrateTo)
		if err != nil {
			return fmt.Errorf("open %s: %w", migrateTo, err)
		}
		defer dst.Close()

		summary, err := storage.MigrateData(src, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		color.Green("✓ Migrated %d records from %s to %s", summary.Records, migrateFrom, migrateTo)
		if summary.Skipped > 0 {
			fmt.Printf("  %d already present\n", summary.Skipped)
		}
		return nil
	},
}

// openBackend opens a store with the current config but a different backend.
func openBackend(backend string) (storage.Repository, error) {
	c := config.Config{}
	if cfg != nil {
		c = *cfg
	}
	c.Backend = backend
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c.OpenStorage()
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", config.BackendCharm, "source backend (sqlite or charm)")
	migrateCmd.Flags().StringVar(&migrateTo, "to", config.BackendSQLite, "destination backend (sqlite or charm)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	rootCmd.AddCommand(migrateCmd)
}
