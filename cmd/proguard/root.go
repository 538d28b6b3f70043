// ABOUTME: Root Cobra command for the proguard CLI.
// ABOUTME: Loads config before each command and closes the store afterwards.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/proguard/internal/config"
	"github.com/harperreed/proguard/internal/storage"
)

var (
	cfg  *config.Config
	repo storage.Repository
)

var rootCmd = &cobra.Command{
	Use:   "proguard",
	Short: "Training load and injury risk tracker",
	Long: `ProGuard turns a log of training sessions into sports-science load metrics
and an injury-risk estimate.

WHAT IT COMPUTES:

  TRIMP       Training impulse from session duration and average heart rate
  ACWR        Acute:chronic workload ratio (7 and 28 session EWMA)
  Monotony    Mean / standard deviation of TRIMP over the last 7 sessions
  Strain      Weekly load x monotony
  Status      Overtraining (ACWR > 1.5), Undertraining (< 0.8) or Optimal
  Risk        Injury probability from a seeded random forest, tiered Low/Moderate/High

QUICK START:

  $ proguard import training_data.csv          # Load a CSV log (date, duration, heart rate)
  $ proguard add --duration 60 --hr 150        # Log today's session
  $ proguard metrics                           # Derived metrics per session
  $ proguard train                             # Fit the model and print its evaluation
  $ proguard risk                              # Latest status and injury risk

  Analysis commands also read a file directly:

  $ proguard risk --file training_data.csv

VIDEO HIGHLIGHTS:

  $ proguard serve                             # POST /highlight_keypoint/{name}

MCP INTEGRATION:

  Run 'proguard mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "proguard": { "command": "proguard", "args": ["mcp"] }
    }
  }

CONFIGURATION:

  ~/.config/proguard/config.json selects the storage backend ("sqlite" or
  "charm"), athlete heart-rate constants, model settings and server options.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" {
			return nil
		}

		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		cfg = loaded
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeRepo()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// openRepo opens the configured store on first use.
func openRepo() (storage.Repository, error) {
	if repo != nil {
		return repo, nil
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	r, err := cfg.OpenStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	repo = r
	return repo, nil
}

func closeRepo() error {
	if repo == nil {
		return nil
	}
	err := repo.Close()
	repo = nil
	return err
}
