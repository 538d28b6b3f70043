// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for AI assistant integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harperreed/proguard/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP lets AI assistants read and log training sessions and ask for the current
injury-risk assessment. The server communicates via stdin/stdout; logs go to
stderr.

CONFIGURATION:

  {
    "mcpServers": {
      "proguard": {
        "command": "proguard",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  add_record          Log a training session
  list_records        List recent sessions
  delete_record       Delete a session by ID
  training_metrics    Derived load metrics for recent sessions
  assess_risk         Train the model and score the latest session

AVAILABLE RESOURCES:

  proguard://records/recent   Recent sessions
  proguard://risk/latest      Latest risk assessment per athlete`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "proguard-mcp",
		})

		store, err := openRepo()
		if err != nil {
			return err
		}

		server, err := mcp.NewServer(store, cfg.AnalysisOptions())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			logger.Info("shutting down")
			cancel()
		}()

		logger.Info("serving MCP over stdio", "backend", cfg.GetBackend())
		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
