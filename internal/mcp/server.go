// ABOUTME: MCP server setup for the training-record store.
// ABOUTME: Wraps MCP server with storage Repository and pipeline options.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/proguard/internal/analysis"
	"github.com/harperreed/proguard/internal/storage"
)

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer *mcp.Server
	repo      storage.Repository
	opts      analysis.Options
}

// NewServer creates a new MCP server with the given storage.
func NewServer(repo storage.Repository, opts analysis.Options) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "proguard",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		opts:      opts,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// analyze loads the stored history, optionally for one athlete, and runs the pipeline.
func (s *Server) analyze(athlete string) ([]analysis.Result, error) {
	filter := storage.RecordFilter{}
	if athlete != "" {
		filter.Athlete = &athlete
	}
	records, err := s.repo.ListRecords(filter)
	if err != nil {
		return nil, err
	}
	return analysis.Run(storage.Chronological(records), s.opts)
}
