// ABOUTME: MCP resource implementations for training data.
// ABOUTME: Provides proguard://records/recent and proguard://risk/latest resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/proguard/internal/storage"
)

const (
	recentRecordsURI = "proguard://records/recent"
	latestRiskURI    = "proguard://risk/latest"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentRecordsURI,
		Name:        "Recent Training Records",
		Description: "Last 14 training records across all athletes",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         latestRiskURI,
		Name:        "Latest Injury Risk",
		Description: "Training status and injury-risk tier of each athlete's most recent record",
		MIMEType:    "application/json",
	}, s.handleLatestRiskResource)
}

// Resource handlers

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	records, err := s.repo.ListRecords(storage.RecordFilter{Limit: 14})
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	out := make([]recordOutput, 0, len(records))
	for _, r := range records {
		out = append(out, toRecordOutput(r))
	}

	return jsonResource(recentRecordsURI, map[string]interface{}{
		"records": out,
		"count":   len(out),
	})
}

func (s *Server) handleLatestRiskResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	results, err := s.analyze("")
	if err != nil {
		return nil, fmt.Errorf("failed to assess risk: %w", err)
	}

	athletes := make([]athleteRisk, 0, len(results))
	for _, res := range results {
		athletes = append(athletes, toAthleteRisk(res))
	}

	return jsonResource(latestRiskURI, map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"athletes":     athletes,
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
