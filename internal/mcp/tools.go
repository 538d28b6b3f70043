// ABOUTME: MCP tool implementations for training records, metrics and risk.
// ABOUTME: Provides record CRUD plus training_metrics and assess_risk.
package mcp

import (
	"context"
	"fmt"
	"math"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/proguard/internal/analysis"
	"github.com/harperreed/proguard/internal/ingest"
	"github.com/harperreed/proguard/internal/models"
	"github.com/harperreed/proguard/internal/storage"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_record",
		Description: "Record a training session (date, duration in minutes, average heart rate, optional injury outcome)",
	}, s.handleAddRecord)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_records",
		Description: "List recent training records, optionally for one athlete",
	}, s.handleListRecords)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_record",
		Description: "Delete a training record by ID or ID prefix",
	}, s.handleDeleteRecord)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "training_metrics",
		Description: "Derived training-load metrics (TRIMP, ACWR, monotony, strain, status) for the most recent records",
	}, s.handleTrainingMetrics)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "assess_risk",
		Description: "Train the injury-risk model on labelled history and score the latest record of each athlete",
	}, s.handleAssessRisk)
}

// Tool input/output types

type addRecordInput struct {
	Date            string  `json:"date" jsonschema:"Session date (YYYY-MM-DD or RFC 3339)"`
	DurationMinutes float64 `json:"duration_minutes" jsonschema:"Session duration in minutes"`
	HeartRateAvg    float64 `json:"heart_rate_avg" jsonschema:"Average heart rate in beats per minute"`
	Injured         *bool   `json:"injured,omitempty" jsonschema:"Injury outcome when known"`
	Athlete         string  `json:"athlete,omitempty" jsonschema:"Athlete name"`
	Notes           string  `json:"notes,omitempty" jsonschema:"Optional notes"`
}

type recordOutput struct {
	ID              string  `json:"id"`
	Athlete         string  `json:"athlete,omitempty"`
	Date            string  `json:"date"`
	DurationMinutes float64 `json:"duration_minutes"`
	HeartRateAvg    float64 `json:"heart_rate_avg"`
	Injured         *bool   `json:"injured,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

type addRecordOutput struct {
	Record  recordOutput `json:"record"`
	Message string       `json:"message"`
}

type listRecordsInput struct {
	Athlete string `json:"athlete,omitempty" jsonschema:"Filter by athlete"`
	Limit   int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type listRecordsOutput struct {
	Records []recordOutput `json:"records"`
	Count   int            `json:"count"`
}

type deleteRecordInput struct {
	ID string `json:"id" jsonschema:"Record ID or prefix"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type trainingMetricsInput struct {
	Athlete string `json:"athlete,omitempty" jsonschema:"Only this athlete"`
	Limit   int    `json:"limit,omitempty" jsonschema:"Most recent rows per athlete (default 14)"`
}

type metricsRow struct {
	Date        string   `json:"date"`
	TRIMP       *float64 `json:"trimp"`
	AcuteLoad   *float64 `json:"acute_load"`
	ChronicLoad *float64 `json:"chronic_load"`
	ACWR        *float64 `json:"acwr"`
	Monotony    *float64 `json:"monotony"`
	WeeklyLoad  *float64 `json:"weekly_load"`
	Strain      *float64 `json:"strain"`
	Status      string   `json:"status"`
}

type athleteMetrics struct {
	Athlete string       `json:"athlete"`
	Rows    []metricsRow `json:"rows"`
}

type trainingMetricsOutput struct {
	Athletes []athleteMetrics `json:"athletes"`
}

type assessRiskInput struct {
	Athlete string `json:"athlete,omitempty" jsonschema:"Only this athlete"`
}

type athleteRisk struct {
	Athlete     string   `json:"athlete"`
	LatestDate  string   `json:"latest_date"`
	Status      string   `json:"status"`
	ACWR        *float64 `json:"acwr"`
	Probability *float64 `json:"probability,omitempty"`
	Percent     *float64 `json:"percent,omitempty"`
	Level       string   `json:"level,omitempty"`
	UsableRows  int      `json:"usable_rows"`
	Accuracy    *float64 `json:"accuracy,omitempty"`
	Error       string   `json:"error,omitempty"`
}

type assessRiskOutput struct {
	Athletes []athleteRisk `json:"athletes"`
}

// Tool handlers

func (s *Server) handleAddRecord(ctx context.Context, req *mcp.CallToolRequest, input addRecordInput) (*mcp.CallToolResult, addRecordOutput, error) {
	date, err := ingest.ParseDate(input.Date)
	if err != nil {
		return nil, addRecordOutput{}, &models.MalformedRecordError{Field: ingest.FieldDate, Value: input.Date, Err: err}
	}
	if input.DurationMinutes < 0 || math.IsNaN(input.DurationMinutes) {
		return nil, addRecordOutput{}, &models.MalformedRecordError{Field: ingest.FieldDuration, Value: fmt.Sprint(input.DurationMinutes), Err: fmt.Errorf("must be >= 0")}
	}
	if input.HeartRateAvg <= 0 || math.IsNaN(input.HeartRateAvg) {
		return nil, addRecordOutput{}, &models.MalformedRecordError{Field: ingest.FieldHeartRate, Value: fmt.Sprint(input.HeartRateAvg), Err: fmt.Errorf("must be > 0")}
	}

	r := models.NewTrainingRecord(date, input.DurationMinutes, input.HeartRateAvg).WithAthlete(input.Athlete)
	if input.Injured != nil {
		r.WithInjured(*input.Injured)
	}
	if input.Notes != "" {
		r.WithNotes(input.Notes)
	}

	if err := s.repo.CreateRecord(r); err != nil {
		return nil, addRecordOutput{}, fmt.Errorf("failed to create record: %w", err)
	}

	return nil, addRecordOutput{
		Record:  toRecordOutput(r),
		Message: fmt.Sprintf("Added %s: %.0f min at %.0f bpm (ID: %s)", r.Date.Format("2006-01-02"), r.DurationMinutes, r.HeartRateAvg, r.ShortID()),
	}, nil
}

func (s *Server) handleListRecords(ctx context.Context, req *mcp.CallToolRequest, input listRecordsInput) (*mcp.CallToolResult, listRecordsOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	filter := storage.RecordFilter{Limit: input.Limit}
	if input.Athlete != "" {
		filter.Athlete = &input.Athlete
	}

	records, err := s.repo.ListRecords(filter)
	if err != nil {
		return nil, listRecordsOutput{}, fmt.Errorf("failed to list records: %w", err)
	}

	out := listRecordsOutput{Records: make([]recordOutput, 0, len(records)), Count: len(records)}
	for _, r := range records {
		out.Records = append(out.Records, toRecordOutput(r))
	}
	return nil, out, nil
}

func (s *Server) handleDeleteRecord(ctx context.Context, req *mcp.CallToolRequest, input deleteRecordInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.repo.DeleteRecord(input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete record: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted record: %s", input.ID),
	}, nil
}

func (s *Server) handleTrainingMetrics(ctx context.Context, req *mcp.CallToolRequest, input trainingMetricsInput) (*mcp.CallToolResult, trainingMetricsOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 14
	}

	results, err := s.analyze(input.Athlete)
	if err != nil {
		return nil, trainingMetricsOutput{}, fmt.Errorf("failed to compute metrics: %w", err)
	}

	out := trainingMetricsOutput{Athletes: make([]athleteMetrics, 0, len(results))}
	for _, res := range results {
		out.Athletes = append(out.Athletes, athleteMetrics{
			Athlete: res.DisplayName(),
			Rows:    metricsRows(res.Series, input.Limit),
		})
	}
	return nil, out, nil
}

func (s *Server) handleAssessRisk(ctx context.Context, req *mcp.CallToolRequest, input assessRiskInput) (*mcp.CallToolResult, assessRiskOutput, error) {
	results, err := s.analyze(input.Athlete)
	if err != nil {
		return nil, assessRiskOutput{}, fmt.Errorf("failed to assess risk: %w", err)
	}
	if len(results) == 0 {
		return nil, assessRiskOutput{}, fmt.Errorf("no training records found")
	}

	out := assessRiskOutput{Athletes: make([]athleteRisk, 0, len(results))}
	for _, res := range results {
		out.Athletes = append(out.Athletes, toAthleteRisk(res))
	}
	return nil, out, nil
}

func toRecordOutput(r *models.TrainingRecord) recordOutput {
	out := recordOutput{
		ID:              r.ShortID(),
		Athlete:         r.Athlete,
		Date:            r.Date.Format("2006-01-02"),
		DurationMinutes: r.DurationMinutes,
		HeartRateAvg:    r.HeartRateAvg,
		Injured:         r.Injured,
	}
	if r.Notes != nil {
		out.Notes = *r.Notes
	}
	return out
}

func metricsRows(s analysis.Series, limit int) []metricsRow {
	start := 0
	if limit > 0 && s.Len() > limit {
		start = s.Len() - limit
	}

	rows := make([]metricsRow, 0, s.Len()-start)
	for i := start; i < s.Len(); i++ {
		m := s.Metrics[i]
		rows = append(rows, metricsRow{
			Date:        s.Records[i].Date.Format("2006-01-02"),
			TRIMP:       models.Defined(m.TRIMP),
			AcuteLoad:   models.Defined(m.AcuteLoad),
			ChronicLoad: models.Defined(m.ChronicLoad),
			ACWR:        models.Defined(m.ACWR),
			Monotony:    models.Defined(m.Monotony),
			WeeklyLoad:  models.Defined(m.WeeklyLoad),
			Strain:      models.Defined(m.Strain),
			Status:      string(m.Status),
		})
	}
	return rows
}

func toAthleteRisk(res analysis.Result) athleteRisk {
	latest := res.Latest()
	m := res.Metrics[latest]

	out := athleteRisk{
		Athlete:    res.DisplayName(),
		LatestDate: res.Records[latest].Date.Format("2006-01-02"),
		Status:     string(m.Status),
		ACWR:       models.Defined(m.ACWR),
		UsableRows: res.Usable,
	}
	if res.Scorer != nil {
		out.Accuracy = models.Defined(res.Scorer.Evaluation.Accuracy)
	}
	if a := res.Assessment; a != nil {
		out.Probability = models.Defined(a.Probability)
		out.Percent = models.Defined(a.Percent)
		out.Level = string(a.Level)
	}
	if err := res.Err(); err != nil {
		out.Error = err.Error()
	}
	return out
}
