// ABOUTME: Tests for export, import and migration.
// ABOUTME: Verifies JSON and YAML formats and SQLite-to-SQLite copies.
package storage

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/harperreed/proguard/internal/models"
)

func seed(t *testing.T, db *DB) {
	t.Helper()
	records := []*models.TrainingRecord{
		models.NewTrainingRecord(day(0), 30, 140).WithAthlete("ana").WithInjured(false),
		models.NewTrainingRecord(day(1), 60, 165).WithAthlete("ana").WithInjured(true).WithNotes("hill repeats"),
		models.NewTrainingRecord(day(0), 45, 150),
	}
	for _, r := range records {
		if err := db.CreateRecord(r); err != nil {
			t.Fatalf("CreateRecord failed: %v", err)
		}
	}
}

func TestExportJSON(t *testing.T) {
	db := setupTestDB(t)
	seed(t, db)

	data, err := ExportJSON(db)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	var export ExportData
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if export.Version != ExportVersion {
		t.Errorf("Expected version %s, got %s", ExportVersion, export.Version)
	}
	if export.Tool != "proguard" {
		t.Errorf("Expected tool proguard, got %s", export.Tool)
	}
	if len(export.Records) != 3 {
		t.Errorf("Expected 3 records, got %d", len(export.Records))
	}
	if !strings.Contains(string(data), `"heart_rate_avg"`) {
		t.Error("expected snake_case field names in JSON export")
	}
}

func TestExportYAML(t *testing.T) {
	db := setupTestDB(t)
	seed(t, db)

	data, err := ExportYAML(db)
	if err != nil {
		t.Fatalf("ExportYAML failed: %v", err)
	}

	var parsed struct {
		Tool     string                      `yaml:"tool"`
		Athletes map[string][]map[string]any `yaml:"athletes"`
	}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Failed to parse YAML: %v", err)
	}
	if parsed.Tool != "proguard" {
		t.Errorf("Expected tool proguard, got %s", parsed.Tool)
	}
	if len(parsed.Athletes["ana"]) != 2 {
		t.Errorf("Expected 2 records for ana, got %d", len(parsed.Athletes["ana"]))
	}
	if len(parsed.Athletes["default"]) != 1 {
		t.Errorf("Expected 1 record for default athlete, got %d", len(parsed.Athletes["default"]))
	}
	if parsed.Athletes["ana"][0]["date"] != "2025-05-01" {
		t.Errorf("Expected oldest record first, got %v", parsed.Athletes["ana"][0]["date"])
	}
}

func TestImportJSONRoundTrip(t *testing.T) {
	src := setupTestDB(t)
	seed(t, src)

	data, err := ExportJSON(src)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	dst := setupTestDB(t)
	if err := ImportJSON(dst, data); err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}

	records, err := dst.ListRecords(RecordFilter{})
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records after import, got %d", len(records))
	}

	labelled := 0
	for _, r := range records {
		if r.Labelled() {
			labelled++
		}
	}
	if labelled != 2 {
		t.Errorf("Expected 2 labelled records, got %d", labelled)
	}
}

func TestImportJSONRejectsBadInput(t *testing.T) {
	db := setupTestDB(t)

	if err := ImportJSON(db, []byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if err := ImportJSON(db, []byte(`{"version":"9.9","records":[]}`)); err == nil {
		t.Error("expected error for unsupported version")
	}
}

func TestImportDataIsAllOrNothing(t *testing.T) {
	db := setupTestDB(t)

	existing := models.NewTrainingRecord(day(5), 40, 145)
	if err := db.CreateRecord(existing); err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}

	batch := NewExportData([]*models.TrainingRecord{
		models.NewTrainingRecord(day(0), 30, 140),
		models.NewTrainingRecord(day(1), 35, 142),
		existing,
	})
	if err := db.ImportData(batch); err == nil {
		t.Fatal("expected error for duplicate ID")
	}

	records, err := db.ListRecords(RecordFilter{})
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected only the existing record after failed import, got %d", len(records))
	}
}

func TestMigrateData(t *testing.T) {
	src := setupTestDB(t)
	seed(t, src)
	dst := setupTestDB(t)

	summary, err := MigrateData(src, dst)
	if err != nil {
		t.Fatalf("MigrateData failed: %v", err)
	}
	if summary.Records != 3 || summary.Skipped != 0 {
		t.Errorf("summary = %+v, want 3 migrated", summary)
	}

	summary, err = MigrateData(src, dst)
	if err != nil {
		t.Fatalf("second MigrateData failed: %v", err)
	}
	if summary.Records != 0 || summary.Skipped != 3 {
		t.Errorf("summary = %+v, want 3 skipped", summary)
	}
}
