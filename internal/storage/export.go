// ABOUTME: Export and import of training records.
// ABOUTME: Supports JSON (restorable) and YAML (grouped by athlete) formats.
package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harperreed/proguard/internal/models"
)

// ExportVersion is written into every export file.
const ExportVersion = "1.0"

// ExportData represents the full export format for training data.
type ExportData struct {
	Version    string                   `json:"version" yaml:"version"`
	ExportedAt time.Time                `json:"exported_at" yaml:"exported_at"`
	Tool       string                   `json:"tool" yaml:"tool"`
	Records    []*models.TrainingRecord `json:"records" yaml:"records"`
}

// NewExportData wraps records in the export envelope.
func NewExportData(records []*models.TrainingRecord) *ExportData {
	return &ExportData{
		Version:    ExportVersion,
		ExportedAt: time.Now(),
		Tool:       "proguard",
		Records:    records,
	}
}

// GetAllData retrieves all data for export.
func (d *DB) GetAllData() (*ExportData, error) {
	records, err := d.ListRecords(RecordFilter{})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return NewExportData(records), nil
}

// ImportData imports data from an export file. Either every record is
// stored or none is.
func (d *DB) ImportData(data *ExportData) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range data.Records {
		if err := insertRecord(tx, r); err != nil {
			return fmt.Errorf("import record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// ExportJSON exports all data from repo as JSON.
func ExportJSON(repo Repository) ([]byte, error) {
	data, err := repo.GetAllData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data from repo as YAML with records grouped by athlete.
func ExportYAML(repo Repository) ([]byte, error) {
	data, err := repo.GetAllData()
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string                  `yaml:"version"`
		ExportedAt string                  `yaml:"exported_at"`
		Tool       string                  `yaml:"tool"`
		Athletes   map[string][]yamlRecord `yaml:"athletes"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Athletes:   make(map[string][]yamlRecord),
	}

	records := append([]*models.TrainingRecord(nil), data.Records...)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})

	for _, r := range records {
		athlete := r.Athlete
		if athlete == "" {
			athlete = "default"
		}
		yr := yamlRecord{
			ID:              r.ShortID(),
			Date:            r.Date.Format("2006-01-02"),
			DurationMinutes: r.DurationMinutes,
			HeartRateAvg:    r.HeartRateAvg,
			Injured:         r.Injured,
			Source:          r.Source,
		}
		if r.Notes != nil {
			yr.Notes = *r.Notes
		}
		yamlData.Athletes[athlete] = append(yamlData.Athletes[athlete], yr)
	}

	return yaml.Marshal(yamlData)
}

type yamlRecord struct {
	ID              string  `yaml:"id"`
	Date            string  `yaml:"date"`
	DurationMinutes float64 `yaml:"duration_minutes"`
	HeartRateAvg    float64 `yaml:"heart_rate_avg"`
	Injured         *bool   `yaml:"injured,omitempty"`
	Source          string  `yaml:"source,omitempty"`
	Notes           string  `yaml:"notes,omitempty"`
}

// ImportJSON imports data from JSON bytes into repo.
func ImportJSON(repo Repository, data []byte) error {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	if exportData.Version != "" && exportData.Version != ExportVersion {
		return fmt.Errorf("unsupported export version %q", exportData.Version)
	}
	return repo.ImportData(&exportData)
}
