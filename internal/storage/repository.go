// ABOUTME: Repository interface for training-record storage.
// ABOUTME: Implemented by the SQLite DB and the Charm KV client.
package storage

import (
	"time"

	"github.com/harperreed/proguard/internal/models"
)

// RecordFilter narrows ListRecords. Zero values mean no filter.
type RecordFilter struct {
	Athlete *string
	Since   *time.Time
	Limit   int
}

// Repository defines the storage interface for training records.
type Repository interface {
	CreateRecord(r *models.TrainingRecord) error
	GetRecord(idOrPrefix string) (*models.TrainingRecord, error)
	// ListRecords returns records most recent first.
	ListRecords(filter RecordFilter) ([]*models.TrainingRecord, error)
	DeleteRecord(idOrPrefix string) error
	ListAthletes() ([]string, error)

	// Export/Import
	GetAllData() (*ExportData, error)
	ImportData(data *ExportData) error

	// Lifecycle
	Close() error
}

// Chronological returns records in ascending date order, the order the
// metric calculator consumes. ListRecords returns them newest first.
func Chronological(records []*models.TrainingRecord) []models.TrainingRecord {
	out := make([]models.TrainingRecord, len(records))
	for i, r := range records {
		out[len(records)-1-i] = *r
	}
	return out
}
