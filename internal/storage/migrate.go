// ABOUTME: Data migration between proguard storage backends.
// ABOUTME: Copies every training record from source to destination.
package storage

import (
	"fmt"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Records int
	Skipped int
}

// MigrateData copies all records from src to dst. Records whose ID already
// exists in dst are skipped so the copy can be re-run.
func MigrateData(src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	records, err := src.ListRecords(RecordFilter{})
	if err != nil {
		return nil, fmt.Errorf("list source records: %w", err)
	}

	for _, r := range records {
		if _, err := dst.GetRecord(r.ID.String()); err == nil {
			summary.Skipped++
			continue
		}
		if err := dst.CreateRecord(r); err != nil {
			return nil, fmt.Errorf("create record %s: %w", r.ID, err)
		}
		summary.Records++
	}

	return summary, nil
}
