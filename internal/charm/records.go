// ABOUTME: Training record CRUD operations for Charm KV storage.
// ABOUTME: Uses type-prefixed keys and client-side filtering.
package charm

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/harperreed/proguard/internal/models"
	"github.com/harperreed/proguard/internal/storage"
)

var _ storage.Repository = (*Client)(nil)

// CreateRecord stores a new record in the KV store.
func (c *Client) CreateRecord(r *models.TrainingRecord) error {
	if r.Source == "" {
		r.Source = models.SourceManual
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return c.set(RecordPrefix+r.ID.String(), data)
}

// GetRecord retrieves a record by ID or ID prefix.
func (c *Client) GetRecord(idOrPrefix string) (*models.TrainingRecord, error) {
	_, data, err := c.resolveKey(RecordPrefix, idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}

	r, err := unmarshalJSON[models.TrainingRecord](data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return r, nil
}

// ListRecords retrieves records matching filter, most recent first.
func (c *Client) ListRecords(filter storage.RecordFilter) ([]*models.TrainingRecord, error) {
	var records []*models.TrainingRecord
	err := c.scan(RecordPrefix, func(key string, data []byte) error {
		r, err := unmarshalJSON[models.TrainingRecord](data)
		if err != nil {
			return nil // Skip invalid entries
		}
		if filter.Athlete != nil && r.Athlete != *filter.Athlete {
			return nil
		}
		if filter.Since != nil && r.Date.Before(*filter.Since) {
			return nil
		}
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date.Equal(records[j].Date) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].Date.After(records[j].Date)
	})

	if filter.Limit > 0 && len(records) > filter.Limit {
		records = records[:filter.Limit]
	}
	return records, nil
}

// DeleteRecord removes a record by ID or prefix.
func (c *Client) DeleteRecord(idOrPrefix string) error {
	if err := c.deleteByIDPrefix(RecordPrefix, idOrPrefix); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// ListAthletes returns the distinct athlete names in alphabetical order.
func (c *Client) ListAthletes() ([]string, error) {
	records, err := c.ListRecords(storage.RecordFilter{})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var athletes []string
	for _, r := range records {
		if !seen[r.Athlete] {
			seen[r.Athlete] = true
			athletes = append(athletes, r.Athlete)
		}
	}
	sort.Strings(athletes)
	return athletes, nil
}

// RecordIDs returns the full IDs of every stored record.
func (c *Client) RecordIDs() ([]string, error) {
	var ids []string
	err := c.scan(RecordPrefix, func(key string, _ []byte) error {
		ids = append(ids, extractID(key, RecordPrefix))
		return nil
	})
	return ids, err
}

// GetAllData retrieves all data for export.
func (c *Client) GetAllData() (*storage.ExportData, error) {
	records, err := c.ListRecords(storage.RecordFilter{})
	if err != nil {
		return nil, err
	}
	return storage.NewExportData(records), nil
}

// ImportData writes every record in data. Auto-sync is paused for the batch
// and one sync runs at the end.
func (c *Client) ImportData(data *storage.ExportData) error {
	c.mu.Lock()
	prev := c.autoSync
	c.autoSync = false
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.autoSync = prev
		c.mu.Unlock()
		if prev {
			_ = c.Sync()
		}
	}()

	for _, r := range data.Records {
		if err := c.CreateRecord(r); err != nil {
			return fmt.Errorf("import record %s: %w", r.ID, err)
		}
	}
	return nil
}
