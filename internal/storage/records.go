// ABOUTME: Training record CRUD operations for SQLite storage.
// ABOUTME: Implements Repository interface methods for records.
package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/proguard/internal/models"
)

const recordColumns = `id, athlete, date, duration_minutes, heart_rate_avg, injured, source, notes, created_at`

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// CreateRecord stores a new training record in the database.
func (d *DB) CreateRecord(r *models.TrainingRecord) error {
	return insertRecord(d.db, r)
}

func insertRecord(ex execer, r *models.TrainingRecord) error {
	query := `
		INSERT INTO training_records (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	var injured sql.NullBool
	if r.Injured != nil {
		injured = sql.NullBool{Bool: *r.Injured, Valid: true}
	}
	source := r.Source
	if source == "" {
		source = models.SourceManual
	}

	_, err := ex.Exec(query,
		r.ID.String(),
		r.Athlete,
		r.Date.UTC().Format(time.RFC3339),
		r.DurationMinutes,
		r.HeartRateAvg,
		injured,
		source,
		r.Notes,
		r.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

// GetRecord retrieves a record by ID or ID prefix.
func (d *DB) GetRecord(idOrPrefix string) (*models.TrainingRecord, error) {
	id, err := d.resolveRecordID(idOrPrefix)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + recordColumns + ` FROM training_records WHERE id = ?`
	r, err := scanRecord(d.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("not found: %s", idOrPrefix)
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return r, nil
}

// ListRecords retrieves records matching filter, most recent first.
func (d *DB) ListRecords(filter RecordFilter) ([]*models.TrainingRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM training_records`
	var where []string
	var args []interface{}

	if filter.Athlete != nil {
		where = append(where, "athlete = ?")
		args = append(args, *filter.Athlete)
	}
	if filter.Since != nil {
		where = append(where, "date >= ?")
		args = append(args, filter.Since.UTC().Format(time.RFC3339))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	// created_at has second precision; rowid keeps same-second inserts in order.
	query += " ORDER BY date DESC, created_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*models.TrainingRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteRecord removes a record by ID or prefix.
func (d *DB) DeleteRecord(idOrPrefix string) error {
	id, err := d.resolveRecordID(idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	result, err := d.db.Exec("DELETE FROM training_records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("not found: %s", idOrPrefix)
	}

	return nil
}

// ListAthletes returns the distinct athlete names in alphabetical order.
func (d *DB) ListAthletes() ([]string, error) {
	rows, err := d.db.Query(`SELECT DISTINCT athlete FROM training_records ORDER BY athlete`)
	if err != nil {
		return nil, fmt.Errorf("list athletes: %w", err)
	}
	defer rows.Close()

	var athletes []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scan athlete: %w", err)
		}
		athletes = append(athletes, a)
	}
	return athletes, rows.Err()
}

// resolveRecordID finds the full ID from a prefix.
func (d *DB) resolveRecordID(idOrPrefix string) (string, error) {
	if len(idOrPrefix) == 36 && strings.Count(idOrPrefix, "-") == 4 {
		return idOrPrefix, nil
	}
	if idOrPrefix == "" {
		return "", fmt.Errorf("empty record ID")
	}

	rows, err := d.db.Query(`SELECT id FROM training_records WHERE id LIKE ? || '%'`, idOrPrefix)
	if err != nil {
		return "", fmt.Errorf("resolve record ID: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan record ID: %w", err)
		}
		matches = append(matches, id)
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("not found: %s", idOrPrefix)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("ambiguous prefix %s: matches multiple records", idOrPrefix)
	}

	return matches[0], nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*models.TrainingRecord, error) {
	var r models.TrainingRecord
	var idStr, date, createdAt string
	var injured sql.NullBool
	var notes sql.NullString

	err := row.Scan(&idStr, &r.Athlete, &date, &r.DurationMinutes, &r.HeartRateAvg, &injured, &r.Source, &notes, &createdAt)
	if err != nil {
		return nil, err
	}

	r.ID, _ = uuid.Parse(idStr)
	r.Date, _ = time.Parse(time.RFC3339, date)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if injured.Valid {
		v := injured.Bool
		r.Injured = &v
	}
	if notes.Valid {
		r.Notes = &notes.String
	}

	return &r, nil
}
