// ABOUTME: SQLite schema for training records.
// ABOUTME: One row per session; derived metrics are never stored.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS training_records (
		id TEXT PRIMARY KEY,
		athlete TEXT NOT NULL DEFAULT '',
		date DATETIME NOT NULL,
		duration_minutes REAL NOT NULL,
		heart_rate_avg REAL NOT NULL,
		injured INTEGER,
		source TEXT NOT NULL DEFAULT 'manual',
		notes TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_records_date ON training_records(date DESC);
	CREATE INDEX IF NOT EXISTS idx_records_athlete_date ON training_records(athlete, date DESC);
	`

	_, err := d.db.Exec(schema)
	return err
}
