// ABOUTME: Tests for the SQLite Repository implementation.
// ABOUTME: Verifies record CRUD, prefix lookup and filtering.
package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/proguard/internal/models"
)

func day(d int) time.Time {
	return time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func TestCreateAndGetRecord(t *testing.T) {
	db := setupTestDB(t)

	r := models.NewTrainingRecord(day(0), 45, 150).
		WithAthlete("ana").
		WithInjured(true).
		WithNotes("intervals")

	if err := db.CreateRecord(r); err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}

	got, err := db.GetRecord(r.ID.String())
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}

	if got.ID != r.ID {
		t.Errorf("ID mismatch: got %v, want %v", got.ID, r.ID)
	}
	if got.Athlete != "ana" {
		t.Errorf("Athlete mismatch: got %q, want ana", got.Athlete)
	}
	if !got.Date.Equal(r.Date) {
		t.Errorf("Date mismatch: got %v, want %v", got.Date, r.Date)
	}
	if got.DurationMinutes != 45 || got.HeartRateAvg != 150 {
		t.Errorf("values mismatch: got %v/%v, want 45/150", got.DurationMinutes, got.HeartRateAvg)
	}
	if got.Injured == nil || !*got.Injured {
		t.Errorf("Injured mismatch: got %v, want true", got.Injured)
	}
	if got.Notes == nil || *got.Notes != "intervals" {
		t.Errorf("Notes mismatch: got %v, want 'intervals'", got.Notes)
	}
	if got.Source != models.SourceManual {
		t.Errorf("Source mismatch: got %q, want manual", got.Source)
	}
}

func TestUnlabelledRecordRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	r := models.NewTrainingRecord(day(0), 30, 140)
	if err := db.CreateRecord(r); err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}

	got, err := db.GetRecord(r.ID.String())
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if got.Injured != nil {
		t.Errorf("expected unknown injury label, got %v", *got.Injured)
	}
	if got.Notes != nil {
		t.Errorf("expected nil notes, got %q", *got.Notes)
	}
}

func TestGetRecordByPrefix(t *testing.T) {
	db := setupTestDB(t)

	r := models.NewTrainingRecord(day(0), 30, 140)
	if err := db.CreateRecord(r); err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}

	got, err := db.GetRecord(r.ShortID())
	if err != nil {
		t.Fatalf("GetRecord by prefix failed: %v", err)
	}
	if got.ID != r.ID {
		t.Errorf("ID mismatch: got %v, want %v", got.ID, r.ID)
	}

	if _, err := db.GetRecord("zzzzzzzz"); err == nil {
		t.Error("expected error for unknown prefix")
	}
}

func TestListRecords(t *testing.T) {
	db := setupTestDB(t)

	records := []*models.TrainingRecord{
		models.NewTrainingRecord(day(2), 40, 150).WithAthlete("ana"),
		models.NewTrainingRecord(day(0), 30, 140).WithAthlete("ana"),
		models.NewTrainingRecord(day(1), 50, 160).WithAthlete("ben"),
	}
	for _, r := range records {
		if err := db.CreateRecord(r); err != nil {
			t.Fatalf("CreateRecord failed: %v", err)
		}
	}

	all, err := db.ListRecords(RecordFilter{})
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	if !all[0].Date.Equal(day(2)) || !all[2].Date.Equal(day(0)) {
		t.Errorf("expected most recent first, got %v .. %v", all[0].Date, all[2].Date)
	}

	ana := "ana"
	filtered, err := db.ListRecords(RecordFilter{Athlete: &ana})
	if err != nil {
		t.Fatalf("ListRecords with athlete failed: %v", err)
	}
	if len(filtered) != 2 {
		t.Errorf("expected 2 records for ana, got %d", len(filtered))
	}

	limited, err := db.ListRecords(RecordFilter{Limit: 1})
	if err != nil {
		t.Fatalf("ListRecords with limit failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 record, got %d", len(limited))
	}

	since := day(1)
	recent, err := db.ListRecords(RecordFilter{Since: &since})
	if err != nil {
		t.Fatalf("ListRecords with since failed: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("expected 2 records since day 1, got %d", len(recent))
	}
}

func TestDeleteRecord(t *testing.T) {
	db := setupTestDB(t)

	r := models.NewTrainingRecord(day(0), 30, 140)
	if err := db.CreateRecord(r); err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}

	if err := db.DeleteRecord(r.ShortID()); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}
	if _, err := db.GetRecord(r.ID.String()); err == nil {
		t.Error("expected error getting deleted record")
	}
	if err := db.DeleteRecord(r.ID.String()); err == nil {
		t.Error("expected error deleting twice")
	}
}

func TestListAthletes(t *testing.T) {
	db := setupTestDB(t)

	for _, a := range []string{"ben", "ana", "ben", ""} {
		if err := db.CreateRecord(models.NewTrainingRecord(day(0), 30, 140).WithAthlete(a)); err != nil {
			t.Fatalf("CreateRecord failed: %v", err)
		}
	}

	athletes, err := db.ListAthletes()
	if err != nil {
		t.Fatalf("ListAthletes failed: %v", err)
	}
	want := []string{"", "ana", "ben"}
	if len(athletes) != len(want) {
		t.Fatalf("ListAthletes = %v, want %v", athletes, want)
	}
	for i := range want {
		if athletes[i] != want[i] {
			t.Errorf("athletes[%d] = %q, want %q", i, athletes[i], want[i])
		}
	}
}

func TestChronological(t *testing.T) {
	newestFirst := []*models.TrainingRecord{
		models.NewTrainingRecord(day(2), 30, 140),
		models.NewTrainingRecord(day(1), 30, 140),
		models.NewTrainingRecord(day(0), 30, 140),
	}
	got := Chronological(newestFirst)
	for i := range got {
		if !got[i].Date.Equal(day(i)) {
			t.Errorf("record %d date = %v, want %v", i, got[i].Date, day(i))
		}
	}
}

func TestSameDateKeepsInsertionOrder(t *testing.T) {
	db := setupTestDB(t)

	created := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		r := models.NewTrainingRecord(day(3), float64(10+i), 140)
		r.CreatedAt = created.Add(time.Duration(i) * time.Millisecond)
		if err := db.CreateRecord(r); err != nil {
			t.Fatalf("CreateRecord failed: %v", err)
		}
	}

	records, err := db.ListRecords(RecordFilter{})
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	got := Chronological(records)
	if len(got) != 5 {
		t.Fatalf("Expected 5 records, got %d", len(got))
	}
	for i, r := range got {
		if r.DurationMinutes != float64(10+i) {
			t.Errorf("record %d duration = %v, want %v", i, r.DurationMinutes, 10+i)
		}
	}
}

func TestDataDirHonoursXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	if got := DataDir(); got != "/tmp/xdg-data/proguard" {
		t.Errorf("DataDir() = %q", got)
	}
	if got := DefaultDBPath(); got != "/tmp/xdg-data/proguard/proguard.db" {
		t.Errorf("DefaultDBPath() = %q", got)
	}
}

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "proguard-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	db, err := Open(filepath.Join(tmpDir, DBFileName))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}
