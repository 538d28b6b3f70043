// ABOUTME: TrainingRecord model for one athlete's training day.
// ABOUTME: Records carry duration, average heart rate, and an optional injury label.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Record sources.
const (
	SourceCSV    = "csv"
	SourceFIT    = "fit"
	SourceManual = "manual"
)

// TrainingRecord represents one athlete's training session for a day.
type TrainingRecord struct {
	ID              uuid.UUID `json:"id"`
	Athlete         string    `json:"athlete,omitempty"`
	Date            time.Time `json:"date"`
	DurationMinutes float64   `json:"duration_minutes"`
	HeartRateAvg    float64   `json:"heart_rate_avg"`
	Injured         *bool     `json:"injured,omitempty"` // nil when the outcome is unknown
	Source          string    `json:"source"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewTrainingRecord creates a new TrainingRecord with generated UUID.
func NewTrainingRecord(date time.Time, durationMinutes, heartRateAvg float64) *TrainingRecord {
	return &TrainingRecord{
		ID:              uuid.New(),
		Date:            date,
		DurationMinutes: durationMinutes,
		HeartRateAvg:    heartRateAvg,
		Source:          SourceManual,
		CreatedAt:       time.Now(),
	}
}

// WithAthlete sets the athlete the record belongs to.
func (r *TrainingRecord) WithAthlete(athlete string) *TrainingRecord {
	r.Athlete = athlete
	return r
}

// WithInjured sets the injury outcome label.
func (r *TrainingRecord) WithInjured(injured bool) *TrainingRecord {
	r.Injured = &injured
	return r
}

// WithSource sets where the record came from.
func (r *TrainingRecord) WithSource(source string) *TrainingRecord {
	r.Source = source
	return r
}

// WithNotes sets notes on the record.
func (r *TrainingRecord) WithNotes(notes string) *TrainingRecord {
	r.Notes = &notes
	return r
}

// Labelled reports whether the injury outcome is known.
func (r *TrainingRecord) Labelled() bool {
	return r.Injured != nil
}

// ShortID returns the 8-character ID prefix used in listings.
func (r *TrainingRecord) ShortID() string {
	return r.ID.String()[:8]
}
