// ABOUTME: Chronological ordering and per-athlete grouping of records.
// ABOUTME: Sorting is stable so same-day records keep their input order.
package ingest

import (
	"slices"

	"github.com/harperreed/proguard/internal/models"
)

// Series is one athlete's date-ordered records.
type Series struct {
	Athlete string
	Records []models.TrainingRecord
}

// Order returns a copy of records sorted ascending by date.
// Ties keep their original relative order.
func Order(records []models.TrainingRecord) []models.TrainingRecord {
	ordered := slices.Clone(records)
	slices.SortStableFunc(ordered, func(a, b models.TrainingRecord) int {
		return a.Date.Compare(b.Date)
	})
	return ordered
}

// GroupByAthlete splits records into one ordered series per athlete.
// Athletes appear in the order they are first seen in the input.
func GroupByAthlete(records []models.TrainingRecord) []Series {
	var order []string
	byAthlete := make(map[string][]models.TrainingRecord)
	for _, r := range records {
		if _, seen := byAthlete[r.Athlete]; !seen {
			order = append(order, r.Athlete)
		}
		byAthlete[r.Athlete] = append(byAthlete[r.Athlete], r)
	}

	series := make([]Series, 0, len(order))
	for _, athlete := range order {
		series = append(series, Series{Athlete: athlete, Records: Order(byAthlete[athlete])})
	}
	return series
}

// FilterAthlete returns the records belonging to athlete. An empty athlete matches all.
func FilterAthlete(records []models.TrainingRecord, athlete string) []models.TrainingRecord {
	if athlete == "" {
		return records
	}
	var out []models.TrainingRecord
	for _, r := range records {
		if r.Athlete == athlete {
			out = append(out, r)
		}
	}
	return out
}
