// ABOUTME: CSV ingestion for training logs.
// ABOUTME: Maps header columns to record fields and validates every row.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/proguard/internal/models"
)

// Field names used in MalformedRecordError.
const (
	FieldDate      = "date"
	FieldDuration  = "duration"
	FieldHeartRate = "heart_rate_avg"
	FieldInjured   = "injured"
	FieldAthlete   = "athlete"
)

// columnAliases lists accepted header spellings per field, compared after normalizing.
var columnAliases = map[string][]string{
	FieldDate:      {"date", "day", "session_date"},
	FieldDuration:  {"duration", "duration_min", "duration_minutes", "minutes"},
	FieldHeartRate: {"hr_avg", "heart_rate_avg", "avg_hr", "heart_rate", "hr"},
	FieldInjured:   {"injured", "injury"},
	FieldAthlete:   {"athlete", "player", "athlete_id"},
}

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// Options controls how a file is mapped to records.
type Options struct {
	// Columns overrides header names per field (keys are the Field* constants).
	Columns map[string]string
	// Athlete is used when the file has no athlete column.
	Athlete string
	// SkipMalformed keeps going past bad rows and reports them in Result.Skipped.
	SkipMalformed bool
}

// Result is the outcome of parsing one input.
type Result struct {
	Records []models.TrainingRecord
	Skipped []*models.MalformedRecordError
}

// ParseCSV reads training records from CSV with a header row.
// Date, duration and heart rate columns are required; injured and athlete are optional.
func ParseCSV(r io.Reader, opts Options) (*Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &models.MalformedRecordError{Line: 1, Field: "header", Err: errors.New("empty input")}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index, err := resolveColumns(header, opts.Columns)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	var line int
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ = reader.FieldPos(0)
		if isBlank(row) {
			continue
		}

		rec, perr := parseRow(row, index, line, opts)
		if perr != nil {
			if opts.SkipMalformed {
				result.Skipped = append(result.Skipped, perr)
				continue
			}
			return nil, perr
		}
		result.Records = append(result.Records, *rec)
	}

	return result, nil
}

// resolveColumns finds the position of every known field in the header.
func resolveColumns(header []string, overrides map[string]string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		positions[normalizeHeader(h)] = i
	}

	index := make(map[string]int)
	for field, aliases := range columnAliases {
		if name, ok := overrides[field]; ok && name != "" {
			aliases = []string{name}
		}
		for _, alias := range aliases {
			if pos, ok := positions[normalizeHeader(alias)]; ok {
				index[field] = pos
				break
			}
		}
	}

	for _, required := range []string{FieldDate, FieldDuration, FieldHeartRate} {
		if _, ok := index[required]; !ok {
			return nil, &models.MalformedRecordError{Line: 1, Field: required, Err: errors.New("column not found in header")}
		}
	}
	return index, nil
}

func parseRow(row []string, index map[string]int, line int, opts Options) (*models.TrainingRecord, *models.MalformedRecordError) {
	cell := func(field string) (string, bool) {
		pos, ok := index[field]
		if !ok || pos >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[pos]), true
	}

	rawDate, _ := cell(FieldDate)
	if rawDate == "" {
		return nil, &models.MalformedRecordError{Line: line, Field: FieldDate, Err: errors.New("missing value")}
	}
	date, err := ParseDate(rawDate)
	if err != nil {
		return nil, &models.MalformedRecordError{Line: line, Field: FieldDate, Value: rawDate, Err: err}
	}

	rawDuration, _ := cell(FieldDuration)
	duration, err := parseNumber(rawDuration)
	if err != nil {
		return nil, &models.MalformedRecordError{Line: line, Field: FieldDuration, Value: rawDuration, Err: err}
	}
	if duration < 0 {
		return nil, &models.MalformedRecordError{Line: line, Field: FieldDuration, Value: rawDuration, Err: errors.New("must not be negative")}
	}

	rawHR, _ := cell(FieldHeartRate)
	hr, err := parseNumber(rawHR)
	if err != nil {
		return nil, &models.MalformedRecordError{Line: line, Field: FieldHeartRate, Value: rawHR, Err: err}
	}

	rec := models.NewTrainingRecord(date, duration, hr).WithSource(models.SourceCSV)
	rec.Athlete = opts.Athlete

	if rawInjured, ok := cell(FieldInjured); ok && rawInjured != "" {
		injured, err := ParseBool(rawInjured)
		if err != nil {
			return nil, &models.MalformedRecordError{Line: line, Field: FieldInjured, Value: rawInjured, Err: err}
		}
		rec.WithInjured(injured)
	}

	if athlete, ok := cell(FieldAthlete); ok && athlete != "" {
		rec.Athlete = athlete
	}

	return rec, nil
}

// ParseDate parses the calendar date formats accepted in training logs.
func ParseDate(s string) (time.Time, error) {
	for _, f := range dateFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}

// ParseBool parses an injury label. Float spellings cover exports that store labels as 0.0/1.0.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "1.0", "true", "t", "yes", "y":
		return true, nil
	case "0", "0.0", "false", "f", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean")
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("missing value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("not a number")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not a finite number")
	}
	return v, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(h)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
