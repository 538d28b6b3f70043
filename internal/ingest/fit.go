// ABOUTME: FIT file ingestion for device-recorded sessions.
// ABOUTME: Each session message becomes one training record.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"

	"github.com/harperreed/proguard/internal/models"
)

const (
	invalidUint8  = 0xFF
	invalidUint32 = 0xFFFFFFFF
)

type fitSession struct {
	start   time.Time
	end     time.Time
	seconds float64
	avgHR   float64
}

// ParseFIT reads every session in a FIT activity file.
// Sessions without a summary heart rate fall back to the mean of their record samples.
func ParseFIT(r io.Reader, opts Options) (*Result, error) {
	dec := decoder.New(r)

	var sessions []fitSession
	var samples []hrSample

	for dec.Next() {
		fitData, err := dec.Decode()
		if err != nil {
			return nil, fmt.Errorf("decode FIT file: %w", err)
		}

		for _, msg := range fitData.Messages {
			switch msg.Num {
			case typedef.MesgNumRecord:
				rec := mesgdef.NewRecord(&msg)
				if rec.HeartRate != invalidUint8 && rec.HeartRate > 0 && !rec.Timestamp.IsZero() {
					samples = append(samples, hrSample{at: rec.Timestamp.UTC(), bpm: float64(rec.HeartRate)})
				}

			case typedef.MesgNumSession:
				s := mesgdef.NewSession(&msg)
				timer := s.TotalTimerTime
				if timer == invalidUint32 {
					timer = s.TotalElapsedTime
				}
				fs := fitSession{start: s.StartTime.UTC()}
				if timer != invalidUint32 {
					fs.seconds = float64(timer) / 1000
				}
				fs.end = fs.start.Add(time.Duration(fs.seconds * float64(time.Second)))
				if s.AvgHeartRate != invalidUint8 && s.AvgHeartRate > 0 {
					fs.avgHR = float64(s.AvgHeartRate)
				}
				sessions = append(sessions, fs)
			}
		}
	}

	if len(sessions) == 0 {
		return nil, &models.MalformedRecordError{Field: "session", Err: errors.New("no sessions found in FIT file")}
	}

	result := &Result{}
	for i, s := range sessions {
		if s.avgHR == 0 {
			s.avgHR = meanHR(samples, s.start, s.end)
		}
		if s.start.IsZero() {
			perr := &models.MalformedRecordError{Line: i + 1, Field: FieldDate, Err: errors.New("session has no start time")}
			if !opts.SkipMalformed {
				return nil, perr
			}
			result.Skipped = append(result.Skipped, perr)
			continue
		}
		if s.avgHR == 0 {
			perr := &models.MalformedRecordError{Line: i + 1, Field: FieldHeartRate, Err: errors.New("session has no heart rate data")}
			if !opts.SkipMalformed {
				return nil, perr
			}
			result.Skipped = append(result.Skipped, perr)
			continue
		}

		day := time.Date(s.start.Year(), s.start.Month(), s.start.Day(), 0, 0, 0, 0, time.UTC)
		rec := models.NewTrainingRecord(day, s.seconds/60, s.avgHR).
			WithSource(models.SourceFIT).
			WithAthlete(opts.Athlete)
		result.Records = append(result.Records, *rec)
	}

	return result, nil
}

type hrSample struct {
	at  time.Time
	bpm float64
}

func meanHR(samples []hrSample, start, end time.Time) float64 {
	var sum float64
	var n int
	for _, s := range samples {
		if s.at.Before(start) || s.at.After(end) {
			continue
		}
		sum += s.bpm
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
