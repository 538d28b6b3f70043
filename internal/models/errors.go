// ABOUTME: Error kinds shared by ingestion, metric calculation and risk scoring.
// ABOUTME: Callers match them with errors.As.
package models

import (
	"fmt"
)

// MalformedRecordError reports a missing, mistyped or unparseable input field.
type MalformedRecordError struct {
	Line  int // 1-based input line, 0 when not applicable
	Field string
	Value string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	msg := fmt.Sprintf("malformed record: field %s", e.Field)
	if e.Line > 0 {
		msg = fmt.Sprintf("malformed record on line %d: field %s", e.Line, e.Field)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" (value %q)", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// InsufficientDataError reports that no model can be trained from the usable rows.
type InsufficientDataError struct {
	Usable  int
	Classes int
	Reason  string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %s (%d usable rows, %d classes)", e.Reason, e.Usable, e.Classes)
}

// UndefinedMetricError reports an attempt to classify or score a record whose
// dependent metrics are not defined yet.
type UndefinedMetricError struct {
	Metric string
	Index  int // position in the series, -1 when unknown
}

func (e *UndefinedMetricError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("metric %s is undefined for record %d", e.Metric, e.Index)
	}
	return fmt.Sprintf("metric %s is undefined", e.Metric)
}
