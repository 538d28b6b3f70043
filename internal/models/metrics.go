// ABOUTME: DerivedMetrics, TrainingStatus and RiskLevel types.
// ABOUTME: Undefined metric values are NaN in memory and null on the wire.
package models

import (
	"math"
)

// TrainingStatus is the coarse label derived from ACWR.
type TrainingStatus string

const (
	StatusOvertraining  TrainingStatus = "Overtraining"
	StatusUndertraining TrainingStatus = "Undertraining"
	StatusOptimal       TrainingStatus = "Optimal"
	StatusUndefined     TrainingStatus = "Undefined"
)

// RiskLevel is the 3-tier injury risk label.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// Feature names in model input order.
const (
	FeatureACWR     = "acwr"
	FeatureTRIMP    = "trimp"
	FeatureMonotony = "monotony"
	FeatureStrain   = "strain"
)

// FeatureNames lists the risk model inputs in order.
var FeatureNames = []string{FeatureACWR, FeatureTRIMP, FeatureMonotony, FeatureStrain}

// DerivedMetrics holds the training-load values computed for one record.
type DerivedMetrics struct {
	HRReserveRatio float64
	TRIMP          float64
	AcuteLoad      float64
	ChronicLoad    float64
	ACWR           float64
	Monotony       float64
	WeeklyLoad     float64
	Strain         float64
	Status         TrainingStatus
}

// Features returns the model input vector [acwr, trimp, monotony, strain].
// It fails with UndefinedMetricError when any input is not yet defined.
func (m DerivedMetrics) Features() ([]float64, error) {
	values := []float64{m.ACWR, m.TRIMP, m.Monotony, m.Strain}
	for i, v := range values {
		if !IsDefined(v) {
			return nil, &UndefinedMetricError{Metric: FeatureNames[i], Index: -1}
		}
	}
	return values, nil
}

// Complete reports whether every model input is defined.
func (m DerivedMetrics) Complete() bool {
	_, err := m.Features()
	return err == nil
}

// IsDefined reports whether v holds a usable value.
func IsDefined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Defined returns a pointer to v, or nil when v is undefined.
// Used for JSON output where NaN cannot be encoded.
func Defined(v float64) *float64 {
	if !IsDefined(v) {
		return nil
	}
	return &v
}
