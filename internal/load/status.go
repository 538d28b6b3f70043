// ABOUTME: Rule-based training status from the acute:chronic workload ratio.
// ABOUTME: Undefined ratios pass through as StatusUndefined instead of being classified.
package load

import (
	"github.com/harperreed/proguard/internal/models"
)

// Status thresholds on ACWR. Both comparisons are strict.
const (
	OvertrainingACWR  = 1.5
	UndertrainingACWR = 0.8
)

// ClassifyStatus maps an ACWR value to a training status.
func ClassifyStatus(acwr float64) models.TrainingStatus {
	switch {
	case !models.IsDefined(acwr):
		return models.StatusUndefined
	case acwr > OvertrainingACWR:
		return models.StatusOvertraining
	case acwr < UndertrainingACWR:
		return models.StatusUndertraining
	default:
		return models.StatusOptimal
	}
}

// StatusDescription returns a short human-readable explanation of a status.
func StatusDescription(s models.TrainingStatus) string {
	switch s {
	case models.StatusOvertraining:
		return "Acute load well above chronic load - reduce intensity"
	case models.StatusUndertraining:
		return "Acute load well below chronic load - fitness may be declining"
	case models.StatusOptimal:
		return "Acute and chronic load balanced"
	default:
		return "Not enough history to compare loads"
	}
}
