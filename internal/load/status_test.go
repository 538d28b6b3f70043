// ABOUTME: Tests for the ACWR status thresholds.
// ABOUTME: Covers both boundaries and undefined ratios.
package load

import (
	"math"
	"testing"

	"github.com/harperreed/proguard/internal/models"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		acwr float64
		want models.TrainingStatus
	}{
		{0.5, models.StatusUndertraining},
		{0.79, models.StatusUndertraining},
		{0.8, models.StatusOptimal},
		{1.0, models.StatusOptimal},
		{1.5, models.StatusOptimal},
		{1.51, models.StatusOvertraining},
		{3, models.StatusOvertraining},
		{math.NaN(), models.StatusUndefined},
		{math.Inf(1), models.StatusUndefined},
	}

	for _, tt := range tests {
		if got := ClassifyStatus(tt.acwr); got != tt.want {
			t.Errorf("ClassifyStatus(%v) = %s, want %s", tt.acwr, got, tt.want)
		}
	}
}

func TestStatusDescription(t *testing.T) {
	for _, s := range []models.TrainingStatus{
		models.StatusOvertraining, models.StatusUndertraining, models.StatusOptimal, models.StatusUndefined,
	} {
		if StatusDescription(s) == "" {
			t.Errorf("StatusDescription(%s) is empty", s)
		}
	}
}
