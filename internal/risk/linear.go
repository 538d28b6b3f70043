// ABOUTME: Linear probability estimator backed by ordinary least squares.
// ABOUTME: Predictions are clamped into [0,1] so they read as probabilities.
package risk

import (
	"fmt"
	"math"

	"github.com/sajari/regression"

	"github.com/harperreed/proguard/internal/models"
)

// LinearEstimator fits a least-squares model to 0/1 labels.
type LinearEstimator struct{}

type linearModel struct {
	r     *regression.Regression
	width int
}

// Fit trains the regression on the given rows.
func (LinearEstimator) Fit(features [][]float64, labels []bool) (Model, error) {
	width, err := checkShape(features, labels)
	if err != nil {
		return nil, fmt.Errorf("fit linear model: %w", err)
	}

	r := new(regression.Regression)
	r.SetObserved("injured")
	for i := 0; i < width; i++ {
		name := fmt.Sprintf("x%d", i)
		if width == len(models.FeatureNames) {
			name = models.FeatureNames[i]
		}
		r.SetVar(i, name)
	}

	for i, row := range features {
		target := 0.0
		if labels[i] {
			target = 1
		}
		r.Train(regression.DataPoint(target, row))
	}

	if err := r.Run(); err != nil {
		return nil, fmt.Errorf("fit linear model: %w", err)
	}
	return &linearModel{r: r, width: width}, nil
}

// PredictProba evaluates the regression and clamps the result.
func (m *linearModel) PredictProba(x []float64) (float64, error) {
	if len(x) != m.width {
		return 0, fmt.Errorf("got %d features, want %d", len(x), m.width)
	}
	p, err := m.r.Predict(x)
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}
	if math.IsNaN(p) {
		return 0, fmt.Errorf("predict: regression produced NaN")
	}
	return math.Min(1, math.Max(0, p)), nil
}
