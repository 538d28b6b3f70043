// ABOUTME: Trainable probability estimator boundary for the risk scorer.
// ABOUTME: Concrete model families plug in behind Estimator/Model.
package risk

import (
	"fmt"
)

// Estimator kinds accepted in configuration.
const (
	KindForest = "forest"
	KindLinear = "linear"
)

// Estimator fits a binary classifier.
type Estimator interface {
	// Fit trains on rows of features with a matching label per row.
	Fit(features [][]float64, labels []bool) (Model, error)
}

// Model is a fitted classifier.
type Model interface {
	// PredictProba returns the probability in [0,1] that the outcome is positive.
	PredictProba(features []float64) (float64, error)
}

// NewEstimator builds the estimator named by kind.
func NewEstimator(kind string, opts ForestOptions) (Estimator, error) {
	switch kind {
	case "", KindForest:
		return NewRandomForest(opts), nil
	case KindLinear:
		return &LinearEstimator{}, nil
	default:
		return nil, fmt.Errorf("unknown model kind: %q (use %s or %s)", kind, KindForest, KindLinear)
	}
}

func checkShape(features [][]float64, labels []bool) (int, error) {
	if len(features) == 0 {
		return 0, fmt.Errorf("no training rows")
	}
	if len(features) != len(labels) {
		return 0, fmt.Errorf("%d feature rows but %d labels", len(features), len(labels))
	}
	width := len(features[0])
	if width == 0 {
		return 0, fmt.Errorf("feature rows are empty")
	}
	for i, row := range features {
		if len(row) != width {
			return 0, fmt.Errorf("row %d has %d features, want %d", i, len(row), width)
		}
	}
	return width, nil
}
