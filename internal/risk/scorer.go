// ABOUTME: Builds the labelled dataset, trains and evaluates an estimator,
// ABOUTME: and scores new metric vectors as a tiered injury risk.
package risk

import (
	"fmt"

	"github.com/harperreed/proguard/internal/models"
)

// Sample is one usable training row.
type Sample struct {
	Index    int // position in the source series
	Features []float64
	Injured  bool
}

// Options controls the train/test split.
type Options struct {
	TestFraction float64
	Seed         uint64
}

// DefaultOptions returns an 80/20 split with seed 42.
func DefaultOptions() Options {
	return Options{TestFraction: 0.2, Seed: 42}
}

// Dataset keeps the rows whose features are all defined and whose injury
// label is known. records and metrics are parallel slices.
func Dataset(records []models.TrainingRecord, metrics []models.DerivedMetrics) []Sample {
	var out []Sample
	for i := range records {
		if i >= len(metrics) || records[i].Injured == nil {
			continue
		}
		features, err := metrics[i].Features()
		if err != nil {
			continue
		}
		out = append(out, Sample{Index: i, Features: features, Injured: *records[i].Injured})
	}
	return out
}

// Scorer is a trained risk model plus its held-out evaluation.
type Scorer struct {
	model      Model
	Evaluation Evaluation
	TrainSize  int
	TestSize   int
}

// Assessment is the risk for one metric vector.
type Assessment struct {
	Probability float64          `json:"probability"`
	Percent     float64          `json:"percent"`
	Level       models.RiskLevel `json:"level"`
}

// Train splits samples, fits est on the training part and evaluates on the rest.
func Train(est Estimator, samples []Sample, opts Options) (*Scorer, error) {
	positives := 0
	for _, s := range samples {
		if s.Injured {
			positives++
		}
	}
	classes := 0
	if positives > 0 {
		classes++
	}
	if positives < len(samples) {
		classes++
	}

	switch {
	case len(samples) == 0:
		return nil, &models.InsufficientDataError{Reason: "no rows with complete metrics and a known injury label"}
	case classes < 2:
		return nil, &models.InsufficientDataError{Usable: len(samples), Classes: classes, Reason: "only one outcome class present"}
	}

	trainIdx, testIdx := Split(len(samples), opts.TestFraction, opts.Seed)
	if len(trainIdx) == 0 {
		return nil, &models.InsufficientDataError{Usable: len(samples), Classes: classes, Reason: "training partition is empty"}
	}

	x := make([][]float64, len(trainIdx))
	y := make([]bool, len(trainIdx))
	for i, idx := range trainIdx {
		x[i] = samples[idx].Features
		y[i] = samples[idx].Injured
	}

	model, err := est.Fit(x, y)
	if err != nil {
		return nil, fmt.Errorf("train risk model: %w", err)
	}

	actual := make([]bool, 0, len(testIdx))
	predicted := make([]bool, 0, len(testIdx))
	for _, idx := range testIdx {
		p, err := model.PredictProba(samples[idx].Features)
		if err != nil {
			return nil, fmt.Errorf("evaluate risk model: %w", err)
		}
		actual = append(actual, samples[idx].Injured)
		predicted = append(predicted, p > 0.5)
	}

	return &Scorer{
		model:      model,
		Evaluation: Evaluate(actual, predicted),
		TrainSize:  len(trainIdx),
		TestSize:   len(testIdx),
	}, nil
}

// NewScorer wraps an already fitted model.
func NewScorer(model Model) *Scorer {
	return &Scorer{model: model}
}

// Assess scores one metric vector. Undefined inputs fail with
// UndefinedMetricError.
func (s *Scorer) Assess(m models.DerivedMetrics) (Assessment, error) {
	features, err := m.Features()
	if err != nil {
		return Assessment{}, err
	}
	p, err := s.model.PredictProba(features)
	if err != nil {
		return Assessment{}, fmt.Errorf("score risk: %w", err)
	}
	percent := p * 100
	return Assessment{Probability: p, Percent: percent, Level: LevelFor(percent)}, nil
}
