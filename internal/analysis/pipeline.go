// ABOUTME: Runs the full pipeline per athlete: order, compute metrics, train the
// ABOUTME: risk model and score the most recent record.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/harperreed/proguard/internal/ingest"
	"github.com/harperreed/proguard/internal/load"
	"github.com/harperreed/proguard/internal/models"
	"github.com/harperreed/proguard/internal/risk"
)

// Options bundles the calculator and risk model settings.
type Options struct {
	Params    load.Params
	ModelKind string
	Forest    risk.ForestOptions
	Split     risk.Options
}

// DefaultOptions returns the stock pipeline configuration.
func DefaultOptions() Options {
	return Options{
		Params:    load.DefaultParams(),
		ModelKind: risk.KindForest,
		Forest:    risk.DefaultForestOptions(),
		Split:     risk.DefaultOptions(),
	}
}

// Series is one athlete's ordered records with their derived metrics.
type Series struct {
	Athlete string
	Records []models.TrainingRecord
	Metrics []models.DerivedMetrics
}

// Len returns the number of records in the series.
func (s *Series) Len() int {
	return len(s.Records)
}

// Latest returns the index of the last record, or -1 for an empty series.
func (s *Series) Latest() int {
	return len(s.Records) - 1
}

// Result is the outcome of a full run for one athlete.
type Result struct {
	Series
	Usable     int
	Scorer     *risk.Scorer
	TrainErr   error
	Assessment *risk.Assessment
	AssessErr  error
	// History is the risk percentage per record, NaN where metrics are undefined.
	History []float64
}

// Compute groups records by athlete and derives the metrics of each series.
func Compute(records []models.TrainingRecord, params load.Params) ([]Series, error) {
	calc, err := load.NewCalculator(params)
	if err != nil {
		return nil, err
	}

	var out []Series
	for _, g := range ingest.GroupByAthlete(records) {
		out = append(out, Series{
			Athlete: g.Athlete,
			Records: g.Records,
			Metrics: calc.Compute(g.Records),
		})
	}
	return out, nil
}

// Run computes metrics, trains a model and assesses the latest record for
// every athlete. Training and scoring failures are recorded on the result so
// one athlete with too little data does not hide the others.
func Run(records []models.TrainingRecord, opts Options) ([]Result, error) {
	series, err := Compute(records, opts.Params)
	if err != nil {
		return nil, err
	}

	est, err := risk.NewEstimator(opts.ModelKind, opts.Forest)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(series))
	for _, s := range series {
		results = append(results, analyze(s, est, opts.Split))
	}
	return results, nil
}

func analyze(s Series, est risk.Estimator, split risk.Options) Result {
	res := Result{Series: s}

	samples := risk.Dataset(s.Records, s.Metrics)
	res.Usable = len(samples)

	scorer, err := risk.Train(est, samples, split)
	if err != nil {
		res.TrainErr = err
		return res
	}
	res.Scorer = scorer

	res.History = make([]float64, len(s.Metrics))
	for i, m := range s.Metrics {
		a, err := scorer.Assess(m)
		if err != nil {
			res.History[i] = math.NaN()
			continue
		}
		res.History[i] = a.Percent
	}

	latest := s.Latest()
	a, err := scorer.Assess(s.Metrics[latest])
	if err != nil {
		var undefined *models.UndefinedMetricError
		if errors.As(err, &undefined) {
			undefined.Index = latest
		}
		res.AssessErr = err
		return res
	}
	res.Assessment = &a
	return res
}

// Err summarises why a result has no assessment, or nil when it has one.
func (r *Result) Err() error {
	switch {
	case r.TrainErr != nil:
		return fmt.Errorf("train: %w", r.TrainErr)
	case r.AssessErr != nil:
		return fmt.Errorf("assess latest record: %w", r.AssessErr)
	}
	return nil
}

// DisplayName returns the athlete name or a placeholder for unnamed series.
func (s *Series) DisplayName() string {
	if s.Athlete == "" {
		return "(default)"
	}
	return s.Athlete
}
