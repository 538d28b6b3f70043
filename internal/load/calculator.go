// ABOUTME: Training-load metric calculator (TRIMP, EWMA loads, ACWR, monotony, strain).
// ABOUTME: Computes metrics left to right as a fold over date-ordered records.
package load

import (
	"fmt"
	"math"

	"github.com/harperreed/proguard/internal/models"
)

// Params configures the metric formulas.
type Params struct {
	RestingHR   float64
	MaxHR       float64
	Coefficient float64 // Banister exponent weighting (1.92 for the male default)
	AcuteSpan   float64
	ChronicSpan float64
	Window      int // trailing window for monotony and weekly load
}

// DefaultParams returns the constants used by the training log analysis.
func DefaultParams() Params {
	return Params{
		RestingHR:   60,
		MaxHR:       200,
		Coefficient: 1.92,
		AcuteSpan:   7,
		ChronicSpan: 28,
		Window:      7,
	}
}

// Validate checks that the parameters produce defined formulas.
func (p Params) Validate() error {
	if p.MaxHR <= p.RestingHR {
		return fmt.Errorf("max heart rate (%v) must exceed resting heart rate (%v)", p.MaxHR, p.RestingHR)
	}
	if p.AcuteSpan < 1 || p.ChronicSpan < 1 {
		return fmt.Errorf("EWMA spans must be at least 1")
	}
	if p.Window < 2 {
		return fmt.Errorf("window must hold at least 2 records")
	}
	return nil
}

// Alpha returns the EWMA smoothing factor 2/(span+1).
func Alpha(span float64) float64 {
	return 2 / (span + 1)
}

// HRReserveRatio is (hr - rest) / (max - rest).
func (p Params) HRReserveRatio(heartRateAvg float64) float64 {
	return (heartRateAvg - p.RestingHR) / (p.MaxHR - p.RestingHR)
}

// TRIMP computes the Banister training impulse for one session.
// TRIMP = duration (min) * ratio * e^(b * ratio)
func (p Params) TRIMP(durationMinutes, heartRateAvg float64) float64 {
	ratio := p.HRReserveRatio(heartRateAvg)
	return durationMinutes * ratio * math.Exp(p.Coefficient*ratio)
}

// Accumulator carries the fold state between records: the previous acute and
// chronic loads and the trailing TRIMP window.
type Accumulator struct {
	params       Params
	acuteAlpha   float64
	chronicAlpha float64
	acute        float64
	chronic      float64
	steps        int
	window       *window
}

// NewAccumulator starts an empty fold.
func NewAccumulator(p Params) *Accumulator {
	return &Accumulator{
		params:       p,
		acuteAlpha:   Alpha(p.AcuteSpan),
		chronicAlpha: Alpha(p.ChronicSpan),
		window:       newWindow(p.Window),
	}
}

// Steps returns how many records have been folded in.
func (a *Accumulator) Steps() int {
	return a.steps
}

// Step folds one record in and returns its metrics. Records must arrive in date order.
func (a *Accumulator) Step(r models.TrainingRecord) models.DerivedMetrics {
	m := models.DerivedMetrics{
		HRReserveRatio: a.params.HRReserveRatio(r.HeartRateAvg),
		TRIMP:          a.params.TRIMP(r.DurationMinutes, r.HeartRateAvg),
	}

	if a.steps == 0 {
		a.acute = m.TRIMP
		a.chronic = m.TRIMP
	} else {
		a.acute = a.acuteAlpha*m.TRIMP + (1-a.acuteAlpha)*a.acute
		a.chronic = a.chronicAlpha*m.TRIMP + (1-a.chronicAlpha)*a.chronic
	}
	a.steps++

	m.AcuteLoad = a.acute
	m.ChronicLoad = a.chronic
	if a.chronic == 0 {
		m.ACWR = math.NaN()
	} else {
		m.ACWR = a.acute / a.chronic
	}

	a.window.push(m.TRIMP)
	if a.window.full() {
		m.Monotony = a.window.monotony()
		m.WeeklyLoad = a.window.sum()
	} else {
		m.Monotony = math.NaN()
		m.WeeklyLoad = math.NaN()
	}
	m.Strain = m.WeeklyLoad * m.Monotony

	m.Status = ClassifyStatus(m.ACWR)
	return m
}

// Calculator computes derived metrics for a whole series.
type Calculator struct {
	params Params
}

// NewCalculator creates a calculator with the given parameters.
func NewCalculator(p Params) (*Calculator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{params: p}, nil
}

// Params returns the calculator configuration.
func (c *Calculator) Params() Params {
	return c.params
}

// Compute returns one DerivedMetrics per record, in input order.
// records must already be sorted by date.
func (c *Calculator) Compute(records []models.TrainingRecord) []models.DerivedMetrics {
	acc := NewAccumulator(c.params)
	out := make([]models.DerivedMetrics, len(records))
	for i, r := range records {
		out[i] = acc.Step(r)
	}
	return out
}

// Recompute rebuilds metrics from index from onward after records[from:] changed.
// Earlier metrics are kept; the fold is replayed up to from to restore its state.
func (c *Calculator) Recompute(records []models.TrainingRecord, metrics []models.DerivedMetrics, from int) []models.DerivedMetrics {
	if from < 0 {
		from = 0
	}
	if from > len(metrics) {
		from = len(metrics)
	}

	acc := NewAccumulator(c.params)
	out := make([]models.DerivedMetrics, len(records))
	for i, r := range records {
		m := acc.Step(r)
		if i < from {
			m = metrics[i]
		}
		out[i] = m
	}
	return out
}
