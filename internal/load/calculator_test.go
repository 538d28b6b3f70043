// ABOUTME: Tests for TRIMP, the EWMA loads, ACWR and the 7-record window metrics.
// ABOUTME: Expected values are recomputed by hand from the formulas.
package load

import (
	"math"
	"testing"
	"time"

	"github.com/harperreed/proguard/internal/models"
)

func day(d int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func records(pairs ...[2]float64) []models.TrainingRecord {
	out := make([]models.TrainingRecord, len(pairs))
	for i, p := range pairs {
		out[i] = *models.NewTrainingRecord(day(i), p[0], p[1])
	}
	return out
}

func constant(n int, duration, hr float64) []models.TrainingRecord {
	pairs := make([][2]float64, n)
	for i := range pairs {
		pairs[i] = [2]float64{duration, hr}
	}
	return records(pairs...)
}

func mustCalculator(t *testing.T) *Calculator {
	t.Helper()
	c, err := NewCalculator(DefaultParams())
	if err != nil {
		t.Fatalf("NewCalculator failed: %v", err)
	}
	return c
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if p.RestingHR != 60 || p.MaxHR != 200 {
		t.Errorf("DefaultParams HR = %v/%v, want 60/200", p.RestingHR, p.MaxHR)
	}
	if p.AcuteSpan != 7 || p.ChronicSpan != 28 || p.Window != 7 {
		t.Errorf("DefaultParams spans = %v/%v/%v, want 7/28/7", p.AcuteSpan, p.ChronicSpan, p.Window)
	}
}

func TestParamsValidate(t *testing.T) {
	bad := DefaultParams()
	bad.MaxHR = 50
	if err := bad.Validate(); err == nil {
		t.Error("expected error when max HR <= resting HR")
	}

	bad = DefaultParams()
	bad.Window = 1
	if _, err := NewCalculator(bad); err == nil {
		t.Error("expected error for window of 1")
	}
}

func TestTRIMP(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name     string
		duration float64
		hr       float64
		expected float64
		delta    float64
	}{
		{
			// ratio = (140-60)/140 = 0.5714, TRIMP = 60 * 0.5714 * e^(1.0971)
			name: "one hour at 140", duration: 60, hr: 140, expected: 102.706, delta: 0.001,
		},
		{name: "resting heart rate", duration: 60, hr: 60, expected: 0, delta: 0},
		{name: "zero duration", duration: 0, hr: 170, expected: 0, delta: 0},
		{
			// ratio = 1, TRIMP = 30 * e^1.92
			name: "max heart rate", duration: 30, hr: 200, expected: 30 * math.Exp(1.92), delta: 1e-9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.TRIMP(tt.duration, tt.hr)
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("TRIMP(%v, %v) = %v, want %v ± %v", tt.duration, tt.hr, got, tt.expected, tt.delta)
			}
		})
	}
}

func TestAlpha(t *testing.T) {
	if got := Alpha(7); got != 0.25 {
		t.Errorf("Alpha(7) = %v, want 0.25", got)
	}
	if got := Alpha(28); math.Abs(got-2.0/29.0) > 1e-15 {
		t.Errorf("Alpha(28) = %v, want 2/29", got)
	}
}

func TestComputeLengthMatchesInput(t *testing.T) {
	c := mustCalculator(t)
	for _, n := range []int{0, 1, 6, 7, 30} {
		got := c.Compute(constant(n, 45, 150))
		if len(got) != n {
			t.Errorf("Compute(%d records) returned %d metrics", n, len(got))
		}
	}
}

func TestSingleRecordEWMA(t *testing.T) {
	c := mustCalculator(t)
	m := c.Compute(records([2]float64{50, 150}))[0]

	if m.AcuteLoad != m.TRIMP || m.ChronicLoad != m.TRIMP {
		t.Errorf("acute=%v chronic=%v, want both equal to trimp %v", m.AcuteLoad, m.ChronicLoad, m.TRIMP)
	}
	if m.ACWR != 1 {
		t.Errorf("ACWR = %v, want 1", m.ACWR)
	}
	if !math.IsNaN(m.Monotony) || !math.IsNaN(m.WeeklyLoad) || !math.IsNaN(m.Strain) {
		t.Error("expected window metrics to be undefined for a single record")
	}
}

func TestEWMARecurrence(t *testing.T) {
	c := mustCalculator(t)
	recs := records([2]float64{60, 140}, [2]float64{30, 180}, [2]float64{90, 120})
	got := c.Compute(recs)

	p := DefaultParams()
	trimp := []float64{p.TRIMP(60, 140), p.TRIMP(30, 180), p.TRIMP(90, 120)}
	acute := trimp[0]
	chronic := trimp[0]
	for i := 1; i < len(trimp); i++ {
		acute = 0.25*trimp[i] + 0.75*acute
		chronic = (2.0/29.0)*trimp[i] + (1-2.0/29.0)*chronic
		if math.Abs(got[i].AcuteLoad-acute) > 1e-9 {
			t.Errorf("acute[%d] = %v, want %v", i, got[i].AcuteLoad, acute)
		}
		if math.Abs(got[i].ChronicLoad-chronic) > 1e-9 {
			t.Errorf("chronic[%d] = %v, want %v", i, got[i].ChronicLoad, chronic)
		}
	}
}

func TestZeroChronicLoadIsUndefined(t *testing.T) {
	c := mustCalculator(t)
	m := c.Compute(records([2]float64{0, 150}, [2]float64{60, 60}))

	for i, dm := range m {
		if !math.IsNaN(dm.ACWR) {
			t.Errorf("ACWR[%d] = %v, want NaN", i, dm.ACWR)
		}
		if dm.Status != models.StatusUndefined {
			t.Errorf("Status[%d] = %s, want Undefined", i, dm.Status)
		}
	}
}

func TestMonotonyWindow(t *testing.T) {
	c := mustCalculator(t)
	recs := records(
		[2]float64{30, 130}, [2]float64{60, 150}, [2]float64{45, 140},
		[2]float64{90, 160}, [2]float64{20, 120}, [2]float64{75, 155},
		[2]float64{50, 145}, [2]float64{40, 135},
	)
	got := c.Compute(recs)

	for i := 0; i < 6; i++ {
		if !math.IsNaN(got[i].Monotony) || !math.IsNaN(got[i].WeeklyLoad) || !math.IsNaN(got[i].Strain) {
			t.Errorf("record %d: expected undefined window metrics", i)
		}
	}

	// Record 7 uses trimp[1..7].
	p := DefaultParams()
	var window []float64
	for _, r := range recs[1:8] {
		window = append(window, p.TRIMP(r.DurationMinutes, r.HeartRateAvg))
	}
	var sum float64
	for _, v := range window {
		sum += v
	}
	mean := sum / 7
	var ss float64
	for _, v := range window {
		ss += (v - mean) * (v - mean)
	}
	std := math.Sqrt(ss / 6)

	if math.Abs(got[7].WeeklyLoad-sum) > 1e-9 {
		t.Errorf("WeeklyLoad[7] = %v, want %v", got[7].WeeklyLoad, sum)
	}
	if math.Abs(got[7].Monotony-mean/std) > 1e-9 {
		t.Errorf("Monotony[7] = %v, want %v", got[7].Monotony, mean/std)
	}
	if math.Abs(got[7].Strain-sum*mean/std) > 1e-6 {
		t.Errorf("Strain[7] = %v, want %v", got[7].Strain, sum*mean/std)
	}
}

func TestMonotonyZeroVariance(t *testing.T) {
	c := mustCalculator(t)
	// Odd values chosen so a naive mean can differ from the inputs in the last bit.
	got := c.Compute(constant(10, 37.3, 151.7))
	for i := 6; i < len(got); i++ {
		if got[i].Monotony != 0 {
			t.Errorf("Monotony[%d] = %v, want 0", i, got[i].Monotony)
		}
		if got[i].Strain != 0 {
			t.Errorf("Strain[%d] = %v, want 0", i, got[i].Strain)
		}
	}
}

func TestSevenIdenticalDays(t *testing.T) {
	c := mustCalculator(t)
	got := c.Compute(constant(7, 60, 140))

	for i := 1; i < 7; i++ {
		if got[i].TRIMP != got[0].TRIMP {
			t.Errorf("TRIMP[%d] = %v, want %v", i, got[i].TRIMP, got[0].TRIMP)
		}
	}

	last := got[6]
	if last.Monotony != 0 {
		t.Errorf("Monotony[6] = %v, want 0", last.Monotony)
	}
	if math.Abs(last.WeeklyLoad-7*got[0].TRIMP) > 1e-9 {
		t.Errorf("WeeklyLoad[6] = %v, want %v", last.WeeklyLoad, 7*got[0].TRIMP)
	}
	if math.Abs(last.ACWR-1) > 1e-9 {
		t.Errorf("ACWR[6] = %v, want ~1", last.ACWR)
	}
	if last.Status != models.StatusOptimal {
		t.Errorf("Status[6] = %s, want Optimal", last.Status)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	c := mustCalculator(t)
	recs := records(
		[2]float64{30, 130}, [2]float64{60, 150}, [2]float64{45, 140},
		[2]float64{90, 160}, [2]float64{20, 120}, [2]float64{75, 155},
		[2]float64{50, 145}, [2]float64{40, 135}, [2]float64{65, 170},
	)
	a := c.Compute(recs)
	b := c.Compute(recs)
	for i := range a {
		if a[i].ACWR != b[i].ACWR {
			t.Errorf("ACWR[%d] differs between runs: %v vs %v", i, a[i].ACWR, b[i].ACWR)
		}
	}
}

func TestNoLookAhead(t *testing.T) {
	c := mustCalculator(t)
	recs := records(
		[2]float64{30, 130}, [2]float64{60, 150}, [2]float64{45, 140},
		[2]float64{90, 160}, [2]float64{20, 120}, [2]float64{75, 155},
		[2]float64{50, 145},
	)
	prefix := c.Compute(recs[:5])
	full := c.Compute(recs)
	for i := range prefix {
		if prefix[i].AcuteLoad != full[i].AcuteLoad || prefix[i].ChronicLoad != full[i].ChronicLoad {
			t.Errorf("record %d changed when later records were added", i)
		}
	}
}

func TestRecompute(t *testing.T) {
	c := mustCalculator(t)
	recs := constant(10, 45, 150)
	before := c.Compute(recs)

	recs[8].DurationMinutes = 120
	after := c.Recompute(recs, before, 8)
	fresh := c.Compute(recs)

	for i := range fresh {
		if after[i].AcuteLoad != fresh[i].AcuteLoad {
			t.Errorf("AcuteLoad[%d] = %v, want %v", i, after[i].AcuteLoad, fresh[i].AcuteLoad)
		}
	}
	if after[7].TRIMP != before[7].TRIMP {
		t.Error("records before the edit should be unchanged")
	}
}

func TestAccumulatorSteps(t *testing.T) {
	acc := NewAccumulator(DefaultParams())
	for _, r := range constant(3, 30, 140) {
		acc.Step(r)
	}
	if acc.Steps() != 3 {
		t.Errorf("Steps() = %d, want 3", acc.Steps())
	}
}
