// ABOUTME: Plain-text rendering of derived metrics, latest-record summaries
// ABOUTME: and model evaluation for the CLI.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/harperreed/proguard/internal/analysis"
	"github.com/harperreed/proguard/internal/load"
	"github.com/harperreed/proguard/internal/models"
	"github.com/harperreed/proguard/internal/risk"
)

const dateLayout = "2006-01-02"

// Value formats a metric with the given precision, or "-" when undefined.
func Value(v float64, precision int) string {
	if !models.IsDefined(v) {
		return "-"
	}
	return fmt.Sprintf("%.*f", precision, v)
}

// MetricsTable writes one row per record. limit > 0 keeps only the most
// recent rows.
func MetricsTable(w io.Writer, s analysis.Series, limit int) {
	start := 0
	if limit > 0 && s.Len() > limit {
		start = s.Len() - limit
	}

	fmt.Fprintf(w, "%-10s %6s %5s %8s %8s %8s %6s %6s %9s %9s  %s\n",
		"DATE", "MIN", "HR", "TRIMP", "ACUTE", "CHRONIC", "ACWR", "MONO", "WEEKLY", "STRAIN", "STATUS")
	for i := start; i < s.Len(); i++ {
		r := s.Records[i]
		m := s.Metrics[i]
		fmt.Fprintf(w, "%-10s %6.0f %5.0f %8s %8s %8s %6s %6s %9s %9s  %s\n",
			r.Date.Format(dateLayout),
			r.DurationMinutes,
			r.HeartRateAvg,
			Value(m.TRIMP, 1),
			Value(m.AcuteLoad, 1),
			Value(m.ChronicLoad, 1),
			Value(m.ACWR, 2),
			Value(m.Monotony, 2),
			Value(m.WeeklyLoad, 1),
			Value(m.Strain, 1),
			statusColor(m.Status).Sprint(m.Status))
	}
}

// Latest writes the summary block for the most recent record and its risk.
func Latest(w io.Writer, res analysis.Result) {
	i := res.Latest()
	if i < 0 {
		fmt.Fprintln(w, "No records.")
		return
	}
	r := res.Records[i]
	m := res.Metrics[i]

	fmt.Fprintf(w, "Latest record:  %s\n", r.Date.Format(dateLayout))
	fmt.Fprintf(w, "  ACWR:         %s\n", Value(m.ACWR, 2))
	fmt.Fprintf(w, "  TRIMP:        %s\n", Value(m.TRIMP, 1))
	fmt.Fprintf(w, "  Monotony:     %s\n", Value(m.Monotony, 2))
	fmt.Fprintf(w, "  Strain:       %s\n", Value(m.Strain, 1))
	fmt.Fprintf(w, "  Status:       %s (%s)\n", statusColor(m.Status).Sprint(m.Status), load.StatusDescription(m.Status))

	if res.Assessment == nil {
		if err := res.Err(); err != nil {
			color.New(color.FgYellow).Fprintf(w, "  Injury risk:  unavailable: %v\n", err)
		}
		return
	}
	a := res.Assessment
	fmt.Fprintf(w, "  Injury risk:  %s\n", levelColor(a.Level).Sprintf("%.1f%% (%s)", a.Percent, a.Level))
}

// Evaluation writes the confusion matrix and classification report.
func Evaluation(w io.Writer, s *risk.Scorer) {
	fmt.Fprintf(w, "Trained on %d rows, evaluated on %d.\n\n", s.TrainSize, s.TestSize)
	fmt.Fprintln(w, "Confusion matrix:")
	fmt.Fprintln(w, s.Evaluation.MatrixString())
	fmt.Fprintln(w, "Classification report:")
	fmt.Fprint(w, s.Evaluation.String())
}

// Heading writes an underlined section title.
func Heading(w io.Writer, title string) {
	fmt.Fprintln(w, color.New(color.Bold).Sprint(title))
	fmt.Fprintln(w, strings.Repeat("=", len(title)))
}

func statusColor(s models.TrainingStatus) *color.Color {
	switch s {
	case models.StatusOvertraining:
		return color.New(color.FgRed)
	case models.StatusUndertraining:
		return color.New(color.FgYellow)
	case models.StatusOptimal:
		return color.New(color.FgGreen)
	default:
		return color.New(color.Faint)
	}
}

func levelColor(l models.RiskLevel) *color.Color {
	switch l {
	case models.RiskHigh:
		return color.New(color.FgRed, color.Bold)
	case models.RiskModerate:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}
