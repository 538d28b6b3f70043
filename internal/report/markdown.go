// ABOUTME: Markdown export of an analysis run: per-athlete metrics table,
// ABOUTME: latest risk and evaluation report.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/proguard/internal/analysis"
)

// Markdown renders results as a Markdown document.
func Markdown(results []analysis.Result, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# ProGuard Report - %s\n\n", now.Format(dateLayout)))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	for _, res := range results {
		sb.WriteString(fmt.Sprintf("## %s\n\n", res.DisplayName()))

		if res.Assessment != nil {
			sb.WriteString(fmt.Sprintf("**Injury risk:** %.1f%% (%s)\n\n", res.Assessment.Percent, res.Assessment.Level))
		} else if err := res.Err(); err != nil {
			sb.WriteString(fmt.Sprintf("**Injury risk:** unavailable (%v)\n\n", err))
		}

		sb.WriteString("| Date | Minutes | HR | TRIMP | ACWR | Monotony | Strain | Status |\n")
		sb.WriteString("|------|---------|----|-------|------|----------|--------|--------|\n")
		for i, r := range res.Records {
			m := res.Metrics[i]
			sb.WriteString(fmt.Sprintf("| %s | %.0f | %.0f | %s | %s | %s | %s | %s |\n",
				r.Date.Format(dateLayout),
				r.DurationMinutes,
				r.HeartRateAvg,
				Value(m.TRIMP, 1),
				Value(m.ACWR, 2),
				Value(m.Monotony, 2),
				Value(m.Strain, 1),
				m.Status))
		}
		sb.WriteString("\n")

		if res.Scorer != nil {
			sb.WriteString("### Model evaluation\n\n```\n")
			sb.WriteString(res.Scorer.Evaluation.String())
			sb.WriteString("```\n\n")
		}
	}

	return sb.String()
}
