// ABOUTME: ASCII chart of injury risk over time with the tier thresholds.
// ABOUTME: Rendered with asciigraph, one point per assessed session.
package report

import (
	"github.com/guptarohit/asciigraph"

	"github.com/harperreed/proguard/internal/models"
	"github.com/harperreed/proguard/internal/risk"
)

// RiskChart plots the defined risk percentages in history together with
// flat lines at the Moderate and High thresholds. Returns "" when fewer than
// two points are defined.
func RiskChart(history []float64, width int) string {
	var points []float64
	for _, v := range history {
		if models.IsDefined(v) {
			points = append(points, v)
		}
	}
	if len(points) < 2 {
		return ""
	}

	moderate := make([]float64, len(points))
	high := make([]float64, len(points))
	for i := range points {
		moderate[i] = risk.ModerateRiskPercent
		high[i] = risk.HighRiskPercent
	}

	opts := []asciigraph.Option{
		asciigraph.Height(10),
		asciigraph.Precision(0),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(100),
		asciigraph.SeriesColors(asciigraph.Default, asciigraph.Goldenrod, asciigraph.Red),
		asciigraph.Caption("Injury risk % (30 moderate, 70 high)"),
	}
	if width > 0 {
		opts = append(opts, asciigraph.Width(width))
	}
	return asciigraph.PlotMany([][]float64{points, moderate, high}, opts...)
}
