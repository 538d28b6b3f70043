// ABOUTME: Maps a risk percentage onto Low/Moderate/High tiers.
// ABOUTME: Boundaries sit at 30 and 70 percent.
package risk

import "github.com/harperreed/proguard/internal/models"

// Tier boundaries in percent. Moderate is inclusive at both ends.
const (
	ModerateRiskPercent = 30.0
	HighRiskPercent     = 70.0
)

// LevelFor tiers a risk percentage.
func LevelFor(percent float64) models.RiskLevel {
	switch {
	case percent > HighRiskPercent:
		return models.RiskHigh
	case percent >= ModerateRiskPercent:
		return models.RiskModerate
	default:
		return models.RiskLow
	}
}
