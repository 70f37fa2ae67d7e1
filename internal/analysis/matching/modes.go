package matching

import (
	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

// CheckModes reports how much of a ground truth section was sensed in the
// mode a phone should report for gtMode.
func CheckModes(section models.GroundTruthSpan, gtMode string, result models.MatchResult) models.ModeCheck {
	base := models.BaseMode[gtMode]

	var matched float64
	for _, s := range result.Match {
		if base != "" && s.Mode == base {
			matched += s.Duration()
		}
	}

	gtDuration := section.EndTS - section.StartTS
	var pct float64
	if gtDuration > 0 {
		pct = matched / gtDuration
	}

	return models.ModeCheck{
		GTMode:          gtMode,
		GTBaseMode:      base,
		GTDuration:      gtDuration,
		MatchedDuration: matched,
		MatchingPct:     pct,
	}
}
