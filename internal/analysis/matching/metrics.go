package matching

import (
	"math"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

// CountStartEndDiff summarizes a match as the number of matched sensed
// segments and the boundary errors in minutes. Each error is capped at
// threshold, and a boundary without a match counts as the cap.
func CountStartEndDiff(gt models.GroundTruthSpan, result models.MatchResult, threshold float64) models.SegmentDiff {
	startDiff, endDiff := threshold, threshold

	if n := len(result.Match); n > 0 {
		if result.Type == models.MatchBoth || result.Type == models.MatchStart {
			startDiff = math.Min(math.Abs(gt.StartTS-result.Match[0].StartTS), threshold)
		}
		if result.Type == models.MatchBoth || result.Type == models.MatchEnd {
			endDiff = math.Min(math.Abs(gt.EndTS-result.Match[n-1].EndTS), threshold)
		}
	}

	return models.SegmentDiff{
		Count:         len(result.Match),
		StartDiffMins: startDiff / 60,
		EndDiffMins:   endDiff / 60,
	}
}

// DiffAll computes CountStartEndDiff for every ground truth segment.
func DiffAll(gt []models.GroundTruthSpan, matches models.MatchSet, threshold float64) map[string]models.SegmentDiff {
	out := make(map[string]models.SegmentDiff, len(gt))
	for _, g := range gt {
		out[g.ID] = CountStartEndDiff(g, matches[g.ID], threshold)
	}
	return out
}
