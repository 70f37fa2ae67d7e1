// Package matching pairs ground truth segments with the segments a device
// sensed for the same stretch of time.
package matching

import (
	"math"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
	"github.com/jengzang/trip-eval-backend-go/internal/monitoring"
)

// DefaultThreshold is the largest boundary difference, in seconds, that
// still counts as a match.
const DefaultThreshold = 30 * 60

// FindMatchingSegments maps each ground truth segment id to the sensed
// segments it corresponds to.
//
// With no sensed segments every id maps to none. Equal counts pair up by
// position. Otherwise each ground truth segment looks for the sensed segment
// with the closest start and, at or after it, the one with the closest end;
// a boundary further than threshold seconds away is not matched.
func FindMatchingSegments(gt []models.GroundTruthSpan, sensed []models.SensedSegment, threshold float64) models.MatchSet {
	out := make(models.MatchSet, len(gt))

	if len(sensed) == 0 {
		for _, g := range gt {
			out[g.ID] = models.MatchResult{Type: models.MatchNone, Match: []models.SensedSegment{}}
		}
		return out
	}

	if len(gt) == len(sensed) {
		for i, g := range gt {
			out[g.ID] = models.MatchResult{Type: models.MatchBoth, Match: []models.SensedSegment{sensed[i]}}
		}
		return out
	}

	monitoring.Logf("[Matching] Mismatched lengths %d != %d, matching by closest boundary", len(gt), len(sensed))
	for _, g := range gt {
		out[g.ID] = matchOne(g, sensed, threshold)
	}
	return out
}

func matchOne(g models.GroundTruthSpan, sensed []models.SensedSegment, threshold float64) models.MatchResult {
	startIdx, startOK := closest(sensed, g.StartTS, threshold, startOf)

	var endIdx int
	var endOK bool
	if startOK {
		endIdx, endOK = closest(sensed[startIdx:], g.EndTS, threshold, endOf)
		endIdx += startIdx
	} else {
		endIdx, endOK = closest(sensed, g.EndTS, threshold, endOf)
	}
	return boundaryResult(sensed, startIdx, startOK, endIdx, endOK)
}

// boundaryResult turns the matched boundary indexes into a result. An end
// that precedes the start only keeps the start.
func boundaryResult(sensed []models.SensedSegment, startIdx int, startOK bool, endIdx int, endOK bool) models.MatchResult {
	switch {
	case startOK && endOK && endIdx >= startIdx:
		return models.MatchResult{Type: models.MatchBoth, Match: append([]models.SensedSegment(nil), sensed[startIdx:endIdx+1]...)}
	case startOK:
		return models.MatchResult{Type: models.MatchStart, Match: []models.SensedSegment{sensed[startIdx]}}
	case endOK:
		return models.MatchResult{Type: models.MatchEnd, Match: []models.SensedSegment{sensed[endIdx]}}
	default:
		return models.MatchResult{Type: models.MatchNone, Match: []models.SensedSegment{}}
	}
}

func startOf(s models.SensedSegment) float64 { return s.StartTS }
func endOf(s models.SensedSegment) float64   { return s.EndTS }

// closest returns the index of the segment whose boundary is nearest ts,
// earliest first on ties, or false when even that one is beyond threshold.
func closest(sensed []models.SensedSegment, ts, threshold float64, boundary func(models.SensedSegment) float64) (int, bool) {
	if len(sensed) == 0 {
		return 0, false
	}
	best, bestDiff := 0, math.Inf(1)
	for i, s := range sensed {
		if d := math.Abs(ts - boundary(s)); d < bestDiff {
			best, bestDiff = i, d
		}
	}
	if bestDiff > threshold {
		return 0, false
	}
	return best, true
}
