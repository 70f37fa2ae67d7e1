// Package evaluation registers the analyzers of an evaluation run.
package evaluation

import (
	"context"

	"github.com/jengzang/trip-eval-backend-go/internal/analysis"
	"github.com/jengzang/trip-eval-backend-go/internal/monitoring"
	"github.com/jengzang/trip-eval-backend-go/internal/phoneview"
)

// TripSegmentationAnalyzer matches sensed trips and sections of the
// evaluation phones against the ground truth
type TripSegmentationAnalyzer struct {
	*analysis.BaseAnalyzer
}

// NewTripSegmentationAnalyzer creates a new trip segmentation analyzer
func NewTripSegmentationAnalyzer() analysis.Analyzer {
	return &TripSegmentationAnalyzer{
		BaseAnalyzer: analysis.NewBaseAnalyzer(analysis.AnalyzerTripSegmentation),
	}
}

// Analyze fills sensed ranges, match sets, diffs and mode checks
func (a *TripSegmentationAnalyzer) Analyze(ctx context.Context, run *analysis.Run) error {
	monitoring.Logf("[TripSegmentationAnalyzer] Starting analysis (spec=%s)", run.Spec.Spec.ID)
	if err := phoneview.NewMatcher(run.Spec, run.Tuning).FillSensedMatches(run.View); err != nil {
		return err
	}
	monitoring.Logf("[TripSegmentationAnalyzer] Completed analysis (spec=%s)", run.Spec.Spec.ID)
	return nil
}

// Register the analyzer
func init() {
	analysis.RegisterAnalyzer(analysis.AnalyzerTripSegmentation, NewTripSegmentationAnalyzer)
}
