package evaluation

import (
	"context"

	"github.com/jengzang/trip-eval-backend-go/internal/analysis"
	"github.com/jengzang/trip-eval-backend-go/internal/analysis/reference"
	"github.com/jengzang/trip-eval-backend-go/internal/monitoring"
	"github.com/jengzang/trip-eval-backend-go/internal/phoneview"
)

// ReferenceTrajectoryAnalyzer fuses the accuracy control traces of every
// travel section into a reference trajectory
type ReferenceTrajectoryAnalyzer struct {
	*analysis.BaseAnalyzer
}

// NewReferenceTrajectoryAnalyzer creates a new reference trajectory analyzer
func NewReferenceTrajectoryAnalyzer() analysis.Analyzer {
	return &ReferenceTrajectoryAnalyzer{
		BaseAnalyzer: analysis.NewBaseAnalyzer(analysis.AnalyzerReferenceTrajectory),
	}
}

// Analyze attaches reference trajectories to the accuracy control sections
func (a *ReferenceTrajectoryAnalyzer) Analyze(ctx context.Context, run *analysis.Run) error {
	monitoring.Logf("[ReferenceTrajectoryAnalyzer] Starting analysis (spec=%s)", run.Spec.Spec.ID)
	builder := reference.NewBuilder(run.Tuning)
	n, err := phoneview.NewReferences(run.Spec, builder).FillReferences(run.View)
	if err != nil {
		return err
	}
	monitoring.Logf("[ReferenceTrajectoryAnalyzer] Built %d reference trajectories (spec=%s)", n, run.Spec.Spec.ID)
	return nil
}

// Register the analyzer
func init() {
	analysis.RegisterAnalyzer(analysis.AnalyzerReferenceTrajectory, NewReferenceTrajectoryAnalyzer)
}
