package analysis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/trip-eval-backend-go/internal/analysis"
	_ "github.com/jengzang/trip-eval-backend-go/internal/analysis/evaluation"
	"github.com/jengzang/trip-eval-backend-go/internal/evalspec"
	"github.com/jengzang/trip-eval-backend-go/internal/monitoring"
	"github.com/jengzang/trip-eval-backend-go/internal/testutil"
	"github.com/jengzang/trip-eval-backend-go/internal/timeutil"
)

func init() {
	monitoring.SetLogger(nil)
}

func newPipeline(t *testing.T) (*analysis.Pipeline, *evalspec.Details) {
	t.Helper()
	store := testutil.Experiment()
	spec, err := evalspec.Load(context.Background(), store, testutil.AuthorEmail, testutil.SpecID, 1e9)
	require.NoError(t, err)
	return analysis.NewPipeline(store, nil, timeutil.NewMockClock(testutil.FrozenNow)), spec
}

func TestRegisteredAnalyzers(t *testing.T) {
	assert.Equal(t, []string{"reference_trajectory", "trip_segmentation"}, analysis.RegisteredAnalyzers())
	assert.True(t, analysis.IsRegistered(analysis.AnalyzerTripSegmentation))
	assert.Nil(t, analysis.GetAnalyzer("stay_annotation"))

	a := analysis.GetAnalyzer(analysis.AnalyzerReferenceTrajectory)
	require.NotNil(t, a)
	assert.Equal(t, "reference_trajectory", a.GetName())
}

func TestPipelineDefaultAnalyzers(t *testing.T) {
	p, spec := newPipeline(t)

	var stages []string
	var percents []int
	p.Progress = func(pr analysis.Progress) {
		stages = append(stages, pr.Stage)
		percents = append(percents, pr.Percent)
		assert.Equal(t, 3, pr.Total)
	}

	run, err := p.Evaluate(context.Background(), spec, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"phone_view", "trip_segmentation", "reference_trajectory"}, stages)
	assert.Equal(t, []int{33, 66, 100}, percents)

	acc := run.View.Families[0].AccuracyControl()
	assert.NotNil(t, acc.EvaluationRanges[0].TripRanges[0].SectionRanges[0].Reference)
	eval := run.View.Families[0].Devices[1]
	assert.NotEmpty(t, eval.EvaluationRanges[0].SensedTrips)
}

func TestPipelineSingleAnalyzer(t *testing.T) {
	p, spec := newPipeline(t)

	run, err := p.Evaluate(context.Background(), spec, []string{analysis.AnalyzerTripSegmentation})
	require.NoError(t, err)
	acc := run.View.Families[0].AccuracyControl()
	assert.Nil(t, acc.EvaluationRanges[0].TripRanges[0].SectionRanges[0].Reference)
}

func TestPipelineErrors(t *testing.T) {
	p, spec := newPipeline(t)

	_, err := p.Evaluate(context.Background(), spec, []string{"heatmap"})
	assert.EqualError(t, err, "unknown analyzer: heatmap")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Evaluate(ctx, spec, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
