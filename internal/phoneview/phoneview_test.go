package phoneview

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/trip-eval-backend-go/internal/analysis/reference"
	"github.com/jengzang/trip-eval-backend-go/internal/analysis/segmentation"
	"github.com/jengzang/trip-eval-backend-go/internal/config"
	"github.com/jengzang/trip-eval-backend-go/internal/datastore"
	"github.com/jengzang/trip-eval-backend-go/internal/evalspec"
	"github.com/jengzang/trip-eval-backend-go/internal/models"
	"github.com/jengzang/trip-eval-backend-go/internal/monitoring"
	"github.com/jengzang/trip-eval-backend-go/internal/testutil"
	"github.com/jengzang/trip-eval-backend-go/internal/timeutil"
)

func init() {
	monitoring.SetLogger(nil)
}

func loadSpec(t *testing.T, store datastore.Retriever) *evalspec.Details {
	t.Helper()
	spec, err := evalspec.Load(context.Background(), store, testutil.AuthorEmail, testutil.SpecID, 1e9)
	require.NoError(t, err)
	return spec
}

func buildView(t *testing.T) (*models.PhoneView, *evalspec.Details) {
	t.Helper()
	store := testutil.Experiment()
	spec := loadSpec(t, store)
	clock := timeutil.NewMockClock(testutil.FrozenNow)

	view, err := NewBuilder(store, spec, config.DefaultTuningConfig(), clock).Build(context.Background())
	require.NoError(t, err)
	return view, spec
}

func evaluate(t *testing.T) *models.PhoneView {
	t.Helper()
	view, spec := buildView(t)
	tuning := config.DefaultTuningConfig()
	require.NoError(t, NewMatcher(spec, tuning).FillSensedMatches(view))
	_, err := NewReferences(spec, reference.NewBuilder(tuning)).FillReferences(view)
	require.NoError(t, err)
	return view
}

func device(t *testing.T, view *models.PhoneView, label string) *models.Device {
	t.Helper()
	for _, d := range view.Devices() {
		if d.Label == label {
			return d
		}
	}
	t.Fatalf("no device %s", label)
	return nil
}

func TestBuildRanges(t *testing.T) {
	view, _ := buildView(t)

	assert.Equal(t, testutil.SpecID, view.SpecID)
	require.Len(t, view.Families, 2)
	assert.Equal(t, OSAndroid, view.Families[0].OS)
	assert.Len(t, view.Devices(), 6)
	assert.Empty(t, view.Warnings)

	for _, d := range view.Devices() {
		require.Len(t, d.CalibrationRanges, 1, d.Label)
		assert.Equal(t, "high_accuracy_stationary_0", d.CalibrationRanges[0].TripID)
		assert.Equal(t, 300.0, d.CalibrationRanges[0].Duration)

		require.Len(t, d.EvaluationRanges, 1, d.Label)
		er := d.EvaluationRanges[0]
		assert.Equal(t, "fixed", er.CommonTripID)
		assert.Equal(t, 2000.0, er.StartTS)
		assert.Equal(t, 3000.0, er.EndTS)

		require.Len(t, er.TripRanges, 1, d.Label)
		tr := er.TripRanges[0]
		assert.Equal(t, "commute_0", tr.TripID)
		require.Len(t, tr.SectionRanges, 2)
		assert.Equal(t, "suburb_to_downtown_0", tr.SectionRanges[0].TripID)
		assert.Equal(t, "walk_home_0", tr.SectionRanges[1].TripID)
	}
}

func TestBuildRoles(t *testing.T) {
	view, _ := buildView(t)

	acc := device(t, view, "android-acc").EvaluationRanges[0]
	assert.Equal(t, models.Role{Kind: models.RoleAccuracyControl, Run: "0"}, acc.Role)

	eval := device(t, view, "ios-eval").EvaluationRanges[0]
	assert.Equal(t, models.Role{Kind: models.RoleEvaluation, Condition: "HAHFDC", Run: "0"}, eval.Role)
	assert.Equal(t, "evaluation_HAHFDC", eval.Role.String())

	power := device(t, view, "ios-power").EvaluationRanges[0]
	assert.Equal(t, models.RolePowerControl, power.Role.Kind)
}

func TestBuildTripsAreCopies(t *testing.T) {
	view, _ := buildView(t)

	android := device(t, view, "android-acc").EvaluationRanges[0].TripRanges[0]
	ios := device(t, view, "ios-acc").EvaluationRanges[0].TripRanges[0]
	eval := device(t, view, "android-eval").EvaluationRanges[0].TripRanges[0]

	assert.Equal(t, android.Range, ios.Range)
	assert.NotSame(t, android, ios)
	assert.NotSame(t, android, eval)
	assert.NotSame(t, android.SectionRanges[0], eval.SectionRanges[0])
}

func TestBuildFillsData(t *testing.T) {
	view, _ := buildView(t)

	acc := device(t, view, "android-acc").EvaluationRanges[0]
	assert.Equal(t, 21, acc.Counts.Locations)

	// (start, end] with no fuzz drops the fix at the trip start
	tr := acc.TripRanges[0]
	assert.Equal(t, 20, tr.Counts.Locations)
	assert.Equal(t, 20, tr.SectionRanges[0].Counts.Locations)
	assert.Equal(t, 0, tr.SectionRanges[1].Counts.Locations)

	eval := device(t, view, "android-eval").EvaluationRanges[0]
	assert.Equal(t, models.DataCounts{MotionActivities: 3, Transitions: 2}, eval.Counts)
	assert.Equal(t, []models.MotionActivity{
		{TS: 2101, Mode: models.SensedAutomotive},
		{TS: 2205, Mode: models.SensedWalking},
		{TS: 2280, Mode: models.SensedStationary},
	}, eval.Data.MotionActivities)
	assert.Equal(t, 2, eval.TripRanges[0].Counts.MotionActivities)

	for _, d := range view.Devices() {
		assert.Equal(t, models.DataCounts{}, d.CalibrationRanges[0].Counts, d.Label)
	}
}

func TestBuildErrors(t *testing.T) {
	t.Run("no accuracy control", func(t *testing.T) {
		store := testutil.Experiment()
		spec := loadSpec(t, store)
		spec.Spec.Phones = evalspec.Phones{{OS: OSAndroid, Phones: []evalspec.Phone{
			{Label: "android-eval", Role: "evaluation_hahfdc"},
		}}}

		_, err := NewBuilder(store, spec, nil, timeutil.NewMockClock(testutil.FrozenNow)).Build(context.Background())
		assert.True(t, errors.Is(err, segmentation.ErrNoAccuracyControl), "got %v", err)
	})

	t.Run("retrieval failure", func(t *testing.T) {
		spec := loadSpec(t, testutil.Experiment())
		failing := datastore.RetrieverFunc(func(context.Context, string, string, float64, float64) ([]models.Entry, error) {
			return nil, errors.New("connection refused")
		})

		_, err := NewBuilder(failing, spec, nil, nil).Build(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load transitions for android-acc")
	})

	t.Run("unknown role", func(t *testing.T) {
		store := testutil.Experiment()
		spec := loadSpec(t, store)
		spec.Spec.Phones = evalspec.Phones{{OS: OSAndroid, Phones: []evalspec.Phone{{Label: "android-acc", Role: "spare"}}}}

		_, err := NewBuilder(store, spec, nil, nil).Build(context.Background())
		assert.True(t, errors.Is(err, evalspec.ErrInvalidSpec))
	})
}

func TestValidateDurations(t *testing.T) {
	cal := func(d float64) []*models.CalibrationRange {
		return []*models.CalibrationRange{{Range: models.Range{TripID: "high_accuracy_stationary_0", Duration: d}}}
	}
	eval := func(tripID string, d float64) []*models.EvaluationRange {
		return []*models.EvaluationRange{{
			Range:        models.Range{TripID: tripID, TripRun: 0, Duration: d},
			CommonTripID: "fixed",
		}}
	}
	families := []*models.PhoneFamily{{OS: OSAndroid, Devices: []*models.Device{
		{Label: "a", CalibrationRanges: cal(300), EvaluationRanges: eval("fixed:ACCURACY_CONTROL_0_0", 1000)},
		{Label: "b", CalibrationRanges: cal(300), EvaluationRanges: eval("fixed:HAHFDC_0_0", 1000)},
		{Label: "c", CalibrationRanges: cal(900), EvaluationRanges: eval("fixed:POWER_CONTROL_0_0", 2000)},
	}}}

	b := NewBuilder(nil, nil, config.DefaultTuningConfig(), nil)
	assert.Equal(t, []string{
		"range high_accuracy_stationary_0 on c lasted 900s, median is 300s",
		"range fixed_0 on c lasted 2000s, median is 1000s",
	}, b.validateDurations(families))
}

func TestFillSensedMatches(t *testing.T) {
	view := evaluate(t)

	t.Run("controls are skipped", func(t *testing.T) {
		for _, label := range []string{"android-acc", "android-power", "ios-acc", "ios-power"} {
			er := device(t, view, label).EvaluationRanges[0]
			assert.Nil(t, er.SensedTrips, label)
			assert.Nil(t, er.TripMatches, label)
			assert.Nil(t, er.TripRanges[0].ModeChecks, label)
		}
	})

	t.Run("android trips", func(t *testing.T) {
		er := device(t, view, "android-eval").EvaluationRanges[0]
		assert.Equal(t, []models.SensedSegment{{StartTS: 2090, EndTS: 2270}}, er.SensedTrips)
		assert.Equal(t, models.MatchBoth, er.TripMatches["commute_0"].Type)

		diff := er.TripDiffs["commute_0"]
		assert.Equal(t, 1, diff.Count)
		assert.InDelta(t, 10.0/60, diff.StartDiffMins, 1e-9)
		assert.InDelta(t, 10.0/60, diff.EndDiffMins, 1e-9)
	})

	t.Run("android sections", func(t *testing.T) {
		tr := device(t, view, "android-eval").EvaluationRanges[0].TripRanges[0]
		assert.Equal(t, []models.SensedSegment{
			{StartTS: 2101, EndTS: 2205, Mode: models.SensedAutomotive},
			{StartTS: 2205, EndTS: 2280, Mode: models.SensedWalking},
		}, tr.SensedSections)
		assert.Equal(t, models.MatchBoth, tr.SectionMatches["suburb_to_downtown_0"].Type)
		assert.Equal(t, models.MatchBoth, tr.SectionMatches["walk_home_0"].Type)

		bus := tr.ModeChecks["suburb_to_downtown_0"]
		assert.Equal(t, models.ModeBus, bus.GTMode)
		assert.Equal(t, models.SensedAutomotive, bus.GTBaseMode)
		assert.Equal(t, 104.0, bus.MatchedDuration)
		assert.InDelta(t, 1.04, bus.MatchingPct, 1e-9)

		walk := tr.ModeChecks["walk_home_0"]
		assert.Equal(t, 60.0, walk.GTDuration)
		assert.Equal(t, 75.0, walk.MatchedDuration)
	})

	t.Run("ios sections", func(t *testing.T) {
		er := device(t, view, "ios-eval").EvaluationRanges[0]
		assert.Equal(t, []models.SensedSegment{{StartTS: 2095, EndTS: 2265}}, er.SensedTrips)
		assert.Equal(t, []models.SensedSegment{
			{StartTS: 2102, EndTS: 2203, Mode: models.SensedAutomotive},
			{StartTS: 2203, EndTS: 2275, Mode: models.SensedWalking},
		}, er.TripRanges[0].SensedSections)
	})
}

func TestFillSensedMatchesMissingLeg(t *testing.T) {
	view, spec := buildView(t)
	spec.Spec.EvaluationTrips[0].Legs = spec.Spec.EvaluationTrips[0].Legs[:1]

	err := NewMatcher(spec, nil).FillSensedMatches(view)
	assert.True(t, errors.Is(err, evalspec.ErrInvalidSpec), "got %v", err)
}

func TestFillReferences(t *testing.T) {
	view := evaluate(t)

	android := device(t, view, "android-acc").EvaluationRanges[0].TripRanges[0]
	ios := device(t, view, "ios-acc").EvaluationRanges[0].TripRanges[0]

	ref := android.SectionRanges[0].Reference
	require.NotNil(t, ref)
	assert.Contains(t, []string{reference.StrategyTravelForward, reference.StrategyCTGeneral}, ref.Strategy)
	assert.NotEmpty(t, ref.Points)
	assert.Equal(t, ref, ios.SectionRanges[0].Reference)
	assert.NotSame(t, ref, ios.SectionRanges[0].Reference)

	// access legs have no route
	assert.Nil(t, android.SectionRanges[1].Reference)

	// evaluation phones never get one
	assert.Nil(t, device(t, view, "android-eval").EvaluationRanges[0].TripRanges[0].SectionRanges[0].Reference)

	s := Summarize(view)
	assert.Equal(t, models.ResultSummary{Devices: 6, EvaluationRanges: 6, TripRanges: 6, SectionRanges: 12, References: 2}, s)
}

func TestFillReferencesNeedsBothFamilies(t *testing.T) {
	view, spec := buildView(t)
	view.Families = view.Families[:1]

	n, err := NewReferences(spec, reference.NewBuilder(nil)).FillReferences(view)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReferenceFeatures(t *testing.T) {
	view := evaluate(t)

	fc := ReferenceFeatures(view, OSAndroid)
	require.Len(t, fc.Features, 1)
	f := fc.Features[0]
	assert.Equal(t, "LineString", f.Geometry.GeoJSONType())
	assert.Equal(t, "suburb_to_downtown_0", f.Properties["section_id"])
	assert.Equal(t, "commute_0", f.Properties["trip_id"])

	assert.Empty(t, ReferenceFeatures(view, "windows").Features)
}

func TestEvaluationIsRepeatable(t *testing.T) {
	first := evaluate(t)
	second := evaluate(t)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("views differ (-first +second):\n%s", diff)
	}

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
