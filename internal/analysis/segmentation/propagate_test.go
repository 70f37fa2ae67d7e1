package segmentation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

func tripRanges(ids ...string) []*models.TripRange {
	out := make([]*models.TripRange, len(ids))
	for i, id := range ids {
		out[i] = &models.TripRange{
			Range: models.Range{TripID: id + "_0", TripIDBase: id, StartTS: float64(i * 100), EndTS: float64(i*100 + 50), Duration: 50},
			SectionRanges: []*models.SectionRange{
				{Range: models.Range{TripID: "leg_0", TripIDBase: "leg", StartTS: float64(i * 100), EndTS: float64(i*100 + 50), Duration: 50}},
			},
		}
	}
	return out
}

func TestBuildTripHierarchy(t *testing.T) {
	acc := &models.Device{
		Label:          "android-1",
		ConfiguredRole: models.RoleAccuracyControl,
		EvaluationRanges: []*models.EvaluationRange{
			{Range: models.Range{TripID: "eval_0", StartTS: 0, EndTS: 1000}},
			{Range: models.Range{TripID: "eval_1", StartTS: 2000, EndTS: 3000}},
		},
		Transitions: []models.TransitionEvent{
			event(models.StartEvaluationPeriod, "eval", 0),
			event(models.StartEvaluationTrip, "walk_there", 100),
			event(models.StartEvaluationSection, "walk_leg", 110),
			event(models.StopEvaluationSection, "walk_leg", 400),
			event(models.StopEvaluationTrip, "walk_there", 410),
			event(models.StartEvaluationTrip, "bike_back", 500),
			event(models.StartEvaluationSection, "bike_leg", 510),
			event(models.StopEvaluationSection, "bike_leg", 800),
			event(models.StartEvaluationSection, "walk_leg", 810),
			event(models.StopEvaluationSection, "walk_leg", 890),
			event(models.StopEvaluationTrip, "bike_back", 900),
			event(models.StopEvaluationPeriod, "eval", 1000),
			event(models.StartEvaluationTrip, "walk_there", 2100),
			event(models.StopEvaluationTrip, "walk_there", 2500),
		},
	}

	require.NoError(t, BuildTripHierarchy(acc, 5000, fixedClock(6000)))

	first := acc.EvaluationRanges[0]
	require.Len(t, first.TripRanges, 2)
	assert.Equal(t, "walk_there_0", first.TripRanges[0].TripID)
	assert.Equal(t, "bike_back_0", first.TripRanges[1].TripID)
	require.Len(t, first.TripRanges[1].SectionRanges, 2)
	assert.Equal(t, "bike_leg_0", first.TripRanges[1].SectionRanges[0].TripID)
	assert.Equal(t, "walk_leg_0", first.TripRanges[1].SectionRanges[1].TripID)

	second := acc.EvaluationRanges[1]
	require.Len(t, second.TripRanges, 1)
	assert.Equal(t, "walk_there_0", second.TripRanges[0].TripID)
	assert.Empty(t, second.TripRanges[0].SectionRanges)
}

func TestPropagateTripRangesDeepCopies(t *testing.T) {
	acc := device("android-1", models.RoleAccuracyControl, "ACC", 2)
	eval := device("android-2", models.RoleEvaluation, "x", 2)
	pwr := device("android-3", models.RolePowerControl, "PWR", 2)
	acc.EvaluationRanges[0].TripRanges = tripRanges("a", "b")
	acc.EvaluationRanges[1].TripRanges = tripRanges("c")

	family := &models.PhoneFamily{OS: "android", Devices: []*models.Device{acc, eval, pwr}}
	require.NoError(t, PropagateTripRanges(family))

	for _, d := range []*models.Device{eval, pwr} {
		require.Len(t, d.EvaluationRanges[0].TripRanges, 2)
		require.Len(t, d.EvaluationRanges[1].TripRanges, 1)
		assert.Equal(t, acc.EvaluationRanges[0].TripRanges[1].Range, d.EvaluationRanges[0].TripRanges[1].Range)
	}

	// mutating a copy leaves the source intact
	eval.EvaluationRanges[0].TripRanges[0].SectionRanges[0].EndTS = 999
	eval.EvaluationRanges[0].TripRanges[0].SensedSections = []models.SensedSegment{{StartTS: 1, EndTS: 2}}
	assert.Equal(t, 50.0, acc.EvaluationRanges[0].TripRanges[0].SectionRanges[0].EndTS)
	assert.Empty(t, acc.EvaluationRanges[0].TripRanges[0].SensedSections)
	assert.NotSame(t, acc.EvaluationRanges[0].TripRanges[0], pwr.EvaluationRanges[0].TripRanges[0])
}

func TestPropagateTripRangesNoAccuracyControl(t *testing.T) {
	family := &models.PhoneFamily{OS: "ios", Devices: []*models.Device{
		device("ios-2", models.RoleEvaluation, "x", 1),
	}}
	err := PropagateTripRanges(family)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoAccuracyControl))
}

func TestPropagateTripRangesCountMismatch(t *testing.T) {
	family := &models.PhoneFamily{OS: "ios", Devices: []*models.Device{
		device("ios-1", models.RoleAccuracyControl, "ACC", 2),
		device("ios-2", models.RoleEvaluation, "x", 1),
	}}
	err := PropagateTripRanges(family)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptInput))
}

func accuracyFamily(os string, trips ...[]*models.TripRange) *models.PhoneFamily {
	acc := &models.Device{Label: os + "-1", OS: os, ConfiguredRole: models.RoleAccuracyControl}
	for i, tr := range trips {
		acc.EvaluationRanges = append(acc.EvaluationRanges, &models.EvaluationRange{
			Range:      models.Range{TripID: "eval_" + string(rune('0'+i))},
			TripRanges: tr,
		})
	}
	return &models.PhoneFamily{OS: os, Devices: []*models.Device{acc}}
}

func TestPropagateAcrossFamilies(t *testing.T) {
	android := accuracyFamily("android", tripRanges("a", "b"), tripRanges("c"))
	ios := accuracyFamily("ios", nil, tripRanges("c"))

	require.NoError(t, PropagateAcrossFamilies([]*models.PhoneFamily{android, ios}))

	iosRanges := ios.AccuracyControl().EvaluationRanges
	require.Len(t, iosRanges[0].TripRanges, 2)
	assert.NotSame(t, android.AccuracyControl().EvaluationRanges[0].TripRanges[0], iosRanges[0].TripRanges[0])
	assert.Equal(t, "a_0", iosRanges[0].TripRanges[0].TripID)
	require.Len(t, iosRanges[1].TripRanges, 1)
}

func TestPropagateAcrossFamiliesMissingGroundTruth(t *testing.T) {
	android := accuracyFamily("android", nil)
	ios := accuracyFamily("ios", nil)
	err := PropagateAcrossFamilies([]*models.PhoneFamily{android, ios})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptInput))

	three := []*models.PhoneFamily{
		accuracyFamily("android", tripRanges("a")),
		accuracyFamily("ios", tripRanges("a")),
		accuracyFamily("web", nil),
	}
	assert.Error(t, PropagateAcrossFamilies(three))
}
