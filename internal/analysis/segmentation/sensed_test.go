package segmentation

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

var testPattern = TripPattern{
	Start: regexp.MustCompile(`^(?:S)$`),
	End:   regexp.MustCompile(`^(?:E)$`),
}

func transitions(names ...string) []models.StateTransition {
	out := make([]models.StateTransition, len(names))
	for i, n := range names {
		out[i] = models.StateTransition{TS: float64(i * 10), Transition: n}
	}
	return out
}

func TestFindRanges(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []models.SensedSegment
	}{
		{"extra ends", []string{"S", "S", "E", "E", "E", "E"}, []models.SensedSegment{{StartTS: 0, EndTS: 20}}},
		{"dangling start", []string{"S", "E", "S", "E", "S", "S"}, []models.SensedSegment{{StartTS: 0, EndTS: 10}, {StartTS: 20, EndTS: 30}}},
		{"leading end", []string{"E", "S", "E", "S"}, []models.SensedSegment{{StartTS: 10, EndTS: 20}}},
		{"noise ignored", []string{"S", "X", "E"}, []models.SensedSegment{{StartTS: 0, EndTS: 20}}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindRanges(transitions(tt.input...), testPattern))
		})
	}
}

func activity(ts float64, mode models.SensedMode) models.MotionActivity {
	return models.MotionActivity{TS: ts, Mode: mode}
}

func TestSectionTransitions(t *testing.T) {
	in := []models.MotionActivity{
		activity(0, models.SensedStationary),
		activity(10, models.SensedWalking),
		activity(20, models.SensedWalking),
		activity(30, models.SensedInvalid),
		activity(40, models.SensedAutomotive),
		activity(50, models.SensedStationary),
		activity(60, models.SensedAutomotive),
		activity(70, models.SensedWalking),
	}
	got := SectionTransitions(in)
	assert.Equal(t, []models.MotionActivity{
		activity(10, models.SensedWalking),
		activity(40, models.SensedAutomotive),
		activity(70, models.SensedWalking),
	}, got)

	assert.Equal(t, []models.SensedSegment{
		{StartTS: 10, EndTS: 40, Mode: models.SensedWalking},
		{StartTS: 40, EndTS: 70, Mode: models.SensedAutomotive},
	}, SectionRanges(got))
	assert.Nil(t, SectionRanges(got[:1]))
}

func TestSensedSectionsEndingWalking(t *testing.T) {
	trip := []models.MotionActivity{
		activity(100, models.SensedAutomotive),
		activity(200, models.SensedWalking),
	}
	extended := []models.MotionActivity{
		activity(300, models.SensedWalking),
		activity(350, models.SensedStationary),
		activity(400, models.SensedStationary),
	}

	assert.Equal(t, []models.SensedSegment{
		{StartTS: 100, EndTS: 200, Mode: models.SensedAutomotive},
		{StartTS: 200, EndTS: 350, Mode: models.SensedWalking},
	}, SensedSections(trip, extended, true))

	assert.Equal(t, []models.SensedSegment{
		{StartTS: 100, EndTS: 200, Mode: models.SensedAutomotive},
	}, SensedSections(trip, extended, false))
}

func TestSelectSegments(t *testing.T) {
	segments := []models.SensedSegment{
		{StartTS: -1000, EndTS: 100},
		{StartTS: 1000, EndTS: 2000},
		{StartTS: 900, EndTS: 4000},
	}
	r := models.Range{StartTS: 1100, EndTS: 2100}
	assert.Equal(t, []models.SensedSegment{{StartTS: 1000, EndTS: 2000}}, SelectSegments(segments, r, 1800))
	assert.Nil(t, SelectSegments(segments, r, 0))
}
