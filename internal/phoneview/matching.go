package phoneview

import (
	"fmt"

	"github.com/jengzang/trip-eval-backend-go/internal/analysis/matching"
	"github.com/jengzang/trip-eval-backend-go/internal/analysis/segmentation"
	"github.com/jengzang/trip-eval-backend-go/internal/config"
	"github.com/jengzang/trip-eval-backend-go/internal/evalspec"
	"github.com/jengzang/trip-eval-backend-go/internal/models"
	"github.com/jengzang/trip-eval-backend-go/internal/monitoring"
)

// Matcher compares what evaluation phones sensed with the ground truth.
type Matcher struct {
	spec   *evalspec.Details
	tuning *config.TuningConfig
}

// NewMatcher creates a matcher.
func NewMatcher(spec *evalspec.Details, tuning *config.TuningConfig) *Matcher {
	return &Matcher{spec: spec, tuning: tuning}
}

// FillSensedMatches detects sensed trips and sections on every evaluation
// range of an evaluation role and matches them to the ground truth. Control
// phones track continuously and are skipped.
func (m *Matcher) FillSensedMatches(view *models.PhoneView) error {
	for _, f := range view.Families {
		pattern, err := TripPatternFor(f.OS)
		if err != nil {
			return err
		}
		for _, d := range f.Devices {
			for _, er := range d.EvaluationRanges {
				if er.Role.Kind.IsControl() {
					continue
				}
				if err := m.matchRange(pattern, er); err != nil {
					return fmt.Errorf("failed to match %s on %s: %w", er.TripID, d.Label, err)
				}
			}
		}
	}
	return nil
}

func (m *Matcher) matchRange(pattern segmentation.TripPattern, er *models.EvaluationRange) error {
	threshold := m.tuning.GetMatchThresholdSecs()
	fuzz := m.tuning.GetSensedRangeFuzzSecs()

	er.SensedTrips = segmentation.SelectSegments(segmentation.FindRanges(er.Data.Transitions, pattern), er.Range, fuzz)
	trips := make([]models.GroundTruthSpan, 0, len(er.TripRanges))
	for _, tr := range er.TripRanges {
		trips = append(trips, tr.Span())
	}
	er.TripMatches = matching.FindMatchingSegments(trips, er.SensedTrips, threshold)
	er.TripDiffs = matching.DiffAll(trips, er.TripMatches, threshold)

	for _, tr := range er.TripRanges {
		if err := m.matchSections(er, tr); err != nil {
			return err
		}
	}
	monitoring.Logf("[Matching] %s: %d sensed trips for %d ground truth trips", er.TripID, len(er.SensedTrips), len(er.TripRanges))
	return nil
}

func (m *Matcher) matchSections(er *models.EvaluationRange, tr *models.TripRange) error {
	threshold := m.tuning.GetMatchThresholdSecs()
	fuzz := m.tuning.GetSensedRangeFuzzSecs()

	legs := make([]*evalspec.Leg, len(tr.SectionRanges))
	for i, sr := range tr.SectionRanges {
		leg, err := m.spec.Leg(tr.TripIDBase, sr.TripIDBase)
		if err != nil {
			return err
		}
		legs[i] = leg
	}
	endsWalking := len(legs) > 0 && legs[len(legs)-1].Mode == models.ModeWalking

	sensed := segmentation.SensedSections(tr.Data.MotionActivities, m.extension(er, tr), endsWalking)
	tr.SensedSections = segmentation.SelectSegments(sensed, tr.Range, fuzz)

	sections := make([]models.GroundTruthSpan, 0, len(tr.SectionRanges))
	for _, sr := range tr.SectionRanges {
		sections = append(sections, sr.Span())
	}
	tr.SectionMatches = matching.FindMatchingSegments(sections, tr.SensedSections, threshold)
	tr.SectionDiffs = matching.DiffAll(sections, tr.SectionMatches, threshold)

	tr.ModeChecks = make(map[string]models.ModeCheck, len(sections))
	for i, s := range sections {
		tr.ModeChecks[s.ID] = matching.CheckModes(s, legs[i].Mode, tr.SectionMatches[s.ID])
	}
	return nil
}

// extension returns the activities of er that follow tr within the section
// extension window. Activities already in the trip data are left out.
func (m *Matcher) extension(er *models.EvaluationRange, tr *models.TripRange) []models.MotionActivity {
	limit := tr.EndTS + m.tuning.GetSectionExtensionSecs()
	after := func(ts float64) bool { return ts >= tr.EndTS }
	if n := len(tr.Data.MotionActivities); n > 0 && tr.Data.MotionActivities[n-1].TS >= tr.EndTS {
		last := tr.Data.MotionActivities[n-1].TS
		after = func(ts float64) bool { return ts > last }
	}

	var out []models.MotionActivity
	for _, a := range er.Data.MotionActivities {
		if after(a.TS) && a.TS <= limit {
			out = append(out, a)
		}
	}
	return out
}
