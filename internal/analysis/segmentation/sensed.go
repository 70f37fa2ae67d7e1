package segmentation

import (
	"regexp"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

// TripPattern recognizes the state machine transitions that open and close a
// trip detected by the device.
type TripPattern struct {
	Start *regexp.Regexp
	End   *regexp.Regexp
}

// FindRanges pairs alternating start and end transitions. Transitions that
// arrive out of turn are ignored, so S S E E -> 1 range and E S E S -> 1.
func FindRanges(transitions []models.StateTransition, p TripPattern) []models.SensedSegment {
	var out []models.SensedSegment
	open := false
	var startTS float64
	for _, t := range transitions {
		switch {
		case !open && p.Start.MatchString(t.Transition):
			startTS = t.TS
			open = true
		case open && p.End.MatchString(t.Transition):
			out = append(out, models.SensedSegment{StartTS: startTS, EndTS: t.TS})
			open = false
		}
	}
	return out
}

// SectionTransitions keeps the moving activities at which the sensed mode
// changes. The first moving activity always counts as a change.
func SectionTransitions(activities []models.MotionActivity) []models.MotionActivity {
	var out []models.MotionActivity
	for _, a := range activities {
		if !a.Mode.IsMoving() {
			continue
		}
		if len(out) == 0 || out[len(out)-1].Mode != a.Mode {
			out = append(out, a)
		}
	}
	return out
}

// SectionRanges turns consecutive mode changes into sections labelled with
// the mode that was entered at their start.
func SectionRanges(changes []models.MotionActivity) []models.SensedSegment {
	if len(changes) < 2 {
		return nil
	}
	out := make([]models.SensedSegment, 0, len(changes)-1)
	for i := 1; i < len(changes); i++ {
		out = append(out, models.SensedSegment{
			StartTS: changes[i-1].TS,
			EndTS:   changes[i].TS,
			Mode:    changes[i-1].Mode,
		})
	}
	return out
}

// SensedSections derives the sensed sections of one trip. tripActivities are
// the activities inside the trip, extended those in the window right after
// it. A trip that ends walking has no moving mode change to close its last
// section, so the first stationary reading after the last change does.
func SensedSections(tripActivities, extended []models.MotionActivity, endsWalking bool) []models.SensedSegment {
	all := make([]models.MotionActivity, 0, len(tripActivities)+len(extended))
	all = append(all, tripActivities...)
	all = append(all, extended...)

	changes := SectionTransitions(all)
	if endsWalking {
		var lastTS float64
		if len(changes) > 0 {
			lastTS = changes[len(changes)-1].TS
		}
		for _, a := range extended {
			if a.TS > lastTS && a.Mode == models.SensedStationary {
				changes = append(changes, a)
				break
			}
		}
	}
	return SectionRanges(changes)
}

// SelectSegments keeps the sensed segments that start and end within fuzz
// of r.
func SelectSegments(segments []models.SensedSegment, r models.Range, fuzz float64) []models.SensedSegment {
	var out []models.SensedSegment
	for _, s := range segments {
		if s.StartTS >= r.StartTS-fuzz && s.EndTS <= r.EndTS+fuzz {
			out = append(out, s)
		}
	}
	return out
}
