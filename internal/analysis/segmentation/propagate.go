package segmentation

import (
	"errors"
	"fmt"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
	"github.com/jengzang/trip-eval-backend-go/internal/monitoring"
	"github.com/jengzang/trip-eval-backend-go/internal/timeutil"
)

// ErrNoAccuracyControl is returned when a family has no device that can
// supply trip and section boundaries.
var ErrNoAccuracyControl = errors.New("no accuracy control device")

// BuildTripHierarchy fills the trip ranges of every evaluation range of the
// accuracy control device, and the section ranges of every trip, from the
// device's own transitions.
func BuildTripHierarchy(acc *models.Device, specEndTS float64, clock timeutil.Clock) error {
	for _, er := range acc.EvaluationRanges {
		tripEvents := SelectWithin(acc.Transitions, models.TripPair, er.Range)
		trips, err := BuildRanges(tripEvents, models.TripPair, specEndTS, clock)
		if err != nil {
			return fmt.Errorf("failed to build trip ranges for %s: %w", er.TripID, err)
		}

		er.TripRanges = make([]*models.TripRange, 0, len(trips))
		for _, t := range trips {
			tr := &models.TripRange{Range: t}
			sectionEvents := SelectWithin(acc.Transitions, models.SectionPair, t)
			sections, err := BuildRanges(sectionEvents, models.SectionPair, specEndTS, clock)
			if err != nil {
				return fmt.Errorf("failed to build section ranges for %s: %w", t.TripID, err)
			}
			tr.SectionRanges = make([]*models.SectionRange, 0, len(sections))
			for _, s := range sections {
				tr.SectionRanges = append(tr.SectionRanges, &models.SectionRange{Range: s})
			}
			er.TripRanges = append(er.TripRanges, tr)
		}
		monitoring.Logf("[Segmentation] %s: found %d trips for evaluation %s", acc.Label, len(er.TripRanges), er.TripID)
	}
	return nil
}

// PropagateAcrossFamilies copies trip ranges between the accuracy control
// devices of different OS families. Ranges are aligned by evaluation trip id.
// When only one family recorded trips for a range they are deep-copied to
// the others; a range that some but not all of several families recorded is
// corrupt.
func PropagateAcrossFamilies(families []*models.PhoneFamily) error {
	type member struct {
		os string
		r  *models.EvaluationRange
	}

	var order []string
	byTrip := make(map[string][]member)
	for _, f := range families {
		acc := f.AccuracyControl()
		if acc == nil {
			continue
		}
		for _, r := range acc.EvaluationRanges {
			if _, ok := byTrip[r.TripID]; !ok {
				order = append(order, r.TripID)
			}
			byTrip[r.TripID] = append(byTrip[r.TripID], member{os: f.OS, r: r})
		}
	}

	for _, tripID := range order {
		members := byTrip[tripID]
		var source *models.EvaluationRange
		nonzero := 0
		for _, m := range members {
			if len(m.r.TripRanges) != 0 {
				nonzero++
				source = m.r
			}
		}

		switch {
		case nonzero == len(members):
			continue
		case nonzero == 1:
			for _, m := range members {
				if m.r != source {
					monitoring.Logf("[Segmentation] Copying %d trip ranges to %s %s", len(source.TripRanges), m.os, tripID)
					m.r.TripRanges = models.CloneTripRanges(source.TripRanges)
				}
			}
		default:
			return corrupt("propagate", tripID, "found %d/%d families with ground truth trips", nonzero, len(members))
		}
	}
	return nil
}

// PropagateTripRanges deep-copies the accuracy control's trip ranges onto the
// evaluation ranges at the same index on every other device of the family.
func PropagateTripRanges(family *models.PhoneFamily) error {
	acc := family.AccuracyControl()
	if acc == nil {
		return fmt.Errorf("%w in %s family", ErrNoAccuracyControl, family.OS)
	}

	for _, d := range family.Devices {
		if d == acc {
			continue
		}
		if len(d.EvaluationRanges) != len(acc.EvaluationRanges) {
			return corrupt("propagate", "", "device %s has %d evaluation ranges but accuracy control %s has %d",
				d.Label, len(d.EvaluationRanges), acc.Label, len(acc.EvaluationRanges))
		}
		for i, r := range d.EvaluationRanges {
			r.TripRanges = models.CloneTripRanges(acc.EvaluationRanges[i].TripRanges)
		}
	}
	return nil
}
