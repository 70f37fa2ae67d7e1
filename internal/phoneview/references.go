package phoneview

import (
	"fmt"

	"github.com/jengzang/trip-eval-backend-go/internal/analysis/reference"
	"github.com/jengzang/trip-eval-backend-go/internal/evalspec"
	"github.com/jengzang/trip-eval-backend-go/internal/models"
	"github.com/jengzang/trip-eval-backend-go/internal/monitoring"
)

// References builds reference trajectories from the accuracy control phones
// of the android and ios families.
type References struct {
	spec    *evalspec.Details
	builder *reference.Builder
}

// NewReferences creates a reference filler.
func NewReferences(spec *evalspec.Details, builder *reference.Builder) *References {
	return &References{spec: spec, builder: builder}
}

// FillReferences attaches a reference trajectory to every TRAVEL section
// with a ground truth route on both accuracy control phones. Views without
// both families are left untouched.
func (f *References) FillReferences(view *models.PhoneView) (int, error) {
	android, ios := accuracyControl(view, OSAndroid), accuracyControl(view, OSIOS)
	if android == nil || ios == nil {
		monitoring.Logf("[PhoneView] %s: reference trajectories need android and ios accuracy controls", view.SpecID)
		return 0, nil
	}

	built := 0
	for _, aer := range android.EvaluationRanges {
		ier := findRange(ios.EvaluationRanges, aer.TripID)
		if ier == nil {
			continue
		}
		if len(aer.TripRanges) != len(ier.TripRanges) {
			return built, fmt.Errorf("evaluation %s has %d android and %d ios trips", aer.TripID, len(aer.TripRanges), len(ier.TripRanges))
		}
		for i, atr := range aer.TripRanges {
			itr := ier.TripRanges[i]
			if len(atr.SectionRanges) != len(itr.SectionRanges) {
				return built, fmt.Errorf("trip %s has %d android and %d ios sections", atr.TripID, len(atr.SectionRanges), len(itr.SectionRanges))
			}
			for j, asr := range atr.SectionRanges {
				ref, err := f.build(atr, asr, itr.SectionRanges[j])
				if err != nil {
					return built, err
				}
				if ref == nil {
					continue
				}
				asr.Reference = ref
				itr.SectionRanges[j].Reference = ref.Clone()
				built++
			}
		}
	}
	return built, nil
}

func (f *References) build(tr *models.TripRange, android, ios *models.SectionRange) (*models.ReferenceTrajectory, error) {
	leg, err := f.spec.Leg(tr.TripIDBase, android.TripIDBase)
	if err != nil {
		return nil, err
	}
	if leg.Type != evalspec.LegTravel || leg.RouteCoords.IsZero() {
		return nil, nil
	}

	route, err := leg.Route(android.Range)
	if err != nil {
		return nil, err
	}
	start, end, err := leg.Regions(android.Range)
	if err != nil {
		return nil, err
	}

	ref, err := f.builder.Build(reference.Input{
		Window:   android.Range,
		A:        reference.Trace{Label: OSAndroid, Locations: android.Data.Locations},
		B:        reference.Trace{Label: OSIOS, Locations: ios.Data.Locations},
		Route:    route,
		StartLoc: start,
		EndLoc:   end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build reference for %s: %w", android.TripID, err)
	}
	return ref, nil
}

func accuracyControl(view *models.PhoneView, os string) *models.Device {
	f := view.Family(os)
	if f == nil {
		return nil
	}
	return f.AccuracyControl()
}

func findRange(ranges []*models.EvaluationRange, tripID string) *models.EvaluationRange {
	for _, r := range ranges {
		if r.TripID == tripID {
			return r
		}
	}
	return nil
}
