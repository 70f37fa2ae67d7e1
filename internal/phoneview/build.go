// Package phoneview assembles the linked range hierarchy of one experiment:
// per-device calibration and evaluation ranges, the ground truth trips and
// sections under them, and the phone data that falls inside each range.
package phoneview

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jengzang/trip-eval-backend-go/internal/analysis/segmentation"
	"github.com/jengzang/trip-eval-backend-go/internal/config"
	"github.com/jengzang/trip-eval-backend-go/internal/datastore"
	"github.com/jengzang/trip-eval-backend-go/internal/evalspec"
	"github.com/jengzang/trip-eval-backend-go/internal/models"
	"github.com/jengzang/trip-eval-backend-go/internal/monitoring"
	"github.com/jengzang/trip-eval-backend-go/internal/timeutil"
)

// Builder builds the phone view of one experiment.
type Builder struct {
	store  datastore.Retriever
	spec   *evalspec.Details
	tuning *config.TuningConfig
	clock  timeutil.Clock
}

// NewBuilder creates a builder. A nil clock uses the real clock.
func NewBuilder(store datastore.Retriever, spec *evalspec.Details, tuning *config.TuningConfig, clock timeutil.Clock) *Builder {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Builder{store: store, spec: spec, tuning: tuning, clock: clock}
}

// Build retrieves the transitions of every phone, turns them into ranges,
// links them across phones and fills in the data of every range.
func (b *Builder) Build(ctx context.Context) (*models.PhoneView, error) {
	families, err := b.spec.Spec.Phones.Families()
	if err != nil {
		return nil, err
	}

	view := &models.PhoneView{
		SpecID:      b.spec.Spec.ID,
		SpecName:    b.spec.Spec.Name,
		EvalStartTS: b.spec.StartTS,
		EvalEndTS:   b.spec.EndTS,
		Families:    families,
	}

	// 加载转换事件并构建区间
	for _, d := range view.Devices() {
		if err := b.fillRanges(ctx, d); err != nil {
			return nil, err
		}
	}

	for _, f := range families {
		if err := segmentation.LinkEvaluationRanges(f.Devices); err != nil {
			return nil, fmt.Errorf("failed to link %s phones: %w", f.OS, err)
		}
		acc := f.AccuracyControl()
		if acc == nil {
			return nil, fmt.Errorf("%w in %s family", segmentation.ErrNoAccuracyControl, f.OS)
		}
		if err := segmentation.BuildTripHierarchy(acc, b.spec.EndTS, b.clock); err != nil {
			return nil, err
		}
	}

	if err := segmentation.PropagateAcrossFamilies(families); err != nil {
		return nil, err
	}
	for _, f := range families {
		if err := segmentation.PropagateTripRanges(f); err != nil {
			return nil, err
		}
	}

	view.Warnings = b.validateDurations(families)
	for _, w := range view.Warnings {
		monitoring.Logf("[PhoneView] %s", w)
	}

	// 加载每个区间的数据
	for _, f := range families {
		for _, d := range f.Devices {
			if err := b.fillData(ctx, f.OS, d); err != nil {
				return nil, err
			}
		}
	}

	monitoring.Logf("[PhoneView] built %s with %d families, %d devices", view.SpecID, len(families), len(view.Devices()))
	return view, nil
}

func (b *Builder) fillRanges(ctx context.Context, d *models.Device) error {
	entries, err := b.store.Retrieve(ctx, d.Label, models.KeyEvaluationTransition, b.spec.StartTS, b.spec.EndTS)
	if err != nil {
		return fmt.Errorf("failed to load transitions for %s: %w", d.Label, err)
	}
	transitions, err := Transitions(entries)
	if err != nil {
		return err
	}
	d.Transitions = transitions

	calibration, err := segmentation.BuildRanges(
		segmentation.FilterTransitions(transitions, b.spec.Spec.ID, models.CalibrationPair),
		models.CalibrationPair, b.spec.EndTS, b.clock)
	if err != nil {
		return fmt.Errorf("failed to build calibration ranges for %s: %w", d.Label, err)
	}
	d.CalibrationRanges = make([]*models.CalibrationRange, 0, len(calibration))
	for _, r := range calibration {
		d.CalibrationRanges = append(d.CalibrationRanges, &models.CalibrationRange{Range: r})
	}

	evaluation, err := segmentation.BuildRanges(
		segmentation.FilterTransitions(transitions, b.spec.Spec.ID, models.EvaluationPair),
		models.EvaluationPair, b.spec.EndTS, b.clock)
	if err != nil {
		return fmt.Errorf("failed to build evaluation ranges for %s: %w", d.Label, err)
	}
	d.EvaluationRanges = make([]*models.EvaluationRange, 0, len(evaluation))
	for _, r := range evaluation {
		d.EvaluationRanges = append(d.EvaluationRanges, &models.EvaluationRange{Range: r})
	}

	monitoring.Logf("[PhoneView] %s: %d transitions, %d calibration and %d evaluation ranges",
		d.Label, len(transitions), len(d.CalibrationRanges), len(d.EvaluationRanges))
	return nil
}

// validateDurations compares calibration ranges by trip id and evaluation
// ranges by common trip id and run across the phones of each family.
func (b *Builder) validateDurations(families []*models.PhoneFamily) []string {
	maxVariation := b.tuning.GetMaxDurationVariationSecs()

	var warnings []string
	for _, f := range families {
		calibration := make(map[string][]models.Range)
		evaluation := make(map[string][]models.Range)
		for _, d := range f.Devices {
			for _, r := range d.CalibrationRanges {
				calibration[d.Label] = append(calibration[d.Label], r.Range)
			}
			for _, r := range d.EvaluationRanges {
				keyed := r.Range
				keyed.TripID = r.CommonTripID + "_" + strconv.Itoa(r.TripRun)
				evaluation[d.Label] = append(evaluation[d.Label], keyed)
			}
		}
		warnings = append(warnings, segmentation.ValidateDurations(calibration, maxVariation)...)
		warnings = append(warnings, segmentation.ValidateDurations(evaluation, maxVariation)...)
	}
	return warnings
}

// rangeData retrieves every data stream of one device for r.
func (b *Builder) rangeData(ctx context.Context, os string, label string, r models.Range) (models.RangeData, error) {
	var data models.RangeData

	entries, err := b.store.Retrieve(ctx, label, models.KeyLocation, r.StartTS, r.EndTS)
	if err != nil {
		return data, fmt.Errorf("failed to load locations for %s: %w", label, err)
	}
	if data.Locations, err = Locations(entries); err != nil {
		return data, err
	}

	entries, err = b.store.Retrieve(ctx, label, models.KeyFilteredLocation, r.StartTS, r.EndTS)
	if err != nil {
		return data, fmt.Errorf("failed to load filtered locations for %s: %w", label, err)
	}
	if data.FilteredLocations, err = Locations(entries); err != nil {
		return data, err
	}

	entries, err = b.store.Retrieve(ctx, label, models.KeyMotionActivity, r.StartTS, r.EndTS)
	if err != nil {
		return data, fmt.Errorf("failed to load motion activity for %s: %w", label, err)
	}
	if data.MotionActivities, err = MotionActivities(os, entries); err != nil {
		return data, err
	}

	entries, err = b.store.Retrieve(ctx, label, models.KeyStateTransition, r.StartTS, r.EndTS)
	if err != nil {
		return data, fmt.Errorf("failed to load state transitions for %s: %w", label, err)
	}
	if data.Transitions, err = StateTransitions(entries); err != nil {
		return data, err
	}
	return data, nil
}

func (b *Builder) fillData(ctx context.Context, os string, d *models.Device) error {
	fuzz := b.tuning.GetTimeSyncFuzzSecs()

	for _, r := range d.CalibrationRanges {
		data, err := b.rangeData(ctx, os, d.Label, r.Range)
		if err != nil {
			return err
		}
		r.Data = data
		r.Counts = data.Counts()
	}

	for _, r := range d.EvaluationRanges {
		data, err := b.rangeData(ctx, os, d.Label, r.Range)
		if err != nil {
			return err
		}
		r.Data = data
		r.Counts = data.Counts()

		for _, tr := range r.TripRanges {
			tr.Data = r.Data.Subset(tr.Range, fuzz)
			tr.Counts = tr.Data.Counts()
			for _, sr := range tr.SectionRanges {
				sr.Data = tr.Data.Subset(sr.Range, fuzz)
				sr.Counts = sr.Data.Counts()
			}
		}
	}
	return nil
}
