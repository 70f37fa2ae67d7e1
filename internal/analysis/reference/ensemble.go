package reference

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/jengzang/trip-eval-backend-go/internal/config"
	"github.com/jengzang/trip-eval-backend-go/internal/models"
	"github.com/jengzang/trip-eval-backend-go/internal/monitoring"
	"github.com/jengzang/trip-eval-backend-go/internal/spatial"
	"github.com/jengzang/trip-eval-backend-go/internal/stats"
)

// Input is everything needed to build the reference for one section.
type Input struct {
	Window models.Range // nominal section window
	A, B   Trace

	Route    orb.LineString // ground truth route, lon/lat
	StartLoc orb.Geometry   // start region, may be nil
	EndLoc   orb.Geometry   // end region, may be nil
}

// Builder builds reference trajectories.
type Builder struct {
	Threshold float64 // meters
	MergeRule string
	Seed      int64
	Augment   bool // recover points inside the start and end regions

	// Strategy forces a single strategy; empty selects between
	// travel_forward and ct_general by coverage.
	Strategy string
}

// NewBuilder returns a builder configured from tuning.
func NewBuilder(t *config.TuningConfig) *Builder {
	return &Builder{
		Threshold: t.GetDistanceThresholdMeters(),
		MergeRule: t.GetMergeRule(),
		Seed:      t.GetRandomSeed(),
		Augment:   t.GetAugmentStartEnd(),
	}
}

type candidate struct {
	name   string
	points []models.ReferencePoint
	stats  models.CoverageStats
	err    error
}

// Build fuses the two traces of in into a reference trajectory.
func (b *Builder) Build(in Input) (*models.ReferenceTrajectory, error) {
	threshold := b.Threshold
	if threshold <= 0 {
		threshold = config.DefaultDistanceThresholdMeters
	}
	merge, err := NewMergeFunc(b.MergeRule, b.Seed)
	if err != nil {
		return nil, err
	}

	regions := make([]orb.Geometry, 0, 2)
	for _, g := range []orb.Geometry{in.StartLoc, in.EndLoc} {
		if g != nil {
			regions = append(regions, g)
		}
	}
	route := spatial.ClipRoute(in.Route, regions...)
	if len(route) < 2 {
		route = in.Route
	}
	frame, err := NewFrame(route)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoReference, err)
	}

	sa, err := Resample(in.A.Locations)
	if err != nil {
		return nil, fmt.Errorf("%w: trace %s: %v", ErrNoReference, in.A.Label, err)
	}
	sb, err := Resample(in.B.Locations)
	if err != nil {
		return nil, fmt.Errorf("%w: trace %s: %v", ErrNoReference, in.B.Label, err)
	}
	frame.Annotate(sa)
	frame.Annotate(sb)

	run := func(name string) candidate {
		c := candidate{name: name}
		switch name {
		case StrategyTravelForward:
			c.points, c.err = TravelForward(in.A, in.B, sa, sb, threshold)
		case StrategyCTGeneral:
			c.points, c.err = CTGeneral(in.A, in.B, sa, sb, threshold, merge)
		case StrategyGTGeneral:
			c.points, c.err = GTGeneral(in.A, in.B, sa, sb, threshold, merge)
		default:
			c.err = fmt.Errorf("unknown strategy %q", name)
		}
		if c.err == nil {
			c.stats = Coverage(c.points, in.Window)
		} else {
			monitoring.Logf("[Reference] %s: %s failed: %v", in.Window.TripID, name, c.err)
		}
		return c
	}

	var chosen candidate
	rejected := map[string]models.CoverageStats{}
	if b.Strategy != "" {
		chosen = run(b.Strategy)
	} else {
		tf := run(StrategyTravelForward)
		ct := run(StrategyCTGeneral)
		var other candidate
		chosen, other = selectCandidate(tf, ct)
		if other.err == nil {
			rejected[other.name] = other.stats
		}
	}
	if chosen.err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrNoReference, in.Window.TripID, chosen.err)
	}

	points := chosen.points
	if b.Augment {
		points = augment(points, sa, sb, in.A, in.B, regions)
	}

	monitoring.Logf("[Reference] %s: chose %s with %d points (zone %s)", in.Window.TripID, chosen.name, len(points), frame.Zone())
	ref := &models.ReferenceTrajectory{
		Strategy: chosen.name,
		Stats:    Coverage(points, in.Window),
		Points:   points,
	}
	if len(rejected) > 0 {
		ref.Rejected = rejected
	}
	return ref, nil
}

// selectCandidate prefers travel forward unless closest time both leaves a
// smaller largest gap and is denser. A failed candidate loses to any
// successful one.
func selectCandidate(tf, ct candidate) (candidate, candidate) {
	switch {
	case tf.err != nil && ct.err != nil:
		return candidate{name: tf.name, err: errors.Join(tf.err, ct.err)}, candidate{err: ct.err}
	case tf.err != nil:
		return ct, tf
	case ct.err != nil:
		return tf, ct
	}
	if ct.stats.MaxGap < tf.stats.MaxGap && ct.stats.Density > tf.stats.Density {
		return ct, tf
	}
	return tf, ct
}

// Coverage measures points against the nominal window: points per second,
// share of the window between the first and last point, and the largest gap
// as a share of the window.
func Coverage(points []models.ReferencePoint, window models.Range) models.CoverageStats {
	duration := window.EndTS - window.StartTS
	if len(points) == 0 || duration <= 0 {
		return models.CoverageStats{}
	}

	ts := make([]float64, len(points))
	for i, p := range points {
		ts[i] = p.TS
	}
	return models.CoverageStats{
		Density:      float64(len(points)) / duration,
		TimeCoverage: (ts[len(ts)-1] - ts[0]) / duration,
		MaxGap:       stats.MaxGap(ts) / duration,
	}
}
