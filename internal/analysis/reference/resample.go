// Package reference fuses two noisy location traces of the same trip into a
// single reference trajectory that stays close to the ground truth route.
package reference

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

// Trace is one phone's location fixes for the section being evaluated.
type Trace struct {
	Label     string
	Locations []models.Location
}

// Sample is a resampled fix together with its planar position and its
// relation to the ground truth route.
type Sample struct {
	TS        float64
	Latitude  float64
	Longitude float64

	// Planar position in meters
	X, Y float64

	GTDistance   float64 // perpendicular distance to the route
	GTProjection float64 // distance along the route of the nearest point
}

// Resample interpolates a trace at every integer second in
// [ceil(first), floor(last)). Latitude and longitude are interpolated
// independently and never extrapolated.
func Resample(locations []models.Location) ([]Sample, error) {
	xs, lats, lons := sortedUnique(locations)
	if len(xs) < 2 {
		return nil, fmt.Errorf("%w: %d distinct timestamps", ErrDegenerateTrace, len(xs))
	}

	var latFn, lonFn interp.PiecewiseLinear
	if err := latFn.Fit(xs, lats); err != nil {
		return nil, fmt.Errorf("failed to fit latitude: %w", err)
	}
	if err := lonFn.Fit(xs, lons); err != nil {
		return nil, fmt.Errorf("failed to fit longitude: %w", err)
	}

	first := math.Ceil(xs[0])
	last := math.Floor(xs[len(xs)-1])
	if last <= first {
		return nil, fmt.Errorf("%w: no whole second between %.3f and %.3f", ErrDegenerateTrace, xs[0], xs[len(xs)-1])
	}

	samples := make([]Sample, 0, int(last-first))
	for ts := first; ts < last; ts++ {
		samples = append(samples, Sample{
			TS:        ts,
			Latitude:  latFn.Predict(ts),
			Longitude: lonFn.Predict(ts),
		})
	}
	return samples, nil
}

// sortedUnique orders fixes by ts and keeps the first fix of each ts.
func sortedUnique(locations []models.Location) ([]float64, []float64, []float64) {
	sorted := append([]models.Location(nil), locations...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TS < sorted[j].TS })

	xs := make([]float64, 0, len(sorted))
	lats := make([]float64, 0, len(sorted))
	lons := make([]float64, 0, len(sorted))
	for i, l := range sorted {
		if i > 0 && l.TS == sorted[i-1].TS {
			continue
		}
		xs = append(xs, l.TS)
		lats = append(lats, l.Latitude)
		lons = append(lons, l.Longitude)
	}
	return xs, lats, lons
}
