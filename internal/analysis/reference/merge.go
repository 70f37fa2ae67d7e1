package reference

import (
	"fmt"
	"math/rand"

	"github.com/jengzang/trip-eval-backend-go/internal/config"
	"github.com/jengzang/trip-eval-backend-go/internal/models"
	"github.com/jengzang/trip-eval-backend-go/internal/spatial"
)

// MergeFunc collapses two simultaneous samples from traces labelled la and
// lb into one reference point.
type MergeFunc func(a, b Sample, la, lb string) models.ReferencePoint

// NewMergeFunc returns the merge rule by name. The random rule draws from
// its own source seeded with seed, so repeated builds agree.
func NewMergeFunc(rule string, seed int64) (MergeFunc, error) {
	switch rule {
	case config.MergeMidpoint, "":
		return mergeMidpoint, nil
	case config.MergeRandom:
		rng := rand.New(rand.NewSource(seed))
		return func(a, b Sample, la, lb string) models.ReferencePoint {
			if rng.Intn(2) == 0 {
				return point(a, la)
			}
			return point(b, lb)
		}, nil
	case config.MergeCloserGTDistance:
		return func(a, b Sample, la, lb string) models.ReferencePoint {
			if a.GTDistance < b.GTDistance {
				return point(a, la)
			}
			return point(b, lb)
		}, nil
	case config.MergeCloserGTProjection:
		return func(a, b Sample, la, lb string) models.ReferencePoint {
			if a.GTProjection < b.GTProjection {
				return point(a, la)
			}
			return point(b, lb)
		}, nil
	}
	return nil, fmt.Errorf("unknown merge rule %q", rule)
}

func mergeMidpoint(a, b Sample, _, _ string) models.ReferencePoint {
	lat, lon := spatial.Midpoint(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
	return models.ReferencePoint{TS: a.TS, Longitude: lon, Latitude: lat, Source: models.SourceMidpoint}
}

func point(s Sample, label string) models.ReferencePoint {
	return models.ReferencePoint{TS: s.TS, Longitude: s.Longitude, Latitude: s.Latitude, Source: label}
}
