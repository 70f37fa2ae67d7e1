package reference

import (
	"sort"

	"github.com/paulmach/orb"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
	"github.com/jengzang/trip-eval-backend-go/internal/spatial"
)

// augment adds the points both traces recorded inside the start and end
// regions, which route scoring leaves out. A region contributes only when
// each trace has at least two samples inside it.
func augment(points []models.ReferencePoint, sa, sb []Sample, a, b Trace, regions []orb.Geometry) []models.ReferencePoint {
	seen := make(map[float64]bool, len(points))
	for _, p := range points {
		seen[p.TS] = true
	}

	out := append([]models.ReferencePoint(nil), points...)
	for _, region := range regions {
		ia := inside(sa, region)
		ib := inside(sb, region)
		if len(ia) < 2 || len(ib) < 2 {
			continue
		}
		for _, r := range join(ia, ib, false) {
			if seen[r.ts] {
				continue
			}
			var p models.ReferencePoint
			switch {
			case r.b == nil:
				p = point(*r.a, a.Label)
			case r.a == nil:
				p = point(*r.b, b.Label)
			default:
				p = mergeMidpoint(*r.a, *r.b, a.Label, b.Label)
			}
			seen[r.ts] = true
			out = append(out, p)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].TS < out[j].TS })
	return out
}

func inside(samples []Sample, region orb.Geometry) []Sample {
	var out []Sample
	for _, s := range samples {
		if spatial.Contains(region, s.Latitude, s.Longitude) {
			out = append(out, s)
		}
	}
	return out
}
