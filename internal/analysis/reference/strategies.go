package reference

import (
	"fmt"
	"sort"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

// Strategy names
const (
	StrategyCTGeneral     = "ct_general"
	StrategyGTGeneral     = "gt_general"
	StrategyTravelForward = "travel_forward"
)

// row is one second of the join of two resampled traces. A nil side had no
// sample at that second.
type row struct {
	ts   float64
	a, b *Sample
}

// join merges two resampled traces on their timestamps in ts order. With
// inner set, only seconds present on both sides are kept.
func join(a, b []Sample, inner bool) []row {
	byTS := make(map[float64]*row, len(a)+len(b))
	for i := range a {
		byTS[a[i].TS] = &row{ts: a[i].TS, a: &a[i]}
	}
	for i := range b {
		if r, ok := byTS[b[i].TS]; ok {
			r.b = &b[i]
		} else {
			byTS[b[i].TS] = &row{ts: b[i].TS, b: &b[i]}
		}
	}

	rows := make([]row, 0, len(byTS))
	for _, r := range byTS {
		if inner && (r.a == nil || r.b == nil) {
			continue
		}
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ts < rows[j].ts })
	return rows
}

func nearRoute(samples []Sample, threshold float64) []Sample {
	var out []Sample
	for _, s := range samples {
		if s.GTDistance < threshold {
			out = append(out, s)
		}
	}
	return out
}

// CTGeneral pairs simultaneous samples, keeps the pairs closer to each other
// than threshold meters and collapses each pair with merge.
func CTGeneral(a, b Trace, sa, sb []Sample, threshold float64, merge MergeFunc) ([]models.ReferencePoint, error) {
	var out []models.ReferencePoint
	for _, r := range join(sa, sb, true) {
		if planarDistance(*r.a, *r.b) < threshold {
			out = append(out, merge(*r.a, *r.b, a.Label, b.Label))
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", StrategyCTGeneral, ErrEmptyCandidate)
	}
	return out, nil
}

// GTGeneral keeps the samples of each trace within threshold meters of the
// route and joins them; a second present on one side only uses that side and
// a second present on both is collapsed with merge.
func GTGeneral(a, b Trace, sa, sb []Sample, threshold float64, merge MergeFunc) ([]models.ReferencePoint, error) {
	var out []models.ReferencePoint
	for _, r := range join(nearRoute(sa, threshold), nearRoute(sb, threshold), false) {
		switch {
		case r.b == nil:
			out = append(out, point(*r.a, a.Label))
		case r.a == nil:
			out = append(out, point(*r.b, b.Label))
		default:
			out = append(out, merge(*r.a, *r.b, a.Label, b.Label))
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", StrategyGTGeneral, ErrEmptyCandidate)
	}
	return out, nil
}

// progress is the state carried through the travel forward fold: how far
// along the route the accepted trajectory has reached.
type progress struct {
	distanceSoFar float64
}

// step decides which side of r, if any, moves the trajectory forward.
func (p progress) step(r row) (progress, *Sample, int) {
	switch {
	case r.b == nil:
		if r.a.GTProjection > p.distanceSoFar {
			return progress{r.a.GTProjection}, r.a, 0
		}
		return p, nil, -1
	case r.a == nil:
		if r.b.GTProjection > p.distanceSoFar {
			return progress{r.b.GTProjection}, r.b, 1
		}
		return p, nil, -1
	}

	da := r.a.GTProjection - p.distanceSoFar
	db := r.b.GTProjection - p.distanceSoFar

	var pick int
	switch {
	case da < 0 && db < 0:
		return p, nil, -1
	case da < 0 || db < 0:
		// only the side still moving forward qualifies
		if db > da {
			pick = 1
		}
	default:
		if r.b.GTDistance < r.a.GTDistance {
			pick = 1
		}
	}

	chosen := r.a
	if pick == 1 {
		chosen = r.b
	}
	return progress{chosen.GTProjection}, chosen, pick
}

// TravelForward behaves like GTGeneral but only accepts points that advance
// along the route past every point accepted before them.
func TravelForward(a, b Trace, sa, sb []Sample, threshold float64) ([]models.ReferencePoint, error) {
	labels := [2]string{a.Label, b.Label}

	var out []models.ReferencePoint
	state := progress{}
	for _, r := range join(nearRoute(sa, threshold), nearRoute(sb, threshold), false) {
		var chosen *Sample
		var side int
		state, chosen, side = state.step(r)
		if chosen != nil {
			out = append(out, point(*chosen, labels[side]))
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", StrategyTravelForward, ErrEmptyCandidate)
	}
	return out, nil
}
