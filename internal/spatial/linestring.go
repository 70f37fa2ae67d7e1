package spatial

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ProjectedLine is a route in planar meters with cumulative vertex offsets.
type ProjectedLine struct {
	line orb.LineString
	cum  []float64
}

// NewProjectedLine projects a lon/lat route with p.
func NewProjectedLine(p *Projector, route orb.LineString) *ProjectedLine {
	line := make(orb.LineString, len(route))
	for i, pt := range route {
		x, y := p.Forward(pt.Lat(), pt.Lon())
		line[i] = orb.Point{x, y}
	}

	cum := make([]float64, len(line))
	for i := 1; i < len(line); i++ {
		cum[i] = cum[i-1] + planar.Distance(line[i-1], line[i])
	}
	return &ProjectedLine{line: line, cum: cum}
}

// Len returns the number of vertices.
func (l *ProjectedLine) Len() int {
	return len(l.line)
}

// Length returns the total length in meters.
func (l *ProjectedLine) Length() float64 {
	return planar.Length(l.line)
}

// Distance returns the shortest distance from a planar point to the line.
func (l *ProjectedLine) Distance(x, y float64) float64 {
	pt := orb.Point{x, y}
	switch len(l.line) {
	case 0:
		return math.Inf(1)
	case 1:
		return planar.Distance(l.line[0], pt)
	}

	best := math.Inf(1)
	for i := 1; i < len(l.line); i++ {
		if d := planar.DistanceFromSegment(l.line[i-1], l.line[i], pt); d < best {
			best = d
		}
	}
	return best
}

// Project returns the distance along the line to the point nearest (x, y).
// The first nearest segment wins ties.
func (l *ProjectedLine) Project(x, y float64) float64 {
	if len(l.line) < 2 {
		return 0
	}

	pt := orb.Point{x, y}
	best := math.Inf(1)
	var along float64
	for i := 1; i < len(l.line); i++ {
		a, b := l.line[i-1], l.line[i]
		t := segmentParam(a, b, pt)
		foot := orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
		if d := planar.Distance(foot, pt); d < best {
			best = d
			along = l.cum[i-1] + t*(l.cum[i]-l.cum[i-1])
		}
	}
	return along
}

// segmentParam is the clamped position of the foot of pt on segment ab.
func segmentParam(a, b, pt orb.Point) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return 0
	}
	t := ((pt[0]-a[0])*dx + (pt[1]-a[1])*dy) / lenSq
	return math.Max(0, math.Min(1, t))
}
