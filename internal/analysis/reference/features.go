package reference

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/jengzang/trip-eval-backend-go/internal/spatial"
)

// Frame is the planar frame of one section: a single UTM zone chosen from
// the first route coordinate, and the route projected into it.
type Frame struct {
	projector *spatial.Projector
	route     *spatial.ProjectedLine
}

// NewFrame projects the ground truth route.
func NewFrame(route orb.LineString) (*Frame, error) {
	if len(route) < 2 {
		return nil, fmt.Errorf("%w: %d coordinates", ErrDegenerateRoute, len(route))
	}
	p := spatial.NewProjectorAt(route[0].Lat(), route[0].Lon())
	return &Frame{projector: p, route: spatial.NewProjectedLine(p, route)}, nil
}

// Zone returns the UTM zone of the frame.
func (f *Frame) Zone() spatial.UTMZone {
	return f.projector.Zone()
}

// Annotate fills the planar position and route features of every sample.
func (f *Frame) Annotate(samples []Sample) {
	for i := range samples {
		s := &samples[i]
		s.X, s.Y = f.projector.Forward(s.Latitude, s.Longitude)
		s.GTDistance = f.route.Distance(s.X, s.Y)
		s.GTProjection = f.route.Project(s.X, s.Y)
	}
}

// planarDistance is the distance in meters between two annotated samples.
func planarDistance(a, b Sample) float64 {
	return planar.Distance(orb.Point{a.X, a.Y}, orb.Point{b.X, b.Y})
}
