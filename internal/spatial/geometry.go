package spatial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Contains reports whether the lon/lat point lies inside a polygonal geometry.
// Non-areal geometries contain nothing.
func Contains(g orb.Geometry, lat, lon float64) bool {
	pt := orb.Point{lon, lat}
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, pt)
	case orb.Ring:
		return planar.RingContains(geom, pt)
	case orb.Bound:
		return geom.Contains(pt)
	case orb.Collection:
		for _, sub := range geom {
			if Contains(sub, lat, lon) {
				return true
			}
		}
	}
	return false
}

// ContainsAny reports whether any of the regions contains the point.
func ContainsAny(regions []orb.Geometry, lat, lon float64) bool {
	for _, r := range regions {
		if r != nil && Contains(r, lat, lon) {
			return true
		}
	}
	return false
}

// ClipRoute removes the route coordinates that fall inside any region.
func ClipRoute(route orb.LineString, regions ...orb.Geometry) orb.LineString {
	out := make(orb.LineString, 0, len(route))
	for _, pt := range route {
		if !ContainsAny(regions, pt.Lat(), pt.Lon()) {
			out = append(out, pt)
		}
	}
	return out
}

// PathLength returns the geodesic length of a lon/lat line in meters
func PathLength(line orb.LineString) float64 {
	var total float64
	for i := 1; i < len(line); i++ {
		total += HaversineDistance(line[i-1].Lat(), line[i-1].Lon(), line[i].Lat(), line[i].Lon())
	}
	return total
}
