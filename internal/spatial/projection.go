package spatial

import (
	"fmt"
	"math"
)

// WGS84 ellipsoid and UTM constants
const (
	wgs84A          = 6378137.0
	wgs84F          = 1 / 298.257223563
	utmScale        = 0.9996
	utmFalseEasting = 500000.0
	utmFalseNorth   = 10000000.0
)

// UTMZone identifies one Universal Transverse Mercator zone
type UTMZone struct {
	Number int
	North  bool
}

func (z UTMZone) String() string {
	hemi := "N"
	if !z.North {
		hemi = "S"
	}
	return fmt.Sprintf("%d%s", z.Number, hemi)
}

// ZoneFor returns the UTM zone that contains a coordinate, including the
// Norway and Svalbard exceptions. Longitude 180 belongs to zone 60.
func ZoneFor(lat, lon float64) UTMZone {
	if lon != 180 {
		lon = math.Mod(lon+180, 360)
		if lon < 0 {
			lon += 360
		}
		lon -= 180
	}

	n := int((lon+180)/6) + 1
	if n > 60 {
		n = 60
	}

	switch {
	case lat >= 56 && lat < 64 && lon >= 3 && lon < 12:
		n = 32
	case lat >= 72 && lat < 84 && lon >= 0:
		switch {
		case lon < 9:
			n = 31
		case lon < 21:
			n = 33
		case lon < 33:
			n = 35
		case lon < 42:
			n = 37
		}
	}

	return UTMZone{Number: n, North: lat >= 0}
}

// Projector maps lon/lat degrees to planar meters in a single fixed zone.
// Points outside the zone still project, with growing distortion.
type Projector struct {
	zone    UTMZone
	lon0    float64
	e2, ep2 float64
	m1, m2  float64
	m3, m4  float64
}

// NewProjector returns a projector for the zone.
func NewProjector(zone UTMZone) *Projector {
	e2 := wgs84F * (2 - wgs84F)
	e4 := e2 * e2
	e6 := e4 * e2
	return &Projector{
		zone: zone,
		lon0: float64((zone.Number-1)*6-180+3) * math.Pi / 180,
		e2:   e2,
		ep2:  e2 / (1 - e2),
		m1:   1 - e2/4 - 3*e4/64 - 5*e6/256,
		m2:   3*e2/8 + 3*e4/32 + 45*e6/1024,
		m3:   15*e4/256 + 45*e6/1024,
		m4:   35 * e6 / 3072,
	}
}

// NewProjectorAt returns a projector for the zone containing lat/lon.
func NewProjectorAt(lat, lon float64) *Projector {
	return NewProjector(ZoneFor(lat, lon))
}

// Zone returns the projector's zone.
func (p *Projector) Zone() UTMZone {
	return p.zone
}

// Forward returns easting and northing in meters. Longitudes on the far
// side of the antimeridian are taken relative to the zone's central
// meridian, so a zone next to 180 projects both sides continuously.
func (p *Projector) Forward(lat, lon float64) (float64, float64) {
	phi := lat * math.Pi / 180
	lam := lon * math.Pi / 180

	sinPhi, cosPhi := math.Sincos(phi)
	tanPhi := math.Tan(phi)

	n := wgs84A / math.Sqrt(1-p.e2*sinPhi*sinPhi)
	t := tanPhi * tanPhi
	c := p.ep2 * cosPhi * cosPhi
	a := cosPhi * math.Remainder(lam-p.lon0, 2*math.Pi)

	m := wgs84A * (p.m1*phi - p.m2*math.Sin(2*phi) + p.m3*math.Sin(4*phi) - p.m4*math.Sin(6*phi))

	a2 := a * a
	a3 := a2 * a
	a4 := a3 * a
	a5 := a4 * a
	a6 := a5 * a

	x := utmScale*n*(a+(1-t+c)*a3/6+(5-18*t+t*t+72*c-58*p.ep2)*a5/120) + utmFalseEasting
	y := utmScale * (m + n*tanPhi*(a2/2+(5-t+9*c+4*c*c)*a4/24+(61-58*t+t*t+600*c-330*p.ep2)*a6/720))
	if !p.zone.North {
		y += utmFalseNorth
	}
	return x, y
}
