// Package geo provides the planar coordinate model used by the skim
// computation. Zone sample points and transit stops arrive as WGS84
// lat/lon; a Projection maps them once into local meters so that all
// hot-path distance math is plain Euclidean.
package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

const earthRadiusMeters = 6_371_000

// Point is a position in local projected meters.
type Point struct {
	X float64
	Y float64
}

// Euclidean returns the straight-line distance in meters between two
// projected points.
func Euclidean(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Haversine returns the great-circle distance in meters between two
// lat/lon points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * earthRadiusMeters
}

// Projection is a local equirectangular projection anchored at a
// reference latitude. Accurate to well under a percent for study areas
// up to a few hundred kilometers across, which is all a skim run covers.
type Projection struct {
	origin s2.LatLng
	cosLat float64
}

// NewProjection anchors a projection at the given reference point,
// typically the centroid of the study area.
func NewProjection(lat, lon float64) *Projection {
	return &Projection{
		origin: s2.LatLngFromDegrees(lat, lon),
		cosLat: math.Cos(s2.LatLngFromDegrees(lat, lon).Lat.Radians()),
	}
}

// Project maps a lat/lon pair into local meters relative to the anchor.
func (p *Projection) Project(lat, lon float64) Point {
	ll := s2.LatLngFromDegrees(lat, lon)
	return Point{
		X: (ll.Lng - p.origin.Lng).Radians() * p.cosLat * earthRadiusMeters,
		Y: (ll.Lat - p.origin.Lat).Radians() * earthRadiusMeters,
	}
}
