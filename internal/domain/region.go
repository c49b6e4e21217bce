package domain

import (
	"fmt"
	"math"
)

// RegionShape names the geometry of a Region.
type RegionShape string

const (
	RegionShapeCircle RegionShape = "circle"
	RegionShapeRect   RegionShape = "rectangle"
)

// Region is a spatial constraint for a window query. Circle and Rect are the
// only implementations.
type Region interface {
	Shape() RegionShape
	fmt.Stringer
}

// EarthRadiusKm is the mean Earth radius used for distance conversions.
const EarthRadiusKm = 6371.0

// KmPerDegree is the great-circle length of one degree of arc.
const KmPerDegree = EarthRadiusKm * math.Pi / 180

// KmToDegrees converts a surface distance to degrees of arc, the unit FDSN
// uses for maxradius.
func KmToDegrees(km float64) float64 {
	return km / KmPerDegree
}

// Circle is a region of RadiusDeg degrees of arc around a center point.
type Circle struct {
	Lat       float64
	Lon       float64
	RadiusDeg float64
}

func (Circle) Shape() RegionShape { return RegionShapeCircle }

func (c Circle) String() string {
	return fmt.Sprintf("circle(%.5f, %.5f, r=%.5f deg)", c.Lat, c.Lon, c.RadiusDeg)
}

// Rect is a latitude/longitude bounding box.
type Rect struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

func (Rect) Shape() RegionShape { return RegionShapeRect }

func (r Rect) String() string {
	return fmt.Sprintf("rect(lat %.5f..%.5f, lon %.5f..%.5f)", r.MinLat, r.MaxLat, r.MinLon, r.MaxLon)
}

// CircleAround returns a circle of radiusKm kilometers centred on the
// epicenter of rec.
func CircleAround(rec EventRecord, radiusKm float64) Circle {
	return Circle{Lat: rec.Hypocenter.Lat, Lon: rec.Hypocenter.Lon, RadiusDeg: KmToDegrees(radiusKm)}
}
