// Package geo provides the coordinate machinery for the flight pipeline:
// WGS-84 geodetic to Earth-centred (ECEF) conversion, and a fixed local
// planar frame shared by every log in a run so that distances between
// trajectories are directly comparable.
package geo

import (
	"math"

	"github.com/ahsparrow/fgfs/internal/units"
)

// WGS-84 ellipsoid
const (
	SemiMajorAxis = 6378137.0
	Flattening    = 1.0 / 298.257223563
)

var eccSq = Flattening * (2 - Flattening)

// ECEF is an Earth-centred, Earth-fixed Cartesian position in metres.
type ECEF struct {
	X, Y, Z float64
}

// GeodeticToECEF converts a WGS-84 geodetic position (degrees, metres
// above the ellipsoid) to ECEF.
func GeodeticToECEF(latDeg, lonDeg, h float64) ECEF {
	lat := units.DegToRad(latDeg)
	lon := units.DegToRad(lonDeg)

	sinLat := math.Sin(lat)
	n := SemiMajorAxis / math.Sqrt(1-eccSq*sinLat*sinLat)

	return ECEF{
		X: (n + h) * math.Cos(lat) * math.Cos(lon),
		Y: (n + h) * math.Cos(lat) * math.Sin(lon),
		Z: (n*(1-eccSq) + h) * sinLat,
	}
}

// LocalFrame is an equidistant planar projection anchored at a fixed
// origin. X is east, Y is north, so a track bearing of 0 degrees points
// along +Y. The frame is fixed for a whole run; every log projected
// through the same frame shares one planar coordinate system.
type LocalFrame struct {
	latDeg, lonDeg float64

	// Radii of curvature at the anchor: meridian (north-south) and
	// prime vertical scaled by cos(lat) (east-west).
	mRad float64
	pRad float64
}

// NewLocalFrame creates a local frame anchored at the given geodetic
// origin (degrees).
func NewLocalFrame(latDeg, lonDeg float64) *LocalFrame {
	lat := units.DegToRad(latDeg)
	sinLat := math.Sin(lat)
	w := math.Sqrt(1 - eccSq*sinLat*sinLat)

	return &LocalFrame{
		latDeg: latDeg,
		lonDeg: lonDeg,
		mRad:   SemiMajorAxis * (1 - eccSq) / (w * w * w),
		pRad:   SemiMajorAxis / w * math.Cos(lat),
	}
}

// Origin returns the anchor position in degrees.
func (f *LocalFrame) Origin() (latDeg, lonDeg float64) {
	return f.latDeg, f.lonDeg
}

// Project converts a geodetic position (degrees) to local planar x, y in
// metres.
func (f *LocalFrame) Project(latDeg, lonDeg float64) (x, y float64) {
	x = units.DegToRad(lonDeg-f.lonDeg) * f.pRad
	y = units.DegToRad(latDeg-f.latDeg) * f.mRad
	return x, y
}

// Unproject converts local planar x, y back to geodetic degrees.
func (f *LocalFrame) Unproject(x, y float64) (latDeg, lonDeg float64) {
	lonDeg = f.lonDeg + units.RadToDeg(x/f.pRad)
	latDeg = f.latDeg + units.RadToDeg(y/f.mRad)
	return latDeg, lonDeg
}

// ToECEF converts a local-frame position (x, y in metres, z metres above
// the ellipsoid) to ECEF.
func (f *LocalFrame) ToECEF(x, y, z float64) ECEF {
	lat, lon := f.Unproject(x, y)
	return GeodeticToECEF(lat, lon, z)
}
