// Package units provides shared conversions between the units used by
// soaring instruments and configuration (knots, feet, degrees) and the
// SI units used internally (metres, metres per second, radians).
package units

import "math"

// Conversion constants
const (
	MetresPerNauticalMile = 1852.0
	FeetPerMetre          = 3.28084
)

// KnotsToMPS converts a speed in knots to metres per second.
func KnotsToMPS(kt float64) float64 {
	return kt * MetresPerNauticalMile / 3600.0
}

// MPSToKnots converts a speed in metres per second to knots.
func MPSToKnots(mps float64) float64 {
	return mps * 3600.0 / MetresPerNauticalMile
}

// FeetToMetres converts an altitude in feet to metres.
func FeetToMetres(ft float64) float64 {
	return ft / FeetPerMetre
}

// MetresToFeet converts an altitude in metres to feet.
func MetresToFeet(m float64) float64 {
	return m * FeetPerMetre
}

// DegToRad converts an angle in degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RadToDeg converts an angle in radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
