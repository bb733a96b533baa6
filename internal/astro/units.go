// Package astro provides unit conversions, time scales, quaternion helpers and
// the ecliptic projection shared by the orrery packages.
package astro

import (
	"math"

	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/unit"
)

// AU is the Astronomical Unit in kilometers.
const AU = 149597870.7

// KmPerLightYear is the length of a light year in kilometers.
const KmPerLightYear = 9460730472580.8

// KmPerMicroLightYear is the length of a micro-light-year in kilometers.
const KmPerMicroLightYear = KmPerLightYear * 1e-6

// J2000 is the Julian date of the J2000.0 epoch (2000 Jan 1.5 TDB).
const J2000 = 2451545.0

// SolarRadiusKm is the nominal solar radius.
const SolarRadiusKm = 695700.0

// J2000Obliquity is the mean obliquity of the ecliptic at J2000.0 in radians.
var J2000Obliquity = nutation.MeanObliquity(J2000).Rad()

// KmToAU converts kilometers to Astronomical Units.
func KmToAU(km float64) float64 {
	return km / AU
}

// AUToKm converts Astronomical Units to kilometers.
func AUToKm(au float64) float64 {
	return au * AU
}

// KmToMicroLightYears converts kilometers to micro-light-years.
func KmToMicroLightYears(km float64) float64 {
	return km / KmPerMicroLightYear
}

// MicroLightYearsToKm converts micro-light-years to kilometers.
func MicroLightYearsToKm(uly float64) float64 {
	return uly * KmPerMicroLightYear
}

// KmToLightYears converts kilometers to light years.
func KmToLightYears(km float64) float64 {
	return km / KmPerLightYear
}

// DegToRad converts a configuration angle in degrees to radians.
func DegToRad(deg float64) float64 {
	return unit.AngleFromDeg(deg).Rad()
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return unit.Angle(rad).Deg()
}

// WrapTwoPi reduces an angle to [0, 2π).
func WrapTwoPi(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
