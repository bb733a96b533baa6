package astro

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// SpeedOfLight is c in km/s.
const SpeedOfLight = 299792.458

// RadialScale compresses distances from the view center for the top-down
// orrery.
type RadialScale int

const (
	// ScaleLog fits the inner planets and the outer system on one screen.
	ScaleLog RadialScale = iota
	// ScaleSqrt spreads the inner system and keeps Jupiter on screen.
	ScaleSqrt
	// ScaleLinear keeps true proportions.
	ScaleLinear
)

var radialScaleNames = [...]string{"log", "sqrt", "linear"}

func (s RadialScale) String() string {
	if s < 0 || int(s) >= len(radialScaleNames) {
		return "unknown"
	}
	return radialScaleNames[s]
}

// Next cycles through the scales.
func (s RadialScale) Next() RadialScale {
	return (s + 1) % RadialScale(len(radialScaleNames))
}

// Apply maps a distance in view units to a display radius.
func (s RadialScale) Apply(r float64) float64 {
	switch s {
	case ScaleSqrt:
		return math.Sqrt(r)
	case ScaleLinear:
		return r
	default:
		return math.Log10(1 + r)
	}
}

// TopDown looks down on the ecliptic from its north pole, with +x toward
// the vernal equinox and +y toward ecliptic longitude 90°.
type TopDown struct {
	// Unit is the km length of one view unit.
	Unit  float64
	Scale RadialScale
	Zoom  float64
}

// Project returns the display coordinates of an offset in km along the
// universal axes. The out-of-plane component is dropped.
func (p TopDown) Project(offset r3.Vec) (x, y float64) {
	ecl := UniversalToEcliptic(offset)
	r := math.Hypot(ecl.X, ecl.Y)
	if r == 0 {
		return 0, 0
	}
	d := p.Radius(r)
	return d * ecl.X / r, d * ecl.Y / r
}

// Radius is the display radius of an in-plane circle of km radius.
func (p TopDown) Radius(km float64) float64 {
	return p.Scale.Apply(km/p.Unit) * p.Zoom
}

// EclipticLonLat returns the ecliptic longitude in [0, 360) and latitude of
// a vector along the universal axes, in degrees.
func EclipticLonLat(v r3.Vec) (lon, lat float64) {
	r := r3.Norm(v)
	if r == 0 {
		return 0, 0
	}
	// Universal +y is the ecliptic pole and -z points to longitude 90°.
	return RadToDeg(WrapTwoPi(math.Atan2(-v.Z, v.X))), RadToDeg(math.Asin(v.Y / r))
}

// LightTime is the one-way light travel time over km.
func LightTime(km float64) time.Duration {
	return time.Duration(km / SpeedOfLight * float64(time.Second))
}
