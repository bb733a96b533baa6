package astro

import "gonum.org/v1/gonum/spatial/r3"

// The universal frame is the J2000 ecliptic with y toward the north ecliptic
// pole and z = x × y pointing away from ecliptic longitude 90°. Rotation
// models spin about y. The conventional ecliptic basis has z toward the pole.

// EclipticToUniversal converts conventional ecliptic XYZ to universal axes.
func EclipticToUniversal(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Z, Z: -v.Y}
}

// UniversalToEcliptic converts universal axes to conventional ecliptic XYZ.
func UniversalToEcliptic(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Y: -v.Z, Z: v.Y}
}
