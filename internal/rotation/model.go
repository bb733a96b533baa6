// Package rotation implements time-dependent body orientation models.
//
// A model's orientation is the composition Spin(t) * EquatorOrientationAtTime(t):
// the equator orientation places the rotation axis, and the spin turns the body
// about it. Quaternions follow the astro package convention.
package rotation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/astro"
)

// AngularVelocityDiffDelta is the default differentiation step in days.
const AngularVelocityDiffDelta = 1.0 / 1440.0

// Model is a time-dependent orientation. Times are TDB Julian dates.
type Model interface {
	Spin(tjd float64) quat.Number
	EquatorOrientationAtTime(tjd float64) quat.Number
	OrientationAtTime(tjd float64) quat.Number
	// AngularVelocityAtTime returns the angular velocity in radians per day.
	AngularVelocityAtTime(tjd float64) r3.Vec
	IsPeriodic() bool
	Period() float64
}

// Orientation composes a model's spin and equator orientation.
func Orientation(m Model, tjd float64) quat.Number {
	return quat.Mul(m.Spin(tjd), m.EquatorOrientationAtTime(tjd))
}

// DiffTimeDelta returns the differentiation step for m: a ten-thousandth of
// the period for periodic models, one minute otherwise.
func DiffTimeDelta(m Model) float64 {
	return diffTimeDelta(m.IsPeriodic(), m.Period())
}

func diffTimeDelta(periodic bool, period float64) float64 {
	if periodic && period != 0 {
		return period / 10000.0
	}
	return AngularVelocityDiffDelta
}

// DifferentiateAngularVelocity estimates m's angular velocity at tjd from two
// orientation samples.
func DifferentiateAngularVelocity(m Model, tjd float64) r3.Vec {
	dt := DiffTimeDelta(m)
	return AngularVelocityFromOrientations(m.OrientationAtTime(tjd), m.OrientationAtTime(tjd+dt), dt)
}

// AngularVelocityFromOrientations returns the angular velocity that carries
// q0 into q1 over dt days. Rotations too small to resolve yield zero.
func AngularVelocityFromOrientations(q0, q1 quat.Number, dt float64) r3.Vec {
	dq := quat.Mul(quat.Conj(q1), q0)
	if math.Abs(dq.Real) > 0.99999999 {
		return r3.Vec{}
	}
	axis := astro.Vector(dq)
	n := r3.Norm(axis)
	if n == 0 {
		return r3.Vec{}
	}
	return r3.Scale(2*math.Acos(dq.Real)/(dt*n), axis)
}
