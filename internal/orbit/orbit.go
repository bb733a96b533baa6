// Package orbit implements trajectories evaluated in a body's orbit frame.
package orbit

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// VelocityDiffDelta is the differentiation step in days for orbits without a
// closed-form velocity.
const VelocityDiffDelta = 1.0 / 1440.0

// Orbit gives a body's position relative to the center of its orbit frame,
// expressed in that frame's axes.
type Orbit interface {
	// PositionAtTime returns the position in km at TDB Julian date tjd.
	PositionAtTime(tjd float64) r3.Vec
	// VelocityAtTime returns the velocity in km/day.
	VelocityAtTime(tjd float64) r3.Vec
	IsPeriodic() bool
	// Period returns the orbital period in days, or zero.
	Period() float64
	// BoundingRadius is the largest distance from the frame center reached
	// by the orbit, in km.
	BoundingRadius() float64
}

// DifferentiateVelocity estimates the velocity of pos by a forward difference.
func DifferentiateVelocity(pos func(tjd float64) r3.Vec, tjd float64) r3.Vec {
	p0 := pos(tjd)
	p1 := pos(tjd + VelocityDiffDelta)
	return r3.Scale(1/VelocityDiffDelta, r3.Sub(p1, p0))
}

// FixedPosition is an orbit that stays at one point of its frame.
type FixedPosition struct {
	position r3.Vec
}

// NewFixedPosition returns an orbit fixed at p km.
func NewFixedPosition(p r3.Vec) *FixedPosition {
	return &FixedPosition{position: p}
}

func (f *FixedPosition) PositionAtTime(float64) r3.Vec { return f.position }

func (f *FixedPosition) VelocityAtTime(float64) r3.Vec { return r3.Vec{} }

func (f *FixedPosition) IsPeriodic() bool { return false }

func (f *FixedPosition) Period() float64 { return 0 }

func (f *FixedPosition) BoundingRadius() float64 { return r3.Norm(f.position) }
