package rotation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/astro"
)

// ConstantOrientation is a model that never changes.
type ConstantOrientation struct {
	orientation quat.Number
}

// NewConstantOrientation returns a model fixed at q.
func NewConstantOrientation(q quat.Number) *ConstantOrientation {
	return &ConstantOrientation{orientation: astro.Normalize(q)}
}

var identity = NewConstantOrientation(astro.Identity())

// Identity returns the shared identity model.
func Identity() *ConstantOrientation {
	return identity
}

func (c *ConstantOrientation) Spin(float64) quat.Number { return c.orientation }

func (c *ConstantOrientation) EquatorOrientationAtTime(float64) quat.Number {
	return astro.Identity()
}

func (c *ConstantOrientation) OrientationAtTime(tjd float64) quat.Number {
	return Orientation(c, tjd)
}

func (c *ConstantOrientation) AngularVelocityAtTime(float64) r3.Vec { return r3.Vec{} }

func (c *ConstantOrientation) IsPeriodic() bool { return false }

func (c *ConstantOrientation) Period() float64 { return 0 }

// UniformModel rotates at a constant rate about a fixed axis.
type UniformModel struct {
	period        float64 // days
	offset        float64 // radians
	epoch         float64 // TDB Julian date
	inclination   float64 // radians
	ascendingNode float64 // radians
}

// NewUniformModel returns a uniform rotation. period must be nonzero.
func NewUniformModel(period, offset, epoch, inclination, ascendingNode float64) *UniformModel {
	return &UniformModel{
		period:        period,
		offset:        offset,
		epoch:         epoch,
		inclination:   inclination,
		ascendingNode: ascendingNode,
	}
}

func (m *UniformModel) Spin(tjd float64) quat.Number {
	return uniformSpin(tjd, m.epoch, m.period, m.offset)
}

func (m *UniformModel) EquatorOrientationAtTime(float64) quat.Number {
	return equatorOrientation(m.inclination, m.ascendingNode)
}

func (m *UniformModel) OrientationAtTime(tjd float64) quat.Number {
	return Orientation(m, tjd)
}

// AngularVelocityAtTime is exact: the spin axis rotated into the universal
// frame, scaled by the rotation rate.
func (m *UniformModel) AngularVelocityAtTime(tjd float64) r3.Vec {
	axis := astro.Rotate(quat.Conj(m.EquatorOrientationAtTime(tjd)), r3.Vec{Y: 1})
	return r3.Scale(2*math.Pi/m.period, axis)
}

func (m *UniformModel) IsPeriodic() bool { return true }

func (m *UniformModel) Period() float64 { return m.period }

// PrecessingModel is a uniform rotation whose axis precesses about the
// ecliptic pole.
type PrecessingModel struct {
	UniformModel
	precessionPeriod float64 // days; zero disables precession
}

// NewPrecessingModel returns a precessing rotation. A precessionPeriod of
// zero disables precession.
func NewPrecessingModel(period, offset, epoch, inclination, ascendingNode, precessionPeriod float64) *PrecessingModel {
	return &PrecessingModel{
		UniformModel:     *NewUniformModel(period, offset, epoch, inclination, ascendingNode),
		precessionPeriod: precessionPeriod,
	}
}

// NodeOfDate returns the ascending node at tjd.
func (m *PrecessingModel) NodeOfDate(tjd float64) float64 {
	if m.precessionPeriod == 0 {
		return m.ascendingNode
	}
	return m.ascendingNode - (2*math.Pi/m.precessionPeriod)*(tjd-m.epoch)
}

func (m *PrecessingModel) EquatorOrientationAtTime(tjd float64) quat.Number {
	return equatorOrientation(m.inclination, m.NodeOfDate(tjd))
}

func (m *PrecessingModel) OrientationAtTime(tjd float64) quat.Number {
	return Orientation(m, tjd)
}

// AngularVelocityAtTime differentiates; the precessing axis has no simple
// closed form.
func (m *PrecessingModel) AngularVelocityAtTime(tjd float64) r3.Vec {
	return DifferentiateAngularVelocity(m, tjd)
}

func uniformSpin(tjd, epoch, period, offset float64) quat.Number {
	rotations := (tjd - epoch) / period
	remainder := rotations - math.Floor(rotations)
	// Longitude zero sits in the middle of planet texture maps.
	remainder += 0.5
	return astro.YRotation(-remainder*2*math.Pi - offset)
}

func equatorOrientation(inclination, node float64) quat.Number {
	return quat.Mul(astro.XRotation(-inclination), astro.YRotation(-node))
}
