package orbit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/astro"
)

var (
	// ErrUnboundOrbit is returned for eccentricities outside [0, 1).
	ErrUnboundOrbit = errors.New("orbit: eccentricity must be in [0, 1)")
	// ErrInvalidPeriod is returned for a zero or non-finite period.
	ErrInvalidPeriod = errors.New("orbit: period must be nonzero and finite")
)

// Elements are Keplerian elements referred to the orbit frame's equator.
// Angles are radians, distances km, times days.
type Elements struct {
	PericenterDistance float64
	Eccentricity       float64
	Inclination        float64
	AscendingNode      float64
	ArgOfPericenter    float64
	MeanAnomaly        float64 // at Epoch
	Epoch              float64 // TDB Julian date
	Period             float64
}

// Elliptical is a closed two-body orbit.
type Elliptical struct {
	el         Elements
	semiMajor  float64
	meanMotion float64
	plane      quat.Number
}

// NewElliptical validates el and returns the orbit.
func NewElliptical(el Elements) (*Elliptical, error) {
	if !(el.Eccentricity >= 0 && el.Eccentricity < 1) {
		return nil, fmt.Errorf("%w: got %v", ErrUnboundOrbit, el.Eccentricity)
	}
	if el.Period == 0 || math.IsNaN(el.Period) || math.IsInf(el.Period, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidPeriod, el.Period)
	}
	plane := quat.Mul(astro.ZRotation(el.AscendingNode),
		quat.Mul(astro.XRotation(el.Inclination), astro.ZRotation(el.ArgOfPericenter)))
	return &Elliptical{
		el:         el,
		semiMajor:  el.PericenterDistance / (1 - el.Eccentricity),
		meanMotion: 2 * math.Pi / el.Period,
		plane:      plane,
	}, nil
}

// NewCircular returns a circular orbit of the given radius. phase is the
// argument of latitude at epoch.
func NewCircular(radius, period, inclination, node, phase, epoch float64) (*Elliptical, error) {
	return NewElliptical(Elements{
		PericenterDistance: radius,
		Inclination:        inclination,
		AscendingNode:      node,
		MeanAnomaly:        phase,
		Epoch:              epoch,
		Period:             period,
	})
}

// Elements returns the orbit's elements.
func (o *Elliptical) Elements() Elements { return o.el }

func (o *Elliptical) meanAnomaly(tjd float64) float64 {
	return o.el.MeanAnomaly + (tjd-o.el.Epoch)*o.meanMotion
}

// EccentricAnomaly solves Kepler's equation M = E - e sin E by Newton
// iteration.
func EccentricAnomaly(M, e float64) float64 {
	M = math.Remainder(M, 2*math.Pi)
	if e == 0 {
		return M
	}
	E := M
	if e > 0.8 {
		E = math.Pi
		if M < 0 {
			E = -math.Pi
		}
	}
	for i := 0; i < 50; i++ {
		sinE, cosE := math.Sincos(E)
		dE := (E - e*sinE - M) / (1 - e*cosE)
		E -= dE
		if math.Abs(dE) < 1e-14 {
			break
		}
	}
	return E
}

func (o *Elliptical) PositionAtTime(tjd float64) r3.Vec {
	E := EccentricAnomaly(o.meanAnomaly(tjd), o.el.Eccentricity)
	a, e := o.semiMajor, o.el.Eccentricity
	sinE, cosE := math.Sincos(E)
	p := r3.Vec{
		X: a * (cosE - e),
		Y: a * math.Sqrt(1-e*e) * sinE,
	}
	return astro.EclipticToUniversal(astro.Rotate(o.plane, p))
}

func (o *Elliptical) VelocityAtTime(tjd float64) r3.Vec {
	E := EccentricAnomaly(o.meanAnomaly(tjd), o.el.Eccentricity)
	a, e := o.semiMajor, o.el.Eccentricity
	sinE, cosE := math.Sincos(E)
	edot := o.meanMotion / (1 - e*cosE)
	v := r3.Vec{
		X: -a * sinE * edot,
		Y: a * math.Sqrt(1-e*e) * cosE * edot,
	}
	return astro.EclipticToUniversal(astro.Rotate(o.plane, v))
}

func (o *Elliptical) IsPeriodic() bool { return true }

func (o *Elliptical) Period() float64 { return o.el.Period }

func (o *Elliptical) BoundingRadius() float64 {
	return o.semiMajor * (1 + o.el.Eccentricity)
}
