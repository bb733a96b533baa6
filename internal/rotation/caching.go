package rotation

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/metrics"
)

// Caching memoizes the most recent spin, equator orientation and angular
// velocity of an underlying computation. The cache holds one time; querying
// any quantity at a new time discards the other two. Caching is not safe for
// concurrent use.
type Caching struct {
	computeSpin    func(tjd float64) quat.Number
	computeEquator func(tjd float64) quat.Number
	computeAngVel  func(tjd float64) r3.Vec
	periodic       bool
	period         float64
	rec            metrics.Recorder

	lastTime     float64
	lastSpin     quat.Number
	lastEquator  quat.Number
	lastAngVel   r3.Vec
	spinValid    bool
	equatorValid bool
	angVelValid  bool
}

// NewCaching builds a caching model from uncached spin and equator functions.
// A period of zero marks the model aperiodic. Angular velocity is found by
// differentiation.
func NewCaching(spin, equator func(tjd float64) quat.Number, period float64) *Caching {
	return &Caching{
		computeSpin:    spin,
		computeEquator: equator,
		periodic:       period != 0,
		period:         period,
		rec:            metrics.Nop{},
		lastTime:       365.0,
	}
}

// Cached wraps an existing model, reusing its own angular velocity.
func Cached(m Model) *Caching {
	return &Caching{
		computeSpin:    m.Spin,
		computeEquator: m.EquatorOrientationAtTime,
		computeAngVel:  m.AngularVelocityAtTime,
		periodic:       m.IsPeriodic(),
		period:         m.Period(),
		rec:            metrics.Nop{},
		lastTime:       365.0,
	}
}

// SetRecorder directs cache hit and miss counts to r.
func (c *Caching) SetRecorder(r metrics.Recorder) { c.rec = metrics.OrNop(r) }

func (c *Caching) Spin(tjd float64) quat.Number {
	switch {
	case tjd != c.lastTime:
		c.lastTime = tjd
		c.lastSpin = c.computeSpin(tjd)
		c.spinValid = true
		c.equatorValid = false
		c.angVelValid = false
		c.rec.RotationCacheLookup(metrics.QuantitySpin, false)
	case !c.spinValid:
		c.lastSpin = c.computeSpin(tjd)
		c.spinValid = true
		c.rec.RotationCacheLookup(metrics.QuantitySpin, false)
	default:
		c.rec.RotationCacheLookup(metrics.QuantitySpin, true)
	}
	return c.lastSpin
}

func (c *Caching) EquatorOrientationAtTime(tjd float64) quat.Number {
	switch {
	case tjd != c.lastTime:
		c.lastTime = tjd
		c.lastEquator = c.computeEquator(tjd)
		c.spinValid = false
		c.equatorValid = true
		c.angVelValid = false
		c.rec.RotationCacheLookup(metrics.QuantityEquator, false)
	case !c.equatorValid:
		c.lastEquator = c.computeEquator(tjd)
		c.equatorValid = true
		c.rec.RotationCacheLookup(metrics.QuantityEquator, false)
	default:
		c.rec.RotationCacheLookup(metrics.QuantityEquator, true)
	}
	return c.lastEquator
}

func (c *Caching) OrientationAtTime(tjd float64) quat.Number {
	return Orientation(c, tjd)
}

func (c *Caching) AngularVelocityAtTime(tjd float64) r3.Vec {
	switch {
	case tjd != c.lastTime:
		c.lastAngVel = c.computeAngularVelocity(tjd)
		c.lastTime = tjd
		c.spinValid = false
		c.equatorValid = false
		c.angVelValid = true
		c.rec.RotationCacheLookup(metrics.QuantityAngularVelocity, false)
	case !c.angVelValid:
		c.lastAngVel = c.computeAngularVelocity(tjd)
		c.angVelValid = true
		c.rec.RotationCacheLookup(metrics.QuantityAngularVelocity, false)
	default:
		c.rec.RotationCacheLookup(metrics.QuantityAngularVelocity, true)
	}
	return c.lastAngVel
}

// computeAngularVelocity samples the uncached functions at tjd+dt so the
// cached slot for tjd is left intact.
func (c *Caching) computeAngularVelocity(tjd float64) r3.Vec {
	if c.computeAngVel != nil {
		return c.computeAngVel(tjd)
	}
	dt := diffTimeDelta(c.periodic, c.period)
	q0 := c.OrientationAtTime(tjd)
	q1 := quat.Mul(c.computeSpin(tjd+dt), c.computeEquator(tjd+dt))
	return AngularVelocityFromOrientations(q0, q1, dt)
}

func (c *Caching) IsPeriodic() bool { return c.periodic }

func (c *Caching) Period() float64 { return c.period }
