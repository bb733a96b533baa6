package engine

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/metrics"
)

// FrameSource computes the uncached state of a frame.
type FrameSource interface {
	ComputeOrientation(tjd float64) quat.Number
	IsInertial() bool
	NestingDepth(depth, maxDepth uint, ft FrameType) uint
}

// AngularVelocitySource is implemented by sources with a closed form for
// their angular velocity. Other sources are differentiated.
type AngularVelocitySource interface {
	ComputeAngularVelocity(tjd float64) r3.Vec
}

// CachingFrame remembers the orientation and angular velocity of the last
// time it was evaluated at. Times are compared exactly. A CachingFrame must
// not be evaluated from more than one goroutine at a time.
type CachingFrame struct {
	center Selection
	source FrameSource
	rec    metrics.Recorder

	lastTime             float64
	lastOrientation      quat.Number
	lastAngularVelocity  r3.Vec
	orientationValid     bool
	angularVelocityValid bool
}

// NewCachingFrame wraps source in a single-slot cache.
func NewCachingFrame(center Selection, source FrameSource) *CachingFrame {
	c := &CachingFrame{}
	c.init(center, source)
	return c
}

func (c *CachingFrame) init(center Selection, source FrameSource) {
	c.center = center
	c.source = source
	c.rec = metrics.Nop{}
	c.lastTime = -1.0e50
	c.lastOrientation = astro.Identity()
}

func (c *CachingFrame) Center() Selection { return c.center }

// SetRecorder directs cache hit and miss counts to r.
func (c *CachingFrame) SetRecorder(r metrics.Recorder) { c.rec = metrics.OrNop(r) }

func (c *CachingFrame) Orientation(tjd float64) quat.Number {
	switch {
	case tjd != c.lastTime:
		c.lastTime = tjd
		c.angularVelocityValid = false
		c.lastOrientation = c.source.ComputeOrientation(tjd)
		c.orientationValid = true
		c.rec.FrameCacheLookup(metrics.QuantityOrientation, false)
	case !c.orientationValid:
		c.lastOrientation = c.source.ComputeOrientation(tjd)
		c.orientationValid = true
		c.rec.FrameCacheLookup(metrics.QuantityOrientation, false)
	default:
		c.rec.FrameCacheLookup(metrics.QuantityOrientation, true)
	}
	return c.lastOrientation
}

func (c *CachingFrame) AngularVelocity(tjd float64) r3.Vec {
	switch {
	case tjd != c.lastTime:
		c.lastTime = tjd
		c.orientationValid = false
		c.lastAngularVelocity = c.computeAngularVelocity(tjd)
		c.angularVelocityValid = true
		c.rec.FrameCacheLookup(metrics.QuantityAngularVelocity, false)
	case !c.angularVelocityValid:
		c.lastAngularVelocity = c.computeAngularVelocity(tjd)
		c.angularVelocityValid = true
		c.rec.FrameCacheLookup(metrics.QuantityAngularVelocity, false)
	default:
		c.rec.FrameCacheLookup(metrics.QuantityAngularVelocity, true)
	}
	return c.lastAngularVelocity
}

// computeAngularVelocity differentiates the orientation. The sample at tjd
// goes through the cache; the one a step later does not, so the cached
// orientation stays at tjd.
func (c *CachingFrame) computeAngularVelocity(tjd float64) r3.Vec {
	if s, ok := c.source.(AngularVelocitySource); ok {
		return s.ComputeAngularVelocity(tjd)
	}
	q0 := c.Orientation(tjd)
	q1 := c.source.ComputeOrientation(tjd + AngularVelocityDiffDelta)
	return differentiateOrientation(q0, q1)
}

func (c *CachingFrame) IsInertial() bool { return c.source.IsInertial() }

func (c *CachingFrame) NestingDepth(depth, maxDepth uint, ft FrameType) uint {
	return c.source.NestingDepth(depth, maxDepth, ft)
}
