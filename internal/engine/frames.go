package engine

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/astro"
)

// yrot180 turns body-fixed axes half a revolution about y so that frame axes
// line up with the texture convention of rotation models.
var yrot180 = quat.Number{Jmag: 1}

// J2000EclipticFrame has the axes of the universal frame.
type J2000EclipticFrame struct {
	center Selection
}

// NewJ2000EclipticFrame returns an ecliptic frame centered on center.
func NewJ2000EclipticFrame(center Selection) *J2000EclipticFrame {
	return &J2000EclipticFrame{center: center}
}

func (f *J2000EclipticFrame) Center() Selection { return f.center }

func (f *J2000EclipticFrame) Orientation(float64) quat.Number { return astro.Identity() }

func (f *J2000EclipticFrame) AngularVelocity(float64) r3.Vec { return r3.Vec{} }

func (f *J2000EclipticFrame) IsInertial() bool { return true }

func (f *J2000EclipticFrame) NestingDepth(depth, maxDepth uint, _ FrameType) uint {
	return frameDepth(f.center, depth, maxDepth, PositionFrame)
}

// J2000EquatorFrame is tilted from the ecliptic by the J2000 obliquity.
type J2000EquatorFrame struct {
	center Selection
}

// NewJ2000EquatorFrame returns an Earth mean equator frame centered on center.
func NewJ2000EquatorFrame(center Selection) *J2000EquatorFrame {
	return &J2000EquatorFrame{center: center}
}

func (f *J2000EquatorFrame) Center() Selection { return f.center }

func (f *J2000EquatorFrame) Orientation(float64) quat.Number {
	return astro.XRotation(astro.J2000Obliquity)
}

func (f *J2000EquatorFrame) AngularVelocity(float64) r3.Vec { return r3.Vec{} }

func (f *J2000EquatorFrame) IsInertial() bool { return true }

func (f *J2000EquatorFrame) NestingDepth(depth, maxDepth uint, _ FrameType) uint {
	return frameDepth(f.center, depth, maxDepth, PositionFrame)
}

// BodyFixedFrame rotates with an object: a body, a star, or the body a
// location sits on.
type BodyFixedFrame struct {
	center Selection
	fixed  Selection
}

// NewBodyFixedFrame returns a frame centered on center that turns with obj.
func NewBodyFixedFrame(center, obj Selection) *BodyFixedFrame {
	return &BodyFixedFrame{center: center, fixed: obj}
}

func (f *BodyFixedFrame) Center() Selection { return f.center }

// Object returns the selection whose rotation the frame follows.
func (f *BodyFixedFrame) Object() Selection { return f.fixed }

func (f *BodyFixedFrame) Orientation(tjd float64) quat.Number {
	switch f.fixed.Type() {
	case SelectionBody:
		return quat.Mul(yrot180, f.fixed.Body().EclipticToBodyFixed(tjd))
	case SelectionStar:
		return quat.Mul(yrot180, f.fixed.Star().RotationModel().OrientationAtTime(tjd))
	case SelectionLocation:
		if b := f.fixed.Location().ParentBody(); b != nil {
			return quat.Mul(yrot180, b.EclipticToBodyFixed(tjd))
		}
		return yrot180
	default:
		return yrot180
	}
}

func (f *BodyFixedFrame) AngularVelocity(tjd float64) r3.Vec {
	switch f.fixed.Type() {
	case SelectionBody:
		return f.fixed.Body().AngularVelocity(tjd)
	case SelectionStar:
		return f.fixed.Star().RotationModel().AngularVelocityAtTime(tjd)
	case SelectionLocation:
		if b := f.fixed.Location().ParentBody(); b != nil {
			return b.AngularVelocity(tjd)
		}
		return r3.Vec{}
	default:
		return r3.Vec{}
	}
}

func (f *BodyFixedFrame) IsInertial() bool { return false }

func (f *BodyFixedFrame) NestingDepth(depth, maxDepth uint, _ FrameType) uint {
	n := frameDepth(f.center, depth, maxDepth, PositionFrame)
	if n > maxDepth {
		return n
	}
	return max(n, frameDepth(f.fixed, depth, maxDepth, OrientationFrame))
}

// BodyMeanEquatorFrame follows the mean equator of an object, optionally
// frozen at a fixed epoch.
type BodyMeanEquatorFrame struct {
	center      Selection
	equator     Selection
	freezeEpoch float64
	frozen      bool
}

// NewBodyMeanEquatorFrame returns a mean equator frame of obj that tracks
// time.
func NewBodyMeanEquatorFrame(center, obj Selection) *BodyMeanEquatorFrame {
	return &BodyMeanEquatorFrame{center: center, equator: obj, freezeEpoch: astro.J2000}
}

// NewFrozenBodyMeanEquatorFrame returns the mean equator frame of obj as it
// was at freezeEpoch.
func NewFrozenBodyMeanEquatorFrame(center, obj Selection, freezeEpoch float64) *BodyMeanEquatorFrame {
	return &BodyMeanEquatorFrame{center: center, equator: obj, freezeEpoch: freezeEpoch, frozen: true}
}

func (f *BodyMeanEquatorFrame) Center() Selection { return f.center }

func (f *BodyMeanEquatorFrame) Object() Selection { return f.equator }

// Frozen reports whether the frame is fixed at an epoch, and which.
func (f *BodyMeanEquatorFrame) Frozen() (float64, bool) { return f.freezeEpoch, f.frozen }

func (f *BodyMeanEquatorFrame) Orientation(tjd float64) quat.Number {
	t := tjd
	if f.frozen {
		t = f.freezeEpoch
	}
	switch f.equator.Type() {
	case SelectionBody:
		return f.equator.Body().EclipticToEquatorial(t)
	case SelectionStar:
		return f.equator.Star().RotationModel().EquatorOrientationAtTime(t)
	default:
		return astro.Identity()
	}
}

func (f *BodyMeanEquatorFrame) AngularVelocity(tjd float64) r3.Vec {
	if f.frozen {
		return r3.Vec{}
	}
	if b := f.equator.Body(); b != nil {
		if bf := b.BodyFrame(tjd); bf != nil {
			return bf.AngularVelocity(tjd)
		}
	}
	return r3.Vec{}
}

// IsInertial treats the mean equator as fixed unless the object's own body
// frame rotates. The body frame consulted is the one in effect at t = 0
// whatever time the frame is later evaluated at.
func (f *BodyMeanEquatorFrame) IsInertial() bool {
	if f.frozen {
		return true
	}
	if b := f.equator.Body(); b != nil {
		if bf := b.BodyFrame(0.0); bf != nil {
			return bf.IsInertial()
		}
	}
	return true
}

func (f *BodyMeanEquatorFrame) NestingDepth(depth, maxDepth uint, _ FrameType) uint {
	n := frameDepth(f.center, depth, maxDepth, PositionFrame)
	if n > maxDepth {
		return n
	}
	return max(n, frameDepth(f.equator, depth, maxDepth, OrientationFrame))
}
