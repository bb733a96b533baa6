package engine

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/rotation"
	"github.com/litescript/ls-orrery/internal/univcoord"
)

// AngularVelocityDiffDelta is the step in days used when a frame's angular
// velocity has to be found by differentiating its orientation.
const AngularVelocityDiffDelta = 1.0 / 1440.0

// FrameType selects which of a body's frames a nesting-depth walk follows.
type FrameType int

const (
	PositionFrame FrameType = iota + 1
	OrientationFrame
)

func (ft FrameType) String() string {
	switch ft {
	case PositionFrame:
		return "position"
	case OrientationFrame:
		return "orientation"
	default:
		return "unknown"
	}
}

// ReferenceFrame is a time-dependent coordinate system with an origin at its
// center object. Orientation maps universal axes to frame axes: a vector v in
// universal axes has frame coordinates q v q*.
//
// Frames are immutable once built and may be shared by any number of
// timeline phases.
type ReferenceFrame interface {
	Center() Selection
	Orientation(tjd float64) quat.Number
	// AngularVelocity returns the frame's angular velocity in universal axes,
	// in radians per day.
	AngularVelocity(tjd float64) r3.Vec
	IsInertial() bool
	// NestingDepth walks the frames this frame depends on, starting at depth.
	// A result greater than maxDepth means the walk was cut off.
	NestingDepth(depth, maxDepth uint, ft FrameType) uint
}

// FrameDepth returns the nesting depth of f, capped just past maxDepth.
func FrameDepth(f ReferenceFrame, maxDepth uint, ft FrameType) uint {
	return f.NestingDepth(0, maxDepth, ft)
}

// ConvertFromUniversal expresses the universal coordinate uc in frame f at
// tjd. The rotation is carried out in fixed point.
func ConvertFromUniversal(f ReferenceFrame, uc univcoord.Coord, tjd float64) univcoord.Coord {
	rel := uc.Sub(f.Center().Position(tjd))
	return rotateCoord(astro.Matrix(f.Orientation(tjd)), rel)
}

// ConvertToUniversal is the inverse of ConvertFromUniversal.
func ConvertToUniversal(f ReferenceFrame, uc univcoord.Coord, tjd float64) univcoord.Coord {
	m := astro.Matrix(quat.Conj(f.Orientation(tjd)))
	return f.Center().Position(tjd).Add(rotateCoord(m, uc))
}

// ConvertOrientationFromUniversal re-expresses an orientation given relative
// to universal axes as one relative to f's axes.
func ConvertOrientationFromUniversal(f ReferenceFrame, q quat.Number, tjd float64) quat.Number {
	return quat.Mul(q, quat.Conj(f.Orientation(tjd)))
}

// ConvertOrientationToUniversal is the inverse of ConvertOrientationFromUniversal.
func ConvertOrientationToUniversal(f ReferenceFrame, q quat.Number, tjd float64) quat.Number {
	return quat.Mul(q, f.Orientation(tjd))
}

// ConvertFromAstrocentric expresses p, a position in km relative to the
// system's star, in frame f. It is only meaningful when the frame center is
// in the same planetary system; for centers that are neither a body nor a
// star it returns the zero vector.
func ConvertFromAstrocentric(f ReferenceFrame, p r3.Vec, tjd float64) r3.Vec {
	center := f.Center()
	switch center.Type() {
	case SelectionBody:
		c := center.Body().AstrocentricPosition(tjd)
		return astro.Rotate(f.Orientation(tjd), r3.Sub(p, c))
	case SelectionStar:
		return astro.Rotate(f.Orientation(tjd), p)
	default:
		return r3.Vec{}
	}
}

// ConvertToAstrocentric is the inverse of ConvertFromAstrocentric, with the
// same restriction on the frame center.
func ConvertToAstrocentric(f ReferenceFrame, p r3.Vec, tjd float64) r3.Vec {
	center := f.Center()
	switch center.Type() {
	case SelectionBody:
		c := center.Body().AstrocentricPosition(tjd)
		return r3.Add(c, astro.Rotate(quat.Conj(f.Orientation(tjd)), p))
	case SelectionStar:
		return astro.Rotate(quat.Conj(f.Orientation(tjd)), p)
	default:
		return r3.Vec{}
	}
}

// rotateCoord multiplies uc by m, each output component being a sum of three
// 64.64 products.
func rotateCoord(m *r3.Mat, uc univcoord.Coord) univcoord.Coord {
	var out [3]univcoord.R128
	for i := range out {
		var sum univcoord.R128
		for j := 0; j < 3; j++ {
			sum = sum.Add(uc.Component(j).Mul(univcoord.R128FromFloat64(m.At(i, j))))
		}
		out[i] = sum
	}
	return univcoord.Coord{X: out[0], Y: out[1], Z: out[2]}
}

// frameDepth returns the nesting depth contributed by the frames of sel: its
// orbit frame for position walks, its body frame for orientation walks.
// Only the frames in effect at t = 0 are examined.
func frameDepth(sel Selection, depth, maxDepth uint, ft FrameType) uint {
	if depth > maxDepth {
		return depth
	}
	body := sel.frameBody()
	if body == nil {
		return depth
	}

	orbitDepth, bodyDepth := depth, depth
	if ft == PositionFrame {
		if f := body.OrbitFrame(0.0); f != nil {
			orbitDepth = f.NestingDepth(depth+1, maxDepth, ft)
			if orbitDepth > maxDepth {
				return orbitDepth
			}
		}
	}
	if ft == OrientationFrame {
		if f := body.BodyFrame(0.0); f != nil {
			bodyDepth = f.NestingDepth(depth+1, maxDepth, ft)
		}
	}
	return max(orbitDepth, bodyDepth)
}

// differentiateOrientation estimates angular velocity from orientations one
// step apart.
func differentiateOrientation(q0, q1 quat.Number) r3.Vec {
	return rotation.AngularVelocityFromOrientations(q0, q1, AngularVelocityDiffDelta)
}
