package engine

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/astro"
)

// TwoVectorTolerance is the smallest |primary × secondary| for which a
// two-vector frame is considered well defined.
const TwoVectorTolerance = 1.0e-6

// ErrInvalidAxes reports a two-vector axis pair that cannot define a frame.
var ErrInvalidAxes = errors.New("invalid two-vector axes")

// FrameVectorType identifies how a FrameVector computes its direction.
type FrameVectorType int

const (
	RelativePosition FrameVectorType = iota
	RelativeVelocity
	ConstantVector
)

func (t FrameVectorType) String() string {
	switch t {
	case RelativePosition:
		return "relative-position"
	case RelativeVelocity:
		return "relative-velocity"
	case ConstantVector:
		return "constant"
	default:
		return "unknown"
	}
}

// FrameVector is a time-dependent direction in universal axes.
type FrameVector struct {
	kind     FrameVectorType
	observer Selection
	target   Selection
	vec      r3.Vec
	frame    ReferenceFrame
}

// NewRelativePositionVector points from observer to target.
func NewRelativePositionVector(observer, target Selection) FrameVector {
	return FrameVector{kind: RelativePosition, observer: observer, target: target}
}

// NewRelativeVelocityVector is the velocity of target relative to observer.
func NewRelativeVelocityVector(observer, target Selection) FrameVector {
	return FrameVector{kind: RelativeVelocity, observer: observer, target: target}
}

// NewConstantVector is v fixed in frame, or in universal axes when frame is
// nil.
func NewConstantVector(v r3.Vec, frame ReferenceFrame) FrameVector {
	return FrameVector{kind: ConstantVector, vec: v, frame: frame}
}

func (fv FrameVector) Type() FrameVectorType { return fv.kind }

// Direction returns the (unnormalized) vector at tjd.
func (fv FrameVector) Direction(tjd float64) r3.Vec {
	switch fv.kind {
	case RelativePosition:
		return fv.target.Position(tjd).OffsetFromKm(fv.observer.Position(tjd))
	case RelativeVelocity:
		return r3.Sub(fv.target.Velocity(tjd), fv.observer.Velocity(tjd))
	case ConstantVector:
		if fv.frame == nil {
			return fv.vec
		}
		return astro.Rotate(quat.Conj(fv.frame.Orientation(tjd)), fv.vec)
	default:
		return r3.Vec{}
	}
}

// IsInertial reports whether the direction is fixed: a constant vector in
// universal axes or in an inertial frame.
func (fv FrameVector) IsInertial() bool {
	if fv.kind != ConstantVector {
		return false
	}
	return fv.frame == nil || fv.frame.IsInertial()
}

func (fv FrameVector) NestingDepth(depth, maxDepth uint) uint {
	switch fv.kind {
	case RelativePosition, RelativeVelocity:
		n := frameDepth(fv.observer, depth, maxDepth, PositionFrame)
		if n > maxDepth {
			return n
		}
		return max(n, frameDepth(fv.target, depth, maxDepth, PositionFrame))
	case ConstantVector:
		if depth > maxDepth || fv.frame == nil {
			return depth
		}
		return fv.frame.NestingDepth(depth+1, maxDepth, OrientationFrame)
	default:
		return depth
	}
}

// ValidateAxes checks a primary/secondary axis pair. Axes are ±1, ±2 or ±3
// for ±x, ±y, ±z, and the two must name different axes.
func ValidateAxes(primary, secondary int) error {
	switch {
	case primary == 0 || secondary == 0:
		return fmt.Errorf("%w: axis index is zero", ErrInvalidAxes)
	case abs(primary) > 3 || abs(secondary) > 3:
		return fmt.Errorf("%w: axis index out of range (%d, %d)", ErrInvalidAxes, primary, secondary)
	case abs(primary) == abs(secondary):
		return fmt.Errorf("%w: primary and secondary are collinear (%d, %d)", ErrInvalidAxes, primary, secondary)
	}
	return nil
}

// TwoVectorFrame aligns its primary axis with one FrameVector and places a
// second FrameVector in the plane of the primary and secondary axes.
type TwoVectorFrame struct {
	CachingFrame

	primary       FrameVector
	secondary     FrameVector
	primaryAxis   int
	secondaryAxis int
	tertiaryAxis  int
}

// NewTwoVectorFrame builds a two-vector frame. It panics if the axes fail
// ValidateAxes; configuration loaders should validate first.
func NewTwoVectorFrame(center Selection, primary FrameVector, primaryAxis int, secondary FrameVector, secondaryAxis int) *TwoVectorFrame {
	if err := ValidateAxes(primaryAxis, secondaryAxis); err != nil {
		panic(err)
	}

	f := &TwoVectorFrame{
		primary:       primary,
		secondary:     secondary,
		primaryAxis:   primaryAxis,
		secondaryAxis: secondaryAxis,
	}
	switch {
	case abs(primaryAxis) != 1 && abs(secondaryAxis) != 1:
		f.tertiaryAxis = 1
	case abs(primaryAxis) != 2 && abs(secondaryAxis) != 2:
		f.tertiaryAxis = 2
	default:
		f.tertiaryAxis = 3
	}
	f.CachingFrame.init(center, f)
	return f
}

// Axes returns the primary, secondary and tertiary axis indices.
func (f *TwoVectorFrame) Axes() (primary, secondary, tertiary int) {
	return f.primaryAxis, f.secondaryAxis, f.tertiaryAxis
}

// ComputeOrientation builds the frame's orientation at tjd without consulting
// the cache. Collinear vectors yield the identity.
func (f *TwoVectorFrame) ComputeOrientation(tjd float64) quat.Number {
	v0 := normalizeOrZero(f.primary.Direction(tjd))
	v1 := normalizeOrZero(f.secondary.Direction(tjd))
	if f.primaryAxis < 0 {
		v0 = r3.Scale(-1, v0)
	}
	if f.secondaryAxis < 0 {
		v1 = r3.Scale(-1, v1)
	}

	v2 := r3.Cross(v0, v1)
	length := r3.Norm(v2)
	if length < TwoVectorTolerance {
		return astro.Identity()
	}
	v2 = r3.Scale(1/length, v2)

	prim, sec, tert := abs(f.primaryAxis)-1, abs(f.secondaryAxis)-1, f.tertiaryAxis-1
	rhOrder := abs(f.primaryAxis)%3+1 == abs(f.secondaryAxis)

	var rows [3]r3.Vec
	rows[prim] = v0
	if rhOrder {
		rows[sec] = r3.Cross(v2, v0)
		rows[tert] = v2
	} else {
		neg := r3.Scale(-1, v2)
		rows[sec] = r3.Cross(v0, neg)
		rows[tert] = neg
	}
	return astro.FromMatrixRows(rows)
}

// IsInertial holds when both defining vectors are fixed directions.
func (f *TwoVectorFrame) IsInertial() bool {
	return f.primary.IsInertial() && f.secondary.IsInertial()
}

func (f *TwoVectorFrame) NestingDepth(depth, maxDepth uint, _ FrameType) uint {
	n := frameDepth(f.center, depth, maxDepth, PositionFrame)
	if n > maxDepth {
		return n
	}
	n = max(n, f.primary.NestingDepth(depth, maxDepth))
	if n > maxDepth {
		return n
	}
	return max(n, f.secondary.NestingDepth(depth, maxDepth))
}

func normalizeOrZero(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 {
		return v
	}
	return r3.Scale(1/n, v)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
