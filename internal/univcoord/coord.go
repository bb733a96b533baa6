package univcoord

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/astro"
)

// outOfBoundsLimit is 2^62 µly; larger components risk overflow when two
// coordinates are subtracted.
const outOfBoundsLimit = uint64(1) << 62

// Coord is a position in the universal frame, measured in micro-light-years.
type Coord struct {
	X, Y, Z R128
}

// Zero returns the origin.
func Zero() Coord {
	return Coord{}
}

// New returns a coordinate from float64 µly components.
func New(x, y, z float64) Coord {
	return Coord{
		X: R128FromFloat64(x),
		Y: R128FromFloat64(y),
		Z: R128FromFloat64(z),
	}
}

// CreateUly builds a coordinate from a vector in micro-light-years.
func CreateUly(v r3.Vec) Coord {
	return New(v.X, v.Y, v.Z)
}

// CreateKm builds a coordinate from a vector in kilometers.
func CreateKm(v r3.Vec) Coord {
	return CreateUly(r3.Scale(1/astro.KmPerMicroLightYear, v))
}

// CreateLy builds a coordinate from a vector in light years.
func CreateLy(v r3.Vec) Coord {
	return CreateUly(r3.Scale(1e6, v))
}

// Add returns c + d exactly.
func (c Coord) Add(d Coord) Coord {
	return Coord{X: c.X.Add(d.X), Y: c.Y.Add(d.Y), Z: c.Z.Add(d.Z)}
}

// Sub returns c - d exactly.
func (c Coord) Sub(d Coord) Coord {
	return Coord{X: c.X.Sub(d.X), Y: c.Y.Sub(d.Y), Z: c.Z.Sub(d.Z)}
}

// OffsetUly returns c displaced by v micro-light-years.
func (c Coord) OffsetUly(v r3.Vec) Coord {
	return c.Add(CreateUly(v))
}

// OffsetKm returns c displaced by v kilometers.
func (c Coord) OffsetKm(v r3.Vec) Coord {
	return c.Add(CreateKm(v))
}

// ToUly narrows c to float64 micro-light-years.
func (c Coord) ToUly() r3.Vec {
	return r3.Vec{X: c.X.Float64(), Y: c.Y.Float64(), Z: c.Z.Float64()}
}

// ToLy narrows c to float64 light years.
func (c Coord) ToLy() r3.Vec {
	return r3.Scale(1e-6, c.ToUly())
}

// OffsetFromUly returns c - origin in micro-light-years. The subtraction is
// done at full precision before narrowing.
func (c Coord) OffsetFromUly(origin Coord) r3.Vec {
	return c.Sub(origin).ToUly()
}

// OffsetFromKm returns c - origin in kilometers.
func (c Coord) OffsetFromKm(origin Coord) r3.Vec {
	return r3.Scale(astro.KmPerMicroLightYear, c.OffsetFromUly(origin))
}

// OffsetFromLy returns c - origin in light years, where origin is given in
// light years.
func (c Coord) OffsetFromLy(origin r3.Vec) r3.Vec {
	return r3.Scale(1e-6, c.Sub(CreateLy(origin)).ToUly())
}

// DistanceFromKm returns |c - origin| in kilometers.
func (c Coord) DistanceFromKm(origin Coord) float64 {
	return r3.Norm(c.OffsetFromKm(origin))
}

// DistanceFromLy returns |c - origin| in light years.
func (c Coord) DistanceFromLy(origin r3.Vec) float64 {
	return r3.Norm(c.OffsetFromLy(origin))
}

// IsOutOfBounds reports whether any component exceeds 2^62 µly in magnitude.
func (c Coord) IsOutOfBounds() bool {
	return componentOutOfBounds(c.X) || componentOutOfBounds(c.Y) || componentOutOfBounds(c.Z)
}

func componentOutOfBounds(r R128) bool {
	// In two's complement, values above 2^62 or below -2^62 lie strictly
	// between the two limits when read as unsigned.
	return r.hi > outOfBoundsLimit && r.hi < ^outOfBoundsLimit+1
}

// Component returns the i'th component (0=X, 1=Y, 2=Z).
func (c Coord) Component(i int) R128 {
	switch i {
	case 0:
		return c.X
	case 1:
		return c.Y
	default:
		return c.Z
	}
}
