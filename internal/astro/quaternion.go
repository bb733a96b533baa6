package astro

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Orientations are unit quaternions that rotate vectors with q·v·q*. A frame
// orientation maps universal (J2000 ecliptic) vectors into the local frame.

// Identity returns the identity rotation.
func Identity() quat.Number {
	return quat.Number{Real: 1}
}

// XRotation returns a rotation of angle radians about the x axis.
func XRotation(angle float64) quat.Number {
	s, c := math.Sincos(angle / 2)
	return quat.Number{Real: c, Imag: s}
}

// YRotation returns a rotation of angle radians about the y axis.
func YRotation(angle float64) quat.Number {
	s, c := math.Sincos(angle / 2)
	return quat.Number{Real: c, Jmag: s}
}

// ZRotation returns a rotation of angle radians about the z axis.
func ZRotation(angle float64) quat.Number {
	s, c := math.Sincos(angle / 2)
	return quat.Number{Real: c, Kmag: s}
}

// Rotate applies q to v.
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	return r3.Rotation(q).Rotate(v)
}

// Mul composes rotations; Mul(a, b) applies b first.
func Mul(a, b quat.Number) quat.Number {
	return quat.Mul(a, b)
}

// Conj returns the inverse of a unit quaternion.
func Conj(q quat.Number) quat.Number {
	return quat.Conj(q)
}

// Normalize scales q to unit length. The zero quaternion maps to identity.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return Identity()
	}
	return quat.Scale(1/n, q)
}

// Vector returns the imaginary part of q.
func Vector(q quat.Number) r3.Vec {
	return r3.Vec{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
}

// Matrix returns the rotation matrix equivalent to q.
func Matrix(q quat.Number) *r3.Mat {
	return r3.Rotation(q).Mat()
}

// FromMatrixRows builds the rotation whose matrix has the given rows. The rows
// must form a proper orthonormal basis.
func FromMatrixRows(rows [3]r3.Vec) quat.Number {
	m00, m01, m02 := rows[0].X, rows[0].Y, rows[0].Z
	m10, m11, m12 := rows[1].X, rows[1].Y, rows[1].Z
	m20, m21, m22 := rows[2].X, rows[2].Y, rows[2].Z

	var q quat.Number
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = quat.Number{
			Real: 0.25 / s,
			Imag: (m21 - m12) * s,
			Jmag: (m02 - m20) * s,
			Kmag: (m10 - m01) * s,
		}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = quat.Number{
			Real: (m21 - m12) / s,
			Imag: 0.25 * s,
			Jmag: (m01 + m10) / s,
			Kmag: (m02 + m20) / s,
		}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = quat.Number{
			Real: (m02 - m20) / s,
			Imag: (m01 + m10) / s,
			Jmag: 0.25 * s,
			Kmag: (m12 + m21) / s,
		}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = quat.Number{
			Real: (m10 - m01) / s,
			Imag: (m02 + m20) / s,
			Jmag: (m12 + m21) / s,
			Kmag: 0.25 * s,
		}
	}
	return Normalize(q)
}

// AngleBetween returns the rotation angle separating two orientations, in [0, π].
func AngleBetween(a, b quat.Number) float64 {
	d := quat.Mul(quat.Conj(a), b)
	w := math.Min(1, math.Abs(d.Real)/quat.Abs(d))
	return 2 * math.Acos(w)
}
