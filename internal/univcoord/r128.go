// Package univcoord implements universal coordinates: 3-vectors of signed
// 64.64 fixed-point values measured in micro-light-years.
package univcoord

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"math"
	"math/bits"
)

// R128 is a signed 64.64 fixed-point number stored as a 128-bit two's
// complement value. hi carries the integer part and lo the fraction.
type R128 struct {
	hi uint64
	lo uint64
}

const (
	two64 = 18446744073709551616.0
	two63 = 9223372036854775808.0
)

// ErrInvalidEncoding is returned when a base64 R128 cannot be decoded.
var ErrInvalidEncoding = errors.New("univcoord: invalid R128 encoding")

// NewR128 returns a value with the given integer and fraction words.
func NewR128(hi int64, lo uint64) R128 {
	return R128{hi: uint64(hi), lo: lo}
}

// R128FromInt returns the fixed-point value of an integer.
func R128FromInt(n int64) R128 {
	return R128{hi: uint64(n)}
}

// R128FromFloat64 converts f to fixed point, saturating outside the
// representable range. NaN converts to zero.
func R128FromFloat64(f float64) R128 {
	switch {
	case math.IsNaN(f):
		return R128{}
	case f >= two63:
		return R128{hi: math.MaxInt64, lo: math.MaxUint64}
	case f < -two63:
		return R128{hi: 1 << 63}
	}

	neg := f < 0
	a := math.Abs(f)
	ip := math.Floor(a)
	frac := math.Ldexp(a-ip, 64)
	r := R128{hi: uint64(ip)}
	if frac >= two64 {
		r.lo = math.MaxUint64
	} else {
		r.lo = uint64(frac)
	}
	if neg {
		r = r.Neg()
	}
	return r
}

// Hi returns the integer word.
func (r R128) Hi() int64 { return int64(r.hi) }

// Lo returns the fraction word.
func (r R128) Lo() uint64 { return r.lo }

// IsNeg reports whether r < 0.
func (r R128) IsNeg() bool {
	return int64(r.hi) < 0
}

// IsZero reports whether r == 0.
func (r R128) IsZero() bool {
	return r.hi == 0 && r.lo == 0
}

// Add returns r + s. Overflow wraps.
func (r R128) Add(s R128) R128 {
	lo, carry := bits.Add64(r.lo, s.lo, 0)
	hi, _ := bits.Add64(r.hi, s.hi, carry)
	return R128{hi: hi, lo: lo}
}

// Sub returns r - s. Overflow wraps.
func (r R128) Sub(s R128) R128 {
	lo, borrow := bits.Sub64(r.lo, s.lo, 0)
	hi, _ := bits.Sub64(r.hi, s.hi, borrow)
	return R128{hi: hi, lo: lo}
}

// Neg returns -r.
func (r R128) Neg() R128 {
	return R128{}.Sub(r)
}

// Abs returns |r|. The most negative value is returned unchanged.
func (r R128) Abs() R128 {
	if r.IsNeg() {
		return r.Neg()
	}
	return r
}

// Mul returns r * s rounded to the nearest 2^-64. The full 256-bit product is
// formed; bits above the 64.64 range are discarded.
func (r R128) Mul(s R128) R128 {
	neg := r.IsNeg() != s.IsNeg()
	a, b := r.Abs(), s.Abs()

	// 128x128 -> 256 bit product in words w0 (least) .. w2; w3 is dropped.
	h0, w0 := bits.Mul64(a.lo, b.lo)
	h1, l1 := bits.Mul64(a.lo, b.hi)
	h2, l2 := bits.Mul64(a.hi, b.lo)
	_, l3 := bits.Mul64(a.hi, b.hi)

	w1, c1 := bits.Add64(h0, l1, 0)
	w1, c2 := bits.Add64(w1, l2, 0)
	w2, _ := bits.Add64(h1, h2, c1)
	w2, _ = bits.Add64(w2, l3, c2)

	p := R128{hi: w2, lo: w1}
	if w0&(1<<63) != 0 {
		p = p.Add(R128{lo: 1})
	}
	if neg {
		p = p.Neg()
	}
	return p
}

// Cmp returns -1, 0 or +1 as r is less than, equal to or greater than s.
func (r R128) Cmp(s R128) int {
	rh, sh := int64(r.hi), int64(s.hi)
	switch {
	case rh < sh:
		return -1
	case rh > sh:
		return 1
	case r.lo < s.lo:
		return -1
	case r.lo > s.lo:
		return 1
	}
	return 0
}

// Float64 narrows r to the nearest float64.
func (r R128) Float64() float64 {
	if r.IsNeg() {
		a := r.Neg()
		if a.IsNeg() {
			return -two63
		}
		return -a.Float64()
	}
	return float64(r.hi) + math.Ldexp(float64(r.lo), -64)
}

// EncodeBase64 returns a compact, lossless text form of r. Leading zero bytes
// of the big-endian representation are dropped and the result uses the URL
// safe alphabet without padding.
func (r R128) EncodeBase64() string {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], r.hi)
	binary.BigEndian.PutUint64(buf[8:], r.lo)
	i := 0
	for i < len(buf)-1 && buf[i] == 0 {
		i++
	}
	return base64.RawURLEncoding.EncodeToString(buf[i:])
}

// DecodeBase64R128 parses the output of EncodeBase64.
func DecodeBase64R128(s string) (R128, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return R128{}, errors.Join(ErrInvalidEncoding, err)
	}
	if len(raw) == 0 || len(raw) > 16 {
		return R128{}, ErrInvalidEncoding
	}
	var buf [16]byte
	copy(buf[16-len(raw):], raw)
	return R128{
		hi: binary.BigEndian.Uint64(buf[:8]),
		lo: binary.BigEndian.Uint64(buf[8:]),
	}, nil
}
