package engine

import (
	"errors"
	"fmt"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/astro"
)

func TestValidateAxes(t *testing.T) {
	tests := []struct {
		primary, secondary int
		ok                 bool
	}{
		{1, 2, true},
		{-3, 1, true},
		{2, -3, true},
		{1, -1, false},
		{2, 2, false},
		{0, 2, false},
		{1, 0, false},
		{4, 1, false},
		{1, -4, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d,%d", tt.primary, tt.secondary), func(t *testing.T) {
			err := ValidateAxes(tt.primary, tt.secondary)
			if tt.ok && err != nil {
				t.Errorf("ValidateAxes() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidAxes) {
				t.Errorf("ValidateAxes() = %v, want ErrInvalidAxes", err)
			}
		})
	}
}

func TestNewTwoVectorFramePanicsOnBadAxes(t *testing.T) {
	for _, axes := range [][2]int{{1, -1}, {0, 2}, {3, 5}} {
		t.Run(fmt.Sprintf("%d,%d", axes[0], axes[1]), func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("NewTwoVectorFrame did not panic")
				}
			}()
			NewTwoVectorFrame(Selection{},
				NewConstantVector(r3.Vec{X: 1}, nil), axes[0],
				NewConstantVector(r3.Vec{Y: 1}, nil), axes[1])
		})
	}
}

func TestTwoVectorOrientation(t *testing.T) {
	z := r3.Vec{Z: 1}
	x := r3.Vec{X: 1}

	tests := []struct {
		name               string
		primary, secondary int
		// frame coordinates of the primary and secondary directions
		wantPrimary, wantSecondary r3.Vec
		wantTertiary               int
	}{
		{"x then y", 1, 2, r3.Vec{X: 1}, r3.Vec{Y: 1}, 3},
		{"y then x", 2, 1, r3.Vec{Y: 1}, r3.Vec{X: 1}, 3},
		{"-x then y", -1, 2, r3.Vec{X: -1}, r3.Vec{Y: 1}, 3},
		{"z then -y", 3, -2, r3.Vec{Z: 1}, r3.Vec{Y: -1}, 1},
		{"y then z", 2, 3, r3.Vec{Y: 1}, r3.Vec{Z: 1}, 1},
		{"x then z", 1, 3, r3.Vec{X: 1}, r3.Vec{Z: 1}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewTwoVectorFrame(Selection{},
				NewConstantVector(r3.Scale(5, z), nil), tt.primary,
				NewConstantVector(r3.Add(x, r3.Scale(0.3, z)), nil), tt.secondary)

			if _, _, tert := f.Axes(); tert != tt.wantTertiary {
				t.Errorf("tertiary axis = %d, want %d", tert, tt.wantTertiary)
			}
			q := f.Orientation(0)
			if got := astro.Rotate(q, z); !vecClose(got, tt.wantPrimary, 1e-12) {
				t.Errorf("primary direction maps to %v, want %v", got, tt.wantPrimary)
			}
			if got := astro.Rotate(q, x); !vecClose(got, tt.wantSecondary, 1e-12) {
				t.Errorf("secondary direction maps to %v, want %v", got, tt.wantSecondary)
			}
		})
	}
}

func TestTwoVectorCollinearIsIdentity(t *testing.T) {
	f := NewTwoVectorFrame(Selection{},
		NewConstantVector(r3.Vec{X: 1}, nil), 1,
		NewConstantVector(r3.Vec{X: -2, Y: 1e-9}, nil), 2)
	if q := f.Orientation(0); q != astro.Identity() {
		t.Errorf("Orientation() = %v, want identity", q)
	}

	zero := NewTwoVectorFrame(Selection{},
		NewConstantVector(r3.Vec{}, nil), 1,
		NewConstantVector(r3.Vec{Y: 1}, nil), 2)
	if q := zero.Orientation(0); q != astro.Identity() {
		t.Errorf("zero primary: Orientation() = %v, want identity", q)
	}
}

func TestTwoVectorIsInertial(t *testing.T) {
	_, sun, earth, _ := newEarthMoon(t)
	fixed := NewConstantVector(r3.Vec{X: 1}, nil)
	up := NewConstantVector(r3.Vec{Y: 1}, nil)
	equatorial := NewConstantVector(r3.Vec{Y: 1}, NewJ2000EquatorFrame(SelectStar(sun)))
	spinning := NewConstantVector(r3.Vec{Z: 1}, NewBodyFixedFrame(SelectBody(earth), SelectBody(earth)))
	toSun := NewRelativePositionVector(SelectBody(earth), SelectStar(sun))
	orbital := NewRelativeVelocityVector(SelectStar(sun), SelectBody(earth))

	tests := []struct {
		name               string
		primary, secondary FrameVector
		want               bool
	}{
		{"constant universal axes", fixed, up, true},
		{"constant in an inertial frame", fixed, equatorial, true},
		{"constant in a rotating frame", fixed, spinning, false},
		{"relative position", toSun, up, false},
		{"relative velocity", fixed, orbital, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewTwoVectorFrame(SelectBody(earth), tt.primary, 1, tt.secondary, 2)
			if got := f.IsInertial(); got != tt.want {
				t.Errorf("IsInertial() = %v, want %v", got, tt.want)
			}
		})
	}

	f := NewTwoVectorFrame(Selection{}, fixed, 1, up, 2)
	if w := f.AngularVelocity(10); w != (r3.Vec{}) {
		t.Errorf("constant two-vector frame rotates: %v", w)
	}
}

func TestFrameVectorDirections(t *testing.T) {
	_, sun, earth, moon := newEarthMoon(t)
	tjd := astro.J2000 + 40

	toMoon := NewRelativePositionVector(SelectBody(earth), SelectBody(moon)).Direction(tjd)
	if d := r3.Norm(toMoon); d < moonDistance-1e-3 || d > moonDistance+1e-3 {
		t.Errorf("earth to moon distance = %v", d)
	}

	toSun := NewRelativePositionVector(SelectBody(earth), SelectStar(sun)).Direction(tjd)
	want := r3.Scale(-1, earth.AstrocentricPosition(tjd))
	if !vecClose(toSun, want, 1e-3) {
		t.Errorf("earth to sun = %v, want %v", toSun, want)
	}

	// The earth has no velocity relative to itself.
	if v := NewRelativeVelocityVector(SelectBody(earth), SelectBody(earth)).Direction(tjd); v != (r3.Vec{}) {
		t.Errorf("self relative velocity = %v", v)
	}

	inEquator := NewConstantVector(r3.Vec{Y: 1}, NewJ2000EquatorFrame(SelectStar(sun))).Direction(tjd)
	if got := r3.Norm(inEquator); got < 1-1e-12 || got > 1+1e-12 {
		t.Errorf("constant vector length = %v", got)
	}
	if inEquator.Y > 0.95 {
		t.Errorf("constant vector not rotated out of ecliptic axes: %v", inEquator)
	}
}

func TestTwoVectorSunPointing(t *testing.T) {
	_, sun, earth, _ := newEarthMoon(t)
	tjd := astro.J2000 + 91.3

	f := NewTwoVectorFrame(SelectBody(earth),
		NewRelativePositionVector(SelectBody(earth), SelectStar(sun)), 1,
		NewRelativeVelocityVector(SelectStar(sun), SelectBody(earth)), 2)

	toSun := r3.Unit(r3.Scale(-1, earth.AstrocentricPosition(tjd)))
	got := astro.Rotate(f.Orientation(tjd), toSun)
	if !vecClose(got, r3.Vec{X: 1}, 1e-9) {
		t.Errorf("sun direction in frame = %v, want +x", got)
	}
	if d := FrameDepth(f, 50, PositionFrame); d != 1 {
		t.Errorf("FrameDepth() = %d, want 1", d)
	}
}
