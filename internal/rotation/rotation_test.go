package rotation

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/astro"
)

const j2000 = astro.J2000

func vecNear(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= tol
}

func TestUniformModelIsPeriodic(t *testing.T) {
	tests := []struct {
		name string
		m    *UniformModel
	}{
		{"earth-like", NewUniformModel(0.99727, 0.3, j2000, astro.DegToRad(23.44), 0)},
		{"retrograde venus", NewUniformModel(-243.0185, 0, j2000, astro.DegToRad(177.4), astro.DegToRad(76.7))},
		{"slow", NewUniformModel(27.3217, 1.2, j2000-1000, 0.1, 2.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, tjd := range []float64{j2000, j2000 + 0.37, j2000 + 12345.678} {
				q0 := tt.m.OrientationAtTime(tjd)
				q1 := tt.m.OrientationAtTime(tjd + tt.m.Period())
				if a := astro.AngleBetween(q0, q1); a > 1e-6 {
					t.Errorf("orientation at t and t+period differ by %v rad", a)
				}
			}
		})
	}
}

func TestUniformModelHalfPeriodIsHalfTurn(t *testing.T) {
	m := NewUniformModel(1, 0, j2000, 0, 0)
	a := astro.AngleBetween(m.OrientationAtTime(j2000), m.OrientationAtTime(j2000+0.5))
	if math.Abs(a-math.Pi) > 1e-9 {
		t.Errorf("half period rotation = %v, want π", a)
	}
}

func TestUniformSpinAtEpoch(t *testing.T) {
	// At the epoch the spin is a half turn plus the offset.
	m := NewUniformModel(10, 0.25, j2000, 0, 0)
	want := astro.YRotation(-math.Pi - 0.25)
	if astro.AngleBetween(m.Spin(j2000), want) >= 1e-7 {
		t.Errorf("Spin(epoch) = %v, want %v", m.Spin(j2000), want)
	}
}

func TestUniformAngularVelocityMatchesDifferentiation(t *testing.T) {
	m := NewUniformModel(0.99727, 0.3, j2000, astro.DegToRad(23.44), astro.DegToRad(10))
	tjd := j2000 + 100.25

	exact := m.AngularVelocityAtTime(tjd)
	numeric := DifferentiateAngularVelocity(m, tjd)

	wantMag := 2 * math.Pi / m.Period()
	if math.Abs(r3.Norm(exact)-wantMag) > 1e-9 {
		t.Errorf("|ω| = %v, want %v", r3.Norm(exact), wantMag)
	}
	if !vecNear(exact, numeric, wantMag*1e-6) {
		t.Errorf("closed form %v differs from numeric %v", exact, numeric)
	}
}

func TestUniformEquatorOrientation(t *testing.T) {
	incl := astro.DegToRad(30)
	m := NewUniformModel(1, 0, j2000, incl, 0)
	// The rotation axis in universal coordinates tilts away from +y by the inclination.
	axis := astro.Rotate(quat.Conj(m.EquatorOrientationAtTime(j2000)), r3.Vec{Y: 1})
	if got := math.Acos(axis.Y); math.Abs(got-incl) > 1e-12 {
		t.Errorf("axis tilt = %v, want %v", got, incl)
	}
}

func TestConstantOrientation(t *testing.T) {
	q := astro.XRotation(0.4)
	m := NewConstantOrientation(q)

	for _, tjd := range []float64{0, j2000, j2000 + 1e5} {
		if astro.AngleBetween(m.OrientationAtTime(tjd), q) >= 1e-7 {
			t.Errorf("OrientationAtTime(%v) changed", tjd)
		}
		if w := m.AngularVelocityAtTime(tjd); w != (r3.Vec{}) {
			t.Errorf("AngularVelocityAtTime(%v) = %v, want zero", tjd, w)
		}
	}
	if m.IsPeriodic() {
		t.Error("constant orientation should not be periodic")
	}
	if Identity().OrientationAtTime(j2000) != astro.Identity() {
		t.Error("Identity() should have identity orientation")
	}
}

func TestPrecessingModel(t *testing.T) {
	t.Run("zero precession period matches uniform", func(t *testing.T) {
		p := NewPrecessingModel(1.5, 0.1, j2000, 0.4, 0.7, 0)
		u := NewUniformModel(1.5, 0.1, j2000, 0.4, 0.7)
		for _, tjd := range []float64{j2000, j2000 + 5000.3} {
			if astro.AngleBetween(p.OrientationAtTime(tjd), u.OrientationAtTime(tjd)) >= 1e-7 {
				t.Errorf("orientations differ at %v", tjd)
			}
		}
	})

	t.Run("node regresses", func(t *testing.T) {
		period := 25772.0 * 365.25
		p := NewPrecessingModel(1, 0, j2000, 0.4, 0.7, period)
		got := p.NodeOfDate(j2000 + period/4)
		want := 0.7 - math.Pi/2
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("NodeOfDate = %v, want %v", got, want)
		}
	})

	t.Run("angular velocity is dominated by spin", func(t *testing.T) {
		p := NewPrecessingModel(1, 0, j2000, 0.4, 0.7, 1000)
		w := p.AngularVelocityAtTime(j2000 + 3)
		if math.Abs(r3.Norm(w)-2*math.Pi) > 0.05 {
			t.Errorf("|ω| = %v, want ~2π", r3.Norm(w))
		}
	})
}

func TestAngularVelocityFromOrientationsTinyRotation(t *testing.T) {
	q := astro.YRotation(1)
	if w := AngularVelocityFromOrientations(q, q, 0.001); w != (r3.Vec{}) {
		t.Errorf("identical orientations gave %v, want zero", w)
	}
	if w := AngularVelocityFromOrientations(q, quat.Mul(q, astro.YRotation(1e-9)), 1); w != (r3.Vec{}) {
		t.Errorf("sub-threshold rotation gave %v, want zero", w)
	}
}

func TestDiffTimeDelta(t *testing.T) {
	if got := DiffTimeDelta(NewUniformModel(2, 0, 0, 0, 0)); got != 2.0/10000 {
		t.Errorf("periodic delta = %v, want %v", got, 2.0/10000)
	}
	if got := DiffTimeDelta(Identity()); got != AngularVelocityDiffDelta {
		t.Errorf("aperiodic delta = %v, want %v", got, AngularVelocityDiffDelta)
	}
}
