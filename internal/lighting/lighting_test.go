package lighting

import (
	"context"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/engine"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/rotation"
)

const (
	earthRadius  = 6378.0
	moonRadius   = 1737.0
	moonDistance = 384400.0
	tjd          = astro.J2000 + 100
)

func addBody(t *testing.T, u *engine.Universe, sun *engine.Star, name string, center engine.Selection, o orbit.Orbit, rm rotation.Model) *engine.Body {
	t.Helper()
	b := engine.NewBody(name, u.GetOrCreateSolarSystem(sun))
	frame := engine.NewJ2000EclipticFrame(center)
	p, err := engine.CreateTimelinePhase(u, b, math.Inf(-1), math.Inf(1), frame, o, frame, rm)
	if err != nil {
		t.Fatalf("CreateTimelinePhase(%s): %v", name, err)
	}
	tl, err := engine.NewTimeline(p)
	if err != nil {
		t.Fatal(err)
	}
	b.SetTimeline(tl)
	return b
}

// newSystem places an earth one AU along +x from the sun and a moon at
// moonOffset from the earth.
func newSystem(t *testing.T, moonOffset r3.Vec) (*engine.Universe, *engine.Star, *engine.Body, *engine.Body) {
	t.Helper()
	u := engine.NewUniverse()
	sun := engine.NewStar("Sun", r3.Vec{})
	u.AddStar(sun)

	earth := addBody(t, u, sun, "Earth", engine.SelectStar(sun), orbit.NewFixedPosition(r3.Vec{X: astro.AU}), rotation.Identity())
	earth.SetRadius(earthRadius)
	earth.SetClassification(engine.ClassPlanet)

	moon := addBody(t, u, sun, "Moon", engine.SelectBody(earth), orbit.NewFixedPosition(moonOffset), rotation.Identity())
	moon.SetRadius(moonRadius)
	moon.SetClassification(engine.ClassMoon)
	return u, sun, earth, moon
}

func setup(u *engine.Universe, body *engine.Body, observerOffset r3.Vec) *LightingState {
	ls := NewLightingState()
	pos := body.Position(tjd)
	Setup(ls, Params{
		Receiver: body,
		Time:     tjd,
		Observer: pos.OffsetKm(observerOffset),
		Lights:   LightSourcesFor(u, pos, tjd),
	})
	return ls
}

func vecClose(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= tol
}

func TestSetupSingleLight(t *testing.T) {
	u, _, earth, _ := newSystem(t, r3.Vec{Z: moonDistance})
	ls := setup(u, earth, r3.Vec{X: -1e6})

	if ls.NLights != 1 {
		t.Fatalf("NLights = %d, want 1", ls.NLights)
	}
	l := ls.Lights[0]
	if l.Irradiance != 1 {
		t.Errorf("Irradiance = %v, want 1", l.Irradiance)
	}
	if !vecClose(l.DirectionObj, r3.Vec{X: -1}, 1e-9) {
		t.Errorf("DirectionObj = %v, want -x", l.DirectionObj)
	}
	if want := astro.SolarRadiusKm / astro.AU; math.Abs(l.ApparentSize-want) > 1e-9 {
		t.Errorf("ApparentSize = %v, want %v", l.ApparentSize, want)
	}
	if !l.CastsShadows {
		t.Error("light does not cast shadows")
	}
	if ls.ShadowCount() != 0 {
		t.Errorf("ShadowCount() = %d, want 0 with the moon off the sun line", ls.ShadowCount())
	}
	if !vecClose(ls.EyeDirObj, r3.Vec{X: -1}, 1e-9) {
		t.Errorf("EyeDirObj = %v", ls.EyeDirObj)
	}
	if !vecClose(ls.EyePosObj, r3.Vec{X: -1e6 / earthRadius}, 1e-6) {
		t.Errorf("EyePosObj = %v", ls.EyePosObj)
	}
}

func TestSetupOrdersAndCapsLights(t *testing.T) {
	_, _, earth, _ := newSystem(t, r3.Vec{Z: moonDistance})
	pos := earth.Position(tjd)

	var lights []LightSource
	for i := 1; i <= 10; i++ {
		s := engine.NewStar("S", r3.Vec{})
		lights = append(lights, LightSource{
			Star:       s,
			Position:   pos.OffsetKm(r3.Vec{X: -astro.AU, Z: float64(i) * 1e6}),
			Luminosity: float64(i),
			Radius:     astro.SolarRadiusKm,
			Color:      engine.White,
		})
	}

	ls := NewLightingState()
	Setup(ls, Params{Receiver: earth, Time: tjd, Observer: pos.OffsetKm(r3.Vec{X: -1e6}), Lights: lights})
	if ls.NLights != MaxLights {
		t.Fatalf("NLights = %d, want %d", ls.NLights, MaxLights)
	}
	if ls.Lights[0].Source != lights[9].Star {
		t.Error("brightest light is not first")
	}
	if ls.Lights[0].Irradiance != 1 {
		t.Errorf("brightest Irradiance = %v, want 1", ls.Lights[0].Irradiance)
	}
	for i := 1; i < ls.NLights; i++ {
		if ls.Lights[i].Irradiance > ls.Lights[i-1].Irradiance {
			t.Errorf("light %d brighter than light %d", i, i-1)
		}
	}
	if got := ls.Lights[MaxLights-1].Irradiance; math.Abs(got-0.3) > 0.01 {
		t.Errorf("dimmest kept Irradiance = %v, want about 0.3", got)
	}
}

func TestSetupDropsDimLights(t *testing.T) {
	_, sun, earth, _ := newSystem(t, r3.Vec{Z: moonDistance})
	pos := earth.Position(tjd)
	lights := []LightSource{
		{Star: sun, Position: sun.Position(tjd), Luminosity: 1, Radius: astro.SolarRadiusKm},
		{Star: engine.NewStar("Faint", r3.Vec{}), Position: pos.OffsetKm(r3.Vec{Z: -astro.AU}), Luminosity: 1e-3, Radius: 1},
	}
	ls := NewLightingState()
	Setup(ls, Params{Receiver: earth, Time: tjd, Lights: lights})
	if ls.NLights != 1 || ls.Lights[0].Source != sun {
		t.Errorf("NLights = %d, want only the sun", ls.NLights)
	}
}

func TestSetupNoLights(t *testing.T) {
	_, _, earth, _ := newSystem(t, r3.Vec{Z: moonDistance})
	ls := NewLightingState()
	Setup(ls, Params{Receiver: earth, Time: tjd, Ambient: engine.Color{R: 0.1, G: 0.1, B: 0.1}})
	if ls.NLights != 0 || ls.ShadowCount() != 0 {
		t.Errorf("NLights = %d, shadows = %d", ls.NLights, ls.ShadowCount())
	}
	if ls.AmbientColor.R != 0.1 {
		t.Error("ambient color not copied")
	}
	if IlluminatedFraction(ls) != 0 {
		t.Error("IlluminatedFraction() without lights is not zero")
	}
}

func TestEclipseShadows(t *testing.T) {
	tests := []struct {
		name       string
		moonOffset r3.Vec
		receiver   string
		wantCaster string
		minDepth   float64
	}{
		{"moon shadows earth", r3.Vec{X: -moonDistance}, "Earth", "Moon", 0.9},
		{"earth shadows moon", r3.Vec{X: moonDistance}, "Moon", "Earth", 1},
		{"moon beside sun line", r3.Vec{X: -moonDistance, Z: 20000}, "Earth", "", 0},
		{"moon behind earth", r3.Vec{X: moonDistance}, "Earth", "", 0},
		{"moon near sun line", r3.Vec{X: -moonDistance, Z: 8000}, "Earth", "Moon", 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, _, earth, moon := newSystem(t, tt.moonOffset)
			receiver := earth
			if tt.receiver == "Moon" {
				receiver = moon
			}
			ls := setup(u, receiver, r3.Vec{X: -1e6})

			casters := ls.Casters()
			if tt.wantCaster == "" {
				if len(casters) != 0 {
					t.Errorf("unexpected shadow from %s", casters[0].Name())
				}
				return
			}
			if len(casters) != 1 || casters[0].Name() != tt.wantCaster {
				t.Fatalf("Casters() = %v, want [%s]", casters, tt.wantCaster)
			}
			s := ls.Shadows[0][0]
			if s.MaxDepth < tt.minDepth || s.MaxDepth > 1 {
				t.Errorf("MaxDepth = %v, want >= %v", s.MaxDepth, tt.minDepth)
			}
			if !vecClose(s.Direction, r3.Vec{X: 1}, 1e-4) {
				t.Errorf("Direction = %v, want +x", s.Direction)
			}
			if s.PenumbraRadius <= s.UmbraRadius {
				t.Errorf("penumbra %v not wider than umbra %v", s.PenumbraRadius, s.UmbraRadius)
			}
		})
	}
}

func TestSmallCastersIgnored(t *testing.T) {
	u, _, earth, moon := newSystem(t, r3.Vec{X: -moonDistance})
	moon.SetRadius(earthRadius * MinRelativeOccluderRadius / 2)
	if ls := setup(u, earth, r3.Vec{X: -1e6}); ls.ShadowCount() != 0 {
		t.Errorf("ShadowCount() = %d for a tiny caster", ls.ShadowCount())
	}

	moon.SetRadius(moonRadius)
	moon.SetVisible(false)
	if ls := setup(u, earth, r3.Vec{X: -1e6}); ls.ShadowCount() != 0 {
		t.Errorf("ShadowCount() = %d for an invisible caster", ls.ShadowCount())
	}
}

func TestRingShadows(t *testing.T) {
	u, _, earth, _ := newSystem(t, r3.Vec{Z: moonDistance})
	earth.SetRings(&engine.RingSystem{InnerRadius: 8000, OuterRadius: 15000, Color: engine.White})

	// Equator in the ecliptic: the sun sees the rings edge on.
	if ls := setup(u, earth, r3.Vec{X: -1e6}); ls.ShadowingRingSystem != nil {
		t.Error("edge-on rings cast a shadow")
	}

	tilted := addBody(t, u, u.Stars()[0], "Tilted", engine.SelectStar(u.Stars()[0]),
		orbit.NewFixedPosition(r3.Vec{Z: astro.AU}), rotation.NewConstantOrientation(astro.XRotation(0.5)))
	tilted.SetRadius(earthRadius)
	tilted.SetRings(&engine.RingSystem{InnerRadius: 8000, OuterRadius: 15000, Color: engine.White})

	ls := setup(u, tilted, r3.Vec{X: -1e6})
	if ls.ShadowingRingSystem != tilted.Rings() {
		t.Fatal("tilted rings cast no shadow")
	}
	if math.Abs(r3.Norm(ls.RingPlaneNormal)-1) > 1e-9 {
		t.Errorf("RingPlaneNormal = %v, not unit", ls.RingPlaneNormal)
	}
	rs := ls.RingShadows[0]
	if rs.TexLOD < 0 {
		t.Errorf("TexLOD = %v", rs.TexLOD)
	}
	if !vecClose(rs.Direction, r3.Scale(-1, r3.Unit(ls.Lights[0].Position)), 1e-9) {
		t.Errorf("ring shadow Direction = %v", rs.Direction)
	}
}

func TestIlluminatedFraction(t *testing.T) {
	tests := []struct {
		name     string
		observer r3.Vec
		want     float64
	}{
		{"full", r3.Vec{X: -1e6}, 1},
		{"new", r3.Vec{X: 1e6}, 0},
		{"quarter", r3.Vec{Z: 1e6}, 0.5},
	}
	u, _, earth, _ := newSystem(t, r3.Vec{Z: moonDistance})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ls := setup(u, earth, tt.observer)
			if got := IlluminatedFraction(ls); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("IlluminatedFraction() = %v, want %v", got, tt.want)
			}
		})
	}

	u, _, _, moon := newSystem(t, r3.Vec{X: moonDistance})
	if got := IlluminatedFraction(setup(u, moon, r3.Vec{X: -1e6})); got > 1e-9 {
		t.Errorf("totally eclipsed full moon IlluminatedFraction() = %v, want 0", got)
	}
}

func TestReset(t *testing.T) {
	u, _, earth, _ := newSystem(t, r3.Vec{X: -moonDistance})
	ls := setup(u, earth, r3.Vec{X: -1e6})
	if ls.ShadowCount() == 0 {
		t.Fatal("expected a shadow before reset")
	}
	ls.Reset()
	if ls.NLights != 0 || ls.ShadowCount() != 0 || len(ls.Shadows[0]) != 0 {
		t.Error("Reset() left lights or shadows")
	}
	if ls.EyeDirObj != (r3.Vec{Z: -1}) {
		t.Errorf("EyeDirObj = %v after reset", ls.EyeDirObj)
	}
}

func TestFindEclipses(t *testing.T) {
	u := engine.NewUniverse()
	sun := engine.NewStar("Sun", r3.Vec{})
	u.AddStar(sun)
	earth := addBody(t, u, sun, "Earth", engine.SelectStar(sun), orbit.NewFixedPosition(r3.Vec{X: astro.AU}), rotation.Identity())
	earth.SetRadius(earthRadius)
	earth.SetClassification(engine.ClassPlanet)

	const period = 10.0
	moonOrbit, err := orbit.NewCircular(moonDistance, period, 0, 0, 0, astro.J2000)
	if err != nil {
		t.Fatal(err)
	}
	moon := addBody(t, u, sun, "Moon", engine.SelectBody(earth), moonOrbit, rotation.Identity())
	moon.SetRadius(moonRadius)
	moon.SetClassification(engine.ClassMoon)

	start := astro.J2000
	eclipses, err := FindEclipses(context.Background(), earth, start, start+period-0.5, SolarEclipse|LunarEclipse)
	if err != nil {
		t.Fatal(err)
	}

	counts := map[EclipseKind]int{}
	for i, e := range eclipses {
		counts[e.Kind]++
		if d := e.End - e.Start; d < 0.05 || d > 0.12 {
			t.Errorf("%s eclipse lasts %v days", e.Kind, d)
		}
		if i > 0 && e.Start < eclipses[i-1].Start {
			t.Error("eclipses not ordered by start")
		}
		switch e.Kind {
		case SolarEclipse:
			if e.Receiver != earth || e.Occulter != moon {
				t.Error("solar eclipse has the wrong bodies")
			}
		case LunarEclipse:
			if e.Receiver != moon || e.Occulter != earth {
				t.Error("lunar eclipse has the wrong bodies")
			}
		}
	}
	if counts[SolarEclipse] != 1 || counts[LunarEclipse] != 1 {
		t.Errorf("found %v, want one of each kind", counts)
	}

	only, _ := FindEclipses(context.Background(), earth, start, start+period-0.5, LunarEclipse)
	if len(only) != 1 || only[0].Kind != LunarEclipse {
		t.Errorf("lunar-only search found %d eclipses", len(only))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := FindEclipses(ctx, earth, start, start+period, SolarEclipse); err == nil {
		t.Error("canceled search returned no error")
	}
}
