package engine

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/rotation"
)

func newPhase(t *testing.T, u *Universe, b *Body, center Selection, start, end float64) *TimelinePhase {
	t.Helper()
	frame := NewJ2000EclipticFrame(center)
	p, err := CreateTimelinePhase(u, b, start, end, frame, orbit.NewFixedPosition(r3.Vec{X: 1e5}), frame, rotation.Identity())
	if err != nil {
		t.Fatalf("CreateTimelinePhase(%v, %v): %v", start, end, err)
	}
	return p
}

func TestTimelineFindPhase(t *testing.T) {
	u, sun := newTestUniverse()
	b := NewBody("Probe", u.GetOrCreateSolarSystem(sun))
	p1 := newPhase(t, u, b, SelectStar(sun), 0, 10)
	p2 := newPhase(t, u, b, SelectStar(sun), 10, 20)
	tl, err := NewTimeline(p1, p2)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		tjd  float64
		want *TimelinePhase
	}{
		{5, p1},
		{15, p2},
		{-5, p1},
		{25, p2},
		{0, p1},
		{10, p2},
		{20, p2},
		{math.Inf(-1), p1},
		{math.Inf(1), p2},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.tjd), func(t *testing.T) {
			if got := tl.FindPhase(tt.tjd); got != tt.want {
				t.Errorf("FindPhase(%v) = [%v, %v), want [%v, %v)",
					tt.tjd, got.StartTime(), got.EndTime(), tt.want.StartTime(), tt.want.EndTime())
			}
		})
	}
}

func TestTimelineIncludes(t *testing.T) {
	u, sun := newTestUniverse()
	b := NewBody("Probe", u.GetOrCreateSolarSystem(sun))
	tl, err := NewTimeline(
		newPhase(t, u, b, SelectStar(sun), 0, 10),
		newPhase(t, u, b, SelectStar(sun), 10, 20),
	)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		tjd  float64
		want bool
	}{
		{-0.001, false},
		{0, true},
		{10, true},
		{19.999, true},
		{20, false},
		{25, false},
	}
	for _, tt := range tests {
		if got := tl.Includes(tt.tjd); got != tt.want {
			t.Errorf("Includes(%v) = %v, want %v", tt.tjd, got, tt.want)
		}
	}
	if tl.StartTime() != 0 || tl.EndTime() != 20 {
		t.Errorf("span = [%v, %v), want [0, 20)", tl.StartTime(), tl.EndTime())
	}
}

func TestEmptyTimeline(t *testing.T) {
	var tl Timeline
	if p := tl.FindPhase(0); p != nil {
		t.Errorf("FindPhase() = %v, want nil", p)
	}
	if tl.Includes(0) {
		t.Error("empty timeline includes 0")
	}
	if tl.PhaseCount() != 0 {
		t.Errorf("PhaseCount() = %d", tl.PhaseCount())
	}
}

func TestSinglePhaseTimelineClamps(t *testing.T) {
	u, sun := newTestUniverse()
	b := NewBody("Probe", u.GetOrCreateSolarSystem(sun))
	p := newPhase(t, u, b, SelectStar(sun), 100, 200)
	tl, _ := NewTimeline(p)
	for _, tjd := range []float64{-1e9, 150, 1e9} {
		if got := tl.FindPhase(tjd); got != p {
			t.Errorf("FindPhase(%v) = %v, want the only phase", tjd, got)
		}
	}
}

func TestAppendPhaseRejectsGaps(t *testing.T) {
	u, sun := newTestUniverse()
	b := NewBody("Probe", u.GetOrCreateSolarSystem(sun))

	tests := []struct {
		name       string
		start, end float64
	}{
		{"gap", 11, 20},
		{"overlap", 9, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl, _ := NewTimeline(newPhase(t, u, b, SelectStar(sun), 0, 10))
			err := tl.AppendPhase(newPhase(t, u, b, SelectStar(sun), tt.start, tt.end))
			if !errors.Is(err, ErrPhaseGap) {
				t.Errorf("AppendPhase() = %v, want ErrPhaseGap", err)
			}
			if tl.PhaseCount() != 1 {
				t.Errorf("PhaseCount() = %d, want 1", tl.PhaseCount())
			}
		})
	}
}

func TestCreateTimelinePhaseRejects(t *testing.T) {
	u, sun := newTestUniverse()
	b := NewBody("Probe", u.GetOrCreateSolarSystem(sun))
	starFrame := NewJ2000EclipticFrame(SelectStar(sun))
	fixed := orbit.NewFixedPosition(r3.Vec{X: 1})
	galaxy := NewDeepSkyObject("M31", r3.Vec{X: 2.5e6}, 1e5)
	site := NewLocation("Site", b, r3.Vec{X: 1}, 1)

	tests := []struct {
		name       string
		start, end float64
		frame      ReferenceFrame
		orbit      orbit.Orbit
		want       error
	}{
		{"empty interval", 10, 10, starFrame, fixed, ErrInvalidPhaseInterval},
		{"reversed interval", 10, 5, starFrame, fixed, ErrInvalidPhaseInterval},
		{"NaN end", 10, math.NaN(), starFrame, fixed, ErrInvalidPhaseInterval},
		{"deep sky center", 0, 1, NewJ2000EclipticFrame(SelectDeepSky(galaxy)), fixed, ErrInvalidFrameCenter},
		{"location center", 0, 1, NewJ2000EclipticFrame(SelectLocation(site)), fixed, ErrInvalidFrameCenter},
		{"empty center", 0, 1, NewJ2000EclipticFrame(Selection{}), fixed, ErrInvalidFrameCenter},
		{"missing orbit", 0, 1, starFrame, nil, ErrIncompletePhase},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CreateTimelinePhase(u, b, tt.start, tt.end, tt.frame, tt.orbit, starFrame, rotation.Identity())
			if p != nil || !errors.Is(err, tt.want) {
				t.Errorf("CreateTimelinePhase() = %v, %v; want nil, %v", p, err, tt.want)
			}
		})
	}
	if n := u.SolarSystem(sun).FrameTree().ChildCount(); n != 0 {
		t.Errorf("rejected phases attached to frame tree: %d children", n)
	}
}

func TestPhaseAttachesToCenterTree(t *testing.T) {
	u, sun := newTestUniverse()
	sys := u.GetOrCreateSolarSystem(sun)
	planet := NewBody("Planet", sys)
	moon := NewBody("Moon", sys)

	pp := newPhase(t, u, planet, SelectStar(sun), 0, 10)
	mp := newPhase(t, u, moon, SelectBody(planet), 0, 10)

	if sys.FrameTree().ChildCount() != 1 || sys.FrameTree().Child(0) != pp {
		t.Error("star-centered phase not in the system tree")
	}
	if planet.FrameTree() == nil || planet.FrameTree().Child(0) != mp {
		t.Error("body-centered phase not in the planet's tree")
	}
	if mp.FrameTree() != planet.FrameTree() {
		t.Error("phase does not record its tree")
	}
	if !mp.Includes(0) || mp.Includes(10) {
		t.Error("phase interval is not half-open")
	}

	tl, _ := NewTimeline(mp)
	moon.SetTimeline(tl)
	moon.SetTimeline(nil)
	if planet.FrameTree().ChildCount() != 0 {
		t.Error("replaced timeline still attached")
	}
	if moon.Timeline() == nil || moon.Timeline().PhaseCount() != 0 {
		t.Error("SetTimeline(nil) did not install an empty timeline")
	}
}
