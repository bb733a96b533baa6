package engine

import (
	"sort"
	"strings"

	"github.com/litescript/ls-orrery/internal/metrics"
)

// SolarSystem groups the bodies orbiting one star.
type SolarSystem struct {
	star      *Star
	bodies    []*Body
	frameTree *FrameTree
}

// NewSolarSystem creates an empty system around star.
func NewSolarSystem(star *Star) *SolarSystem {
	return &SolarSystem{
		star:      star,
		frameTree: NewStarFrameTree(star),
	}
}

func (s *SolarSystem) Star() *Star { return s.star }

// Bodies returns the system's bodies in creation order.
func (s *SolarSystem) Bodies() []*Body { return s.bodies }

// FrameTree returns the root tree of phases centered on the star.
func (s *SolarSystem) FrameTree() *FrameTree { return s.frameTree }

func (s *SolarSystem) addBody(b *Body) { s.bodies = append(s.bodies, b) }

// Find returns the body with the given name (case-insensitive), or nil.
func (s *SolarSystem) Find(name string) *Body {
	for _, b := range s.bodies {
		if strings.EqualFold(b.Name(), name) {
			return b
		}
	}
	return nil
}

// Universe is the catalog of stars, their systems and deep-sky objects.
type Universe struct {
	stars   []*Star
	systems map[*Star]*SolarSystem
	dsos    []*DeepSkyObject
	rec     metrics.Recorder
}

// NewUniverse returns an empty universe.
func NewUniverse() *Universe {
	return &Universe{systems: make(map[*Star]*SolarSystem), rec: metrics.Nop{}}
}

// SetRecorder sets the recorder handed to phases created from now on.
func (u *Universe) SetRecorder(r metrics.Recorder) { u.rec = metrics.OrNop(r) }

// Recorder returns the universe's recorder, never nil.
func (u *Universe) Recorder() metrics.Recorder { return metrics.OrNop(u.rec) }

// AddStar registers a star.
func (u *Universe) AddStar(s *Star) {
	u.stars = append(u.stars, s)
}

// AddDeepSky registers a deep-sky object.
func (u *Universe) AddDeepSky(d *DeepSkyObject) {
	u.dsos = append(u.dsos, d)
}

func (u *Universe) Stars() []*Star { return u.stars }

func (u *Universe) DeepSkyObjects() []*DeepSkyObject { return u.dsos }

// SolarSystem returns the system around star, or nil.
func (u *Universe) SolarSystem(star *Star) *SolarSystem {
	return u.systems[star]
}

// GetOrCreateSolarSystem returns the system around star, creating it if needed.
func (u *Universe) GetOrCreateSolarSystem(star *Star) *SolarSystem {
	if sys, ok := u.systems[star]; ok {
		return sys
	}
	sys := NewSolarSystem(star)
	u.systems[star] = sys
	return sys
}

// SolarSystems returns all systems ordered by star name.
func (u *Universe) SolarSystems() []*SolarSystem {
	out := make([]*SolarSystem, 0, len(u.systems))
	for _, sys := range u.systems {
		out = append(out, sys)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Star().Name() < out[j].Star().Name()
	})
	return out
}

// Bodies returns every body in every system.
func (u *Universe) Bodies() []*Body {
	var out []*Body
	for _, sys := range u.SolarSystems() {
		out = append(out, sys.Bodies()...)
	}
	return out
}

// FindStar returns the star with the given name (case-insensitive), or nil.
func (u *Universe) FindStar(name string) *Star {
	for _, s := range u.stars {
		if strings.EqualFold(s.Name(), name) {
			return s
		}
	}
	return nil
}

// FindBody returns the first body with the given name, or nil.
func (u *Universe) FindBody(name string) *Body {
	for _, sys := range u.SolarSystems() {
		if b := sys.Find(name); b != nil {
			return b
		}
	}
	return nil
}

// Find resolves a name to a selection. Stars take precedence over bodies,
// bodies over deep-sky objects. A "body/location" path selects a location.
func (u *Universe) Find(name string) Selection {
	if bodyName, locName, ok := strings.Cut(name, "/"); ok {
		b := u.FindBody(bodyName)
		if b == nil {
			return Selection{}
		}
		for _, l := range b.Locations() {
			if strings.EqualFold(l.Name(), locName) {
				return SelectLocation(l)
			}
		}
		return Selection{}
	}
	if s := u.FindStar(name); s != nil {
		return SelectStar(s)
	}
	if b := u.FindBody(name); b != nil {
		return SelectBody(b)
	}
	for _, d := range u.dsos {
		if strings.EqualFold(d.Name(), name) {
			return SelectDeepSky(d)
		}
	}
	return Selection{}
}
