// Package engine implements the catalog objects of a simulated universe and
// the machinery that places them in time: reference frames, timelines and
// frame trees.
//
// Positions are universal coordinates (univcoord.Coord, micro-light-years),
// local vectors are kilometers, times are TDB Julian dates and angular
// velocities are radians per day. Evaluation is single-threaded: frames,
// rotation caches and bodies are not safe for concurrent use.
package engine

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/univcoord"
)

// velocityDiffDelta is the step used to differentiate location positions.
const velocityDiffDelta = 1.0 / 1440.0

// SelectionType identifies what a Selection refers to.
type SelectionType int

const (
	SelectionNone SelectionType = iota
	SelectionStar
	SelectionBody
	SelectionDeepSky
	SelectionLocation
)

func (t SelectionType) String() string {
	switch t {
	case SelectionStar:
		return "star"
	case SelectionBody:
		return "body"
	case SelectionDeepSky:
		return "deepsky"
	case SelectionLocation:
		return "location"
	default:
		return "none"
	}
}

// Selection is a non-owning reference to a catalog object. Selections are
// comparable: two selections are equal when they name the same object.
type Selection struct {
	obj any
}

// SelectStar returns a selection of s, or the empty selection for nil.
func SelectStar(s *Star) Selection {
	if s == nil {
		return Selection{}
	}
	return Selection{obj: s}
}

// SelectBody returns a selection of b, or the empty selection for nil.
func SelectBody(b *Body) Selection {
	if b == nil {
		return Selection{}
	}
	return Selection{obj: b}
}

// SelectDeepSky returns a selection of d, or the empty selection for nil.
func SelectDeepSky(d *DeepSkyObject) Selection {
	if d == nil {
		return Selection{}
	}
	return Selection{obj: d}
}

// SelectLocation returns a selection of l, or the empty selection for nil.
func SelectLocation(l *Location) Selection {
	if l == nil {
		return Selection{}
	}
	return Selection{obj: l}
}

func (s Selection) Type() SelectionType {
	switch s.obj.(type) {
	case *Star:
		return SelectionStar
	case *Body:
		return SelectionBody
	case *DeepSkyObject:
		return SelectionDeepSky
	case *Location:
		return SelectionLocation
	default:
		return SelectionNone
	}
}

func (s Selection) Empty() bool { return s.obj == nil }

func (s Selection) Star() *Star {
	st, _ := s.obj.(*Star)
	return st
}

func (s Selection) Body() *Body {
	b, _ := s.obj.(*Body)
	return b
}

func (s Selection) DeepSky() *DeepSkyObject {
	d, _ := s.obj.(*DeepSkyObject)
	return d
}

func (s Selection) Location() *Location {
	l, _ := s.obj.(*Location)
	return l
}

// Name returns the selected object's name, or "" when empty.
func (s Selection) Name() string {
	switch o := s.obj.(type) {
	case *Star:
		return o.Name()
	case *Body:
		return o.Name()
	case *DeepSkyObject:
		return o.Name()
	case *Location:
		return o.Name()
	default:
		return ""
	}
}

// Radius returns the object's radius in km.
func (s Selection) Radius() float64 {
	switch o := s.obj.(type) {
	case *Star:
		return o.Radius()
	case *Body:
		return o.Radius()
	case *DeepSkyObject:
		return o.Radius() * astro.KmPerLightYear
	case *Location:
		// Location size is a diameter.
		return o.Size() / 2
	default:
		return 0
	}
}

// Position returns the object's universal position at tjd.
func (s Selection) Position(tjd float64) univcoord.Coord {
	switch o := s.obj.(type) {
	case *Star:
		return o.Position(tjd)
	case *Body:
		return o.Position(tjd)
	case *DeepSkyObject:
		return o.Position()
	case *Location:
		return o.Position(tjd)
	default:
		return univcoord.Zero()
	}
}

// Velocity returns the object's velocity in km/day in universal axes.
func (s Selection) Velocity(tjd float64) r3.Vec {
	switch o := s.obj.(type) {
	case *Star:
		return o.Velocity(tjd)
	case *Body:
		return o.Velocity(tjd)
	case *Location:
		p0 := o.Position(tjd - velocityDiffDelta)
		p1 := o.Position(tjd)
		return r3.Scale(1/velocityDiffDelta, p1.OffsetFromKm(p0))
	default:
		return r3.Vec{}
	}
}

// Parent returns the object a selection is naturally grouped under: a body's
// primary (or its star), a location's body. Stars and deep-sky objects have
// no parent.
func (s Selection) Parent() Selection {
	switch o := s.obj.(type) {
	case *Body:
		if p := o.Primary(); p != nil {
			return SelectBody(p)
		}
		if sys := o.System(); sys != nil {
			return SelectStar(sys.Star())
		}
		return Selection{}
	case *Location:
		return SelectBody(o.ParentBody())
	default:
		return Selection{}
	}
}

// IsVisible reports the object's visibility flag.
func (s Selection) IsVisible() bool {
	switch o := s.obj.(type) {
	case *Star:
		return o.IsVisible()
	case *Body:
		return o.IsVisible()
	case *DeepSkyObject:
		return o.IsVisible()
	default:
		return false
	}
}

// frameBody returns the body whose frames govern a selection's nesting:
// the body itself, or a location's parent.
func (s Selection) frameBody() *Body {
	if l := s.Location(); l != nil {
		return l.ParentBody()
	}
	return s.Body()
}
