package engine

import (
	"strings"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/rotation"
	"github.com/litescript/ls-orrery/internal/univcoord"
)

// Classification is a bit set of body kinds.
type Classification uint32

const (
	ClassPlanet Classification = 1 << iota
	ClassMoon
	ClassAsteroid
	ClassComet
	ClassSpacecraft
	ClassInvisible
	ClassBarycenter
	ClassDwarfPlanet
	ClassMinorMoon
	ClassSurfaceFeature
	ClassUnknown
)

var classNames = []struct {
	class Classification
	name  string
}{
	{ClassPlanet, "planet"},
	{ClassMoon, "moon"},
	{ClassAsteroid, "asteroid"},
	{ClassComet, "comet"},
	{ClassSpacecraft, "spacecraft"},
	{ClassInvisible, "invisible"},
	{ClassBarycenter, "barycenter"},
	{ClassDwarfPlanet, "dwarfplanet"},
	{ClassMinorMoon, "minormoon"},
	{ClassSurfaceFeature, "surfacefeature"},
	{ClassUnknown, "unknown"},
}

func (c Classification) String() string {
	var parts []string
	for _, cn := range classNames {
		if c&cn.class != 0 {
			parts = append(parts, cn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ParseClassification maps a single class name to its value.
func ParseClassification(s string) (Classification, bool) {
	s = strings.ToLower(strings.ReplaceAll(s, "_", ""))
	for _, cn := range classNames {
		if cn.name == s {
			return cn.class, true
		}
	}
	return 0, false
}

// RingSystem is a planar ring centered on its body, lying in the body's
// equatorial plane. Radii are km.
type RingSystem struct {
	InnerRadius float64
	OuterRadius float64
	Color       Color
}

// Body is a planet, moon, spacecraft or other object that follows a timeline.
type Body struct {
	name                 string
	system               *SolarSystem
	radius               float64
	class                Classification
	albedo               float64
	timeline             *Timeline
	frameTree            *FrameTree
	rings                *RingSystem
	secondaryIlluminator bool
	visible              bool
	locations            []*Location
}

// NewBody creates a body and adds it to system.
func NewBody(name string, system *SolarSystem) *Body {
	b := &Body{
		name:     name,
		system:   system,
		radius:   1,
		class:    ClassUnknown,
		albedo:   0.5,
		timeline: &Timeline{},
		visible:  true,
	}
	if system != nil {
		system.addBody(b)
	}
	return b
}

func (b *Body) Name() string { return b.name }

func (b *Body) System() *SolarSystem { return b.system }

// Radius returns the mean radius in km.
func (b *Body) Radius() float64 { return b.radius }

func (b *Body) SetRadius(km float64) {
	b.radius = km
	b.MarkChanged()
}

// CullingRadius is the radius of a sphere enclosing the body and its rings.
func (b *Body) CullingRadius() float64 {
	if b.rings != nil && b.rings.OuterRadius > b.radius {
		return b.rings.OuterRadius
	}
	return b.radius
}

func (b *Body) Classification() Classification { return b.class }

func (b *Body) SetClassification(c Classification) {
	b.class = c
	b.MarkChanged()
}

func (b *Body) Albedo() float64 { return b.albedo }

func (b *Body) SetAlbedo(a float64) { b.albedo = a }

func (b *Body) Rings() *RingSystem { return b.rings }

func (b *Body) SetRings(r *RingSystem) {
	b.rings = r
	b.MarkChanged()
}

func (b *Body) IsSecondaryIlluminator() bool { return b.secondaryIlluminator }

func (b *Body) SetSecondaryIlluminator(v bool) {
	b.secondaryIlluminator = v
	b.MarkChanged()
}

func (b *Body) IsVisible() bool { return b.visible && b.class&ClassInvisible == 0 }

func (b *Body) SetVisible(v bool) { b.visible = v }

func (b *Body) Timeline() *Timeline { return b.timeline }

// SetTimeline replaces the body's timeline, detaching the old phases from
// their frame trees.
func (b *Body) SetTimeline(tl *Timeline) {
	if tl == b.timeline {
		return
	}
	if b.timeline != nil {
		b.timeline.Detach()
	}
	if tl == nil {
		tl = &Timeline{}
	}
	b.timeline = tl
	b.MarkChanged()
}

// FrameTree returns the tree of bodies orbiting this one, or nil.
func (b *Body) FrameTree() *FrameTree { return b.frameTree }

// GetOrCreateFrameTree returns the body's frame tree, creating it if needed.
func (b *Body) GetOrCreateFrameTree() *FrameTree {
	if b.frameTree == nil {
		b.frameTree = NewBodyFrameTree(b)
	}
	return b.frameTree
}

// MarkChanged flags the frame trees holding this body's phases for a
// bounding-sphere recomputation.
func (b *Body) MarkChanged() {
	if b.timeline != nil {
		b.timeline.MarkChanged()
	}
}

// Primary returns the body this one orbits in its first phase, or nil when
// it orbits a star.
func (b *Body) Primary() *Body {
	if b.timeline == nil || b.timeline.PhaseCount() == 0 {
		return nil
	}
	return b.timeline.Phase(0).OrbitFrame().Center().Body()
}

func (b *Body) Locations() []*Location { return b.locations }

func (b *Body) addLocation(l *Location) { b.locations = append(b.locations, l) }

// Phase returns the timeline phase in effect at tjd, or nil for an empty timeline.
func (b *Body) Phase(tjd float64) *TimelinePhase {
	if b.timeline == nil {
		return nil
	}
	return b.timeline.FindPhase(tjd)
}

// OrbitFrame returns the orbit frame in effect at tjd.
func (b *Body) OrbitFrame(tjd float64) ReferenceFrame {
	if p := b.Phase(tjd); p != nil {
		return p.OrbitFrame()
	}
	return nil
}

// BodyFrame returns the body frame in effect at tjd.
func (b *Body) BodyFrame(tjd float64) ReferenceFrame {
	if p := b.Phase(tjd); p != nil {
		return p.BodyFrame()
	}
	return nil
}

// Orbit returns the trajectory in effect at tjd.
func (b *Body) Orbit(tjd float64) orbit.Orbit {
	if p := b.Phase(tjd); p != nil {
		return p.Orbit()
	}
	return nil
}

// RotationModel returns the rotation model in effect at tjd.
func (b *Body) RotationModel(tjd float64) rotation.Model {
	if p := b.Phase(tjd); p != nil {
		return p.RotationModel()
	}
	return nil
}

func (b *Body) starPosition(tjd float64) univcoord.Coord {
	if b.system != nil && b.system.Star() != nil {
		return b.system.Star().Position(tjd)
	}
	return univcoord.Zero()
}

// Position returns the body's universal position. The chain of orbit frames
// centered on bodies is accumulated in double precision relative to the
// first center that is not a body, and only then added at full precision.
func (b *Body) Position(tjd float64) univcoord.Coord {
	phase := b.Phase(tjd)
	if phase == nil {
		return b.starPosition(tjd)
	}

	var pos r3.Vec
	p := phase.Orbit().PositionAtTime(tjd)
	frame := phase.OrbitFrame()
	for frame.Center().Type() == SelectionBody {
		q := frame.Orientation(tjd)
		pos = r3.Add(pos, astro.Rotate(quat.Conj(q), p))
		phase = frame.Center().Body().Phase(tjd)
		if phase == nil {
			return frame.Center().Body().starPosition(tjd).OffsetKm(pos)
		}
		p = phase.Orbit().PositionAtTime(tjd)
		frame = phase.OrbitFrame()
	}
	pos = r3.Add(pos, astro.Rotate(quat.Conj(frame.Orientation(tjd)), p))

	if s := frame.Center().Star(); s != nil {
		return s.Position(tjd).OffsetKm(pos)
	}
	return frame.Center().Position(tjd).OffsetKm(pos)
}

// AstrocentricPosition returns the position in km relative to the system's
// star, in universal axes.
func (b *Body) AstrocentricPosition(tjd float64) r3.Vec {
	return b.Position(tjd).OffsetFromKm(b.starPosition(tjd))
}

// Velocity returns the universal velocity in km/day.
func (b *Body) Velocity(tjd float64) r3.Vec {
	phase := b.Phase(tjd)
	if phase == nil {
		return r3.Vec{}
	}
	frame := phase.OrbitFrame()
	v := astro.Rotate(quat.Conj(frame.Orientation(tjd)), phase.Orbit().VelocityAtTime(tjd))
	v = r3.Add(v, frame.Center().Velocity(tjd))
	if !frame.IsInertial() {
		r := b.Position(tjd).OffsetFromKm(frame.Center().Position(tjd))
		v = r3.Add(v, r3.Cross(frame.AngularVelocity(tjd), r))
	}
	return v
}

// EclipticToEquatorial returns the rotation from universal axes to the body's
// equatorial frame.
func (b *Body) EclipticToEquatorial(tjd float64) quat.Number {
	phase := b.Phase(tjd)
	if phase == nil {
		return astro.Identity()
	}
	q := phase.RotationModel().EquatorOrientationAtTime(tjd)
	return quat.Mul(q, phase.BodyFrame().Orientation(tjd))
}

// EclipticToBodyFixed returns the rotation from universal axes to the body's
// rotating frame.
func (b *Body) EclipticToBodyFixed(tjd float64) quat.Number {
	return quat.Mul(b.EquatorialToBodyFixed(tjd), b.EclipticToEquatorial(tjd))
}

// BodyFixedToEcliptic is the inverse of EclipticToBodyFixed.
func (b *Body) BodyFixedToEcliptic(tjd float64) quat.Number {
	return quat.Conj(b.EclipticToBodyFixed(tjd))
}

// EquatorialToBodyFixed returns the spin of the rotation model at tjd.
func (b *Body) EquatorialToBodyFixed(tjd float64) quat.Number {
	phase := b.Phase(tjd)
	if phase == nil {
		return astro.Identity()
	}
	return phase.RotationModel().Spin(tjd)
}

// AngularVelocity returns the body's angular velocity in universal axes, in
// radians per day.
func (b *Body) AngularVelocity(tjd float64) r3.Vec {
	phase := b.Phase(tjd)
	if phase == nil {
		return r3.Vec{}
	}
	frame := phase.BodyFrame()
	v := astro.Rotate(quat.Conj(frame.Orientation(tjd)), phase.RotationModel().AngularVelocityAtTime(tjd))
	if !frame.IsInertial() {
		v = r3.Add(v, frame.AngularVelocity(tjd))
	}
	return v
}

// Location is a named site fixed to the surface of a body.
type Location struct {
	name     string
	parent   *Body
	position r3.Vec  // km, body-fixed
	size     float64 // km, diameter
}

// NewLocation creates a location on body at a body-fixed position.
func NewLocation(name string, body *Body, bodyFixed r3.Vec, size float64) *Location {
	l := &Location{name: name, parent: body, position: bodyFixed, size: size}
	if body != nil {
		body.addLocation(l)
	}
	return l
}

func (l *Location) Name() string { return l.name }

func (l *Location) ParentBody() *Body { return l.parent }

func (l *Location) Size() float64 { return l.size }

// BodyFixedPosition returns the site in body-fixed km.
func (l *Location) BodyFixedPosition() r3.Vec { return l.position }

// PlanetocentricPosition returns the site relative to the body center in
// universal axes.
func (l *Location) PlanetocentricPosition(tjd float64) r3.Vec {
	if l.parent == nil {
		return l.position
	}
	return astro.Rotate(l.parent.BodyFixedToEcliptic(tjd), l.position)
}

// Position returns the site's universal position.
func (l *Location) Position(tjd float64) univcoord.Coord {
	if l.parent == nil {
		return univcoord.Zero()
	}
	return l.parent.Position(tjd).OffsetKm(l.PlanetocentricPosition(tjd))
}
