package lighting

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/engine"
	"github.com/litescript/ls-orrery/internal/univcoord"
)

const (
	// MinRelativeOccluderRadius drops casters smaller than this fraction of
	// the receiver's radius.
	MinRelativeOccluderRadius = 0.005

	// Shadows that block less than this fraction of light are dropped.
	minShadowDepth = 1.0 / 256.0

	eclipseSearchStep = 1.0 / 24.0
	eclipseSpanStep   = 1.0 / 1440.0
	maxSpanSteps      = 1440 * 30
)

// eclipseObjectMask selects satellites worth testing for eclipses.
const eclipseObjectMask = engine.ClassPlanet | engine.ClassMoon | engine.ClassMinorMoon |
	engine.ClassDwarfPlanet | engine.ClassAsteroid

// shadowCone tests whether a spherical caster at casterPos shadows a
// spherical receiver at the origin, for a light at lightPos with angular
// radius appLight. Positions are km relative to the receiver. The light is
// assumed much farther away than the caster.
func shadowCone(casterPos r3.Vec, casterRadius, receiverRadius float64, lightPos r3.Vec, appLight float64) (EclipseShadow, bool) {
	dist := r3.Norm(casterPos)
	// Intersecting bodies are not an eclipse.
	if casterRadius <= 0 || dist <= casterRadius+receiverRadius {
		return EclipseShadow{}, false
	}
	distToCaster := dist - receiverRadius
	appOccluder := casterRadius / distToCaster

	lightToCaster := r3.Sub(casterPos, lightPos)
	casterToReceiver := r3.Scale(-1, casterPos)
	if r3.Dot(lightToCaster, casterToReceiver) <= 0 {
		return EclipseShadow{}, false
	}
	axis := r3.Unit(lightToCaster)

	// The shadow volume is approximated by a cylinder along the axis whose
	// radius grows with the light's apparent size.
	shadowRadius := (1 + appLight/appOccluder) * casterRadius
	along := r3.Dot(casterToReceiver, axis)
	offAxis := r3.Norm(r3.Sub(casterToReceiver, r3.Scale(along, axis)))
	if offAxis >= receiverRadius+shadowRadius {
		return EclipseShadow{}, false
	}

	maxDepth := 1.0
	if appLight > 0 {
		ratio := appOccluder / appLight
		maxDepth = math.Min(1, ratio*ratio)
	}
	if maxDepth <= minShadowDepth {
		return EclipseShadow{}, false
	}

	return EclipseShadow{
		Origin:         casterPos,
		Direction:      axis,
		PenumbraRadius: shadowRadius,
		UmbraRadius:    casterRadius * (appOccluder - appLight) / appOccluder,
		MaxDepth:       maxDepth,
	}, true
}

// shadowCasters lists the bodies that can eclipse receiver: its primary, the
// other bodies orbiting the same primary, and its own satellites.
func shadowCasters(receiver *engine.Body, tjd float64) []*engine.Body {
	var out []*engine.Body
	seen := map[*engine.Body]bool{receiver: true}
	add := func(b *engine.Body) {
		if b == nil || seen[b] {
			return
		}
		seen[b] = true
		if !b.IsVisible() || b.Classification()&engine.ClassBarycenter != 0 {
			return
		}
		if b.Radius() < receiver.Radius()*MinRelativeOccluderRadius {
			return
		}
		out = append(out, b)
	}

	if phase := receiver.Phase(tjd); phase != nil {
		add(phase.OrbitFrame().Center().Body())
		if tree := phase.FrameTree(); tree != nil {
			for i := 0; i < tree.ChildCount(); i++ {
				add(tree.Child(i).Body())
			}
		}
	}
	if tree := receiver.FrameTree(); tree != nil {
		for i := 0; i < tree.ChildCount(); i++ {
			add(tree.Child(i).Body())
		}
	}
	return out
}

func setupEclipseShadows(ls *LightingState, body *engine.Body, bodyPos univcoord.Coord, tjd float64) {
	casters := shadowCasters(body, tjd)
	if len(casters) == 0 {
		return
	}
	for i := 0; i < ls.NLights; i++ {
		light := &ls.Lights[i]
		if !light.CastsShadows {
			continue
		}
		for _, c := range casters {
			casterPos := c.Position(tjd).OffsetFromKm(bodyPos)
			s, ok := shadowCone(casterPos, c.Radius(), body.Radius(), light.Position, light.ApparentSize)
			if !ok {
				continue
			}
			s.Caster = c
			s.CasterOrientation = c.EclipticToBodyFixed(tjd)
			ls.Shadows[i] = append(ls.Shadows[i], s)
		}
	}
}

// EclipseKind distinguishes which body of a pair is shadowed.
type EclipseKind int

const (
	// SolarEclipse is a satellite's shadow falling on its primary.
	SolarEclipse EclipseKind = 1 << iota
	// LunarEclipse is a primary's shadow falling on its satellite.
	LunarEclipse
)

func (k EclipseKind) String() string {
	switch k {
	case SolarEclipse:
		return "solar"
	case LunarEclipse:
		return "lunar"
	default:
		return "unknown"
	}
}

// Eclipse is one shadow passage found by FindEclipses.
type Eclipse struct {
	Kind       EclipseKind
	Receiver   *engine.Body
	Occulter   *engine.Body
	Start, End float64 // TDB Julian dates
}

// testEclipse reports whether caster shadows receiver from the receiver's
// own star at tjd.
func testEclipse(receiver, caster *engine.Body, tjd float64) bool {
	sys := receiver.System()
	if sys == nil || sys.Star() == nil {
		return false
	}
	star := sys.Star()
	pos := receiver.Position(tjd)
	lightPos := star.Position(tjd).OffsetFromKm(pos)
	d := r3.Norm(lightPos)
	if d == 0 {
		return false
	}
	casterPos := caster.Position(tjd).OffsetFromKm(pos)
	_, ok := shadowCone(casterPos, caster.Radius(), receiver.Radius(), lightPos, star.Radius()/d)
	return ok
}

func eclipseSpanEdge(receiver, caster *engine.Body, tjd, step float64) float64 {
	t := tjd
	for i := 0; i < maxSpanSteps && testEclipse(receiver, caster, t+step); i++ {
		t += step
	}
	return t
}

// FindEclipses searches [start, end] hourly for eclipses between body and
// its satellites and refines each to the minute. kinds is a mask of
// SolarEclipse and LunarEclipse. Results are ordered by start time.
func FindEclipses(ctx context.Context, body *engine.Body, start, end float64, kinds EclipseKind) ([]Eclipse, error) {
	tree := body.FrameTree()
	if tree == nil {
		return nil, nil
	}

	var satellites []*engine.Body
	seen := map[*engine.Body]bool{body: true}
	for i := 0; i < tree.ChildCount(); i++ {
		s := tree.Child(i).Body()
		if s == nil || seen[s] {
			continue
		}
		seen[s] = true
		if s.Classification()&eclipseObjectMask != 0 && s.Radius() >= body.Radius()*MinRelativeOccluderRadius {
			satellites = append(satellites, s)
		}
	}
	if len(satellites) == 0 {
		return nil, nil
	}

	type pair struct {
		kind               EclipseKind
		receiver, occulter *engine.Body
	}
	var pairs []pair
	for _, s := range satellites {
		if kinds&SolarEclipse != 0 {
			pairs = append(pairs, pair{SolarEclipse, body, s})
		}
		if kinds&LunarEclipse != 0 {
			pairs = append(pairs, pair{LunarEclipse, s, body})
		}
	}

	var out []Eclipse
	lastEnd := make([]float64, len(pairs))
	for i := range lastEnd {
		lastEnd[i] = start - 1
	}
	for t := start; t <= end; t += eclipseSearchStep {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		for i, p := range pairs {
			if t <= lastEnd[i] || !testEclipse(p.receiver, p.occulter, t) {
				continue
			}
			e := Eclipse{
				Kind:     p.kind,
				Receiver: p.receiver,
				Occulter: p.occulter,
				Start:    eclipseSpanEdge(p.receiver, p.occulter, t, -eclipseSpanStep),
				End:      eclipseSpanEdge(p.receiver, p.occulter, t, eclipseSpanStep),
			}
			out = append(out, e)
			lastEnd[i] = e.End
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}
