package lighting

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/engine"
	"github.com/litescript/ls-orrery/internal/univcoord"
)

const (
	// MaxLightDistanceLy bounds the stars considered as light sources.
	MaxLightDistanceLy = 1.0

	// Lights dimmer than this fraction of the brightest are dropped.
	minVisibleIrradiance = 1.0 / 255.0

	// ringTextureTexels is the assumed texel count across a ring's width.
	ringTextureTexels = 1024.0
)

// LightSource is a star that may illuminate a body.
type LightSource struct {
	Star       *engine.Star
	Position   univcoord.Coord
	Luminosity float64 // solar luminosities
	Radius     float64 // km
	Color      engine.Color
}

// LightSourcesFor returns the stars within MaxLightDistanceLy of pos.
func LightSourcesFor(u *engine.Universe, pos univcoord.Coord, tjd float64) []LightSource {
	var out []LightSource
	for _, s := range u.Stars() {
		p := s.Position(tjd)
		if p.DistanceFromKm(pos) > MaxLightDistanceLy*astro.KmPerLightYear {
			continue
		}
		out = append(out, LightSource{
			Star:       s,
			Position:   p,
			Luminosity: s.Luminosity(),
			Radius:     s.Radius(),
			Color:      s.Color(),
		})
	}
	return out
}

// Params are the inputs of Setup.
type Params struct {
	Receiver *engine.Body
	Time     float64
	// Observer is the camera position.
	Observer univcoord.Coord
	// CameraOrientation maps universal axes to camera axes.
	CameraOrientation quat.Number
	Lights            []LightSource
	Ambient           engine.Color
}

// Setup fills ls with the lighting of p.Receiver at p.Time.
func Setup(ls *LightingState, p Params) {
	ls.Reset()
	ls.AmbientColor = p.Ambient
	body := p.Receiver
	if body == nil {
		return
	}

	tjd := p.Time
	bodyPos := body.Position(tjd)
	bodyOrientation := body.EclipticToBodyFixed(tjd)
	cameraOrientation := p.CameraOrientation
	if cameraOrientation == (quat.Number{}) {
		cameraOrientation = astro.Identity()
	}

	type candidate struct {
		src        LightSource
		rel        r3.Vec
		dist       float64
		irradiance float64
	}
	var cands []candidate
	for _, src := range p.Lights {
		rel := src.Position.OffsetFromKm(bodyPos)
		d := r3.Norm(rel)
		if d == 0 {
			continue
		}
		dAU := astro.KmToAU(d)
		cands = append(cands, candidate{src: src, rel: rel, dist: d, irradiance: src.Luminosity / (dAU * dAU)})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].irradiance > cands[j].irradiance
	})
	if len(cands) > MaxLights {
		cands = cands[:MaxLights]
	}

	if len(cands) > 0 && cands[0].irradiance > 0 {
		brightest := cands[0].irradiance
		for _, c := range cands {
			irr := c.irradiance / brightest
			if irr < minVisibleIrradiance {
				break
			}
			dir := r3.Scale(1/c.dist, c.rel)
			ls.Lights[ls.NLights] = DirectionalLight{
				Source:       c.src.Star,
				Color:        c.src.Color,
				Irradiance:   irr,
				DirectionEye: astro.Rotate(cameraOrientation, dir),
				DirectionObj: astro.Rotate(bodyOrientation, dir),
				Position:     c.rel,
				ApparentSize: c.src.Radius / c.dist,
				CastsShadows: true,
			}
			ls.NLights++
		}
	}

	eye := p.Observer.OffsetFromKm(bodyPos)
	eyeObj := astro.Rotate(bodyOrientation, eye)
	if n := r3.Norm(eyeObj); n > 0 {
		ls.EyeDirObj = r3.Scale(1/n, eyeObj)
		if body.Radius() > 0 {
			ls.EyePosObj = r3.Scale(1/body.Radius(), eyeObj)
		}
	}

	setupEclipseShadows(ls, body, bodyPos, tjd)
	setupRingShadows(ls, body, bodyOrientation)
}

func setupRingShadows(ls *LightingState, body *engine.Body, bodyOrientation quat.Number) {
	rings := body.Rings()
	if rings == nil || rings.OuterRadius <= rings.InnerRadius {
		return
	}
	// Rings lie in the equatorial plane, whose normal is body-fixed y.
	normal := astro.Rotate(quat.Conj(bodyOrientation), r3.Vec{Y: 1})
	width := rings.OuterRadius - rings.InnerRadius

	for i := 0; i < ls.NLights; i++ {
		light := &ls.Lights[i]
		if !light.CastsShadows {
			continue
		}
		toLight := r3.Unit(light.Position)
		// A light in the ring plane sees the rings edge on.
		if math.Abs(r3.Dot(toLight, normal)) < 1e-6 {
			continue
		}
		// Blur from the light's finite size, measured in ring texels.
		blur := light.ApparentSize * rings.OuterRadius * ringTextureTexels / width
		ls.RingShadows[i] = RingShadow{
			Rings:             rings,
			CasterOrientation: bodyOrientation,
			Direction:         r3.Scale(-1, toLight),
			TexLOD:            math.Max(0, math.Log2(math.Max(1, blur))),
		}
		ls.ShadowingRingSystem = rings
	}
	if ls.ShadowingRingSystem != nil {
		ls.RingPlaneNormal = normal
		ls.RingCenter = r3.Vec{}
	}
}

// IlluminatedFraction is the irradiance-weighted fraction of the visible
// disk that is lit, reduced by the deepest eclipse of each light. It is zero
// when there are no lights.
func IlluminatedFraction(ls *LightingState) float64 {
	var lit, total float64
	for i, l := range ls.ActiveLights() {
		cosPhase := r3.Dot(l.DirectionObj, ls.EyeDirObj)
		f := (1 + cosPhase) / 2
		depth := 0.0
		for _, s := range ls.Shadows[i] {
			depth = math.Max(depth, s.MaxDepth)
		}
		lit += l.Irradiance * f * (1 - depth)
		total += l.Irradiance
	}
	if total == 0 {
		return 0
	}
	return lit / total
}
