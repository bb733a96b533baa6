// Package lighting gathers the lights, eclipse shadows and ring shadows that
// affect one body at one instant.
//
// A LightingState is filled per body per frame by Setup and read by the
// renderer; it holds no references that outlive the catalog it was built
// from. Directions are unit vectors; "eye" quantities are in camera axes and
// "obj" quantities in the body-fixed axes of the lit body.
package lighting

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/engine"
)

// MaxLights is the most lights a LightingState holds.
const MaxLights = 8

// DirectionalLight is a distant light as seen from the lit body.
type DirectionalLight struct {
	Source       *engine.Star
	Color        engine.Color
	Irradiance   float64 // relative to the brightest light
	DirectionEye r3.Vec
	DirectionObj r3.Vec
	// Position of the light relative to the lit body, km, universal axes.
	Position     r3.Vec
	ApparentSize float64 // angular radius, radians
	CastsShadows bool
}

// EclipseShadow is the shadow cone of one body falling on another. Origin
// and Direction are relative to the receiver's center in universal axes.
type EclipseShadow struct {
	Caster            *engine.Body
	CasterOrientation quat.Number
	Origin            r3.Vec
	Direction         r3.Vec
	PenumbraRadius    float64 // km
	UmbraRadius       float64 // km; negative past the umbra's tip
	MaxDepth          float64 // fraction of light blocked at the center
}

// RingShadow describes a ring system shadowing its own planet.
type RingShadow struct {
	Rings             *engine.RingSystem
	CasterOrientation quat.Number
	Origin            r3.Vec
	Direction         r3.Vec
	TexLOD            float64
}

// LightingState is the lighting environment of one body.
type LightingState struct {
	NLights     int
	Lights      [MaxLights]DirectionalLight
	Shadows     [MaxLights][]EclipseShadow
	RingShadows [MaxLights]RingShadow

	// ShadowingRingSystem is nil unless the body's rings cast shadows.
	ShadowingRingSystem *engine.RingSystem
	RingPlaneNormal     r3.Vec
	RingCenter          r3.Vec

	EyeDirObj    r3.Vec
	EyePosObj    r3.Vec
	AmbientColor engine.Color
}

// NewLightingState returns an empty state.
func NewLightingState() *LightingState {
	ls := &LightingState{}
	ls.Reset()
	return ls
}

// Reset clears every light and shadow. Shadow slices keep their capacity.
func (ls *LightingState) Reset() {
	ls.NLights = 0
	for i := range ls.Lights {
		ls.Lights[i] = DirectionalLight{}
		ls.Shadows[i] = ls.Shadows[i][:0]
		ls.RingShadows[i] = RingShadow{}
	}
	ls.ShadowingRingSystem = nil
	ls.RingPlaneNormal = r3.Vec{}
	ls.RingCenter = r3.Vec{}
	ls.EyeDirObj = r3.Vec{Z: -1}
	ls.EyePosObj = r3.Vec{Z: -1}
	ls.AmbientColor = engine.Color{}
}

// ActiveLights returns the populated lights.
func (ls *LightingState) ActiveLights() []DirectionalLight {
	return ls.Lights[:ls.NLights]
}

// ShadowCount returns the number of eclipse shadows over all lights.
func (ls *LightingState) ShadowCount() int {
	n := 0
	for i := 0; i < ls.NLights; i++ {
		n += len(ls.Shadows[i])
	}
	return n
}

// Casters returns the distinct bodies casting eclipse shadows, in light
// order.
func (ls *LightingState) Casters() []*engine.Body {
	var out []*engine.Body
	seen := make(map[*engine.Body]bool)
	for i := 0; i < ls.NLights; i++ {
		for _, s := range ls.Shadows[i] {
			if !seen[s.Caster] {
				seen[s.Caster] = true
				out = append(out, s.Caster)
			}
		}
	}
	return out
}
