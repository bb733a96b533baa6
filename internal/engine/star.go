package engine

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/rotation"
	"github.com/litescript/ls-orrery/internal/univcoord"
)

// Color is a linear RGB color with components in [0, 1].
type Color struct {
	R, G, B float64
}

// White is the default star and ambient color.
var White = Color{R: 1, G: 1, B: 1}

// Scale returns c multiplied by f.
func (c Color) Scale(f float64) Color {
	return Color{R: c.R * f, G: c.G * f, B: c.B * f}
}

// Star is a fixed point source of light.
type Star struct {
	name       string
	position   univcoord.Coord
	radius     float64 // km
	luminosity float64 // solar luminosities
	color      Color
	rotation   rotation.Model
	visible    bool
}

// NewStar creates a star at positionLy (light years) with solar defaults.
func NewStar(name string, positionLy r3.Vec) *Star {
	return &Star{
		name:       name,
		position:   univcoord.CreateLy(positionLy),
		radius:     astro.SolarRadiusKm,
		luminosity: 1,
		color:      White,
		rotation:   rotation.Identity(),
		visible:    true,
	}
}

func (s *Star) Name() string { return s.name }

// Position returns the star's universal position. Stars do not move.
func (s *Star) Position(float64) univcoord.Coord { return s.position }

func (s *Star) Velocity(float64) r3.Vec { return r3.Vec{} }

func (s *Star) Radius() float64 { return s.radius }

func (s *Star) SetRadius(km float64) { s.radius = km }

func (s *Star) Luminosity() float64 { return s.luminosity }

func (s *Star) SetLuminosity(l float64) { s.luminosity = l }

func (s *Star) Color() Color { return s.color }

func (s *Star) SetColor(c Color) { s.color = c }

func (s *Star) RotationModel() rotation.Model { return s.rotation }

// SetRotationModel sets the star's rotation; nil restores the identity.
func (s *Star) SetRotationModel(m rotation.Model) {
	if m == nil {
		m = rotation.Identity()
	}
	s.rotation = m
}

func (s *Star) IsVisible() bool { return s.visible }

func (s *Star) SetVisible(v bool) { s.visible = v }

// DeepSkyObject is an extended object such as a galaxy or nebula.
type DeepSkyObject struct {
	name     string
	position r3.Vec  // light years
	radius   float64 // light years
	visible  bool
}

// NewDeepSkyObject creates a deep-sky object at positionLy with radiusLy.
func NewDeepSkyObject(name string, positionLy r3.Vec, radiusLy float64) *DeepSkyObject {
	return &DeepSkyObject{name: name, position: positionLy, radius: radiusLy, visible: true}
}

func (d *DeepSkyObject) Name() string { return d.name }

// Position returns the object's universal position.
func (d *DeepSkyObject) Position() univcoord.Coord {
	return univcoord.CreateLy(d.position)
}

// PositionLy returns the catalog position in light years.
func (d *DeepSkyObject) PositionLy() r3.Vec { return d.position }

// Radius returns the radius in light years.
func (d *DeepSkyObject) Radius() float64 { return d.radius }

func (d *DeepSkyObject) IsVisible() bool { return d.visible }

func (d *DeepSkyObject) SetVisible(v bool) { d.visible = v }
