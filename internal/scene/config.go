// Package scene loads star systems from TOML scene files.
//
// A scene lists stars, deep-sky objects and bodies. Each body has one or
// more timeline phases; a phase names its orbit frame, orbit, body frame and
// rotation model. Angles are degrees, distances km unless the key says
// otherwise, periods days, and epochs TOML datetimes (UTC).
//
//	[[star]]
//	name = "Sun"
//	position_ly = [0.0, 0.0, 0.0]
//
//	[[body]]
//	name = "Earth"
//	class = "planet"
//	radius_km = 6378.14
//
//	  [[body.phase]]
//	    [body.phase.orbit_frame]
//	    type = "ecliptic"
//	    center = "Sun"
//
//	    [body.phase.orbit]
//	    type = "elliptical"
//	    semi_major_axis_au = 1.0
//	    period = 365.25
package scene

import "time"

// File is the decoded form of a scene file.
type File struct {
	Stars   []StarConfig    `toml:"star"`
	DeepSky []DeepSkyConfig `toml:"deepsky"`
	Bodies  []BodyConfig    `toml:"body"`
}

type StarConfig struct {
	Name       string         `toml:"name"`
	PositionLy []float64      `toml:"position_ly"`
	RadiusKm   float64        `toml:"radius_km"`
	Luminosity float64        `toml:"luminosity"`
	Color      []float64      `toml:"color"`
	Rotation   RotationConfig `toml:"rotation"`
}

type DeepSkyConfig struct {
	Name       string    `toml:"name"`
	PositionLy []float64 `toml:"position_ly"`
	RadiusLy   float64   `toml:"radius_ly"`
}

type BodyConfig struct {
	Name string `toml:"name"`
	// Star names the system the body belongs to; the first star by default.
	Star                 string           `toml:"star"`
	Class                string           `toml:"class"`
	RadiusKm             float64          `toml:"radius_km"`
	Albedo               float64          `toml:"albedo"`
	Hidden               bool             `toml:"hidden"`
	SecondaryIlluminator bool             `toml:"secondary_illuminator"`
	Rings                RingsConfig      `toml:"rings"`
	Phases               []PhaseConfig    `toml:"phase"`
	Locations            []LocationConfig `toml:"location"`
}

type RingsConfig struct {
	InnerKm float64   `toml:"inner_km"`
	OuterKm float64   `toml:"outer_km"`
	Color   []float64 `toml:"color"`
}

// PhaseConfig is one timeline phase. A zero Begin or End leaves that side
// of the phase open.
type PhaseConfig struct {
	Begin      time.Time      `toml:"begin"`
	End        time.Time      `toml:"end"`
	OrbitFrame FrameConfig    `toml:"orbit_frame"`
	Orbit      OrbitConfig    `toml:"orbit"`
	BodyFrame  FrameConfig    `toml:"body_frame"`
	Rotation   RotationConfig `toml:"rotation"`
}

// FrameConfig describes a reference frame. Type is one of ecliptic,
// equator, body_fixed, mean_equator or two_vector.
type FrameConfig struct {
	Type   string `toml:"type"`
	Center string `toml:"center"`
	// Object is the body whose rotation a body_fixed or mean_equator frame
	// follows; the center by default.
	Object string `toml:"object"`
	// Freeze fixes a mean_equator frame at one instant.
	Freeze    time.Time    `toml:"freeze"`
	Primary   VectorConfig `toml:"primary"`
	Secondary VectorConfig `toml:"secondary"`
}

// VectorConfig is one direction of a two_vector frame. Type is one of
// relative_position, relative_velocity or constant.
type VectorConfig struct {
	Axis     string `toml:"axis"` // x, y, z, -x, -y or -z
	Type     string `toml:"type"`
	Observer string `toml:"observer"`
	Target   string `toml:"target"`
	// Vector and Frame define a constant direction. Frame is ecliptic or
	// equator, centered on FrameCenter.
	Vector      []float64 `toml:"vector"`
	Frame       string    `toml:"frame"`
	FrameCenter string    `toml:"frame_center"`
}

// OrbitConfig describes an orbit. Type is one of fixed, circular or
// elliptical.
type OrbitConfig struct {
	Type            string    `toml:"type"`
	PositionKm      []float64 `toml:"position_km"`
	RadiusKm        float64   `toml:"radius_km"`
	SemiMajorAxisKm float64   `toml:"semi_major_axis_km"`
	SemiMajorAxisAU float64   `toml:"semi_major_axis_au"`
	Eccentricity    float64   `toml:"eccentricity"`
	Inclination     float64   `toml:"inclination"`
	AscendingNode   float64   `toml:"ascending_node"`
	ArgOfPericenter float64   `toml:"arg_of_pericenter"`
	MeanAnomaly     float64   `toml:"mean_anomaly"`
	Period          float64   `toml:"period"`
	Epoch           time.Time `toml:"epoch"`
}

// RotationConfig describes a rotation model. Type is one of constant,
// uniform, precessing or an IAU model name such as iau-mars; an empty Type
// is the identity. IAU models take no other keys, and a phase using one
// defaults its body frame to the J2000 equator.
type RotationConfig struct {
	Type             string    `toml:"type"`
	Period           float64   `toml:"period"`
	Offset           float64   `toml:"offset"`
	Inclination      float64   `toml:"inclination"`
	AscendingNode    float64   `toml:"ascending_node"`
	PrecessionPeriod float64   `toml:"precession_period"`
	Epoch            time.Time `toml:"epoch"`
}

type LocationConfig struct {
	Name       string  `toml:"name"`
	Longitude  float64 `toml:"longitude"`
	Latitude   float64 `toml:"latitude"`
	AltitudeKm float64 `toml:"altitude_km"`
	SizeKm     float64 `toml:"size_km"`
}
