package scene

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/naoina/toml"
	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/engine"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/rotation"
)

// MaxFrameDepth bounds the chain of frames any orbit or body frame may
// depend on.
const MaxFrameDepth = 50

var (
	ErrNoStars         = errors.New("scene has no stars")
	ErrDuplicateName   = errors.New("duplicate object name")
	ErrUnknownObject   = errors.New("unknown object")
	ErrInvalidVector   = errors.New("vector must have three components")
	ErrUnknownType     = errors.New("unknown type")
	ErrFrameTooDeep    = errors.New("frame nesting too deep")
	ErrNoPhases        = errors.New("body has no timeline phases")
	ErrMissingRadius   = errors.New("radius must be positive")
	ErrInvalidRings    = errors.New("ring outer radius must exceed inner radius")
	ErrInvalidOrbit    = errors.New("invalid orbit")
	ErrInvalidRotation = errors.New("invalid rotation")
)

//go:embed default.toml
var defaultScene []byte

// DefaultScene returns the embedded scene source.
func DefaultScene() []byte {
	return defaultScene
}

// Parse decodes scene source without building anything.
func Parse(data []byte) (*File, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	return &f, nil
}

// Loader builds universes from scene files.
type Loader struct {
	log *logging.Logger
	rec metrics.Recorder
}

// NewLoader returns a loader that reports progress to log.
func NewLoader(log *logging.Logger) *Loader {
	if log == nil {
		log = logging.Discard()
	}
	return &Loader{log: log.Named("scene"), rec: metrics.Nop{}}
}

// WithRecorder makes built universes report to rec.
func (l *Loader) WithRecorder(rec metrics.Recorder) *Loader {
	l.rec = metrics.OrNop(rec)
	return l
}

// LoadDefault builds the embedded scene.
func (l *Loader) LoadDefault() (*engine.Universe, error) {
	return l.Load(defaultScene)
}

// LoadFile reads and builds the scene at path.
func (l *Loader) LoadFile(path string) (*engine.Universe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	l.log.Debug("read %s (%d bytes)", path, len(data))
	return l.Load(data)
}

// Load parses data and builds a universe from it.
func (l *Loader) Load(data []byte) (*engine.Universe, error) {
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return l.Build(f)
}

// Build turns a decoded scene into a universe. Bodies are created before
// any phase so frames may refer to bodies declared later in the file.
func (l *Loader) Build(f *File) (*engine.Universe, error) {
	if len(f.Stars) == 0 {
		return nil, ErrNoStars
	}
	b := &builder{u: engine.NewUniverse(), names: make(map[string]bool)}
	b.u.SetRecorder(l.rec)

	for _, sc := range f.Stars {
		if err := b.addStar(sc); err != nil {
			return nil, fmt.Errorf("star %q: %w", sc.Name, err)
		}
	}
	for _, dc := range f.DeepSky {
		if err := b.addDeepSky(dc); err != nil {
			return nil, fmt.Errorf("deep-sky object %q: %w", dc.Name, err)
		}
	}

	bodies := make([]*engine.Body, len(f.Bodies))
	for i, bc := range f.Bodies {
		body, err := b.addBody(bc)
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", bc.Name, err)
		}
		bodies[i] = body
	}
	for i, bc := range f.Bodies {
		if err := b.buildTimeline(bodies[i], bc); err != nil {
			return nil, fmt.Errorf("body %q: %w", bc.Name, err)
		}
		l.log.Debug("body %s: %d phase(s)", bc.Name, len(bc.Phases))
	}
	// Depth is checked once every timeline is in place; a frame may depend on
	// a body declared after it.
	for _, body := range bodies {
		if err := checkFrameDepth(body); err != nil {
			return nil, fmt.Errorf("body %q: %w", body.Name(), err)
		}
	}
	for i, bc := range f.Bodies {
		for _, lc := range bc.Locations {
			addLocation(bodies[i], lc)
		}
	}

	for _, sys := range b.u.SolarSystems() {
		sys.FrameTree().RecomputeBoundingSphere()
	}
	l.log.Info("loaded %d star(s), %d body(ies), %d deep-sky object(s)",
		len(f.Stars), len(f.Bodies), len(f.DeepSky))
	return b.u, nil
}

type builder struct {
	u     *engine.Universe
	names map[string]bool
}

func (b *builder) claim(name string) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return fmt.Errorf("%w: empty name", ErrUnknownObject)
	}
	if b.names[key] {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	b.names[key] = true
	return nil
}

func (b *builder) addStar(sc StarConfig) error {
	if err := b.claim(sc.Name); err != nil {
		return err
	}
	pos, err := vec3(sc.PositionLy)
	if err != nil {
		return fmt.Errorf("position_ly: %w", err)
	}
	s := engine.NewStar(sc.Name, pos)
	if sc.RadiusKm < 0 {
		return ErrMissingRadius
	}
	if sc.RadiusKm > 0 {
		s.SetRadius(sc.RadiusKm)
	}
	if sc.Luminosity > 0 {
		s.SetLuminosity(sc.Luminosity)
	}
	if sc.Color != nil {
		c, err := color(sc.Color)
		if err != nil {
			return err
		}
		s.SetColor(c)
	}
	if sc.Rotation.Type != "" {
		rm, err := rotationModel(sc.Rotation)
		if err != nil {
			return err
		}
		s.SetRotationModel(rm)
	}
	b.u.AddStar(s)
	b.u.GetOrCreateSolarSystem(s)
	return nil
}

func (b *builder) addDeepSky(dc DeepSkyConfig) error {
	if err := b.claim(dc.Name); err != nil {
		return err
	}
	pos, err := vec3(dc.PositionLy)
	if err != nil {
		return fmt.Errorf("position_ly: %w", err)
	}
	b.u.AddDeepSky(engine.NewDeepSkyObject(dc.Name, pos, dc.RadiusLy))
	return nil
}

func (b *builder) addBody(bc BodyConfig) (*engine.Body, error) {
	if err := b.claim(bc.Name); err != nil {
		return nil, err
	}
	star := b.u.Stars()[0]
	if bc.Star != "" {
		if star = b.u.FindStar(bc.Star); star == nil {
			return nil, fmt.Errorf("%w: star %s", ErrUnknownObject, bc.Star)
		}
	}
	if bc.RadiusKm <= 0 {
		return nil, ErrMissingRadius
	}

	body := engine.NewBody(bc.Name, b.u.GetOrCreateSolarSystem(star))
	body.SetRadius(bc.RadiusKm)
	if bc.Class != "" {
		class, ok := engine.ParseClassification(bc.Class)
		if !ok {
			return nil, fmt.Errorf("%w: class %s", ErrUnknownType, bc.Class)
		}
		body.SetClassification(class)
	}
	if bc.Albedo > 0 {
		body.SetAlbedo(bc.Albedo)
	}
	body.SetVisible(!bc.Hidden)
	body.SetSecondaryIlluminator(bc.SecondaryIlluminator)

	if rc := bc.Rings; rc.InnerKm != 0 || rc.OuterKm != 0 {
		if rc.OuterKm <= rc.InnerKm || rc.InnerKm < 0 {
			return nil, ErrInvalidRings
		}
		rings := &engine.RingSystem{InnerRadius: rc.InnerKm, OuterRadius: rc.OuterKm, Color: engine.White}
		if rc.Color != nil {
			c, err := color(rc.Color)
			if err != nil {
				return nil, fmt.Errorf("rings: %w", err)
			}
			rings.Color = c
		}
		body.SetRings(rings)
	}
	return body, nil
}

func (b *builder) buildTimeline(body *engine.Body, bc BodyConfig) error {
	if len(bc.Phases) == 0 {
		return ErrNoPhases
	}
	star := body.System().Star()

	phases := make([]*engine.TimelinePhase, 0, len(bc.Phases))
	built := false
	defer func() {
		// Created phases are already children of their frame trees.
		if !built {
			for _, p := range phases {
				p.FrameTree().RemoveChild(p)
			}
		}
	}()

	for i, pc := range bc.Phases {
		start, end := math.Inf(-1), math.Inf(1)
		if !pc.Begin.IsZero() {
			start = astro.UTCToTDB(pc.Begin)
		}
		if !pc.End.IsZero() {
			end = astro.UTCToTDB(pc.End)
		}

		var err error
		orbitFrame := body.System().FrameTree().DefaultFrame()
		if pc.OrbitFrame.Type != "" || pc.OrbitFrame.Center != "" {
			if orbitFrame, err = b.frame(pc.OrbitFrame, engine.SelectStar(star)); err != nil {
				return fmt.Errorf("phase %d orbit_frame: %w", i, err)
			}
		}
		bodyFrame := orbitFrame
		bfc := pc.BodyFrame
		if bfc.Type == "" && isIAU(pc.Rotation.Type) {
			// IAU poles are given in Earth's J2000 equator.
			bfc.Type = "equator"
		}
		if bfc.Type != "" {
			if bodyFrame, err = b.frame(bfc, orbitFrame.Center()); err != nil {
				return fmt.Errorf("phase %d body_frame: %w", i, err)
			}
		}
		o, err := orbitModel(pc.Orbit)
		if err != nil {
			return fmt.Errorf("phase %d orbit: %w", i, err)
		}
		rm, err := rotationModel(pc.Rotation)
		if err != nil {
			return fmt.Errorf("phase %d rotation: %w", i, err)
		}

		p, err := engine.CreateTimelinePhase(b.u, body, start, end, orbitFrame, o, bodyFrame, rm)
		if err != nil {
			return fmt.Errorf("phase %d: %w", i, err)
		}
		phases = append(phases, p)
	}

	tl, err := engine.NewTimeline(phases...)
	if err != nil {
		return err
	}
	body.SetTimeline(tl)
	built = true
	return nil
}

// resolve finds a star, body or body/location by name.
func (b *builder) resolve(name string) (engine.Selection, error) {
	sel := b.u.Find(name)
	if sel.Empty() {
		return sel, fmt.Errorf("%w: %s", ErrUnknownObject, name)
	}
	return sel, nil
}

// frame builds the frame fc describes. An empty type is an ecliptic frame
// and an empty center is defaultCenter.
func (b *builder) frame(fc FrameConfig, defaultCenter engine.Selection) (engine.ReferenceFrame, error) {
	center := defaultCenter
	if fc.Center != "" {
		var err error
		if center, err = b.resolve(fc.Center); err != nil {
			return nil, err
		}
	}
	object := center
	if fc.Object != "" {
		var err error
		if object, err = b.resolve(fc.Object); err != nil {
			return nil, err
		}
	}

	switch strings.ToLower(fc.Type) {
	case "", "ecliptic":
		return engine.NewJ2000EclipticFrame(center), nil
	case "equator":
		return engine.NewJ2000EquatorFrame(center), nil
	case "body_fixed":
		return engine.NewBodyFixedFrame(center, object), nil
	case "mean_equator":
		if !fc.Freeze.IsZero() {
			return engine.NewFrozenBodyMeanEquatorFrame(center, object, astro.UTCToTDB(fc.Freeze)), nil
		}
		return engine.NewBodyMeanEquatorFrame(center, object), nil
	case "two_vector":
		return b.twoVectorFrame(fc, center)
	default:
		return nil, fmt.Errorf("%w: frame %s", ErrUnknownType, fc.Type)
	}
}

func (b *builder) twoVectorFrame(fc FrameConfig, center engine.Selection) (engine.ReferenceFrame, error) {
	primaryAxis, secondaryAxis := parseAxis(fc.Primary.Axis), parseAxis(fc.Secondary.Axis)
	if err := engine.ValidateAxes(primaryAxis, secondaryAxis); err != nil {
		return nil, err
	}
	primary, err := b.frameVector(fc.Primary, center)
	if err != nil {
		return nil, fmt.Errorf("primary: %w", err)
	}
	secondary, err := b.frameVector(fc.Secondary, center)
	if err != nil {
		return nil, fmt.Errorf("secondary: %w", err)
	}
	return engine.NewTwoVectorFrame(center, primary, primaryAxis, secondary, secondaryAxis), nil
}

func (b *builder) frameVector(vc VectorConfig, center engine.Selection) (engine.FrameVector, error) {
	switch strings.ToLower(vc.Type) {
	case "relative_position", "relative_velocity":
		observer := center
		if vc.Observer != "" {
			var err error
			if observer, err = b.resolve(vc.Observer); err != nil {
				return engine.FrameVector{}, err
			}
		}
		target, err := b.resolve(vc.Target)
		if err != nil {
			return engine.FrameVector{}, err
		}
		if strings.EqualFold(vc.Type, "relative_velocity") {
			return engine.NewRelativeVelocityVector(observer, target), nil
		}
		return engine.NewRelativePositionVector(observer, target), nil
	case "constant":
		v, err := vec3(vc.Vector)
		if err != nil {
			return engine.FrameVector{}, err
		}
		f, err := b.frame(FrameConfig{Type: vc.Frame, Center: vc.FrameCenter}, center)
		if err != nil {
			return engine.FrameVector{}, err
		}
		return engine.NewConstantVector(v, f), nil
	default:
		return engine.FrameVector{}, fmt.Errorf("%w: vector %s", ErrUnknownType, vc.Type)
	}
}

// parseAxis maps x, y, z with an optional sign to ±1, ±2, ±3. Anything else
// is 0, which ValidateAxes rejects.
func parseAxis(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	sign := 1
	switch {
	case strings.HasPrefix(s, "-"):
		sign, s = -1, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	switch s {
	case "x":
		return sign
	case "y":
		return 2 * sign
	case "z":
		return 3 * sign
	}
	return 0
}

func checkFrameDepth(body *engine.Body) error {
	for _, p := range body.Timeline().Phases() {
		if d := engine.FrameDepth(p.OrbitFrame(), MaxFrameDepth, engine.PositionFrame); d > MaxFrameDepth {
			return fmt.Errorf("%w: orbit frame", ErrFrameTooDeep)
		}
		if d := engine.FrameDepth(p.BodyFrame(), MaxFrameDepth, engine.OrientationFrame); d > MaxFrameDepth {
			return fmt.Errorf("%w: body frame", ErrFrameTooDeep)
		}
	}
	return nil
}

func orbitModel(oc OrbitConfig) (orbit.Orbit, error) {
	epoch := epochOrJ2000(oc.Epoch)
	switch strings.ToLower(oc.Type) {
	case "":
		// CreateTimelinePhase reports the missing orbit.
		return nil, nil
	case "fixed":
		p, err := vec3(oc.PositionKm)
		if err != nil {
			return nil, fmt.Errorf("position_km: %w", err)
		}
		return orbit.NewFixedPosition(p), nil
	case "circular":
		if oc.RadiusKm <= 0 {
			return nil, fmt.Errorf("%w: radius_km must be positive", ErrInvalidOrbit)
		}
		return orbit.NewCircular(oc.RadiusKm, oc.Period, deg(oc.Inclination), deg(oc.AscendingNode), deg(oc.MeanAnomaly), epoch)
	case "elliptical":
		a := oc.SemiMajorAxisKm
		if oc.SemiMajorAxisAU != 0 {
			a = astro.AUToKm(oc.SemiMajorAxisAU)
		}
		if a <= 0 {
			return nil, fmt.Errorf("%w: semi-major axis must be positive", ErrInvalidOrbit)
		}
		return orbit.NewElliptical(orbit.Elements{
			PericenterDistance: a * (1 - oc.Eccentricity),
			Eccentricity:       oc.Eccentricity,
			Inclination:        deg(oc.Inclination),
			AscendingNode:      deg(oc.AscendingNode),
			ArgOfPericenter:    deg(oc.ArgOfPericenter),
			MeanAnomaly:        deg(oc.MeanAnomaly),
			Epoch:              epoch,
			Period:             oc.Period,
		})
	default:
		return nil, fmt.Errorf("%w: orbit %s", ErrUnknownType, oc.Type)
	}
}

func rotationModel(rc RotationConfig) (rotation.Model, error) {
	epoch := epochOrJ2000(rc.Epoch)
	incl, node, offset := deg(rc.Inclination), deg(rc.AscendingNode), deg(rc.Offset)
	switch strings.ToLower(rc.Type) {
	case "":
		return rotation.Identity(), nil
	case "constant":
		q := quat.Mul(astro.YRotation(-offset), quat.Mul(astro.XRotation(-incl), astro.YRotation(-node)))
		return rotation.NewConstantOrientation(q), nil
	case "uniform", "precessing":
		if rc.Period == 0 || math.IsNaN(rc.Period) || math.IsInf(rc.Period, 0) {
			return nil, fmt.Errorf("%w: period must be nonzero and finite", ErrInvalidRotation)
		}
		if strings.EqualFold(rc.Type, "uniform") {
			return rotation.Cached(rotation.NewUniformModel(rc.Period, offset, epoch, incl, node)), nil
		}
		return rotation.Cached(rotation.NewPrecessingModel(rc.Period, offset, epoch, incl, node, rc.PrecessionPeriod)), nil
	default:
		if rm, ok := rotation.IAU(rc.Type); ok {
			return rm, nil
		}
		return nil, fmt.Errorf("%w: rotation %s", ErrUnknownType, rc.Type)
	}
}

func isIAU(typ string) bool {
	_, ok := rotation.IAU(typ)
	return ok
}

// addLocation places a surface feature at planetographic longitude and
// latitude.
func addLocation(body *engine.Body, lc LocationConfig) *engine.Location {
	lon, lat := deg(lc.Longitude), deg(lc.Latitude)
	r := body.Radius() + lc.AltitudeKm
	pos := r3.Vec{
		X: r * math.Cos(lat) * math.Cos(lon),
		Y: r * math.Sin(lat),
		Z: -r * math.Cos(lat) * math.Sin(lon),
	}
	return engine.NewLocation(lc.Name, body, pos, lc.SizeKm)
}

func deg(d float64) float64 {
	return unit.AngleFromDeg(d).Rad()
}

func epochOrJ2000(t time.Time) float64 {
	if t.IsZero() {
		return astro.J2000
	}
	return astro.UTCToTDB(t)
}

func vec3(c []float64) (r3.Vec, error) {
	if len(c) != 3 {
		return r3.Vec{}, fmt.Errorf("%w: got %d", ErrInvalidVector, len(c))
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

func color(c []float64) (engine.Color, error) {
	if len(c) != 3 {
		return engine.Color{}, fmt.Errorf("color: %w: got %d", ErrInvalidVector, len(c))
	}
	return engine.Color{R: c[0], G: c[1], B: c[2]}, nil
}
