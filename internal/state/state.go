// Package state owns the simulation clock and the most recent evaluation of
// the universe, and hands consistent snapshots to the UI and reporters.
//
// Evaluation is single threaded: Evaluate walks every body at one instant
// under the manager's write lock. Readers only ever see a finished Snapshot.
package state

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/engine"
	"github.com/litescript/ls-orrery/internal/lighting"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/univcoord"
)

// EventType is the kind of change detected between evaluations.
type EventType string

const (
	EventEclipseBegin EventType = "ECLIPSE_BEGIN"
	EventEclipseEnd   EventType = "ECLIPSE_END"
	EventPhaseChange  EventType = "PHASE_CHANGE"
	EventOutOfBounds  EventType = "OUT_OF_BOUNDS"
)

// Event is a change in the simulated system.
type Event struct {
	Type    EventType `json:"type"`
	SimTime time.Time `json:"sim_time"`
	TDB     float64   `json:"tdb"`
	Body    string    `json:"body"`
	Caster  string    `json:"caster,omitempty"`
	Phase   int       `json:"phase,omitempty"`
}

// TimeSeries is a single sample.
type TimeSeries struct {
	TDB   float64
	Value float64
}

// BodyHistory tracks a body's distance from its star.
type BodyHistory struct {
	Name     string
	Distance []TimeSeries // km
}

// BodyState is one body's evaluated state.
type BodyState struct {
	Name           string
	System         string // name of the system's star
	Class          engine.Classification
	Position       univcoord.Coord
	Astrocentric   r3.Vec // km, universal axes
	Velocity       r3.Vec // km/day
	Orientation    quat.Number
	AngularVel     r3.Vec // rad/day
	Primary        string
	PhaseIndex     int
	PhaseCount     int
	Lights         int
	Illuminated    float64
	Casters        []string
	Shadows        int // eclipse shadows over all lights
	RingShadow     bool
	OutOfBounds    bool
	BoundingRadius float64
	// RadialVelocity is the rate of change of the distance from the star
	// between the last two evaluations, in km/s.
	RadialVelocity float64
}

// Eclipsed reports whether anything shadows the body.
func (b BodyState) Eclipsed() bool { return len(b.Casters) > 0 }

type eclipseKey struct {
	body, caster string
}

// Config holds state manager settings.
type Config struct {
	MaxHistoryLen int
	MaxEvents     int
	// TimeScale is simulated days per real second.
	TimeScale float64
	// Observer names the body the illuminated fraction is seen from. An
	// empty or unknown name views each body from its star.
	Observer string
	// Recorder receives evaluation metrics. Nil falls back to the
	// universe's recorder.
	Recorder metrics.Recorder
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		MaxHistoryLen: 120,
		MaxEvents:     50,
		TimeScale:     1.0 / 24, // an hour per second
		Observer:      "Earth",
	}
}

// Manager is the shared simulation state.
type Manager struct {
	mu sync.RWMutex

	universe *engine.Universe
	log      *logging.Logger
	rec      metrics.Recorder
	observer string

	tdb       float64
	timeScale float64
	paused    bool

	current      *Snapshot
	evalDuration time.Duration

	prevEclipses map[eclipseKey]bool
	prevPhase    map[string]int
	prevOOB      map[string]bool

	history       map[string]*BodyHistory
	maxHistoryLen int

	events       []Event
	maxEvents    int
	eventWriteAt int

	ls *lighting.LightingState
}

// NewManager creates a manager for u starting at start.
func NewManager(u *engine.Universe, start time.Time, cfg Config, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.Discard()
	}
	rec := cfg.Recorder
	if rec == nil && u != nil {
		rec = u.Recorder()
	}
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	return &Manager{
		universe:      u,
		log:           log.Named("state"),
		rec:           metrics.OrNop(rec),
		observer:      cfg.Observer,
		tdb:           astro.UTCToTDB(start),
		timeScale:     cfg.TimeScale,
		maxHistoryLen: cfg.MaxHistoryLen,
		maxEvents:     maxEvents,
		events:        make([]Event, 0, maxEvents),
		prevEclipses:  make(map[eclipseKey]bool),
		prevPhase:     make(map[string]int),
		prevOOB:       make(map[string]bool),
		history:       make(map[string]*BodyHistory),
		ls:            lighting.NewLightingState(),
	}
}

// Universe returns the simulated universe.
func (m *Manager) Universe() *engine.Universe { return m.universe }

// TDB returns the simulation time as a TDB Julian date.
func (m *Manager) TDB() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tdb
}

// SimTime returns the simulation time in UTC.
func (m *Manager) SimTime() time.Time {
	return astro.TDBToUTC(m.TDB())
}

// SetTime jumps the clock to t.
func (m *Manager) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tdb = astro.UTCToTDB(t)
}

func (m *Manager) TimeScale() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timeScale
}

// SetTimeScale sets simulated days per real second. Negative runs the
// clock backwards.
func (m *Manager) SetTimeScale(s float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeScale = s
}

func (m *Manager) Paused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paused
}

// TogglePause flips the paused flag and returns the new value.
func (m *Manager) TogglePause() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = !m.paused
	return m.paused
}

// Advance moves the clock forward by real elapsed time scaled by the time
// scale. A paused clock does not move.
func (m *Manager) Advance(elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.paused {
		return
	}
	m.tdb += m.timeScale * elapsed.Seconds()
}

// Step advances the clock and evaluates the universe at the new time.
func (m *Manager) Step(elapsed time.Duration) Snapshot {
	m.Advance(elapsed)
	return m.Evaluate()
}

// Evaluate computes every body's state at the current simulation time and
// publishes the result.
func (m *Manager) Evaluate() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	began := time.Now()
	tjd := m.tdb
	snap := &Snapshot{TDB: tjd, SimTime: astro.TDBToUTC(tjd)}

	var observer *engine.Body
	if m.observer != "" {
		observer = m.universe.FindBody(m.observer)
	}

	oob, eclipsed := 0, 0
	for _, sys := range m.universe.SolarSystems() {
		tree := sys.FrameTree()
		if tree.UpdateRequired() {
			tree.RecomputeBoundingSphere()
		}
		lights := lighting.LightSourcesFor(m.universe, sys.Star().Position(tjd), tjd)

		for _, body := range sys.Bodies() {
			bs := m.evaluateBody(body, observer, lights, tjd)
			if bs.OutOfBounds {
				oob++
			}
			if bs.Eclipsed() {
				eclipsed++
			}
			snap.Bodies = append(snap.Bodies, bs)
		}
	}

	m.detectEvents(snap)
	m.recordHistory(snap)
	for i := range snap.Bodies {
		snap.Bodies[i].RadialVelocity = m.radialVelocity(snap.Bodies[i].Name)
	}

	m.evalDuration = time.Since(began)
	snap.EvalDuration = m.evalDuration
	snap.Events = m.getEventsOrdered()
	m.current = snap
	m.rec.ObserveEvaluation(len(snap.Bodies), oob, eclipsed, m.evalDuration)
	if oob > 0 {
		m.log.Warn("%d body(ies) outside the representable range at %.5f", oob, tjd)
	}
	return *snap
}

func (m *Manager) evaluateBody(body *engine.Body, observer *engine.Body, lights []lighting.LightSource, tjd float64) BodyState {
	pos := body.Position(tjd)
	bs := BodyState{
		Name:         body.Name(),
		System:       body.System().Star().Name(),
		Class:        body.Classification(),
		Position:     pos,
		Astrocentric: body.AstrocentricPosition(tjd),
		Velocity:     body.Velocity(tjd),
		Orientation:  body.EclipticToBodyFixed(tjd),
		AngularVel:   body.AngularVelocity(tjd),
		PhaseCount:   body.Timeline().PhaseCount(),
		OutOfBounds:  pos.IsOutOfBounds(),
	}
	if p := body.Primary(); p != nil {
		bs.Primary = p.Name()
	}
	if tree := body.FrameTree(); tree != nil {
		bs.BoundingRadius = tree.BoundingSphereRadius()
	}
	if phase := body.Phase(tjd); phase != nil {
		for i, p := range body.Timeline().Phases() {
			if p == phase {
				bs.PhaseIndex = i
				break
			}
		}
	}

	eye := body.System().Star().Position(tjd)
	if observer != nil && observer != body {
		eye = observer.Position(tjd)
	}
	lighting.Setup(m.ls, lighting.Params{
		Receiver: body,
		Time:     tjd,
		Observer: eye,
		Lights:   lights,
	})
	bs.Lights = m.ls.NLights
	bs.Illuminated = lighting.IlluminatedFraction(m.ls)
	bs.Shadows = m.ls.ShadowCount()
	bs.RingShadow = m.ls.ShadowingRingSystem != nil
	for _, c := range m.ls.Casters() {
		bs.Casters = append(bs.Casters, c.Name())
	}
	return bs
}

// detectEvents compares snap with the previous evaluation.
func (m *Manager) detectEvents(snap *Snapshot) {
	first := m.current == nil
	eclipses := make(map[eclipseKey]bool)
	for _, bs := range snap.Bodies {
		for _, c := range bs.Casters {
			k := eclipseKey{body: bs.Name, caster: c}
			eclipses[k] = true
			if !first && !m.prevEclipses[k] {
				m.addEvent(Event{Type: EventEclipseBegin, SimTime: snap.SimTime, TDB: snap.TDB, Body: bs.Name, Caster: c})
			}
		}
		if prev, ok := m.prevPhase[bs.Name]; ok && prev != bs.PhaseIndex {
			m.addEvent(Event{Type: EventPhaseChange, SimTime: snap.SimTime, TDB: snap.TDB, Body: bs.Name, Phase: bs.PhaseIndex})
		}
		m.prevPhase[bs.Name] = bs.PhaseIndex

		// A body already out of range at the first evaluation is only
		// logged.
		if !first && bs.OutOfBounds && !m.prevOOB[bs.Name] {
			m.addEvent(Event{Type: EventOutOfBounds, SimTime: snap.SimTime, TDB: snap.TDB, Body: bs.Name})
		}
		m.prevOOB[bs.Name] = bs.OutOfBounds
	}

	ended := make([]eclipseKey, 0)
	for k := range m.prevEclipses {
		if !eclipses[k] {
			ended = append(ended, k)
		}
	}
	sort.Slice(ended, func(i, j int) bool {
		if ended[i].body != ended[j].body {
			return ended[i].body < ended[j].body
		}
		return ended[i].caster < ended[j].caster
	})
	for _, k := range ended {
		m.addEvent(Event{Type: EventEclipseEnd, SimTime: snap.SimTime, TDB: snap.TDB, Body: k.body, Caster: k.caster})
	}
	m.prevEclipses = eclipses
}

func (m *Manager) addEvent(e Event) {
	m.log.Debug("%s %s %s", e.Type, e.Body, e.Caster)
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

func (m *Manager) recordHistory(snap *Snapshot) {
	if m.maxHistoryLen <= 0 {
		return
	}
	for _, bs := range snap.Bodies {
		hist, ok := m.history[bs.Name]
		if !ok {
			hist = &BodyHistory{Name: bs.Name, Distance: make([]TimeSeries, 0, m.maxHistoryLen)}
			m.history[bs.Name] = hist
		}
		hist.Distance = append(hist.Distance, TimeSeries{TDB: snap.TDB, Value: r3.Norm(bs.Astrocentric)})
		if len(hist.Distance) > m.maxHistoryLen {
			hist.Distance = hist.Distance[1:]
		}
	}
}

// Snapshot is an immutable view of one evaluation.
type Snapshot struct {
	TDB          float64
	SimTime      time.Time
	Bodies       []BodyState
	Events       []Event
	EvalDuration time.Duration
}

// Body returns the named body's state.
func (s Snapshot) Body(name string) (BodyState, bool) {
	for _, b := range s.Bodies {
		if b.Name == name {
			return b, true
		}
	}
	return BodyState{}, false
}

// Snapshot returns the latest evaluation. ok is false before the first
// Evaluate.
func (m *Manager) Snapshot() (snap Snapshot, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Snapshot{}, false
	}
	return *m.current, true
}

func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		result[i] = m.events[(m.eventWriteAt+i)%m.maxEvents]
	}
	return result
}

// RecentEvents returns the last n events, oldest first.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// History returns a copy of the named body's distance history, or nil.
func (m *Manager) History(name string) *BodyHistory {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hist, ok := m.history[name]
	if !ok {
		return nil
	}
	out := &BodyHistory{Name: hist.Name, Distance: make([]TimeSeries, len(hist.Distance))}
	copy(out.Distance, hist.Distance)
	return out
}

// radialVelocity estimates the rate of change of a body's distance from its
// star in km/s from the last two history samples. The caller holds mu.
func (m *Manager) radialVelocity(name string) float64 {
	hist, ok := m.history[name]
	if !ok || len(hist.Distance) < 2 {
		return 0
	}
	n := len(hist.Distance)
	p1, p2 := hist.Distance[n-2], hist.Distance[n-1]
	dt := p2.TDB - p1.TDB
	if dt == 0 {
		return 0
	}
	return (p2.Value - p1.Value) / (dt * astro.SecondsPerDay)
}

// EvalDuration returns how long the last evaluation took.
func (m *Manager) EvalDuration() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.evalDuration
}
