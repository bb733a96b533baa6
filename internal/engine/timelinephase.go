package engine

import (
	"errors"
	"fmt"

	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/rotation"
)

var (
	// ErrInvalidPhaseInterval is returned for a phase that does not end after it starts.
	ErrInvalidPhaseInterval = errors.New("phase end time must be after start time")
	// ErrInvalidFrameCenter is returned when an orbit frame is centered on
	// something other than a star or a body.
	ErrInvalidFrameCenter = errors.New("orbit frame center must be a star or a body")
	// ErrIncompletePhase is returned when a phase is missing a frame, orbit or
	// rotation model.
	ErrIncompletePhase = errors.New("phase requires orbit frame, orbit, body frame and rotation model")
)

// TimelinePhase binds a body to one orbit and one rotation over the
// half-open interval [start, end).
type TimelinePhase struct {
	body       *Body
	start, end float64
	orbitFrame ReferenceFrame
	orbit      orbit.Orbit
	bodyFrame  ReferenceFrame
	rotation   rotation.Model
	frameTree  *FrameTree
	rec        metrics.Recorder
}

// recorderSetter is implemented by caching frames and rotation models.
type recorderSetter interface {
	SetRecorder(metrics.Recorder)
}

// CreateTimelinePhase validates and builds a phase and registers it with the
// frame tree of its orbit frame's center: the star's system tree, or the
// center body's own tree.
func CreateTimelinePhase(
	u *Universe,
	body *Body,
	start, end float64,
	orbitFrame ReferenceFrame,
	o orbit.Orbit,
	bodyFrame ReferenceFrame,
	rm rotation.Model,
) (*TimelinePhase, error) {
	rec := u.Recorder()
	if !(end > start) {
		rec.PhaseRejected("interval")
		return nil, fmt.Errorf("%w: [%v, %v)", ErrInvalidPhaseInterval, start, end)
	}
	if orbitFrame == nil || o == nil || bodyFrame == nil || rm == nil {
		rec.PhaseRejected("incomplete")
		return nil, ErrIncompletePhase
	}

	var tree *FrameTree
	center := orbitFrame.Center()
	switch center.Type() {
	case SelectionBody:
		tree = center.Body().GetOrCreateFrameTree()
	case SelectionStar:
		tree = u.GetOrCreateSolarSystem(center.Star()).FrameTree()
	default:
		rec.PhaseRejected("center")
		return nil, fmt.Errorf("%w: got %s", ErrInvalidFrameCenter, center.Type())
	}

	p := &TimelinePhase{
		body:       body,
		start:      start,
		end:        end,
		orbitFrame: orbitFrame,
		orbit:      o,
		bodyFrame:  bodyFrame,
		rotation:   rm,
		frameTree:  tree,
		rec:        rec,
	}
	for _, c := range []any{orbitFrame, bodyFrame, rm} {
		if s, ok := c.(recorderSetter); ok {
			s.SetRecorder(rec)
		}
	}
	tree.AddChild(p)
	return p, nil
}

func (p *TimelinePhase) Body() *Body { return p.body }

func (p *TimelinePhase) StartTime() float64 { return p.start }

func (p *TimelinePhase) EndTime() float64 { return p.end }

func (p *TimelinePhase) OrbitFrame() ReferenceFrame { return p.orbitFrame }

func (p *TimelinePhase) Orbit() orbit.Orbit { return p.orbit }

func (p *TimelinePhase) BodyFrame() ReferenceFrame { return p.bodyFrame }

func (p *TimelinePhase) RotationModel() rotation.Model { return p.rotation }

// FrameTree returns the tree the phase is registered with.
func (p *TimelinePhase) FrameTree() *FrameTree { return p.frameTree }

// Includes reports whether tjd lies in [start, end).
func (p *TimelinePhase) Includes(tjd float64) bool {
	return p.start <= tjd && tjd < p.end
}
