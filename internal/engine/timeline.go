package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/litescript/ls-orrery/internal/metrics"
)

// ErrPhaseGap is returned when a phase does not start where the timeline ends.
var ErrPhaseGap = errors.New("phase does not start at the end of the timeline")

// Timeline is a gap-free sequence of phases for one body, in time order.
type Timeline struct {
	phases []*TimelinePhase
	rec    metrics.Recorder
}

// NewTimeline builds a timeline from phases, checking continuity.
func NewTimeline(phases ...*TimelinePhase) (*Timeline, error) {
	tl := &Timeline{}
	for i, p := range phases {
		if err := tl.AppendPhase(p); err != nil {
			return nil, fmt.Errorf("phase %d: %w", i, err)
		}
	}
	return tl, nil
}

// AppendPhase adds p to the end of the timeline. p must start exactly where
// the last phase ends.
func (tl *Timeline) AppendPhase(p *TimelinePhase) error {
	if n := len(tl.phases); n > 0 {
		if last := tl.phases[n-1]; p.StartTime() != last.EndTime() {
			return fmt.Errorf("%w: starts at %v, previous ends at %v", ErrPhaseGap, p.StartTime(), last.EndTime())
		}
	}
	if len(tl.phases) == 0 && p.rec != nil {
		tl.rec = p.rec
	}
	tl.phases = append(tl.phases, p)
	return nil
}

// FindPhase returns the phase whose interval contains tjd. Times before the
// first phase map to the first phase and times at or after the end map to
// the last. An empty timeline has no phase.
func (tl *Timeline) FindPhase(tjd float64) *TimelinePhase {
	if tl.rec != nil {
		tl.rec.PhaseLookup()
	}
	switch len(tl.phases) {
	case 0:
		return nil
	case 1:
		return tl.phases[0]
	}
	i := sort.Search(len(tl.phases), func(i int) bool {
		return tjd < tl.phases[i].EndTime()
	})
	if i == len(tl.phases) {
		i--
	}
	return tl.phases[i]
}

// Phase returns the i'th phase.
func (tl *Timeline) Phase(i int) *TimelinePhase { return tl.phases[i] }

func (tl *Timeline) PhaseCount() int { return len(tl.phases) }

// Phases returns the phases in time order. The slice must not be modified.
func (tl *Timeline) Phases() []*TimelinePhase { return tl.phases }

// StartTime returns the start of the first phase, or 0 for an empty timeline.
func (tl *Timeline) StartTime() float64 {
	if len(tl.phases) == 0 {
		return 0
	}
	return tl.phases[0].StartTime()
}

// EndTime returns the end of the last phase, or 0 for an empty timeline.
func (tl *Timeline) EndTime() float64 {
	if len(tl.phases) == 0 {
		return 0
	}
	return tl.phases[len(tl.phases)-1].EndTime()
}

// Includes reports whether tjd lies in [StartTime, EndTime).
func (tl *Timeline) Includes(tjd float64) bool {
	if len(tl.phases) == 0 {
		return false
	}
	return tl.StartTime() <= tjd && tjd < tl.EndTime()
}

// MarkChanged flags every frame tree holding one of the phases.
func (tl *Timeline) MarkChanged() {
	for _, p := range tl.phases {
		if p.frameTree != nil {
			p.frameTree.MarkChanged()
		}
	}
}

// Detach removes the phases from their frame trees. The timeline keeps its
// phases and can still be queried.
func (tl *Timeline) Detach() {
	for _, p := range tl.phases {
		if p.frameTree != nil {
			p.frameTree.RemoveChild(p)
		}
	}
}
