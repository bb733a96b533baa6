package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
)

func newTestManager(t *testing.T) *state.Manager {
	t.Helper()
	u, err := scene.NewLoader(nil).LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault(): %v", err)
	}
	cfg := state.DefaultConfig()
	cfg.TimeScale = 1
	return state.NewManager(u, time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC), cfg, nil)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModelPendingFocus(t *testing.T) {
	mgr := newTestManager(t)
	m := New(mgr, "Moon")
	if m.orrery.FocusedBody() != nil {
		t.Fatal("focus applied before any data")
	}

	m, _ = update(t, m, DataUpdateMsg{Snapshot: mgr.Evaluate()})
	if f := m.orrery.FocusedBody(); f == nil || f.Name != "Moon" {
		t.Errorf("focus = %v, want Moon", f)
	}
	if m.pendingFocus != "" {
		t.Error("pending focus not cleared")
	}

	m = New(mgr, "Vulcan")
	if !strings.Contains(m.statusMsg, "Vulcan") {
		t.Errorf("statusMsg = %q, want unknown-body notice", m.statusMsg)
	}
}

func TestModelClockKeys(t *testing.T) {
	mgr := newTestManager(t)
	m := New(mgr, "")

	m, _ = update(t, m, keyRune(' '))
	if !mgr.Paused() {
		t.Error("space did not pause")
	}
	m, _ = update(t, m, keyRune('p'))
	if mgr.Paused() {
		t.Error("p did not resume")
	}

	m, _ = update(t, m, keyRune('>'))
	if got := mgr.TimeScale(); got != 2 {
		t.Errorf("rate after > = %v, want 2", got)
	}
	m, _ = update(t, m, keyRune('<'))
	m, _ = update(t, m, keyRune('<'))
	if got := mgr.TimeScale(); got != 0.5 {
		t.Errorf("rate after << = %v, want 0.5", got)
	}
	m, _ = update(t, m, keyRune('R'))
	if got := mgr.TimeScale(); got != -0.5 {
		t.Errorf("rate after R = %v, want -0.5", got)
	}
	if !strings.Contains(m.statusMsg, "-12.0 h/s") {
		t.Errorf("statusMsg = %q", m.statusMsg)
	}

	for i := 0; i < 30; i++ {
		m, _ = update(t, m, keyRune('>'))
	}
	if got := mgr.TimeScale(); got != -maxTimeScale {
		t.Errorf("rate not clamped: %v", got)
	}
}

func TestModelQuit(t *testing.T) {
	m := New(newTestManager(t), "")
	_, cmd := update(t, m, keyRune('q'))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestModelForwardsViewKeys(t *testing.T) {
	mgr := newTestManager(t)
	mgr.Evaluate()
	m := New(mgr, "")
	m, _ = update(t, m, keyRune('k'))
	if m.orrery.FocusedBody() == nil {
		t.Error("k was not forwarded to the orrery view")
	}
}

func TestModelView(t *testing.T) {
	mgr := newTestManager(t)
	m := New(mgr, "")
	if m.View() != "Initializing..." {
		t.Error("expected placeholder before the first resize")
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 45})
	m, _ = update(t, m, DataUpdateMsg{Snapshot: mgr.Evaluate()})
	view := m.View()
	for _, want := range []string{"LS-ORRERY", "2030-06-01", "j/k: focus", "☉ Sun"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, _ = update(t, m, keyRune('e'))
	if m.events {
		t.Error("e did not hide the event log")
	}
}

func TestFormatRate(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0 / 86400, "1 s/s"},
		{1.0 / 288, "5.0 min/s"},
		{1.0 / 24, "1.0 h/s"},
		{-0.5, "-12.0 h/s"},
		{30, "30.0 d/s"},
	}
	for _, tt := range tests {
		if got := formatRate(tt.rate); got != tt.want {
			t.Errorf("formatRate(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestDescribeEvent(t *testing.T) {
	tests := []struct {
		e    state.Event
		want string
	}{
		{state.Event{Type: state.EventEclipseBegin, Body: "Earth", Caster: "Moon"}, "Earth enters the shadow of Moon"},
		{state.Event{Type: state.EventEclipseEnd, Body: "Io", Caster: "Jupiter"}, "Io leaves the shadow of Jupiter"},
		{state.Event{Type: state.EventPhaseChange, Body: "Cruiser", Phase: 1}, "Cruiser switches to phase 2"},
		{state.Event{Type: state.EventOutOfBounds, Body: "Probe"}, "Probe left the representable range"},
	}
	for _, tt := range tests {
		if got := describeEvent(tt.e); got != tt.want {
			t.Errorf("describeEvent(%v) = %q, want %q", tt.e.Type, got, tt.want)
		}
	}
}

func TestModelSyncsFocusedHistory(t *testing.T) {
	mgr := newTestManager(t)
	m := New(mgr, "Mars")
	for i := 0; i < 3; i++ {
		m, _ = update(t, m, DataUpdateMsg{Snapshot: mgr.Step(time.Hour)})
	}
	if n := len(m.orrery.history); n != 3 {
		t.Fatalf("orrery history has %d samples, want 3", n)
	}

	// Moving focus to the star clears the trend.
	for m.orrery.FocusedBody() != nil {
		m, _ = update(t, m, keyRune('k'))
	}
	if m.orrery.history != nil {
		t.Errorf("star focus kept %d samples", len(m.orrery.history))
	}
}
