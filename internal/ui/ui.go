// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/version"
)

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic UI updates.
	TickMsg time.Time

	// AnimTickMsg triggers fast animation updates.
	AnimTickMsg time.Time

	// DataUpdateMsg carries a fresh evaluation.
	DataUpdateMsg struct {
		Snapshot state.Snapshot
	}
)

const (
	minTimeScale = 1.0 / 86400 // a second per second
	maxTimeScale = 3650.0      // ten years per second
	headerLines  = 4
	footerLines  = 2
	eventLines   = 3
)

// Model is the root Bubble Tea model.
type Model struct {
	state *state.Manager

	width     int
	height    int
	ready     bool
	statusMsg string
	animTick  int

	orrery       OrreryModel
	snapshot     state.Snapshot
	pendingFocus string
	events       bool // show the event log
}

// New creates the root UI model. focus names the body to focus once data
// arrives; empty keeps focus on the star.
func New(stateMgr *state.Manager, focus string) Model {
	m := Model{
		state:        stateMgr,
		orrery:       NewOrreryModel(),
		pendingFocus: focus,
		events:       true,
	}
	if snap, ok := stateMgr.Snapshot(); ok {
		m.applySnapshot(snap)
	}
	return m
}

func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	m.orrery = m.orrery.UpdateData(snap)
	if m.pendingFocus != "" {
		if !m.orrery.SetFocus(m.pendingFocus) {
			m.statusMsg = fmt.Sprintf("No body named %q", m.pendingFocus)
		}
		m.pendingFocus = ""
	}
	m.syncHistory()
}

// syncHistory hands the focused body's distance history to the orrery.
func (m *Model) syncHistory() {
	var h *state.BodyHistory
	if f := m.orrery.FocusedBody(); f != nil {
		h = m.state.History(f.Name)
	}
	m.orrery = m.orrery.SetHistory(h)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), animTickCmd())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case " ", "p":
			if m.state.TogglePause() {
				m.statusMsg = "Paused"
			} else {
				m.statusMsg = "Running"
			}
		case ">", ".":
			m.setTimeScale(m.state.TimeScale() * 2)
		case "<", ",":
			m.setTimeScale(m.state.TimeScale() / 2)
		case "R":
			m.state.SetTimeScale(-m.state.TimeScale())
			m.statusMsg = "Rate " + formatRate(m.state.TimeScale())
		case "N":
			m.state.SetTime(time.Now())
			m.statusMsg = "Jumped to now"
		case "e":
			m.events = !m.events
			m.resize()

		default:
			var cmd tea.Cmd
			m.orrery, cmd = m.orrery.Update(msg)
			m.syncHistory()
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()

	case TickMsg:
		cmds = append(cmds, tickCmd())
		if snap, ok := m.state.Snapshot(); ok {
			m.applySnapshot(snap)
		}

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++

	case DataUpdateMsg:
		m.applySnapshot(msg.Snapshot)
	}

	return m, tea.Batch(cmds...)
}

// setTimeScale clamps the magnitude of s and keeps its sign.
func (m *Model) setTimeScale(s float64) {
	sign := 1.0
	if s < 0 {
		sign = -1
	}
	mag := math.Abs(s)
	if mag < minTimeScale {
		mag = minTimeScale
	} else if mag > maxTimeScale {
		mag = maxTimeScale
	}
	m.state.SetTimeScale(sign * mag)
	m.statusMsg = "Rate " + formatRate(sign*mag)
}

func (m *Model) resize() {
	contentHeight := m.height - headerLines - footerLines
	if m.events {
		contentHeight -= eventLines
	}
	m.orrery = m.orrery.SetSize(m.width, contentHeight)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.orrery.View())
	b.WriteString("\n")
	if m.events {
		b.WriteString(m.renderEvents())
	}
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	var b strings.Builder
	b.WriteString("\n  ")
	title := []rune("LS-ORRERY")
	for i, r := range title {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradientColor(i, 0, len(title), 1))).Bold(true)
		b.WriteString(style.Render(string(r)))
	}
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render(fmt.Sprintf("  Reference frames · Timelines · Lighting  v%s", version.Version)))
	b.WriteString("\n")

	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	clock := "--"
	if !m.snapshot.SimTime.IsZero() {
		clock = m.snapshot.SimTime.Format("2006-01-02 15:04:05 UTC")
	}
	b.WriteString("  ")
	b.WriteString(valueStyle.Render(clock))
	b.WriteString(muted.Render(fmt.Sprintf("  TDB %.5f", m.snapshot.TDB)))
	b.WriteString("\n")
	return b.String()
}

// gradientColor returns a hex color along the blue to pink title gradient.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	var r, g, b float64
	switch {
	case xRatio < 0.33:
		t := xRatio / 0.33
		r, g, b = 59+t*(139-59), 130+t*(92-130), 246
	case xRatio < 0.66:
		t := (xRatio - 0.33) / 0.33
		r, g, b = 139+t*(217-139), 92+t*(70-92), 246+t*(239-246)
	default:
		t := (xRatio - 0.66) / 0.34
		r, g, b = 217+t*(236-217), 70+t*(72-70), 239+t*(153-239)
	}

	f := 1.0 - yRatio*0.5
	clamp := func(v float64) int { return max(0, min(255, int(v*f))) }
	return fmt.Sprintf("#%02X%02X%02X", clamp(r), clamp(g), clamp(b))
}

func (m Model) renderEvents() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	eventStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("249"))

	events := m.snapshot.Events
	if len(events) > eventLines {
		events = events[len(events)-eventLines:]
	}
	var b strings.Builder
	for i := 0; i < eventLines; i++ {
		b.WriteString("  ")
		if i < len(events) {
			e := events[i]
			b.WriteString(dimStyle.Render(e.SimTime.Format("2006-01-02 15:04")))
			b.WriteString(" ")
			b.WriteString(eventStyle.Render(describeEvent(e)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func describeEvent(e state.Event) string {
	switch e.Type {
	case state.EventEclipseBegin:
		return fmt.Sprintf("%s enters the shadow of %s", e.Body, e.Caster)
	case state.EventEclipseEnd:
		return fmt.Sprintf("%s leaves the shadow of %s", e.Body, e.Caster)
	case state.EventPhaseChange:
		return fmt.Sprintf("%s switches to phase %d", e.Body, e.Phase+1)
	case state.EventOutOfBounds:
		return fmt.Sprintf("%s left the representable range", e.Body)
	default:
		return string(e.Type)
	}
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	switch {
	case m.state.Paused():
		status = accentStyle.Render("❚❚") + dimStyle.Render(" paused")
	default:
		status = accentStyle.Render(spinner) + dimStyle.Render(" "+formatRate(m.state.TimeScale()))
	}
	if m.snapshot.EvalDuration > 0 {
		status += dimStyle.Render(" (" + m.snapshot.EvalDuration.Round(time.Microsecond).String() + ")")
	}

	help := dimStyle.Render("j/k: focus | +/-: zoom | z: scale | v: local | l: labels | space: pause | </>: rate | R: reverse | e: events")
	footer := "  " + status + "  " + dimStyle.Render("|") + "  " + help
	if m.statusMsg != "" {
		footer += "\n  " + dimStyle.Render(m.statusMsg)
	}
	return footer
}

// formatRate renders a time scale in simulated days per real second.
func formatRate(daysPerSecond float64) string {
	sign := ""
	if daysPerSecond < 0 {
		sign = "-"
	}
	d := math.Abs(daysPerSecond)
	switch {
	case d < 1.0/1440:
		return fmt.Sprintf("%s%.0f s/s", sign, d*86400)
	case d < 1.0/24:
		return fmt.Sprintf("%s%.1f min/s", sign, d*1440)
	case d < 1:
		return fmt.Sprintf("%s%.1f h/s", sign, d*24)
	default:
		return fmt.Sprintf("%s%.1f d/s", sign, d)
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

// SendDataUpdate creates a command that sends a data update message.
func SendDataUpdate(snapshot state.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return DataUpdateMsg{Snapshot: snapshot}
	}
}
