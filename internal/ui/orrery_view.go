package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/engine"
	"github.com/litescript/ls-orrery/internal/state"
)

// LabelMode controls which bodies get labels.
type LabelMode int

const (
	LabelNone    LabelMode = iota // No labels
	LabelFocused                  // Only the focused body
	LabelAll                      // Every body on screen
)

func (l LabelMode) String() string {
	switch l {
	case LabelNone:
		return "off"
	case LabelFocused:
		return "focus"
	default:
		return "all"
	}
}

// defaultLocalRadiusKm frames a local view around a body with no satellites.
const defaultLocalRadiusKm = 1e6

// OrreryModel renders a top-down ecliptic view of one star system.
type OrreryModel struct {
	width    int
	height   int
	snapshot state.Snapshot

	focusIdx   int // index into snapshot.Bodies; -1 is the star
	zoomLevel  int
	panX       float64
	panY       float64
	scaleMode  astro.RadialScale
	labelMode  LabelMode
	userPanned bool
	// local centers the view on the focused body and frames its satellites.
	local bool
	// history is the focused body's distance from its star, oldest first.
	history []state.TimeSeries
}

var zoomLevels = []float64{0.25, 0.5, 0.75, 1.0, 1.5, 2.0, 3.0, 5.0, 10.0}

const defaultZoom = 3

// NewOrreryModel creates the view focused on the star.
func NewOrreryModel() OrreryModel {
	return OrreryModel{
		focusIdx:  -1,
		zoomLevel: defaultZoom,
		scaleMode: astro.ScaleLog,
		labelMode: LabelFocused,
	}
}

func (m OrreryModel) scale() float64 {
	if m.zoomLevel < 0 || m.zoomLevel >= len(zoomLevels) {
		return 1.0
	}
	return zoomLevels[m.zoomLevel]
}

// SetSize updates the viewport size.
func (m OrreryModel) SetSize(width, height int) OrreryModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData swaps in a new snapshot, keeping focus on the same body.
func (m OrreryModel) UpdateData(snap state.Snapshot) OrreryModel {
	name := ""
	if f := m.FocusedBody(); f != nil {
		name = f.Name
	}
	m.snapshot = snap
	if name != "" {
		m.focusIdx = -1
		m.SetFocus(name)
	}
	if !m.userPanned {
		m.centerOnFocused()
	}
	return m
}

// SetHistory replaces the distance samples shown for the focused body.
func (m OrreryModel) SetHistory(h *state.BodyHistory) OrreryModel {
	m.history = nil
	if h != nil {
		m.history = h.Distance
	}
	return m
}

// SetFocus focuses the named body. It returns false if the snapshot has
// no such body.
func (m *OrreryModel) SetFocus(name string) bool {
	for i, b := range m.snapshot.Bodies {
		if strings.EqualFold(b.Name, name) {
			m.focusIdx = i
			m.centerOnFocused()
			return true
		}
	}
	return false
}

// FocusedBody returns the focused body, or nil when the star has focus.
func (m OrreryModel) FocusedBody() *state.BodyState {
	if m.focusIdx >= 0 && m.focusIdx < len(m.snapshot.Bodies) {
		return &m.snapshot.Bodies[m.focusIdx]
	}
	return nil
}

// Update handles view keys.
func (m OrreryModel) Update(msg tea.Msg) (OrreryModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "j", "[":
		m.focusPrev()
	case "k", "]":
		m.focusNext()

	case "up":
		m.panY -= 0.1 / m.scale()
		m.userPanned = true
	case "down":
		m.panY += 0.1 / m.scale()
		m.userPanned = true
	case "left":
		m.panX -= 0.1 / m.scale()
		m.userPanned = true
	case "right":
		m.panX += 0.1 / m.scale()
		m.userPanned = true
	case "c":
		m.panX, m.panY = 0, 0
		m.userPanned = false
	case "f":
		m.centerOnFocused()
		m.userPanned = false

	case "+", "=":
		if m.zoomLevel < len(zoomLevels)-1 {
			m.zoomLevel++
			m.recenter()
		}
	case "-":
		if m.zoomLevel > 0 {
			m.zoomLevel--
			m.recenter()
		}
	case "0":
		m.zoomLevel = defaultZoom
		m.recenter()

	case "z":
		m.scaleMode = m.scaleMode.Next()
		m.recenter()
	case "l":
		m.labelMode = (m.labelMode + 1) % 3
	case "v":
		m.local = !m.local
		m.panX, m.panY = 0, 0
		m.userPanned = false
		m.centerOnFocused()

	case "r":
		m.panX, m.panY = 0, 0
		m.zoomLevel = defaultZoom
		m.userPanned = false
	}
	return m, nil
}

func (m *OrreryModel) recenter() {
	if !m.userPanned {
		m.centerOnFocused()
	}
}

func (m *OrreryModel) focusNext() {
	if len(m.snapshot.Bodies) == 0 {
		return
	}
	m.focusIdx++
	if m.focusIdx >= len(m.snapshot.Bodies) {
		m.focusIdx = -1
	}
	m.centerOnFocused()
	m.userPanned = false
}

func (m *OrreryModel) focusPrev() {
	if len(m.snapshot.Bodies) == 0 {
		return
	}
	m.focusIdx--
	if m.focusIdx < -1 {
		m.focusIdx = len(m.snapshot.Bodies) - 1
	}
	m.centerOnFocused()
	m.userPanned = false
}

// centerOnFocused pans so the focused body sits at the screen center. The
// local view is always centered on its focus.
func (m *OrreryModel) centerOnFocused() {
	f := m.FocusedBody()
	if f == nil || m.local {
		m.panX, m.panY = 0, 0
		return
	}
	x, y := m.projection().Project(f.Astrocentric)
	m.panX, m.panY = -x, -y
}

// projection measures the system view in AU and the local view in units of
// the focused body's local radius.
func (m OrreryModel) projection() astro.TopDown {
	p := astro.TopDown{Unit: astro.AU, Scale: m.scaleMode, Zoom: m.scale()}
	if f := m.FocusedBody(); m.local && f != nil {
		p.Unit = m.localRadius(f)
		p.Scale = astro.ScaleLinear
	}
	return p
}

// fitUnits is the distance in view units that reaches the canvas edge at
// unit zoom.
func fitUnits(s astro.RadialScale) float64 {
	switch s {
	case astro.ScaleLog:
		return 30
	case astro.ScaleSqrt:
		return 5.2
	default:
		return 2
	}
}

// localRadius is the km distance mapped to one display unit in the local
// view.
func (m OrreryModel) localRadius(f *state.BodyState) float64 {
	if f.BoundingRadius > 0 {
		return f.BoundingRadius
	}
	return defaultLocalRadiusKm
}

// displayOffset returns the km offset the projection sees for b: from the
// star, or from the focused body in the local view.
func (m OrreryModel) displayOffset(b *state.BodyState) r3.Vec {
	f := m.FocusedBody()
	if !m.local || f == nil {
		return b.Astrocentric
	}
	return b.Position.OffsetFromKm(f.Position)
}

// View renders the canvas and HUD.
func (m OrreryModel) View() string {
	if m.width < 40 || m.height < 10 {
		return "Terminal too small for orrery view"
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.buildCanvas(), m.renderHUD())
}

type cell struct {
	ch    rune
	color string // empty uses the glyph's default style
}

type bodyPos struct {
	x, y      int
	name      string
	isFocused bool
}

const hudLines = 7

func (m OrreryModel) buildCanvas() string {
	canvasH := max(m.height-hudLines-1, 5)
	canvasW := m.width

	grid := make([][]cell, canvasH)
	for y := range grid {
		grid[y] = make([]cell, canvasW)
		for x := range grid[y] {
			grid[y][x] = cell{ch: ' '}
		}
	}

	screenCenterX := canvasW / 2
	screenCenterY := canvasH / 2
	proj := m.projection()

	maxDisplayR := float64(min(screenCenterX, screenCenterY*2)) * 0.9
	displayScale := maxDisplayR / proj.Scale.Apply(fitUnits(proj.Scale))

	originX := screenCenterX + int(m.panX*displayScale)
	originY := screenCenterY - int(m.panY*displayScale*0.5)

	m.drawOrbitRings(grid, originX, originY, displayScale, proj)

	var positions []bodyPos
	system := m.system()
	plot := func(i int) {
		b := &m.snapshot.Bodies[i]
		if b.System != system {
			return
		}
		px, py := proj.Project(m.displayOffset(b))
		sx := originX + int(px*displayScale)
		sy := originY - int(py*displayScale*0.5)
		if sx < 0 || sx >= canvasW || sy < 0 || sy >= canvasH {
			return
		}
		focused := i == m.focusIdx
		grid[sy][sx] = cell{ch: bodyGlyph(b, focused), color: bodyColor(b, focused)}
		pos := bodyPos{x: sx, y: sy, name: b.Name, isFocused: focused}
		if focused {
			// Focused label gets first claim on the canvas.
			positions = append([]bodyPos{pos}, positions...)
		} else {
			positions = append(positions, pos)
		}
	}
	for i := range m.snapshot.Bodies {
		if i != m.focusIdx {
			plot(i)
		}
	}
	if m.FocusedBody() != nil {
		plot(m.focusIdx)
	}

	// The star is drawn last so it is never hidden, except in the local
	// view where it is usually far off screen.
	if !m.local || m.FocusedBody() == nil {
		if originX >= 0 && originX < canvasW && originY >= 0 && originY < canvasH {
			grid[originY][originX] = cell{ch: '☉'}
			positions = append(positions, bodyPos{x: originX, y: originY, name: m.starName(), isFocused: m.focusIdx == -1})
		}
	}

	m.renderLabels(grid, positions)
	return renderGrid(grid)
}

// system returns the star system on screen: the focused body's, or the
// first body's when the star has focus.
func (m OrreryModel) system() string {
	if f := m.FocusedBody(); f != nil {
		return f.System
	}
	if len(m.snapshot.Bodies) > 0 {
		return m.snapshot.Bodies[0].System
	}
	return ""
}

func (m OrreryModel) starName() string {
	if s := m.system(); s != "" {
		return s
	}
	return "Star"
}

// drawOrbitRings marks reference circles in view units: AU in the system
// view, local radii in the local view.
func (m OrreryModel) drawOrbitRings(grid [][]cell, cx, cy int, scale float64, proj astro.TopDown) {
	radii := []float64{1, 5, 10, 20, 30}
	if m.local && m.FocusedBody() != nil {
		radii = []float64{0.5, 1}
	}
	for _, r := range radii {
		drawCircle(grid, cx, cy, proj.Radius(r*proj.Unit)*scale)
	}
}

func drawCircle(grid [][]cell, cx, cy int, r float64) {
	if r < 1 {
		return
	}
	h, w := len(grid), len(grid[0])
	steps := min(max(int(2*math.Pi*r), 8), 360)
	for i := 0; i < steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(r*math.Cos(theta))
		y := cy - int(r*math.Sin(theta)*0.5)
		if x >= 0 && x < w && y >= 0 && y < h && grid[y][x].ch == ' ' {
			grid[y][x] = cell{ch: '·'}
		}
	}
}

func (m OrreryModel) renderLabels(grid [][]cell, positions []bodyPos) {
	if m.labelMode == LabelNone {
		return
	}
	height, width := len(grid), len(grid[0])
	for _, pos := range positions {
		if m.labelMode == LabelFocused && !pos.isFocused {
			continue
		}
		labelX, labelY := pos.x+2, pos.y
		if labelY < 0 || labelY >= height || labelX >= width {
			continue
		}
		text := pos.name
		if pos.isFocused {
			text = "◄ " + pos.name
		}
		for i, r := range []rune(text) {
			x := labelX + i
			if x >= width {
				break
			}
			if c := grid[labelY][x].ch; c == ' ' || c == '·' {
				grid[labelY][x] = cell{ch: r, color: labelColor}
			}
		}
	}
}

// bodyGlyph picks a glyph by class. Eclipsed bodies show a half disc.
func bodyGlyph(b *state.BodyState, focused bool) rune {
	if b.Eclipsed() {
		return '◐'
	}
	switch {
	case b.Class&(engine.ClassPlanet|engine.ClassDwarfPlanet) != 0:
		if focused {
			return '◉'
		}
		return '○'
	case b.Class&(engine.ClassMoon|engine.ClassMinorMoon) != 0:
		if focused {
			return '●'
		}
		return '•'
	case b.Class&engine.ClassSpacecraft != 0:
		if focused {
			return '◆'
		}
		return '◇'
	default:
		if focused {
			return '■'
		}
		return '∘'
	}
}

const (
	focusColor   = "229"
	eclipseColor = "#E84A27"
	labelColor   = "249"
)

// bodyColor shades a body on the 256-color gray ramp by the fraction of
// its disc that is lit as seen by the observer.
func bodyColor(b *state.BodyState, focused bool) string {
	switch {
	case focused:
		return focusColor
	case b.Eclipsed():
		return eclipseColor
	}
	return shadeColor(b.Illuminated)
}

func shadeColor(fraction float64) string {
	fraction = math.Max(0, math.Min(1, fraction))
	return fmt.Sprintf("%d", 238+int(math.Round(fraction*17)))
}

func renderGrid(grid [][]cell) string {
	var b strings.Builder

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	sunStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)

	for _, row := range grid {
		for _, c := range row {
			switch {
			case c.ch == ' ':
				b.WriteRune(' ')
			case c.color != "":
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.color)).Render(string(c.ch)))
			case c.ch == '☉':
				b.WriteString(sunStyle.Render(string(c.ch)))
			default:
				b.WriteString(dimStyle.Render(string(c.ch)))
			}
		}
		b.WriteRune('\n')
	}
	return b.String()
}

func (m OrreryModel) renderHUD() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(12)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	alertStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(eclipseColor))

	field := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("  ")
	}

	f := m.FocusedBody()
	if f == nil {
		b.WriteString(headerStyle.Render("☉ " + m.starName()))
		b.WriteString("  ")
		b.WriteString(dimStyle.Render(fmt.Sprintf("(%d bodies)", len(m.snapshot.Bodies))))
		b.WriteString("\n\n\n\n\n")
	} else {
		km := r3.Norm(f.Astrocentric)
		lon, lat := astro.EclipticLonLat(f.Astrocentric)

		b.WriteString(headerStyle.Render("◆ " + f.Name))
		b.WriteString("  ")
		b.WriteString(dimStyle.Render(f.Class.String()))
		if f.Primary != "" {
			b.WriteString(dimStyle.Render(" of " + f.Primary))
		}
		b.WriteString("\n")

		field("Distance:", fmt.Sprintf("%.4f AU", astro.KmToAU(km)))
		field("Light Time:", lightTime(km))
		field("Ecl Lon:", fmt.Sprintf("%.1f°", lon))
		field("Ecl Lat:", fmt.Sprintf("%.1f°", lat))
		b.WriteString("\n")

		field("Radial:", fmt.Sprintf("%+.3f km/s", f.RadialVelocity))
		b.WriteString(labelStyle.Render("Trend:"))
		b.WriteString(valueStyle.Render(distanceSparkline(m.history, sparklineWidth)))
		b.WriteString("\n")

		angle, axis := axisAngle(f.Orientation)
		field("Attitude:", fmt.Sprintf("%.1f° about (%.2f, %.2f, %.2f)", angle, axis.X, axis.Y, axis.Z))
		field("Spin:", spinPeriod(f.AngularVel))
		b.WriteString("\n")

		field("Phase:", fmt.Sprintf("%d of %d", f.PhaseIndex+1, f.PhaseCount))
		field("Lights:", fmt.Sprintf("%d", f.Lights))
		field("Shadows:", fmt.Sprintf("%d", f.Shadows))
		field("Lit:", fmt.Sprintf("%.0f%%", f.Illuminated*100))
		b.WriteString("\n")

		switch {
		case f.OutOfBounds:
			b.WriteString(alertStyle.Render("Position outside the representable range"))
		case f.Eclipsed():
			b.WriteString(alertStyle.Render("Shadowed by " + strings.Join(f.Casters, ", ")))
		case f.RingShadow:
			b.WriteString(alertStyle.Render("In ring shadow"))
		default:
			b.WriteString(dimStyle.Render("No shadows"))
		}
		b.WriteString("\n")
	}

	view := "system"
	if m.local && f != nil {
		view = "local"
	}
	b.WriteString(dimStyle.Render("View:"))
	b.WriteString(valueStyle.Render(view))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Mode:"))
	b.WriteString(valueStyle.Render(m.projection().Scale.String()))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Zoom:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.2gx", m.scale())))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Labels:"))
	b.WriteString(valueStyle.Render(m.labelMode.String()))

	return b.String()
}

// axisAngle returns the rotation angle in degrees and the unit axis of q.
func axisAngle(q quat.Number) (float64, r3.Vec) {
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	s := math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if s < 1e-12 {
		return 0, r3.Vec{Y: 1}
	}
	angle := 2 * math.Atan2(s, q.Real)
	return astro.RadToDeg(angle), r3.Vec{X: q.Imag / s, Y: q.Jmag / s, Z: q.Kmag / s}
}

// spinPeriod formats the rotation period implied by an angular velocity in
// rad/day.
func spinPeriod(w r3.Vec) string {
	rate := r3.Norm(w)
	if rate < 1e-12 {
		return "none"
	}
	hours := 2 * math.Pi / rate * 24
	if hours < 48 {
		return fmt.Sprintf("%.2f h", hours)
	}
	return fmt.Sprintf("%.2f d", hours/24)
}

// lightTime formats the one-way light time over km.
func lightTime(km float64) string {
	d := astro.LightTime(km)
	if d < time.Minute {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

const sparklineWidth = 40

// distanceSparkline draws distance samples as block characters, resampled
// to width. A flat series draws at mid height.
func distanceSparkline(samples []state.TimeSeries, width int) string {
	if len(samples) < 2 || width <= 0 {
		return "-"
	}
	lo, hi := samples[0].Value, samples[0].Value
	for _, s := range samples {
		lo = math.Min(lo, s.Value)
		hi = math.Max(hi, s.Value)
	}

	n := min(width, len(samples))
	var b strings.Builder
	for i := 0; i < n; i++ {
		v := samples[i*(len(samples)-1)/max(n-1, 1)].Value
		idx := len(sparklineBlocks) / 2
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparklineBlocks)-1))
		}
		b.WriteRune(sparklineBlocks[idx])
	}
	return b.String()
}
