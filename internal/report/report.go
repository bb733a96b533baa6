// Package report renders simulation snapshots for headless use: an indented
// JSON document and a fixed-width summary table.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/engine"
	"github.com/litescript/ls-orrery/internal/lighting"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/univcoord"
)

// SnapshotExport is the JSON form of one evaluation.
type SnapshotExport struct {
	SimTime     time.Time     `json:"sim_time"`
	TDB         float64       `json:"tdb"`
	GeneratedAt time.Time     `json:"generated_at"`
	EvalMicros  int64         `json:"eval_us"`
	Bodies      []BodyExport  `json:"bodies"`
	Events      []state.Event `json:"events,omitempty"`
}

// PositionExport carries a universal coordinate twice: losslessly as the
// base64 form of each 128-bit component, and as light years for reading.
type PositionExport struct {
	X  string     `json:"x"`
	Y  string     `json:"y"`
	Z  string     `json:"z"`
	Ly [3]float64 `json:"ly"`
}

// Coord decodes the exact coordinate.
func (p PositionExport) Coord() (univcoord.Coord, error) {
	var c univcoord.Coord
	for i, s := range []string{p.X, p.Y, p.Z} {
		r, err := univcoord.DecodeBase64R128(s)
		if err != nil {
			return univcoord.Coord{}, fmt.Errorf("component %d: %w", i, err)
		}
		switch i {
		case 0:
			c.X = r
		case 1:
			c.Y = r
		default:
			c.Z = r
		}
	}
	return c, nil
}

// BodyExport is a JSON-friendly BodyState.
type BodyExport struct {
	Name           string         `json:"name"`
	Class          string         `json:"class"`
	Primary        string         `json:"primary,omitempty"`
	Position       PositionExport `json:"position"`
	Astrocentric   [3]float64     `json:"astrocentric_km"`
	DistanceAU     float64        `json:"distance_au"`
	LightTime      float64        `json:"light_time_s"`
	RadialVelocity float64        `json:"radial_velocity_kms"` // away from the star
	Orientation    [4]float64     `json:"orientation"`         // w, x, y, z
	Phase          int            `json:"phase"`
	PhaseCount     int            `json:"phase_count"`
	Lights         int            `json:"lights"`
	Shadows        int            `json:"shadows,omitempty"`
	Illuminated    float64        `json:"illuminated"`
	Casters        []string       `json:"casters,omitempty"`
	RingShadow     bool           `json:"ring_shadow,omitempty"`
	OutOfBounds    bool           `json:"out_of_bounds,omitempty"`
}

func exportPosition(c univcoord.Coord) PositionExport {
	ly := c.ToLy()
	return PositionExport{
		X:  c.Component(0).EncodeBase64(),
		Y:  c.Component(1).EncodeBase64(),
		Z:  c.Component(2).EncodeBase64(),
		Ly: [3]float64{ly.X, ly.Y, ly.Z},
	}
}

// ExportSnapshot converts a snapshot to its exportable form.
func ExportSnapshot(snap state.Snapshot, generatedAt time.Time) *SnapshotExport {
	export := &SnapshotExport{
		SimTime:     snap.SimTime,
		TDB:         snap.TDB,
		GeneratedAt: generatedAt,
		EvalMicros:  snap.EvalDuration.Microseconds(),
		Events:      snap.Events,
	}
	for _, b := range snap.Bodies {
		km := r3.Norm(b.Astrocentric)
		q := b.Orientation
		export.Bodies = append(export.Bodies, BodyExport{
			Name:           b.Name,
			Class:          b.Class.String(),
			Primary:        b.Primary,
			Position:       exportPosition(b.Position),
			Astrocentric:   [3]float64{b.Astrocentric.X, b.Astrocentric.Y, b.Astrocentric.Z},
			DistanceAU:     astro.KmToAU(km),
			LightTime:      astro.LightTime(km).Seconds(),
			RadialVelocity: b.RadialVelocity,
			Orientation:    [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag},
			Phase:          b.PhaseIndex,
			PhaseCount:     b.PhaseCount,
			Lights:         b.Lights,
			Shadows:        b.Shadows,
			Illuminated:    b.Illuminated,
			Casters:        b.Casters,
			RingShadow:     b.RingShadow,
			OutOfBounds:    b.OutOfBounds,
		})
	}
	return export
}

// WriteJSON writes the snapshot as indented JSON.
func (s *SnapshotExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// SummaryRow is one row of the summary table.
type SummaryRow struct {
	Name      string
	Class     string
	Primary   string
	Distance  string
	LightTime string
	Lat, Lon  float64 // degrees, heliocentric ecliptic
	Phase     string
	Lit       float64
	Shadow    string
}

// GenerateSummaryRows creates one row per body in snapshot order.
func GenerateSummaryRows(snap state.Snapshot) []SummaryRow {
	var rows []SummaryRow
	for _, b := range snap.Bodies {
		km := r3.Norm(b.Astrocentric)
		lon, lat := astro.EclipticLonLat(b.Astrocentric)
		row := SummaryRow{
			Name:      b.Name,
			Class:     b.Class.String(),
			Primary:   b.Primary,
			Distance:  FormatDistance(km),
			LightTime: astro.LightTime(km).Round(time.Second).String(),
			Lat:       lat,
			Lon:       lon,
			Phase:     fmt.Sprintf("%d/%d", b.PhaseIndex+1, b.PhaseCount),
			Lit:       b.Illuminated,
			Shadow:    "-",
		}
		if row.Primary == "" {
			row.Primary = "-"
		}
		switch {
		case b.OutOfBounds:
			row.Shadow = "OOB"
		case b.Eclipsed():
			row.Shadow = strings.Join(b.Casters, ",")
		case b.RingShadow:
			row.Shadow = "rings"
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteSummaryTable writes a text table of the snapshot.
func WriteSummaryTable(w io.Writer, snap state.Snapshot) {
	rows := GenerateSummaryRows(snap)

	fmt.Fprintf(w, "Orrery @ %s (TDB %.5f)\n", snap.SimTime.Format(time.RFC3339), snap.TDB)
	fmt.Fprintln(w, strings.Repeat("─", 96))

	if len(rows) == 0 {
		fmt.Fprintln(w, "No bodies")
		return
	}

	fmt.Fprintf(w, "%-12s %-10s %-10s %-12s %-9s %7s %7s %-5s %5s %-12s\n",
		"Body", "Class", "Primary", "Distance", "Light", "Lat", "Lon", "Phase", "Lit", "Shadow")
	fmt.Fprintln(w, strings.Repeat("─", 96))

	for _, r := range rows {
		fmt.Fprintf(w, "%-12s %-10s %-10s %-12s %-9s %7.2f %7.2f %-5s %4.0f%% %-12s\n",
			truncateStr(r.Name, 12),
			truncateStr(r.Class, 10),
			truncateStr(r.Primary, 10),
			r.Distance,
			r.LightTime,
			r.Lat,
			r.Lon,
			r.Phase,
			r.Lit*100,
			truncateStr(r.Shadow, 12),
		)
	}

	fmt.Fprintf(w, "\nTotal: %d bodies, %d eclipsed\n", len(rows), countEclipsed(snap))
}

// WriteDeepSkyTable lists the universe's deep-sky objects by distance from
// its first star. Nothing is written when there are none.
func WriteDeepSkyTable(w io.Writer, u *engine.Universe) {
	dsos := u.DeepSkyObjects()
	if len(dsos) == 0 {
		return
	}
	var origin r3.Vec
	from := "origin"
	if stars := u.Stars(); len(stars) > 0 {
		origin = stars[0].Position(0).ToLy()
		from = stars[0].Name()
	}

	fmt.Fprintf(w, "\nDeep sky from %s\n", from)
	fmt.Fprintln(w, strings.Repeat("─", 52))
	fmt.Fprintf(w, "%-24s %13s %13s\n", "Object", "Distance", "Radius")
	for _, d := range dsos {
		fmt.Fprintf(w, "%-24s %10.1f ly %10.1f ly\n",
			truncateStr(d.Name(), 24), d.Position().DistanceFromLy(origin), d.Radius())
	}
}

func countEclipsed(snap state.Snapshot) int {
	n := 0
	for _, b := range snap.Bodies {
		if b.Eclipsed() {
			n++
		}
	}
	return n
}

// WriteEclipseTable lists eclipses found by lighting.FindEclipses.
func WriteEclipseTable(w io.Writer, eclipses []lighting.Eclipse) {
	fmt.Fprintln(w, "Eclipses")
	fmt.Fprintln(w, strings.Repeat("─", 78))
	if len(eclipses) == 0 {
		fmt.Fprintln(w, "None in range")
		return
	}
	fmt.Fprintf(w, "%-6s %-12s %-12s %-20s %-20s %s\n", "Kind", "Receiver", "Occulter", "Start (UTC)", "End (UTC)", "Length")
	for _, e := range eclipses {
		start, end := astro.TDBToUTC(e.Start), astro.TDBToUTC(e.End)
		fmt.Fprintf(w, "%-6s %-12s %-12s %-20s %-20s %s\n",
			e.Kind,
			truncateStr(e.Receiver.Name(), 12),
			truncateStr(e.Occulter.Name(), 12),
			start.Format("2006-01-02 15:04:05"),
			end.Format("2006-01-02 15:04:05"),
			end.Sub(start).Round(time.Second),
		)
	}
}

// FormatDistance returns a human-readable distance.
func FormatDistance(km float64) string {
	switch {
	case km <= 0:
		return "N/A"
	case km < 1e6:
		return fmt.Sprintf("%.0f km", km)
	case km < 1e8:
		return fmt.Sprintf("%.2f M km", km/1e6)
	case km < astro.KmPerLightYear/10:
		return fmt.Sprintf("%.3f AU", astro.KmToAU(km))
	default:
		return fmt.Sprintf("%.3f ly", astro.KmToLightYears(km))
	}
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
