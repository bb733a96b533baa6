package astro

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestTopDownProject(t *testing.T) {
	p := TopDown{Unit: AU, Scale: ScaleLinear, Zoom: 1}

	tests := []struct {
		name   string
		v      r3.Vec // universal axes, AU
		wx, wy float64
	}{
		{"vernal equinox", r3.Vec{X: 1}, 1, 0},
		{"longitude 90", r3.Vec{Z: -1}, 0, 1},
		{"longitude 180", r3.Vec{X: -2}, -2, 0},
		{"longitude 270", r3.Vec{Z: 1}, 0, -1},
		{"above the plane", r3.Vec{X: 3, Y: 4}, 3, 0},
		{"pole", r3.Vec{Y: 5}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := p.Project(r3.Scale(AU, tt.v))
			if math.Abs(x-tt.wx) > 1e-12 || math.Abs(y-tt.wy) > 1e-12 {
				t.Errorf("Project = (%v, %v), want (%v, %v)", x, y, tt.wx, tt.wy)
			}
		})
	}
}

func TestTopDownRadius(t *testing.T) {
	tests := []struct {
		name  string
		scale RadialScale
		zoom  float64
		au    float64
		want  float64
	}{
		{"log at origin", ScaleLog, 1, 0, 0},
		{"log 9 AU", ScaleLog, 1, 9, 1},
		{"log zoomed", ScaleLog, 2, 99, 4},
		{"sqrt Jupiter-ish", ScaleSqrt, 1, 4, 2},
		{"linear", ScaleLinear, 1.5, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := TopDown{Unit: AU, Scale: tt.scale, Zoom: tt.zoom}
			if got := p.Radius(tt.au * AU); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Radius(%v AU) = %v, want %v", tt.au, got, tt.want)
			}
			// Projection and radius agree along the equinox direction.
			if x, _ := p.Project(r3.Vec{X: tt.au * AU}); math.Abs(x-tt.want) > 1e-12 {
				t.Errorf("Project x = %v, want %v", x, tt.want)
			}
		})
	}

	local := TopDown{Unit: 400000, Scale: ScaleLinear, Zoom: 1}
	if x, _ := local.Project(r3.Vec{X: -384400}); math.Abs(x+0.961) > 1e-12 {
		t.Errorf("local Project x = %v, want -0.961", x)
	}
}

func TestRadialScaleCycles(t *testing.T) {
	s := ScaleLog
	var names []string
	for i := 0; i < 3; i++ {
		names = append(names, s.String())
		s = s.Next()
	}
	if s != ScaleLog {
		t.Errorf("Next() did not wrap, ended at %v", s)
	}
	if got := names[0] + "," + names[1] + "," + names[2]; got != "log,sqrt,linear" {
		t.Errorf("scales = %s", got)
	}
	if RadialScale(7).String() != "unknown" {
		t.Error("out of range scale should print unknown")
	}
}

func TestEclipticLonLat(t *testing.T) {
	tests := []struct {
		v        r3.Vec
		lon, lat float64
	}{
		{r3.Vec{X: 1}, 0, 0},
		{r3.Vec{Z: -1}, 90, 0},
		{r3.Vec{X: -1}, 180, 0},
		{r3.Vec{Z: 1}, 270, 0},
		{r3.Vec{X: 1, Y: 1}, 0, 45},
		{r3.Vec{Y: -1}, 0, -90},
		{r3.Vec{}, 0, 0},
	}

	for _, tt := range tests {
		lon, lat := EclipticLonLat(tt.v)
		if math.Abs(lon-tt.lon) > 1e-9 || math.Abs(lat-tt.lat) > 1e-9 {
			t.Errorf("EclipticLonLat(%v) = (%v, %v), want (%v, %v)", tt.v, lon, lat, tt.lon, tt.lat)
		}
	}

	// Agrees with the ecliptic XYZ conversion.
	v := r3.Vec{X: 0.3, Y: -0.2, Z: 0.9}
	ecl := UniversalToEcliptic(v)
	lon, lat := EclipticLonLat(v)
	wantLon := RadToDeg(WrapTwoPi(math.Atan2(ecl.Y, ecl.X)))
	wantLat := RadToDeg(math.Asin(ecl.Z / r3.Norm(ecl)))
	if math.Abs(lon-wantLon) > 1e-9 || math.Abs(lat-wantLat) > 1e-9 {
		t.Errorf("EclipticLonLat = (%v, %v), want (%v, %v)", lon, lat, wantLon, wantLat)
	}
}

func TestLightTime(t *testing.T) {
	tests := []struct {
		km   float64
		want time.Duration
	}{
		{0, 0},
		{SpeedOfLight, time.Second},
		{384400, 1282 * time.Millisecond},
		{AU, 8*time.Minute + 19*time.Second},
	}
	for _, tt := range tests {
		got := LightTime(tt.km)
		tol := time.Millisecond
		if tt.km == AU {
			tol = time.Second
		}
		if d := got - tt.want; d < -tol || d > tol {
			t.Errorf("LightTime(%v) = %v, want %v", tt.km, got, tt.want)
		}
	}
}

func TestKmToAU(t *testing.T) {
	tests := []struct {
		km     float64
		wantAU float64
	}{
		{AU, 1.0},
		{AU * 5.2, 5.2},
		{AU * 30.07, 30.07},
	}

	for _, tt := range tests {
		got := KmToAU(tt.km)
		if math.Abs(got-tt.wantAU)/tt.wantAU > 1e-5 {
			t.Errorf("KmToAU(%.0f) = %.4f, want %.4f", tt.km, got, tt.wantAU)
		}
	}
}
