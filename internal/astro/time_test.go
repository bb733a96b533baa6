package astro

import (
	"math"
	"testing"
	"time"
)

func TestUTCToTDB(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want float64
	}{
		// J2000.0 is 11:58:55.816 UTC
		{"J2000", time.Date(2000, 1, 1, 11, 58, 55, 816000000, time.UTC), J2000},
		{"2020 epoch", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 2458849.5 + 69.184/86400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UTCToTDB(tt.t)
			if math.Abs(got-tt.want)*86400 > 0.01 {
				t.Errorf("UTCToTDB() = %.8f, want %.8f", got, tt.want)
			}
		})
	}
}

func TestTDBRoundTrip(t *testing.T) {
	in := time.Date(2024, 3, 20, 3, 6, 0, 0, time.UTC)
	out := TDBToUTC(UTCToTDB(in))
	if d := out.Sub(in); d > time.Millisecond || d < -time.Millisecond {
		t.Errorf("round trip drifted by %v", d)
	}
}

func TestTaiMinusUTC(t *testing.T) {
	tests := []struct {
		t    time.Time
		want float64
	}{
		{time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC), 10},
		{time.Date(1999, 6, 1, 0, 0, 0, 0, time.UTC), 32},
		{time.Date(2016, 12, 31, 23, 0, 0, 0, time.UTC), 36},
		{time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), 37},
	}

	for _, tt := range tests {
		if got := taiMinusUTC(tt.t); got != tt.want {
			t.Errorf("taiMinusUTC(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}
