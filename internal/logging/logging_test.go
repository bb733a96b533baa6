package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func newTestLogger(level Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New(level)
	l.SetOutput(&buf)
	l.sink.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 6e6, time.UTC) }
	return l, &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"Warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if got != tt.want || (err != nil) != tt.wantErr {
				t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newTestLogger(LevelWarn)
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown %d", 1)
	l.Error("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("filtered messages written: %q", out)
	}
	want := "03:04:05.006 [WARN] shown 1\n03:04:05.006 [ERROR] shown 2\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
	if l.Enabled(LevelInfo) || !l.Enabled(LevelError) {
		t.Error("Enabled() disagrees with the level")
	}
}

func TestNamedSharesSink(t *testing.T) {
	l, buf := newTestLogger(LevelDebug)
	scene := l.Named("scene")
	scene.Named("loader").Info("read %s", "solar.toml")

	if got := buf.String(); !strings.HasSuffix(got, "[INFO] scene.loader: read solar.toml\n") {
		t.Errorf("output = %q", got)
	}

	l.SetLevel(LevelError)
	buf.Reset()
	scene.Warn("dropped")
	if buf.Len() != 0 {
		t.Error("child ignored the parent's level")
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing")
	if l.Enabled(LevelError) {
		t.Error("Discard() logger is enabled")
	}
}
