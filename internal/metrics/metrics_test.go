package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestFrameCacheLookup(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.FrameCacheLookup(QuantityOrientation, true)
	c.FrameCacheLookup(QuantityOrientation, true)
	c.FrameCacheLookup(QuantityOrientation, false)

	if got := counterValue(t, c.frameCacheLookups.WithLabelValues(QuantityOrientation, "hit")); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if got := counterValue(t, c.frameCacheLookups.WithLabelValues(QuantityOrientation, "miss")); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
}

func TestPhaseRejected(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	c.PhaseRejected("interval")
	if got := counterValue(t, c.phasesRejected.WithLabelValues("interval")); got != 1 {
		t.Errorf("rejected = %v, want 1", got)
	}
}

func TestCollectorsAreIsolated(t *testing.T) {
	a := NewCollector(prometheus.NewRegistry())
	b := NewCollector(prometheus.NewRegistry())
	a.PhaseLookup()
	if got := counterValue(t, b.phaseLookups); got != 0 {
		t.Errorf("second collector saw %v lookups", got)
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	defer func() {
		if recover() == nil {
			t.Error("registering twice on one registry did not panic")
		}
	}()
	NewCollector(reg)
}

func TestHandlerServesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RotationCacheLookup(QuantitySpin, false)
	c.PhaseLookup()
	c.ObserveEvaluation(12, 0, 1, 3*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{
		"orrery_rotation_cache_lookups_total",
		"orrery_timeline_phase_lookups_total 1",
		"orrery_bodies_evaluated 12",
		"orrery_evaluation_duration_seconds_bucket",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %q", name)
		}
	}
}

func TestOrNop(t *testing.T) {
	if _, ok := OrNop(nil).(Nop); !ok {
		t.Error("OrNop(nil) is not Nop")
	}
	c := NewCollector(prometheus.NewRegistry())
	if OrNop(c) != Recorder(c) {
		t.Error("OrNop replaced a real recorder")
	}
	// Nop accepts every call.
	var r Recorder = Nop{}
	r.FrameCacheLookup(QuantityOrientation, true)
	r.ObserveEvaluation(1, 0, 0, time.Second)
}
