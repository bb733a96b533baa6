// Package metrics exposes Prometheus instrumentation for the evaluation core.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache quantities.
const (
	QuantityOrientation     = "orientation"
	QuantityAngularVelocity = "angular_velocity"
	QuantitySpin            = "spin"
	QuantityEquator         = "equator"
)

// Recorder receives instrumentation from the evaluation core. It must be
// safe for concurrent use.
type Recorder interface {
	FrameCacheLookup(quantity string, hit bool)
	RotationCacheLookup(quantity string, hit bool)
	PhaseLookup()
	PhaseRejected(reason string)
	ObserveEvaluation(bodies, outOfBounds, eclipses int, d time.Duration)
}

// Nop discards everything.
type Nop struct{}

func (Nop) FrameCacheLookup(string, bool)                   {}
func (Nop) RotationCacheLookup(string, bool)                {}
func (Nop) PhaseLookup()                                    {}
func (Nop) PhaseRejected(string)                            {}
func (Nop) ObserveEvaluation(int, int, int, time.Duration) {}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}

// Collector is a Recorder backed by Prometheus collectors.
type Collector struct {
	frameCacheLookups    *prometheus.CounterVec
	rotationCacheLookups *prometheus.CounterVec
	phaseLookups         prometheus.Counter
	phasesRejected       *prometheus.CounterVec
	bodiesEvaluated      prometheus.Gauge
	bodiesOutOfBounds    prometheus.Gauge
	eclipsesActive       prometheus.Gauge
	evaluationSeconds    prometheus.Histogram
}

// NewCollector creates the collectors and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		frameCacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orrery_frame_cache_lookups_total",
				Help: "Caching reference frame lookups by quantity and result.",
			},
			[]string{"quantity", "result"},
		),
		rotationCacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orrery_rotation_cache_lookups_total",
				Help: "Caching rotation model lookups by quantity and result.",
			},
			[]string{"quantity", "result"},
		),
		phaseLookups: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "orrery_timeline_phase_lookups_total",
				Help: "Timeline phase lookups.",
			},
		),
		phasesRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orrery_timeline_phases_rejected_total",
				Help: "Timeline phases rejected at construction, by reason.",
			},
			[]string{"reason"},
		),
		bodiesEvaluated: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "orrery_bodies_evaluated",
				Help: "Bodies evaluated in the latest snapshot.",
			},
		),
		bodiesOutOfBounds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "orrery_bodies_out_of_bounds",
				Help: "Bodies whose universal position exceeded the safe coordinate range.",
			},
		),
		eclipsesActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "orrery_eclipses_active",
				Help: "Eclipse shadows falling on bodies in the latest snapshot.",
			},
		),
		evaluationSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "orrery_evaluation_duration_seconds",
				Help:    "Time to evaluate one snapshot.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
	}

	reg.MustRegister(
		c.frameCacheLookups,
		c.rotationCacheLookups,
		c.phaseLookups,
		c.phasesRejected,
		c.bodiesEvaluated,
		c.bodiesOutOfBounds,
		c.eclipsesActive,
		c.evaluationSeconds,
	)
	return c
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func result(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func (c *Collector) FrameCacheLookup(quantity string, hit bool) {
	c.frameCacheLookups.WithLabelValues(quantity, result(hit)).Inc()
}

func (c *Collector) RotationCacheLookup(quantity string, hit bool) {
	c.rotationCacheLookups.WithLabelValues(quantity, result(hit)).Inc()
}

func (c *Collector) PhaseLookup() {
	c.phaseLookups.Inc()
}

func (c *Collector) PhaseRejected(reason string) {
	c.phasesRejected.WithLabelValues(reason).Inc()
}

// ObserveEvaluation records the outcome of one snapshot evaluation.
func (c *Collector) ObserveEvaluation(bodies, outOfBounds, eclipses int, d time.Duration) {
	c.bodiesEvaluated.Set(float64(bodies))
	c.bodiesOutOfBounds.Set(float64(outOfBounds))
	c.eclipsesActive.Set(float64(eclipses))
	c.evaluationSeconds.Observe(d.Seconds())
}
