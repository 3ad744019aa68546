package multihop

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors reporting question-answering activity.
type Metrics struct {
	runDuration  *prometheus.HistogramVec
	hopsTotal    prometheus.Counter
	stopReasons  *prometheus.CounterVec
	compressions prometheus.Counter
	runsActive   prometheus.Gauge
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// defaultMetrics returns the package-level metrics instance registered with
// the global Prometheus registry. Created once to avoid duplicate
// registration panics when multiple orchestrators exist (unit tests,
// concurrent servers).
func defaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics constructs a Metrics instance using the provided registerer.
// Callers wanting isolated metric names (tests) should supply a fresh
// registry. Registration errors other than AlreadyRegistered panic, matching
// promauto semantics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hopqa",
			Subsystem: "multihop",
			Name:      "run_duration_seconds",
			Help:      "Duration of complete question-answering runs.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)
	hopsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hopqa",
			Subsystem: "multihop",
			Name:      "hops_total",
			Help:      "Total number of executed hops.",
		},
	)
	stopReasons := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hopqa",
			Subsystem: "multihop",
			Name:      "stop_reasons_total",
			Help:      "How hop loops terminated.",
		},
		[]string{"reason"},
	)
	compressions := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hopqa",
			Subsystem: "multihop",
			Name:      "context_compressions_total",
			Help:      "Number of context budget collapses.",
		},
	)
	runsActive := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hopqa",
			Subsystem: "multihop",
			Name:      "runs_active",
			Help:      "Number of runs currently executing.",
		},
	)

	collectors := []prometheus.Collector{runDuration, hopsTotal, stopReasons, compressions, runsActive}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				switch collector.(type) {
				case *prometheus.HistogramVec:
					runDuration = already.ExistingCollector.(*prometheus.HistogramVec)
				case *prometheus.CounterVec:
					stopReasons = already.ExistingCollector.(*prometheus.CounterVec)
				case prometheus.Gauge:
					runsActive = already.ExistingCollector.(prometheus.Gauge)
				case prometheus.Counter:
					if collector == hopsTotal {
						hopsTotal = already.ExistingCollector.(prometheus.Counter)
					} else {
						compressions = already.ExistingCollector.(prometheus.Counter)
					}
				}
				continue
			}
			panic(err)
		}
	}

	return &Metrics{
		runDuration:  runDuration,
		hopsTotal:    hopsTotal,
		stopReasons:  stopReasons,
		compressions: compressions,
		runsActive:   runsActive,
	}
}

// ObserveRun records a completed run with its outcome label.
func (m *Metrics) ObserveRun(status string, duration time.Duration) {
	if m == nil || m.runDuration == nil {
		return
	}
	m.runDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// IncHops counts one executed hop.
func (m *Metrics) IncHops() {
	if m == nil || m.hopsTotal == nil {
		return
	}
	m.hopsTotal.Inc()
}

// IncStopReason counts a loop termination cause.
func (m *Metrics) IncStopReason(reason string) {
	if m == nil || m.stopReasons == nil {
		return
	}
	m.stopReasons.WithLabelValues(reason).Inc()
}

// IncCompressions counts one budget collapse.
func (m *Metrics) IncCompressions() {
	if m == nil || m.compressions == nil {
		return
	}
	m.compressions.Inc()
}

// IncActiveRuns marks a run as started.
func (m *Metrics) IncActiveRuns() {
	if m == nil || m.runsActive == nil {
		return
	}
	m.runsActive.Inc()
}

// DecActiveRuns marks a run as finished.
func (m *Metrics) DecActiveRuns() {
	if m == nil || m.runsActive == nil {
		return
	}
	m.runsActive.Dec()
}
