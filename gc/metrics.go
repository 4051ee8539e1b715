// ABOUTME: Prometheus instrumentation for collection cycles
// ABOUTME: One Metrics value may be shared by the collectors of several goroutines

package gc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reasons a cycle ran, used as the "reason" label.
const (
	reasonManual    = "manual"
	reasonThreshold = "threshold"
	reasonTimeout   = "timeout"
	reasonExhausted = "exhausted"
)

// Metrics holds the collector's Prometheus series. A nil *Metrics records nothing.
type Metrics struct {
	cycles        *prometheus.CounterVec
	allocations   prometheus.Counter
	freedObjects  prometheus.Counter
	freedBytes    prometheus.Counter
	liveBytes     prometheus.Gauge
	cycleDuration prometheus.Histogram
}

// NewMetrics creates the series and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		cycles: f.NewCounterVec(prometheus.CounterOpts{
			Name: "astgc_cycles_total",
			Help: "Mark-sweep cycles run, by trigger reason",
		}, []string{"reason"}),
		allocations: f.NewCounter(prometheus.CounterOpts{
			Name: "astgc_allocations_total",
			Help: "Objects allocated",
		}),
		freedObjects: f.NewCounter(prometheus.CounterOpts{
			Name: "astgc_freed_objects_total",
			Help: "Objects reclaimed by sweeps",
		}),
		freedBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "astgc_freed_bytes_total",
			Help: "Bytes reclaimed by sweeps",
		}),
		liveBytes: f.NewGauge(prometheus.GaugeOpts{
			Name: "astgc_heap_live_bytes",
			Help: "Bytes held by live objects after the last cycle, summed over collectors",
		}),
		cycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "astgc_cycle_duration_seconds",
			Help:    "Time spent in one mark-sweep cycle",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}),
	}
}

func (m *Metrics) observeCycle(reason string, allocs, freed, freedBytes, liveDelta int, d time.Duration) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(reason).Inc()
	m.allocations.Add(float64(allocs))
	m.freedObjects.Add(float64(freed))
	m.freedBytes.Add(float64(freedBytes))
	m.liveBytes.Add(float64(liveDelta))
	m.cycleDuration.Observe(d.Seconds())
}
