// Package metrics exposes per-skill invocation counters and latency histograms.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so several dispatchers (and tests) never collide.
type Metrics struct {
	Registry    *prometheus.Registry
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// New builds the collectors plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skills_invocations_total",
				Help: "Skill invocations by function and resulting status code",
			},
			[]string{"function", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "skills_invocation_duration_seconds",
				Help:    "Duration of skill invocations, upstream calls included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"function"},
		),
	}
	m.Registry.MustRegister(
		m.invocations,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records one invocation. A nil receiver is a no-op.
func (m *Metrics) Observe(function string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(function, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(function).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
