// Package metrics records generation outcomes in Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
)

type Recorder struct {
	generations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	gatherer    prometheus.Gatherer
}

// NewRecorder registers the collectors on reg. Pass a fresh
// prometheus.NewRegistry() in tests to avoid duplicate registration.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	r := &Recorder{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ragway",
			Name:      "generations_total",
			Help:      "Generation requests by provider and outcome (success or error kind).",
		}, []string{"provider", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ragway",
			Name:      "generation_duration_seconds",
			Help:      "Wall time of generation requests, including context retrieval.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"provider"}),
		gatherer: reg,
	}
	reg.MustRegister(r.generations, r.duration)
	return r
}

// Observe records one generation. outcome is OutcomeSuccess or an error kind.
func (r *Recorder) Observe(provider, outcome string, took time.Duration) {
	if r == nil {
		return
	}
	if provider == "" {
		provider = "unknown"
	}
	r.generations.WithLabelValues(provider, outcome).Inc()
	r.duration.WithLabelValues(provider).Observe(took.Seconds())
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
