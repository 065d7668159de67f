// Package metrics holds the Prometheus collectors for extraction, scoring and
// scan persistence.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
)

// Metrics is a set of collectors bound to one registry.
type Metrics struct {
	registry *prometheus.Registry

	Extractions     *prometheus.CounterVec
	ScoringRequests *prometheus.CounterVec
	ScoringDuration prometheus.Histogram
	ScansSaved      prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Extractions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobfit_extractions_total",
				Help: "Total number of profile extractions by outcome",
			},
			[]string{"outcome"},
		),
		ScoringRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobfit_scoring_requests_total",
				Help: "Total number of scoring requests by outcome",
			},
			[]string{"outcome"},
		),
		ScoringDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "jobfit_scoring_duration_seconds",
				Help:    "Duration of scoring requests in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
			},
		),
		ScansSaved: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "jobfit_scans_saved_total",
				Help: "Total number of scans appended to history",
			},
		),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveExtraction counts one extraction. empty marks a profile with no identity
// or section data.
func (m *Metrics) ObserveExtraction(err error, empty bool) {
	if m == nil {
		return
	}
	switch {
	case err != nil:
		m.Extractions.WithLabelValues(OutcomeError).Inc()
	case empty:
		m.Extractions.WithLabelValues(OutcomeEmpty).Inc()
	default:
		m.Extractions.WithLabelValues(OutcomeSuccess).Inc()
	}
}

// ObserveScoring counts one scoring request and records its duration.
func (m *Metrics) ObserveScoring(started time.Time, err error) {
	if m == nil {
		return
	}
	m.ScoringDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		m.ScoringRequests.WithLabelValues(OutcomeError).Inc()
		return
	}
	m.ScoringRequests.WithLabelValues(OutcomeSuccess).Inc()
}

// ObserveScanSaved counts one appended scan.
func (m *Metrics) ObserveScanSaved() {
	if m == nil {
		return
	}
	m.ScansSaved.Inc()
}
