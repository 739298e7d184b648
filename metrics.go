package main

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics holds the search counters on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	states       *prometheus.CounterVec
	improvements prometheus.Counter
	bestSize     prometheus.Gauge
	duration     prometheus.Histogram
	skipped      prometheus.Counter
	incomplete   prometheus.Counter
}

// NewMetrics creates and registers the search metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		states: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cocktails_search_states_total",
			Help: "Search states popped from the frontier, by outcome.",
		}, []string{"outcome"}),
		improvements: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cocktails_search_improvements_total",
			Help: "Times a strictly larger selection was found.",
		}),
		bestSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cocktails_search_best_size",
			Help: "Size of the best selection of the last run.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cocktails_search_duration_seconds",
			Help:    "Wall time of a search run.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cocktails_ingest_skipped_total",
			Help: "Input records skipped as malformed or duplicate.",
		}),
		incomplete: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cocktails_search_incomplete_total",
			Help: "Runs stopped by cancellation before the frontier was exhausted.",
		}),
	}
	m.registry.MustRegister(m.states, m.improvements, m.bestSize, m.duration, m.skipped, m.incomplete)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveSearch adds the totals of one finished run.
func (m *Metrics) ObserveSearch(r Result) {
	if m == nil {
		return
	}
	s := r.Stats
	m.states.WithLabelValues(outcomeExpanded.String()).Add(float64(s.Expanded))
	m.states.WithLabelValues(outcomePrunedForbidden.String()).Add(float64(s.PrunedForbidden))
	m.states.WithLabelValues(outcomePrunedCount.String()).Add(float64(s.PrunedCount))
	m.states.WithLabelValues(outcomePrunedSingleton.String()).Add(float64(s.PrunedSingleton))
	m.improvements.Add(float64(s.Improvements))
	m.bestSize.Set(float64(r.Size))
	m.duration.Observe(s.Elapsed.Seconds())
	if !r.Complete {
		m.incomplete.Inc()
	}
}

// ObserveSkipped counts skipped input records.
func (m *Metrics) ObserveSkipped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.skipped.Add(float64(n))
}

// WriteText dumps the registry in the Prometheus text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	if m == nil {
		return nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
