// Package metrics holds the Prometheus collectors shared by the ranking
// pipeline. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	TranslationRequests *prometheus.CounterVec
	TranslationCache    *prometheus.CounterVec
	PagesScored         prometheus.Counter
	PageScore           prometheus.Histogram
	PipelineDuration    prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		TranslationRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topicrank_translation_requests_total",
				Help: "Translation collaborator calls, labeled by outcome.",
			},
			[]string{"result"},
		),
		TranslationCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topicrank_translation_cache_total",
				Help: "Keyword variant lookups, labeled hit or miss.",
			},
			[]string{"result"},
		),
		PagesScored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "topicrank_pages_scored_total",
				Help: "Total number of pages scored.",
			},
		),
		PageScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "topicrank_page_score",
				Help:    "Distribution of final topic scores.",
				Buckets: []float64{-80, -50, -20, 0, 20, 50, 80, 110, 150},
			},
		),
		PipelineDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "topicrank_pipeline_duration_seconds",
				Help:    "Duration of full search pipeline runs in seconds.",
				Buckets: prometheus.DefBuckets,
			},
		),
		gatherer: reg,
	}
	reg.MustRegister(
		m.TranslationRequests,
		m.TranslationCache,
		m.PagesScored,
		m.PageScore,
		m.PipelineDuration,
	)
	return m
}

func (m *Metrics) ObserveTranslation(result string) {
	if m == nil {
		return
	}
	m.TranslationRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.TranslationCache.WithLabelValues("hit").Inc()
		return
	}
	m.TranslationCache.WithLabelValues("miss").Inc()
}

func (m *Metrics) ObserveScore(score float64) {
	if m == nil {
		return
	}
	m.PagesScored.Inc()
	m.PageScore.Observe(score)
}

func (m *Metrics) ObservePipeline(d time.Duration) {
	if m == nil {
		return
	}
	m.PipelineDuration.Observe(d.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
